package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var takeCmd = &cobra.Command{
	Use:   "take",
	Short: "Attempt an atomic debit against the bucket",
	Long: `Attempt to debit the bucket by the given amount.

Exit codes:
  0   Debit succeeded
  75  Insufficient budget (bucket unchanged)`,
	RunE: runTake,
}

var takeJoules float64

// EX_TEMPFAIL from sysexits.h: the resource isn't there right now.
const exitNoBudget = 75

func init() {
	takeCmd.Flags().Float64Var(&takeJoules, "joules", 0, "amount to debit")
	takeCmd.MarkFlagRequired("joules")
	rootCmd.AddCommand(takeCmd)
}

func runTake(cmd *cobra.Command, args []string) error {
	client := NewClient()

	data, status, err := client.Post("/v1/take", map[string]float64{"joules": takeJoules})
	if err != nil {
		return fmt.Errorf("failed to reach agent: %w", err)
	}
	if status != 200 {
		return fmt.Errorf("agent returned status %d", status)
	}

	var resp struct {
		OK              bool    `json:"ok"`
		RemainingJoules float64 `json:"remaining_j"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if IsJSON() {
		os.Stdout.Write(data)
	} else if resp.OK {
		fmt.Printf("ok, %.1f J remaining\n", resp.RemainingJoules)
	} else {
		fmt.Printf("denied, %.1f J available\n", resp.RemainingJoules)
	}

	if !resp.OK {
		os.Exit(exitNoBudget)
	}
	return nil
}
