package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jouleflux/jouleflux/internal/config"
	"github.com/jouleflux/jouleflux/internal/ledger"
)

var receiptsCmd = &cobra.Command{
	Use:   "receipts",
	Short: "List recent spend receipts",
	Long: `List recent receipts from the spend ledger, newest first.

Receipts are fetched from the agent when it serves them, otherwise the
local ledger file from the config is read directly.`,
	RunE: runReceipts,
}

var receiptsLimit int

func init() {
	receiptsCmd.Flags().IntVar(&receiptsLimit, "limit", 20, "maximum receipts to list")
	rootCmd.AddCommand(receiptsCmd)
}

func runReceipts(cmd *cobra.Command, args []string) error {
	if receiptsLimit < 1 || receiptsLimit > 1000 {
		return fmt.Errorf("limit must be between 1 and 1000")
	}

	receipts, err := fetchReceipts(receiptsLimit)
	if err != nil {
		return err
	}

	if IsJSON() {
		return json.NewEncoder(os.Stdout).Encode(receipts)
	}

	if len(receipts) == 0 {
		fmt.Println("no receipts")
		return nil
	}

	fmt.Printf("%-5s %-20s %-14s %8s %7s %9s %8s\n",
		"ID", "TIME", "TASK", "JOULES", "SEC", "DELTA", "LOSS")
	for _, r := range receipts {
		ts := time.Unix(int64(r.Timestamp), 0).Format("01-02 15:04:05")
		fmt.Printf("%-5d %-20s %-14s %8.1f %7.2f %9.4f %8.4f\n",
			r.ID, ts, r.Task, r.JoulesCharged, r.DurationSec, r.Delta, r.Loss)
	}
	return nil
}

func fetchReceipts(limit int) ([]ledger.Receipt, error) {
	client := NewClient()
	data, status, err := client.Get(fmt.Sprintf("/v1/receipts?limit=%d", limit))
	if err == nil && status == 200 {
		var receipts []ledger.Receipt
		if err := json.Unmarshal(data, &receipts); err != nil {
			return nil, fmt.Errorf("failed to parse receipts: %w", err)
		}
		return receipts, nil
	}

	cfg := config.LoadOrDefault(cfgFile)
	led, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		return nil, fmt.Errorf("agent unreachable and ledger unavailable: %w", err)
	}
	defer led.Close()

	return led.List(limit)
}
