package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile  string
	agentURL string
	jsonOut  bool
	user     string
	password string

	// Version info (set from main)
	Version = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "jouleflux",
	Short: "Energy-budget gating for expensive compute jobs",
	Long: `Jouleflux measures real power draw above an idle baseline, accumulates
it into a consumable Joule bucket, and only admits a job when enough credit
exists. Every admission and outcome lands in an append-only receipt ledger,
and job outputs are promoted into persistent state only when their measured
improvement clears the merge gate.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&agentURL, "agent", "http://127.0.0.1:8787", "budget agent URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&user, "user", "", "auth username")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "auth password")
}

// SetVersion sets the version for the CLI
func SetVersion(v string) {
	Version = v
	rootCmd.Version = v
}

func GetAgentURL() string {
	return agentURL
}

func IsJSON() bool {
	return jsonOut
}
