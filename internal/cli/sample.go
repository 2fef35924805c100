package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Show the agent's current energy sample",
	RunE:  runSample,
}

func init() {
	rootCmd.AddCommand(sampleCmd)
}

type sampleView struct {
	Timestamp    float64 `json:"ts"`
	CPUWatts     float64 `json:"cpu_w"`
	GPUWatts     float64 `json:"gpu_w"`
	IdleCPUWatts float64 `json:"idle_cpu_w"`
	IdleGPUWatts float64 `json:"idle_gpu_w"`
	NetWatts     float64 `json:"net_w"`
	BucketJoules float64 `json:"bucket_j"`
	Hash         string  `json:"hash"`
}

func runSample(cmd *cobra.Command, args []string) error {
	client := NewClient()

	data, status, err := client.Get("/v1/sample")
	if err != nil {
		return fmt.Errorf("failed to reach agent: %w", err)
	}
	if status != 200 {
		return fmt.Errorf("agent returned status %d", status)
	}

	if IsJSON() {
		os.Stdout.Write(data)
		return nil
	}

	var s sampleView
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to parse sample: %w", err)
	}

	fmt.Printf("bucket:   %.1f J\n", s.BucketJoules)
	fmt.Printf("cpu:      %.1f W (idle %.1f W)\n", s.CPUWatts, s.IdleCPUWatts)
	fmt.Printf("gpu:      %.1f W (idle %.1f W)\n", s.GPUWatts, s.IdleGPUWatts)
	fmt.Printf("net:      %.1f W\n", s.NetWatts)
	return nil
}
