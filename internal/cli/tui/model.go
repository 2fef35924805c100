package tui

import (
	"time"
)

// Config holds TUI configuration
type Config struct {
	AgentURL        string
	RefreshInterval time.Duration
	BucketScale     float64
	User            string
	Password        string
}

// Model represents the TUI state
type Model struct {
	config Config

	// Data from API
	status   *StatusData
	receipts []ReceiptRow

	// UI state
	width       int
	height      int
	loading     bool
	err         error
	lastUpdated time.Time

	// Receipt table scroll position
	tableOffset int
}

// StatusData represents agent state from the /status endpoint
type StatusData struct {
	BucketJoules float64 `json:"bucket_j"`
	CPUWatts     float64 `json:"cpu_w"`
	GPUWatts     float64 `json:"gpu_w"`
	IdleCPUWatts float64 `json:"idle_cpu_w"`
	IdleGPUWatts float64 `json:"idle_gpu_w"`
	NetWatts     float64 `json:"net_w"`
	Receipts     int64   `json:"receipts"`
	UptimeSec    float64 `json:"uptime_sec"`
}

// ReceiptRow is one entry from the /v1/receipts endpoint
type ReceiptRow struct {
	ID            int64   `json:"id"`
	Timestamp     float64 `json:"ts"`
	Task          string  `json:"task"`
	JoulesCharged float64 `json:"joule"`
	DurationSec   float64 `json:"sec"`
	Delta         float64 `json:"delta"`
	Loss          float64 `json:"loss"`
}

// NewModel creates a new TUI model
func NewModel(cfg Config) Model {
	if cfg.BucketScale <= 0 {
		cfg.BucketScale = 200
	}
	return Model{
		config:  cfg,
		loading: true,
	}
}
