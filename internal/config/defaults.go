package config

func Default() *Config {
	return &Config{
		Agent: AgentConfig{
			Host:             "127.0.0.1",
			Port:             8787,
			PIDFile:          "",
			CPUTDPWatts:      65.0,
			SmoothingAlpha:   0.2,
			SampleHz:         1.0,
			IdleLearnWatts:   5.0,
			SeedIdleCPUWatts: 15.0,
			SeedIdleGPUWatts: 20.0,
		},
		Server: ServerConfig{
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerSecond: 100,
				Burst:             200,
			},
			MaxBodyBytes: 64 * 1024,
		},
		Auth: AuthConfig{
			Enabled:  false,
			User:     "",
			Password: "",
		},
		Scheduler: SchedulerConfig{
			AgentURL:       "http://127.0.0.1:8787",
			PollIntervalMS: 300,
			BackoffBaseMS:  200,
			BackoffMaxMS:   5000,
			Policy: []PolicyRule{
				{MinBudgetJoules: 120, Task: "adapter_delta"},
				{MinBudgetJoules: 20, Task: "index_refresh"},
			},
		},
		Ledger: LedgerConfig{
			Path: "state/receipts.db",
		},
		Merge: MergeConfig{
			DeltaThreshold:     0.002,
			SecondaryThreshold: 0.01,
			BaseDir:            "state/base",
			CandidatesDir:      "state/candidates",
		},
		Data: DataConfig{
			IncomingDir: "data/incoming",
			IndexDir:    "state/index",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
