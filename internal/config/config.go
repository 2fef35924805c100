package config

import "time"

type Config struct {
	Agent     AgentConfig     `yaml:"agent"`
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Merge     MergeConfig     `yaml:"merge"`
	Data      DataConfig      `yaml:"data"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// AgentConfig holds the power sampling agent settings.
// All values are boot-time; SIGHUP reload does not touch them.
type AgentConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	PIDFile string `yaml:"pid_file"`

	// CPUTDPWatts converts CPU utilization (0-100%) to an estimated draw.
	CPUTDPWatts float64 `yaml:"cpu_tdp_w"`

	// SmoothingAlpha is the idle-baseline EMA factor, in (0, 1].
	SmoothingAlpha float64 `yaml:"smoothing_alpha"`

	// SampleHz is the sampling frequency.
	SampleHz float64 `yaml:"sample_hz"`

	// IdleLearnWatts gates baseline learning: the idle EMAs only update
	// while raw net power is below this value. 0 disables the gate and
	// the baselines track every tick.
	IdleLearnWatts float64 `yaml:"idle_learn_w"`

	// Seed baselines so early ticks don't charge the EMA warm-up.
	SeedIdleCPUWatts float64 `yaml:"seed_idle_cpu_w"`
	SeedIdleGPUWatts float64 `yaml:"seed_idle_gpu_w"`
}

type ServerConfig struct {
	RateLimit    RateLimitConfig `yaml:"rate_limit"`
	MaxBodyBytes int64           `yaml:"max_body_bytes"`
}

type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type AuthConfig struct {
	Enabled  bool   `yaml:"enabled"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type SchedulerConfig struct {
	// AgentURL points the orchestrator at a remote budget agent.
	AgentURL string `yaml:"agent_url"`

	PollIntervalMS int `yaml:"poll_interval_ms"`

	// Backoff applied after a rejected debit and after ledger write
	// failures. BackoffMaxMS 0 means a fixed delay of BackoffBaseMS.
	BackoffBaseMS int `yaml:"backoff_base_ms"`
	BackoffMaxMS  int `yaml:"backoff_max_ms"`

	// Policy is checked from the highest threshold down; the first rule
	// the current budget satisfies selects the task.
	Policy []PolicyRule `yaml:"policy"`
}

type PolicyRule struct {
	MinBudgetJoules float64 `yaml:"min_budget_j"`
	Task            string  `yaml:"task"`
}

type LedgerConfig struct {
	Path string `yaml:"path"`
}

type MergeConfig struct {
	DeltaThreshold     float64 `yaml:"delta_threshold"`
	SecondaryThreshold float64 `yaml:"secondary_threshold"`
	BaseDir            string  `yaml:"base_dir"`
	CandidatesDir      string  `yaml:"candidates_dir"`
}

type DataConfig struct {
	IncomingDir string `yaml:"incoming_dir"`
	IndexDir    string `yaml:"index_dir"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) SamplePeriod() time.Duration {
	hz := c.Agent.SampleHz
	if hz < 0.1 {
		hz = 0.1
	}
	return time.Duration(float64(time.Second) / hz)
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Scheduler.PollIntervalMS) * time.Millisecond
}

func (c *Config) BackoffBase() time.Duration {
	return time.Duration(c.Scheduler.BackoffBaseMS) * time.Millisecond
}

func (c *Config) BackoffMax() time.Duration {
	return time.Duration(c.Scheduler.BackoffMaxMS) * time.Millisecond
}
