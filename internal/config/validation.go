package config

import (
	"errors"
	"fmt"
)

func (c *Config) Validate() error {
	var errs []error

	if err := c.Agent.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("agent: %w", err))
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}

	if err := c.Auth.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	if err := c.Scheduler.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("scheduler: %w", err))
	}

	if err := c.Ledger.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("ledger: %w", err))
	}

	if err := c.Merge.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("merge: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	return errors.Join(errs...)
}

func (a *AgentConfig) Validate() error {
	var errs []error

	if a.Port < 1 || a.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", a.Port))
	}

	if a.CPUTDPWatts <= 0 {
		errs = append(errs, fmt.Errorf("cpu_tdp_w must be positive, got %g", a.CPUTDPWatts))
	}

	if a.SmoothingAlpha <= 0 || a.SmoothingAlpha > 1 {
		errs = append(errs, fmt.Errorf("smoothing_alpha must be in (0, 1], got %g", a.SmoothingAlpha))
	}

	if a.SampleHz <= 0 {
		errs = append(errs, fmt.Errorf("sample_hz must be positive, got %g", a.SampleHz))
	}

	if a.IdleLearnWatts < 0 {
		errs = append(errs, fmt.Errorf("idle_learn_w must be non-negative, got %g", a.IdleLearnWatts))
	}

	if a.SeedIdleCPUWatts < 0 || a.SeedIdleGPUWatts < 0 {
		errs = append(errs, fmt.Errorf("seed idle watts must be non-negative"))
	}

	return errors.Join(errs...)
}

func (s *ServerConfig) Validate() error {
	if s.RateLimit.Enabled {
		if s.RateLimit.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limit.requests_per_second must be positive")
		}
		if s.RateLimit.Burst < 1 {
			return fmt.Errorf("rate_limit.burst must be at least 1")
		}
	}
	if s.MaxBodyBytes < 0 {
		return fmt.Errorf("max_body_bytes must be non-negative")
	}
	return nil
}

func (a *AuthConfig) Validate() error {
	if a.Enabled {
		if a.User == "" {
			return fmt.Errorf("user cannot be empty when auth is enabled")
		}
		if a.Password == "" {
			return fmt.Errorf("password cannot be empty when auth is enabled")
		}
	}
	return nil
}

func (s *SchedulerConfig) Validate() error {
	var errs []error

	if s.AgentURL == "" {
		errs = append(errs, fmt.Errorf("agent_url cannot be empty"))
	}

	if s.PollIntervalMS < 10 {
		errs = append(errs, fmt.Errorf("poll_interval_ms must be at least 10, got %d", s.PollIntervalMS))
	}

	if s.BackoffBaseMS < 1 {
		errs = append(errs, fmt.Errorf("backoff_base_ms must be at least 1, got %d", s.BackoffBaseMS))
	}

	if s.BackoffMaxMS != 0 && s.BackoffMaxMS < s.BackoffBaseMS {
		errs = append(errs, fmt.Errorf("backoff_max_ms must be 0 or >= backoff_base_ms"))
	}

	if len(s.Policy) == 0 {
		errs = append(errs, fmt.Errorf("policy cannot be empty"))
	}
	for i, rule := range s.Policy {
		if rule.Task == "" {
			errs = append(errs, fmt.Errorf("policy[%d]: task cannot be empty", i))
		}
		if rule.MinBudgetJoules < 0 {
			errs = append(errs, fmt.Errorf("policy[%d]: min_budget_j must be non-negative", i))
		}
	}

	return errors.Join(errs...)
}

func (l *LedgerConfig) Validate() error {
	if l.Path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	return nil
}

func (m *MergeConfig) Validate() error {
	var errs []error

	if m.DeltaThreshold < 0 {
		errs = append(errs, fmt.Errorf("delta_threshold must be non-negative"))
	}
	if m.SecondaryThreshold < 0 {
		errs = append(errs, fmt.Errorf("secondary_threshold must be non-negative"))
	}
	if m.BaseDir == "" {
		errs = append(errs, fmt.Errorf("base_dir cannot be empty"))
	}
	if m.CandidatesDir == "" {
		errs = append(errs, fmt.Errorf("candidates_dir cannot be empty"))
	}

	return errors.Join(errs...)
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", l.Level)
	}

	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validFormats[l.Format] {
		return fmt.Errorf("invalid log format: %s (valid: json, text)", l.Format)
	}

	return nil
}
