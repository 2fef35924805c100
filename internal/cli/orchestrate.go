package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jouleflux/jouleflux/internal/budget"
	"github.com/jouleflux/jouleflux/internal/config"
	"github.com/jouleflux/jouleflux/internal/ledger"
	"github.com/jouleflux/jouleflux/internal/logger"
	"github.com/jouleflux/jouleflux/internal/merge"
	"github.com/jouleflux/jouleflux/internal/power"
	"github.com/jouleflux/jouleflux/internal/scheduler"
	"github.com/jouleflux/jouleflux/internal/task"
)

var orchestrateCmd = &cobra.Command{
	Use:   "orchestrate",
	Short: "Run the scheduling loop",
	Long: `Run the scheduling loop against a budget source: poll the bucket, select a
task by the threshold policy, debit its declared cost, execute it, and
append a receipt. The loop runs until interrupted.

The budget source is a remote agent over HTTP by default; with --local the
orchestrator samples power and owns the bucket itself, with no agent
process involved.`,
	RunE: runOrchestrate,
}

var orchestrateLocal bool

func init() {
	orchestrateCmd.Flags().String("agent-url", "", "budget agent URL (overrides config)")
	orchestrateCmd.Flags().BoolVar(&orchestrateLocal, "local", false, "sample power in-process instead of querying an agent")
	rootCmd.AddCommand(orchestrateCmd)
}

func runOrchestrate(cmd *cobra.Command, args []string) error {
	cfg := config.LoadOrDefault(cfgFile)

	if v, _ := cmd.Flags().GetString("agent-url"); v != "" {
		cfg.Scheduler.AgentURL = v
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	log.Info("jouleflux orchestrator starting",
		"version", Version,
		"agent_url", cfg.Scheduler.AgentURL,
		"local", orchestrateLocal,
	)

	led, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		return fmt.Errorf("failed to open ledger: %w", err)
	}
	defer led.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var source budget.Source
	if orchestrateLocal {
		svc, sampler := newLocalSource(cfg, log)
		sampler.Start(ctx)
		defer sampler.Stop()
		source = svc
	} else {
		source = budget.NewClient(budget.ClientConfig{
			BaseURL:  cfg.Scheduler.AgentURL,
			User:     user,
			Password: password,
			Logger:   log,
		})
	}

	policy, err := buildPolicy(cfg)
	if err != nil {
		return err
	}

	sched := scheduler.New(scheduler.Config{
		Source:       source,
		Policy:       policy,
		Ledger:       led,
		PollInterval: cfg.PollInterval(),
		Backoff: scheduler.Backoff{
			Base: cfg.BackoffBase(),
			Max:  cfg.BackoffMax(),
		},
		Logger: log,
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	if err := sched.Run(ctx); err != nil {
		return fmt.Errorf("scheduler error: %w", err)
	}

	executed, denied := sched.Stats()
	log.Info("jouleflux orchestrator stopped", "executed", executed, "denied", denied)
	return nil
}

// newLocalSource builds an in-process budget source: the same service and
// sampler the agent runs, minus the HTTP surface. The caller starts and
// stops the sampler.
func newLocalSource(cfg *config.Config, log *slog.Logger) (*budget.Service, *power.Sampler) {
	svc := budget.NewService(budget.ServiceConfig{
		SmoothingAlpha:   cfg.Agent.SmoothingAlpha,
		IdleLearnWatts:   cfg.Agent.IdleLearnWatts,
		SeedIdleCPUWatts: cfg.Agent.SeedIdleCPUWatts,
		SeedIdleGPUWatts: cfg.Agent.SeedIdleGPUWatts,
	})

	readers := []power.Reader{
		power.NewCPUReader(cfg.Agent.CPUTDPWatts),
		power.NewGPUReader(),
	}

	return svc, power.NewSampler(svc, readers, cfg.SamplePeriod(), log)
}

// buildPolicy maps the configured policy table onto the task variants.
func buildPolicy(cfg *config.Config) (*scheduler.Policy, error) {
	gate := merge.NewGate(merge.GateConfig{
		DeltaThreshold:     cfg.Merge.DeltaThreshold,
		SecondaryThreshold: cfg.Merge.SecondaryThreshold,
		BaseDir:            cfg.Merge.BaseDir,
	})

	var rules []scheduler.Rule
	for _, rule := range cfg.Scheduler.Policy {
		t, ok := taskByName(rule.Task, cfg, gate)
		if !ok {
			return nil, fmt.Errorf("unknown task in policy: %q", rule.Task)
		}
		rules = append(rules, scheduler.Rule{
			MinBudgetJoules: rule.MinBudgetJoules,
			Task:            t,
		})
	}

	return scheduler.NewPolicy(rules), nil
}

// taskByName is the closed set of task variants this build ships.
func taskByName(name string, cfg *config.Config, gate *merge.Gate) (task.Task, bool) {
	switch name {
	case "index_refresh":
		return task.NewIndexTask(cfg.Data.IncomingDir, cfg.Data.IndexDir, 20), true
	case "adapter_delta":
		return task.NewAdapterTask(defaultCandidateBuilder(cfg), gate, cfg.Merge.CandidatesDir, 80), true
	default:
		return nil, false
	}
}
