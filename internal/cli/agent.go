package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jouleflux/jouleflux/internal/budget"
	"github.com/jouleflux/jouleflux/internal/config"
	"github.com/jouleflux/jouleflux/internal/ledger"
	"github.com/jouleflux/jouleflux/internal/logger"
	"github.com/jouleflux/jouleflux/internal/power"
	"github.com/jouleflux/jouleflux/internal/server"
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run the power sampling agent",
	Long: `Run the power sampling agent in the foreground: sample device power on a
fixed tick, accumulate net draw above the idle baselines into the Joule
bucket, and serve the budget API over HTTP.`,
	RunE: runAgent,
}

var agentServeReceipts bool

func init() {
	agentCmd.Flags().BoolVar(&agentServeReceipts, "serve-receipts", true, "expose the receipt ledger on /v1/receipts")
	rootCmd.AddCommand(agentCmd)
}

func runAgent(cmd *cobra.Command, args []string) error {
	cfg := config.LoadOrDefault(cfgFile)

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	log.Info("jouleflux agent starting",
		"version", Version,
		"config", cfgFile,
	)

	svc := budget.NewService(budget.ServiceConfig{
		SmoothingAlpha:   cfg.Agent.SmoothingAlpha,
		IdleLearnWatts:   cfg.Agent.IdleLearnWatts,
		SeedIdleCPUWatts: cfg.Agent.SeedIdleCPUWatts,
		SeedIdleGPUWatts: cfg.Agent.SeedIdleGPUWatts,
	})

	gpu := power.NewGPUReader()
	defer gpu.Close()

	readers := []power.Reader{
		power.NewCPUReader(cfg.Agent.CPUTDPWatts),
		gpu,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sampler := power.NewSampler(svc, readers, cfg.SamplePeriod(), log)
	sampler.Start(ctx)

	// The ledger is written by the orchestrator; the agent only reads it
	// so the dashboard can show receipts next to the live bucket.
	var led *ledger.Ledger
	if agentServeReceipts {
		opened, err := ledger.Open(cfg.Ledger.Path)
		if err != nil {
			log.Warn("receipt ledger unavailable", "path", cfg.Ledger.Path, "error", err)
		} else {
			led = opened
			defer led.Close()
		}
	}

	if cfg.Agent.PIDFile != "" {
		if err := writePIDFile(cfg.Agent.PIDFile); err != nil {
			log.Warn("failed to write PID file", "error", err)
		} else {
			defer os.Remove(cfg.Agent.PIDFile)
		}
	}

	srv := server.New(cfg, svc, led, log, Version)

	sighupCh := make(chan os.Signal, 1)
	sigCh := make(chan os.Signal, 1)
	shutdownDone := make(chan struct{})

	signal.Notify(sighupCh, syscall.SIGHUP)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// SIGHUP hot-reloads the runtime-reloadable settings.
	go func() {
		for {
			select {
			case <-sighupCh:
				log.Info("SIGHUP received, reloading configuration")

				newCfg := config.LoadOrDefault(cfgFile)
				if err := newCfg.Validate(); err != nil {
					log.Error("invalid configuration, reload aborted", "error", err)
					continue
				}

				srv.ReloadConfig(newCfg)
			case <-shutdownDone:
				return
			}
		}
	}()

	go func() {
		<-sigCh

		log.Info("shutdown signal received")

		signal.Stop(sighupCh)
		signal.Stop(sigCh)
		close(shutdownDone)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown error", "error", err)
		}

		sampler.Stop()
		cancel()
	}()

	log.Info("jouleflux agent ready", "addr", srv.Addr())

	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("jouleflux agent stopped")
	return nil
}

func writePIDFile(path string) error {
	return os.WriteFile(path, []byte(fmt.Sprintf("%d", os.Getpid())), 0644)
}
