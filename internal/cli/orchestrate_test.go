package cli

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jouleflux/jouleflux/internal/budget"
	"github.com/jouleflux/jouleflux/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewLocalSource(t *testing.T) {
	cfg := config.Default()

	svc, sampler := newLocalSource(cfg, testLogger())
	if svc == nil || sampler == nil {
		t.Fatal("expected a service and a sampler")
	}

	// The service is the scheduler's budget source in local mode.
	var source budget.Source = svc

	ok, remaining := source.Take(20)
	if ok || remaining != 0 {
		t.Errorf("fresh local source must start empty, got ok=%v remaining=%v", ok, remaining)
	}

	// Credits flow through the same service the scheduler polls.
	svc.Credit(cfg.Agent.SeedIdleCPUWatts+50, 0, time.Second, time.Now())

	ok, _ = source.Take(20)
	if !ok {
		t.Error("expected take to succeed after crediting the local bucket")
	}

	sample := source.Sample()
	if !sample.Verify() {
		t.Error("local sample failed its integrity check")
	}
}

func TestBuildPolicy(t *testing.T) {
	cfg := config.Default()
	cfg.Merge.BaseDir = t.TempDir()
	cfg.Merge.CandidatesDir = t.TempDir()

	policy, err := buildPolicy(cfg)
	if err != nil {
		t.Fatalf("buildPolicy: %v", err)
	}

	if got := policy.Select(25).Name(); got != "index_refresh" {
		t.Errorf("Select(25) = %q, want index_refresh", got)
	}
	if got := policy.Select(150).Name(); got != "adapter_delta" {
		t.Errorf("Select(150) = %q, want adapter_delta", got)
	}
}

func TestBuildPolicy_UnknownTask(t *testing.T) {
	cfg := config.Default()
	cfg.Scheduler.Policy = []config.PolicyRule{{MinBudgetJoules: 10, Task: "mine_bitcoin"}}

	if _, err := buildPolicy(cfg); err == nil {
		t.Fatal("expected an error for an unknown task name")
	}
}
