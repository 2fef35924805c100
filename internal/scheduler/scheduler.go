// Package scheduler runs the admission loop: poll the budget, pick a task
// by policy, debit its declared cost, run it, and append a receipt. The loop
// has two steady states only, idle-wait and executing.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jouleflux/jouleflux/internal/budget"
	"github.com/jouleflux/jouleflux/internal/ledger"
	"github.com/jouleflux/jouleflux/internal/task"
)

// ReceiptWriter is the slice of the ledger the scheduler needs: an
// append that reports durability. *ledger.Ledger satisfies it.
type ReceiptWriter interface {
	Add(r ledger.Receipt) (int64, error)
}

type Scheduler struct {
	source       budget.Source
	policy       *Policy
	ledger       ReceiptWriter
	pollInterval time.Duration
	backoff      Backoff
	logger       *slog.Logger

	mu       sync.Mutex
	executed int64
	denied   int64
}

type Config struct {
	Source       budget.Source
	Policy       *Policy
	Ledger       ReceiptWriter
	PollInterval time.Duration
	Backoff      Backoff
	Logger       *slog.Logger
}

func New(cfg Config) *Scheduler {
	pollInterval := cfg.PollInterval
	if pollInterval == 0 {
		pollInterval = 300 * time.Millisecond
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		source:       cfg.Source,
		policy:       cfg.Policy,
		ledger:       cfg.Ledger,
		pollInterval: pollInterval,
		backoff:      cfg.Backoff,
		logger:       logger,
	}
}

// Run blocks until ctx is cancelled. No failure inside the loop terminates
// it: task errors and panics become failed receipts, transport errors read
// as an empty bucket, and ledger write failures are retried in place.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("scheduler started", "poll_interval", s.pollInterval)

	for {
		if err := ctx.Err(); err != nil {
			s.logger.Info("scheduler stopped")
			return nil
		}

		sample := s.source.Sample()
		selected := s.policy.Select(sample.BucketJoules)
		if selected == nil {
			s.sleep(ctx, s.pollInterval)
			continue
		}

		cost := selected.EstimatedJoules()
		ok, remaining := s.source.Take(cost)
		if !ok {
			// Insufficient budget is a normal condition, not an
			// error: back off and re-poll, without bound.
			s.mu.Lock()
			s.denied++
			s.mu.Unlock()
			s.sleep(ctx, s.backoff.Next())
			continue
		}
		s.backoff.Reset()

		s.logger.Info("task admitted",
			"task", selected.Name(),
			"joules", cost,
			"remaining_j", remaining,
		)

		// The task runs to completion; energy is already spent and
		// partial state writes must not happen, so no cancellation or
		// timeout applies past this point.
		start := time.Now()
		result, runErr := s.runTask(selected)
		duration := time.Since(start)

		receipt := ledger.Receipt{
			Timestamp:     float64(time.Now().UnixMilli()) / 1000.0,
			Task:          selected.Name(),
			JoulesCharged: cost,
			DurationSec:   duration.Seconds(),
			Delta:         result.Delta,
			Loss:          result.Loss,
			DeltaHash:     result.ContentHash,
			Meta:          result.Meta,
		}
		if runErr != nil {
			receipt.Delta = 0
			receipt.Loss = 0
			receipt.Meta = map[string]any{"error": runErr.Error()}
			s.logger.Error("task failed", "task", selected.Name(), "error", runErr)
		} else {
			s.logger.Info("task finished",
				"task", selected.Name(),
				"ok", result.OK,
				"delta", result.Delta,
				"duration", duration,
			)
		}

		s.appendReceipt(ctx, receipt)

		s.mu.Lock()
		s.executed++
		s.mu.Unlock()
	}
}

// runTask executes the task and contains both errors and panics: a crashed
// attempt must still produce a receipt, never take down the loop.
func (s *Scheduler) runTask(t task.Task) (result task.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()

	return t.Run(context.Background())
}

// appendReceipt writes the receipt synchronously, retrying with backoff
// until it is durable. The energy was already debited irrevocably, so
// dropping the audit record is not an option; a stuck ledger stalls the
// loop visibly instead.
func (s *Scheduler) appendReceipt(ctx context.Context, receipt ledger.Receipt) {
	var retry Backoff
	retry.Base = s.backoff.Base
	retry.Max = s.backoff.Max

	for {
		id, err := s.ledger.Add(receipt)
		if err == nil {
			s.logger.Debug("receipt appended", "id", id, "task", receipt.Task)
			return
		}

		s.logger.Error("failed to append receipt, retrying",
			"task", receipt.Task,
			"error", err,
		)

		if !s.sleep(ctx, retry.Next()) {
			// Shutdown requested; one final attempt so an orderly
			// stop doesn't lose the record.
			if _, err := s.ledger.Add(receipt); err != nil {
				s.logger.Error("receipt lost on shutdown", "task", receipt.Task, "error", err)
			}
			return
		}
	}
}

// sleep waits for d or until ctx is done; reports false on cancellation.
func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// Stats returns loop counters for status reporting.
func (s *Scheduler) Stats() (executed, denied int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.executed, s.denied
}
