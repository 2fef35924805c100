package power

import (
	"context"
	"log/slog"
	"time"

	"github.com/jouleflux/jouleflux/internal/budget"
)

// Sampler drives the budget service: on every tick it reads each device
// reader and credits the bucket through the service. It never writes the
// bucket directly.
type Sampler struct {
	service *budget.Service
	readers []Reader
	period  time.Duration
	done    chan struct{}
	stopped chan struct{}
	logger  *slog.Logger
}

func NewSampler(service *budget.Service, readers []Reader, period time.Duration, logger *slog.Logger) *Sampler {
	return &Sampler{
		service: service,
		readers: readers,
		period:  period,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		logger:  logger,
	}
}

func (s *Sampler) Start(ctx context.Context) {
	go s.runLoop(ctx)
	s.logger.Info("sampler started", "period", s.period, "readers", len(s.readers))
}

func (s *Sampler) Stop() {
	close(s.done)
	<-s.stopped
	s.logger.Info("sampler stopped")
}

func (s *Sampler) runLoop(ctx context.Context) {
	defer close(s.stopped)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	// Integrate over measured elapsed time, not the nominal period, so
	// scheduling jitter doesn't drift the energy account.
	last := time.Now()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			s.tick(now.Sub(last), now)
			last = now
		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}

func (s *Sampler) tick(elapsed time.Duration, now time.Time) {
	var cpuWatts, gpuWatts float64

	for _, r := range s.readers {
		watts, err := r.Watts()
		if err != nil {
			// Fail closed: an unreadable device contributes no
			// charge this tick.
			s.logger.Warn("power read failed", "reader", r.Name(), "error", err)
			continue
		}

		switch r.Name() {
		case "cpu":
			cpuWatts = watts
		case "gpu":
			gpuWatts = watts
		}
	}

	net := s.service.Credit(cpuWatts, gpuWatts, elapsed, now)
	s.logger.Debug("tick",
		"cpu_w", cpuWatts,
		"gpu_w", gpuWatts,
		"net_w", net,
		"elapsed", elapsed,
	)
}
