package budget

import (
	"sync"
	"time"
)

// Source is what the scheduler consumes: a read of the current budget and an
// atomic debit. Both the in-process Service and the HTTP Client satisfy it.
type Source interface {
	Sample() EnergySample
	Take(joules float64) (ok bool, remaining float64)
}

// Service owns the Joule bucket and the idle-baseline EMAs. All reads and
// writes go through one mutex, so Credit, Take and Sample are linearizable
// with respect to each other. Nothing else in the process may hold the
// bucket value.
type Service struct {
	mu sync.Mutex

	alpha          float64
	idleLearnWatts float64

	bucketJoules float64
	idleCPUWatts float64
	idleGPUWatts float64

	lastCPUWatts float64
	lastGPUWatts float64
	lastNetWatts float64
	lastTS       time.Time
}

type ServiceConfig struct {
	// SmoothingAlpha is the EMA factor for the idle baselines.
	SmoothingAlpha float64

	// IdleLearnWatts gates baseline learning; 0 learns on every tick.
	IdleLearnWatts float64

	// Seed baselines: plausible idle draw so the warm-up ticks don't
	// charge an artificial spike.
	SeedIdleCPUWatts float64
	SeedIdleGPUWatts float64
}

func NewService(cfg ServiceConfig) *Service {
	return &Service{
		alpha:          cfg.SmoothingAlpha,
		idleLearnWatts: cfg.IdleLearnWatts,
		idleCPUWatts:   cfg.SeedIdleCPUWatts,
		idleGPUWatts:   cfg.SeedIdleGPUWatts,
		lastTS:         time.Now(),
	}
}

// Credit folds one sampler tick into the bucket: update the idle EMAs,
// clamp each device's contribution at zero, and integrate net power over the
// measured elapsed time. Returns the resulting net watts.
func (s *Service) Credit(cpuWatts, gpuWatts float64, elapsed time.Duration, now time.Time) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	rawNet := max(0, cpuWatts-s.idleCPUWatts) + max(0, gpuWatts-s.idleGPUWatts)

	// Learn the baselines only near idle, so sustained load is not
	// absorbed into the idle estimate. idleLearnWatts == 0 learns always.
	if s.idleLearnWatts == 0 || rawNet < s.idleLearnWatts {
		s.idleCPUWatts = s.alpha*cpuWatts + (1-s.alpha)*s.idleCPUWatts
		s.idleGPUWatts = s.alpha*gpuWatts + (1-s.alpha)*s.idleGPUWatts
	}

	net := max(0, cpuWatts-s.idleCPUWatts) + max(0, gpuWatts-s.idleGPUWatts)
	s.bucketJoules += net * elapsed.Seconds()

	s.lastCPUWatts = cpuWatts
	s.lastGPUWatts = gpuWatts
	s.lastNetWatts = net
	s.lastTS = now

	return net
}

// Sample returns the current state without mutating it.
func (s *Service) Sample() EnergySample {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := float64(s.lastTS.UnixMilli()) / 1000.0
	return EnergySample{
		Timestamp:    ts,
		CPUWatts:     s.lastCPUWatts,
		GPUWatts:     s.lastGPUWatts,
		IdleCPUWatts: s.idleCPUWatts,
		IdleGPUWatts: s.idleGPUWatts,
		NetWatts:     s.lastNetWatts,
		BucketJoules: s.bucketJoules,
		Hash:         sampleHash(ts, s.bucketJoules),
	}
}

// Take atomically debits the bucket. The check and the subtraction happen in
// one critical section: a debit either fully succeeds or leaves the bucket
// untouched, and the bucket can never go negative.
func (s *Service) Take(joules float64) (bool, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if joules < 0 || s.bucketJoules < joules {
		return false, s.bucketJoules
	}

	s.bucketJoules -= joules
	return true, s.bucketJoules
}
