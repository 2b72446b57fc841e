package sampler

import (
	"sync"
	"time"

	"Mansoor88-6/wellness-agent/internal/models"
	"Mansoor88-6/wellness-agent/internal/platform"

	"go.uber.org/zap"
)

// Sampler produces one ActivitySample per tick from read-only OS queries.
// It never returns an error: a failed query degrades to a sample that keeps
// downstream segmentation consistent instead of corrupting session
// boundaries.
type Sampler struct {
	platform     platform.Platform
	tickInterval time.Duration
	logger       *zap.Logger

	mu              sync.Mutex
	lastIdleSeconds float64
	failureCount    int64
}

// New creates a new sampler.
func New(p platform.Platform, tickInterval time.Duration, logger *zap.Logger) *Sampler {
	return &Sampler{
		platform:     p,
		tickInterval: tickInterval,
		logger:       logger,
	}
}

// Sample queries the OS once. On idle-query failure the previous idle value
// is advanced by one tick, so a user who was idle stays idle and a user who
// was active drifts toward the threshold instead of jumping over it.
func (s *Sampler) Sample() models.ActivitySample {
	now := time.Now()

	idleSeconds, idleErr := s.queryIdle()
	process, procErr := s.queryProcess()

	s.mu.Lock()
	defer s.mu.Unlock()

	if idleErr != nil {
		idleSeconds = s.lastIdleSeconds + s.tickInterval.Seconds()
		s.failureCount++
		s.logger.Warn("Idle query failed, degrading sample",
			zap.Error(idleErr),
			zap.Float64("assumed_idle_seconds", idleSeconds),
		)
	}
	if procErr != nil {
		process = models.UnknownProcess
		s.logger.Debug("Foreground process query failed",
			zap.Error(procErr),
		)
	}

	s.lastIdleSeconds = idleSeconds

	return models.ActivitySample{
		Timestamp:         now,
		ForegroundProcess: process,
		IdleSeconds:       idleSeconds,
	}
}

// FailureCount returns how many idle queries have degraded since start.
func (s *Sampler) FailureCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failureCount
}

func (s *Sampler) queryIdle() (float64, error) {
	d, err := s.platform.GetIdleDuration()
	if err != nil {
		return 0, err
	}
	if d < 0 {
		d = 0
	}
	return d.Seconds(), nil
}

func (s *Sampler) queryProcess() (string, error) {
	name, err := s.platform.GetForegroundProcess()
	if err != nil {
		return "", err
	}
	if name == "" {
		return models.UnknownProcess, nil
	}
	return name, nil
}
