package sampler

import (
	"errors"
	"testing"
	"time"

	"Mansoor88-6/wellness-agent/internal/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type scriptedPlatform struct {
	process string
	procErr error
	idle    time.Duration
	idleErr error
}

func (p *scriptedPlatform) GetForegroundProcess() (string, error) {
	return p.process, p.procErr
}

func (p *scriptedPlatform) GetIdleDuration() (time.Duration, error) {
	return p.idle, p.idleErr
}

func TestSampleHappyPath(t *testing.T) {
	p := &scriptedPlatform{process: "code", idle: 42 * time.Second}
	s := New(p, 10*time.Second, zap.NewNop())

	sample := s.Sample()
	assert.Equal(t, "code", sample.ForegroundProcess)
	assert.Equal(t, 42.0, sample.IdleSeconds)
	assert.WithinDuration(t, time.Now(), sample.Timestamp, time.Second)
	assert.Zero(t, s.FailureCount())
}

func TestIdleFailureAdvancesLastKnownIdle(t *testing.T) {
	p := &scriptedPlatform{process: "code", idle: 100 * time.Second}
	s := New(p, 10*time.Second, zap.NewNop())

	s.Sample()

	// The OS query starts failing: idle keeps moving toward the threshold
	// at one tick per sample rather than resetting or jumping.
	p.idleErr = errors.New("x server gone")
	sample := s.Sample()
	assert.Equal(t, 110.0, sample.IdleSeconds)
	sample = s.Sample()
	assert.Equal(t, 120.0, sample.IdleSeconds)
	assert.Equal(t, int64(2), s.FailureCount())

	// Recovery picks the real value back up.
	p.idleErr = nil
	p.idle = 5 * time.Second
	sample = s.Sample()
	assert.Equal(t, 5.0, sample.IdleSeconds)
}

func TestProcessFailureDegradesToUnknown(t *testing.T) {
	p := &scriptedPlatform{procErr: errors.New("no window"), idle: time.Second}
	s := New(p, 10*time.Second, zap.NewNop())

	sample := s.Sample()
	assert.Equal(t, models.UnknownProcess, sample.ForegroundProcess)
	// A process failure alone is not an idle failure.
	assert.Zero(t, s.FailureCount())
}

func TestNegativeIdleClampedToZero(t *testing.T) {
	p := &scriptedPlatform{process: "code", idle: -3 * time.Second}
	s := New(p, 10*time.Second, zap.NewNop())

	sample := s.Sample()
	assert.Equal(t, 0.0, sample.IdleSeconds)
}
