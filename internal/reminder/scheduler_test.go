package reminder

import (
	"testing"
	"time"

	"Mansoor88-6/wellness-agent/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestScheduler(t *testing.T, intervals map[models.ReminderKind]int64) *Scheduler {
	t.Helper()
	return New(intervals, 10*time.Second, zap.NewNop())
}

func allIntervals() map[models.ReminderKind]int64 {
	return map[models.ReminderKind]int64{
		models.ReminderBreak:     2700,
		models.ReminderPosture:   1800,
		models.ReminderEyeCare:   1200,
		models.ReminderHydration: 3600,
	}
}

func stateFor(t *testing.T, s *Scheduler, kind models.ReminderKind) models.ReminderState {
	t.Helper()
	for _, st := range s.States() {
		if st.Kind == kind {
			return st
		}
	}
	t.Fatalf("no state for kind %s", kind)
	return models.ReminderState{}
}

func TestIdleTicksDoNotAccrue(t *testing.T) {
	s := newTestScheduler(t, allIntervals())
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 100; i++ {
		fired := s.Tick(false, now.Add(time.Duration(i)*10*time.Second))
		assert.Empty(t, fired)
	}

	for _, st := range s.States() {
		assert.Zero(t, st.ElapsedActiveSeconds)
		assert.Nil(t, st.LastFiredAt)
	}
}

func TestFiresAtIntervalAndResets(t *testing.T) {
	s := newTestScheduler(t, map[models.ReminderKind]int64{
		models.ReminderEyeCare: 1200,
	})
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	// 119 active ticks: one short of the interval.
	for i := 0; i < 119; i++ {
		fired := s.Tick(true, now.Add(time.Duration(i)*10*time.Second))
		require.Empty(t, fired, "tick %d should not fire", i)
	}

	firedAt := now.Add(119 * 10 * time.Second)
	fired := s.Tick(true, firedAt)
	require.Len(t, fired, 1)
	assert.Equal(t, models.ReminderEyeCare, fired[0].Kind)
	require.NotNil(t, fired[0].LastFiredAt)
	assert.Equal(t, firedAt, *fired[0].LastFiredAt)

	// Elapsed resets to zero so the next cycle starts clean.
	st := stateFor(t, s, models.ReminderEyeCare)
	assert.Zero(t, st.ElapsedActiveSeconds)
	assert.True(t, st.Due())
}

func TestAcknowledgeBeforeThresholdPreventsFire(t *testing.T) {
	s := newTestScheduler(t, map[models.ReminderKind]int64{
		models.ReminderBreak: 2700,
	})
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

	// 44m50s of active time, then the user takes a break on their own.
	for i := 0; i < 269; i++ {
		require.Empty(t, s.Tick(true, now.Add(time.Duration(i)*10*time.Second)))
	}
	require.NoError(t, s.Acknowledge(models.ReminderBreak, now.Add(2690*time.Second)))

	// The tick that would have crossed 2700 no longer fires.
	fired := s.Tick(true, now.Add(2700*time.Second))
	assert.Empty(t, fired)

	st := stateFor(t, s, models.ReminderBreak)
	assert.Equal(t, int64(10), st.ElapsedActiveSeconds)
	assert.False(t, st.Due())
}

func TestKindsAccrueIndependently(t *testing.T) {
	s := newTestScheduler(t, allIntervals())
	now := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

	var firedKinds []models.ReminderKind
	// 30 minutes of active time: eye_care (20m) and posture (30m) fire,
	// break (45m) and hydration (60m) do not.
	for i := 0; i < 180; i++ {
		for _, st := range s.Tick(true, now.Add(time.Duration(i)*10*time.Second)) {
			firedKinds = append(firedKinds, st.Kind)
		}
	}

	assert.Equal(t, []models.ReminderKind{models.ReminderEyeCare, models.ReminderPosture}, firedKinds)
	assert.NotContains(t, firedKinds, models.ReminderBreak)
	assert.NotContains(t, firedKinds, models.ReminderHydration)

	// Acknowledging one kind leaves the others untouched.
	require.NoError(t, s.Acknowledge(models.ReminderEyeCare, now.Add(1800*time.Second)))
	assert.Equal(t, int64(1800), stateFor(t, s, models.ReminderBreak).ElapsedActiveSeconds)
	assert.Zero(t, stateFor(t, s, models.ReminderEyeCare).ElapsedActiveSeconds)
}

func TestAcknowledgeUnknownKind(t *testing.T) {
	s := newTestScheduler(t, allIntervals())
	err := s.Acknowledge(models.ReminderKind("nap"), time.Now())
	assert.Error(t, err)
}

func TestRestoreAdoptsDynamicStateOnly(t *testing.T) {
	s := newTestScheduler(t, allIntervals())
	firedAt := time.Date(2026, 8, 29, 17, 0, 0, 0, time.UTC)

	s.Restore([]models.ReminderState{
		{
			Kind:                 models.ReminderBreak,
			IntervalSeconds:      999, // stale configuration, must be ignored
			ElapsedActiveSeconds: 1500,
			LastFiredAt:          &firedAt,
		},
		{Kind: models.ReminderKind("nap"), ElapsedActiveSeconds: 50},
	})

	st := stateFor(t, s, models.ReminderBreak)
	assert.Equal(t, int64(2700), st.IntervalSeconds)
	assert.Equal(t, int64(1500), st.ElapsedActiveSeconds)
	require.NotNil(t, st.LastFiredAt)
	assert.Equal(t, firedAt, *st.LastFiredAt)

	// Unknown kinds are dropped, known kinds keep counting from the
	// restored elapsed value.
	assert.Len(t, s.States(), 4)
}

func TestRestoreClampsNegativeElapsed(t *testing.T) {
	s := newTestScheduler(t, allIntervals())
	s.Restore([]models.ReminderState{
		{Kind: models.ReminderPosture, ElapsedActiveSeconds: -30},
	})
	assert.Zero(t, stateFor(t, s, models.ReminderPosture).ElapsedActiveSeconds)
}

func TestStatesReturnsCopies(t *testing.T) {
	s := newTestScheduler(t, allIntervals())
	now := time.Now()

	states := s.States()
	states[0].ElapsedActiveSeconds = 9999

	s.Tick(true, now)
	assert.Equal(t, int64(10), stateFor(t, s, states[0].Kind).ElapsedActiveSeconds)
}
