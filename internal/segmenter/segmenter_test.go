package segmenter

import (
	"testing"
	"time"

	"Mansoor88-6/wellness-agent/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testIdleThreshold = 300 * time.Second
	testTickInterval  = 10 * time.Second
)

func newTestSegmenter(t *testing.T) *Segmenter {
	t.Helper()
	return New(testIdleThreshold, testTickInterval, zap.NewNop())
}

func sample(ts time.Time, process string, idle float64) models.ActivitySample {
	return models.ActivitySample{
		Timestamp:         ts,
		ForegroundProcess: process,
		IdleSeconds:       idle,
	}
}

func TestColdStartActive(t *testing.T) {
	sg := newTestSegmenter(t)
	start := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	res := sg.Observe(sample(start, "code", 1))

	assert.True(t, res.Transitioned)
	assert.True(t, res.Active)
	assert.Nil(t, res.ClosedSession)
	assert.Equal(t, StateActive, sg.State())

	session := sg.CurrentSession()
	require.NotNil(t, session)
	assert.Equal(t, start, session.StartTime)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, int64(10), session.ActiveSeconds)
}

func TestColdStartIdleOpensGapNotSession(t *testing.T) {
	sg := newTestSegmenter(t)
	start := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	res := sg.Observe(sample(start, "code", 600))

	assert.True(t, res.Transitioned)
	assert.False(t, res.Active)
	assert.Equal(t, StateIdle, sg.State())
	assert.Nil(t, sg.CurrentSession())

	gap := sg.CurrentGap()
	require.NotNil(t, gap)
	// The gap reaches back to the last real input, not the daemon start.
	assert.Equal(t, start.Add(-600*time.Second), gap.StartTime)
}

func TestActiveToIdleClosesSessionAtLastInput(t *testing.T) {
	sg := newTestSegmenter(t)
	start := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	sg.Observe(sample(start, "code", 0))
	for i := 1; i <= 5; i++ {
		sg.Observe(sample(start.Add(time.Duration(i)*testTickInterval), "code", 2))
	}

	// Idle crosses the threshold 310 seconds after the last tick; the last
	// real input was 305 seconds before this sample.
	ts := start.Add(5*testTickInterval + 310*time.Second)
	res := sg.Observe(sample(ts, "code", 305))

	require.NotNil(t, res.ClosedSession)
	assert.True(t, res.Transitioned)
	assert.False(t, res.Active)
	assert.Equal(t, StateIdle, sg.State())

	closed := res.ClosedSession
	require.NotNil(t, closed.EndTime)
	assert.Equal(t, ts.Add(-305*time.Second), *closed.EndTime)
	assert.Equal(t, "code", closed.DominantProcess)
	assert.Equal(t, int64(60), closed.ActiveSeconds)

	// The gap begins exactly where the session ended.
	gap := sg.CurrentGap()
	require.NotNil(t, gap)
	assert.Equal(t, *closed.EndTime, gap.StartTime)
}

func TestIdleToActiveClosesGapAndOpensSession(t *testing.T) {
	sg := newTestSegmenter(t)
	start := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	sg.Observe(sample(start, "code", 600))

	// Still idle: nothing changes.
	res := sg.Observe(sample(start.Add(testTickInterval), "code", 610))
	assert.False(t, res.Transitioned)
	assert.Nil(t, res.ClosedGap)

	// Fresh input within the tick ends the gap.
	ts := start.Add(2 * testTickInterval)
	res = sg.Observe(sample(ts, "browser", 3))

	require.NotNil(t, res.ClosedGap)
	assert.True(t, res.Transitioned)
	assert.True(t, res.Active)
	assert.Equal(t, StateActive, sg.State())

	require.NotNil(t, res.ClosedGap.EndTime)
	assert.Equal(t, ts, *res.ClosedGap.EndTime)

	session := sg.CurrentSession()
	require.NotNil(t, session)
	assert.Equal(t, ts, session.StartTime)
}

func TestIdleRampTicksNotCredited(t *testing.T) {
	sg := newTestSegmenter(t)
	start := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	sg.Observe(sample(start, "code", 0))
	// Idle grows past the tick interval but stays below the threshold: the
	// session stays open but accrues nothing.
	sg.Observe(sample(start.Add(1*testTickInterval), "code", 12))
	sg.Observe(sample(start.Add(2*testTickInterval), "code", 22))

	session := sg.CurrentSession()
	require.NotNil(t, session)
	assert.Equal(t, int64(10), session.ActiveSeconds)
	assert.Equal(t, StateActive, sg.State())
}

func TestDominantProcessTieBreaksFirstSeen(t *testing.T) {
	sg := newTestSegmenter(t)
	start := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	sg.Observe(sample(start, "editor", 0))
	sg.Observe(sample(start.Add(1*testTickInterval), "browser", 0))
	sg.Observe(sample(start.Add(2*testTickInterval), "editor", 0))
	sg.Observe(sample(start.Add(3*testTickInterval), "browser", 0))

	closed, _ := sg.CloseAt(start.Add(4 * testTickInterval))
	require.NotNil(t, closed)
	assert.Equal(t, "editor", closed.DominantProcess)
}

func TestDominantProcessByCumulativeTime(t *testing.T) {
	sg := newTestSegmenter(t)
	start := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	sg.Observe(sample(start, "editor", 0))
	sg.Observe(sample(start.Add(1*testTickInterval), "browser", 0))
	sg.Observe(sample(start.Add(2*testTickInterval), "browser", 0))

	session := sg.CurrentSession()
	require.NotNil(t, session)
	assert.Equal(t, "browser", session.DominantProcess)
}

func TestEmptyProcessMapsToUnknown(t *testing.T) {
	sg := newTestSegmenter(t)
	start := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	sg.Observe(sample(start, "", 0))

	session := sg.CurrentSession()
	require.NotNil(t, session)
	assert.Equal(t, models.UnknownProcess, session.DominantProcess)
}

func TestBackwardsTimestampClamped(t *testing.T) {
	sg := newTestSegmenter(t)
	start := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	sg.Observe(sample(start, "code", 0))
	sg.Observe(sample(start.Add(-1*time.Minute), "code", 0))

	assert.Equal(t, int64(1), sg.SkewCount())
	assert.Equal(t, StateActive, sg.State())

	// A later close still produces a non-inverted span.
	closed, _ := sg.CloseAt(start.Add(time.Minute))
	require.NotNil(t, closed)
	assert.False(t, closed.EndTime.Before(closed.StartTime))
}

func TestNegativeIdleCountedAsSkew(t *testing.T) {
	sg := newTestSegmenter(t)
	start := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	res := sg.Observe(sample(start, "code", -5))

	assert.True(t, res.Active)
	assert.Equal(t, int64(1), sg.SkewCount())
}

func TestCloseAtIdleClosesGap(t *testing.T) {
	sg := newTestSegmenter(t)
	start := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	sg.Observe(sample(start, "code", 600))
	end := start.Add(time.Minute)
	session, gap := sg.CloseAt(end)

	assert.Nil(t, session)
	require.NotNil(t, gap)
	require.NotNil(t, gap.EndTime)
	assert.Equal(t, end, *gap.EndTime)
	assert.Equal(t, StateCold, sg.State())
}

func TestCloseAtColdIsNoop(t *testing.T) {
	sg := newTestSegmenter(t)

	session, gap := sg.CloseAt(time.Now())
	assert.Nil(t, session)
	assert.Nil(t, gap)
}

func TestResumeIdleRequiresFreshInputForSession(t *testing.T) {
	sg := newTestSegmenter(t)
	start := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	sg.ResumeIdle(start)
	assert.Equal(t, StateIdle, sg.State())
	require.NotNil(t, sg.CurrentGap())
	assert.Equal(t, start, sg.CurrentGap().StartTime)

	// Stale idle keeps the recovery gap open.
	res := sg.Observe(sample(start.Add(testTickInterval), "code", 400))
	assert.False(t, res.Transitioned)

	// Fresh input opens a session.
	res = sg.Observe(sample(start.Add(2*testTickInterval), "code", 1))
	require.NotNil(t, res.ClosedGap)
	assert.True(t, res.Active)
	assert.Equal(t, StateActive, sg.State())
}

func TestTimelinePartitionHasNoOverlapOrHole(t *testing.T) {
	sg := newTestSegmenter(t)
	start := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

	var boundaries []time.Time

	// Work, go idle, come back, work again.
	res := sg.Observe(sample(start, "code", 0))
	require.True(t, res.Transitioned)

	ts := start.Add(400 * time.Second)
	res = sg.Observe(sample(ts, "code", 320))
	require.NotNil(t, res.ClosedSession)
	boundaries = append(boundaries, *res.ClosedSession.EndTime)
	assert.Equal(t, boundaries[0], sg.CurrentGap().StartTime)

	ts = ts.Add(600 * time.Second)
	res = sg.Observe(sample(ts, "mail", 2))
	require.NotNil(t, res.ClosedGap)
	assert.Equal(t, boundaries[0], res.ClosedGap.StartTime)
	boundaries = append(boundaries, *res.ClosedGap.EndTime)
	assert.Equal(t, boundaries[1], sg.CurrentSession().StartTime)

	// Boundaries are strictly ordered.
	assert.True(t, boundaries[0].Before(boundaries[1]))
}
