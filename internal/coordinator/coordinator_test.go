package coordinator

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"Mansoor88-6/wellness-agent/internal/advisor"
	"Mansoor88-6/wellness-agent/internal/database"
	"Mansoor88-6/wellness-agent/internal/journal"
	"Mansoor88-6/wellness-agent/internal/models"
	"Mansoor88-6/wellness-agent/internal/reminder"
	"Mansoor88-6/wellness-agent/internal/repository"
	"Mansoor88-6/wellness-agent/internal/sampler"
	"Mansoor88-6/wellness-agent/internal/segmenter"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// fakePlatform lets tests drive the sampler without an OS behind it.
type fakePlatform struct {
	mu      sync.Mutex
	process string
	idle    time.Duration
}

func (f *fakePlatform) GetForegroundProcess() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.process, nil
}

func (f *fakePlatform) GetIdleDuration() (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.idle, nil
}

func (f *fakePlatform) set(process string, idle time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.process = process
	f.idle = idle
}

type testHarness struct {
	coord        *Coordinator
	platform     *fakePlatform
	sessionRepo  *repository.SessionRepository
	reminderRepo *repository.ReminderRepository
	journal      *journal.Journal
}

func setupCoordinator(t *testing.T) *testHarness {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test_wellness.db")
	db, err := database.New(dbPath, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})

	fake := &fakePlatform{process: "code"}
	tick := 10 * time.Second
	log := zap.NewNop()

	sessionRepo := repository.NewSessionRepository(db.DB)
	reminderRepo := repository.NewReminderRepository(db.DB)
	hj := journal.New(db.DB, log)

	coord := New(
		sampler.New(fake, tick, log),
		segmenter.New(300*time.Second, tick, log),
		reminder.New(map[models.ReminderKind]int64{
			models.ReminderBreak:   2700,
			models.ReminderEyeCare: 1200,
		}, tick, log),
		advisor.Policy{
			PeakStartMinute:         0,
			PeakEndMinute:           24 * 60,
			SustainedSessionSeconds: 14400,
		},
		sessionRepo,
		reminderRepo,
		hj,
		nil,
		tick,
		log,
	)

	return &testHarness{
		coord:        coord,
		platform:     fake,
		sessionRepo:  sessionRepo,
		reminderRepo: reminderRepo,
		journal:      hj,
	}
}

func TestFreshStartOpensSessionOnActivity(t *testing.T) {
	h := setupCoordinator(t)

	require.NoError(t, h.coord.Start())
	// The loop's initial tick sees fresh input and ends the recovery gap.
	h.coord.Tick()

	status := h.coord.Status()
	assert.Equal(t, string(segmenter.StateActive), status.State)
	require.NotNil(t, status.Session)
	assert.Equal(t, "code", status.Session.DominantProcess)

	open, err := h.sessionRepo.LoadOpenSession()
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, status.Session.ID, open.ID)

	h.coord.Stop()

	// Shutdown closes the session so nothing stays open across restarts.
	open, err = h.sessionRepo.LoadOpenSession()
	require.NoError(t, err)
	assert.Nil(t, open)
	openGap, err := h.sessionRepo.LoadOpenGap()
	require.NoError(t, err)
	assert.Nil(t, openGap)
}

func TestRecoveryClosesStaleSpans(t *testing.T) {
	h := setupCoordinator(t)
	h.platform.set("code", 400*time.Second) // machine is idle at startup

	// Simulate a crash: an open session and an open gap left behind.
	staleStart := time.Now().Add(-2 * time.Hour)
	stale := &models.WorkSession{
		ID:            uuid.New().String(),
		StartTime:     staleStart,
		ActiveSeconds: 1800,
	}
	require.NoError(t, h.sessionRepo.CreateSession(stale))
	require.NoError(t, h.sessionRepo.CreateGap(&models.IdleGap{StartTime: staleStart.Add(-time.Hour)}))

	require.NoError(t, h.reminderRepo.SaveStates([]models.ReminderState{
		{Kind: models.ReminderBreak, IntervalSeconds: 2700, ElapsedActiveSeconds: 900},
	}))

	require.NoError(t, h.coord.Start())
	defer h.coord.Stop()

	// The stale session was closed at its last known active instant.
	sessions, err := h.sessionRepo.ListSessions(10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.NotNil(t, sessions[0].EndTime)
	assert.WithinDuration(t, staleStart.Add(1800*time.Second), *sessions[0].EndTime, time.Second)

	// Downtime accrued nothing: the restored countdown is exactly as saved.
	status := h.coord.Status()
	assert.Equal(t, string(segmenter.StateIdle), status.State)
	for _, st := range status.Reminders {
		if st.Kind == models.ReminderBreak {
			assert.Equal(t, int64(900), st.ElapsedActiveSeconds)
		}
	}

	// A fresh recovery gap is open; the crashed one is not.
	openGap, err := h.sessionRepo.LoadOpenGap()
	require.NoError(t, err)
	require.NotNil(t, openGap)
	assert.WithinDuration(t, time.Now(), openGap.StartTime, 5*time.Second)
}

func TestIdleToActiveTransitionEmitsRecommendation(t *testing.T) {
	h := setupCoordinator(t)
	h.platform.set("code", 400*time.Second)

	var mu sync.Mutex
	var recs []models.Recommendation
	h.coord.OnRecommendation(func(r models.Recommendation) {
		mu.Lock()
		recs = append(recs, r)
		mu.Unlock()
	})

	require.NoError(t, h.coord.Start())
	defer h.coord.Stop()

	// User comes back.
	h.platform.set("browser", time.Second)
	h.coord.Tick()

	status := h.coord.Status()
	assert.Equal(t, string(segmenter.StateActive), status.State)

	// The recovery gap is closed and a session row exists.
	openGap, err := h.sessionRepo.LoadOpenGap()
	require.NoError(t, err)
	assert.Nil(t, openGap)
	open, err := h.sessionRepo.LoadOpenSession()
	require.NoError(t, err)
	require.NotNil(t, open)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, recs)
	last := recs[len(recs)-1]
	assert.Equal(t, models.CategoryWork, last.Category)
}

func TestAcknowledgePersistsAndJournals(t *testing.T) {
	h := setupCoordinator(t)
	require.NoError(t, h.coord.Start())
	defer h.coord.Stop()

	require.NoError(t, h.coord.Acknowledge(models.ReminderBreak))
	assert.Error(t, h.coord.Acknowledge(models.ReminderKind("nap")))

	states, err := h.reminderRepo.LoadStates()
	require.NoError(t, err)
	var found bool
	for _, st := range states {
		if st.Kind == models.ReminderBreak {
			found = true
			assert.NotNil(t, st.LastAcknowledgedAt)
		}
	}
	assert.True(t, found)

	events, err := h.journal.Recent(10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.HealthEventAcknowledged, events[0].EventType)
	assert.Equal(t, models.ReminderBreak, events[0].Kind)
}

func TestQueryDoesNotAdvanceTimers(t *testing.T) {
	h := setupCoordinator(t)
	require.NoError(t, h.coord.Start())
	defer h.coord.Stop()
	h.coord.Tick()

	before := h.coord.Status()
	for i := 0; i < 50; i++ {
		h.coord.Query()
	}
	after := h.coord.Status()

	for i := range before.Reminders {
		assert.Equal(t, before.Reminders[i].ElapsedActiveSeconds, after.Reminders[i].ElapsedActiveSeconds)
	}
}

func TestStatusLogsRepositoryFailures(t *testing.T) {
	// A broken store must surface in the logs rather than read as a
	// zero-activity day.
	dbPath := filepath.Join(t.TempDir(), "test_wellness.db")
	db, err := database.New(dbPath, zap.NewNop())
	require.NoError(t, err)

	core, logs := observer.New(zapcore.ErrorLevel)
	log := zap.New(core)
	tick := 10 * time.Second

	coord := New(
		sampler.New(&fakePlatform{process: "code"}, tick, log),
		segmenter.New(300*time.Second, tick, log),
		reminder.New(map[models.ReminderKind]int64{models.ReminderBreak: 2700}, tick, log),
		advisor.Policy{PeakEndMinute: 24 * 60, SustainedSessionSeconds: 14400},
		repository.NewSessionRepository(db.DB),
		repository.NewReminderRepository(db.DB),
		journal.New(db.DB, log),
		nil,
		tick,
		log,
	)

	require.NoError(t, db.Close())

	status := coord.Status()
	assert.Zero(t, status.ActiveSecsToday)
	assert.Zero(t, status.SessionsToday)
	assert.NotZero(t, logs.Len(), "expected repository failures to be logged")
}
