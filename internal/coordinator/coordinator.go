package coordinator

import (
	"sync"
	"time"

	"Mansoor88-6/wellness-agent/internal/advisor"
	"Mansoor88-6/wellness-agent/internal/journal"
	"Mansoor88-6/wellness-agent/internal/models"
	"Mansoor88-6/wellness-agent/internal/reminder"
	"Mansoor88-6/wellness-agent/internal/repository"
	"Mansoor88-6/wellness-agent/internal/sampler"
	"Mansoor88-6/wellness-agent/internal/segmenter"

	"go.uber.org/zap"
)

// TaskProvider supplies the longest-pending-task text used in work
// recommendations. Implemented by the task service; may be nil.
type TaskProvider interface {
	LongestPendingTask() string
}

// Status is a read-only snapshot for reporting commands.
type Status struct {
	State           string                 `json:"state"`
	Session         *models.WorkSession    `json:"session,omitempty"`
	Gap             *models.IdleGap        `json:"gap,omitempty"`
	Reminders       []models.ReminderState `json:"reminders"`
	SkewCount       int64                  `json:"skew_count"`
	SampleFailures  int64                  `json:"sample_failures"`
	ActiveSecsToday int64                  `json:"active_seconds_today"`
	SessionsToday   int                    `json:"sessions_today"`
}

// Coordinator owns the tick loop and the authoritative in-memory copy of
// session, gap, and reminder state. It is the single writer to persistence.
// Queries read the same state under a short-lived lock that is never held
// across the OS polling call.
type Coordinator struct {
	sampler      *sampler.Sampler
	segmenter    *segmenter.Segmenter
	scheduler    *reminder.Scheduler
	policy       advisor.Policy
	sessionRepo  *repository.SessionRepository
	reminderRepo *repository.ReminderRepository
	journal      *journal.Journal
	tasks        TaskProvider
	tickInterval time.Duration
	logger       *zap.Logger

	onRecommendation func(models.Recommendation)
	onReminderFired  func(models.ReminderState)

	degraded  bool
	openGapID int64

	mu       sync.Mutex
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// New creates a coordinator.
func New(
	smp *sampler.Sampler,
	seg *segmenter.Segmenter,
	sched *reminder.Scheduler,
	policy advisor.Policy,
	sessionRepo *repository.SessionRepository,
	reminderRepo *repository.ReminderRepository,
	hj *journal.Journal,
	tasks TaskProvider,
	tickInterval time.Duration,
	logger *zap.Logger,
) *Coordinator {
	return &Coordinator{
		sampler:      smp,
		segmenter:    seg,
		scheduler:    sched,
		policy:       policy,
		sessionRepo:  sessionRepo,
		reminderRepo: reminderRepo,
		journal:      hj,
		tasks:        tasks,
		tickInterval: tickInterval,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

// OnRecommendation registers the handler for recommendation events. Must be
// called before Start.
func (c *Coordinator) OnRecommendation(fn func(models.Recommendation)) {
	c.onRecommendation = fn
}

// OnReminderFired registers the handler for reminder-fired events. Must be
// called before Start.
func (c *Coordinator) OnReminderFired(fn func(models.ReminderState)) {
	c.onReminderFired = fn
}

// Start recovers persisted state and launches the tick loop.
func (c *Coordinator) Start() error {
	c.recover()

	c.wg.Add(1)
	go c.tickLoop()

	c.logger.Info("Coordinator started",
		zap.Duration("tick_interval", c.tickInterval),
		zap.Bool("degraded", c.degraded),
	)
	return nil
}

// recover loads the most recent persisted state. Time the daemon was down
// counts as neither active nor idle: stale spans are closed at their last
// recorded moment and the segmenter resumes in IDLE until a fresh sample
// confirms activity. A total load failure flips the degraded flag instead
// of aborting.
func (c *Coordinator) recover() {
	now := time.Now()

	states, err := c.reminderRepo.LoadStates()
	if err != nil {
		c.logger.Error("Failed to load reminder state, running degraded", zap.Error(err))
		c.degraded = true
	} else {
		c.scheduler.Restore(states)
	}

	if stale, err := c.sessionRepo.LoadOpenSession(); err != nil {
		c.logger.Error("Failed to load open session", zap.Error(err))
		c.degraded = true
	} else if stale != nil {
		// Best known last-active instant: session start plus accrued
		// active time.
		end := stale.StartTime.Add(time.Duration(stale.ActiveSeconds) * time.Second)
		stale.EndTime = &end
		if err := c.sessionRepo.UpdateSession(stale); err != nil {
			c.logger.Error("Failed to close stale session", zap.Error(err))
		} else {
			c.logger.Info("Closed stale work session from previous run",
				zap.String("session_id", stale.ID),
				zap.Time("end_time", end),
			)
		}
	}

	if staleGap, err := c.sessionRepo.LoadOpenGap(); err != nil {
		c.logger.Error("Failed to load open gap", zap.Error(err))
		c.degraded = true
	} else if staleGap != nil {
		if err := c.sessionRepo.CloseGap(staleGap.ID, staleGap.StartTime); err != nil {
			c.logger.Error("Failed to close stale gap", zap.Error(err))
		}
	}

	c.segmenter.ResumeIdle(now)
	gap := c.segmenter.CurrentGap()
	if gap != nil {
		if err := c.sessionRepo.CreateGap(gap); err != nil {
			c.logger.Error("Failed to persist recovery gap", zap.Error(err))
		} else {
			c.openGapID = gap.ID
		}
	}
}

// Stop shuts the tick loop down, closes whichever span is open at the
// shutdown timestamp, and flushes state so no time is silently lost.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	select {
	case <-c.stopChan:
		c.mu.Unlock()
		return
	default:
		close(c.stopChan)
	}
	c.mu.Unlock()

	c.wg.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	closedSession, closedGap := c.segmenter.CloseAt(now)
	if closedSession != nil {
		if err := c.sessionRepo.UpdateSession(closedSession); err != nil {
			c.logger.Error("Failed to persist session on shutdown", zap.Error(err))
		}
	}
	if closedGap != nil && c.openGapID != 0 {
		if err := c.sessionRepo.CloseGap(c.openGapID, *closedGap.EndTime); err != nil {
			c.logger.Error("Failed to persist gap on shutdown", zap.Error(err))
		}
		c.openGapID = 0
	}

	if err := c.reminderRepo.SaveStates(c.scheduler.States()); err != nil {
		c.logger.Error("Failed to persist reminder state on shutdown", zap.Error(err))
	}

	c.logger.Info("Coordinator stopped")
}

func (c *Coordinator) tickLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	// Initial tick so the first sample does not wait a full interval.
	c.Tick()

	// One status line roughly every five minutes at the default tick.
	const statusLogEvery = 30
	ticks := 0

	for {
		select {
		case <-ticker.C:
			c.Tick()
			ticks++
			if ticks%statusLogEvery == 0 {
				c.logStatus()
			}
		case <-c.stopChan:
			return
		}
	}
}

func (c *Coordinator) logStatus() {
	c.mu.Lock()
	state := c.segmenter.State()
	session := c.segmenter.CurrentSession()
	failures := c.sampler.FailureCount()
	c.mu.Unlock()

	fields := []zap.Field{
		zap.String("state", string(state)),
		zap.Int64("sample_failures", failures),
	}
	if session != nil {
		fields = append(fields,
			zap.Int64("session_active_seconds", session.ActiveSeconds),
			zap.String("dominant_process", session.DominantProcess),
		)
	}
	c.logger.Info("Engine status", fields...)
}

// Tick drives one Sampler -> Segmenter -> Scheduler pass and persists any
// state transitions. The OS query happens before the lock is taken so a slow
// platform call never blocks Query.
func (c *Coordinator) Tick() {
	sample := c.sampler.Sample()

	c.mu.Lock()

	res := c.segmenter.Observe(sample)
	c.persistTransitions(res)

	fired := c.scheduler.Tick(res.Active, sample.Timestamp)
	if res.Active || len(fired) > 0 {
		if err := c.reminderRepo.SaveStates(c.scheduler.States()); err != nil {
			c.logger.Error("Failed to persist reminder state", zap.Error(err))
		}
	}
	for _, st := range fired {
		if err := c.journal.Append(st.Kind, models.HealthEventFired, sample.Timestamp); err != nil {
			c.logger.Error("Failed to journal reminder fire", zap.Error(err))
		}
	}

	var rec *models.Recommendation
	if len(fired) > 0 || res.Transitioned {
		r := c.recommendLocked(sample.Timestamp)
		rec = &r
	}
	c.mu.Unlock()

	// Callbacks run outside the lock.
	for _, st := range fired {
		if c.onReminderFired != nil {
			c.onReminderFired(st)
		}
	}
	if rec != nil && c.onRecommendation != nil {
		c.onRecommendation(*rec)
	}
}

func (c *Coordinator) persistTransitions(res segmenter.Result) {
	if res.ClosedSession != nil {
		if err := c.sessionRepo.UpdateSession(res.ClosedSession); err != nil {
			c.logger.Error("Failed to persist closed session", zap.Error(err))
		}
	}
	if res.ClosedGap != nil && c.openGapID != 0 {
		if err := c.sessionRepo.CloseGap(c.openGapID, *res.ClosedGap.EndTime); err != nil {
			c.logger.Error("Failed to persist closed gap", zap.Error(err))
		}
		c.openGapID = 0
	}

	if res.Transitioned {
		switch c.segmenter.State() {
		case segmenter.StateActive:
			if session := c.segmenter.CurrentSession(); session != nil {
				if err := c.sessionRepo.CreateSession(session); err != nil {
					c.logger.Error("Failed to persist new session", zap.Error(err))
				}
			}
		case segmenter.StateIdle:
			if gap := c.segmenter.CurrentGap(); gap != nil {
				if err := c.sessionRepo.CreateGap(gap); err != nil {
					c.logger.Error("Failed to persist new gap", zap.Error(err))
				} else {
					c.openGapID = gap.ID
				}
			}
		}
	} else if res.Active {
		// Keep the open session's counters fresh so restart recovery has
		// an accurate last-active instant.
		if session := c.segmenter.CurrentSession(); session != nil {
			if err := c.sessionRepo.UpdateSession(session); err != nil {
				c.logger.Error("Failed to refresh open session", zap.Error(err))
			}
		}
	}
}

// Query returns a recommendation computed from the latest state without
// advancing the tick, so polling for advice never perturbs the timers.
func (c *Coordinator) Query() models.Recommendation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recommendLocked(time.Now())
}

func (c *Coordinator) recommendLocked(now time.Time) models.Recommendation {
	var pendingTask string
	if c.tasks != nil {
		pendingTask = c.tasks.LongestPendingTask()
	}

	return advisor.Recommend(now, advisor.Input{
		Session:     c.segmenter.CurrentSession(),
		GapOpen:     c.segmenter.CurrentGap() != nil,
		Reminders:   c.scheduler.States(),
		PendingTask: pendingTask,
		Degraded:    c.degraded,
	}, c.policy)
}

// Acknowledge resets one reminder kind, persists the change, and journals
// the acknowledgment.
func (c *Coordinator) Acknowledge(kind models.ReminderKind) error {
	now := time.Now()

	c.mu.Lock()
	err := c.scheduler.Acknowledge(kind, now)
	if err == nil {
		if saveErr := c.reminderRepo.SaveStates(c.scheduler.States()); saveErr != nil {
			c.logger.Error("Failed to persist acknowledgment", zap.Error(saveErr))
		}
	}
	c.mu.Unlock()
	if err != nil {
		return err
	}

	if jErr := c.journal.Append(kind, models.HealthEventAcknowledged, now); jErr != nil {
		c.logger.Error("Failed to journal acknowledgment", zap.Error(jErr))
	}
	return nil
}

// ActiveSecondsToday sums active time since local midnight, including the
// open session.
func (c *Coordinator) ActiveSecondsToday() (int64, error) {
	midnight := startOfDay(time.Now())

	closed, err := c.sessionRepo.ActiveSecondsSince(midnight)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	session := c.segmenter.CurrentSession()
	c.mu.Unlock()

	if session != nil && !session.StartTime.Before(midnight) {
		closed += session.ActiveSeconds
	}
	return closed, nil
}

// SessionCountToday counts sessions started since local midnight.
func (c *Coordinator) SessionCountToday() (int, error) {
	return c.sessionRepo.SessionCountSince(startOfDay(time.Now()))
}

// Status returns a snapshot for the status endpoint and CLI.
func (c *Coordinator) Status() Status {
	activeToday, err := c.ActiveSecondsToday()
	if err != nil {
		c.logger.Error("Failed to read today's active seconds", zap.Error(err))
	}
	sessionsToday, err := c.SessionCountToday()
	if err != nil {
		c.logger.Error("Failed to count today's sessions", zap.Error(err))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return Status{
		State:           string(c.segmenter.State()),
		Session:         c.segmenter.CurrentSession(),
		Gap:             c.segmenter.CurrentGap(),
		Reminders:       c.scheduler.States(),
		SkewCount:       c.segmenter.SkewCount(),
		SampleFailures:  c.sampler.FailureCount(),
		ActiveSecsToday: activeToday,
		SessionsToday:   sessionsToday,
	}
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
