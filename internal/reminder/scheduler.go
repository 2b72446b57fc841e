package reminder

import (
	"fmt"
	"time"

	"Mansoor88-6/wellness-agent/internal/models"

	"go.uber.org/zap"
)

// Scheduler maintains one countdown per reminder kind. All four kinds run
// the same logic, parameterized by interval; they accrue elapsed time only
// on active ticks and are fully independent of each other.
type Scheduler struct {
	states       map[models.ReminderKind]*models.ReminderState
	tickInterval int64 // seconds
	logger       *zap.Logger
}

// New creates a scheduler with one state per configured kind, all at zero.
func New(intervals map[models.ReminderKind]int64, tickInterval time.Duration, logger *zap.Logger) *Scheduler {
	states := make(map[models.ReminderKind]*models.ReminderState, len(intervals))
	for _, kind := range models.AllReminderKinds {
		interval, ok := intervals[kind]
		if !ok {
			continue
		}
		states[kind] = &models.ReminderState{
			Kind:            kind,
			IntervalSeconds: interval,
		}
	}
	return &Scheduler{
		states:       states,
		tickInterval: int64(tickInterval.Seconds()),
		logger:       logger,
	}
}

// Restore adopts persisted countdown state for kinds the scheduler knows.
// Intervals stay as configured; only the dynamic fields are recovered, so
// daemon downtime never accrues reminder time.
func (s *Scheduler) Restore(persisted []models.ReminderState) {
	for _, p := range persisted {
		st, ok := s.states[p.Kind]
		if !ok {
			continue
		}
		st.ElapsedActiveSeconds = p.ElapsedActiveSeconds
		st.LastFiredAt = p.LastFiredAt
		st.LastAcknowledgedAt = p.LastAcknowledgedAt
		if st.ElapsedActiveSeconds < 0 {
			st.ElapsedActiveSeconds = 0
		}
	}
	s.logger.Info("Reminder state restored",
		zap.Int("kinds", len(persisted)),
	)
}

// Tick advances every reminder by one tick. Idle ticks do not accrue: a user
// who stepped away is already resting. Returns the states that fired.
func (s *Scheduler) Tick(active bool, now time.Time) []models.ReminderState {
	if !active {
		return nil
	}

	var fired []models.ReminderState
	for _, kind := range models.AllReminderKinds {
		st, ok := s.states[kind]
		if !ok {
			continue
		}
		st.ElapsedActiveSeconds += s.tickInterval
		if st.ElapsedActiveSeconds < st.IntervalSeconds {
			continue
		}

		firedAt := now
		st.LastFiredAt = &firedAt
		st.ElapsedActiveSeconds = 0

		s.logger.Info("Reminder fired",
			zap.String("kind", string(kind)),
			zap.Int64("interval_seconds", st.IntervalSeconds),
		)
		fired = append(fired, *st)
	}
	return fired
}

// Acknowledge resets the countdown for one kind regardless of whether it had
// fired, preventing a double nag shortly after a manually taken break.
func (s *Scheduler) Acknowledge(kind models.ReminderKind, now time.Time) error {
	st, ok := s.states[kind]
	if !ok {
		return fmt.Errorf("unknown reminder kind: %s", kind)
	}

	st.ElapsedActiveSeconds = 0
	ackAt := now
	st.LastAcknowledgedAt = &ackAt

	s.logger.Info("Reminder acknowledged",
		zap.String("kind", string(kind)),
	)
	return nil
}

// States returns copies of every reminder state in a stable kind order.
func (s *Scheduler) States() []models.ReminderState {
	out := make([]models.ReminderState, 0, len(s.states))
	for _, kind := range models.AllReminderKinds {
		if st, ok := s.states[kind]; ok {
			out = append(out, *st)
		}
	}
	return out
}
