package advisor

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"Mansoor88-6/wellness-agent/internal/config"
	"Mansoor88-6/wellness-agent/internal/models"
)

// Policy holds the clock windows and ceilings the decision list evaluates
// against. Minutes are minutes after local midnight.
type Policy struct {
	LateNightStartMinute    int
	LateNightEndMinute      int
	PeakStartMinute         int
	PeakEndMinute           int
	SustainedSessionSeconds int64
}

// PolicyFromConfig converts validated config windows into a Policy.
func PolicyFromConfig(cfg *config.Config) (Policy, error) {
	p := Policy{SustainedSessionSeconds: int64(cfg.Advisor.SustainedSession)}

	var err error
	if p.LateNightStartMinute, err = config.ParseClock(cfg.Advisor.LateNightStart); err != nil {
		return Policy{}, fmt.Errorf("late night start: %w", err)
	}
	if p.LateNightEndMinute, err = config.ParseClock(cfg.Advisor.LateNightEnd); err != nil {
		return Policy{}, fmt.Errorf("late night end: %w", err)
	}
	if p.PeakStartMinute, err = config.ParseClock(cfg.Advisor.PeakStart); err != nil {
		return Policy{}, fmt.Errorf("peak start: %w", err)
	}
	if p.PeakEndMinute, err = config.ParseClock(cfg.Advisor.PeakEnd); err != nil {
		return Policy{}, fmt.Errorf("peak end: %w", err)
	}
	return p, nil
}

// Input is a snapshot of everything the decision depends on. The advisor
// holds no state of its own and reads no clock beyond the passed-in now.
type Input struct {
	Session     *models.WorkSession // open session, or nil
	GapOpen     bool
	Reminders   []models.ReminderState
	PendingTask string // opaque text from the task collaborator, may be empty
	Degraded    bool   // persisted state could not be loaded
}

// Recommend evaluates the precedence list top to bottom, first match wins:
//
//  1. late-night window        -> REST  (never overridden by anything)
//  2. degraded engine          -> BREAK (state unloadable, err toward rest)
//  3. sustained session        -> BREAK
//  4. due, unacked reminders   -> BREAK (shortest interval first)
//  5. peak hours, not idle     -> WORK
//  6. fallback                 -> BREAK (err toward rest)
//
// The late-night window needs only the passed-in clock, so it holds even
// when persisted state could not be loaded.
//
// Identical inputs always produce an identical Recommendation.
func Recommend(now time.Time, in Input, p Policy) models.Recommendation {
	minute := now.Hour()*60 + now.Minute()

	if minute >= p.LateNightStartMinute && minute < p.LateNightEndMinute {
		return models.Recommendation{
			Timestamp: now,
			Category:  models.CategoryRest,
			Message:   "It is the middle of the night. Strongly recommend you stop and rest.",
			Reasons:   []string{models.ReasonLateNight},
		}
	}

	if in.Degraded {
		return models.Recommendation{
			Timestamp: now,
			Category:  models.CategoryBreak,
			Message:   "State could not be loaded; taking a break is the safe call.",
			Reasons:   []string{models.ReasonEngineDegraded},
		}
	}

	if in.Session.Open() && in.Session.ActiveSeconds >= p.SustainedSessionSeconds &&
		!breakAcknowledgedSince(in.Reminders, in.Session.StartTime) {
		hours := float64(in.Session.ActiveSeconds) / 3600
		return models.Recommendation{
			Timestamp: now,
			Category:  models.CategoryBreak,
			Message:   fmt.Sprintf("You have been working %.1f hours without a break. Step away for a few minutes.", hours),
			Reasons:   []string{models.ReasonSustainedSession},
		}
	}

	if due := dueReminders(in.Reminders); len(due) > 0 {
		reasons := make([]string, len(due))
		for i, r := range due {
			reasons[i] = string(r.Kind)
		}
		return models.Recommendation{
			Timestamp: now,
			Category:  models.CategoryBreak,
			Message:   fmt.Sprintf("Reminders waiting: %s. Take a short break.", strings.Join(reasons, ", ")),
			Reasons:   reasons,
		}
	}

	if minute >= p.PeakStartMinute && minute < p.PeakEndMinute && !in.GapOpen {
		return models.Recommendation{
			Timestamp: now,
			Category:  models.CategoryWork,
			Message:   workMessage(in),
			Reasons:   []string{models.ReasonPeakHours},
		}
	}

	return models.Recommendation{
		Timestamp: now,
		Category:  models.CategoryBreak,
		Message:   "Outside your productive hours. A break is the better default.",
		Reasons:   []string{models.ReasonOffHours},
	}
}

// dueReminders returns fired-but-unacknowledged reminders ordered by
// interval ascending: shorter intervals indicate more frequent strain and
// surface first.
func dueReminders(states []models.ReminderState) []models.ReminderState {
	var due []models.ReminderState
	for _, st := range states {
		if st.Due() {
			due = append(due, st)
		}
	}
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].IntervalSeconds < due[j].IntervalSeconds
	})
	return due
}

func breakAcknowledgedSince(states []models.ReminderState, since time.Time) bool {
	for _, st := range states {
		if st.Kind != models.ReminderBreak {
			continue
		}
		return st.LastAcknowledgedAt != nil && st.LastAcknowledgedAt.After(since)
	}
	return false
}

func workMessage(in Input) string {
	var b strings.Builder
	b.WriteString("Peak hours, keep at it.")
	if in.Session.Open() && in.Session.DominantProcess != "" {
		fmt.Fprintf(&b, " Most of this session has been in %s.", in.Session.DominantProcess)
	}
	if in.PendingTask != "" {
		fmt.Fprintf(&b, " Longest pending task: %s.", in.PendingTask)
	}
	return b.String()
}
