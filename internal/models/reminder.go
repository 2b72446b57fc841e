package models

import "time"

// ReminderKind identifies one of the independent wellness timers.
type ReminderKind string

const (
	ReminderBreak     ReminderKind = "break"
	ReminderPosture   ReminderKind = "posture"
	ReminderEyeCare   ReminderKind = "eye_care"
	ReminderHydration ReminderKind = "hydration"
)

// AllReminderKinds lists every kind the scheduler maintains.
var AllReminderKinds = []ReminderKind{
	ReminderBreak,
	ReminderPosture,
	ReminderEyeCare,
	ReminderHydration,
}

// Valid reports whether k is a known reminder kind.
func (k ReminderKind) Valid() bool {
	switch k {
	case ReminderBreak, ReminderPosture, ReminderEyeCare, ReminderHydration:
		return true
	}
	return false
}

// ReminderState is the persisted countdown state for one reminder kind.
// ElapsedActiveSeconds accrues only while the user is active and resets to
// zero on fire or acknowledgment.
type ReminderState struct {
	Kind                 ReminderKind `json:"kind"`
	IntervalSeconds      int64        `json:"interval_seconds"`
	ElapsedActiveSeconds int64        `json:"elapsed_active_seconds"`
	LastFiredAt          *time.Time   `json:"last_fired_at,omitempty"`
	LastAcknowledgedAt   *time.Time   `json:"last_acknowledged_at,omitempty"`
}

// Due reports whether the reminder has fired since it was last acknowledged
// and is still waiting for the user to act on it.
func (r ReminderState) Due() bool {
	if r.LastFiredAt == nil {
		return false
	}
	if r.LastAcknowledgedAt == nil {
		return true
	}
	return r.LastFiredAt.After(*r.LastAcknowledgedAt)
}

// HealthEvent is one journal row: a reminder firing or an acknowledgment.
type HealthEvent struct {
	ID        int64        `json:"id"`
	Kind      ReminderKind `json:"kind"`
	EventType string       `json:"event_type"` // fired, acknowledged
	Timestamp time.Time    `json:"timestamp"`
}

const (
	HealthEventFired        = "fired"
	HealthEventAcknowledged = "acknowledged"
)
