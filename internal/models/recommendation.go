package models

import "time"

// Category is the advice bucket a recommendation falls into.
type Category string

const (
	CategoryWork  Category = "work"
	CategoryBreak Category = "break"
	CategoryRest  Category = "rest"
)

// Reason tags attached to recommendations. Reminder kinds are also used as
// reason tags directly when they are the deciding factor.
const (
	ReasonLateNight        = "late_night"
	ReasonSustainedSession = "sustained_session"
	ReasonPeakHours        = "peak_hours"
	ReasonOffHours         = "off_hours"
	ReasonEngineDegraded   = "engine_degraded"
)

// Recommendation is the engine's single current-best advice. It is derived
// from session, reminder and clock state on every query and never persisted.
type Recommendation struct {
	Timestamp time.Time `json:"timestamp"`
	Category  Category  `json:"category"`
	Message   string    `json:"message"`
	Reasons   []string  `json:"reasons"`
}
