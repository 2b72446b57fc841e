package models

import "time"

// ActivitySample is a single observation of the user's machine, produced
// once per tick. Samples are ephemeral and never persisted individually.
type ActivitySample struct {
	Timestamp         time.Time `json:"timestamp"`
	ForegroundProcess string    `json:"foreground_process"`
	IdleSeconds       float64   `json:"idle_seconds"`
}

// UnknownProcess is reported when the OS query fails and the sampler
// degrades instead of erroring.
const UnknownProcess = "unknown"

// WorkSession is a contiguous span of detected user activity bounded by
// idle gaps. EndTime is nil while the session is still open.
type WorkSession struct {
	ID              string     `json:"id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	ActiveSeconds   int64      `json:"active_seconds"`
	DominantProcess string     `json:"dominant_process"`
}

// IdleGap is a contiguous span with no detected input beyond the idle
// threshold. Sessions and gaps partition wall-clock time between them.
type IdleGap struct {
	ID        int64      `json:"id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// Open reports whether the session has not been closed yet.
func (s *WorkSession) Open() bool {
	return s != nil && s.EndTime == nil
}

// Open reports whether the gap has not been closed yet.
func (g *IdleGap) Open() bool {
	return g != nil && g.EndTime == nil
}
