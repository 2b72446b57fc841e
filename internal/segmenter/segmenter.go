package segmenter

import (
	"time"

	"Mansoor88-6/wellness-agent/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// State represents the segmenter's position in the activity state machine.
type State string

const (
	// StateCold is the pre-first-sample state. The first span is opened
	// from the first observed sample, so a daemon started on an already
	// idle machine never records a zero-length session.
	StateCold   State = "cold"
	StateActive State = "active"
	StateIdle   State = "idle"
)

// Result describes what a single observed sample did to the timeline.
type Result struct {
	ClosedSession *models.WorkSession
	ClosedGap     *models.IdleGap
	Transitioned  bool
	Active        bool
}

// Segmenter consumes the sample stream and partitions wall-clock time into
// WorkSessions and IdleGaps. Every instant since the first sample belongs to
// exactly one open or closed span. The segmenter owns the open session/gap;
// callers get copies.
type Segmenter struct {
	idleThreshold float64 // seconds
	tickInterval  float64 // seconds
	logger        *zap.Logger

	state   State
	session *models.WorkSession
	gap     *models.IdleGap

	// Per-process active seconds within the open session, plus arrival
	// order for the first-seen tie-break.
	processSeconds map[string]int64
	processOrder   []string

	lastTimestamp time.Time
	skewCount     int64
}

// New creates a segmenter in the cold state.
func New(idleThreshold, tickInterval time.Duration, logger *zap.Logger) *Segmenter {
	return &Segmenter{
		idleThreshold: idleThreshold.Seconds(),
		tickInterval:  tickInterval.Seconds(),
		logger:        logger,
		state:         StateCold,
	}
}

// ResumeIdle puts a fresh segmenter directly into IDLE with a gap opened at
// start. Used on daemon restart: downtime is neither active nor idle, and
// activity must be re-confirmed by a new sample before a session opens.
func (sg *Segmenter) ResumeIdle(start time.Time) {
	sg.state = StateIdle
	sg.gap = &models.IdleGap{StartTime: start}
	sg.lastTimestamp = start
	sg.logger.Info("Segmenter resumed in idle state",
		zap.Time("gap_start", start),
	)
}

// Observe feeds one sample through the state machine.
func (sg *Segmenter) Observe(sample models.ActivitySample) Result {
	ts := sg.clamp(sample.Timestamp)
	idle := sample.IdleSeconds
	if idle < 0 {
		idle = 0
		sg.skewCount++
	}

	switch sg.state {
	case StateCold:
		return sg.observeCold(ts, idle, sample.ForegroundProcess)
	case StateActive:
		return sg.observeActive(ts, idle, sample.ForegroundProcess)
	default:
		return sg.observeIdle(ts, idle, sample.ForegroundProcess)
	}
}

func (sg *Segmenter) observeCold(ts time.Time, idle float64, process string) Result {
	if idle >= sg.idleThreshold {
		// Already idle at startup: open a gap reaching back to the last
		// real input, never a session.
		start := ts.Add(-secondsToDuration(idle))
		sg.state = StateIdle
		sg.gap = &models.IdleGap{StartTime: start}
		sg.logger.Info("Starting in idle state",
			zap.Time("gap_start", start),
			zap.Float64("idle_seconds", idle),
		)
		return Result{Transitioned: true}
	}

	sg.openSession(ts)
	sg.creditTick(idle, process)
	return Result{Transitioned: true, Active: true}
}

func (sg *Segmenter) observeActive(ts time.Time, idle float64, process string) Result {
	if idle >= sg.idleThreshold {
		// The last real input happened idle seconds ago; the session ends
		// there and the gap begins at the same instant.
		end := ts.Add(-secondsToDuration(idle))
		if end.Before(sg.session.StartTime) {
			end = sg.session.StartTime
			sg.skewCount++
		}

		closed := sg.closeSession(end)
		sg.state = StateIdle
		sg.gap = &models.IdleGap{StartTime: end}

		sg.logger.Info("Work session closed",
			zap.String("session_id", closed.ID),
			zap.Int64("active_seconds", closed.ActiveSeconds),
			zap.String("dominant_process", closed.DominantProcess),
		)
		return Result{ClosedSession: closed, Transitioned: true}
	}

	sg.creditTick(idle, process)
	return Result{Active: true}
}

func (sg *Segmenter) observeIdle(ts time.Time, idle float64, process string) Result {
	if idle >= sg.tickInterval {
		// Still no fresh input.
		return Result{}
	}

	// New input detected: the gap ends here and a session begins.
	end := ts
	if end.Before(sg.gap.StartTime) {
		end = sg.gap.StartTime
		sg.skewCount++
	}
	closedGap := sg.gap
	closedGap.EndTime = &end
	sg.gap = nil

	sg.openSession(end)
	sg.creditTick(idle, process)

	sg.logger.Info("Idle gap closed, work session opened",
		zap.Time("gap_start", closedGap.StartTime),
		zap.Time("gap_end", end),
		zap.String("session_id", sg.session.ID),
	)
	return Result{ClosedGap: closedGap, Transitioned: true, Active: true}
}

// CloseAt closes whichever span is open at t. Used on graceful shutdown so
// no time is silently lost across restarts.
func (sg *Segmenter) CloseAt(t time.Time) (*models.WorkSession, *models.IdleGap) {
	t = sg.clamp(t)
	switch sg.state {
	case StateActive:
		closed := sg.closeSession(t)
		sg.state = StateCold
		return closed, nil
	case StateIdle:
		gap := sg.gap
		end := t
		if end.Before(gap.StartTime) {
			end = gap.StartTime
		}
		gap.EndTime = &end
		sg.gap = nil
		sg.state = StateCold
		return nil, gap
	default:
		return nil, nil
	}
}

// State returns the current state.
func (sg *Segmenter) State() State {
	return sg.state
}

// CurrentSession returns a copy of the open session, or nil.
func (sg *Segmenter) CurrentSession() *models.WorkSession {
	if sg.session == nil {
		return nil
	}
	s := *sg.session
	s.DominantProcess = sg.dominantProcess()
	return &s
}

// CurrentGap returns a copy of the open gap, or nil.
func (sg *Segmenter) CurrentGap() *models.IdleGap {
	if sg.gap == nil {
		return nil
	}
	g := *sg.gap
	return &g
}

// SkewCount returns how many timestamps have been clamped or corrected.
func (sg *Segmenter) SkewCount() int64 {
	return sg.skewCount
}

func (sg *Segmenter) openSession(start time.Time) {
	sg.state = StateActive
	sg.session = &models.WorkSession{
		ID:        uuid.New().String(),
		StartTime: start,
	}
	sg.processSeconds = make(map[string]int64)
	sg.processOrder = sg.processOrder[:0]
}

func (sg *Segmenter) closeSession(end time.Time) *models.WorkSession {
	closed := sg.session
	closed.EndTime = &end
	closed.DominantProcess = sg.dominantProcess()
	sg.session = nil
	sg.processSeconds = nil
	sg.processOrder = nil
	return closed
}

// creditTick counts one tick toward the session's active time, but only when
// the sample shows input within the tick. Ticks on the idle ramp toward the
// threshold belong to the upcoming gap, not the session.
func (sg *Segmenter) creditTick(idle float64, process string) {
	if idle >= sg.tickInterval {
		return
	}
	tick := int64(sg.tickInterval)
	sg.session.ActiveSeconds += tick

	if process == "" {
		process = models.UnknownProcess
	}
	if _, seen := sg.processSeconds[process]; !seen {
		sg.processOrder = append(sg.processOrder, process)
	}
	sg.processSeconds[process] += tick
}

// dominantProcess is the process with the most active time in the open
// session; ties break toward the process seen first.
func (sg *Segmenter) dominantProcess() string {
	var best string
	var bestSeconds int64 = -1
	for _, p := range sg.processOrder {
		if sg.processSeconds[p] > bestSeconds {
			best = p
			bestSeconds = sg.processSeconds[p]
		}
	}
	return best
}

// clamp enforces monotonic non-decreasing time across samples. Clock skew is
// corrected silently and counted, never fatal.
func (sg *Segmenter) clamp(ts time.Time) time.Time {
	if !sg.lastTimestamp.IsZero() && ts.Before(sg.lastTimestamp) {
		sg.skewCount++
		return sg.lastTimestamp
	}
	sg.lastTimestamp = ts
	return ts
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
