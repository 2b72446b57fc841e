package repository

import (
	"database/sql"
	"fmt"
	"time"

	"Mansoor88-6/wellness-agent/internal/models"
)

// SessionRepository persists work sessions and idle gaps. The coordinator is
// its only writer.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// CreateSession inserts a newly opened session (end_time NULL).
func (r *SessionRepository) CreateSession(s *models.WorkSession) error {
	_, err := r.db.Exec(`
		INSERT INTO work_sessions (id, start_time, end_time, active_seconds, dominant_process)
		VALUES (?, ?, ?, ?, ?)
	`, s.ID, s.StartTime, s.EndTime, s.ActiveSeconds, s.DominantProcess)
	if err != nil {
		return fmt.Errorf("failed to create work session: %w", err)
	}
	return nil
}

// UpdateSession writes the session's accumulated counters and, once closed,
// its end time.
func (r *SessionRepository) UpdateSession(s *models.WorkSession) error {
	result, err := r.db.Exec(`
		UPDATE work_sessions
		SET end_time = ?, active_seconds = ?, dominant_process = ?
		WHERE id = ?
	`, s.EndTime, s.ActiveSeconds, s.DominantProcess, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update work session: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("work session not found: %s", s.ID)
	}
	return nil
}

// LoadOpenSession returns the most recent session without an end time, or
// nil when every session is closed.
func (r *SessionRepository) LoadOpenSession() (*models.WorkSession, error) {
	var s models.WorkSession
	err := r.db.QueryRow(`
		SELECT id, start_time, end_time, active_seconds, dominant_process
		FROM work_sessions
		WHERE end_time IS NULL
		ORDER BY start_time DESC
		LIMIT 1
	`).Scan(&s.ID, &s.StartTime, &s.EndTime, &s.ActiveSeconds, &s.DominantProcess)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load open session: %w", err)
	}
	return &s, nil
}

// CreateGap inserts a newly opened idle gap and fills in its row ID.
func (r *SessionRepository) CreateGap(g *models.IdleGap) error {
	result, err := r.db.Exec(`
		INSERT INTO idle_gaps (start_time, end_time)
		VALUES (?, ?)
	`, g.StartTime, g.EndTime)
	if err != nil {
		return fmt.Errorf("failed to create idle gap: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read idle gap id: %w", err)
	}
	g.ID = id
	return nil
}

// CloseGap sets the end time of a gap.
func (r *SessionRepository) CloseGap(id int64, end time.Time) error {
	result, err := r.db.Exec(`
		UPDATE idle_gaps SET end_time = ? WHERE id = ?
	`, end, id)
	if err != nil {
		return fmt.Errorf("failed to close idle gap: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("idle gap not found: %d", id)
	}
	return nil
}

// LoadOpenGap returns the most recent gap without an end time, or nil.
func (r *SessionRepository) LoadOpenGap() (*models.IdleGap, error) {
	var g models.IdleGap
	err := r.db.QueryRow(`
		SELECT id, start_time, end_time
		FROM idle_gaps
		WHERE end_time IS NULL
		ORDER BY start_time DESC
		LIMIT 1
	`).Scan(&g.ID, &g.StartTime, &g.EndTime)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load open gap: %w", err)
	}
	return &g, nil
}

// ActiveSecondsSince sums the active seconds of closed sessions started at
// or after since. The caller adds the open session's in-memory counter.
func (r *SessionRepository) ActiveSecondsSince(since time.Time) (int64, error) {
	var total sql.NullInt64
	err := r.db.QueryRow(`
		SELECT SUM(active_seconds)
		FROM work_sessions
		WHERE start_time >= ? AND end_time IS NOT NULL
	`, since).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum active seconds: %w", err)
	}
	return total.Int64, nil
}

// SessionCountSince counts sessions (open or closed) started at or after
// since.
func (r *SessionRepository) SessionCountSince(since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM work_sessions WHERE start_time >= ?
	`, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

// ListSessions returns sessions ordered by start time, newest first.
func (r *SessionRepository) ListSessions(limit int) ([]models.WorkSession, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(`
		SELECT id, start_time, end_time, active_seconds, dominant_process
		FROM work_sessions
		ORDER BY start_time DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.WorkSession
	for rows.Next() {
		var s models.WorkSession
		if err := rows.Scan(&s.ID, &s.StartTime, &s.EndTime, &s.ActiveSeconds, &s.DominantProcess); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// ListGaps returns idle gaps ordered by start time, newest first.
func (r *SessionRepository) ListGaps(limit int) ([]models.IdleGap, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(`
		SELECT id, start_time, end_time
		FROM idle_gaps
		ORDER BY start_time DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list gaps: %w", err)
	}
	defer rows.Close()

	var gaps []models.IdleGap
	for rows.Next() {
		var g models.IdleGap
		if err := rows.Scan(&g.ID, &g.StartTime, &g.EndTime); err != nil {
			return nil, fmt.Errorf("failed to scan gap: %w", err)
		}
		gaps = append(gaps, g)
	}
	return gaps, rows.Err()
}
