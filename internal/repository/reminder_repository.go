package repository

import (
	"database/sql"
	"fmt"
	"time"

	"Mansoor88-6/wellness-agent/internal/models"
)

// ReminderRepository persists per-kind reminder countdown state so it
// survives daemon restarts.
type ReminderRepository struct {
	db *sql.DB
}

func NewReminderRepository(db *sql.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// SaveState upserts the state for one reminder kind.
func (r *ReminderRepository) SaveState(st models.ReminderState) error {
	_, err := r.db.Exec(`
		INSERT INTO reminder_states (kind, interval_seconds, elapsed_active_seconds, last_fired_at, last_acknowledged_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET
			interval_seconds = excluded.interval_seconds,
			elapsed_active_seconds = excluded.elapsed_active_seconds,
			last_fired_at = excluded.last_fired_at,
			last_acknowledged_at = excluded.last_acknowledged_at,
			updated_at = excluded.updated_at
	`, string(st.Kind), st.IntervalSeconds, st.ElapsedActiveSeconds, st.LastFiredAt, st.LastAcknowledgedAt, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save reminder state %s: %w", st.Kind, err)
	}
	return nil
}

// SaveStates upserts a batch of states in one transaction.
func (r *ReminderRepository) SaveStates(states []models.ReminderState) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO reminder_states (kind, interval_seconds, elapsed_active_seconds, last_fired_at, last_acknowledged_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET
			interval_seconds = excluded.interval_seconds,
			elapsed_active_seconds = excluded.elapsed_active_seconds,
			last_fired_at = excluded.last_fired_at,
			last_acknowledged_at = excluded.last_acknowledged_at,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, st := range states {
		if _, err := stmt.Exec(string(st.Kind), st.IntervalSeconds, st.ElapsedActiveSeconds, st.LastFiredAt, st.LastAcknowledgedAt, now); err != nil {
			return fmt.Errorf("failed to save reminder state %s: %w", st.Kind, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LoadStates returns every persisted reminder state.
func (r *ReminderRepository) LoadStates() ([]models.ReminderState, error) {
	rows, err := r.db.Query(`
		SELECT kind, interval_seconds, elapsed_active_seconds, last_fired_at, last_acknowledged_at
		FROM reminder_states
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load reminder states: %w", err)
	}
	defer rows.Close()

	var states []models.ReminderState
	for rows.Next() {
		var st models.ReminderState
		var kind string
		if err := rows.Scan(&kind, &st.IntervalSeconds, &st.ElapsedActiveSeconds, &st.LastFiredAt, &st.LastAcknowledgedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reminder state: %w", err)
		}
		st.Kind = models.ReminderKind(kind)
		states = append(states, st)
	}
	return states, rows.Err()
}
