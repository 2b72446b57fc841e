package journal

import (
	"database/sql"
	"fmt"
	"time"

	"Mansoor88-6/wellness-agent/internal/models"

	"go.uber.org/zap"
)

// Journal records health events (reminder fires and acknowledgments) in
// sqlite so status and health reports survive restarts.
type Journal struct {
	db     *sql.DB
	logger *zap.Logger
}

// New creates a new journal over an already-migrated database.
func New(db *sql.DB, logger *zap.Logger) *Journal {
	return &Journal{
		db:     db,
		logger: logger,
	}
}

// Append writes one event row.
func (j *Journal) Append(kind models.ReminderKind, eventType string, at time.Time) error {
	_, err := j.db.Exec(`
		INSERT INTO health_events (kind, event_type, timestamp)
		VALUES (?, ?, ?)
	`, string(kind), eventType, at)
	if err != nil {
		return fmt.Errorf("failed to append health event: %w", err)
	}

	j.logger.Debug("Health event journaled",
		zap.String("kind", string(kind)),
		zap.String("event_type", eventType),
	)
	return nil
}

// Summary aggregates today's events per kind.
type Summary struct {
	Fired        map[models.ReminderKind]int
	Acknowledged map[models.ReminderKind]int
	Total        int
}

// SummarySince aggregates events at or after since, usually midnight.
func (j *Journal) SummarySince(since time.Time) (*Summary, error) {
	rows, err := j.db.Query(`
		SELECT kind, event_type, COUNT(*)
		FROM health_events
		WHERE timestamp >= ?
		GROUP BY kind, event_type
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize health events: %w", err)
	}
	defer rows.Close()

	summary := &Summary{
		Fired:        make(map[models.ReminderKind]int),
		Acknowledged: make(map[models.ReminderKind]int),
	}
	for rows.Next() {
		var kind, eventType string
		var count int
		if err := rows.Scan(&kind, &eventType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		switch eventType {
		case models.HealthEventFired:
			summary.Fired[models.ReminderKind(kind)] = count
		case models.HealthEventAcknowledged:
			summary.Acknowledged[models.ReminderKind(kind)] = count
		}
		summary.Total += count
	}
	return summary, rows.Err()
}

// Recent returns the newest events, most recent first.
func (j *Journal) Recent(limit int) ([]models.HealthEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.Query(`
		SELECT id, kind, event_type, timestamp
		FROM health_events
		ORDER BY timestamp DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list health events: %w", err)
	}
	defer rows.Close()

	var events []models.HealthEvent
	for rows.Next() {
		var e models.HealthEvent
		var kind string
		if err := rows.Scan(&e.ID, &kind, &e.EventType, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan health event: %w", err)
		}
		e.Kind = models.ReminderKind(kind)
		events = append(events, e)
	}
	return events, rows.Err()
}

// CleanupOldEvents removes events older than the given retention window.
func (j *Journal) CleanupOldEvents(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	result, err := j.db.Exec(`
		DELETE FROM health_events WHERE timestamp < ?
	`, cutoff)
	if err != nil {
		return fmt.Errorf("failed to cleanup old events: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected > 0 {
		j.logger.Info("Cleaned up old health events",
			zap.Int64("count", rowsAffected),
		)
	}
	return nil
}
