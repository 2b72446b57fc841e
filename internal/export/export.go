package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"Mansoor88-6/wellness-agent/internal/journal"
	"Mansoor88-6/wellness-agent/internal/models"
	"Mansoor88-6/wellness-agent/internal/repository"
)

// Dump is the JSON backup format written by the CLI export command.
type Dump struct {
	ExportDate   time.Time            `json:"export_date"`
	WorkSessions []models.WorkSession `json:"work_sessions"`
	IdleGaps     []models.IdleGap     `json:"idle_gaps"`
	HealthEvents []models.HealthEvent `json:"health_events"`
	Tasks        []*models.Task       `json:"tasks"`
}

// Exporter gathers everything persisted into a single JSON file.
type Exporter struct {
	sessions *repository.SessionRepository
	tasks    *repository.TaskRepository
	journal  *journal.Journal
}

func New(sessions *repository.SessionRepository, tasks *repository.TaskRepository, hj *journal.Journal) *Exporter {
	return &Exporter{
		sessions: sessions,
		tasks:    tasks,
		journal:  hj,
	}
}

// WriteFile writes the full dump to path.
func (e *Exporter) WriteFile(path string) (*Dump, error) {
	dump, err := e.collect()
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write export file: %w", err)
	}
	return dump, nil
}

func (e *Exporter) collect() (*Dump, error) {
	sessions, err := e.sessions.ListSessions(10000)
	if err != nil {
		return nil, fmt.Errorf("failed to export sessions: %w", err)
	}
	gaps, err := e.sessions.ListGaps(10000)
	if err != nil {
		return nil, fmt.Errorf("failed to export gaps: %w", err)
	}
	events, err := e.journal.Recent(10000)
	if err != nil {
		return nil, fmt.Errorf("failed to export health events: %w", err)
	}
	tasks, err := e.tasks.List(10000)
	if err != nil {
		return nil, fmt.Errorf("failed to export tasks: %w", err)
	}

	return &Dump{
		ExportDate:   time.Now(),
		WorkSessions: sessions,
		IdleGaps:     gaps,
		HealthEvents: events,
		Tasks:        tasks,
	}, nil
}
