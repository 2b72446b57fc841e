package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"Mansoor88-6/wellness-agent/internal/database"
	"Mansoor88-6/wellness-agent/internal/journal"
	"Mansoor88-6/wellness-agent/internal/models"
	"Mansoor88-6/wellness-agent/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWriteFileRoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	db, err := database.New(filepath.Join(tempDir, "test_wellness.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})

	sessions := repository.NewSessionRepository(db.DB)
	tasks := repository.NewTaskRepository(db.DB)
	hj := journal.New(db.DB, zap.NewNop())

	start := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	require.NoError(t, sessions.CreateSession(&models.WorkSession{
		ID: uuid.New().String(), StartTime: start, EndTime: &end, ActiveSeconds: 3600, DominantProcess: "code",
	}))
	require.NoError(t, sessions.CreateGap(&models.IdleGap{StartTime: end}))
	require.NoError(t, hj.Append(models.ReminderEyeCare, models.HealthEventFired, end))
	_, err = tasks.Create(&models.CreateTaskRequest{Title: "write summary"})
	require.NoError(t, err)

	outPath := filepath.Join(tempDir, "dump.json")
	dump, err := New(sessions, tasks, hj).WriteFile(outPath)
	require.NoError(t, err)
	require.NotNil(t, dump)

	assert.Len(t, dump.WorkSessions, 1)
	assert.Len(t, dump.IdleGaps, 1)
	assert.Len(t, dump.HealthEvents, 1)
	assert.Len(t, dump.Tasks, 1)

	// The file on disk parses back into the same shape.
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var parsed Dump
	require.NoError(t, json.Unmarshal(data, &parsed))
	require.Len(t, parsed.WorkSessions, 1)
	assert.Equal(t, dump.WorkSessions[0].ID, parsed.WorkSessions[0].ID)
	assert.Equal(t, "write summary", parsed.Tasks[0].Title)
}
