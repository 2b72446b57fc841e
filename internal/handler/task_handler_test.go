package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"Mansoor88-6/wellness-agent/internal/database"
	"Mansoor88-6/wellness-agent/internal/models"
	"Mansoor88-6/wellness-agent/internal/repository"
	"Mansoor88-6/wellness-agent/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTaskHandler(t *testing.T) *TaskHandler {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test_wellness.db")
	db, err := database.New(dbPath, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, db.Close())
	})

	svc := service.NewTaskService(repository.NewTaskRepository(db.DB))
	return NewTaskHandler(svc, zap.NewNop())
}

func TestCreateTaskEndpoint(t *testing.T) {
	h := setupTaskHandler(t)

	body, _ := json.Marshal(models.CreateTaskRequest{Title: "water the plants", Priority: 2})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.CreateTask(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var task models.Task
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&task))
	assert.Equal(t, "water the plants", task.Title)
	assert.Equal(t, 2, task.Priority)
	assert.Equal(t, models.TaskStatusPending, task.Status)
	assert.Greater(t, task.ID, int64(0))
}

func TestCreateTaskRejectsMissingTitle(t *testing.T) {
	h := setupTaskHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", bytes.NewReader([]byte(`{"priority":3}`)))
	rec := httptest.NewRecorder()
	h.CreateTask(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/tasks", bytes.NewReader([]byte(`not json`)))
	rec = httptest.NewRecorder()
	h.CreateTask(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPendingTasksEndpoint(t *testing.T) {
	h := setupTaskHandler(t)

	// Empty backlog serializes as an empty array, not null.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	rec := httptest.NewRecorder()
	h.GetPendingTasks(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	for i := 0; i < 3; i++ {
		body, _ := json.Marshal(models.CreateTaskRequest{Title: fmt.Sprintf("task %d", i), Priority: i + 1})
		createRec := httptest.NewRecorder()
		h.CreateTask(createRec, httptest.NewRequest(http.MethodPost, "/api/v1/tasks", bytes.NewReader(body)))
		require.Equal(t, http.StatusCreated, createRec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/tasks?limit=2", nil)
	rec = httptest.NewRecorder()
	h.GetPendingTasks(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var tasks []models.Task
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tasks))
	require.Len(t, tasks, 2)
	assert.Equal(t, "task 2", tasks[0].Title)
}

func TestCompleteTaskEndpoint(t *testing.T) {
	h := setupTaskHandler(t)

	body, _ := json.Marshal(models.CreateTaskRequest{Title: "stretch"})
	createRec := httptest.NewRecorder()
	h.CreateTask(createRec, httptest.NewRequest(http.MethodPost, "/api/v1/tasks", bytes.NewReader(body)))
	var task models.Task
	require.NoError(t, json.NewDecoder(createRec.Body).Decode(&task))

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/tasks/complete?id=%d", task.ID), nil)
	rec := httptest.NewRecorder()
	h.CompleteTask(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Completing twice still succeeds (the row exists), but a bogus id 404s.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/tasks/complete?id=99999", nil)
	rec = httptest.NewRecorder()
	h.CompleteTask(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/tasks/complete", nil)
	rec = httptest.NewRecorder()
	h.CompleteTask(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
