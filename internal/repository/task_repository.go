package repository

import (
	"database/sql"
	"fmt"
	"time"

	"Mansoor88-6/wellness-agent/internal/models"
)

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(req *models.CreateTaskRequest) (*models.Task, error) {
	priority := req.Priority
	if priority < 1 || priority > 5 {
		priority = 3
	}

	result, err := r.db.Exec(`
		INSERT INTO tasks (title, description, priority, status, due_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, req.Title, req.Description, priority, models.TaskStatusPending, req.DueDate, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read task id: %w", err)
	}
	return r.GetByID(id)
}

func (r *TaskRepository) GetByID(id int64) (*models.Task, error) {
	var t models.Task
	err := r.db.QueryRow(`
		SELECT id, title, description, priority, status, due_date, created_at, completed_at
		FROM tasks
		WHERE id = ?
	`, id).Scan(&t.ID, &t.Title, &t.Description, &t.Priority, &t.Status, &t.DueDate, &t.CreatedAt, &t.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &t, nil
}

func (r *TaskRepository) GetPending(limit int) ([]*models.Task, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.Query(`
		SELECT id, title, description, priority, status, due_date, created_at, completed_at
		FROM tasks
		WHERE status = ?
		ORDER BY priority DESC, created_at ASC
		LIMIT ?
	`, models.TaskStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Priority, &t.Status, &t.DueDate, &t.CreatedAt, &t.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

// LongestPending returns the oldest still-pending task, or nil when the
// backlog is empty.
func (r *TaskRepository) LongestPending() (*models.Task, error) {
	var t models.Task
	err := r.db.QueryRow(`
		SELECT id, title, description, priority, status, due_date, created_at, completed_at
		FROM tasks
		WHERE status = ?
		ORDER BY created_at ASC
		LIMIT 1
	`, models.TaskStatusPending).Scan(&t.ID, &t.Title, &t.Description, &t.Priority, &t.Status, &t.DueDate, &t.CreatedAt, &t.CompletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get longest pending task: %w", err)
	}
	return &t, nil
}

func (r *TaskRepository) Complete(id int64, at time.Time) error {
	result, err := r.db.Exec(`
		UPDATE tasks SET status = ?, completed_at = ? WHERE id = ?
	`, models.TaskStatusDone, at, id)
	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("task not found: %d", id)
	}
	return nil
}

func (r *TaskRepository) List(limit int) ([]*models.Task, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := r.db.Query(`
		SELECT id, title, description, priority, status, due_date, created_at, completed_at
		FROM tasks
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Priority, &t.Status, &t.DueDate, &t.CreatedAt, &t.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}
