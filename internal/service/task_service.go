package service

import (
	"time"

	"Mansoor88-6/wellness-agent/internal/models"
	"Mansoor88-6/wellness-agent/internal/repository"
)

type TaskService struct {
	repo *repository.TaskRepository
}

func NewTaskService(repo *repository.TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

func (s *TaskService) CreateTask(req *models.CreateTaskRequest) (*models.Task, error) {
	return s.repo.Create(req)
}

func (s *TaskService) GetPendingTasks(limit int) ([]*models.Task, error) {
	return s.repo.GetPending(limit)
}

func (s *TaskService) CompleteTask(id int64) error {
	return s.repo.Complete(id, time.Now())
}

func (s *TaskService) ListTasks(limit int) ([]*models.Task, error) {
	return s.repo.List(limit)
}

// LongestPendingTask returns the title of the oldest pending task as an
// opaque text fragment for recommendation messages, or "" when the backlog
// is empty or unreadable. The engine never parses task content.
func (s *TaskService) LongestPendingTask() string {
	task, err := s.repo.LongestPending()
	if err != nil || task == nil {
		return ""
	}
	return task.Title
}
