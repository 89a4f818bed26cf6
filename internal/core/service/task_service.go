package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rsandoval/tasks-api/internal/core/domain"
	"github.com/rsandoval/tasks-api/internal/core/ports"
)

type TaskService struct {
	repo   ports.TaskRepository
	guard  ports.OwnershipGuard
	logger zerolog.Logger
}

func NewTaskService(repo ports.TaskRepository, guard ports.OwnershipGuard, logger zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, guard: guard, logger: logger}
}

// ListTasks returns the caller's tasks, incomplete first.
func (s *TaskService) ListTasks(ctx context.Context, id domain.Identity) ([]*domain.Task, error) {
	user, err := s.guard.ResolveUser(ctx, id)
	if err != nil {
		return nil, err
	}

	tasks, err := s.repo.List(ctx, ports.TaskFilter{OwnerID: user.ID})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// SearchByCompletion returns the caller's tasks with the given completion flag.
func (s *TaskService) SearchByCompletion(ctx context.Context, id domain.Identity, completed bool) ([]*domain.Task, error) {
	user, err := s.guard.ResolveUser(ctx, id)
	if err != nil {
		return nil, err
	}

	tasks, err := s.repo.List(ctx, ports.TaskFilter{OwnerID: user.ID, Completed: &completed})
	if err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) GetTask(ctx context.Context, id domain.Identity, taskID string) (*domain.Task, error) {
	return s.guard.Authorize(ctx, id, taskID)
}

// CreateTask stamps the owner from id.
func (s *TaskService) CreateTask(ctx context.Context, id domain.Identity, input ports.TaskInput) (*domain.Task, error) {
	user, err := s.guard.ResolveUser(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.Task{
		Description: input.Description,
		Completed:   input.Completed,
		OwnerID:     user.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("owner_id", user.ID).Msg("failed to create task")
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.logger.Info().Str("task_id", created.ID).Str("owner_id", user.ID).Msg("task created")
	return created, nil
}

// UpdateTask replaces description and completion once existence and
// ownership have both been checked.
func (s *TaskService) UpdateTask(ctx context.Context, id domain.Identity, taskID string, input ports.TaskInput) (*domain.Task, error) {
	task, err := s.guard.Authorize(ctx, id, taskID)
	if err != nil {
		return nil, err
	}

	task.Description = input.Description
	task.Completed = input.Completed
	task.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return updated, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id domain.Identity, taskID string) error {
	task, err := s.guard.Authorize(ctx, id, taskID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, task.ID, task.OwnerID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	s.logger.Info().Str("task_id", task.ID).Str("owner_id", task.OwnerID).Msg("task deleted")
	return nil
}
