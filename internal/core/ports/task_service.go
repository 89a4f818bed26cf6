package ports

import (
	"context"

	"github.com/rsandoval/tasks-api/internal/core/domain"
)

// TaskInput carries the caller-controlled fields of a task. The owner always
// comes from the caller's identity, never from input.
type TaskInput struct {
	Description string
	Completed   bool
}

// TaskService defines use-case operations for tasks. Every call takes the
// caller's identity explicitly.
type TaskService interface {
	ListTasks(ctx context.Context, id domain.Identity) ([]*domain.Task, error)
	SearchByCompletion(ctx context.Context, id domain.Identity, completed bool) ([]*domain.Task, error)
	GetTask(ctx context.Context, id domain.Identity, taskID string) (*domain.Task, error)
	CreateTask(ctx context.Context, id domain.Identity, input TaskInput) (*domain.Task, error)
	UpdateTask(ctx context.Context, id domain.Identity, taskID string, input TaskInput) (*domain.Task, error)
	DeleteTask(ctx context.Context, id domain.Identity, taskID string) error
}

// OwnershipGuard decides whether an identity may act on a task.
type OwnershipGuard interface {
	// ResolveUser maps an authenticated identity to its user record.
	ResolveUser(ctx context.Context, id domain.Identity) (*domain.User, error)
	// AssertOwner fails with domain.ErrTaskNotFound for a nil task and
	// domain.ErrForbidden when the identity does not own it.
	AssertOwner(ctx context.Context, id domain.Identity, task *domain.Task) error
	// Authorize loads the task and asserts ownership, in that order.
	Authorize(ctx context.Context, id domain.Identity, taskID string) (*domain.Task, error)
}
