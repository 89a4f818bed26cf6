package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rsandoval/tasks-api/internal/core/domain"
	"github.com/rsandoval/tasks-api/internal/core/ports"
)

// OwnershipGuard enforces that a caller only touches its own tasks.
//
// The checks always run in this order: the task must exist, then the caller
// must own it. A missing task therefore reports domain.ErrTaskNotFound even to
// a caller who would not own it.
type OwnershipGuard struct {
	users  ports.UserRepository
	tasks  ports.TaskRepository
	logger zerolog.Logger
}

func NewOwnershipGuard(users ports.UserRepository, tasks ports.TaskRepository, logger zerolog.Logger) *OwnershipGuard {
	return &OwnershipGuard{users: users, tasks: tasks, logger: logger}
}

// ResolveUser returns domain.ErrUnauthorized for an anonymous identity or one
// whose user no longer exists.
func (g *OwnershipGuard) ResolveUser(ctx context.Context, id domain.Identity) (*domain.User, error) {
	if !id.Authenticated || id.Username == "" {
		return nil, domain.ErrUnauthorized
	}

	user, err := g.users.FindByUsername(ctx, id.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	return user, nil
}

// AssertOwner succeeds silently when id owns task.
func (g *OwnershipGuard) AssertOwner(ctx context.Context, id domain.Identity, task *domain.Task) error {
	if task == nil {
		return domain.ErrTaskNotFound
	}

	user, err := g.ResolveUser(ctx, id)
	if err != nil {
		return err
	}

	if !task.OwnedBy(user.ID) {
		g.logger.Warn().
			Str("username", id.Username).
			Str("task_id", task.ID).
			Msg("ownership check failed")
		return domain.ErrForbidden
	}
	return nil
}

// Authorize loads taskID and asserts id owns it.
func (g *OwnershipGuard) Authorize(ctx context.Context, id domain.Identity, taskID string) (*domain.Task, error) {
	if !id.Authenticated {
		return nil, domain.ErrUnauthorized
	}

	task, err := g.tasks.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("load task: %w", err)
	}

	if err := g.AssertOwner(ctx, id, task); err != nil {
		return nil, err
	}
	return task, nil
}
