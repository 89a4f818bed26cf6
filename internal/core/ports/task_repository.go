package ports

import (
	"context"

	"github.com/rsandoval/tasks-api/internal/core/domain"
)

// TaskFilter scopes a task listing. OwnerID is mandatory: listings are never
// run across owners.
type TaskFilter struct {
	OwnerID   string
	Completed *bool // optional: nil = both
}

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	// FindByID returns domain.ErrTaskNotFound when the task does not exist,
	// including when id is not a well-formed identifier.
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	// List returns the owner's tasks ordered by completed ascending, then by
	// ID ascending (creation order).
	List(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)
	// Update persists description and completion. The owner is never changed.
	Update(ctx context.Context, t *domain.Task) (*domain.Task, error)
	Delete(ctx context.Context, id, ownerID string) error
}
