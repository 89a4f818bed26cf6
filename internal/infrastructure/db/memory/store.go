// Package memory provides process-local implementations of the user and task
// repositories. They back STORE_DRIVER=memory for local development and the
// HTTP-level tests; data is lost on restart.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rsandoval/tasks-api/internal/core/domain"
	"github.com/rsandoval/tasks-api/internal/core/ports"
)

// UserRepository implements ports.UserRepository.
type UserRepository struct {
	mu    sync.RWMutex
	seq   uint64
	users map[string]domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]domain.User)}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	r.seq++
	stored := *user
	stored.ID = fmt.Sprintf("%024x", r.seq)
	r.users[stored.Username] = stored

	out := stored
	return &out, nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

// TaskRepository implements ports.TaskRepository. IDs are zero-padded hex
// counters, so lexical order is creation order.
type TaskRepository struct {
	mu    sync.RWMutex
	seq   uint64
	tasks map[string]domain.Task
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: make(map[string]domain.Task)}
}

func (r *TaskRepository) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	stored := *t
	stored.ID = fmt.Sprintf("%024x", r.seq)
	r.tasks[stored.ID] = stored

	out := stored
	return &out, nil
}

func (r *TaskRepository) FindByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return &t, nil
}

func (r *TaskRepository) List(_ context.Context, f ports.TaskFilter) ([]*domain.Task, error) {
	if f.OwnerID == "" {
		return nil, fmt.Errorf("list tasks: %w", domain.ErrInvalidInput)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Task, 0)
	for _, t := range r.tasks {
		if t.OwnerID != f.OwnerID {
			continue
		}
		if f.Completed != nil && t.Completed != *f.Completed {
			continue
		}
		task := t
		out = append(out, &task)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Completed != out[j].Completed {
			return !out[i].Completed
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *TaskRepository) Update(_ context.Context, t *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.tasks[t.ID]
	if !ok || existing.OwnerID != t.OwnerID {
		return nil, domain.ErrTaskNotFound
	}
	existing.Description = t.Description
	existing.Completed = t.Completed
	existing.UpdatedAt = t.UpdatedAt
	r.tasks[t.ID] = existing

	out := existing
	return &out, nil
}

func (r *TaskRepository) Delete(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.tasks[id]
	if !ok || existing.OwnerID != ownerID {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}
