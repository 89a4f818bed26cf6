package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rsandoval/tasks-api/internal/core/domain"
	"github.com/rsandoval/tasks-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	users   map[string]*domain.User
	seq     int
	findErr error // if set, FindByUsername returns this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	r.seq++
	copy := cloneUser(user)
	copy.ID = fmt.Sprintf("user-%d", r.seq)
	r.users[copy.Username] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

type stubTaskRepo struct {
	tasks     map[string]*domain.Task
	seq       int
	updates   int
	deletes   int
	createErr error
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{tasks: make(map[string]*domain.Task)}
}

func (r *stubTaskRepo) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.seq++
	clone := *t
	clone.ID = fmt.Sprintf("%024x", r.seq)
	r.tasks[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubTaskRepo) FindByID(_ context.Context, id string) (*domain.Task, error) {
	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *stubTaskRepo) List(_ context.Context, f ports.TaskFilter) ([]*domain.Task, error) {
	out := []*domain.Task{}
	for _, t := range r.tasks {
		if t.OwnerID != f.OwnerID {
			continue
		}
		if f.Completed != nil && t.Completed != *f.Completed {
			continue
		}
		clone := *t
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Completed != out[j].Completed {
			return !out[i].Completed
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *stubTaskRepo) Update(_ context.Context, t *domain.Task) (*domain.Task, error) {
	existing, ok := r.tasks[t.ID]
	if !ok || existing.OwnerID != t.OwnerID {
		return nil, domain.ErrTaskNotFound
	}
	r.updates++
	existing.Description = t.Description
	existing.Completed = t.Completed
	existing.UpdatedAt = t.UpdatedAt
	clone := *existing
	return &clone, nil
}

func (r *stubTaskRepo) Delete(_ context.Context, id, ownerID string) error {
	existing, ok := r.tasks[id]
	if !ok || existing.OwnerID != ownerID {
		return domain.ErrTaskNotFound
	}
	r.deletes++
	delete(r.tasks, id)
	return nil
}

// plainHasher keeps tests fast; bcrypt itself is covered in credentials_test.go.
type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (plainHasher) Verify(hash, password string) bool   { return hash == "hashed:"+password }
