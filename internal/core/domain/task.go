package domain

import (
	"errors"
	"time"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrForbidden    = errors.New("access forbidden")
)

// Task is a single to-do item. OwnerID is fixed when the task is created.
type Task struct {
	ID          string
	Description string
	Completed   bool
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnedBy reports whether the task belongs to the user with the given ID.
func (t *Task) OwnedBy(userID string) bool {
	return t.OwnerID != "" && t.OwnerID == userID
}
