package ports

import (
	"context"

	"github.com/rsandoval/tasks-api/internal/core/domain"
)

// UserRepository defines the persistence operations for user accounts.
type UserRepository interface {
	// FindByUsername returns domain.ErrUserNotFound when no user matches.
	// The match is case-sensitive.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// Create stores a new user and returns it with its assigned ID.
	// Returns domain.ErrUserExists when the username is already taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
