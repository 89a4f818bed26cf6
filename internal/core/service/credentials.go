package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/rsandoval/tasks-api/internal/core/domain"
	"github.com/rsandoval/tasks-api/internal/core/ports"
)

// BcryptHasher implements ports.PasswordHasher with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher falls back to bcrypt.DefaultCost when cost is out of range.
func NewBcryptHasher(cost int) BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return BcryptHasher{cost: cost}
}

func (h BcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", fmt.Errorf("hash password: %w", domain.ErrInvalidInput)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (h BcryptHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CredentialStore looks users up by username and checks their passwords.
type CredentialStore struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
}

func NewCredentialStore(users ports.UserRepository, hasher ports.PasswordHasher) *CredentialStore {
	return &CredentialStore{users: users, hasher: hasher}
}

// Lookup returns domain.ErrUserNotFound for unknown usernames.
func (c *CredentialStore) Lookup(ctx context.Context, username string) (*domain.User, error) {
	return c.users.FindByUsername(ctx, username)
}

// Verify returns the user when password matches. Unknown users and wrong
// passwords both yield domain.ErrInvalidCredentials.
func (c *CredentialStore) Verify(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := c.Lookup(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("verify credentials: %w", err)
	}

	if !c.hasher.Verify(user.PasswordHash, password) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}
