package domain

import (
	"errors"
	"time"
)

// RoleUser is the only role handed out at registration.
const RoleUser = "USER"

var (
	ErrUserExists         = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("authentication required")
)

// User models an account that owns tasks.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ErrInvalidInput marks a request that is structurally fine but carries
// unusable values (e.g. an empty username).
var ErrInvalidInput = errors.New("invalid input")
