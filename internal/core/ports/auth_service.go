package ports

import (
	"context"

	"github.com/rsandoval/tasks-api/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, error)
}
