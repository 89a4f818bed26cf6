package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/rsandoval/tasks-api/internal/core/domain"
)

func newTestAuthService(t *testing.T) (*AuthService, *stubUserRepo, *TokenService) {
	t.Helper()
	tokens, err := NewTokenService("secret", time.Hour)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	repo := newStubUserRepo()
	return NewAuthService(repo, NewBcryptHasher(bcrypt.MinCost), tokens, zerolog.Nop()), repo, tokens
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	user, err := svc.Register(context.Background(), "alice", "pw1")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user == nil || user.ID == "" {
		t.Fatalf("expected stored user with ID, got %+v", user)
	}
	if user.PasswordHash == "pw1" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pw1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("unexpected role: %s", user.Role)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	if _, err := svc.Register(context.Background(), "", "pw"); err != domain.ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob", ""); err != domain.ErrInvalidInput {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	svc, repo, _ := newTestAuthService(t)

	if _, err := svc.Register(context.Background(), "alice", "pw1"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), "alice", "pw2"); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if len(repo.users) != 1 {
		t.Fatalf("expected exactly one stored user, got %d", len(repo.users))
	}

	// usernames are case-sensitive
	if _, err := svc.Register(context.Background(), "Alice", "pw3"); err != nil {
		t.Fatalf("expected distinct username to register, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _, tokens := newTestAuthService(t)

	if _, err := svc.Register(context.Background(), "carol", "s3cret"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, err := svc.Login(context.Background(), "carol", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}
	if !tokens.Validate(token, "carol") {
		t.Fatalf("issued token does not validate for its subject")
	}
	if tokens.Validate(token, "dave") {
		t.Fatalf("issued token validated for another user")
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	_, _ = svc.Register(context.Background(), "dave", "goodpass")
	if _, err := svc.Login(context.Background(), "dave", "badpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UserNotFound(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	if _, err := svc.Login(context.Background(), "ghost", "pass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_EmptyFields(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	if _, err := svc.Login(context.Background(), "", ""); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
