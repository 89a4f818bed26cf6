package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/rsandoval/tasks-api/internal/core/domain"
	"github.com/rsandoval/tasks-api/internal/core/service"
)

type stubUsers struct {
	users   map[string]*domain.User
	lookups int
}

func (s *stubUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	s.lookups++
	u, ok := s.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (s *stubUsers) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	s.users[u.Username] = u
	return u, nil
}

func newUsers(names ...string) *stubUsers {
	s := &stubUsers{users: map[string]*domain.User{}}
	for _, n := range names {
		s.users[n] = &domain.User{ID: "id-" + n, Username: n, Role: domain.RoleUser}
	}
	return s
}

func newTokens(t *testing.T, secret string) *service.TokenService {
	t.Helper()
	tokens, err := service.NewTokenService(secret, 0)
	if err != nil {
		t.Fatalf("new token service: %v", err)
	}
	return tokens
}

func issue(t *testing.T, tokens *service.TokenService, username string) string {
	t.Helper()
	tok, err := tokens.Issue(username)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return tok
}

// runIdentity sends a request with the given Authorization header through the
// middleware and returns the identity seen by the next handler.
func runIdentity(t *testing.T, tokens *service.TokenService, users *stubUsers, header string) (domain.Identity, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var (
		seen   domain.Identity
		found  bool
		called bool
	)
	handler := Identity(tokens, users, zerolog.Nop())(func(c echo.Context) error {
		called = true
		seen, found = IdentityFrom(c)
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	return seen, found
}

func TestIdentity_ValidToken(t *testing.T) {
	tokens := newTokens(t, "secret")
	id, ok := runIdentity(t, tokens, newUsers("alice"), "Bearer "+issue(t, tokens, "alice"))

	if !ok || !id.Authenticated {
		t.Fatalf("expected authenticated identity, got %+v", id)
	}
	if id.Username != "alice" {
		t.Fatalf("expected alice, got %q", id.Username)
	}
}

func TestIdentity_PassesThroughUnauthenticated(t *testing.T) {
	tokens := newTokens(t, "secret")
	valid := issue(t, tokens, "alice")
	foreign := issue(t, newTokens(t, "other-secret"), "alice")

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Token " + valid},
		{"lowercase bearer", "bearer " + valid},
		{"no space", "Bearer" + valid},
		{"garbage token", "Bearer not-a-token"},
		{"foreign secret", "Bearer " + foreign},
		{"empty token", "Bearer "},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, ok := runIdentity(t, tokens, newUsers("alice"), tc.header)
			if ok || id.Authenticated {
				t.Fatalf("expected no identity, got %+v", id)
			}
		})
	}
}

func TestIdentity_UnknownSubject(t *testing.T) {
	tokens := newTokens(t, "secret")
	users := newUsers("alice")

	id, ok := runIdentity(t, tokens, users, "Bearer "+issue(t, tokens, "mallory"))
	if ok || id.Authenticated {
		t.Fatalf("expected no identity for unknown user, got %+v", id)
	}
	if users.lookups != 1 {
		t.Fatalf("expected one lookup, got %d", users.lookups)
	}
}

func TestIdentity_MalformedTokenSkipsLookup(t *testing.T) {
	users := newUsers("alice")
	runIdentity(t, newTokens(t, "secret"), users, "Bearer a.b.c")

	if users.lookups != 0 {
		t.Fatalf("expected no lookup for malformed token, got %d", users.lookups)
	}
}

func TestIdentity_KeepsEstablishedIdentity(t *testing.T) {
	tokens := newTokens(t, "secret")
	users := newUsers("alice", "bob")

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+issue(t, tokens, "bob"))
	c := e.NewContext(req, httptest.NewRecorder())
	c.Set(IdentityKey, domain.Authenticate("alice"))

	handler := Identity(tokens, users, zerolog.Nop())(func(c echo.Context) error {
		id, _ := IdentityFrom(c)
		if id.Username != "alice" {
			t.Fatalf("identity overwritten: %+v", id)
		}
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if users.lookups != 0 {
		t.Fatalf("expected no lookup once identity is set, got %d", users.lookups)
	}
}

func TestIdentityFrom_Empty(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	id, ok := IdentityFrom(c)
	if ok {
		t.Fatalf("expected ok=false")
	}
	if id != domain.Anonymous {
		t.Fatalf("expected anonymous identity, got %+v", id)
	}
}
