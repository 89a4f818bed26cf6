package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rsandoval/tasks-api/internal/core/domain"
)

type stubUsers struct {
	users   map[string]*domain.User
	lookups int
	creates int
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
	s.creates++
	u.ID = "id-" + u.Username
	s.users[u.Username] = u
	return u, nil
}

// unreachableClient points at a closed port so every command fails fast.
func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestUserCache_FallsBackWhenRedisIsDown(t *testing.T) {
	next := &stubUsers{users: map[string]*domain.User{
		"alice": {ID: "u1", Username: "alice", Role: domain.RoleUser},
	}}
	cache := NewUserCache(unreachableClient(t), next, time.Minute, zerolog.Nop())

	user, err := cache.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("expected fallback to store, got %v", err)
	}
	if user.ID != "u1" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if next.lookups != 1 {
		t.Fatalf("expected one store lookup, got %d", next.lookups)
	}
}

func TestUserCache_UnknownUser(t *testing.T) {
	next := &stubUsers{users: map[string]*domain.User{}}
	cache := NewUserCache(unreachableClient(t), next, 0, zerolog.Nop())

	_, err := cache.FindByUsername(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if cache.ttl != defaultUserTTL {
		t.Fatalf("expected default ttl, got %v", cache.ttl)
	}
}

func TestUserCache_CreatePassesThrough(t *testing.T) {
	next := &stubUsers{users: map[string]*domain.User{}}
	cache := NewUserCache(unreachableClient(t), next, time.Minute, zerolog.Nop())

	created, err := cache.Create(context.Background(), &domain.User{Username: "bob"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "id-bob" || next.creates != 1 {
		t.Fatalf("create not delegated: %+v (creates=%d)", created, next.creates)
	}
}

func TestUserCache_Key(t *testing.T) {
	cache := NewUserCache(nil, nil, 0, zerolog.Nop())
	if got := cache.key("alice"); got != "user:alice" {
		t.Fatalf("unexpected key %q", got)
	}
}

// newServer starts an in-process Redis and returns a client bound to it.
func newServer(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestUserCache_MissThenHit(t *testing.T) {
	mr, client := newServer(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	next := &stubUsers{users: map[string]*domain.User{
		"alice": {ID: "u1", Username: "alice", PasswordHash: "$2a$hash", Role: domain.RoleUser, CreatedAt: created},
	}}
	cache := NewUserCache(client, next, time.Minute, zerolog.Nop())
	ctx := context.Background()

	first, err := cache.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	if !mr.Exists("user:alice") {
		t.Fatalf("expected user:alice to be written on a miss")
	}
	if ttl := mr.TTL("user:alice"); ttl != time.Minute {
		t.Fatalf("expected 1m ttl, got %v", ttl)
	}

	second, err := cache.FindByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if next.lookups != 1 {
		t.Fatalf("expected the hit to skip the store, got %d lookups", next.lookups)
	}
	if second.ID != first.ID || second.Username != "alice" || second.Role != domain.RoleUser || !second.CreatedAt.Equal(created) {
		t.Fatalf("cached user differs: %+v", second)
	}
	if second.PasswordHash != "" {
		t.Fatalf("cache hit must not carry a password hash")
	}
}

func TestUserCache_NeverStoresHash(t *testing.T) {
	mr, client := newServer(t)
	next := &stubUsers{users: map[string]*domain.User{
		"alice": {ID: "u1", Username: "alice", PasswordHash: "$2a$10$secret-hash", Role: domain.RoleUser},
	}}
	cache := NewUserCache(client, next, time.Minute, zerolog.Nop())

	if _, err := cache.FindByUsername(context.Background(), "alice"); err != nil {
		t.Fatalf("lookup: %v", err)
	}

	raw, err := mr.Get("user:alice")
	if err != nil {
		t.Fatalf("read cached entry: %v", err)
	}
	if strings.Contains(raw, "secret-hash") {
		t.Fatalf("password hash leaked into cache: %s", raw)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		t.Fatalf("cached entry is not JSON: %v", err)
	}
	if entry["id"] != "u1" || entry["username"] != "alice" {
		t.Fatalf("unexpected cached entry: %+v", entry)
	}
}

func TestUserCache_CorruptEntryFallsThrough(t *testing.T) {
	mr, client := newServer(t)
	next := &stubUsers{users: map[string]*domain.User{
		"alice": {ID: "u1", Username: "alice", Role: domain.RoleUser},
	}}
	cache := NewUserCache(client, next, time.Minute, zerolog.Nop())

	if err := mr.Set("user:alice", "{not json"); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}

	user, err := cache.FindByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if user.ID != "u1" || next.lookups != 1 {
		t.Fatalf("expected store fallback, got %+v (lookups=%d)", user, next.lookups)
	}

	raw, _ := mr.Get("user:alice")
	if !strings.Contains(raw, `"id":"u1"`) {
		t.Fatalf("expected corrupt entry to be replaced, got %q", raw)
	}
}

func TestUserCache_UnknownUserNotCached(t *testing.T) {
	mr, client := newServer(t)
	next := &stubUsers{users: map[string]*domain.User{}}
	cache := NewUserCache(client, next, time.Minute, zerolog.Nop())
	ctx := context.Background()

	if _, err := cache.FindByUsername(ctx, "bob"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if mr.Exists("user:bob") {
		t.Fatalf("negative lookups must not be cached")
	}

	if _, err := cache.Create(ctx, &domain.User{Username: "bob"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := cache.FindByUsername(ctx, "bob"); err != nil {
		t.Fatalf("expected bob right after registration, got %v", err)
	}
}

func TestUserCache_EntryExpires(t *testing.T) {
	mr, client := newServer(t)
	next := &stubUsers{users: map[string]*domain.User{
		"alice": {ID: "u1", Username: "alice", Role: domain.RoleUser},
	}}
	cache := NewUserCache(client, next, time.Minute, zerolog.Nop())
	ctx := context.Background()

	if _, err := cache.FindByUsername(ctx, "alice"); err != nil {
		t.Fatalf("lookup: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, err := cache.FindByUsername(ctx, "alice"); err != nil {
		t.Fatalf("lookup after expiry: %v", err)
	}
	if next.lookups != 2 {
		t.Fatalf("expected a store lookup after expiry, got %d", next.lookups)
	}
}
