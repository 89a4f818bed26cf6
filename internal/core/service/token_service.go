package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rsandoval/tasks-api/internal/core/domain"
)

// DefaultTokenTTL is the lifetime of every issued token.
const DefaultTokenTTL = 24 * time.Hour

var ErrEmptySecret = errors.New("token signing secret is empty")

// TokenService issues and verifies HS256 JWTs carrying {sub, iat, exp}.
// It holds no mutable state after construction and is safe for concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService fails when secret is empty so the process can refuse to
// start. The error never contains the secret.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue signs a token for username, valid from now until now+ttl.
func (s *TokenService) Issue(username string) (string, error) {
	if username == "" {
		return "", fmt.Errorf("issue token: %w", domain.ErrInvalidInput)
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return signed, nil
}

// Validate fails closed. A token is valid only if its signature verifies, it
// carries an expiry that is still in the future, and its subject equals
// expectedUsername exactly.
func (s *TokenService) Validate(token, expectedUsername string) bool {
	if token == "" || expectedUsername == "" {
		return false
	}

	claims, err := s.parse(token,
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
		jwt.WithSubject(expectedUsername),
	)
	if err != nil {
		return false
	}
	return claims.Subject == expectedUsername
}

// ExtractSubject verifies structure and signature only. Expiry is left to
// Validate.
func (s *TokenService) ExtractSubject(token string) (string, error) {
	claims, err := s.parse(token, jwt.WithoutClaimsValidation())
	if err != nil || claims.Subject == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.Subject, nil
}

func (s *TokenService) parse(token string, opts ...jwt.ParserOption) (*jwt.RegisteredClaims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
