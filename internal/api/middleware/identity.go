package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/rsandoval/tasks-api/internal/api/metrics"
	"github.com/rsandoval/tasks-api/internal/core/domain"
	"github.com/rsandoval/tasks-api/internal/core/ports"
)

// IdentityKey is the echo.Context key holding the caller's domain.Identity.
const IdentityKey = "identity"

const bearerPrefix = "Bearer "

// Identity resolves the caller from the Authorization header.
//
// The middleware never rejects a request. A missing header, a header without
// the exact "Bearer " prefix, an unverifiable token or an unknown subject all
// leave the request unauthenticated; Enforce decides per route whether that
// is acceptable.
func Identity(tokens ports.TokenService, users ports.UserRepository, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, bearerPrefix) {
				return next(c)
			}
			raw := strings.TrimPrefix(header, bearerPrefix)

			subject, err := tokens.ExtractSubject(raw)
			if err != nil {
				metrics.TokenValidationsTotal.WithLabelValues("malformed").Inc()
				return next(c)
			}

			if id, ok := IdentityFrom(c); ok && id.Authenticated {
				return next(c)
			}

			user, err := users.FindByUsername(c.Request().Context(), subject)
			if err != nil {
				if !errors.Is(err, domain.ErrUserNotFound) {
					log.Warn().Err(err).Msg("identity: user lookup failed")
				}
				metrics.TokenValidationsTotal.WithLabelValues("unknown_user").Inc()
				return next(c)
			}

			if !tokens.Validate(raw, user.Username) {
				metrics.TokenValidationsTotal.WithLabelValues("rejected").Inc()
				return next(c)
			}

			metrics.TokenValidationsTotal.WithLabelValues("authenticated").Inc()
			c.Set(IdentityKey, domain.Authenticate(user.Username))
			return next(c)
		}
	}
}

// IdentityFrom returns the identity stored by Identity. ok is false when the
// middleware did not authenticate the request.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	id, ok := c.Get(IdentityKey).(domain.Identity)
	if !ok {
		return domain.Anonymous, false
	}
	return id, true
}
