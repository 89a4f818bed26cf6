package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rsandoval/tasks-api/internal/api/metrics"
)

// Access is the capability a route requires. The zero value is Protected, so
// a route registered without an explicit tag requires an identity.
type Access int

const (
	Protected Access = iota
	Public
)

func (a Access) String() string {
	if a == Public {
		return "public"
	}
	return "protected"
}

// Enforce rejects requests to Protected routes that carry no authenticated
// identity. It must run after Identity.
func Enforce(access Access) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if access == Public {
			return next
		}
		return func(c echo.Context) error {
			if id, ok := IdentityFrom(c); !ok || !id.Authenticated {
				metrics.AccessDeniedTotal.WithLabelValues("unauthenticated").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}
