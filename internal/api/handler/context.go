package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rsandoval/tasks-api/internal/api/middleware"
	"github.com/rsandoval/tasks-api/internal/core/domain"
)

// ctxIdentity returns the identity established by the Identity middleware, or
// a 401 when the request is anonymous.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok || !id.Authenticated {
		return domain.Anonymous, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return id, nil
}
