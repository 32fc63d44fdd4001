package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ema-residences/rental-system/internal/api/middleware"
	"github.com/ema-residences/rental-system/internal/core/domain"
)

// ctxIdentity extracts the identity injected by the Auth middleware and
// fast-fails before any service call; its presence proves the middleware ran.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	identity, ok := c.Get(middleware.ContextIdentity).(domain.Identity)
	if !ok || identity.ID == "" {
		return domain.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return identity, nil
}
