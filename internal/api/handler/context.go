package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/igloolab/pharmacy-inventory/internal/api/middleware"
	"github.com/igloolab/pharmacy-inventory/internal/core/domain"
)

// ctxUserID returns the user id set by middleware.Auth. An empty value means
// the middleware did not run for this route.
func ctxUserID(c echo.Context) (string, error) {
	id, _ := c.Get(middleware.CtxUserID).(string)
	if id == "" {
		return "", domain.ErrUnauthorized
	}
	return id, nil
}
