package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// AuthGate enforces a caller-supplied uid (X-Sprout-Uid header or
// SPROUT_UID cookie) when enabled. Disabled, it passes through and
// DevLogin supplies the uid instead.
func AuthGate(enabled bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !enabled {
				return next(c)
			}
			uid := c.Request().Header.Get("X-Sprout-Uid")
			if uid == "" {
				if ck, err := c.Cookie("SPROUT_UID"); err == nil {
					uid = ck.Value
				}
			}
			if uid == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing uid"})
			}
			c.Set("uid", uid)
			return next(c)
		}
	}
}
