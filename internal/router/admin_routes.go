package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/handler"
	"github.com/iliyamo/marketplace-api/internal/middleware"
	"github.com/iliyamo/marketplace-api/internal/model"
)

// RegisterAdmin mounts /api/admin behind an admin token.  The
// unauthenticated users-test listing is only mounted when diagnostics is
// true.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string, diagnostics bool) {
	adminOnly := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	}
	g := e.Group("/api/admin")
	g.GET("/verify", h.Verify, adminOnly...)
	g.GET("/users", h.ListUsers, adminOnly...)

	if diagnostics {
		g.GET("/users-test", h.ListUsers)
	}
}
