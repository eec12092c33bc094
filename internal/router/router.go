package router // package router mounts every route group of the API

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/handler"
	"github.com/iliyamo/marketplace-api/internal/middleware"
	"github.com/iliyamo/marketplace-api/internal/model"
)

// RegisterRoutes registers the health checks, which need neither auth nor /api.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterAuth mounts /api/auth.  limiter wraps the credential endpoints;
// the diagnostic user lookup is only mounted when diagnostics is true.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limiter echo.MiddlewareFunc, diagnostics bool) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register, limiter)
	g.POST("/login", a.Login, limiter)
	g.POST("/refresh", a.Refresh, limiter)
	g.POST("/logout", a.Logout)
	g.GET("/me", a.Me, middleware.JWTAuth(jwtSecret))

	if diagnostics {
		g.GET("/check-user/:email", a.CheckUser)
	}
}

// RegisterCatalogue mounts /api/products and /api/search.  Read routes are
// public and cached; mutations need a seller token.
func RegisterCatalogue(e *echo.Echo, p *handler.ProductHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	sellerOnly := []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleSeller),
	}

	g := e.Group("/api/products")
	g.GET("", p.List, cache)
	g.GET("/:id", p.Get)
	g.POST("/add_product", p.Add, sellerOnly...)
	g.PUT("/edit/:id", p.Edit, sellerOnly...)
	g.DELETE("/delete/:id", p.Delete, sellerOnly...)
	g.POST("/:id/images", p.UploadImage, sellerOnly...)

	e.GET("/api/search/products", p.Search, cache)
}
