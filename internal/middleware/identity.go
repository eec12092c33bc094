package middleware

// identity.go exposes the authenticated principal to handlers and gives the
// cache and rate limiter a stable per-user key component.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/utils"
)

// PrincipalFrom returns the principal verified by JWTAuth.  ok is false on
// routes that are not behind JWTAuth.
func PrincipalFrom(c echo.Context) (model.Principal, bool) {
	claims, ok := c.Get(ctxClaims).(*utils.Claims)
	if !ok || claims == nil {
		return model.Principal{}, false
	}
	return claims.Principal(), true
}

// userID returns the authenticated user id, or "anon".
func userID(c echo.Context) string {
	if s, ok := c.Get(ctxUserID).(string); ok && s != "" {
		return s
	}
	return "anon"
}
