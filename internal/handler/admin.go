package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/repository"
)

// AdminHandler serves /api/admin.  Every route except the diagnostic
// users-test listing sits behind JWTAuth + RequireRole(admin).
type AdminHandler struct {
	Users *repository.UserRepo
}

func NewAdminHandler(r *repository.UserRepo) *AdminHandler { return &AdminHandler{Users: r} }

// Verify confirms the caller holds an admin token.
func (h *AdminHandler) Verify(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Admin authentication successful",
		"adminId": p.AdminID,
		"userId":  p.UserID,
	})
}

// ListUsers lists every user with its highest role.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	users, err := h.Users.ListWithRoles(ctx)
	if err != nil {
		return serverError(c, err, "Database error while fetching users")
	}
	return c.JSON(http.StatusOK, users)
}
