package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/repository"
)

type DashboardHandler struct {
	Stats *repository.DashboardRepo
}

func NewDashboardHandler(r *repository.DashboardRepo) *DashboardHandler {
	return &DashboardHandler{Stats: r}
}

func (h *DashboardHandler) Seller(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	st, err := h.Stats.SellerStats(ctx, c.Param("id"))
	if err != nil {
		return serverError(c, err, "Error fetching seller stats")
	}
	return c.JSON(http.StatusOK, st)
}

func (h *DashboardHandler) Buyer(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	st, err := h.Stats.BuyerStats(ctx, c.Param("id"))
	if err != nil {
		return serverError(c, err, "Error fetching buyer stats")
	}
	return c.JSON(http.StatusOK, st)
}
