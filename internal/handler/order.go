package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/queue"
	"github.com/iliyamo/marketplace-api/internal/repository"
)

// OrderHandler serves /api/orders.  Events may be nil.
type OrderHandler struct {
	Orders *repository.OrderRepo
	Events EventPublisher
}

func NewOrderHandler(r *repository.OrderRepo, events EventPublisher) *OrderHandler {
	return &OrderHandler{Orders: r, Events: events}
}

type placeOrderReq struct {
	BuyerID  string `json:"buyer_id"`
	Products []struct {
		ID string `json:"id"`
	} `json:"products"`
}

// Place creates an order from the submitted product ids and clears the
// buyer's cart, atomically.
func (h *OrderHandler) Place(c echo.Context) error {
	var req placeOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid product data"})
	}
	req.BuyerID = strings.TrimSpace(req.BuyerID)
	if req.BuyerID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing buyer_id"})
	}
	if len(req.Products) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "No products in cart"})
	}
	ids := make([]string, 0, len(req.Products))
	for _, p := range req.Products {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid product data"})
		}
		ids = append(ids, id)
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	po, err := h.Orders.Place(ctx, req.BuyerID, ids)
	switch {
	case errors.Is(err, repository.ErrNoProducts):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "No valid products found for order"})
	case errors.Is(err, repository.ErrBuyerNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Buyer not found"})
	case err != nil:
		return serverError(c, err, "Database error while creating order")
	}

	if h.Events != nil {
		ev := queue.OrderPlacedEvent{
			OrderID:    po.ID,
			BuyerID:    po.BuyerID,
			SellerID:   po.SellerID,
			ProductIDs: po.ProductIDs,
			PlacedAt:   po.CreatedAt.Format(time.RFC3339),
		}
		publishAsync(func(ctx context.Context) error { return h.Events.PublishOrderPlaced(ctx, ev) })
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Order placed successfully", "orderId": po.ID})
}

// View returns one joined row per product of the order.
func (h *OrderHandler) View(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	lines, err := h.Orders.Lines(ctx, c.Param("id"))
	if errors.Is(err, repository.ErrOrderNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Order not found"})
	}
	if err != nil {
		return serverError(c, err, "Error fetching order")
	}
	return c.JSON(http.StatusOK, lines)
}

// List filters by ?buyer_id or ?seller_id; with neither it returns the
// newest orders.
func (h *OrderHandler) List(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	orders, err := h.Orders.List(ctx, repository.OrderFilter{
		BuyerID:  strings.TrimSpace(c.QueryParam("buyer_id")),
		SellerID: strings.TrimSpace(c.QueryParam("seller_id")),
	})
	if err != nil {
		return serverError(c, err, "Error fetching orders")
	}
	return c.JSON(http.StatusOK, orders)
}

// UpdateStatus overwrites the status with any non-empty value.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing status"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	err := h.Orders.UpdateStatus(ctx, c.Param("id"), status)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Order not found"})
	}
	if err != nil {
		return serverError(c, err, "Error updating order status")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Order status updated"})
}
