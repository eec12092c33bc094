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

// PaymentHandler serves /api/payments.  Events may be nil.
type PaymentHandler struct {
	Payments *repository.PaymentRepo
	Events   EventPublisher
}

func NewPaymentHandler(r *repository.PaymentRepo, events EventPublisher) *PaymentHandler {
	return &PaymentHandler{Payments: r, Events: events}
}

type paymentReq struct {
	OrderID string   `json:"order_id"`
	Amount  *float64 `json:"amount"`
	Method  string   `json:"method"`
}

// Make records one payment and marks the order Paid.  The returned
// paymentId is the stored row id.
func (h *PaymentHandler) Make(c echo.Context) error {
	var req paymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing required payment information"})
	}
	req.OrderID = strings.TrimSpace(req.OrderID)
	req.Method = strings.TrimSpace(req.Method)
	if req.OrderID == "" || req.Method == "" || req.Amount == nil || *req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing required payment information"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	p, err := h.Payments.Make(ctx, req.OrderID, *req.Amount, req.Method)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Order not found"})
	}
	if err != nil {
		return serverError(c, err, "Database error while processing payment")
	}

	if h.Events != nil {
		ev := queue.PaymentMadeEvent{
			PaymentID: p.ID,
			OrderID:   p.OrderID,
			Amount:    p.Amount,
			Method:    p.Method,
			PaidAt:    p.CreatedAt.Format(time.RFC3339),
		}
		publishAsync(func(ctx context.Context) error { return h.Events.PublishPaymentMade(ctx, ev) })
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Payment processed successfully", "paymentId": p.ID})
}

// ListByOrder returns the payments recorded for an order.
func (h *PaymentHandler) ListByOrder(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	items, err := h.Payments.ListByOrder(ctx, c.Param("order_id"))
	if err != nil {
		return serverError(c, err, "Error fetching payments")
	}
	return c.JSON(http.StatusOK, items)
}
