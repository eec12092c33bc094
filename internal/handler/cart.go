package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/repository"
)

type CartHandler struct {
	Carts *repository.CartRepo
}

func NewCartHandler(r *repository.CartRepo) *CartHandler { return &CartHandler{Carts: r} }

type cartReq struct {
	BuyerID   string `json:"buyer_id"`
	ProductID string `json:"product_id"`
}

func (r *cartReq) trim() bool {
	r.BuyerID = strings.TrimSpace(r.BuyerID)
	r.ProductID = strings.TrimSpace(r.ProductID)
	return r.BuyerID != "" && r.ProductID != ""
}

// Get returns the buyer's cart items, creating an empty cart if needed.
func (h *CartHandler) Get(c echo.Context) error {
	buyerID := strings.TrimSpace(c.Param("buyer_id"))
	if buyerID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing buyer_id parameter"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	items, err := h.Carts.Items(ctx, buyerID)
	if errors.Is(err, repository.ErrBuyerNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Buyer not found"})
	}
	if err != nil {
		return serverError(c, err, "Failed to fetch cart items")
	}
	return c.JSON(http.StatusOK, items)
}

// Add answers 201 when the product was added and 200 when it was already in
// the cart.
func (h *CartHandler) Add(c echo.Context) error {
	var req cartReq
	if err := c.Bind(&req); err != nil || !req.trim() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing required fields: buyer_id and product_id are required"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	added, err := h.Carts.Add(ctx, req.BuyerID, req.ProductID)
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	case errors.Is(err, repository.ErrBuyerNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Buyer not found"})
	case err != nil:
		return serverError(c, err, "Failed to add product to cart")
	case !added:
		return c.JSON(http.StatusOK, echo.Map{"message": "Product already in cart"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Product added to cart successfully"})
}

// Remove deletes the pair; removing an absent product still succeeds.
func (h *CartHandler) Remove(c echo.Context) error {
	var req cartReq
	if err := c.Bind(&req); err != nil || !req.trim() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing required fields"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	if err := h.Carts.Remove(ctx, req.BuyerID, req.ProductID); err != nil {
		return serverError(c, err, "Failed to remove product from cart")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Product removed from cart"})
}
