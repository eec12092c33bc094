package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/repository"
)

// FeedbackHandler serves /api/reviews and /api/inquiries.
type FeedbackHandler struct {
	Feedback *repository.FeedbackRepo
}

func NewFeedbackHandler(r *repository.FeedbackRepo) *FeedbackHandler {
	return &FeedbackHandler{Feedback: r}
}

type reviewReq struct {
	BuyerID   string `json:"buyer_id"`
	ProductID string `json:"product_id"`
	Rating    *int   `json:"rating"`
	Comment   string `json:"comment"`
}

// LeaveReview stores a 1..5 rating with an optional comment.
func (h *FeedbackHandler) LeaveReview(c echo.Context) error {
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.BuyerID = strings.TrimSpace(req.BuyerID)
	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.BuyerID == "" || req.ProductID == "" || req.Rating == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "buyer_id, product_id and rating are required"})
	}
	if *req.Rating < 1 || *req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rating must be between 1 and 5"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	rv := model.Review{BuyerID: req.BuyerID, ProductID: req.ProductID, Rating: *req.Rating, Comment: req.Comment}
	err := h.Feedback.CreateReview(ctx, &rv)
	switch {
	case errors.Is(err, repository.ErrBuyerNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Buyer not found"})
	case errors.Is(err, repository.ErrProductNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	case err != nil:
		return serverError(c, err, "Error leaving review")
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Review left", "id": rv.ID})
}

// ProductReviews lists the reviews of one product.
func (h *FeedbackHandler) ProductReviews(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	items, err := h.Feedback.ReviewsByProduct(ctx, c.Param("id"))
	if err != nil {
		return serverError(c, err, "Error fetching reviews")
	}
	return c.JSON(http.StatusOK, items)
}

type inquiryReq struct {
	BuyerID  string `json:"buyer_id"`
	SellerID string `json:"seller_id"`
	Message  string `json:"message"`
}

// SendInquiry stores a message from a buyer to a seller.
func (h *FeedbackHandler) SendInquiry(c echo.Context) error {
	var req inquiryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.BuyerID = strings.TrimSpace(req.BuyerID)
	req.SellerID = strings.TrimSpace(req.SellerID)
	req.Message = strings.TrimSpace(req.Message)
	if req.BuyerID == "" || req.SellerID == "" || req.Message == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "buyer_id, seller_id and message are required"})
	}

	ctx, cancel := dbCtx(c)
	defer cancel()

	q := model.Inquiry{BuyerID: req.BuyerID, SellerID: req.SellerID, Message: req.Message}
	err := h.Feedback.CreateInquiry(ctx, &q)
	switch {
	case errors.Is(err, repository.ErrBuyerNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Buyer not found"})
	case errors.Is(err, repository.ErrSellerNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Seller not found"})
	case err != nil:
		return serverError(c, err, "Error sending message")
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Message sent", "id": q.ID})
}

// SellerInquiries lists the messages sent to one seller.
func (h *FeedbackHandler) SellerInquiries(c echo.Context) error {
	ctx, cancel := dbCtx(c)
	defer cancel()

	items, err := h.Feedback.InquiriesBySeller(ctx, c.Param("id"))
	if err != nil {
		return serverError(c, err, "Error fetching inquiries")
	}
	return c.JSON(http.StatusOK, items)
}
