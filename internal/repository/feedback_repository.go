package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/iliyamo/marketplace-api/internal/model"
)

// FeedbackRepo stores reviews and buyer-to-seller inquiries.  Both are
// append-only.
type FeedbackRepo struct{ DB *sql.DB }

func NewFeedbackRepo(db *sql.DB) *FeedbackRepo { return &FeedbackRepo{DB: db} }

// CreateReview inserts rv and fills its id.  Unknown buyer or product ids
// yield ErrBuyerNotFound or ErrProductNotFound.
func (r *FeedbackRepo) CreateReview(ctx context.Context, rv *model.Review) error {
	rv.ID = uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO Review (id, buyer_id, product_id, rating, comment) VALUES (?, ?, ?, ?, ?)",
		rv.ID, rv.BuyerID, rv.ProductID, rv.Rating, rv.Comment)
	switch missingReference(err) {
	case "Buyer":
		return ErrBuyerNotFound
	case "Product":
		return ErrProductNotFound
	}
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// ReviewsByProduct lists a product's reviews, newest first.
func (r *FeedbackRepo) ReviewsByProduct(ctx context.Context, productID string) ([]model.Review, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, buyer_id, product_id, rating, COALESCE(comment, ''), created_at
		FROM Review WHERE product_id = ? ORDER BY created_at DESC, id`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Review{}
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.BuyerID, &rv.ProductID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// CreateInquiry inserts q and fills its id.
func (r *FeedbackRepo) CreateInquiry(ctx context.Context, q *model.Inquiry) error {
	q.ID = uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO Inquiry (id, buyer_id, seller_id, message) VALUES (?, ?, ?, ?)",
		q.ID, q.BuyerID, q.SellerID, q.Message)
	switch missingReference(err) {
	case "Buyer":
		return ErrBuyerNotFound
	case "Seller":
		return ErrSellerNotFound
	}
	if err != nil {
		return fmt.Errorf("insert inquiry: %w", err)
	}
	return nil
}

// InquiriesBySeller lists the messages sent to a seller, newest first.
func (r *FeedbackRepo) InquiriesBySeller(ctx context.Context, sellerID string) ([]model.Inquiry, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, buyer_id, seller_id, message, created_at
		FROM Inquiry WHERE seller_id = ? ORDER BY created_at DESC, id`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Inquiry{}
	for rows.Next() {
		var q model.Inquiry
		if err := rows.Scan(&q.ID, &q.BuyerID, &q.SellerID, &q.Message, &q.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
