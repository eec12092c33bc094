package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/marketplace-api/internal/model"
)

type DashboardRepo struct{ DB *sql.DB }

func NewDashboardRepo(db *sql.DB) *DashboardRepo { return &DashboardRepo{DB: db} }

// SellerStats aggregates a seller's product count, order count and the
// average rating over reviews of the seller's products.  Unknown ids yield
// zero counts.
func (r *DashboardRepo) SellerStats(ctx context.Context, sellerID string) (model.SellerStats, error) {
	const q = "SELECT " +
		"(SELECT COUNT(*) FROM Product WHERE seller_id = ?), " +
		"(SELECT COUNT(*) FROM `Order` WHERE seller_id = ?), " +
		"(SELECT AVG(r.rating) FROM Review r JOIN Product p ON p.id = r.product_id WHERE p.seller_id = ?)"
	var (
		st  model.SellerStats
		avg sql.NullFloat64
	)
	if err := r.DB.QueryRowContext(ctx, q, sellerID, sellerID, sellerID).Scan(&st.ProductCount, &st.OrderCount, &avg); err != nil {
		return st, err
	}
	if avg.Valid {
		v := avg.Float64
		st.AverageRating = &v
	}
	return st, nil
}

// BuyerStats counts a buyer's orders and reviews.
func (r *DashboardRepo) BuyerStats(ctx context.Context, buyerID string) (model.BuyerStats, error) {
	const q = "SELECT " +
		"(SELECT COUNT(*) FROM `Order` WHERE buyer_id = ?), " +
		"(SELECT COUNT(*) FROM Review WHERE buyer_id = ?)"
	var st model.BuyerStats
	err := r.DB.QueryRowContext(ctx, q, buyerID, buyerID).Scan(&st.OrderCount, &st.ReviewCount)
	return st, err
}
