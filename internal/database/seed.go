package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/marketplace-api/internal/utils"
)

// SeedResult carries the ids generated by Seed so callers (and tests) can
// refer to the demonstration rows.
type SeedResult struct {
	SellerUserID string
	BuyerUserID  string
	AdminUserID  string
	SellerID     string
	BuyerID      string
	AdminID      string
	ProductIDs   []string
}

var seedProducts = []struct {
	name, description string
	price             float64
	category          string
}{
	{"Product 1", "Description for product 1", 10.0, "Category 1"},
	{"Product 2", "Description for product 2", 20.0, "Category 2"},
	{"Product 3", "Description for product 3", 30.0, "Category 3"},
}

// Seed inserts the demonstration rows when the User table is empty.  It
// returns (nil, nil) when data already exists.  All inserts share one
// transaction so a partial seed never survives.
func Seed(ctx context.Context, db *sql.DB, bcryptCost int) (*SeedResult, error) {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM User").Scan(&count); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		logrus.Info("database already has seed data; skipping")
		return nil, nil
	}

	userHash, err := utils.HashPassword("password123", bcryptCost)
	if err != nil {
		return nil, err
	}
	adminHash, err := utils.HashPassword("admin123", bcryptCost)
	if err != nil {
		return nil, err
	}

	res := &SeedResult{
		SellerUserID: uuid.NewString(),
		BuyerUserID:  uuid.NewString(),
		AdminUserID:  uuid.NewString(),
		SellerID:     uuid.NewString(),
		BuyerID:      uuid.NewString(),
		AdminID:      uuid.NewString(),
	}

	err = WithTx(ctx, db, func(tx *sql.Tx) error {
		users := []struct{ id, name, email, hash string }{
			{res.SellerUserID, "John Doe", "john@example.com", userHash},
			{res.BuyerUserID, "Jane Smith", "jane@example.com", userHash},
			{res.AdminUserID, "Admin User", "admin@admin", adminHash},
		}
		for _, u := range users {
			if _, err := tx.ExecContext(ctx, "INSERT INTO User (id, name, email, password) VALUES (?, ?, ?, ?)", u.id, u.name, u.email, u.hash); err != nil {
				return fmt.Errorf("seed user %s: %w", u.email, err)
			}
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO Admin (id, user_id) VALUES (?, ?)", res.AdminID, res.AdminUserID); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO Seller (id, user_id) VALUES (?, ?)", res.SellerID, res.SellerUserID); err != nil {
			return fmt.Errorf("seed seller: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO Buyer (id, user_id) VALUES (?, ?)", res.BuyerID, res.BuyerUserID); err != nil {
			return fmt.Errorf("seed buyer: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO Cart (buyer_id) VALUES (?)", res.BuyerID); err != nil {
			return fmt.Errorf("seed cart: %w", err)
		}
		for _, p := range seedProducts {
			id := uuid.NewString()
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO Product (id, seller_id, name, description, price, category) VALUES (?, ?, ?, ?, ?, ?)",
				id, res.SellerID, p.name, p.description, p.price, p.category); err != nil {
				return fmt.Errorf("seed product %s: %w", p.name, err)
			}
			res.ProductIDs = append(res.ProductIDs, id)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO Cart_Product (cart_id, product_id) VALUES (?, ?)", res.BuyerID, res.ProductIDs[0]); err != nil {
			return fmt.Errorf("seed cart item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logrus.WithField("products", len(res.ProductIDs)).Info("seed data inserted")
	return res, nil
}
