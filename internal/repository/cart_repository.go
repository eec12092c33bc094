package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/marketplace-api/internal/model"
)

type CartRepo struct{ DB *sql.DB }

func NewCartRepo(db *sql.DB) *CartRepo { return &CartRepo{DB: db} }

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ensureCart creates the buyer's cart row when it does not exist.  Unlike
// INSERT IGNORE, the no-op update still surfaces foreign key failures.
func ensureCart(ctx context.Context, ex execer, buyerID string) error {
	_, err := ex.ExecContext(ctx,
		"INSERT INTO Cart (buyer_id) VALUES (?) ON DUPLICATE KEY UPDATE buyer_id = buyer_id", buyerID)
	if missingReference(err) == "Buyer" {
		return ErrBuyerNotFound
	}
	return err
}

// Items returns the products in a buyer's cart, creating an empty cart on
// first access.
func (r *CartRepo) Items(ctx context.Context, buyerID string) ([]model.CartItem, error) {
	if err := ensureCart(ctx, r.DB, buyerID); err != nil {
		return nil, err
	}
	const q = `SELECT p.id, p.name, COALESCE(p.description, ''), p.price, COALESCE(p.category, '')
		FROM Cart_Product cp
		JOIN Product p ON p.id = cp.product_id
		WHERE cp.cart_id = ?
		ORDER BY p.name, p.id`
	rows, err := r.DB.QueryContext(ctx, q, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.CartItem{}
	for rows.Next() {
		var it model.CartItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.Price, &it.Category); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Add puts a product into the buyer's cart inside one transaction.  The
// Cart_Product primary key decides duplicates, so concurrent adds of the same
// pair insert exactly one row; added is false for the losers.
func (r *CartRepo) Add(ctx context.Context, buyerID, productID string) (added bool, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var n int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM Product WHERE id = ?", productID).Scan(&n); err != nil {
		return false, err
	}
	if n == 0 {
		return false, ErrProductNotFound
	}
	if err := ensureCart(ctx, tx, buyerID); err != nil {
		return false, err
	}

	_, err = tx.ExecContext(ctx, "INSERT INTO Cart_Product (cart_id, product_id) VALUES (?, ?)", buyerID, productID)
	switch {
	case err == nil:
		added = true
	case isMySQLError(err, mysqlDuplicateEntry):
		added = false
	case missingReference(err) == "Product":
		return false, ErrProductNotFound
	default:
		return false, fmt.Errorf("insert cart product: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	committed = true
	return added, nil
}

// Remove deletes the pair if present.  Removing an absent pair is not an
// error.
func (r *CartRepo) Remove(ctx context.Context, buyerID, productID string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM Cart_Product WHERE cart_id = ? AND product_id = ?", buyerID, productID)
	return err
}
