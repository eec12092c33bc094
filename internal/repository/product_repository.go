package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/marketplace-api/internal/model"
)

// ProductRepo provides catalogue queries and owner-checked mutations on the
// Product and Image tables.
type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

// DB exposes the underlying handle for handlers that span repositories.
func (r *ProductRepo) DB() *sql.DB { return r.db }

const productColumns = "id, seller_id, name, COALESCE(description, ''), price, COALESCE(category, '')"

// ProductSearch filters a catalogue query.  Empty strings and nil bounds are
// ignored.
type ProductSearch struct {
	Query    string
	SellerID string
	Category string
	MinPrice *float64
	MaxPrice *float64
}

// likePattern wraps s for a substring LIKE match, escaping LIKE wildcards.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// Search returns products whose name contains Query, narrowed by the other
// filters.  It backs both the product listing and the search route.
func (r *ProductRepo) Search(ctx context.Context, s ProductSearch) ([]model.Product, error) {
	where := []string{"name LIKE ?"}
	args := []any{likePattern(s.Query)}
	if s.SellerID != "" {
		where = append(where, "seller_id = ?")
		args = append(args, s.SellerID)
	}
	if s.Category != "" {
		where = append(where, "category = ?")
		args = append(args, s.Category)
	}
	if s.MinPrice != nil {
		where = append(where, "price >= ?")
		args = append(args, *s.MinPrice)
	}
	if s.MaxPrice != nil {
		where = append(where, "price <= ?")
		args = append(args, *s.MaxPrice)
	}

	q := "SELECT " + productColumns + " FROM Product WHERE " + strings.Join(where, " AND ") + " ORDER BY name, id"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.SellerID, &p.Name, &p.Description, &p.Price, &p.Category); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByID returns a product with its images, or ErrProductNotFound.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (model.Product, error) {
	var p model.Product
	err := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM Product WHERE id = ?", id).
		Scan(&p.ID, &p.SellerID, &p.Name, &p.Description, &p.Price, &p.Category)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrProductNotFound
	}
	if err != nil {
		return p, err
	}

	rows, err := r.db.QueryContext(ctx, "SELECT id, product_id, url FROM Image WHERE product_id = ? ORDER BY id", id)
	if err != nil {
		return p, err
	}
	defer rows.Close()
	for rows.Next() {
		var img model.Image
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL); err != nil {
			return p, err
		}
		p.Images = append(p.Images, img)
	}
	return p, rows.Err()
}

// Create inserts p, assigning a new id.  An unknown seller yields
// ErrSellerNotFound.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	p.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO Product (id, seller_id, name, description, price, category) VALUES (?, ?, ?, ?, ?, ?)",
		p.ID, p.SellerID, p.Name, p.Description, p.Price, p.Category)
	if isMySQLError(err, mysqlNoReferencedRow) {
		return ErrSellerNotFound
	}
	return err
}

// lockOwnedTx loads the owner of a product under a row lock and checks it
// against sellerID.
func lockOwnedTx(ctx context.Context, tx *sql.Tx, id, sellerID string) error {
	var owner string
	err := tx.QueryRowContext(ctx, "SELECT seller_id FROM Product WHERE id = ? FOR UPDATE", id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}
	if owner != sellerID {
		return ErrForbidden
	}
	return nil
}

// UpdateOwned overwrites the editable fields of product p.ID when it belongs
// to p.SellerID.  Returns ErrProductNotFound or ErrForbidden without touching
// the row otherwise.
func (r *ProductRepo) UpdateOwned(ctx context.Context, p model.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := lockOwnedTx(ctx, tx, p.ID, p.SellerID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE Product SET name = ?, description = ?, price = ?, category = ? WHERE id = ?",
		p.Name, p.Description, p.Price, p.Category, p.ID); err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// DeleteOwned removes a product owned by sellerID together with its cart
// entries and image rows, and returns the object keys of the removed images
// so the caller can drop them from storage.  A product referenced by orders
// or reviews cannot be deleted and yields ErrConflict.
func (r *ProductRepo) DeleteOwned(ctx context.Context, id, sellerID string) ([]string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := lockOwnedTx(ctx, tx, id, sellerID); err != nil {
		return nil, err
	}
	keys, err := imageKeysTx(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("load images: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM Cart_Product WHERE product_id = ?", id); err != nil {
		return nil, fmt.Errorf("delete cart entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM Image WHERE product_id = ?", id); err != nil {
		return nil, fmt.Errorf("delete images: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM Product WHERE id = ?", id); err != nil {
		if isMySQLError(err, mysqlRowIsReferenced) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("delete product: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return keys, nil
}

func imageKeysTx(ctx context.Context, tx *sql.Tx, productID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, "SELECT url FROM Image WHERE product_id = ?", productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// CheckOwner returns nil when product id exists and belongs to sellerID.
func (r *ProductRepo) CheckOwner(ctx context.Context, id, sellerID string) error {
	var owner string
	err := r.db.QueryRowContext(ctx, "SELECT seller_id FROM Product WHERE id = ?", id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProductNotFound
	}
	if err != nil {
		return err
	}
	if owner != sellerID {
		return ErrForbidden
	}
	return nil
}

// AddImage records an uploaded object key for a product.
func (r *ProductRepo) AddImage(ctx context.Context, productID, key string) (model.Image, error) {
	img := model.Image{ID: uuid.NewString(), ProductID: productID, URL: key}
	_, err := r.db.ExecContext(ctx, "INSERT INTO Image (id, product_id, url) VALUES (?, ?, ?)", img.ID, img.ProductID, img.URL)
	if isMySQLError(err, mysqlNoReferencedRow) {
		return img, ErrProductNotFound
	}
	return img, err
}
