package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/marketplace-api/internal/model"
)

// OrderRepo provides placement, listing and status updates for orders.
// Orders link to their products through the Order_Product table; prices are
// never copied, every read joins the live Product rows.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// listSep separates aggregated values in order listings.  Product names are
// rejected on write when they contain control characters, so names with
// commas split back intact.
const listSep = "\x1f"

// listLimit caps the unfiltered order listing.
const listLimit = 50

// PlacedOrder describes a committed order.
type PlacedOrder struct {
	ID         string
	BuyerID    string
	SellerID   string
	ProductIDs []string
	CreatedAt  time.Time
}

// Place creates an order for buyerID from the submitted product ids in a
// single transaction: resolve the products, insert the Order row, bulk
// insert Order_Product and clear the buyer's cart.  Unknown ids are skipped
// and repeated ids collapse into one line.  The seller is taken from the
// first submitted id that resolves, so an order always has one seller.
// ErrNoProducts is returned when nothing resolves and ErrBuyerNotFound when
// the buyer does not exist.
func (r *OrderRepo) Place(ctx context.Context, buyerID string, productIDs []string) (*PlacedOrder, error) {
	if len(productIDs) == 0 {
		return nil, ErrNoProducts
	}
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

	sellers, err := r.productSellersTx(ctx, tx, productIDs)
	if err != nil {
		return nil, err
	}
	po := &PlacedOrder{ID: uuid.NewString(), BuyerID: buyerID}
	seen := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		seller, ok := sellers[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		if po.SellerID == "" {
			po.SellerID = seller
		}
		po.ProductIDs = append(po.ProductIDs, id)
	}
	if len(po.ProductIDs) == 0 {
		return nil, ErrNoProducts
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO `Order` (id, buyer_id, seller_id, status) VALUES (?, ?, ?, ?)",
		po.ID, po.BuyerID, po.SellerID, model.OrderProcessing); err != nil {
		if missingReference(err) == "Buyer" {
			return nil, ErrBuyerNotFound
		}
		return nil, fmt.Errorf("insert order: %w", err)
	}
	if err := r.createLinesBulkTx(ctx, tx, po.ID, po.ProductIDs); err != nil {
		return nil, fmt.Errorf("insert order products: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM Cart_Product WHERE cart_id = ?", buyerID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	po.CreatedAt = time.Now().UTC()
	return po, nil
}

// productSellersTx maps each existing product id among ids to its seller.
// Rows are share-locked so a concurrent delete cannot remove a product
// between resolution and the Order_Product insert.
func (r *OrderRepo) productSellersTx(ctx context.Context, tx *sql.Tx, ids []string) (map[string]string, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := tx.QueryContext(ctx,
		"SELECT id, seller_id FROM Product WHERE id IN ("+placeholders+") LOCK IN SHARE MODE", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]string, len(ids))
	for rows.Next() {
		var id, seller string
		if err := rows.Scan(&id, &seller); err != nil {
			return nil, err
		}
		out[id] = seller
	}
	return out, rows.Err()
}

// createLinesBulkTx inserts all Order_Product rows in one statement.
func (r *OrderRepo) createLinesBulkTx(ctx context.Context, tx *sql.Tx, orderID string, productIDs []string) error {
	query := "INSERT INTO Order_Product (order_id, product_id) VALUES "
	args := make([]interface{}, 0, len(productIDs)*2)
	for i, pid := range productIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?)"
		args = append(args, orderID, pid)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// Lines returns one row per product of the order joined with the live
// product data.  ErrOrderNotFound is returned when the order has no rows.
func (r *OrderRepo) Lines(ctx context.Context, orderID string) ([]model.OrderLine, error) {
	const q = "SELECT o.id, o.status, p.id, p.name, COALESCE(p.description, ''), p.price " +
		"FROM `Order` o " +
		"JOIN Order_Product op ON op.order_id = o.id " +
		"JOIN Product p ON p.id = op.product_id " +
		"WHERE o.id = ? " +
		"ORDER BY p.name, p.id"
	rows, err := r.db.QueryContext(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	lines := make([]model.OrderLine, 0)
	for rows.Next() {
		var l model.OrderLine
		if err := rows.Scan(&l.ID, &l.Status, &l.ProductID, &l.Name, &l.Description, &l.Price); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrOrderNotFound
	}
	return lines, nil
}

// OrderFilter selects one of the listing shapes.  BuyerID wins when both are
// set; when neither is set the newest listLimit orders are returned.
type OrderFilter struct {
	BuyerID  string
	SellerID string
}

// List returns orders with their products aggregated into one row per order
// and totals summed from the live product prices.
func (r *OrderRepo) List(ctx context.Context, f OrderFilter) ([]model.Order, error) {
	sep := "'" + listSep + "'"
	q := "SELECT o.id, o.status, o.buyer_id, o.seller_id, o.created_at, " +
		"GROUP_CONCAT(p.id ORDER BY p.id SEPARATOR " + sep + "), " +
		"GROUP_CONCAT(p.name ORDER BY p.id SEPARATOR " + sep + "), " +
		"GROUP_CONCAT(p.price ORDER BY p.id SEPARATOR " + sep + ") " +
		"FROM `Order` o " +
		"LEFT JOIN Order_Product op ON op.order_id = o.id " +
		"LEFT JOIN Product p ON p.id = op.product_id "
	var args []interface{}
	switch {
	case f.BuyerID != "":
		q += "WHERE o.buyer_id = ? "
		args = append(args, f.BuyerID)
	case f.SellerID != "":
		q += "WHERE o.seller_id = ? "
		args = append(args, f.SellerID)
	}
	q += "GROUP BY o.id, o.status, o.buyer_id, o.seller_id, o.created_at ORDER BY o.created_at DESC, o.id"
	if f.BuyerID == "" && f.SellerID == "" {
		q += fmt.Sprintf(" LIMIT %d", listLimit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	orders := make([]model.Order, 0)
	for rows.Next() {
		var (
			o                  model.Order
			ids, names, prices sql.NullString
		)
		if err := rows.Scan(&o.ID, &o.Status, &o.BuyerID, &o.SellerID, &o.CreatedAt, &ids, &names, &prices); err != nil {
			return nil, err
		}
		if err := fillProducts(&o, ids, names, prices); err != nil {
			return nil, fmt.Errorf("order %s: %w", o.ID, err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// fillProducts splits the aggregated columns back into products and sums
// the total with decimal arithmetic.
func fillProducts(o *model.Order, ids, names, prices sql.NullString) error {
	o.Products = []model.OrderProduct{}
	if !ids.Valid || ids.String == "" {
		return nil
	}
	idList := strings.Split(ids.String, listSep)
	nameList := strings.Split(names.String, listSep)
	priceList := strings.Split(prices.String, listSep)
	if len(nameList) != len(idList) || len(priceList) != len(idList) {
		return errors.New("aggregated columns disagree in length")
	}
	total := decimal.Zero
	for i, id := range idList {
		price, err := decimal.NewFromString(priceList[i])
		if err != nil {
			return fmt.Errorf("parse price %q: %w", priceList[i], err)
		}
		total = total.Add(price)
		o.Products = append(o.Products, model.OrderProduct{
			ID:    id,
			Name:  nameList[i],
			Price: price.InexactFloat64(),
		})
	}
	o.Total = total.InexactFloat64()
	return nil
}

// UpdateStatus overwrites the order status.  The value is free text; the
// caller rejects empty strings.  ErrOrderNotFound is returned for unknown ids.
func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID, status string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE `Order` SET status = ? WHERE id = ?", status, orderID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}
