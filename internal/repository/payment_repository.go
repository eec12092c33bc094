package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/marketplace-api/internal/model"
)

type PaymentRepo struct{ DB *sql.DB }

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{DB: db} }

// Make records a payment against an existing order and marks the order
// Paid, both in one transaction.  The generated id is the one persisted and
// returned.  Amount is taken as given; it is not reconciled with the order
// total.
func (r *PaymentRepo) Make(ctx context.Context, orderID string, amount float64, method string) (model.Payment, error) {
	p := model.Payment{
		ID:      uuid.NewString(),
		OrderID: orderID,
		Amount:  amount,
		Method:  method,
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Payment{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var id string
	err = tx.QueryRowContext(ctx, "SELECT id FROM `Order` WHERE id = ? FOR UPDATE", orderID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Payment{}, ErrOrderNotFound
	}
	if err != nil {
		return model.Payment{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO Payment (id, order_id, amount, method) VALUES (?, ?, ?, ?)",
		p.ID, p.OrderID, p.Amount, p.Method); err != nil {
		return model.Payment{}, fmt.Errorf("insert payment: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE `Order` SET status = ? WHERE id = ?", model.OrderPaid, orderID); err != nil {
		return model.Payment{}, fmt.Errorf("mark order paid: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Payment{}, err
	}
	committed = true
	p.CreatedAt = time.Now().UTC()
	return p, nil
}

// ListByOrder returns every payment recorded for an order, oldest first.
func (r *PaymentRepo) ListByOrder(ctx context.Context, orderID string) ([]model.Payment, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, order_id, amount, method, created_at FROM Payment WHERE order_id = ? ORDER BY created_at, id",
		orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Payment{}
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.OrderID, &p.Amount, &p.Method, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
