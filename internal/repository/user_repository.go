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

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// NewUser describes a registration.  PasswordHash must already be hashed.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	AsSeller     bool
}

// EmailExists reports whether a user with the given email is registered.
func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM User WHERE email = ?", email).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts the User, its Buyer row and the buyer's Cart, plus a Seller
// row when AsSeller is set, inside one transaction.  Any failure rolls all of
// them back.  A duplicate email yields ErrEmailExists.
func (r *UserRepo) Create(ctx context.Context, nu NewUser) (model.User, model.RoleIDs, error) {
	u := model.User{
		ID:           uuid.NewString(),
		Name:         nu.Name,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
	}
	ids := model.RoleIDs{BuyerID: uuid.NewString()}
	if nu.AsSeller {
		ids.SellerID = uuid.NewString()
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.User{}, model.RoleIDs{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO User (id, name, email, password) VALUES (?, ?, ?, ?)",
		u.ID, u.Name, u.Email, u.PasswordHash); err != nil {
		if isMySQLError(err, mysqlDuplicateEntry) {
			return model.User{}, model.RoleIDs{}, ErrEmailExists
		}
		return model.User{}, model.RoleIDs{}, fmt.Errorf("insert user: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO Buyer (id, user_id) VALUES (?, ?)", ids.BuyerID, u.ID); err != nil {
		return model.User{}, model.RoleIDs{}, fmt.Errorf("insert buyer: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO Cart (buyer_id) VALUES (?)", ids.BuyerID); err != nil {
		return model.User{}, model.RoleIDs{}, fmt.Errorf("insert cart: %w", err)
	}
	if nu.AsSeller {
		if _, err := tx.ExecContext(ctx, "INSERT INTO Seller (id, user_id) VALUES (?, ?)", ids.SellerID, u.ID); err != nil {
			return model.User{}, model.RoleIDs{}, fmt.Errorf("insert seller: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return model.User{}, model.RoleIDs{}, err
	}
	committed = true
	return u, ids, nil
}

// GetByEmail fetches a user by email.  Returns ErrUserNotFound when absent.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, email, password FROM User WHERE email = ? LIMIT 1",
		strings.TrimSpace(email)).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// GetByID fetches a user by id.  Returns ErrUserNotFound when absent.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, email, password FROM User WHERE id = ? LIMIT 1",
		id).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// RoleIDs looks up the Admin, Seller and Buyer row ids of a user in a single
// round trip.
func (r *UserRepo) RoleIDs(ctx context.Context, userID string) (model.RoleIDs, error) {
	const q = `SELECT
			COALESCE((SELECT id FROM Admin  WHERE user_id = ? LIMIT 1), ''),
			COALESCE((SELECT id FROM Seller WHERE user_id = ? LIMIT 1), ''),
			COALESCE((SELECT id FROM Buyer  WHERE user_id = ? LIMIT 1), '')`
	var ids model.RoleIDs
	err := r.DB.QueryRowContext(ctx, q, userID, userID, userID).Scan(&ids.AdminID, &ids.SellerID, &ids.BuyerID)
	return ids, err
}

// ListWithRoles returns every user classified by its highest role, as
// resolved by model.ResolveRole.  Users without any role row are "unknown".
func (r *UserRepo) ListWithRoles(ctx context.Context) ([]model.UserWithRole, error) {
	const q = `SELECT u.id, u.name, u.email,
			COALESCE((SELECT id FROM Admin  a WHERE a.user_id = u.id LIMIT 1), ''),
			COALESCE((SELECT id FROM Seller s WHERE s.user_id = u.id LIMIT 1), ''),
			COALESCE((SELECT id FROM Buyer  b WHERE b.user_id = u.id LIMIT 1), '')
		FROM User u
		ORDER BY u.name`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.UserWithRole{}
	for rows.Next() {
		var (
			u   model.UserWithRole
			ids model.RoleIDs
		)
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &ids.AdminID, &ids.SellerID, &ids.BuyerID); err != nil {
			return nil, err
		}
		u.Role = "unknown"
		if role, ok := model.ResolveRole(ids); ok {
			u.Role = string(role)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
