// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// looking at driver errors.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of dependent records (e.g. deleting a product
// that appears in an order). Handlers should translate this into an
// HTTP 409 response.
var ErrConflict = errors.New("conflict")

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailExists     = errors.New("email already exists")
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrBuyerNotFound   = errors.New("buyer not found")
	ErrSellerNotFound  = errors.New("seller not found")
	ErrTokenInvalid    = errors.New("refresh token invalid")

	// ErrNoProducts is returned by OrderRepo.Place when none of the submitted
	// product ids resolves to a product.
	ErrNoProducts = errors.New("no valid products")
)

// MySQL server error numbers the repositories react to.
const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

func isMySQLError(err error, number uint16) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == number
}

// missingReference returns the table named by a failed foreign key check
// (error 1452), or "" for any other error.
func missingReference(err error) string {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != mysqlNoReferencedRow {
		return ""
	}
	_, after, ok := strings.Cut(me.Message, "REFERENCES `")
	if !ok {
		return ""
	}
	table, _, _ := strings.Cut(after, "`")
	return table
}
