package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/marketplace-api/internal/model"
)

func expectOwner(mock sqlmock.Sqlmock, id, owner string) {
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT seller_id FROM Product WHERE id = ? FOR UPDATE")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"seller_id"}).AddRow(owner))
}

func TestUpdateOwnedRejectsOtherSeller(t *testing.T) {
	db, mock := newMock(t)
	expectOwner(mock, "p1", "s1")
	mock.ExpectRollback()

	err := NewProductRepo(db).UpdateOwned(context.Background(), model.Product{ID: "p1", SellerID: "s2", Name: "x"})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOwnedUnknownProduct(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT seller_id FROM Product")).
		WithArgs("p9").
		WillReturnRows(sqlmock.NewRows([]string{"seller_id"}))
	mock.ExpectRollback()

	err := NewProductRepo(db).UpdateOwned(context.Background(), model.Product{ID: "p9", SellerID: "s1"})
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOwnedReferencedByOrder(t *testing.T) {
	db, mock := newMock(t)
	expectOwner(mock, "p1", "s1")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT url FROM Image WHERE product_id = ?")).
		WithArgs("p1").WillReturnRows(sqlmock.NewRows([]string{"url"}))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM Cart_Product WHERE product_id = ?")).
		WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM Image WHERE product_id = ?")).
		WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM Product WHERE id = ?")).
		WithArgs("p1").WillReturnError(&mysql.MySQLError{Number: mysqlRowIsReferenced, Message: "referenced"})
	mock.ExpectRollback()

	_, err := NewProductRepo(db).DeleteOwned(context.Background(), "p1", "s1")
	assert.ErrorIs(t, err, ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAssignsID(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO Product")).
		WithArgs(sqlmock.AnyArg(), "s1", "Lamp", "", 12.5, "home").
		WillReturnResult(sqlmock.NewResult(0, 1))

	p := model.Product{SellerID: "s1", Name: "Lamp", Price: 12.5, Category: "home"}
	require.NoError(t, NewProductRepo(db).Create(context.Background(), &p))
	assert.NotEmpty(t, p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchBuildsFilters(t *testing.T) {
	db, mock := newMock(t)
	lo, hi := 5.0, 50.0
	mock.ExpectQuery(regexp.QuoteMeta("WHERE name LIKE ? AND category = ? AND price >= ? AND price <= ? ORDER BY name, id")).
		WithArgs("%lamp%", "home", lo, hi).
		WillReturnRows(sqlmock.NewRows([]string{"id", "seller_id", "name", "description", "price", "category"}).
			AddRow("p1", "s1", "Desk lamp", "", 20.0, "home"))

	items, err := NewProductRepo(db).Search(context.Background(), ProductSearch{Query: "lamp", Category: "home", MinPrice: &lo, MaxPrice: &hi})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Desk lamp", items[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOwnedRejectsOtherSeller(t *testing.T) {
	db, mock := newMock(t)
	expectOwner(mock, "p1", "s2")
	mock.ExpectRollback()

	keys, err := NewProductRepo(db).DeleteOwned(context.Background(), "p1", "s1")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Nil(t, keys)
	// no DELETE was expected, so any executed statement fails the expectations
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOwnedReturnsImageKeys(t *testing.T) {
	db, mock := newMock(t)
	expectOwner(mock, "p1", "s1")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT url FROM Image WHERE product_id = ?")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"url"}).AddRow("products/p1/a.png").AddRow("products/p1/b.png"))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM Cart_Product")).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM Image")).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM Product")).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	keys, err := NewProductRepo(db).DeleteOwned(context.Background(), "p1", "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"products/p1/a.png", "products/p1/b.png"}, keys)
	assert.NoError(t, mock.ExpectationsWereMet())
}
