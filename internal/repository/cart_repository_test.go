package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expectCartAddPrefix(mock sqlmock.Sqlmock, productExists bool) {
	mock.ExpectBegin()
	n := 0
	if productExists {
		n = 1
	}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM Product WHERE id = ?")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(n))
}

func TestCartAddInsertsOnce(t *testing.T) {
	db, mock := newMock(t)
	expectCartAddPrefix(mock, true)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO Cart (buyer_id)")).
		WithArgs("b1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO Cart_Product")).
		WithArgs("b1", "p1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	added, err := NewCartRepo(db).Add(context.Background(), "b1", "p1")
	require.NoError(t, err)
	assert.True(t, added)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartAddDuplicateIsNotAnError(t *testing.T) {
	db, mock := newMock(t)
	expectCartAddPrefix(mock, true)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO Cart (buyer_id)")).
		WithArgs("b1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO Cart_Product")).
		WithArgs("b1", "p1").WillReturnError(&mysql.MySQLError{Number: mysqlDuplicateEntry, Message: "Duplicate entry"})
	mock.ExpectCommit()

	added, err := NewCartRepo(db).Add(context.Background(), "b1", "p1")
	require.NoError(t, err)
	assert.False(t, added)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartAddUnknownProduct(t *testing.T) {
	db, mock := newMock(t)
	expectCartAddPrefix(mock, false)
	mock.ExpectRollback()

	_, err := NewCartRepo(db).Add(context.Background(), "b1", "p1")
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartAddUnknownBuyer(t *testing.T) {
	db, mock := newMock(t)
	expectCartAddPrefix(mock, true)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO Cart (buyer_id)")).
		WithArgs("b1").WillReturnError(fkError("Buyer"))
	mock.ExpectRollback()

	_, err := NewCartRepo(db).Add(context.Background(), "b1", "p1")
	assert.ErrorIs(t, err, ErrBuyerNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartItemsCreatesEmptyCart(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO Cart (buyer_id)")).
		WithArgs("b1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM Cart_Product cp")).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "price", "category"}))

	items, err := NewCartRepo(db).Items(context.Background(), "b1")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}
