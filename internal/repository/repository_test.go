package repository

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func fkError(table string) error {
	return &mysql.MySQLError{
		Number:  mysqlNoReferencedRow,
		Message: "Cannot add or update a child row: a foreign key constraint fails (`ecommerce`.`x`, CONSTRAINT `fk` FOREIGN KEY (`y`) REFERENCES `" + table + "` (`id`))",
	}
}

func TestMissingReference(t *testing.T) {
	assert.Equal(t, "Buyer", missingReference(fkError("Buyer")))
	assert.Equal(t, "", missingReference(&mysql.MySQLError{Number: mysqlDuplicateEntry}))
	assert.Equal(t, "", missingReference(errors.New("boom")))
	assert.Equal(t, "", missingReference(nil))
}

func TestLikePatternEscapesWildcards(t *testing.T) {
	assert.Equal(t, `%50\% off\_x%`, likePattern("50% off_x"))
	assert.Equal(t, "%%", likePattern(""))
}
