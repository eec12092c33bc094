package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/marketplace-api/internal/model"
)

func TestListWithRolesUsesResolvedRole(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM User u")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "admin", "seller", "buyer"}).
			AddRow("u1", "Admin", "admin@admin", "a1", "", "b1").
			AddRow("u2", "Jane", "jane@example.com", "", "", "b2").
			AddRow("u3", "John", "john@example.com", "", "s1", "b3").
			AddRow("u4", "Ghost", "ghost@example.com", "", "", ""))

	users, err := NewUserRepo(db).ListWithRoles(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.UserWithRole{
		{ID: "u1", Name: "Admin", Email: "admin@admin", Role: "admin"},
		{ID: "u2", Name: "Jane", Email: "jane@example.com", Role: "buyer"},
		{ID: "u3", Name: "John", Email: "john@example.com", Role: "seller"},
		{ID: "u4", Name: "Ghost", Email: "ghost@example.com", Role: "unknown"},
	}, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}
