package handler

import (
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/marketplace-api/internal/repository"
	"github.com/iliyamo/marketplace-api/internal/utils"
)

func newAuth(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	db, mock := newMock(t)
	return NewAuthHandler(testCfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)), mock
}

func TestRegisterSeller(t *testing.T) {
	h, mock := newAuth(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM User WHERE email = ?")).
		WithArgs("sam@shop.io").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO User")).
		WithArgs(sqlmock.AnyArg(), "Sam", "sam@shop.io", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO Buyer")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO Cart (buyer_id)")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO Seller")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).WillReturnResult(sqlmock.NewResult(1, 1))

	rec := call(t, h.Register, http.MethodPost,
		`{"name":"Sam","email":" Sam@Shop.io ","password":"pw","userType":"seller"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Equal(t, "Seller registered successfully", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "seller", user["userType"])
	assert.NotNil(t, user["sellerId"])
	assert.NotNil(t, user["buyerId"])
	assert.Nil(t, user["adminId"])

	claims, err := utils.ParseAccessToken(testCfg.JWTSecret, body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, user["sellerId"], claims.SellerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterValidation(t *testing.T) {
	h, _ := newAuth(t)

	rec := call(t, h.Register, http.MethodPost, `{"name":"Sam","email":"a@b.c","password":"pw"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, h.Register, http.MethodPost, `{"name":"Sam","email":"a@b.c","password":"pw","userType":"admin"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, mock := newAuth(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM User")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	rec := call(t, h.Register, http.MethodPost, `{"name":"Sam","email":"a@b.c","password":"pw","userType":"buyer"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already registered", decode(t, rec)["error"])
}

func TestLoginResolvesRole(t *testing.T) {
	h, mock := newAuth(t)
	hash, err := utils.HashPassword("pw", 4)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("FROM User WHERE email = ?")).
		WithArgs("sam@shop.io").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password"}).AddRow("u1", "Sam", "sam@shop.io", hash))
	mock.ExpectQuery(regexp.QuoteMeta("FROM Admin")).
		WithArgs("u1", "u1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"a", "s", "b"}).AddRow("", "s1", "b1"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).WillReturnResult(sqlmock.NewResult(1, 1))

	rec := call(t, h.Login, http.MethodPost, `{"email":"sam@shop.io","password":"pw"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "Login successful", body["message"])
	assert.Equal(t, "seller", body["user"].(map[string]any)["userType"])
	assert.NotEmpty(t, body["refresh_token"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginWrongPassword(t *testing.T) {
	h, mock := newAuth(t)
	hash, err := utils.HashPassword("pw", 4)
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta("FROM User WHERE email = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password"}).AddRow("u1", "Sam", "sam@shop.io", hash))

	rec := call(t, h.Login, http.MethodPost, `{"email":"sam@shop.io","password":"nope"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", decode(t, rec)["error"])
}

func TestRefreshRejectsUnknownToken(t *testing.T) {
	h, mock := newAuth(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens WHERE token_hash = ?")).
		WithArgs(utils.HashRefreshRaw("raw")).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}))

	rec := call(t, h.Refresh, http.MethodPost, `{"refresh_token":"raw"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func expectLiveRefresh(mock sqlmock.Sqlmock, raw string) {
	mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens WHERE token_hash = ?")).
		WithArgs(utils.HashRefreshRaw(raw)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow("u1", time.Now().UTC().Add(time.Hour), nil))
}

func TestRefreshRotatesToken(t *testing.T) {
	h, mock := newAuth(t)
	expectLiveRefresh(mock, "raw")
	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked_at")).
		WithArgs(utils.HashRefreshRaw("raw")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM User WHERE id = ?")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password"}).AddRow("u1", "Jane", "jane@shop.io", "x"))
	mock.ExpectQuery(regexp.QuoteMeta("FROM Admin")).
		WillReturnRows(sqlmock.NewRows([]string{"a", "s", "b"}).AddRow("", "", "b1"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).WillReturnResult(sqlmock.NewResult(1, 1))

	rec := call(t, h.Refresh, http.MethodPost, `{"refresh_token":"raw"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "Token refreshed", body["message"])
	assert.NotEqual(t, "raw", body["refresh_token"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenAlreadyConsumed(t *testing.T) {
	h, mock := newAuth(t)
	expectLiveRefresh(mock, "raw")
	// a concurrent refresh revoked the token between validation and revoke
	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked_at")).
		WithArgs(utils.HashRefreshRaw("raw")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := call(t, h.Refresh, http.MethodPost, `{"refresh_token":"raw"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid refresh", decode(t, rec)["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
