package handler

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/marketplace-api/internal/middleware"
	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/repository"
)

var seller = model.Principal{UserID: "u1", BuyerID: "b1", SellerID: "s1", Role: model.RoleSeller}

func productServer(t *testing.T) (*echo.Echo, sqlmock.Sqlmock) {
	db, mock := newMock(t)
	h := NewProductHandler(repository.NewProductRepo(db), nil, nil, "")
	e := echo.New()
	auth := middleware.JWTAuth(testCfg.JWTSecret)
	e.GET("/api/search/products", h.Search)
	e.POST("/api/products/add_product", h.Add, auth)
	e.PUT("/api/products/edit/:id", h.Edit, auth)
	e.DELETE("/api/products/delete/:id", h.Delete, auth)
	e.POST("/api/products/:id/images", h.UploadImage, auth)
	return e, mock
}

func send(e *echo.Echo, method, target, body, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAddProductUsesTokenSeller(t *testing.T) {
	e, mock := productServer(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO Product")).
		WithArgs(sqlmock.AnyArg(), "s1", "Lamp", "", 12.5, "home").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := send(e, http.MethodPost, "/api/products/add_product",
		`{"name":"Lamp","price":12.5,"category":"home"}`, token(t, seller))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "s1", decode(t, rec)["seller_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddProductRejectsForeignSellerID(t *testing.T) {
	e, _ := productServer(t)
	rec := send(e, http.MethodPost, "/api/products/add_product",
		`{"seller_id":"s2","name":"Lamp","price":1}`, token(t, seller))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAddProductRequiresPrice(t *testing.T) {
	e, _ := productServer(t)
	rec := send(e, http.MethodPost, "/api/products/add_product", `{"name":"Lamp"}`, token(t, seller))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEditOtherSellersProduct(t *testing.T) {
	e, mock := productServer(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT seller_id FROM Product WHERE id = ? FOR UPDATE")).
		WithArgs("p9").
		WillReturnRows(sqlmock.NewRows([]string{"seller_id"}).AddRow("s2"))
	mock.ExpectRollback()

	rec := send(e, http.MethodPut, "/api/products/edit/p9", `{"name":"Lamp","price":3}`, token(t, seller))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Permission denied: You can only edit your own products", decode(t, rec)["error"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEditWithoutToken(t *testing.T) {
	e, _ := productServer(t)
	rec := send(e, http.MethodPut, "/api/products/edit/p1", `{"name":"Lamp","price":3}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSearchRejectsBadPrice(t *testing.T) {
	e, _ := productServer(t)
	rec := send(e, http.MethodGet, "/api/search/products?minPrice=cheap", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadWithoutStore(t *testing.T) {
	e, _ := productServer(t)
	rec := send(e, http.MethodPost, "/api/products/p1/images", "", token(t, seller))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestDeleteWithForeignSellerID(t *testing.T) {
	e, mock := productServer(t)
	rec := send(e, http.MethodDelete, "/api/products/delete/p1", `{"seller_id":"s2"}`, token(t, seller))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Permission denied: You can only delete your own products", decode(t, rec)["error"])
	// rejected before any statement reaches the database
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddProductRejectsControlCharacters(t *testing.T) {
	e, mock := productServer(t)
	for _, body := range []string{
		`{"name":"Pen\u001fInk","price":1}`,
		`{"name":"Pen","category":"off\u0007ice","price":1}`,
	} {
		rec := send(e, http.MethodPost, "/api/products/add_product", body, token(t, seller))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
