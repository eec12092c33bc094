package handler

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/marketplace-api/internal/repository"
)

func TestLeaveReviewRatingBounds(t *testing.T) {
	db, _ := newMock(t)
	h := NewFeedbackHandler(repository.NewFeedbackRepo(db))

	for _, body := range []string{
		`{"buyer_id":"b1","product_id":"p1"}`,
		`{"buyer_id":"b1","product_id":"p1","rating":0}`,
		`{"buyer_id":"b1","product_id":"p1","rating":6}`,
	} {
		rec := call(t, h.LeaveReview, http.MethodPost, body, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestLeaveReviewUnknownProduct(t *testing.T) {
	db, mock := newMock(t)
	h := NewFeedbackHandler(repository.NewFeedbackRepo(db))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO Review")).
		WithArgs(sqlmock.AnyArg(), "b1", "p9", 5, "great").
		WillReturnError(&mysql.MySQLError{Number: 1452, Message: "a foreign key constraint fails (... REFERENCES `Product` (`id`))"})

	rec := call(t, h.LeaveReview, http.MethodPost, `{"buyer_id":"b1","product_id":"p9","rating":5,"comment":"great"}`, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", decode(t, rec)["error"])
}

func TestSendInquiry(t *testing.T) {
	db, mock := newMock(t)
	h := NewFeedbackHandler(repository.NewFeedbackRepo(db))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO Inquiry")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := call(t, h.SendInquiry, http.MethodPost, `{"buyer_id":"b1","seller_id":"s1","message":"in stock?"}`, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Message sent", decode(t, rec)["message"])

	rec = call(t, h.SendInquiry, http.MethodPost, `{"buyer_id":"b1","seller_id":"s1","message":"  "}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSellerDashboardWithoutReviews(t *testing.T) {
	db, mock := newMock(t)
	h := NewDashboardHandler(repository.NewDashboardRepo(db))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM Product WHERE seller_id = ?")).
		WithArgs("s1", "s1", "s1").
		WillReturnRows(sqlmock.NewRows([]string{"p", "o", "avg"}).AddRow(3, 2, nil))

	rec := call(t, h.Seller, http.MethodGet, "", map[string]string{"id": "s1"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"productCount":3,"orderCount":2,"averageRating":null}`, rec.Body.String())
}
