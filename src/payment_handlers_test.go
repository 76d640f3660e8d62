package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestResolveLedgerRef(t *testing.T) {
	bookingId := uuid.New()
	orderId := uuid.New()

	b, o, err := resolveLedgerRef(bookingId.String(), "")
	assert.NoError(t, err)
	assert.Equal(t, bookingId, *b)
	assert.Nil(t, o)

	b, o, err = resolveLedgerRef("", orderId.String())
	assert.NoError(t, err)
	assert.Nil(t, b)
	assert.Equal(t, orderId, *o)

	_, _, err = resolveLedgerRef("", "")
	assert.ErrorIs(t, err, errExactlyOneEntry)

	_, _, err = resolveLedgerRef(bookingId.String(), orderId.String())
	assert.ErrorIs(t, err, errExactlyOneEntry)

	_, _, err = resolveLedgerRef("not-a-uuid", "")
	assert.Error(t, err)
}

func TestManualPaymentRecordsContact(t *testing.T) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("kenyanphone", kenyanPhoneValidatorFunc)
	}
	mock := newMockDB(t)

	gin.SetMode(gin.TestMode)
	g := gin.New()
	userId := uuid.New()
	bookingId := uuid.New()
	authed := g.Group(apiPrefix)
	authed.Use(func(ctx *gin.Context) {
		ctx.Set("id", userId.String())
	})
	paymentHandlers(authed)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "bookings" SET "payment_reference"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "users" SET (.*)"email"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	body := fmt.Sprintf(`{
		"booking_id": "%s",
		"transaction_code": "SFT9K2ABCD",
		"full_name": "Jane Wanjiku",
		"email": "jane@example.com",
		"phone": "0712345678"
	}`, bookingId)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/manual", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	g.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestManualPaymentEntryNotPending(t *testing.T) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("kenyanphone", kenyanPhoneValidatorFunc)
	}
	mock := newMockDB(t)

	gin.SetMode(gin.TestMode)
	g := gin.New()
	userId := uuid.New()
	orderId := uuid.New()
	authed := g.Group(apiPrefix)
	authed.Use(func(ctx *gin.Context) {
		ctx.Set("id", userId.String())
	})
	paymentHandlers(authed)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "orders" SET "payment_reference"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	body := fmt.Sprintf(`{
		"order_id": "%s",
		"transaction_code": "SFT9K2ABCD",
		"full_name": "Jane Wanjiku",
		"email": "jane@example.com",
		"phone": "0712345678"
	}`, orderId)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/manual", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	g.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
