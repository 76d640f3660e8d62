package lib

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStkPassword(t *testing.T) {
	ts := time.Date(2025, 6, 14, 14, 30, 22, 0, time.UTC)
	password, timestamp := stkPassword("174379", "passkey", ts)

	assert.Equal(t, "20250614143022", timestamp)
	expected := base64.StdEncoding.EncodeToString([]byte("174379" + "passkey" + "20250614143022"))
	assert.Equal(t, expected, password)
}

func TestStkPush(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			json.NewEncoder(w).Encode(map[string]string{"access_token": "test-token", "expires_in": "3599"})
		case "/mpesa/stkpush/v1/processrequest":
			gotAuth = r.Header.Get("Authorization")
			json.NewDecoder(r.Body).Decode(&gotPayload)
			json.NewEncoder(w).Encode(map[string]string{
				"CheckoutRequestID": "ws_CO_140620251430221234",
				"MerchantRequestID": "29115-34620561-1",
				"ResponseCode":      "0",
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	t.Setenv("MPESA_API_BASE", srv.URL)
	t.Setenv("MPESA_BUSINESS_SHORT_CODE", "174379")
	t.Setenv("MPESA_PASSKEY", "passkey")
	t.Setenv("MPESA_CALLBACK_URL", "https://example.com/api/v1/webhook/mpesa")
	t.Setenv("REDIS_HOST", "")
	NewMpesaHTTPClient(srv.Client())

	res, err := StkPush(context.Background(), StkPushInput{
		PhoneNumber:      "254712345678",
		Amount:           2500.49,
		AccountReference: "TM12345678",
		TransactionDesc:  "Trip booking",
	})
	assert.NoError(t, err)
	assert.Equal(t, "ws_CO_140620251430221234", res.CheckoutRequestID)
	assert.Equal(t, "29115-34620561-1", res.MerchantRequestID)

	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "CustomerPayBillOnline", gotPayload["TransactionType"])
	assert.Equal(t, float64(2500), gotPayload["Amount"])
	assert.Equal(t, "254712345678", gotPayload["PhoneNumber"])
	assert.Equal(t, "174379", gotPayload["PartyB"])
	assert.Equal(t, "TM12345678", gotPayload["AccountReference"])
}

func TestStkPushRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			json.NewEncoder(w).Encode(map[string]string{"access_token": "test-token", "expires_in": "3599"})
		default:
			json.NewEncoder(w).Encode(map[string]string{
				"ResponseCode":        "1",
				"ResponseDescription": "Insufficient funds on the utility account",
			})
		}
	}))
	defer srv.Close()

	t.Setenv("MPESA_API_BASE", srv.URL)
	t.Setenv("REDIS_HOST", "")
	NewMpesaHTTPClient(srv.Client())

	_, err := StkPush(context.Background(), StkPushInput{
		PhoneNumber:      "254712345678",
		Amount:           100,
		AccountReference: "TM12345678",
	})
	assert.Error(t, err)
}

func TestGetMpesaAccessTokenMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"errorMessage": "Invalid Authentication"})
	}))
	defer srv.Close()

	t.Setenv("MPESA_API_BASE", srv.URL)
	t.Setenv("REDIS_HOST", "")
	NewMpesaHTTPClient(srv.Client())

	_, err := GetMpesaAccessToken(context.Background())
	assert.Error(t, err)
}
