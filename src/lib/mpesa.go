package lib

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"os"
	"time"

	"tembea/src/config"

	"github.com/redis/go-redis/v9"
)

// Daraja is called directly over HTTP: one OAuth endpoint and one STK
// push endpoint. Access tokens are valid for an hour and cached in redis
// with a safety margin.

const mpesaTokenCacheKey = "mpesa:access_token"

var mpesaHTTPClient = &http.Client{Timeout: 30 * time.Second}

// NewMpesaHTTPClient replaces the ambient HTTP client; used by tests.
func NewMpesaHTTPClient(c *http.Client) {
	mpesaHTTPClient = c
}

type StkPushInput struct {
	PhoneNumber      string
	Amount           float64
	AccountReference string
	TransactionDesc  string
}

type StkPushResult struct {
	CheckoutRequestID string
	MerchantRequestID string
}

type mpesaTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

type stkPushResponse struct {
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	MerchantRequestID   string `json:"MerchantRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
}

func GetMpesaAccessToken(ctx context.Context) (string, error) {
	if rdb := GetRedisClient(); rdb != nil {
		token, err := rdb.Get(ctx, mpesaTokenCacheKey).Result()
		if err == nil && token != "" {
			return token, nil
		}
		if err != nil && err != redis.Nil {
			log.Printf("[Mpesa] Error reading token cache: %s\n", err.Error())
		}
	}

	consumerKey := os.Getenv("MPESA_CONSUMER_KEY")
	consumerSecret := os.Getenv("MPESA_CONSUMER_SECRET")
	credentials := base64.StdEncoding.EncodeToString([]byte(consumerKey + ":" + consumerSecret))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, config.MpesaBaseURL()+config.MPESA_OAUTH_PATH, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Basic "+credentials)

	res, err := mpesaHTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	var body mpesaTokenResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.AccessToken == "" {
		return "", errors.New("no access token received")
	}

	if rdb := GetRedisClient(); rdb != nil {
		// Daraja reports expires_in in seconds (usually 3599); keep a
		// one-minute margin.
		ttl := 50 * time.Minute
		if err := rdb.Set(ctx, mpesaTokenCacheKey, body.AccessToken, ttl).Err(); err != nil {
			log.Printf("[Mpesa] Error caching token: %s\n", err.Error())
		}
	}

	return body.AccessToken, nil
}

// StkPush submits a push-payment request and returns the provider
// correlation pair. The caller persists a transaction row before handing
// control back, so the callback always finds a match.
func StkPush(ctx context.Context, input StkPushInput) (*StkPushResult, error) {
	token, err := GetMpesaAccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get M-Pesa access token: %w", err)
	}

	shortcode := os.Getenv("MPESA_BUSINESS_SHORT_CODE")
	passkey := os.Getenv("MPESA_PASSKEY")
	password, timestamp := stkPassword(shortcode, passkey, time.Now())

	payload := map[string]any{
		"BusinessShortCode": shortcode,
		"Password":          password,
		"Timestamp":         timestamp,
		"TransactionType":   "CustomerPayBillOnline",
		"Amount":            int64(math.Round(input.Amount)),
		"PartyA":            input.PhoneNumber,
		"PartyB":            shortcode,
		"PhoneNumber":       input.PhoneNumber,
		"CallBackURL":       os.Getenv("MPESA_CALLBACK_URL"),
		"AccountReference":  input.AccountReference,
		"TransactionDesc":   input.TransactionDesc,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, config.MpesaBaseURL()+config.MPESA_STK_PUSH_PATH, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	res, err := mpesaHTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var body stkPushResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.ResponseCode != "0" {
		log.Printf("[Mpesa] STK push rejected: %s\n", body.ResponseDescription)
		return nil, errors.New("failed to initiate M-Pesa payment")
	}

	return &StkPushResult{
		CheckoutRequestID: body.CheckoutRequestID,
		MerchantRequestID: body.MerchantRequestID,
	}, nil
}

// stkPassword derives the Daraja request password, which encodes the
// shortcode, passkey and a second-resolution timestamp.
func stkPassword(shortcode, passkey string, t time.Time) (password, timestamp string) {
	timestamp = t.Format(config.MPESA_TIMESTAMP_FORMAT)
	password = base64.StdEncoding.EncodeToString([]byte(shortcode + passkey + timestamp))
	return password, timestamp
}
