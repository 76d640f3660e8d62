package config

import (
	"fmt"
	"os"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

var API_ENV = os.Getenv("API_ENV")

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"

// Daraja endpoints. The sandbox host is swapped for production through
// MPESA_API_BASE.
const (
	MPESA_DEFAULT_BASE  = "https://sandbox.safaricom.co.ke"
	MPESA_OAUTH_PATH    = "/oauth/v1/generate?grant_type=client_credentials"
	MPESA_STK_PUSH_PATH = "/mpesa/stkpush/v1/processrequest"

	// Timestamp format Daraja expects inside the STK password.
	MPESA_TIMESTAMP_FORMAT = "20060102150405"
)

func MpesaBaseURL() string {
	if base := os.Getenv("MPESA_API_BASE"); base != "" {
		return base
	}
	return MPESA_DEFAULT_BASE
}
