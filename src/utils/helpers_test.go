package utils

import (
	"strings"
	"testing"
	"time"

	"tembea/src/types"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "254712345678", NormalizePhone("0712345678"))
	assert.Equal(t, "254712345678", NormalizePhone("254712345678"))
	assert.Equal(t, "254712345678", NormalizePhone("+254 712 345 678"))
	assert.Equal(t, "254712345678", NormalizePhone("0712-345-678"))
}

func TestValidKenyanPhone(t *testing.T) {
	assert.True(t, ValidKenyanPhone("254712345678"))
	assert.False(t, ValidKenyanPhone("0712345678"))
	assert.False(t, ValidKenyanPhone("25471234567"))
	assert.False(t, ValidKenyanPhone("2547123456789"))
	assert.False(t, ValidKenyanPhone(""))
}

func TestGenerateBookingReference(t *testing.T) {
	ref := GenerateBookingReference()
	assert.True(t, strings.HasPrefix(ref, "TM"))
	assert.Len(t, ref, 10)
}

func TestGenerateOrderReference(t *testing.T) {
	ref := GenerateOrderReference()
	assert.True(t, strings.HasPrefix(ref, "ORD"))
	assert.Len(t, ref, 11)
}

func TestExtractCallbackItems(t *testing.T) {
	md := &types.StkCallbackMetadata{
		Item: []types.StkCallbackItem{
			{Name: "Amount", Value: float64(2500)},
			{Name: "MpesaReceiptNumber", Value: "QGH7XJ2KPL"},
			{Name: "TransactionDate", Value: float64(20250614143022)},
			{Name: "PhoneNumber", Value: float64(254712345678)},
		},
	}

	receipt, phone, txDate, err := ExtractCallbackItems(md)
	assert.NoError(t, err)
	assert.Equal(t, "QGH7XJ2KPL", receipt)
	assert.Equal(t, "254712345678", phone)
	if assert.NotNil(t, txDate) {
		expected := time.Date(2025, 6, 14, 14, 30, 22, 0, time.UTC)
		assert.True(t, txDate.Equal(expected))
	}
}

func TestExtractCallbackItemsReceiptOnly(t *testing.T) {
	md := &types.StkCallbackMetadata{
		Item: []types.StkCallbackItem{
			{Name: "MpesaReceiptNumber", Value: "QGH7XJ2KPL"},
		},
	}

	receipt, phone, txDate, err := ExtractCallbackItems(md)
	assert.NoError(t, err)
	assert.Equal(t, "QGH7XJ2KPL", receipt)
	assert.Empty(t, phone)
	assert.Nil(t, txDate)
}

func TestExtractCallbackItemsMissingReceipt(t *testing.T) {
	md := &types.StkCallbackMetadata{
		Item: []types.StkCallbackItem{
			{Name: "Amount", Value: float64(2500)},
		},
	}

	_, _, _, err := ExtractCallbackItems(md)
	assert.Error(t, err)
}

func TestExtractCallbackItemsNilMetadata(t *testing.T) {
	_, _, _, err := ExtractCallbackItems(nil)
	assert.Error(t, err)
}
