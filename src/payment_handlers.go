package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"tembea/src/db"
	"tembea/src/lib"
	"tembea/src/models"
	"tembea/src/types"
	"tembea/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errExactlyOneEntry = errors.New("exactly one of booking_id/order_id is required")

// resolveLedgerRef enforces the exactly-one rule shared by every payment
// initiation body.
func resolveLedgerRef(bookingID, orderID string) (*uuid.UUID, *uuid.UUID, error) {
	if (bookingID == "") == (orderID == "") {
		return nil, nil, errExactlyOneEntry
	}
	if bookingID != "" {
		id, err := uuid.Parse(bookingID)
		if err != nil {
			return nil, nil, errExactlyOneEntry
		}
		return &id, nil, nil
	}
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, nil, errExactlyOneEntry
	}
	return nil, &id, nil
}

// loadPendingEntry fetches the linked ledger entry and returns its
// authoritative amount and display reference. Only pending entries can
// initiate a payment.
func loadPendingEntry(tx *gorm.DB, bookingId, orderId *uuid.UUID) (amount float64, reference string, err error) {
	if bookingId != nil {
		var booking models.Booking
		if err := tx.
			Model(&models.Booking{}).
			Where(&models.Booking{ID: *bookingId}).
			First(&booking).
			Error; err != nil {
			return 0, "", err
		}
		if booking.Status != types.BOOKING_PENDING {
			return 0, "", fmt.Errorf("booking %s is not pending", bookingId)
		}
		return booking.TotalAmount, booking.BookingReference, nil
	}
	var order models.Order
	if err := tx.
		Model(&models.Order{}).
		Where(&models.Order{ID: *orderId}).
		First(&order).
		Error; err != nil {
		return 0, "", err
	}
	if order.Status != types.ORDER_PENDING {
		return 0, "", fmt.Errorf("order %s is not pending", orderId)
	}
	return order.TotalAmount, order.OrderReference, nil
}

func paymentHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/payments/card", func(ctx *gin.Context) {
			var body types.CardPaymentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			bookingId, orderId, err := resolveLedgerRef(body.BookingID, body.OrderID)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			amount, _, err := loadPendingEntry(db.GetDb(), bookingId, orderId)
			if err != nil {
				log.Printf("[Payments] Could not load ledger entry: %s\n", err.Error())
				ctx.JSON(http.StatusNotFound, gin.H{"error": "ledger entry not found or not pending"})
				return
			}

			currency := body.Currency
			if currency == "" {
				currency = "usd"
			}
			metadata := map[string]string{}
			if bookingId != nil {
				metadata["bookingId"] = bookingId.String()
			}
			if orderId != nil {
				metadata["orderId"] = orderId.String()
			}
			pi, err := lib.CreatePaymentIntent(ctx, amount, currency, metadata)
			if err != nil {
				log.Printf("[Payments] Error creating payment intent: %s\n", err.Error())
				ctx.JSON(http.StatusBadGateway, gin.H{"error": "payment failed to initiate"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"client_secret":     pi.ClientSecret,
				"payment_intent_id": pi.ID,
			})
		}).
		POST("/payments/mpesa", func(ctx *gin.Context) {
			var body types.MpesaPaymentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			phone := utils.NormalizePhone(body.PhoneNumber)
			if !utils.ValidKenyanPhone(phone) {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone number; expected format 07XXXXXXXX or 2547XXXXXXXX"})
				return
			}
			bookingId, orderId, err := resolveLedgerRef(body.BookingID, body.OrderID)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			gdb := db.GetDb()
			amount, reference, err := loadPendingEntry(gdb, bookingId, orderId)
			if err != nil {
				log.Printf("[Payments] Could not load ledger entry: %s\n", err.Error())
				ctx.JSON(http.StatusNotFound, gin.H{"error": "ledger entry not found or not pending"})
				return
			}

			desc := "Payment for order " + reference
			if bookingId != nil {
				desc = "Payment for booking " + reference
			}
			result, err := lib.StkPush(ctx, lib.StkPushInput{
				PhoneNumber:      phone,
				Amount:           amount,
				AccountReference: reference,
				TransactionDesc:  desc,
			})
			if err != nil {
				log.Printf("[Payments] STK push failed: %s\n", err.Error())
				ctx.JSON(http.StatusBadGateway, gin.H{"error": "payment failed to initiate"})
				return
			}

			// The row must exist before the callback can plausibly arrive;
			// a callback with no matching row is a terminal integration
			// error, not something to retry.
			txn := models.MpesaTransaction{
				CheckoutRequestID: result.CheckoutRequestID,
				MerchantRequestID: result.MerchantRequestID,
				PhoneNumber:       phone,
				Amount:            amount,
				BookingID:         bookingId,
				OrderID:           orderId,
				Status:            types.TRANSACTION_PENDING,
			}
			if err := gdb.Create(&txn).Error; err != nil {
				log.Printf("[Payments] Error storing M-Pesa transaction %s: %s\n", result.CheckoutRequestID, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "payment failed to initiate"})
				return
			}

			ctx.JSON(http.StatusOK, gin.H{
				"checkout_request_id": result.CheckoutRequestID,
				"merchant_request_id": result.MerchantRequestID,
			})
		}).
		POST("/payments/manual", func(ctx *gin.Context) {
			var body types.ManualPaymentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			bookingId, orderId, err := resolveLedgerRef(body.BookingID, body.OrderID)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId, err := uuid.Parse(ctx.GetString("id"))
			if err != nil {
				ctx.Status(http.StatusUnauthorized)
				return
			}

			// Records the self-reported code for staff review. The entry
			// stays pending/pending; only a staff action moves it.
			gdb := db.GetDb()
			err = gdb.Transaction(func(tx *gorm.DB) error {
				if bookingId != nil {
					res := tx.
						Model(&models.Booking{}).
						Where(&models.Booking{ID: *bookingId, UserID: userId}).
						Where("status = ?", types.BOOKING_PENDING).
						Update("payment_reference", body.TransactionCode)
					if res.Error != nil {
						return res.Error
					}
					if res.RowsAffected == 0 {
						return gorm.ErrRecordNotFound
					}
				} else {
					res := tx.
						Model(&models.Order{}).
						Where(&models.Order{ID: *orderId, UserID: userId}).
						Where("status = ?", types.ORDER_PENDING).
						Update("payment_reference", body.TransactionCode)
					if res.Error != nil {
						return res.Error
					}
					if res.RowsAffected == 0 {
						return gorm.ErrRecordNotFound
					}
				}
				return tx.
					Model(&models.User{}).
					Where(&models.User{ID: userId}).
					Updates(&models.User{
						FullName: body.FullName,
						Email:    body.Email,
						Phone:    body.Phone,
					}).
					Error
			})
			if err != nil {
				log.Printf("[Payments] Error recording manual payment: %s\n", err.Error())
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "ledger entry not found or not pending"})
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "could not record payment details"})
				return
			}
			ctx.JSON(http.StatusAccepted, gin.H{
				"message": "Payment details received. We will confirm your payment shortly.",
			})
		})
	return g
}
