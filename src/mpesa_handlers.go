package main

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"tembea/src/common"
	"tembea/src/db"
	"tembea/src/models"
	"tembea/src/types"
	"tembea/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

// The Daraja callback. Safaricom retries webhooks, so the handler is
// idempotent: a transaction already finalized is re-acknowledged without
// touching the ledger or re-notifying. Internal failures after
// correlation are logged and still acknowledged so the provider does not
// retry-storm.
func mpesaWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/mpesa", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		// Probe the correlation id and result code off the raw payload
		// before the full decode; they decide the whole flow, and a body
		// missing either is malformed no matter what else it carries.
		checkoutId := gjson.GetBytes(payload, "Body.stkCallback.CheckoutRequestID").String()
		resultCode := gjson.GetBytes(payload, "Body.stkCallback.ResultCode")
		if checkoutId == "" || !resultCode.Exists() {
			log.Println("[MpesaCallback] Received malformed callback body. Aborting")
			ctx.JSON(http.StatusBadRequest, gin.H{"ResultCode": 1, "ResultDesc": "Invalid payload"})
			return
		}
		var body types.StkCallbackRequestBody
		if err := json.Unmarshal(payload, &body); err != nil {
			log.Printf("[MpesaCallback] Error parsing callback: %s\n", err.Error())
			ctx.JSON(http.StatusBadRequest, gin.H{"ResultCode": 1, "ResultDesc": "Invalid payload"})
			return
		}
		cb := body.Body.StkCallback
		log.Printf("[MpesaCallback] %s result=%d desc=%s\n", checkoutId, resultCode.Int(), cb.ResultDesc)

		var notifyBooking, notifyOrder *uuid.UUID
		gdb := db.GetDb()
		err = gdb.Transaction(func(tx *gorm.DB) error {
			var txn models.MpesaTransaction
			if err := tx.
				Model(&models.MpesaTransaction{}).
				Where(&models.MpesaTransaction{CheckoutRequestID: checkoutId}).
				First(&txn).
				Error; err != nil {
				return err
			}

			// Replay guard: a terminal transaction has already been
			// applied to the ledger once.
			if txn.Status.Terminal() {
				log.Printf("[MpesaCallback] Transaction %s already %s; re-acknowledging\n", checkoutId, txn.Status)
				return nil
			}

			if resultCode.Int() == 0 {
				receipt, phone, txDate, err := utils.ExtractCallbackItems(cb.CallbackMetadata)
				if err != nil {
					return err
				}
				updates := models.MpesaTransaction{
					Status:             types.TRANSACTION_COMPLETED,
					MpesaReceiptNumber: &receipt,
					ResultDesc:         &cb.ResultDesc,
					TransactionDate:    txDate,
				}
				if phone != "" {
					updates.PhoneNumber = phone
				}
				if err := tx.
					Model(&models.MpesaTransaction{}).
					Where(&models.MpesaTransaction{CheckoutRequestID: checkoutId}).
					Updates(&updates).
					Error; err != nil {
					return err
				}
				changed, err := common.FinalizeLinkedEntry(tx, &txn, types.PAYMENT_COMPLETED, &receipt)
				if err != nil {
					return err
				}
				if changed {
					notifyBooking = txn.BookingID
					notifyOrder = txn.OrderID
				}
				return nil
			}

			if err := tx.
				Model(&models.MpesaTransaction{}).
				Where(&models.MpesaTransaction{CheckoutRequestID: checkoutId}).
				Updates(&models.MpesaTransaction{
					Status:     types.TRANSACTION_FAILED,
					ResultDesc: &cb.ResultDesc,
				}).
				Error; err != nil {
				return err
			}
			_, err := common.FinalizeLinkedEntry(tx, &txn, types.PAYMENT_FAILED, nil)
			return err
		})
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Correlation miss: nothing to match against. Fail closed
				// without guessing at a ledger entry.
				log.Printf("[MpesaCallback] No transaction for %s\n", checkoutId)
				ctx.JSON(http.StatusNotFound, gin.H{"ResultCode": 1, "ResultDesc": "Transaction not found"})
				return
			}
			// Correlated but the ledger update failed: acknowledge anyway
			// to stop provider retries; the failure is in the logs.
			log.Printf("[MpesaCallback] Error processing %s: %s\n", checkoutId, err.Error())
			ctx.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Success"})
			return
		}

		if notifyBooking != nil {
			go common.SendBookingConfirmation(*notifyBooking)
		}
		if notifyOrder != nil {
			go common.SendOrderConfirmation(*notifyOrder)
		}
		ctx.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Success"})
	})
	return apiv1
}
