package main

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"

	"tembea/src/common"
	"tembea/src/db"
	"tembea/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/gorm"
)

func stripeWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/stripe", func(ctx *gin.Context) {
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		whsecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
		event, err := webhook.ConstructEvent(payload, ctx.GetHeader("Stripe-Signature"), whsecret)
		if err != nil {
			log.Printf("Error verifying webhook signature: %s\n", err.Error())
			ctx.Status(http.StatusBadRequest)
			return
		}
		log.Printf("[StripeEvent] %s\n", event.Type)
		switch event.Type {
		case "payment_intent.succeeded":
			var pi stripe.PaymentIntent
			if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
				log.Printf("[Stripe] Error parsing PaymentIntent: %s\n", err.Error())
				break
			}
			applyIntentResult(&pi, types.PAYMENT_COMPLETED)
		case "payment_intent.payment_failed":
			var pi stripe.PaymentIntent
			if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
				log.Printf("[Stripe] Error parsing PaymentIntent: %s\n", err.Error())
				break
			}
			applyIntentResult(&pi, types.PAYMENT_FAILED)
		case "payment_intent.canceled":
			var pi stripe.PaymentIntent
			if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
				log.Printf("[Stripe] Error parsing PaymentIntent: %s\n", err.Error())
				break
			}
			applyIntentResult(&pi, types.PAYMENT_CANCELED)
		default:
			log.Printf("Unhandled event type: %s\n", event.Type)
		}
		ctx.JSON(http.StatusOK, gin.H{"received": true})
	})
	return apiv1
}

// applyIntentResult routes a payment-intent outcome to the ledger entry
// named in the intent metadata. The finalize calls are the same ones the
// M-Pesa callback uses, so replayed events are no-ops here too.
func applyIntentResult(pi *stripe.PaymentIntent, result types.PaymentStatus) {
	bookingId := pi.Metadata["bookingId"]
	orderId := pi.Metadata["orderId"]

	var notifyBooking, notifyOrder *uuid.UUID
	gdb := db.GetDb()
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var ref *string
		if result == types.PAYMENT_COMPLETED {
			ref = &pi.ID
		}
		if bookingId != "" {
			id, err := uuid.Parse(bookingId)
			if err != nil {
				log.Printf("[Stripe] Invalid bookingId metadata on %s\n", pi.ID)
				return nil
			}
			changed, err := common.FinalizeBookingPayment(tx, id, result, ref)
			if err != nil {
				return err
			}
			if changed && result == types.PAYMENT_COMPLETED {
				notifyBooking = &id
			}
		}
		if orderId != "" {
			id, err := uuid.Parse(orderId)
			if err != nil {
				log.Printf("[Stripe] Invalid orderId metadata on %s\n", pi.ID)
				return nil
			}
			changed, err := common.FinalizeOrderPayment(tx, id, result, ref)
			if err != nil {
				return err
			}
			if changed && result == types.PAYMENT_COMPLETED {
				notifyOrder = &id
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("[Stripe] Error applying %s to ledger: %s\n", pi.ID, err.Error())
		return
	}

	if notifyBooking != nil {
		go common.SendBookingConfirmation(*notifyBooking)
	}
	if notifyOrder != nil {
		go common.SendOrderConfirmation(*notifyOrder)
	}
}
