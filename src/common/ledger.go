package common

import (
	"errors"
	"fmt"
	"log"

	"tembea/src/models"
	"tembea/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ledger finalization. Both webhook rails, the Daraja callback and the
// staff confirmation of a manual payment all funnel through these
// functions, so the state machine and its invariants live in one place:
//
//	pending/pending -> confirmed/completed    (booking, success)
//	pending/pending -> processing/completed   (order, success)
//	pending/pending -> cancelled/{failed,cancelled}  (either)
//
// An entry already in a terminal state is left untouched and reported as
// unchanged, which is what makes provider webhook replays no-ops.

var ErrLedgerEntryNotFound = errors.New("ledger entry not found")

func validTerminal(result types.PaymentStatus) error {
	switch result {
	case types.PAYMENT_COMPLETED, types.PAYMENT_FAILED, types.PAYMENT_CANCELED:
		return nil
	}
	return fmt.Errorf("%s is not a terminal payment status", result)
}

// FinalizeBookingPayment applies a terminal payment result to a booking.
// Returns false when the booking had already left pending.
func FinalizeBookingPayment(tx *gorm.DB, bookingId uuid.UUID, result types.PaymentStatus, paymentRef *string) (bool, error) {
	if err := validTerminal(result); err != nil {
		return false, err
	}
	var booking models.Booking
	if err := tx.
		Model(&models.Booking{}).
		Where(&models.Booking{ID: bookingId}).
		First(&booking).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrLedgerEntryNotFound
		}
		return false, err
	}
	if booking.Status != types.BOOKING_PENDING {
		log.Printf("[Ledger] Booking %s already %s; skipping update\n", bookingId, booking.Status)
		return false, nil
	}

	updates := map[string]any{"payment_status": result}
	if result == types.PAYMENT_COMPLETED {
		updates["status"] = types.BOOKING_CONFIRMED
		if paymentRef != nil {
			updates["payment_reference"] = *paymentRef
		}
	} else {
		updates["status"] = types.BOOKING_CANCELED
	}
	if err := tx.
		Model(&models.Booking{}).
		Where(&models.Booking{ID: bookingId}).
		Updates(updates).
		Error; err != nil {
		return false, err
	}
	return true, nil
}

// FinalizeOrderPayment applies a terminal payment result to an order.
// Returns false when the order had already left pending.
func FinalizeOrderPayment(tx *gorm.DB, orderId uuid.UUID, result types.PaymentStatus, paymentRef *string) (bool, error) {
	if err := validTerminal(result); err != nil {
		return false, err
	}
	var order models.Order
	if err := tx.
		Model(&models.Order{}).
		Where(&models.Order{ID: orderId}).
		First(&order).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrLedgerEntryNotFound
		}
		return false, err
	}
	if order.Status != types.ORDER_PENDING {
		log.Printf("[Ledger] Order %s already %s; skipping update\n", orderId, order.Status)
		return false, nil
	}

	updates := map[string]any{"payment_status": result}
	if result == types.PAYMENT_COMPLETED {
		updates["status"] = types.ORDER_PROCESSING
		if paymentRef != nil {
			updates["payment_reference"] = *paymentRef
		}
	} else {
		updates["status"] = types.ORDER_CANCELED
	}
	if err := tx.
		Model(&models.Order{}).
		Where(&models.Order{ID: orderId}).
		Updates(updates).
		Error; err != nil {
		return false, err
	}
	return true, nil
}

// FinalizeLinkedEntry routes a transaction's result to whichever ledger
// entry it is linked to. A transaction row links exactly one of the two.
func FinalizeLinkedEntry(tx *gorm.DB, txn *models.MpesaTransaction, result types.PaymentStatus, paymentRef *string) (bool, error) {
	if txn.BookingID != nil {
		return FinalizeBookingPayment(tx, *txn.BookingID, result, paymentRef)
	}
	if txn.OrderID != nil {
		return FinalizeOrderPayment(tx, *txn.OrderID, result, paymentRef)
	}
	return false, errors.New("transaction has no linked ledger entry")
}
