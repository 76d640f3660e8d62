package common

import (
	"context"
	"fmt"
	"log"
	"os"

	"tembea/src/db"
	"tembea/src/lib"
	"tembea/src/models"

	"github.com/google/uuid"
)

// Confirmation dispatch fires once per ledger entry, from the finalize
// call sites, and only on terminal success. Payment state is
// authoritative: a failed email or WhatsApp send is logged and dropped,
// never rolled back or retried here.

func SendBookingConfirmation(bookingId uuid.UUID) {
	db := db.GetDb()
	var booking models.Booking
	if err := db.
		Model(&models.Booking{}).
		Where(&models.Booking{ID: bookingId}).
		Preload("Trip").
		Preload("User").
		First(&booking).
		Error; err != nil {
		log.Printf("[Notify] Could not load booking %s: %s\n", bookingId, err.Error())
		return
	}
	if booking.Trip == nil || booking.User == nil {
		log.Printf("[Notify] Booking %s missing trip or user association\n", bookingId)
		return
	}

	from := os.Getenv("MAIL_FROM")
	fromName := os.Getenv("MAIL_FROM_NAME")
	adminEmail := os.Getenv("ADMIN_EMAIL")

	userHtml := fmt.Sprintf(`<h1>Booking Confirmed!</h1>
<p>Dear %s,</p>
<p>Your booking for <strong>%s</strong> is confirmed.</p>
<ul>
<li>Booking Reference: %s</li>
<li>Destination: %s</li>
<li>Amount Paid: %.2f</li>
</ul>
<p>Safe travels!</p>`,
		booking.User.FullName, booking.Trip.Title, booking.BookingReference,
		booking.Trip.Destination, booking.TotalAmount)
	if err := lib.SendMail(&lib.SendMailInput{
		From:     from,
		FromName: fromName,
		To:       booking.User.Email,
		Subject:  fmt.Sprintf("Booking Confirmed - %s", booking.Trip.Title),
		Html:     userHtml,
	}); err != nil {
		log.Printf("[Notify] Error emailing customer for booking %s: %s\n", bookingId, err.Error())
	}

	if adminEmail != "" {
		adminHtml := fmt.Sprintf(`<h1>New Booking</h1>
<ul>
<li>Trip: %s</li>
<li>Customer: %s (%s, %s)</li>
<li>Reference: %s</li>
<li>Amount: %.2f</li>
<li>Method: %s</li>
</ul>`,
			booking.Trip.Title, booking.User.FullName, booking.User.Email,
			booking.User.Phone, booking.BookingReference, booking.TotalAmount,
			booking.PaymentMethod)
		if err := lib.SendMail(&lib.SendMailInput{
			From:     from,
			FromName: fromName,
			To:       adminEmail,
			Subject:  fmt.Sprintf("New Booking - %s", booking.Trip.Title),
			Html:     adminHtml,
		}); err != nil {
			log.Printf("[Notify] Error emailing admin for booking %s: %s\n", bookingId, err.Error())
		}
	}

	if booking.User.Phone != "" {
		err := lib.SendWhatsAppTemplate(context.Background(), booking.User.Phone, "booking_confirmation", []string{
			booking.User.FullName,
			booking.Trip.Title,
			booking.BookingReference,
		})
		if err != nil {
			log.Printf("[Notify] Error sending WhatsApp for booking %s: %s\n", bookingId, err.Error())
		}
	}
}

func SendOrderConfirmation(orderId uuid.UUID) {
	db := db.GetDb()
	var order models.Order
	if err := db.
		Model(&models.Order{}).
		Where(&models.Order{ID: orderId}).
		Preload("User").
		Preload("Items").
		Preload("Items.Product").
		First(&order).
		Error; err != nil {
		log.Printf("[Notify] Could not load order %s: %s\n", orderId, err.Error())
		return
	}
	if order.User == nil {
		log.Printf("[Notify] Order %s missing user association\n", orderId)
		return
	}

	lines := ""
	for _, item := range order.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		lines += fmt.Sprintf("<li>%d x %s - %.2f</li>", item.Quantity, name, item.TotalPrice)
	}
	html := fmt.Sprintf(`<h1>Order Received</h1>
<p>Dear %s,</p>
<p>Your order <strong>%s</strong> is being processed.</p>
<ul>%s</ul>
<p>Total: %.2f</p>`,
		order.User.FullName, order.OrderReference, lines, order.TotalAmount)

	if err := lib.SendMail(&lib.SendMailInput{
		From:     os.Getenv("MAIL_FROM"),
		FromName: os.Getenv("MAIL_FROM_NAME"),
		To:       order.User.Email,
		Subject:  fmt.Sprintf("Order Confirmed - %s", order.OrderReference),
		Html:     html,
	}); err != nil {
		log.Printf("[Notify] Error emailing customer for order %s: %s\n", orderId, err.Error())
	}
}
