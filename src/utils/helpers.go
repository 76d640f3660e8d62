package utils

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"tembea/src/db"
	"tembea/src/models"
	"tembea/src/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrTripNotFound    = errors.New("trip not found")
	ErrTripFull        = errors.New("trip is fully booked")
	ErrProductNotFound = errors.New("product not found")
	ErrOutOfStock      = errors.New("product is out of stock")
)

var kenyanPhoneRegexp = regexp.MustCompile(`^254[0-9]{9}$`)

// NormalizePhone reduces a user-entered number to the 254XXXXXXXXX form
// Daraja expects: digits only, leading 0 swapped for the country code.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	clean := b.String()
	if strings.HasPrefix(clean, "0") {
		return "254" + clean[1:]
	}
	return clean
}

func ValidKenyanPhone(phone string) bool {
	return kenyanPhoneRegexp.MatchString(phone)
}

// Booking and order references are short display tokens derived from the
// current time. They are for humans (receipts, till payments, support
// calls), not uniqueness; the row id is the key.
func GenerateBookingReference() string {
	millis := strconv.FormatInt(time.Now().UnixMilli(), 10)
	return "TM" + millis[len(millis)-8:]
}

func GenerateOrderReference() string {
	millis := strconv.FormatInt(time.Now().UnixMilli(), 10)
	return "ORD" + millis[len(millis)-8:]
}

// CreateBooking creates a pending/pending ledger row for a trip. The
// amount is the trip's catalog price re-read inside the transaction,
// never a client-echoed value. Capacity is reserved at intent time with
// a guarded single-statement increment; a full trip aborts the whole
// transaction so no partial row remains. The traveller's contact and
// emergency details are snapshotted onto the profile.
func CreateBooking(userId uuid.UUID, params *types.CreateBookingRequestBody) (*models.Booking, error) {
	tripId, err := uuid.Parse(params.TripID)
	if err != nil {
		return nil, ErrTripNotFound
	}

	var booking models.Booking
	db := db.GetDb()
	err = db.Transaction(func(tx *gorm.DB) error {
		var trip models.Trip
		if err := tx.
			Model(&models.Trip{}).
			Where(&models.Trip{ID: tripId, IsActive: true}).
			First(&trip).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTripNotFound
			}
			return err
		}

		res := tx.
			Model(&models.Trip{}).
			Where("id = ? AND current_bookings < max_capacity", tripId).
			UpdateColumn("current_bookings", gorm.Expr("current_bookings + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTripFull
		}

		booking = models.Booking{
			TripID:           tripId,
			UserID:           userId,
			BookingReference: GenerateBookingReference(),
			TotalAmount:      trip.Price,
			PaymentMethod:    params.PaymentMethod,
			PaymentStatus:    types.PAYMENT_PENDING,
			Status:           types.BOOKING_PENDING,
		}
		if params.SpecialRequests != "" {
			booking.SpecialRequests = &params.SpecialRequests
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}

		if err := tx.
			Model(&models.User{}).
			Where(&models.User{ID: userId}).
			Updates(&models.User{
				FullName:         params.FullName,
				Phone:            params.Phone,
				EmergencyContact: params.EmergencyContact,
				EmergencyPhone:   params.EmergencyPhone,
			}).
			Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// CreateOrder creates an order plus its items as one transaction. Unit
// prices are snapshots of the catalog price read server-side; the order
// total is computed from the items, so the sum always reconciles. Stock
// is decremented with a guarded UPDATE per item.
func CreateOrder(userId uuid.UUID, params *types.CreateOrderRequestBody) (*models.Order, error) {
	var order models.Order
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		items := make([]models.OrderItem, 0, len(params.Items))
		var total float64
		for _, it := range params.Items {
			productId, err := uuid.Parse(it.ProductID)
			if err != nil {
				return ErrProductNotFound
			}
			var product models.Product
			if err := tx.
				Model(&models.Product{}).
				Where(&models.Product{ID: productId, IsActive: true}).
				First(&product).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrProductNotFound
				}
				return err
			}

			res := tx.
				Model(&models.Product{}).
				Where("id = ? AND stock_quantity >= ?", productId, it.Quantity).
				UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", it.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: %s", ErrOutOfStock, product.Name)
			}

			lineTotal := float64(it.Quantity) * product.Price
			total += lineTotal
			items = append(items, models.OrderItem{
				ProductID:  productId,
				Quantity:   it.Quantity,
				UnitPrice:  product.Price,
				TotalPrice: lineTotal,
			})
		}

		order = models.Order{
			UserID:         userId,
			OrderReference: GenerateOrderReference(),
			TotalAmount:    total,
			PaymentMethod:  params.PaymentMethod,
			PaymentStatus:  types.PAYMENT_PENDING,
			Status:         types.ORDER_PENDING,
		}
		if params.ShippingAddress != nil {
			addr := params.ShippingAddress
			order.ShippingAddress = &addr
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		order.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ExtractCallbackItems pulls the receipt, phone and transaction date out
// of the callback's unordered name/value metadata list. The receipt is
// required on success; phone and date are optional and left zero when
// absent.
func ExtractCallbackItems(md *types.StkCallbackMetadata) (receipt string, phone string, txDate *time.Time, err error) {
	if md == nil {
		return "", "", nil, errors.New("callback metadata missing")
	}
	for _, item := range md.Item {
		switch item.Name {
		case "MpesaReceiptNumber":
			if s, ok := item.Value.(string); ok {
				receipt = s
			}
		case "PhoneNumber":
			phone = stringifyCallbackValue(item.Value)
		case "TransactionDate":
			if raw := stringifyCallbackValue(item.Value); raw != "" {
				if t, perr := time.Parse("20060102150405", raw); perr == nil {
					txDate = &t
				}
			}
		}
	}
	if receipt == "" {
		return "", "", nil, errors.New("callback metadata missing MpesaReceiptNumber")
	}
	return receipt, phone, txDate, nil
}

// Daraja sends numbers for phone and date fields; decoded as float64.
func stringifyCallbackValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatInt(int64(val), 10)
	default:
		return ""
	}
}
