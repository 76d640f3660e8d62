package main

import (
	"errors"
	"log"
	"net/http"

	"tembea/src/common"
	"tembea/src/db"
	"tembea/src/models"
	"tembea/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Back-office actions. All read-modify-write on human-paced, low
// contention rows; the payment confirmations go through the same
// finalize functions the webhooks use, so a manual confirmation racing a
// late provider callback resolves to whichever applied first.
func adminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/admin/bookings", func(ctx *gin.Context) {
			db := db.GetDb()
			var bookings []models.Booking
			if err := db.
				Model(&models.Booking{}).
				Preload("Trip").
				Preload("User").
				Order("created_at desc").
				Limit(200).
				Find(&bookings).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
		}).
		GET("/admin/orders", func(ctx *gin.Context) {
			db := db.GetDb()
			var orders []models.Order
			if err := db.
				Model(&models.Order{}).
				Preload("User").
				Preload("Items").
				Order("created_at desc").
				Limit(200).
				Find(&orders).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": orders, "count": len(orders)})
		}).
		GET("/admin/stats", func(ctx *gin.Context) {
			db := db.GetDb()
			var bookings, orders, pendingReviews int64
			var revenue float64
			db.Model(&models.Booking{}).Count(&bookings)
			db.Model(&models.Order{}).Count(&orders)
			db.Model(&models.Review{}).Where("is_approved = ?", false).Count(&pendingReviews)
			row := db.Raw(`
				SELECT COALESCE((SELECT SUM(total_amount) FROM bookings WHERE payment_status = ?), 0)
				     + COALESCE((SELECT SUM(total_amount) FROM orders WHERE payment_status = ?), 0)`,
				types.PAYMENT_COMPLETED, types.PAYMENT_COMPLETED).Row()
			if err := row.Scan(&revenue); err != nil {
				log.Printf("[Admin] Error computing revenue: %s\n", err.Error())
			}
			ctx.JSON(http.StatusOK, gin.H{
				"bookings":        bookings,
				"orders":          orders,
				"revenue":         revenue,
				"pending_reviews": pendingReviews,
			})
		}).
		PUT("/admin/bookings/:id/payment", func(ctx *gin.Context) {
			confirmManualPayment(ctx, true)
		}).
		PUT("/admin/orders/:id/payment", func(ctx *gin.Context) {
			confirmManualPayment(ctx, false)
		}).
		PUT("/admin/reviews/:id/approve", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			res := db.
				Model(&models.Review{}).
				Where("id = ?", params.ID).
				Update("is_approved", true)
			if res.Error != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": res.Error.Error()})
				return
			}
			if res.RowsAffected == 0 {
				ctx.Status(http.StatusNotFound)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "review approved"})
		}).
		DELETE("/admin/reviews/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			if err := db.Delete(&models.Review{}, "id = ?", params.ID).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		PUT("/admin/users/:id/admin", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			res := db.
				Model(&models.User{}).
				Where("id = ?", params.ID).
				Update("is_admin", gorm.Expr("NOT is_admin"))
			if res.Error != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": res.Error.Error()})
				return
			}
			if res.RowsAffected == 0 {
				ctx.Status(http.StatusNotFound)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "admin flag toggled"})
		})
	return g
}

// confirmManualPayment is the out-of-band staff action completing (or
// rejecting) a self-reported till payment. Approval keeps the already
// recorded payment_reference; rejection releases the entry to cancelled.
func confirmManualPayment(ctx *gin.Context, isBooking bool) {
	var params types.SimpleRequestParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		ctx.Status(http.StatusBadRequest)
		return
	}
	var body types.ConfirmManualPaymentRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := uuid.MustParse(params.ID)
	result := types.PAYMENT_COMPLETED
	if !body.Approve {
		result = types.PAYMENT_CANCELED
	}

	var changed bool
	gdb := db.GetDb()
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var err error
		if isBooking {
			changed, err = common.FinalizeBookingPayment(tx, id, result, nil)
		} else {
			changed, err = common.FinalizeOrderPayment(tx, id, result, nil)
		}
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrLedgerEntryNotFound) {
			ctx.Status(http.StatusNotFound)
			return
		}
		log.Printf("[Admin] Error confirming payment for %s: %s\n", params.ID, err.Error())
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "could not update payment status"})
		return
	}
	if !changed {
		ctx.JSON(http.StatusConflict, gin.H{"error": "entry is no longer pending"})
		return
	}

	if body.Approve {
		if isBooking {
			go common.SendBookingConfirmation(id)
		} else {
			go common.SendOrderConfirmation(id)
		}
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "payment status updated"})
}
