package main

import (
	"errors"
	"log"
	"net/http"

	"tembea/src/db"
	"tembea/src/models"
	"tembea/src/types"
	"tembea/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/bookings", func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId, err := uuid.Parse(ctx.GetString("id"))
			if err != nil {
				ctx.Status(http.StatusUnauthorized)
				return
			}
			booking, err := utils.CreateBooking(userId, &body)
			if err != nil {
				log.Printf("Error creating booking: %s\n", err.Error())
				switch {
				case errors.Is(err, utils.ErrTripNotFound):
					ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				case errors.Is(err, utils.ErrTripFull):
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				default:
					ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "failed to create booking"})
				}
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": booking})
		}).
		GET("/bookings", func(ctx *gin.Context) {
			userId, err := uuid.Parse(ctx.GetString("id"))
			if err != nil {
				ctx.Status(http.StatusUnauthorized)
				return
			}
			db := db.GetDb()
			var bookings []models.Booking
			if err := db.
				Model(&models.Booking{}).
				Where(&models.Booking{UserID: userId}).
				Preload("Trip").
				Order("created_at desc").
				Find(&bookings).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": bookings, "count": len(bookings)})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			userId, err := uuid.Parse(ctx.GetString("id"))
			if err != nil {
				ctx.Status(http.StatusUnauthorized)
				return
			}
			bookingId := uuid.MustParse(params.ID)
			db := db.GetDb()
			var booking models.Booking
			if err := db.
				Model(&models.Booking{}).
				Where(&models.Booking{ID: bookingId, UserID: userId}).
				Preload("Trip").
				First(&booking).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		})
	return g
}
