package main

import (
	"errors"
	"net/http"
	"time"

	"tembea/src/config"
	"tembea/src/db"
	"tembea/src/models"
	"tembea/src/types"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func tripHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/trips", func(ctx *gin.Context) {
			db := db.GetDb()
			var trips []models.Trip
			if err := db.
				Model(&models.Trip{}).
				Where(&models.Trip{IsActive: true}).
				Order("start_date asc").
				Find(&trips).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": trips, "count": len(trips)})
		}).
		GET("/trips/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var trip models.Trip
			if err := db.
				Model(&models.Trip{}).
				Where("id = ?", params.ID).
				First(&trip).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": trip})
		})
	return g
}

func tripAdminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/admin/trips", func(ctx *gin.Context) {
			var body types.CreateTripRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			startDate, err := time.Parse(config.TIME_PARSE_FORMAT, body.StartDate)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
				return
			}
			endDate, err := time.Parse(config.TIME_PARSE_FORMAT, body.EndDate)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
				return
			}
			trip := models.Trip{
				Title:       body.Title,
				Destination: body.Destination,
				Price:       body.Price,
				StartDate:   startDate,
				EndDate:     endDate,
				MaxCapacity: body.MaxCapacity,
				IsActive:    true,
			}
			if body.Description != "" {
				trip.Description = &body.Description
			}
			if body.ImageURL != "" {
				trip.ImageURL = &body.ImageURL
			}
			db := db.GetDb()
			if err := db.Create(&trip).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": trip})
		}).
		PUT("/admin/trips/:id/deactivate", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			res := db.
				Model(&models.Trip{}).
				Where("id = ?", params.ID).
				Update("is_active", false)
			if res.Error != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": res.Error.Error()})
				return
			}
			if res.RowsAffected == 0 {
				ctx.Status(http.StatusNotFound)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "trip deactivated"})
		})
	return g
}
