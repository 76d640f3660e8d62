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

func orderHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/orders", func(ctx *gin.Context) {
			var body types.CreateOrderRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId, err := uuid.Parse(ctx.GetString("id"))
			if err != nil {
				ctx.Status(http.StatusUnauthorized)
				return
			}
			order, err := utils.CreateOrder(userId, &body)
			if err != nil {
				log.Printf("Error creating order: %s\n", err.Error())
				switch {
				case errors.Is(err, utils.ErrProductNotFound):
					ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				case errors.Is(err, utils.ErrOutOfStock):
					ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				default:
					ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "failed to create order"})
				}
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": order})
		}).
		GET("/orders", func(ctx *gin.Context) {
			userId, err := uuid.Parse(ctx.GetString("id"))
			if err != nil {
				ctx.Status(http.StatusUnauthorized)
				return
			}
			db := db.GetDb()
			var orders []models.Order
			if err := db.
				Model(&models.Order{}).
				Where(&models.Order{UserID: userId}).
				Preload("Items").
				Order("created_at desc").
				Find(&orders).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": orders, "count": len(orders)})
		}).
		GET("/orders/:id", func(ctx *gin.Context) {
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
			orderId := uuid.MustParse(params.ID)
			db := db.GetDb()
			var order models.Order
			if err := db.
				Model(&models.Order{}).
				Where(&models.Order{ID: orderId, UserID: userId}).
				Preload("Items").
				Preload("Items.Product").
				First(&order).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": order})
		})
	return g
}
