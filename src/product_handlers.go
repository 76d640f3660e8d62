package main

import (
	"errors"
	"net/http"

	"tembea/src/db"
	"tembea/src/models"
	"tembea/src/types"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func productHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/products", func(ctx *gin.Context) {
			db := db.GetDb()
			query := db.
				Model(&models.Product{}).
				Where(&models.Product{IsActive: true})
			if category := ctx.Query("category"); category != "" && category != "all" {
				query = query.Where("category = ?", category)
			}
			var products []models.Product
			if err := query.
				Order("created_at desc").
				Find(&products).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": products, "count": len(products)})
		}).
		GET("/products/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var product models.Product
			if err := db.
				Model(&models.Product{}).
				Where("id = ?", params.ID).
				First(&product).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": product})
		})
	return g
}

func productAdminHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/admin/products", func(ctx *gin.Context) {
			var body types.CreateProductRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			product := models.Product{
				Name:          body.Name,
				Slug:          slug.Make(body.Name),
				Price:         body.Price,
				Category:      body.Category,
				StockQuantity: body.StockQuantity,
				IsActive:      true,
			}
			if body.Description != "" {
				product.Description = &body.Description
			}
			if body.Destination != "" {
				product.Destination = &body.Destination
			}
			if len(body.Images) > 0 {
				images := types.JSONB{"urls": body.Images}
				product.Images = images
			}
			db := db.GetDb()
			if err := db.Create(&product).Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": product})
		}).
		PUT("/admin/products/:id/deactivate", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			res := db.
				Model(&models.Product{}).
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
			ctx.JSON(http.StatusOK, gin.H{"message": "product deactivated"})
		})
	return g
}
