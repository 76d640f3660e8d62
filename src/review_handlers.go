package main

import (
	"net/http"

	"tembea/src/db"
	"tembea/src/models"
	"tembea/src/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func reviewPublicHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.GET("/trips/:id/reviews", func(ctx *gin.Context) {
		var params types.SimpleRequestParams
		if err := ctx.ShouldBindUri(&params); err != nil {
			ctx.Status(http.StatusBadRequest)
			return
		}
		db := db.GetDb()
		var reviews []models.Review
		if err := db.
			Model(&models.Review{}).
			Where("trip_id = ? AND is_approved = ?", params.ID, true).
			Preload("User").
			Order("created_at desc").
			Find(&reviews).
			Error; err != nil {
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"data": reviews, "count": len(reviews)})
	})
	return g
}

func reviewHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.POST("/reviews", func(ctx *gin.Context) {
		var body types.CreateReviewRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		userId, err := uuid.Parse(ctx.GetString("id"))
		if err != nil {
			ctx.Status(http.StatusUnauthorized)
			return
		}
		review := models.Review{
			TripID:  uuid.MustParse(body.TripID),
			UserID:  userId,
			Rating:  body.Rating,
			Comment: body.Comment,
			// New reviews wait for moderation.
			IsApproved: false,
		}
		db := db.GetDb()
		if err := db.Create(&review).Error; err != nil {
			ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusCreated, gin.H{"data": review})
	})
	return g
}
