package main

import (
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"tembea/src/db"
	"tembea/src/models"
	"tembea/src/types"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// jwtKey is read per call; the secret comes from the environment and may
// only be populated after dotenv loading in main.
func jwtKey() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

func signToken(user *models.User) (string, error) {
	claims := types.Claims{
		Email:   user.Email,
		IsAdmin: user.IsAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(72 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey())
}

func authHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/auth/register", func(ctx *gin.Context) {
			var body types.RegisterRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
			if err != nil {
				ctx.Status(http.StatusInternalServerError)
				return
			}
			user := models.User{
				Email:        body.Email,
				PasswordHash: string(hash),
				FullName:     body.FullName,
				Phone:        body.Phone,
			}
			db := db.GetDb()
			if err := db.Create(&user).Error; err != nil {
				log.Printf("Error registering user: %s\n", err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "could not create account"})
				return
			}
			token, err := signToken(&user)
			if err != nil {
				log.Printf("Error signing token: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
		}).
		POST("/auth/login", func(ctx *gin.Context) {
			var body types.LoginRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			db := db.GetDb()
			var user models.User
			if err := db.
				Model(&models.User{}).
				Where(&models.User{Email: body.Email}).
				First(&user).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
					return
				}
				ctx.Status(http.StatusUnprocessableEntity)
				return
			}
			if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
				ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			token, err := signToken(&user)
			if err != nil {
				log.Printf("Error signing token: %s\n", err.Error())
				ctx.Status(http.StatusInternalServerError)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"token": token, "user": user})
		})
	return g
}

func profileHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/profile", func(ctx *gin.Context) {
			userId, err := uuid.Parse(ctx.GetString("id"))
			if err != nil {
				ctx.Status(http.StatusUnauthorized)
				return
			}
			db := db.GetDb()
			var user models.User
			if err := db.
				Model(&models.User{}).
				Where(&models.User{ID: userId}).
				First(&user).
				Error; err != nil {
				ctx.Status(http.StatusNotFound)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": user})
		}).
		PUT("/profile", func(ctx *gin.Context) {
			var body types.UpdateProfileRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId, err := uuid.Parse(ctx.GetString("id"))
			if err != nil {
				ctx.Status(http.StatusUnauthorized)
				return
			}
			db := db.GetDb()
			if err := db.
				Model(&models.User{}).
				Where(&models.User{ID: userId}).
				Updates(&models.User{
					FullName:         body.FullName,
					Phone:            body.Phone,
					EmergencyContact: body.EmergencyContact,
					EmergencyPhone:   body.EmergencyPhone,
				}).
				Error; err != nil {
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"message": "profile updated"})
		})
	return g
}
