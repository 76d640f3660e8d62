package middlewares

import (
	"log"
	"os"
	"strings"

	"tembea/src/db"
	"tembea/src/models"
	"tembea/src/types"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// jwtKey is read per request; the secret comes from the environment and
// may only be populated after dotenv loading in main.
func jwtKey() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

func AuthMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer") {
		ctx.AbortWithStatus(401)
		return
	}
	parts := strings.Split(bearerToken, " ")
	if len(parts) < 2 || parts[1] == "" {
		ctx.AbortWithStatus(401)
		return
	}
	reqToken := parts[1]
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		return jwtKey(), nil
	})
	if err != nil {
		log.Printf("token error: %s\n", err.Error())
		if err == jwt.ErrSignatureInvalid || err == jwt.ErrTokenMalformed {
			ctx.AbortWithStatus(401)
			return
		}
		ctx.AbortWithError(401, err)
		return
	}
	if !tkn.Valid {
		ctx.AbortWithStatus(401)
		return
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		log.Println("error parsing claims:", err.Error())
		ctx.AbortWithStatus(401)
		return
	}
	db := db.GetDb()
	var user models.User
	db.Model(&models.User{}).Where(&models.User{ID: uid}).Find(&user)

	if uid != user.ID {
		ctx.AbortWithStatus(401)
		return
	}
	ctx.Set("id", user.ID.String())
	ctx.Set("email", user.Email)
	ctx.Set("is_admin", user.IsAdmin)
}

// AdminMiddleware runs after AuthMiddleware and gates back-office routes
// on the acting user's profile flag.
func AdminMiddleware(ctx *gin.Context) {
	if !ctx.GetBool("is_admin") {
		ctx.AbortWithStatusJSON(403, gin.H{"error": "admin access required"})
		return
	}
}
