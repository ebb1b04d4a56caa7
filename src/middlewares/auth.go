package middlewares

import (
	"log"
	"os"
	"planngo/src/db"
	"planngo/src/models"
	"planngo/src/types"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

func AuthMiddleware(ctx *gin.Context) {
	jwtKey := []byte(os.Getenv("JWT_SECRET"))
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer") {
		ctx.AbortWithStatus(401)
		return
	}
	reqToken := strings.Split(bearerToken, " ")[1]
	if reqToken == "" {
		ctx.AbortWithStatus(401)
		return
	}
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
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

	db := db.GetDb()
	var user models.User
	uid, err := strconv.Atoi(claims.Subject)
	if err != nil {
		log.Println("error parsing claims:", err.Error())
		ctx.AbortWithStatus(401)
		return
	}
	db.Model(&models.User{}).Where(&models.User{ID: uint(uid)}).Find(&user)

	if uint(uid) != user.ID || user.ID < 1 {
		ctx.AbortWithStatus(401)
		return
	}
	ctx.Set("email", user.Email)
	ctx.Set("id", user.ID)
	ctx.Set("role", user.Role)

	switch types.Role(user.Role) {
	case types.ROLE_CLIENT:
		var client models.Client
		db.Model(&models.Client{}).Where(&models.Client{UserID: user.ID}).Find(&client)
		ctx.Set("clientId", client.ID)
	case types.ROLE_ORGANIZER:
		var organizer models.Organizer
		db.Model(&models.Organizer{}).Where(&models.Organizer{UserID: user.ID}).Find(&organizer)
		ctx.Set("organizerId", organizer.ID)
	}
}

// RequireRoles rejects the request with a 403 unless the authenticated
// user's role is in the allowed set. Runs after AuthMiddleware.
func RequireRoles(roles ...types.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		role := types.Role(ctx.GetString("role"))
		for _, allowed := range roles {
			if role == allowed {
				return
			}
		}
		ctx.AbortWithStatusJSON(403, gin.H{"error": "insufficient permissions"})
	}
}

func SecureHeaders(ctx *gin.Context) {
	ctx.Header("X-Frame-Options", "DENY")
	ctx.Header("X-Content-Type-Options", "nosniff")
	ctx.Header("Referrer-Policy", "strict-origin-when-cross-origin")
	ctx.Next()
}
