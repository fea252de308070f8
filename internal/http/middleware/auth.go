package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/avelldro/converse-backend/internal/platform/logger"
	"github.com/avelldro/converse-backend/internal/requestdata"
)

type AuthMiddleware struct {
	log       *logger.Logger
	secretKey string
}

func NewAuthMiddleware(log *logger.Logger, secretKey string) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("Middleware", "AuthMiddleware"), secretKey: secretKey}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "missing or invalid token", "code": "unauthorized"},
			})
			return
		}

		userID, err := am.parseSubject(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": err.Error(), "code": "unauthorized"},
			})
			return
		}

		ctx := requestdata.WithRequestData(c.Request.Context(), &requestdata.RequestData{
			TokenString: tokenString,
			UserID:      userID,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (am *AuthMiddleware) parseSubject(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(am.secretKey), nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid token")
	}
	if !token.Valid {
		return uuid.Nil, fmt.Errorf("invalid token")
	}
	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, fmt.Errorf("token missing subject")
	}
	userID, err := uuid.Parse(sub)
	if err != nil || userID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("token subject is not a user id")
	}
	return userID, nil
}

func extractToken(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	return ""
}
