package handler

import (
	"net/http"
	"strings"

	"feastly/internal/app/platform/entity"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Ключи контекста gin, заполняются JWT middleware
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// JWTAuthMiddleware проверяет Bearer токен и кладет
// user_id и role из claims в контекст запроса
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "authorization header required"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "invalid authorization header format"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "invalid or expired token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "invalid token claims"})
			c.Abort()
			return
		}

		userIDStr, _ := claims["user_id"].(string)
		userID, err := uuid.Parse(userIDStr)
		if err != nil {
			c.JSON(http.StatusUnauthorized, entity.ErrorResponse{Error: "invalid user id in token"})
			c.Abort()
			return
		}

		role, _ := claims["role"].(string)
		if role == "" {
			role = entity.RoleCustomer
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextRole, role)
		c.Next()
	}
}

// RequireRole пропускает запрос только для перечисленных ролей
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, entity.ErrorResponse{Error: "insufficient permissions"})
		c.Abort()
	}
}

// currentUser достает идентификатор и роль из контекста запроса
func currentUser(c *gin.Context) (uuid.UUID, string) {
	userID, _ := c.MustGet(ContextUserID).(uuid.UUID)
	return userID, c.GetString(ContextRole)
}
