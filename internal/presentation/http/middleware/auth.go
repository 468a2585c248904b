package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/dukapay-api/internal/presentation/http/dto/response"
	"github.com/sangkips/dukapay-api/pkg/utils"
)

// AuthMiddleware requires a valid customer token and attaches the customer
// identity to the request context.
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, jwtManager)
		if !ok {
			response.Unauthorized(c, "Invalid or missing token")
			c.Abort()
			return
		}

		c.Set("customer_id", claims.CustomerID)
		c.Set("customer_email", claims.Email)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the customer identity when a valid token is
// present but lets the request through either way. Checkout accepts guests.
func OptionalAuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := bearerClaims(c, jwtManager); ok {
			c.Set("customer_id", claims.CustomerID)
			c.Set("customer_email", claims.Email)
		}
		c.Next()
	}
}

func bearerClaims(c *gin.Context, jwtManager *utils.JWTManager) (*utils.CustomerClaims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, false
	}

	claims, err := jwtManager.ValidateToken(parts[1])
	if err != nil {
		return nil, false
	}
	return claims, true
}
