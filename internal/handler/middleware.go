package handler

import (
	"net/http"
	"strings"

	"github.com/get30seconds/auth-api/internal/dto"
	"github.com/get30seconds/auth-api/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthMiddleware resolves the bearer token to a user and adds the token
// claims to the request context. Revoked and expired tokens are rejected.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, dto.MessageResponse{Message: "Unauthenticated."})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, dto.MessageResponse{Message: "Unauthenticated."})
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.MessageResponse{Message: "Unauthenticated."})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("claims", claims)

		c.Next()
	}
}
