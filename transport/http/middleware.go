package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/samoylenkodmitry/shrtlin/service"
)

// userIDKey is the gin context key the middleware stores the
// authenticated user id under.
const userIDKey = "userID"

// AuthMiddleware creates middleware that validates session tokens.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")

		if len(auth) < 8 || auth[:7] != "Bearer " {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is not valid or expired"})
			return
		}

		userID, err := authService.Authenticate(auth[7:])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is not valid or expired"})
			return
		}

		c.Set(userIDKey, userID)

		c.Next()
	}
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}
