package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/projectdesk-app/utils"
)

// WebSocketAuthMiddleware -> autentikasi via query param karena
// browser tidak bisa mengirim header Authorization saat upgrade.
func WebSocketAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(401)
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			c.AbortWithStatus(401)
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)

		c.Next()
	}
}
