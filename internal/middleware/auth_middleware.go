package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/roomcast/roomcast/internal/models"
	"github.com/roomcast/roomcast/internal/utils"
)

// AdminAuth guards room management routes with a bearer token when a
// secret is configured. An empty secret disables the guard entirely and
// the room password flow stays the only gate.
func AdminAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSecret == "" {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Authorization header required",
			})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid authorization format. Use: Bearer <token>",
			})
			c.Abort()
			return
		}

		claims, err := utils.ValidateAdminToken(tokenString, jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		if claims.Role != models.RoleSuperadmin {
			c.JSON(http.StatusForbidden, gin.H{
				"message": "Superadmin access required",
			})
			c.Abort()
			return
		}

		c.Set("admin_role", claims.Role)
		c.Next()
	}
}
