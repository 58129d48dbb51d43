package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/equitrack/backend/internal/models"
	"github.com/equitrack/backend/pkg/response"
)

// RequireAdmin returns a middleware that allows only platform admins.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, ok := c.Get(ContextUserRole)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		role, _ := roleVal.(string)
		if role != string(models.RoleAdmin) {
			response.Forbidden(c, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
