package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cardhub/internal/authz"
)

// RequireRoles lets mutating requests through only for the allowed roles.
func RequireRoles(allowed ...int) gin.HandlerFunc {
	allowedSet := map[int]struct{}{}
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}
	return func(c *gin.Context) {
		if isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}
		v, exists := c.Get("role_id")
		if !exists {
			abort(c, http.StatusUnauthorized, "unauthorized", "no role in context")
			return
		}
		roleID, _ := v.(int)
		if _, ok := allowedSet[roleID]; !ok {
			abort(c, http.StatusForbidden, "forbidden", "forbidden")
			return
		}
		c.Next()
	}
}

// ReadOnlyGuard rejects unsafe methods for the audit role.
func ReadOnlyGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleV, _ := c.Get("role_id")
		roleID, _ := roleV.(int)
		if authz.IsReadOnly(roleID) && !isSafeMethod(c.Request.Method) {
			abort(c, http.StatusForbidden, "forbidden", "read-only role")
			return
		}
		c.Next()
	}
}
