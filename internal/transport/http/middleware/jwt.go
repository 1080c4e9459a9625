package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"netauto/internal/pkg/jwtutil"
	"netauto/internal/transport/http/response"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
	ContextRoleKey     = "role"
)

func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid authorization scheme")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Set(ContextRoleKey, claims.Role)
		c.Next()
	}
}

// Passthrough stands in for AuthJWT when authentication is disabled.
func Passthrough() gin.HandlerFunc {
	return func(c *gin.Context) { c.Next() }
}

// RequireRole must run after AuthJWT. Requests without a role in context
// pass, so it is a no-op when authentication is disabled.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		raw, exists := c.Get(ContextRoleKey)
		if !exists {
			c.Next()
			return
		}
		role, _ := raw.(string)
		if _, ok := allowed[role]; !ok {
			response.Error(c, http.StatusForbidden, response.CodeForbidden, "insufficient role")
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user id, or 0 for anonymous requests.
func UserID(c *gin.Context) uint {
	raw, ok := c.Get(ContextUserIDKey)
	if !ok {
		return 0
	}
	id, _ := raw.(uint)
	return id
}
