package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/coachbar/catalog-api/internal/domain/entity"
	"github.com/coachbar/catalog-api/pkg/helpers"
	"github.com/coachbar/catalog-api/pkg/response"
)

const (
	CtxUserIDKey = "userID"
	CtxRoleKey   = "userRole"
)

// Auth validates the `Authorization: Bearer <token>` header and injects the
// caller's identity and role into the Gin context. Verification is stateless:
// no session store is consulted.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response.Error[any](c, http.StatusUnauthorized, "missing or invalid Authorization header", nil)
			c.Abort()
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := jwt.ParseToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid or expired token", nil)
			c.Abort()
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxRoleKey, string(claims.Role))
		c.Next()
	}
}

// AdminOnly requires a prior Auth and rejects callers whose role claim is
// not admin.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if Role(c) != entity.RoleAdmin {
			response.Error[any](c, http.StatusForbidden, "admin access required", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Identity returns the authenticated caller's user id from the context.
func Identity(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}

// Role returns the authenticated caller's role from the context.
func Role(c *gin.Context) entity.Role {
	return entity.Role(c.GetString(CtxRoleKey))
}
