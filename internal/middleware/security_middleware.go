package middleware

import (
	"net/http"
	"strings"

	"go-pos-retail/internal/auth"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware
const (
	CtxUserID   = "userID"
	CtxUsername = "username"
	CtxRole     = "role"
)

// PermissionChecker answers role capability questions.
type PermissionChecker interface {
	HasPermission(role, module, action string) bool
}

// AuthMiddleware checks if the user has a valid JWT token
func AuthMiddleware(tokens *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get the token from the "Authorization" header
		// Format: "Bearer <token>"
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required", "code": "unauthorized"})
			return
		}

		// 2. Remove the "Bearer " prefix
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer", "code": "unauthorized"})
			return
		}

		// 3. Validate the token
		claims, err := tokens.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "code": "unauthorized"})
			return
		}

		// 4. Store user info in the context for the next handler to use
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUsername, claims.Username)
		c.Set(CtxRole, claims.Role)

		c.Next()
	}
}

// RequireRole is a secondary guard that checks for one specific role
func RequireRole(allowedRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(CtxRole)
		if !strings.EqualFold(role, allowedRole) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource", "code": "forbidden"})
			return
		}
		c.Next()
	}
}

// RequirePermission lets the request through only when the caller's role
// holds action on module.
func RequirePermission(checker PermissionChecker, module, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !checker.HasPermission(c.GetString(CtxRole), module, action) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "You do not have permission to " + action + " " + module,
				"code":  "forbidden",
			})
			return
		}
		c.Next()
	}
}
