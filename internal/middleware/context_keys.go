package middleware

import "github.com/gin-gonic/gin"

// tenantIDKey and userIDKey hold the authenticated caller's identity in the Gin
// context. Custom type prevents collisions.
const (
	tenantIDKey = contextKey("tenantID")
	userIDKey   = contextKey("userID")
)

// GetTenantIDFromContext retrieves the authenticated tenant ID from the Gin context.
func GetTenantIDFromContext(c *gin.Context) (string, bool) {
	val, exists := c.Get(string(tenantIDKey))
	if !exists {
		return "", false
	}
	tenantID, ok := val.(string)
	if !ok || tenantID == "" {
		return "", false
	}
	return tenantID, true
}

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	val, exists := c.Get(string(userIDKey))
	if !exists {
		return "", false
	}
	userID, ok := val.(string)
	if !ok {
		return "", false
	}
	return userID, true
}
