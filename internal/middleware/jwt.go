package middleware

import (
	"net/http"                        // HTTP status codes
	"referral_network/internal/utils" // JWT utility functions
	"strings"                         // String manipulation

	"github.com/gin-gonic/gin" // Gin web framework
)

// Context keys set by JWTAuthMiddleware
const (
	MemberIDKey = "memberID" // Authenticated member ID (uint)
	RoleKey     = "role"     // Role claimed by the token
)

// JWTAuthMiddleware validates JWT tokens and extracts member information
func JWTAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Check if the Authorization header is present and properly formatted
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}
		tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string
		claims, err := utils.ParseJWT(tokenStr, secret)       // Parse the JWT token
		if err != nil || claims.MemberID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(MemberIDKey, claims.MemberID) // Store member ID in context
		c.Set(RoleKey, claims.Role)         // Store role in context
		c.Next()                            // Proceed to the next handler
	}
}

// MemberID returns the authenticated member ID, false when the request was not authenticated
func MemberID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(MemberIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
