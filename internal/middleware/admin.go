package middleware

import (
	"net/http"                         // HTTP status codes
	"referral_network/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// AdminOnlyMiddleware checks the member's role from the database on each request.
// The token role is not trusted on its own so a demoted admin loses access at once.
func AdminOnlyMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID, ok := MemberID(c) // Get member ID from context
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var member domain.Member // Fetch member from database
		if err := db.WithContext(c.Request.Context()).First(&member, memberID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		// Check admin role and active status
		if !member.IsAdmin() || member.Status != domain.MemberActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next() // Admin confirmed, proceed
	}
}
