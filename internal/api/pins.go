package api

import (
	"net/http"                             // HTTP status codes
	"referral_network/internal/domain"     // Pin statuses
	"referral_network/internal/middleware" // Authenticated member lookup
	"referral_network/internal/service"    // Pin lifecycle

	"github.com/gin-gonic/gin" // Gin web framework
)

// IssuePinRequest is the body of an admin pin issue
type IssuePinRequest struct {
	PackageID uint `json:"package_id" binding:"required"` // Package the pin unlocks
}

// TransferPinRequest is the body of a pin hand-over
type TransferPinRequest struct {
	ToMemberID uint `json:"to_member_id" binding:"required"` // Recipient member
}

// IssuePinHandler lets an admin generate a pin for a package
func IssuePinHandler(pins *service.PinService) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, ok := middleware.MemberID(c) // Get admin ID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req IssuePinRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		pin, err := pins.Issue(c.Request.Context(), adminID, req.PackageID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"pin": pin})
	}
}

// TransferPinHandler hands an available pin to another member
func TransferPinHandler(pins *service.PinService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID, ok := middleware.MemberID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req TransferPinRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		pin, err := pins.Transfer(c.Request.Context(), actorID, c.Param("code"), req.ToMemberID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"pin": pin})
	}
}

// ListPinsHandler lists pins the caller issued or holds, optionally by status
func ListPinsHandler(pins *service.PinService) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID, ok := middleware.MemberID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		status := c.Query("status") // Optional status filter
		switch status {
		case "", domain.PinAvailable, domain.PinTransferred, domain.PinUsed:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		list, err := pins.List(c.Request.Context(), memberID, status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"pins": list, "total": len(list)})
	}
}
