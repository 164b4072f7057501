package api

import (
	"net/http"                             // HTTP status codes
	"referral_network/internal/middleware" // Authenticated member lookup
	"referral_network/internal/service"    // Member onboarding
	"referral_network/internal/utils"      // Utility functions
	"time"                                 // Token lifetime

	"github.com/gin-gonic/gin" // Gin web framework
)

// RegisterRequest is the body of a registration
type RegisterRequest struct {
	ReferralCode string  `json:"referral_code" binding:"required"` // Code of the referring member
	Pin          string  `json:"pin" binding:"required"`           // Activation pin
	Name         string  `json:"name" binding:"required"`          // Display name
	MobileNumber string  `json:"mobile_number" binding:"required"` // Unique mobile number
	Email        *string `json:"email"`                            // Optional unique email
	Password     string  `json:"password" binding:"required"`      // Plain password, hashed before storage
}

// LoginRequest is the body of a login
type LoginRequest struct {
	MobileNumber string `json:"mobile_number" binding:"required"` // Mobile number must be provided
	Password     string `json:"password" binding:"required"`      // Password must be provided
}

// AuthResponse carries an issued token
type AuthResponse struct {
	Token string `json:"token"` // JWT token
}

// RegisterHandler onboards a member through the referral tree
func RegisterHandler(members *service.MemberService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		reg, err := members.Register(c.Request.Context(), service.RegistrationInput{
			ReferralCode: req.ReferralCode, // Referrer code
			Pin:          req.Pin,          // Activation pin
			Name:         req.Name,         // Display name
			MobileNumber: req.MobileNumber, // Mobile number
			Email:        req.Email,        // Optional email
			Password:     req.Password,     // Password
		})
		if err != nil {
			// Expected registration failures are client errors with a fixed message
			if msg, ok := registrationMessage(err); ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": msg})
				return
			}
			if service.KindOf(err) == service.KindValidation {
				c.JSON(http.StatusBadRequest, gin.H{"error": service.MessageOf(err)})
				return
			}
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"member_id":     reg.Member.ID,           // New member ID
			"name":          reg.Member.Name,         // Display name
			"mobile_number": reg.Member.MobileNumber, // Mobile number
			"referral_code": reg.Member.ReferralCode, // Code the member can share
			"parent_id":     reg.ParentID,            // Placement parent
		})
	}
}

// LoginHandler authenticates a member and returns a JWT token
func LoginHandler(members *service.MemberService, jwtSecret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		member, ok := members.Authenticate(c.Request.Context(), req.MobileNumber, req.Password)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		token, err := utils.GenerateJWT(member.ID, member.Role, jwtSecret, ttl) // Generate JWT token
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Token: token})
	}
}

// MeHandler returns the authenticated member with referral counts
func MeHandler(members *service.MemberService) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID, ok := middleware.MemberID(c) // Get member ID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		member, err := members.Get(c.Request.Context(), memberID)
		if err != nil {
			respondError(c, err)
			return
		}
		counts, err := members.Counts(c.Request.Context(), memberID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"member":             member,          // Profile
			"direct_referrals":   counts.Direct,   // Placement children
			"indirect_referrals": counts.Indirect, // Deeper descendants
		})
	}
}

// ReferralsHandler lists the members placed directly under the caller
func ReferralsHandler(members *service.MemberService) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID, ok := middleware.MemberID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		children, err := members.Referrals(c.Request.Context(), memberID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"referrals": children, "total": len(children)})
	}
}
