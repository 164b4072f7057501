package api

import (
	"net/http"                             // HTTP status codes
	"referral_network/internal/domain"     // Withdrawal statuses
	"referral_network/internal/middleware" // Authenticated member lookup
	"referral_network/internal/service"    // Withdrawal decisions
	"referral_network/internal/utils"      // Utility functions
	"strings"                              // String manipulation
	"time"                                 // Date filters and TTLs

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// DecideWithdrawalRequest is the body of an admin decision
type DecideWithdrawalRequest struct {
	Status string `json:"status" binding:"required"` // approved or denied
}

// DecideWithdrawalHandler approves or denies a pending withdrawal
func DecideWithdrawalHandler(withdrawals *service.WithdrawalService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, ok := middleware.MemberID(c) // Get admin ID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		requestID, ok := idParam(c, "id") // Withdrawal ID from path
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid withdrawal id"})
			return
		}
		var req DecideWithdrawalRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		w, err := withdrawals.Decide(c.Request.Context(), requestID, adminID, strings.ToLower(req.Status))
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateWithdrawalListings(c, rdb) // Status change moves the row between listings
		c.JSON(http.StatusOK, gin.H{"withdrawal": w})
	}
}

// parseDate accepts RFC 3339 timestamps or plain dates; a plain end date covers the whole day
func parseDate(raw string, endOfDay bool) (*time.Time, bool) {
	if raw == "" {
		return nil, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, false
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, true
}

// ListWithdrawalsHandler returns withdrawal requests, filtered by status and date range
func ListWithdrawalsHandler(withdrawals *service.WithdrawalService, rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		adminID, ok := middleware.MemberID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		status := c.Query("status") // Optional status filter
		switch status {
		case "", domain.WithdrawalPending, domain.WithdrawalApproved, domain.WithdrawalDenied:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		from, okFrom := parseDate(c.Query("from"), false) // Start of the date range
		to, okTo := parseDate(c.Query("to"), true)        // End of the date range
		if !okFrom || !okTo {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date filter"})
			return
		}
		page, pageSize := pageParams(c) // Pagination from query

		// Build cache key from all query params
		var keyParts []string
		for _, k := range []string{"status", "from", "to", "page", "page_size"} {
			keyParts = append(keyParts, k+"="+c.DefaultQuery(k, "")) // Append key-value pair
		}
		cacheKey := adminWithdrawalsPrefix + strings.Join(keyParts, ":")
		var cached service.WithdrawalPage
		found, err := utils.GetCache(c.Request.Context(), rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{"result": cached, "cached": true})
			return
		}

		result, err := withdrawals.List(c.Request.Context(), adminID, service.WithdrawalFilter{
			Status:   status,   // Status filter
			From:     from,     // Start date
			To:       to,       // End date
			Page:     page,     // Current page
			PageSize: pageSize, // Page size
		})
		if err != nil {
			respondError(c, err)
			return
		}
		_ = utils.SetCache(c.Request.Context(), rdb, cacheKey, result, ttl) // Cache for later requests
		c.JSON(http.StatusOK, gin.H{"result": result, "cached": false})
	}
}
