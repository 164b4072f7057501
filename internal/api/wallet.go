package api

import (
	"net/http"                             // HTTP status codes
	"referral_network/internal/middleware" // Authenticated member lookup
	"referral_network/internal/service"    // Ledger and withdrawals
	"referral_network/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Exact money amounts
	"github.com/sirupsen/logrus"    // Logging library
)

// adminWithdrawalsPrefix prefixes every cached admin withdrawal listing
const adminWithdrawalsPrefix = "admin:withdrawals:"

// WithdrawalRequest is the body of a withdrawal request
type WithdrawalRequest struct {
	Amount decimal.Decimal `json:"amount"` // Requested gross amount
}

// GetWalletHandler returns both income buckets of the authenticated member
func GetWalletHandler(ledger *service.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID, ok := middleware.MemberID(c) // Get member ID from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		balance, err := ledger.GetBalance(c.Request.Context(), memberID) // Served from Redis when cached
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"wallet": balance})
	}
}

// GetWalletEntriesHandler returns the wallet movements of the authenticated member
func GetWalletEntriesHandler(ledger *service.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID, ok := middleware.MemberID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		page, pageSize := pageParams(c) // Pagination from query
		entries, total, err := ledger.Entries(c.Request.Context(), memberID, page, pageSize)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"entries":     entries,                                // Wallet movements
			"page":        page,                                   // Current page
			"page_size":   pageSize,                               // Page size
			"total":       total,                                  // Total number of entries
			"total_pages": (int(total) + pageSize - 1) / pageSize, // Total pages
		})
	}
}

// CreateWithdrawalHandler records a pending withdrawal for the authenticated member
func CreateWithdrawalHandler(withdrawals *service.WithdrawalService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberID, ok := middleware.MemberID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req WithdrawalRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		w, err := withdrawals.Create(c.Request.Context(), memberID, req.Amount)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateWithdrawalListings(c, rdb) // New pending row changes admin listings
		c.JSON(http.StatusCreated, gin.H{"withdrawal": w})
	}
}

// invalidateWithdrawalListings drops every cached admin withdrawal page
func invalidateWithdrawalListings(c *gin.Context, rdb *redis.Client) {
	if err := utils.DeleteCachePrefix(c.Request.Context(), rdb, adminWithdrawalsPrefix); err != nil {
		logrus.WithFields(logrus.Fields{"error": err.Error()}).Warn("withdrawal listing cache invalidation failed")
	}
}
