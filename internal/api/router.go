package api

import (
	"referral_network/internal/middleware" // Auth, admin, CORS and metrics middleware
	"referral_network/internal/service"    // Domain services
	"time"                                 // Token and cache lifetimes

	"github.com/gin-gonic/gin"                                // Gin web framework
	"github.com/prometheus/client_golang/prometheus/promhttp" // Prometheus scrape handler
	"github.com/redis/go-redis/v9"                            // Redis client
	"gorm.io/gorm"                                            // GORM ORM library
)

// Deps is everything the HTTP layer needs
type Deps struct {
	DB          *gorm.DB                   // Database used by the admin guard
	Redis       *redis.Client              // Optional response cache
	Members     *service.MemberService     // Registration and profiles
	Pins        *service.PinService        // Pin lifecycle
	Ledger      *service.Ledger            // Wallet balances
	Withdrawals *service.WithdrawalService // Withdrawal requests
	JWTSecret   string                     // Token signing secret
	JWTTTL      time.Duration              // Token lifetime
	CacheTTL    time.Duration              // Admin listing cache lifetime
	CORSOrigins []string                   // Allowed CORS origins
}

// NewServices builds the domain services over one database and cache
func NewServices(db *gorm.DB, rdb *redis.Client, cacheTTL time.Duration) (*service.MemberService, *service.PinService, *service.Ledger, *service.WithdrawalService) {
	ledger := service.NewLedger(db, rdb, cacheTTL)
	pins := service.NewPinService(db)
	return service.NewMemberService(db, pins, ledger), pins, ledger, service.NewWithdrawalService(db, ledger)
}

// RegisterRoutes mounts every endpoint on r
func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(middleware.MetricsMiddleware(), middleware.SetupCORS(d.CORSOrigins))
	r.GET("/metrics", gin.WrapH(promhttp.Handler())) // Prometheus scrape endpoint

	// Auth routes
	auth := r.Group("/auth")
	auth.POST("/register", RegisterHandler(d.Members))                  // Registration endpoint
	auth.POST("/login", LoginHandler(d.Members, d.JWTSecret, d.JWTTTL)) // Login endpoint

	// Member routes (protected by JWT)
	member := r.Group("")
	member.Use(middleware.JWTAuthMiddleware(d.JWTSecret))
	member.GET("/me", MeHandler(d.Members))                                      // Own profile
	member.GET("/me/referrals", ReferralsHandler(d.Members))                     // Placement children
	member.GET("/wallet", GetWalletHandler(d.Ledger))                            // Wallet balance
	member.GET("/wallet/entries", GetWalletEntriesHandler(d.Ledger))             // Wallet movements
	member.POST("/withdrawals", CreateWithdrawalHandler(d.Withdrawals, d.Redis)) // Withdrawal request
	member.GET("/pins", ListPinsHandler(d.Pins))                                 // Own pins
	member.POST("/pins/:code/transfer", TransferPinHandler(d.Pins))              // Pin hand-over

	// Admin routes (protected, admin only)
	admin := r.Group("/admin")
	admin.Use(middleware.JWTAuthMiddleware(d.JWTSecret), middleware.AdminOnlyMiddleware(d.DB))
	admin.POST("/pins", IssuePinHandler(d.Pins))                                          // Pin issue
	admin.PATCH("/withdrawals/:id", DecideWithdrawalHandler(d.Withdrawals, d.Redis))      // Approve or deny
	admin.GET("/withdrawals", ListWithdrawalsHandler(d.Withdrawals, d.Redis, d.CacheTTL)) // Withdrawal listing
}
