package middleware

import (
	"github.com/gin-contrib/cors" // CORS middleware for Gin
	"github.com/gin-gonic/gin"    // Gin web framework
)

// SetupCORS allows the configured origins, or every origin when none (or "*") is configured
func SetupCORS(origins []string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true // Credentials only for explicit origins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.ExposeHeaders = []string{"Content-Length"}
	corsConfig.MaxAge = 12 * 60 * 60
	return cors.New(corsConfig)
}
