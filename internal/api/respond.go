package api

import (
	"errors"                            // Error matching
	"net/http"                          // HTTP status codes
	"referral_network/internal/service" // Service error taxonomy
	"strconv"                           // String conversion

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// statusFor maps a service error kind to an HTTP status
func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindConflict:
		return http.StatusConflict
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindAuthorization:
		return http.StatusForbidden
	case service.KindInsufficientFunds:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// respondError writes a service error; infrastructure details are logged, never returned
func respondError(c *gin.Context, err error) {
	kind := service.KindOf(err)
	if kind == service.KindInfrastructure {
		logrus.WithFields(logrus.Fields{
			"method": c.Request.Method, // Request method
			"path":   c.FullPath(),     // Route template
			"error":  err.Error(),      // Underlying failure
		}).Error("Request failed")
	}
	c.JSON(statusFor(kind), gin.H{"error": service.MessageOf(err), "code": service.CodeOf(err)})
}

// Public registration failure messages
const (
	msgInvalidReferralCode = "InvalidReferralCode"
	msgInvalidOrUsedPin    = "InvalidOrUsedPin"
	msgDuplicateMember     = "DuplicateMemberIdentity"
)

// registrationMessage collapses registration failures into the three public messages
func registrationMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, service.ErrReferrerNotFound):
		return msgInvalidReferralCode, true
	case errors.Is(err, service.ErrPinNotFound),
		errors.Is(err, service.ErrPinAlreadyUsed),
		errors.Is(err, service.ErrInvalidPin),
		errors.Is(err, service.ErrPinExpired),
		errors.Is(err, service.ErrInvalidTier):
		return msgInvalidOrUsedPin, true
	case errors.Is(err, service.ErrDuplicateMember):
		return msgDuplicateMember, true
	}
	return "", false
}

// pageParams reads page and page_size, defaulting to 1 and 20 with a cap of 100
func pageParams(c *gin.Context) (int, int) {
	page := 1      // Default page number
	pageSize := 20 // Default page size
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size if valid
		}
	}
	return page, pageSize
}

// idParam parses a positive numeric path parameter
func idParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}
