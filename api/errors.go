package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zvrva/retreatbooking/internal/domain"
)

func respondError(c *gin.Context, err error) {
	var derr *domain.Error
	if errors.As(err, &derr) {
		c.JSON(statusFor(derr.Kind), gin.H{"error": string(derr.Kind), "message": derr.Reason})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "something went wrong, please try again"})
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidDate, domain.KindPastDate, domain.KindInvalidRange, domain.KindInvalidArgument:
		return http.StatusBadRequest
	case domain.KindConflict, domain.KindInvalidTransition:
		return http.StatusConflict
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindOwnership:
		return http.StatusForbidden
	default:
		// Availability-check and other infrastructure faults must never
		// read as a recoverable caller mistake.
		return http.StatusInternalServerError
	}
}
