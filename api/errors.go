package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Domenick1991/oceanview/internal/auth"
	"github.com/Domenick1991/oceanview/internal/domain"
	"github.com/Domenick1991/oceanview/internal/gateway"
	"github.com/Domenick1991/oceanview/internal/service/payment"
	"github.com/Domenick1991/oceanview/internal/service/users"
	"github.com/Domenick1991/oceanview/internal/ticket"
	"github.com/gin-gonic/gin"
)

var errForbidden = errors.New("you do not have access to this resource")

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, users.ErrResetTokenExpired),
		errors.Is(err, gateway.ErrWebhookSignature):
		return http.StatusBadRequest
	case errors.Is(err, users.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, payment.ErrGatewayDeclined):
		return http.StatusPaymentRequired
	case errors.Is(err, errForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, payment.ErrCheckoutInProgress),
		errors.Is(err, ticket.ErrNotCheckedIn):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidRefundAmount):
		return http.StatusUnprocessableEntity
	case errors.Is(err, payment.ErrGatewayDisabled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError maps service errors onto HTTP statuses. Unexpected errors are
// attached to the gin context for the request logger and hidden from clients.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

func currentUser(c *gin.Context) (int64, bool) {
	id, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return 0, false
	}
	return id, true
}

// optionalUser returns the caller's id when the request was authenticated.
func optionalUser(c *gin.Context) *int64 {
	if id, ok := auth.UserID(c); ok {
		return &id
	}
	return nil
}
