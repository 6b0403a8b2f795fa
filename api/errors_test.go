package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/oceanview/internal/domain"
	"github.com/Domenick1991/oceanview/internal/gateway"
	"github.com/Domenick1991/oceanview/internal/service/payment"
	"github.com/Domenick1991/oceanview/internal/service/users"
	"github.com/Domenick1991/oceanview/internal/ticket"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("create booking: %w: guests", domain.ErrValidation), http.StatusBadRequest},
		{domain.ErrInvalidStatus, http.StatusBadRequest},
		{users.ErrResetTokenExpired, http.StatusBadRequest},
		{gateway.ErrWebhookSignature, http.StatusBadRequest},
		{users.ErrInvalidCredentials, http.StatusUnauthorized},
		{payment.ErrGatewayDeclined, http.StatusPaymentRequired},
		{errForbidden, http.StatusForbidden},
		{fmt.Errorf("booking 9: %w", domain.ErrNotFound), http.StatusNotFound},
		{domain.ErrConflict, http.StatusConflict},
		{domain.ErrInvalidTransition, http.StatusConflict},
		{payment.ErrCheckoutInProgress, http.StatusConflict},
		{ticket.ErrNotCheckedIn, http.StatusConflict},
		{domain.ErrInvalidRefundAmount, http.StatusUnprocessableEntity},
		{payment.ErrGatewayDisabled, http.StatusServiceUnavailable},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestWriteError_HidesInternalErrors(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	writeError(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
	assert.Len(t, c.Errors, 1)
}

func TestWriteError_ExposesDomainErrors(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	writeError(c, fmt.Errorf("booking 9: %w", domain.ErrNotFound))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"booking 9: not found"}`, w.Body.String())
	assert.Empty(t, c.Errors)
}
