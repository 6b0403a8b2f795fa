package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/Domenick1991/oceanview/internal/domain"
	"github.com/Domenick1991/oceanview/internal/service/payment"
	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 64 << 10

type BookingLookup interface {
	GetBooking(ctx context.Context, id int64) (*domain.Booking, error)
}

type PaymentHandler struct {
	service  payment.PaymentUseCase
	bookings BookingLookup
}

type paymentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func NewPaymentHandler(service payment.PaymentUseCase, bookings BookingLookup) *PaymentHandler {
	return &PaymentHandler{service: service, bookings: bookings}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	router.POST("/payments/webhook", h.webhook)

	payments := router.Group("/payments", requireAuth)
	payments.POST("", h.create)
	payments.GET("", h.listByStatus)
	payments.GET("/:id", h.get)
	payments.PATCH("/:id/status", h.updateStatus)
	payments.POST("/:id/refund", h.refund)

	bookings := router.Group("/bookings", requireAuth)
	bookings.GET("/:id/payments", h.listForBooking)
	bookings.POST("/:id/payments/stripe", h.stripeCheckout)
}

// authorize checks that the caller owns bookingID. Payments without a booking
// are open to any authenticated user.
func (h *PaymentHandler) authorize(c *gin.Context, bookingID int64) bool {
	userID, ok := currentUser(c)
	if !ok {
		return false
	}
	if bookingID == 0 {
		return true
	}
	b, err := h.bookings.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		writeError(c, err)
		return false
	}
	if b.UserID != userID {
		writeError(c, errForbidden)
		return false
	}
	return true
}

func (h *PaymentHandler) ownedPayment(c *gin.Context) (*domain.Payment, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	p, err := h.service.GetPayment(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	if !h.authorize(c, p.BookingID) {
		return nil, false
	}
	return p, true
}

func (h *PaymentHandler) create(c *gin.Context) {
	var input payment.CreatePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !h.authorize(c, input.BookingID) {
		return
	}

	created, err := h.service.CreatePayment(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *PaymentHandler) listByStatus(c *gin.Context) {
	status, err := domain.ParsePaymentStatus(c.Query("status"))
	if err != nil {
		writeError(c, err)
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	payments, err := h.service.GetPaymentsByStatus(c.Request.Context(), status)
	if err != nil {
		writeError(c, err)
		return
	}

	// only payments on the caller's own bookings
	owned := make(map[int64]bool)
	result := make([]domain.Payment, 0, len(payments))
	for _, p := range payments {
		if p.BookingID == 0 {
			continue
		}
		mine, seen := owned[p.BookingID]
		if !seen {
			b, err := h.bookings.GetBooking(c.Request.Context(), p.BookingID)
			switch {
			case errors.Is(err, domain.ErrNotFound):
			case err != nil:
				writeError(c, err)
				return
			default:
				mine = b.UserID == userID
			}
			owned[p.BookingID] = mine
		}
		if mine {
			result = append(result, p)
		}
	}
	c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) get(c *gin.Context) {
	p, ok := h.ownedPayment(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *PaymentHandler) updateStatus(c *gin.Context) {
	var req paymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	status, err := domain.ParsePaymentStatus(req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	p, ok := h.ownedPayment(c)
	if !ok {
		return
	}

	updated, err := h.service.UpdatePaymentStatus(c.Request.Context(), p.ID, status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *PaymentHandler) refund(c *gin.Context) {
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	p, ok := h.ownedPayment(c)
	if !ok {
		return
	}

	updated, err := h.service.RefundPayment(c.Request.Context(), p.ID, req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *PaymentHandler) listForBooking(c *gin.Context) {
	bookingID, ok := paramID(c, "id")
	if !ok || !h.authorize(c, bookingID) {
		return
	}
	payments, err := h.service.ListPayments(c.Request.Context(), bookingID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (h *PaymentHandler) stripeCheckout(c *gin.Context) {
	var input payment.StripePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	bookingID, ok := paramID(c, "id")
	if !ok || !h.authorize(c, bookingID) {
		return
	}

	result, err := h.service.ProcessStripePayment(c.Request.Context(), bookingID, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		badRequest(c, "failed to read body")
		return
	}

	p, err := h.service.HandleGatewayEvent(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := gin.H{"received": true}
	if p != nil {
		resp["payment_id"] = p.ID
		resp["status"] = p.Status
	}
	c.JSON(http.StatusOK, resp)
}
