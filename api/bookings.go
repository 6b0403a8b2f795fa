package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Domenick1991/oceanview/internal/domain"
	"github.com/Domenick1991/oceanview/internal/export"
	"github.com/Domenick1991/oceanview/internal/service/booking"
	"github.com/Domenick1991/oceanview/internal/ticket"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type CruiseLookup interface {
	GetCruise(ctx context.Context, id int64) (*domain.Cruise, error)
	ListCruises(ctx context.Context) ([]domain.Cruise, error)
}

type UserLookup interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

type BookingHandler struct {
	service booking.BookingUseCase
	cruises CruiseLookup
	users   UserLookup
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

type refundRequest struct {
	Amount int64 `json:"amount"`
}

func NewBookingHandler(service booking.BookingUseCase, cruises CruiseLookup, users UserLookup) *BookingHandler {
	return &BookingHandler{service: service, cruises: cruises, users: users}
}

func (h *BookingHandler) Register(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	bookings := router.Group("/bookings", requireAuth)
	bookings.GET("", h.list)
	bookings.POST("", h.create)
	bookings.GET("/upcoming", h.upcoming)
	bookings.GET("/past", h.past)
	bookings.GET("/export", h.export)
	bookings.GET("/reference/:ref", h.getByReference)
	bookings.GET("/:id", h.get)
	bookings.PATCH("/:id/status", h.updateStatus)
	bookings.POST("/:id/cancel", h.cancel)
	bookings.POST("/:id/refund", h.refund)
	bookings.POST("/:id/check-in", h.checkIn)
	bookings.GET("/:id/boarding-pass", h.boardingPass)
}

// owned loads the booking named by the :id param and checks that the caller
// owns it. It writes the error response itself.
func (h *BookingHandler) owned(c *gin.Context) (*domain.Booking, bool) {
	userID, ok := currentUser(c)
	if !ok {
		return nil, false
	}
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false
	}
	b, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	if b.UserID != userID {
		writeError(c, errForbidden)
		return nil, false
	}
	return b, true
}

func (h *BookingHandler) list(c *gin.Context) {
	h.listWith(c, h.service.ListBookings)
}

func (h *BookingHandler) upcoming(c *gin.Context) {
	h.listWith(c, h.service.GetUpcomingBookings)
}

func (h *BookingHandler) past(c *gin.Context) {
	h.listWith(c, h.service.GetPastBookings)
}

func (h *BookingHandler) listWith(c *gin.Context, fetch func(context.Context, int64) ([]domain.Booking, error)) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	bookings, err := fetch(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var input booking.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}
	input.UserID = userID

	created, err := h.service.CreateBooking(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *BookingHandler) get(c *gin.Context) {
	b, ok := h.owned(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) getByReference(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	b, err := h.service.GetBookingByReference(c.Request.Context(), c.Param("ref"))
	if err != nil {
		writeError(c, err)
		return
	}
	if b.UserID != userID {
		writeError(c, errForbidden)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) updateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	status, err := domain.ParseBookingStatus(req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	b, ok := h.owned(c)
	if !ok {
		return
	}

	updated, err := h.service.UpdateBookingStatus(c.Request.Context(), b.ID, status, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	var input booking.CancelInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	b, ok := h.owned(c)
	if !ok {
		return
	}

	updated, err := h.service.CancelBooking(c.Request.Context(), b.ID, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *BookingHandler) refund(c *gin.Context) {
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	b, ok := h.owned(c)
	if !ok {
		return
	}

	updated, err := h.service.ProcessRefund(c.Request.Context(), b.ID, req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *BookingHandler) checkIn(c *gin.Context) {
	b, ok := h.owned(c)
	if !ok {
		return
	}
	updated, err := h.service.CheckInPassengers(c.Request.Context(), b.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *BookingHandler) boardingPass(c *gin.Context) {
	b, ok := h.owned(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	cruise, err := h.cruises.GetCruise(ctx, b.CruiseID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		writeError(c, err)
		return
	}
	passenger := ""
	if user, err := h.users.GetUser(ctx, b.UserID); err == nil {
		passenger = strings.TrimSpace(user.FirstName + " " + user.LastName)
		if passenger == "" {
			passenger = user.Username
		}
	}

	pdf, err := ticket.BoardingPass(b, cruise, passenger)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=boarding-pass-%s.pdf", b.BookingReference))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *BookingHandler) export(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	bookings, err := h.service.ListBookings(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	cruises, err := h.cruises.ListCruises(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	titles := make(map[int64]string, len(cruises))
	for _, cruise := range cruises {
		titles[cruise.ID] = cruise.Title
	}

	data, err := export.BookingsXLSX(bookings, titles)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=bookings.xlsx")
	c.Data(http.StatusOK, xlsxContentType, data)
}
