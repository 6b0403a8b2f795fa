package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/oceanview/internal/auth"
	"github.com/Domenick1991/oceanview/internal/domain"
	"github.com/Domenick1991/oceanview/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) booking(args mock.Arguments) (*domain.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) bookings(args mock.Arguments) ([]domain.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, input))
}

func (m *MockBookingUseCase) GetBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id))
}

func (m *MockBookingUseCase) GetBookingByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, reference))
}

func (m *MockBookingUseCase) ListBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return m.bookings(m.Called(ctx, userID))
}

func (m *MockBookingUseCase) UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus, reason string) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id, status, reason))
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, id int64, input booking.CancelInput) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id, input))
}

func (m *MockBookingUseCase) ProcessRefund(ctx context.Context, id int64, amount int64) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id, amount))
}

func (m *MockBookingUseCase) CheckInPassengers(ctx context.Context, id int64) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id))
}

func (m *MockBookingUseCase) GetUpcomingBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return m.bookings(m.Called(ctx, userID))
}

func (m *MockBookingUseCase) GetPastBookings(ctx context.Context, userID int64) ([]domain.Booking, error) {
	return m.bookings(m.Called(ctx, userID))
}

func (m *MockBookingUseCase) MarkNotified(ctx context.Context, id int64, at time.Time) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id, at))
}

type MockCruiseLookup struct {
	mock.Mock
}

func (m *MockCruiseLookup) GetCruise(ctx context.Context, id int64) (*domain.Cruise, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cruise), args.Error(1)
}

func (m *MockCruiseLookup) ListCruises(ctx context.Context) ([]domain.Cruise, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Cruise), args.Error(1)
}

type MockUserLookup struct {
	mock.Mock
}

func (m *MockUserLookup) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

const testUserID int64 = 7

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestContext builds a request context as seen behind auth.Required.
func newTestContext(method, path string, body interface{}, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, path, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = params
	c.Set(auth.ContextUserID, testUserID)
	return c, w
}

func idParam(id int64) gin.Params {
	return gin.Params{{Key: "id", Value: fmt.Sprint(id)}}
}

func ownedBooking(id int64) *domain.Booking {
	return &domain.Booking{
		ID:               id,
		UserID:           testUserID,
		CruiseID:         1,
		BookingReference: fmt.Sprintf("BK-0042-%d", id),
		Status:           domain.BookingStatusConfirmed,
		PaymentStatus:    domain.PaymentStatusPending,
		TotalPrice:       2198,
		NumberOfGuests:   2,
		CabinType:        "Balcony",
		DepartureDate:    time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC),
		ReturnDate:       time.Date(2026, 6, 21, 0, 0, 0, 0, time.UTC),
	}
}

func newBookingHandler() (*BookingHandler, *MockBookingUseCase, *MockCruiseLookup, *MockUserLookup) {
	service := &MockBookingUseCase{}
	cruises := &MockCruiseLookup{}
	users := &MockUserLookup{}
	return NewBookingHandler(service, cruises, users), service, cruises, users
}

func TestBookingHandler_create(t *testing.T) {
	handler, mockService, _, _ := newBookingHandler()

	input := booking.CreateBookingInput{
		CruiseID:       1,
		DepartureDate:  time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC),
		NumberOfGuests: 2,
		TotalPrice:     2198,
		CabinType:      "Balcony",
		TermsAccepted:  true,
	}
	c, w := newTestContext("POST", "/api/bookings", input, nil)

	mockService.On("CreateBooking", c.Request.Context(), mock.MatchedBy(func(in booking.CreateBookingInput) bool {
		return in.UserID == testUserID && in.CruiseID == 1 && in.TermsAccepted
	})).Return(ownedBooking(1), nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var response domain.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "BK-0042-1", response.BookingReference)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_ValidationError(t *testing.T) {
	handler, mockService, _, _ := newBookingHandler()
	c, w := newTestContext("POST", "/api/bookings", booking.CreateBookingInput{}, nil)

	mockService.On("CreateBooking", c.Request.Context(), mock.Anything).Return(nil, fmt.Errorf("%w: cruise is required", domain.ErrValidation))

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "cruise is required")
}

func TestBookingHandler_list_Unauthenticated(t *testing.T) {
	handler, mockService, _, _ := newBookingHandler()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/bookings", nil)

	handler.list(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "ListBookings", mock.Anything, mock.Anything)
}

func TestBookingHandler_upcoming(t *testing.T) {
	handler, mockService, _, _ := newBookingHandler()
	c, w := newTestContext("GET", "/api/bookings/upcoming", nil, nil)

	mockService.On("GetUpcomingBookings", c.Request.Context(), testUserID).Return([]domain.Booking{*ownedBooking(1)}, nil)

	handler.upcoming(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response []domain.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response, 1)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_get(t *testing.T) {
	tests := []struct {
		name    string
		booking *domain.Booking
		err     error
		status  int
	}{
		{"owner", ownedBooking(3), nil, http.StatusOK},
		{"other user", &domain.Booking{ID: 3, UserID: 99}, nil, http.StatusForbidden},
		{"missing", nil, fmt.Errorf("booking 3: %w", domain.ErrNotFound), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mockService, _, _ := newBookingHandler()
			c, w := newTestContext("GET", "/api/bookings/3", nil, idParam(3))
			mockService.On("GetBooking", c.Request.Context(), int64(3)).Return(tt.booking, tt.err)

			handler.get(c)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestBookingHandler_get_InvalidID(t *testing.T) {
	handler, mockService, _, _ := newBookingHandler()
	c, w := newTestContext("GET", "/api/bookings/abc", nil, gin.Params{{Key: "id", Value: "abc"}})

	handler.get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "GetBooking", mock.Anything, mock.Anything)
}

func TestBookingHandler_getByReference_Forbidden(t *testing.T) {
	handler, mockService, _, _ := newBookingHandler()
	c, w := newTestContext("GET", "/api/bookings/reference/BK-1", nil, gin.Params{{Key: "ref", Value: "BK-1"}})
	mockService.On("GetBookingByReference", c.Request.Context(), "BK-1").Return(&domain.Booking{ID: 1, UserID: 99}, nil)

	handler.getByReference(c)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestBookingHandler_updateStatus(t *testing.T) {
	handler, mockService, _, _ := newBookingHandler()
	c, w := newTestContext("PATCH", "/api/bookings/3/status", gin.H{"status": "in_progress", "reason": "boarding"}, idParam(3))

	updated := ownedBooking(3)
	updated.Status = domain.BookingStatusInProgress
	mockService.On("GetBooking", c.Request.Context(), int64(3)).Return(ownedBooking(3), nil)
	mockService.On("UpdateBookingStatus", c.Request.Context(), int64(3), domain.BookingStatusInProgress, "boarding").Return(updated, nil)

	handler.updateStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"in_progress"`)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_updateStatus_Errors(t *testing.T) {
	handler, mockService, _, _ := newBookingHandler()

	c, w := newTestContext("PATCH", "/api/bookings/3/status", gin.H{"status": "sailing"}, idParam(3))
	handler.updateStatus(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "UpdateBookingStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	c, w = newTestContext("PATCH", "/api/bookings/3/status", gin.H{"status": "pending"}, idParam(3))
	mockService.On("GetBooking", c.Request.Context(), int64(3)).Return(ownedBooking(3), nil)
	mockService.On("UpdateBookingStatus", c.Request.Context(), int64(3), domain.BookingStatusPending, "").
		Return(nil, fmt.Errorf("update booking status 3: %w: confirmed -> pending", domain.ErrInvalidTransition))
	handler.updateStatus(c)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "confirmed -> pending")
}

func TestBookingHandler_cancel_NoBody(t *testing.T) {
	handler, mockService, _, _ := newBookingHandler()
	c, w := newTestContext("POST", "/api/bookings/3/cancel", nil, idParam(3))

	cancelled := ownedBooking(3)
	cancelled.Status = domain.BookingStatusCancelled
	mockService.On("GetBooking", c.Request.Context(), int64(3)).Return(ownedBooking(3), nil)
	mockService.On("CancelBooking", c.Request.Context(), int64(3), booking.CancelInput{}).Return(cancelled, nil)

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_refund_InvalidAmount(t *testing.T) {
	handler, mockService, _, _ := newBookingHandler()
	c, w := newTestContext("POST", "/api/bookings/3/refund", gin.H{"amount": 5000}, idParam(3))

	mockService.On("GetBooking", c.Request.Context(), int64(3)).Return(ownedBooking(3), nil)
	mockService.On("ProcessRefund", c.Request.Context(), int64(3), int64(5000)).
		Return(nil, fmt.Errorf("process refund 3: %w: 5000 not within (0, 2198]", domain.ErrInvalidRefundAmount))

	handler.refund(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_boardingPass(t *testing.T) {
	handler, mockService, cruises, users := newBookingHandler()
	c, w := newTestContext("GET", "/api/bookings/3/boarding-pass", nil, idParam(3))

	checkedIn := ownedBooking(3)
	checkedIn.CheckedIn = true
	mockService.On("GetBooking", c.Request.Context(), int64(3)).Return(checkedIn, nil)
	cruises.On("GetCruise", c.Request.Context(), int64(1)).Return(&domain.Cruise{ID: 1, Title: "Caribbean Paradise"}, nil)
	users.On("GetUser", c.Request.Context(), testUserID).Return(&domain.User{ID: testUserID, FirstName: "Ann", LastName: "Lee"}, nil)

	handler.boardingPass(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "boarding-pass-BK-0042-3.pdf")
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))
}

func TestBookingHandler_boardingPass_NotCheckedIn(t *testing.T) {
	handler, mockService, cruises, users := newBookingHandler()
	c, w := newTestContext("GET", "/api/bookings/3/boarding-pass", nil, idParam(3))

	mockService.On("GetBooking", c.Request.Context(), int64(3)).Return(ownedBooking(3), nil)
	cruises.On("GetCruise", c.Request.Context(), int64(1)).Return(nil, domain.ErrNotFound)
	users.On("GetUser", c.Request.Context(), testUserID).Return(nil, domain.ErrNotFound)

	handler.boardingPass(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBookingHandler_export(t *testing.T) {
	handler, mockService, cruises, _ := newBookingHandler()
	c, w := newTestContext("GET", "/api/bookings/export", nil, nil)

	mockService.On("ListBookings", c.Request.Context(), testUserID).Return([]domain.Booking{*ownedBooking(1)}, nil)
	cruises.On("ListCruises", c.Request.Context()).Return([]domain.Cruise{{ID: 1, Title: "Caribbean Paradise"}}, nil)

	handler.export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
	mockService.AssertExpectations(t)
	cruises.AssertExpectations(t)
}
