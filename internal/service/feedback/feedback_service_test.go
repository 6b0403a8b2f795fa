package feedback

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/oceanview/internal/domain"
	"github.com/Domenick1991/oceanview/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestService(opts ...FeedbackServiceOption) *FeedbackService {
	opts = append([]FeedbackServiceOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewFeedbackService(repository.NewMemoryStore(), opts...)
}

func validEnquiry() EnquiryInput {
	return EnquiryInput{
		Name:    "Ann Lee",
		Email:   "ann@example.com",
		Subject: "Cabin upgrade",
		Message: "Can we upgrade to a suite?",
	}
}

func TestFeedbackService_CreateTestimonial(t *testing.T) {
	service := newTestService()
	ctx := context.Background()
	cruiseID := int64(3)

	created, err := service.CreateTestimonial(ctx, TestimonialInput{
		Name:     "Robert J.",
		Comment:  "Great trip",
		Rating:   5,
		CruiseID: &cruiseID,
	})
	require.NoError(t, err)
	assert.False(t, created.IsVerified)
	assert.Equal(t, fixedNow, created.CreatedAt)
	assert.NotZero(t, created.ID)

	byCruise, err := service.ListTestimonialsByCruise(ctx, cruiseID)
	require.NoError(t, err)
	assert.Len(t, byCruise, 1)

	other, err := service.ListTestimonialsByCruise(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestFeedbackService_CreateTestimonial_Validation(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	tests := []struct {
		name  string
		input TestimonialInput
	}{
		{"missing name", TestimonialInput{Comment: "ok", Rating: 4}},
		{"missing comment", TestimonialInput{Name: "A", Rating: 4}},
		{"rating too low", TestimonialInput{Name: "A", Comment: "ok", Rating: 0}},
		{"rating too high", TestimonialInput{Name: "A", Comment: "ok", Rating: 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateTestimonial(ctx, tt.input)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestFeedbackService_VerifyTestimonial(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	created, err := service.CreateTestimonial(ctx, TestimonialInput{Name: "A", Comment: "ok", Rating: 4})
	require.NoError(t, err)

	verified, err := service.VerifyTestimonial(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)

	again, err := service.VerifyTestimonial(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, again.IsVerified)

	_, err = service.VerifyTestimonial(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFeedbackService_CreateEnquiry(t *testing.T) {
	service := newTestService()
	ctx := context.Background()
	userID := int64(12)

	input := validEnquiry()
	input.UserID = &userID
	enquiry, err := service.CreateEnquiry(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, domain.EnquiryStatusSubmitted, enquiry.Status)
	assert.Equal(t, fixedNow, enquiry.CreatedAt)
	assert.Equal(t, fixedNow, enquiry.UpdatedAt)

	mine, err := service.ListEnquiriesByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, enquiry.ID, mine[0].ID)

	bad := validEnquiry()
	bad.Email = "not-an-email"
	_, err = service.CreateEnquiry(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrValidation)

	bad = validEnquiry()
	bad.Message = ""
	_, err = service.CreateEnquiry(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFeedbackService_SubmitContact(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	input := validEnquiry()
	input.Subject = ""
	id, err := service.SubmitContact(ctx, input)
	require.NoError(t, err)

	enquiry, err := service.GetEnquiry(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "General enquiry", enquiry.Subject)
	assert.Equal(t, domain.EnquiryStatusSubmitted, enquiry.Status)
}

func TestFeedbackService_UpdateEnquiryStatus(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	enquiry, err := service.CreateEnquiry(ctx, validEnquiry())
	require.NoError(t, err)

	closed, err := service.UpdateEnquiryStatus(ctx, enquiry.ID, domain.EnquiryStatusClosed)
	require.NoError(t, err)
	assert.Equal(t, domain.EnquiryStatusClosed, closed.Status)

	_, err = service.UpdateEnquiryStatus(ctx, enquiry.ID, domain.EnquiryStatusInReview)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = service.UpdateEnquiryStatus(ctx, enquiry.ID, domain.EnquiryStatus("archived"))
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = service.UpdateEnquiryStatus(ctx, 404, domain.EnquiryStatusClosed)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFeedbackService_UpdateEnquiryStatus_Lenient(t *testing.T) {
	service := newTestService(WithStrictTransitions(false))
	ctx := context.Background()

	enquiry, err := service.CreateEnquiry(ctx, validEnquiry())
	require.NoError(t, err)
	_, err = service.UpdateEnquiryStatus(ctx, enquiry.ID, domain.EnquiryStatusClosed)
	require.NoError(t, err)

	reopened, err := service.UpdateEnquiryStatus(ctx, enquiry.ID, domain.EnquiryStatusInReview)
	require.NoError(t, err)
	assert.Equal(t, domain.EnquiryStatusInReview, reopened.Status)
}

func TestFeedbackService_AssignEnquiry(t *testing.T) {
	service := newTestService()
	ctx := context.Background()

	enquiry, err := service.CreateEnquiry(ctx, validEnquiry())
	require.NoError(t, err)

	assigned, err := service.AssignEnquiry(ctx, enquiry.ID, 7)
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedToUserID)
	assert.Equal(t, int64(7), *assigned.AssignedToUserID)
	assert.Equal(t, domain.EnquiryStatusInReview, assigned.Status)

	_, err = service.UpdateEnquiryStatus(ctx, enquiry.ID, domain.EnquiryStatusResponded)
	require.NoError(t, err)
	reassigned, err := service.AssignEnquiry(ctx, enquiry.ID, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(8), *reassigned.AssignedToUserID)
	assert.Equal(t, domain.EnquiryStatusResponded, reassigned.Status)
}

func TestFeedbackService_CreateEnquiryResponse(t *testing.T) {
	service := newTestService()
	ctx := context.Background()
	staffID := int64(2)

	enquiry, err := service.CreateEnquiry(ctx, validEnquiry())
	require.NoError(t, err)

	response, err := service.CreateEnquiryResponse(ctx, enquiry.ID, ResponseInput{ResponseText: "Yes, suites are available.", RespondedByUserID: &staffID})
	require.NoError(t, err)
	assert.Equal(t, enquiry.ID, response.EnquiryID)
	assert.Equal(t, fixedNow, response.RespondedAt)

	updated, err := service.GetEnquiry(ctx, enquiry.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EnquiryStatusResponded, updated.Status)

	_, err = service.CreateEnquiryResponse(ctx, enquiry.ID, ResponseInput{ResponseText: "Follow-up"})
	require.NoError(t, err)

	responses, err := service.ListEnquiryResponses(ctx, enquiry.ID)
	require.NoError(t, err)
	assert.Len(t, responses, 2)

	_, err = service.CreateEnquiryResponse(ctx, enquiry.ID, ResponseInput{ResponseText: " "})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = service.ListEnquiryResponses(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFeedbackService_CreateEnquiryResponse_Closed(t *testing.T) {
	service := newTestService(WithStrictTransitions(false))
	ctx := context.Background()

	enquiry, err := service.CreateEnquiry(ctx, validEnquiry())
	require.NoError(t, err)
	_, err = service.UpdateEnquiryStatus(ctx, enquiry.ID, domain.EnquiryStatusClosed)
	require.NoError(t, err)

	_, err = service.CreateEnquiryResponse(ctx, enquiry.ID, ResponseInput{ResponseText: "Too late"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	responses, err := service.ListEnquiryResponses(ctx, enquiry.ID)
	require.NoError(t, err)
	assert.Empty(t, responses)
}
