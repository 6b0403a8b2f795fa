package feedback

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/Domenick1991/oceanview/internal/domain"
	"github.com/Domenick1991/oceanview/internal/logger"
	"github.com/Domenick1991/oceanview/internal/repository"
)

type FeedbackUseCase interface {
	ListTestimonials(ctx context.Context) ([]domain.Testimonial, error)
	ListTestimonialsByCruise(ctx context.Context, cruiseID int64) ([]domain.Testimonial, error)
	GetTestimonial(ctx context.Context, id int64) (*domain.Testimonial, error)
	CreateTestimonial(ctx context.Context, input TestimonialInput) (*domain.Testimonial, error)
	VerifyTestimonial(ctx context.Context, id int64) (*domain.Testimonial, error)

	ListEnquiries(ctx context.Context) ([]domain.Enquiry, error)
	ListEnquiriesByUser(ctx context.Context, userID int64) ([]domain.Enquiry, error)
	GetEnquiry(ctx context.Context, id int64) (*domain.Enquiry, error)
	CreateEnquiry(ctx context.Context, input EnquiryInput) (*domain.Enquiry, error)
	UpdateEnquiryStatus(ctx context.Context, id int64, status domain.EnquiryStatus) (*domain.Enquiry, error)
	AssignEnquiry(ctx context.Context, id int64, staffID int64) (*domain.Enquiry, error)
	ListEnquiryResponses(ctx context.Context, enquiryID int64) ([]domain.EnquiryResponse, error)
	CreateEnquiryResponse(ctx context.Context, enquiryID int64, input ResponseInput) (*domain.EnquiryResponse, error)
	SubmitContact(ctx context.Context, input EnquiryInput) (int64, error)
}

type TestimonialInput struct {
	Name       string `json:"name"`
	CruiseName string `json:"cruise_name"`
	Comment    string `json:"comment"`
	Rating     int    `json:"rating"`
	AvatarURL  string `json:"avatar_url"`
	CruiseID   *int64 `json:"cruise_id"`
	UserID     *int64 `json:"-"`
}

type EnquiryInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	UserID  *int64 `json:"-"`
}

type ResponseInput struct {
	ResponseText      string `json:"response_text"`
	RespondedByUserID *int64 `json:"-"`
}

type FeedbackService struct {
	repo   repository.FeedbackRepository
	strict bool
	log    *logger.Logger
	now    func() time.Time
}

type FeedbackServiceOption func(*FeedbackService)

func WithStrictTransitions(strict bool) FeedbackServiceOption {
	return func(s *FeedbackService) {
		s.strict = strict
	}
}

func WithLogger(log *logger.Logger) FeedbackServiceOption {
	return func(s *FeedbackService) {
		s.log = log
	}
}

func WithClock(now func() time.Time) FeedbackServiceOption {
	return func(s *FeedbackService) {
		s.now = now
	}
}

func NewFeedbackService(repo repository.FeedbackRepository, opts ...FeedbackServiceOption) *FeedbackService {
	service := &FeedbackService{
		repo:   repo,
		strict: true,
		log:    logger.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *FeedbackService) ListTestimonials(ctx context.Context) ([]domain.Testimonial, error) {
	return s.repo.ListTestimonials(ctx)
}

func (s *FeedbackService) ListTestimonialsByCruise(ctx context.Context, cruiseID int64) ([]domain.Testimonial, error) {
	return s.repo.ListTestimonialsByCruise(ctx, cruiseID)
}

func (s *FeedbackService) GetTestimonial(ctx context.Context, id int64) (*domain.Testimonial, error) {
	return s.repo.GetTestimonial(ctx, id)
}

func (s *FeedbackService) CreateTestimonial(ctx context.Context, input TestimonialInput) (*domain.Testimonial, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Comment) == "" {
		return nil, fmt.Errorf("%w: name and comment are required", domain.ErrValidation)
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", domain.ErrValidation)
	}

	created, err := s.repo.CreateTestimonial(ctx, &domain.Testimonial{
		Name:       input.Name,
		CruiseName: input.CruiseName,
		Comment:    input.Comment,
		Rating:     input.Rating,
		AvatarURL:  input.AvatarURL,
		CruiseID:   input.CruiseID,
		UserID:     input.UserID,
		CreatedAt:  s.now(),
		IsVerified: false,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("FEEDBACK", fmt.Sprintf("testimonial %d submitted by %s", created.ID, created.Name))
	return created, nil
}

// VerifyTestimonial is idempotent.
func (s *FeedbackService) VerifyTestimonial(ctx context.Context, id int64) (*domain.Testimonial, error) {
	return s.repo.UpdateTestimonial(ctx, id, func(t *domain.Testimonial) error {
		t.IsVerified = true
		return nil
	})
}

func (s *FeedbackService) ListEnquiries(ctx context.Context) ([]domain.Enquiry, error) {
	return s.repo.ListEnquiries(ctx)
}

func (s *FeedbackService) ListEnquiriesByUser(ctx context.Context, userID int64) ([]domain.Enquiry, error) {
	return s.repo.ListEnquiriesByUser(ctx, userID)
}

func (s *FeedbackService) GetEnquiry(ctx context.Context, id int64) (*domain.Enquiry, error) {
	return s.repo.GetEnquiry(ctx, id)
}

func (s *FeedbackService) CreateEnquiry(ctx context.Context, input EnquiryInput) (*domain.Enquiry, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Message) == "" {
		return nil, fmt.Errorf("%w: name and message are required", domain.ErrValidation)
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email %q", domain.ErrValidation, input.Email)
	}
	subject := input.Subject
	if strings.TrimSpace(subject) == "" {
		subject = "General enquiry"
	}

	now := s.now()
	created, err := s.repo.CreateEnquiry(ctx, &domain.Enquiry{
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Subject:   subject,
		Message:   input.Message,
		Status:    domain.EnquiryStatusSubmitted,
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    input.UserID,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("FEEDBACK", fmt.Sprintf("enquiry %d received from %s", created.ID, created.Email))
	return created, nil
}

func (s *FeedbackService) UpdateEnquiryStatus(ctx context.Context, id int64, status domain.EnquiryStatus) (*domain.Enquiry, error) {
	updated, err := s.repo.UpdateEnquiry(ctx, id, func(e *domain.Enquiry) error {
		return e.SetStatus(status, s.now(), s.strict)
	})
	if err != nil {
		return nil, fmt.Errorf("update enquiry %d: %w", id, err)
	}
	return updated, nil
}

// AssignEnquiry hands the enquiry to a staff member and starts the review of a
// freshly submitted one.
func (s *FeedbackService) AssignEnquiry(ctx context.Context, id int64, staffID int64) (*domain.Enquiry, error) {
	updated, err := s.repo.UpdateEnquiry(ctx, id, func(e *domain.Enquiry) error {
		now := s.now()
		e.AssignedToUserID = &staffID
		e.UpdatedAt = now
		if e.Status == domain.EnquiryStatusSubmitted {
			return e.SetStatus(domain.EnquiryStatusInReview, now, s.strict)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("assign enquiry %d: %w", id, err)
	}
	return updated, nil
}

func (s *FeedbackService) ListEnquiryResponses(ctx context.Context, enquiryID int64) ([]domain.EnquiryResponse, error) {
	if _, err := s.repo.GetEnquiry(ctx, enquiryID); err != nil {
		return nil, err
	}
	return s.repo.ListEnquiryResponses(ctx, enquiryID)
}

// CreateEnquiryResponse stores the response and marks the enquiry responded in
// one step. A closed enquiry takes no more responses.
func (s *FeedbackService) CreateEnquiryResponse(ctx context.Context, enquiryID int64, input ResponseInput) (*domain.EnquiryResponse, error) {
	if strings.TrimSpace(input.ResponseText) == "" {
		return nil, fmt.Errorf("%w: response text is required", domain.ErrValidation)
	}

	now := s.now()
	response := &domain.EnquiryResponse{
		EnquiryID:         enquiryID,
		ResponseText:      input.ResponseText,
		RespondedByUserID: input.RespondedByUserID,
		RespondedAt:       now,
	}
	created, err := s.repo.CreateEnquiryResponse(ctx, response, func(e *domain.Enquiry) error {
		if e.Status == domain.EnquiryStatusClosed {
			return fmt.Errorf("%w: enquiry %d is closed", domain.ErrInvalidTransition, e.ID)
		}
		if err := e.SetStatus(domain.EnquiryStatusResponded, now, s.strict); err != nil {
			return err
		}
		e.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("respond to enquiry %d: %w", enquiryID, err)
	}
	return created, nil
}

func (s *FeedbackService) SubmitContact(ctx context.Context, input EnquiryInput) (int64, error) {
	enquiry, err := s.CreateEnquiry(ctx, input)
	if err != nil {
		return 0, err
	}
	return enquiry.ID, nil
}

var _ FeedbackUseCase = (*FeedbackService)(nil)
