package domain

import (
	"fmt"
	"time"
)

type Testimonial struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	CruiseName string    `json:"cruise_name"`
	Comment    string    `json:"comment"`
	Rating     int       `json:"rating"`
	AvatarURL  string    `json:"avatar_url,omitempty"`
	CruiseID   *int64    `json:"cruise_id,omitempty"`
	UserID     *int64    `json:"user_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	IsVerified bool      `json:"is_verified"`
}

func (t *Testimonial) Clone() *Testimonial {
	if t == nil {
		return nil
	}
	c := *t
	c.CruiseID = cloneInt64(t.CruiseID)
	c.UserID = cloneInt64(t.UserID)
	return &c
}

type EnquiryStatus string

const (
	EnquiryStatusSubmitted EnquiryStatus = "submitted"
	EnquiryStatusInReview  EnquiryStatus = "in_review"
	EnquiryStatusResponded EnquiryStatus = "responded"
	EnquiryStatusClosed    EnquiryStatus = "closed"
)

var enquiryTransitions = map[EnquiryStatus][]EnquiryStatus{
	EnquiryStatusSubmitted: {EnquiryStatusInReview, EnquiryStatusResponded, EnquiryStatusClosed},
	EnquiryStatusInReview:  {EnquiryStatusResponded, EnquiryStatusClosed},
	EnquiryStatusResponded: {EnquiryStatusInReview, EnquiryStatusResponded, EnquiryStatusClosed},
	EnquiryStatusClosed:    {},
}

func ParseEnquiryStatus(s string) (EnquiryStatus, error) {
	status := EnquiryStatus(s)
	if _, ok := enquiryTransitions[status]; !ok {
		return "", fmt.Errorf("%w: enquiry status %q", ErrInvalidStatus, s)
	}
	return status, nil
}

func (s EnquiryStatus) CanTransitionTo(next EnquiryStatus) bool {
	for _, allowed := range enquiryTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Enquiry struct {
	ID               int64         `json:"id"`
	Name             string        `json:"name"`
	Email            string        `json:"email"`
	Phone            string        `json:"phone,omitempty"`
	Subject          string        `json:"subject"`
	Message          string        `json:"message"`
	Status           EnquiryStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
	AssignedToUserID *int64        `json:"assigned_to_user_id,omitempty"`
	UserID           *int64        `json:"user_id,omitempty"`
}

// SetStatus moves the enquiry to next. Re-applying the current status is a no-op.
func (e *Enquiry) SetStatus(next EnquiryStatus, at time.Time, strict bool) error {
	if _, ok := enquiryTransitions[next]; !ok {
		return fmt.Errorf("%w: enquiry status %q", ErrInvalidStatus, next)
	}
	if e.Status == next {
		return nil
	}
	if strict && !e.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, e.Status, next)
	}
	e.Status = next
	e.UpdatedAt = at
	return nil
}

func (e *Enquiry) Clone() *Enquiry {
	if e == nil {
		return nil
	}
	c := *e
	c.AssignedToUserID = cloneInt64(e.AssignedToUserID)
	c.UserID = cloneInt64(e.UserID)
	return &c
}

type EnquiryResponse struct {
	ID                int64     `json:"id"`
	EnquiryID         int64     `json:"enquiry_id"`
	ResponseText      string    `json:"response_text"`
	RespondedByUserID *int64    `json:"responded_by_user_id,omitempty"`
	RespondedAt       time.Time `json:"responded_at"`
}
