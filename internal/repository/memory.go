package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Domenick1991/oceanview/internal/domain"
)

// MemoryStore keeps every entity in process memory. A single lock guards all
// maps and counters so each public operation, including InTx, is atomic.
type MemoryStore struct {
	mu sync.RWMutex

	users        map[int64]*domain.User
	destinations map[int64]*domain.Destination
	cruises      map[int64]*domain.Cruise
	cabinTypes   map[int64]*domain.CabinType
	amenities    map[int64]*domain.Amenity
	bookings     map[int64]*domain.Booking
	bookingRefs  map[string]int64
	payments     map[int64]*domain.Payment
	testimonials map[int64]*domain.Testimonial
	enquiries    map[int64]*domain.Enquiry
	responses    map[int64]*domain.EnquiryResponse

	seq struct {
		user, destination, cruise, cabinType, amenity int64
		booking, payment, testimonial, enquiry, response int64
	}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[int64]*domain.User),
		destinations: make(map[int64]*domain.Destination),
		cruises:      make(map[int64]*domain.Cruise),
		cabinTypes:   make(map[int64]*domain.CabinType),
		amenities:    make(map[int64]*domain.Amenity),
		bookings:     make(map[int64]*domain.Booking),
		bookingRefs:  make(map[string]int64),
		payments:     make(map[int64]*domain.Payment),
		testimonials: make(map[int64]*domain.Testimonial),
		enquiries:    make(map[int64]*domain.Enquiry),
		responses:    make(map[int64]*domain.EnquiryResponse),
	}
}

func (s *MemoryStore) Close() {}

func notFound(entity string, id any) error {
	return fmt.Errorf("%s %v: %w", entity, id, domain.ErrNotFound)
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Users

func (s *MemoryStore) CreateUser(_ context.Context, user *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, user.Username) {
			return nil, fmt.Errorf("username %q: %w", user.Username, domain.ErrConflict)
		}
		if strings.EqualFold(existing.Email, user.Email) {
			return nil, fmt.Errorf("email %q: %w", user.Email, domain.ErrConflict)
		}
	}

	s.seq.user++
	stored := user.Clone()
	stored.ID = s.seq.user
	s.users[stored.ID] = stored
	return stored.Clone(), nil
}

func (s *MemoryStore) GetUser(_ context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return user.Clone(), nil
}

func (s *MemoryStore) findUser(match func(*domain.User) bool) *domain.User {
	for _, id := range sortedKeys(s.users) {
		if u := s.users[id]; match(u) {
			return u
		}
	}
	return nil
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user := s.findUser(func(u *domain.User) bool { return strings.EqualFold(u.Username, username) })
	if user == nil {
		return nil, notFound("user", username)
	}
	return user.Clone(), nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user := s.findUser(func(u *domain.User) bool { return strings.EqualFold(u.Email, email) })
	if user == nil {
		return nil, notFound("user", email)
	}
	return user.Clone(), nil
}

func (s *MemoryStore) GetUserByResetToken(_ context.Context, token string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user := s.findUser(func(u *domain.User) bool { return token != "" && u.ResetToken == token })
	if user == nil {
		return nil, notFound("reset token", "")
	}
	return user.Clone(), nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, id int64, fn func(*domain.User) error) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	updated := current.Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}
	updated.ID = id
	for otherID, other := range s.users {
		if otherID == id {
			continue
		}
		if strings.EqualFold(other.Email, updated.Email) || strings.EqualFold(other.Username, updated.Username) {
			return nil, fmt.Errorf("user %d: %w", id, domain.ErrConflict)
		}
	}
	s.users[id] = updated
	return updated.Clone(), nil
}

// Catalog

func (s *MemoryStore) ListDestinations(_ context.Context) ([]domain.Destination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Destination, 0, len(s.destinations))
	for _, id := range sortedKeys(s.destinations) {
		out = append(out, *s.destinations[id])
	}
	return out, nil
}

func (s *MemoryStore) GetDestination(_ context.Context, id int64) (*domain.Destination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.destinations[id]
	if !ok {
		return nil, notFound("destination", id)
	}
	c := *d
	return &c, nil
}

func (s *MemoryStore) CreateDestination(_ context.Context, destination *domain.Destination) (*domain.Destination, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq.destination++
	stored := *destination
	stored.ID = s.seq.destination
	s.destinations[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (s *MemoryStore) ListCruises(_ context.Context) ([]domain.Cruise, error) {
	return s.filterCruises(func(*domain.Cruise) bool { return true }), nil
}

func (s *MemoryStore) ListCruisesByDestination(_ context.Context, destinationID int64) ([]domain.Cruise, error) {
	return s.filterCruises(func(c *domain.Cruise) bool { return c.DestinationID == destinationID }), nil
}

func (s *MemoryStore) filterCruises(match func(*domain.Cruise) bool) []domain.Cruise {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Cruise, 0)
	for _, id := range sortedKeys(s.cruises) {
		if c := s.cruises[id]; match(c) {
			out = append(out, *c.Clone())
		}
	}
	return out
}

func (s *MemoryStore) GetCruise(_ context.Context, id int64) (*domain.Cruise, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cruises[id]
	if !ok {
		return nil, notFound("cruise", id)
	}
	return c.Clone(), nil
}

func (s *MemoryStore) CreateCruise(_ context.Context, cruise *domain.Cruise) (*domain.Cruise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq.cruise++
	stored := cruise.Clone()
	stored.ID = s.seq.cruise
	s.cruises[stored.ID] = stored
	return stored.Clone(), nil
}

func (s *MemoryStore) ListCabinTypes(_ context.Context, cruiseID int64) ([]domain.CabinType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CabinType, 0)
	for _, id := range sortedKeys(s.cabinTypes) {
		if c := s.cabinTypes[id]; c.CruiseID == cruiseID {
			out = append(out, *c.Clone())
		}
	}
	return out, nil
}

func (s *MemoryStore) GetCabinType(_ context.Context, id int64) (*domain.CabinType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cabinTypes[id]
	if !ok {
		return nil, notFound("cabin type", id)
	}
	return c.Clone(), nil
}

func (s *MemoryStore) CreateCabinType(_ context.Context, cabin *domain.CabinType) (*domain.CabinType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq.cabinType++
	stored := cabin.Clone()
	stored.ID = s.seq.cabinType
	s.cabinTypes[stored.ID] = stored
	return stored.Clone(), nil
}

func (s *MemoryStore) ListAmenities(_ context.Context) ([]domain.Amenity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Amenity, 0, len(s.amenities))
	for _, id := range sortedKeys(s.amenities) {
		out = append(out, *s.amenities[id])
	}
	return out, nil
}

func (s *MemoryStore) GetAmenity(_ context.Context, id int64) (*domain.Amenity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.amenities[id]
	if !ok {
		return nil, notFound("amenity", id)
	}
	c := *a
	return &c, nil
}

func (s *MemoryStore) CreateAmenity(_ context.Context, amenity *domain.Amenity) (*domain.Amenity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq.amenity++
	stored := *amenity
	stored.ID = s.seq.amenity
	s.amenities[stored.ID] = &stored
	out := stored
	return &out, nil
}

// Feedback

func (s *MemoryStore) ListTestimonials(_ context.Context) ([]domain.Testimonial, error) {
	return s.filterTestimonials(func(*domain.Testimonial) bool { return true }), nil
}

func (s *MemoryStore) ListTestimonialsByCruise(_ context.Context, cruiseID int64) ([]domain.Testimonial, error) {
	return s.filterTestimonials(func(t *domain.Testimonial) bool {
		return t.CruiseID != nil && *t.CruiseID == cruiseID
	}), nil
}

func (s *MemoryStore) filterTestimonials(match func(*domain.Testimonial) bool) []domain.Testimonial {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Testimonial, 0)
	for _, id := range sortedKeys(s.testimonials) {
		if t := s.testimonials[id]; match(t) {
			out = append(out, *t.Clone())
		}
	}
	return out
}

func (s *MemoryStore) GetTestimonial(_ context.Context, id int64) (*domain.Testimonial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.testimonials[id]
	if !ok {
		return nil, notFound("testimonial", id)
	}
	return t.Clone(), nil
}

func (s *MemoryStore) CreateTestimonial(_ context.Context, testimonial *domain.Testimonial) (*domain.Testimonial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq.testimonial++
	stored := testimonial.Clone()
	stored.ID = s.seq.testimonial
	s.testimonials[stored.ID] = stored
	return stored.Clone(), nil
}

func (s *MemoryStore) UpdateTestimonial(_ context.Context, id int64, fn func(*domain.Testimonial) error) (*domain.Testimonial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.testimonials[id]
	if !ok {
		return nil, notFound("testimonial", id)
	}
	updated := current.Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}
	updated.ID = id
	s.testimonials[id] = updated
	return updated.Clone(), nil
}

func (s *MemoryStore) ListEnquiries(_ context.Context) ([]domain.Enquiry, error) {
	return s.filterEnquiries(func(*domain.Enquiry) bool { return true }), nil
}

func (s *MemoryStore) ListEnquiriesByUser(_ context.Context, userID int64) ([]domain.Enquiry, error) {
	return s.filterEnquiries(func(e *domain.Enquiry) bool {
		return e.UserID != nil && *e.UserID == userID
	}), nil
}

func (s *MemoryStore) filterEnquiries(match func(*domain.Enquiry) bool) []domain.Enquiry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Enquiry, 0)
	for _, id := range sortedKeys(s.enquiries) {
		if e := s.enquiries[id]; match(e) {
			out = append(out, *e.Clone())
		}
	}
	return out
}

func (s *MemoryStore) GetEnquiry(_ context.Context, id int64) (*domain.Enquiry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.enquiries[id]
	if !ok {
		return nil, notFound("enquiry", id)
	}
	return e.Clone(), nil
}

func (s *MemoryStore) CreateEnquiry(_ context.Context, enquiry *domain.Enquiry) (*domain.Enquiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq.enquiry++
	stored := enquiry.Clone()
	stored.ID = s.seq.enquiry
	s.enquiries[stored.ID] = stored
	return stored.Clone(), nil
}

func (s *MemoryStore) UpdateEnquiry(_ context.Context, id int64, fn func(*domain.Enquiry) error) (*domain.Enquiry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.updateEnquiryLocked(id, fn)
}

func (s *MemoryStore) updateEnquiryLocked(id int64, fn func(*domain.Enquiry) error) (*domain.Enquiry, error) {
	current, ok := s.enquiries[id]
	if !ok {
		return nil, notFound("enquiry", id)
	}
	updated := current.Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}
	updated.ID = id
	s.enquiries[id] = updated
	return updated.Clone(), nil
}

func (s *MemoryStore) ListEnquiryResponses(_ context.Context, enquiryID int64) ([]domain.EnquiryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.EnquiryResponse, 0)
	for _, id := range sortedKeys(s.responses) {
		if r := s.responses[id]; r.EnquiryID == enquiryID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateEnquiryResponse(_ context.Context, response *domain.EnquiryResponse, fn func(*domain.Enquiry) error) (*domain.EnquiryResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.updateEnquiryLocked(response.EnquiryID, fn); err != nil {
		return nil, err
	}

	s.seq.response++
	stored := *response
	stored.RespondedByUserID = cloneID(response.RespondedByUserID)
	stored.ID = s.seq.response
	s.responses[stored.ID] = &stored
	out := stored
	return &out, nil
}

func cloneID(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

var _ Store = (*MemoryStore)(nil)
