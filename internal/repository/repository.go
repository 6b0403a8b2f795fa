package repository

import (
	"context"

	"github.com/Domenick1991/oceanview/internal/domain"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByResetToken(ctx context.Context, token string) (*domain.User, error)
	// UpdateUser applies fn to the stored user and persists the result atomically.
	UpdateUser(ctx context.Context, id int64, fn func(*domain.User) error) (*domain.User, error)
}

type CatalogRepository interface {
	ListDestinations(ctx context.Context) ([]domain.Destination, error)
	GetDestination(ctx context.Context, id int64) (*domain.Destination, error)
	CreateDestination(ctx context.Context, destination *domain.Destination) (*domain.Destination, error)

	ListCruises(ctx context.Context) ([]domain.Cruise, error)
	ListCruisesByDestination(ctx context.Context, destinationID int64) ([]domain.Cruise, error)
	GetCruise(ctx context.Context, id int64) (*domain.Cruise, error)
	CreateCruise(ctx context.Context, cruise *domain.Cruise) (*domain.Cruise, error)

	ListCabinTypes(ctx context.Context, cruiseID int64) ([]domain.CabinType, error)
	GetCabinType(ctx context.Context, id int64) (*domain.CabinType, error)
	CreateCabinType(ctx context.Context, cabin *domain.CabinType) (*domain.CabinType, error)

	ListAmenities(ctx context.Context) ([]domain.Amenity, error)
	GetAmenity(ctx context.Context, id int64) (*domain.Amenity, error)
	CreateAmenity(ctx context.Context, amenity *domain.Amenity) (*domain.Amenity, error)
}

// BookingTx is the view of bookings and payments inside one transaction.
// Entities returned by it are copies; changes become visible only through
// SaveBooking/SavePayment and only once the transaction commits.
type BookingTx interface {
	NextBookingID(ctx context.Context) (int64, error)
	GetBooking(ctx context.Context, id int64) (*domain.Booking, error)
	InsertBooking(ctx context.Context, booking *domain.Booking) error
	SaveBooking(ctx context.Context, booking *domain.Booking) error

	GetPayment(ctx context.Context, id int64) (*domain.Payment, error)
	InsertPayment(ctx context.Context, payment *domain.Payment) error
	SavePayment(ctx context.Context, payment *domain.Payment) error
}

type BookingRepository interface {
	// InTx runs fn in a transaction. Everything fn wrote is committed when it
	// returns nil and discarded otherwise.
	InTx(ctx context.Context, fn func(tx BookingTx) error) error

	GetBooking(ctx context.Context, id int64) (*domain.Booking, error)
	GetBookingByReference(ctx context.Context, reference string) (*domain.Booking, error)
	ListBookingsByUser(ctx context.Context, userID int64) ([]domain.Booking, error)

	GetPayment(ctx context.Context, id int64) (*domain.Payment, error)
	GetPaymentByIntent(ctx context.Context, intentID string) (*domain.Payment, error)
	ListPaymentsByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error)
	ListPaymentsByStatus(ctx context.Context, status domain.PaymentStatus) ([]domain.Payment, error)
}

type FeedbackRepository interface {
	ListTestimonials(ctx context.Context) ([]domain.Testimonial, error)
	ListTestimonialsByCruise(ctx context.Context, cruiseID int64) ([]domain.Testimonial, error)
	GetTestimonial(ctx context.Context, id int64) (*domain.Testimonial, error)
	CreateTestimonial(ctx context.Context, testimonial *domain.Testimonial) (*domain.Testimonial, error)
	UpdateTestimonial(ctx context.Context, id int64, fn func(*domain.Testimonial) error) (*domain.Testimonial, error)

	ListEnquiries(ctx context.Context) ([]domain.Enquiry, error)
	ListEnquiriesByUser(ctx context.Context, userID int64) ([]domain.Enquiry, error)
	GetEnquiry(ctx context.Context, id int64) (*domain.Enquiry, error)
	CreateEnquiry(ctx context.Context, enquiry *domain.Enquiry) (*domain.Enquiry, error)
	UpdateEnquiry(ctx context.Context, id int64, fn func(*domain.Enquiry) error) (*domain.Enquiry, error)

	ListEnquiryResponses(ctx context.Context, enquiryID int64) ([]domain.EnquiryResponse, error)
	// CreateEnquiryResponse stores the response and applies fn to its parent
	// enquiry in the same transaction.
	CreateEnquiryResponse(ctx context.Context, response *domain.EnquiryResponse, fn func(*domain.Enquiry) error) (*domain.EnquiryResponse, error)
}

type Store interface {
	UserRepository
	CatalogRepository
	BookingRepository
	FeedbackRepository
	Close()
}
