package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/oceanview/internal/domain"
	"github.com/Domenick1991/oceanview/internal/logger"
	"github.com/Domenick1991/oceanview/internal/repository"
)

const (
	AnyDestination = "Any Destination"
	AnyLength      = "Any Length"
)

type CatalogUseCase interface {
	ListDestinations(ctx context.Context) ([]domain.Destination, error)
	GetDestination(ctx context.Context, id int64) (*domain.Destination, error)
	CreateDestination(ctx context.Context, destination *domain.Destination) (*domain.Destination, error)

	ListCruises(ctx context.Context) ([]domain.Cruise, error)
	GetCruise(ctx context.Context, id int64) (*domain.Cruise, error)
	ListCruisesByDestination(ctx context.Context, destinationID int64) ([]domain.Cruise, error)
	CreateCruise(ctx context.Context, cruise *domain.Cruise) (*domain.Cruise, error)
	SearchCruises(ctx context.Context, criteria SearchCriteria) ([]domain.Cruise, error)

	ListCabinTypes(ctx context.Context, cruiseID int64) ([]domain.CabinType, error)
	GetCabinType(ctx context.Context, id int64) (*domain.CabinType, error)
	CreateCabinType(ctx context.Context, cabin *domain.CabinType) (*domain.CabinType, error)

	ListAmenities(ctx context.Context) ([]domain.Amenity, error)
	GetAmenity(ctx context.Context, id int64) (*domain.Amenity, error)
	CreateAmenity(ctx context.Context, amenity *domain.Amenity) (*domain.Amenity, error)
}

type Cache interface {
	GetCruises(ctx context.Context) ([]domain.Cruise, error)
	SetCruises(ctx context.Context, cruises []domain.Cruise) error
	GetDestinations(ctx context.Context) ([]domain.Destination, error)
	SetDestinations(ctx context.Context, destinations []domain.Destination) error
	InvalidateCatalog(ctx context.Context) error
}

// SearchCriteria filters cruises. Empty fields and the "Any ..." sentinels
// match everything.
type SearchCriteria struct {
	Destination    string `json:"destination"`
	Duration       string `json:"duration"`
	DepartureMonth string `json:"departure_month"`
	Guests         int    `json:"guests"`
}

type CatalogService struct {
	repo  repository.CatalogRepository
	cache Cache
	log   *logger.Logger
}

func NewCatalogService(repo repository.CatalogRepository, cache Cache, log *logger.Logger) *CatalogService {
	if log == nil {
		log = logger.Nop()
	}
	return &CatalogService{repo: repo, cache: cache, log: log}
}

func (s *CatalogService) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetDestinations(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	destinations, err := s.repo.ListDestinations(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetDestinations(ctx, destinations); err != nil {
			s.log.Warn("REDIS", "failed to cache destinations: "+err.Error())
		}
	}
	return destinations, nil
}

func (s *CatalogService) GetDestination(ctx context.Context, id int64) (*domain.Destination, error) {
	return s.repo.GetDestination(ctx, id)
}

func (s *CatalogService) CreateDestination(ctx context.Context, destination *domain.Destination) (*domain.Destination, error) {
	if strings.TrimSpace(destination.Name) == "" {
		return nil, fmt.Errorf("%w: destination name is required", domain.ErrValidation)
	}
	created, err := s.repo.CreateDestination(ctx, destination)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *CatalogService) ListCruises(ctx context.Context) ([]domain.Cruise, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetCruises(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	cruises, err := s.repo.ListCruises(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetCruises(ctx, cruises); err != nil {
			s.log.Warn("REDIS", "failed to cache cruises: "+err.Error())
		}
	}
	return cruises, nil
}

func (s *CatalogService) GetCruise(ctx context.Context, id int64) (*domain.Cruise, error) {
	return s.repo.GetCruise(ctx, id)
}

func (s *CatalogService) ListCruisesByDestination(ctx context.Context, destinationID int64) ([]domain.Cruise, error) {
	if _, err := s.repo.GetDestination(ctx, destinationID); err != nil {
		return nil, err
	}
	return s.repo.ListCruisesByDestination(ctx, destinationID)
}

func (s *CatalogService) CreateCruise(ctx context.Context, cruise *domain.Cruise) (*domain.Cruise, error) {
	if strings.TrimSpace(cruise.Title) == "" {
		return nil, fmt.Errorf("%w: cruise title is required", domain.ErrValidation)
	}
	if cruise.Duration < 1 || cruise.PricePerPerson < 0 {
		return nil, fmt.Errorf("%w: cruise duration must be positive and price non-negative", domain.ErrValidation)
	}
	if cruise.DestinationID != 0 {
		if _, err := s.repo.GetDestination(ctx, cruise.DestinationID); err != nil {
			return nil, err
		}
	}
	created, err := s.repo.CreateCruise(ctx, cruise)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return created, nil
}

// SearchCruises applies the destination, duration bucket, departure month and
// party size filters. An unknown destination name or duration bucket does not
// filter.
func (s *CatalogService) SearchCruises(ctx context.Context, criteria SearchCriteria) ([]domain.Cruise, error) {
	cruises, err := s.ListCruises(ctx)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(criteria.Destination); name != "" && !strings.EqualFold(name, AnyDestination) && !strings.EqualFold(name, "any") {
		destinations, err := s.ListDestinations(ctx)
		if err != nil {
			return nil, err
		}
		for _, d := range destinations {
			if strings.EqualFold(d.Name, name) {
				cruises = filter(cruises, func(c *domain.Cruise) bool { return c.DestinationID == d.ID })
				break
			}
		}
	}

	if minDays, maxDays, ok := durationBucket(criteria.Duration); ok {
		cruises = filter(cruises, func(c *domain.Cruise) bool {
			return c.Duration >= minDays && (maxDays == 0 || c.Duration <= maxDays)
		})
	}

	if month := strings.TrimSpace(criteria.DepartureMonth); month != "" {
		cruises = filter(cruises, func(c *domain.Cruise) bool {
			for _, d := range c.AvailableDates {
				if d.Format("2006-01") == month {
					return true
				}
			}
			return false
		})
	}

	if criteria.Guests > 0 {
		kept := cruises[:0:0]
		for i := range cruises {
			fits, err := s.fitsParty(ctx, cruises[i].ID, criteria.Guests)
			if err != nil {
				return nil, err
			}
			if fits {
				kept = append(kept, cruises[i])
			}
		}
		cruises = kept
	}
	return cruises, nil
}

// fitsParty reports whether any cabin type of the cruise holds the party. A
// cruise without cabin types is assumed to fit.
func (s *CatalogService) fitsParty(ctx context.Context, cruiseID int64, guests int) (bool, error) {
	cabins, err := s.repo.ListCabinTypes(ctx, cruiseID)
	if err != nil {
		return false, err
	}
	if len(cabins) == 0 {
		return true, nil
	}
	for _, c := range cabins {
		if c.Capacity == 0 || c.Capacity >= guests {
			return true, nil
		}
	}
	return false, nil
}

func (s *CatalogService) ListCabinTypes(ctx context.Context, cruiseID int64) ([]domain.CabinType, error) {
	if _, err := s.repo.GetCruise(ctx, cruiseID); err != nil {
		return nil, err
	}
	return s.repo.ListCabinTypes(ctx, cruiseID)
}

func (s *CatalogService) GetCabinType(ctx context.Context, id int64) (*domain.CabinType, error) {
	return s.repo.GetCabinType(ctx, id)
}

func (s *CatalogService) CreateCabinType(ctx context.Context, cabin *domain.CabinType) (*domain.CabinType, error) {
	if strings.TrimSpace(cabin.Name) == "" || cabin.Capacity < 0 {
		return nil, fmt.Errorf("%w: cabin type needs a name and a non-negative capacity", domain.ErrValidation)
	}
	if _, err := s.repo.GetCruise(ctx, cabin.CruiseID); err != nil {
		return nil, err
	}
	return s.repo.CreateCabinType(ctx, cabin)
}

func (s *CatalogService) ListAmenities(ctx context.Context) ([]domain.Amenity, error) {
	return s.repo.ListAmenities(ctx)
}

func (s *CatalogService) GetAmenity(ctx context.Context, id int64) (*domain.Amenity, error) {
	return s.repo.GetAmenity(ctx, id)
}

func (s *CatalogService) CreateAmenity(ctx context.Context, amenity *domain.Amenity) (*domain.Amenity, error) {
	if strings.TrimSpace(amenity.Name) == "" {
		return nil, fmt.Errorf("%w: amenity name is required", domain.ErrValidation)
	}
	return s.repo.CreateAmenity(ctx, amenity)
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCatalog(ctx); err != nil {
		s.log.Warn("REDIS", "failed to invalidate catalog cache: "+err.Error())
	}
}

func durationBucket(label string) (minDays, maxDays int, ok bool) {
	switch label {
	case "2-5 Days":
		return 2, 5, true
	case "6-9 Days":
		return 6, 9, true
	case "10+ Days":
		return 10, 0, true
	}
	return 0, 0, false
}

func filter(cruises []domain.Cruise, keep func(*domain.Cruise) bool) []domain.Cruise {
	out := make([]domain.Cruise, 0, len(cruises))
	for i := range cruises {
		if keep(&cruises[i]) {
			out = append(out, cruises[i])
		}
	}
	return out
}

var _ CatalogUseCase = (*CatalogService)(nil)
