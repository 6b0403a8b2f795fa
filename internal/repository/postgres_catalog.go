package repository

import (
	"context"

	"github.com/Domenick1991/oceanview/internal/domain"
)

const destinationColumns = `id, name, description, image_url, price_from, rating, cruise_count, duration_range`

func scanDestination(row scanner) (*domain.Destination, error) {
	var d domain.Destination
	if err := row.Scan(&d.ID, &d.Name, &d.Description, &d.ImageURL, &d.PriceFrom, &d.Rating, &d.CruiseCount, &d.DurationRange); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *PGStore) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	rows, err := s.db.Query(ctx, `SELECT `+destinationColumns+` FROM destinations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanDestination)
}

func (s *PGStore) GetDestination(ctx context.Context, id int64) (*domain.Destination, error) {
	d, err := scanDestination(s.db.QueryRow(ctx, `SELECT `+destinationColumns+` FROM destinations WHERE id=$1`, id))
	return d, mapErr(err, "destination", id)
}

func (s *PGStore) CreateDestination(ctx context.Context, d *domain.Destination) (*domain.Destination, error) {
	row := s.db.QueryRow(ctx, `INSERT INTO destinations (name, description, image_url, price_from, rating, cruise_count, duration_range)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING `+destinationColumns,
		d.Name, d.Description, d.ImageURL, d.PriceFrom, d.Rating, d.CruiseCount, d.DurationRange)
	created, err := scanDestination(row)
	return created, mapErr(err, "destination", d.Name)
}

const cruiseColumns = `id, title, description, destination_id, image_url, departure_from, duration, price_per_person,
	original_price, cabin_type, inclusions, is_best_seller, is_new_itinerary, rating, available_packages,
	COALESCE(available_dates, '{}')`

func scanCruise(row scanner) (*domain.Cruise, error) {
	var c domain.Cruise
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &c.DestinationID, &c.ImageURL, &c.DepartureFrom, &c.Duration, &c.PricePerPerson,
		&c.OriginalPrice, &c.CabinType, &c.Inclusions, &c.IsBestSeller, &c.IsNewItinerary, &c.Rating, &c.AvailablePackages,
		&c.AvailableDates); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PGStore) ListCruises(ctx context.Context) ([]domain.Cruise, error) {
	rows, err := s.db.Query(ctx, `SELECT `+cruiseColumns+` FROM cruises ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCruise)
}

func (s *PGStore) ListCruisesByDestination(ctx context.Context, destinationID int64) ([]domain.Cruise, error) {
	rows, err := s.db.Query(ctx, `SELECT `+cruiseColumns+` FROM cruises WHERE destination_id=$1 ORDER BY id`, destinationID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCruise)
}

func (s *PGStore) GetCruise(ctx context.Context, id int64) (*domain.Cruise, error) {
	c, err := scanCruise(s.db.QueryRow(ctx, `SELECT `+cruiseColumns+` FROM cruises WHERE id=$1`, id))
	return c, mapErr(err, "cruise", id)
}

func (s *PGStore) CreateCruise(ctx context.Context, c *domain.Cruise) (*domain.Cruise, error) {
	packages := c.AvailablePackages
	if packages == nil {
		packages = []string{}
	}
	row := s.db.QueryRow(ctx, `INSERT INTO cruises (title, description, destination_id, image_url, departure_from, duration,
		price_per_person, original_price, cabin_type, inclusions, is_best_seller, is_new_itinerary, rating, available_packages, available_dates)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING `+cruiseColumns,
		c.Title, c.Description, c.DestinationID, c.ImageURL, c.DepartureFrom, c.Duration,
		c.PricePerPerson, c.OriginalPrice, c.CabinType, c.Inclusions, c.IsBestSeller, c.IsNewItinerary, c.Rating, packages, c.AvailableDates)
	created, err := scanCruise(row)
	return created, mapErr(err, "cruise", c.Title)
}

const cabinTypeColumns = `id, cruise_id, name, description, price_modifier, capacity, COALESCE(amenities, '{}'), COALESCE(image_url, '')`

func scanCabinType(row scanner) (*domain.CabinType, error) {
	var c domain.CabinType
	if err := row.Scan(&c.ID, &c.CruiseID, &c.Name, &c.Description, &c.PriceModifier, &c.Capacity, &c.Amenities, &c.ImageURL); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PGStore) ListCabinTypes(ctx context.Context, cruiseID int64) ([]domain.CabinType, error) {
	rows, err := s.db.Query(ctx, `SELECT `+cabinTypeColumns+` FROM cabin_types WHERE cruise_id=$1 ORDER BY id`, cruiseID)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanCabinType)
}

func (s *PGStore) GetCabinType(ctx context.Context, id int64) (*domain.CabinType, error) {
	c, err := scanCabinType(s.db.QueryRow(ctx, `SELECT `+cabinTypeColumns+` FROM cabin_types WHERE id=$1`, id))
	return c, mapErr(err, "cabin type", id)
}

func (s *PGStore) CreateCabinType(ctx context.Context, c *domain.CabinType) (*domain.CabinType, error) {
	row := s.db.QueryRow(ctx, `INSERT INTO cabin_types (cruise_id, name, description, price_modifier, capacity, amenities, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')) RETURNING `+cabinTypeColumns,
		c.CruiseID, c.Name, c.Description, c.PriceModifier, c.Capacity, c.Amenities, c.ImageURL)
	created, err := scanCabinType(row)
	return created, mapErr(err, "cabin type", c.Name)
}

const amenityColumns = `id, name, description, image_url, COALESCE(category, '')`

func scanAmenity(row scanner) (*domain.Amenity, error) {
	var a domain.Amenity
	if err := row.Scan(&a.ID, &a.Name, &a.Description, &a.ImageURL, &a.Category); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PGStore) ListAmenities(ctx context.Context) ([]domain.Amenity, error) {
	rows, err := s.db.Query(ctx, `SELECT `+amenityColumns+` FROM amenities ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanAmenity)
}

func (s *PGStore) GetAmenity(ctx context.Context, id int64) (*domain.Amenity, error) {
	a, err := scanAmenity(s.db.QueryRow(ctx, `SELECT `+amenityColumns+` FROM amenities WHERE id=$1`, id))
	return a, mapErr(err, "amenity", id)
}

func (s *PGStore) CreateAmenity(ctx context.Context, a *domain.Amenity) (*domain.Amenity, error) {
	row := s.db.QueryRow(ctx, `INSERT INTO amenities (name, description, image_url, category)
		VALUES ($1, $2, $3, NULLIF($4, '')) RETURNING `+amenityColumns,
		a.Name, a.Description, a.ImageURL, a.Category)
	created, err := scanAmenity(row)
	return created, mapErr(err, "amenity", a.Name)
}
