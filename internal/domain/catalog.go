package domain

import "time"

type Destination struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	ImageURL      string  `json:"image_url"`
	PriceFrom     int64   `json:"price_from"`
	Rating        float64 `json:"rating"`
	CruiseCount   int     `json:"cruise_count"`
	DurationRange string  `json:"duration_range"`
}

type Cruise struct {
	ID                int64       `json:"id"`
	Title             string      `json:"title"`
	Description       string      `json:"description"`
	DestinationID     int64       `json:"destination_id"`
	ImageURL          string      `json:"image_url"`
	DepartureFrom     string      `json:"departure_from"`
	Duration          int         `json:"duration"`
	PricePerPerson    int64       `json:"price_per_person"`
	OriginalPrice     *int64      `json:"original_price,omitempty"`
	CabinType         string      `json:"cabin_type"`
	Inclusions        string      `json:"inclusions"`
	IsBestSeller      bool        `json:"is_best_seller"`
	IsNewItinerary    bool        `json:"is_new_itinerary"`
	Rating            float64     `json:"rating"`
	AvailablePackages []string    `json:"available_packages"`
	AvailableDates    []time.Time `json:"available_dates,omitempty"`
}

func (c *Cruise) Clone() *Cruise {
	if c == nil {
		return nil
	}
	out := *c
	out.OriginalPrice = cloneInt64(c.OriginalPrice)
	out.AvailablePackages = append([]string(nil), c.AvailablePackages...)
	out.AvailableDates = append([]time.Time(nil), c.AvailableDates...)
	return &out
}

// CabinType is a stateroom category scoped to one cruise.
type CabinType struct {
	ID            int64    `json:"id"`
	CruiseID      int64    `json:"cruise_id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	PriceModifier int64    `json:"price_modifier"`
	Capacity      int      `json:"capacity"`
	Amenities     []string `json:"amenities,omitempty"`
	ImageURL      string   `json:"image_url,omitempty"`
}

func (c *CabinType) Clone() *CabinType {
	if c == nil {
		return nil
	}
	out := *c
	out.Amenities = append([]string(nil), c.Amenities...)
	return &out
}

type Amenity struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Category    string `json:"category,omitempty"`
}
