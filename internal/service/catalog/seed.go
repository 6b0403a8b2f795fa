package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/oceanview/internal/domain"
	"github.com/Domenick1991/oceanview/internal/repository"
)

const defaultInclusions = "All meals, Entertainment, Port charges"

// Seed loads the sample catalog into an empty store. It reports false and
// writes nothing when destinations already exist.
func Seed(ctx context.Context, catalog repository.CatalogRepository, feedback repository.FeedbackRepository) (bool, error) {
	existing, err := catalog.ListDestinations(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		return false, nil
	}

	destinationIDs := make(map[string]int64, len(sampleDestinations))
	for _, destination := range sampleDestinations {
		d, err := catalog.CreateDestination(ctx, &destination)
		if err != nil {
			return false, fmt.Errorf("seed destination %s: %w", destination.Name, err)
		}
		destinationIDs[d.Name] = d.ID
	}

	for _, sc := range sampleCruises {
		cruise := sc.cruise
		cruise.DestinationID = destinationIDs[sc.destination]
		cruise.Inclusions = defaultInclusions
		if _, err := catalog.CreateCruise(ctx, &cruise); err != nil {
			return false, fmt.Errorf("seed cruise %s: %w", cruise.Title, err)
		}
	}

	for _, amenity := range sampleAmenities {
		if _, err := catalog.CreateAmenity(ctx, &amenity); err != nil {
			return false, fmt.Errorf("seed amenity %s: %w", amenity.Name, err)
		}
	}

	now := time.Now()
	for _, testimonial := range sampleTestimonials {
		testimonial.CreatedAt = now
		if _, err := feedback.CreateTestimonial(ctx, &testimonial); err != nil {
			return false, fmt.Errorf("seed testimonial %s: %w", testimonial.Name, err)
		}
	}
	return true, nil
}

func price(v int64) *int64 { return &v }

var sampleDestinations = []domain.Destination{
	{
		Name:          "Caribbean",
		Description:   "Explore crystal-clear waters, white sandy beaches, and vibrant island cultures.",
		ImageURL:      "https://images.unsplash.com/photo-1590523741831-ab7e8b8334b4",
		PriceFrom:     599,
		Rating:        4.5,
		CruiseCount:   12,
		DurationRange: "7-10 Days",
	},
	{
		Name:          "Mediterranean",
		Description:   "Visit ancient ruins, coastal villages, and enjoy delicious cuisine across Europe.",
		ImageURL:      "https://images.unsplash.com/photo-1602867741746-6df80f40c267",
		PriceFrom:     899,
		Rating:        5.0,
		CruiseCount:   15,
		DurationRange: "10-14 Days",
	},
	{
		Name:          "Alaska",
		Description:   "Experience breathtaking glaciers, wildlife sightings, and magnificent landscapes.",
		ImageURL:      "https://images.unsplash.com/photo-1473181488821-2d23949a045a",
		PriceFrom:     799,
		Rating:        4.5,
		CruiseCount:   8,
		DurationRange: "7-14 Days",
	},
	{
		Name:          "Europe",
		Description:   "Discover historic cities, cultural landmarks, and beautiful countryside.",
		ImageURL:      "https://images.unsplash.com/photo-1499856871958-5b9627545d1a",
		PriceFrom:     999,
		Rating:        4.8,
		CruiseCount:   10,
		DurationRange: "10-14 Days",
	},
	{
		Name:          "Asia",
		Description:   "Experience diverse cultures, ancient temples, and exotic cuisine.",
		ImageURL:      "https://images.unsplash.com/photo-1540959733332-eab4deabeeaf",
		PriceFrom:     1099,
		Rating:        4.7,
		CruiseCount:   6,
		DurationRange: "12-18 Days",
	},
	{
		Name:          "Australia",
		Description:   "Explore the Great Barrier Reef, scenic coastlines, and vibrant cities.",
		ImageURL:      "https://images.unsplash.com/photo-1523482580672-f109ba8cb9be",
		PriceFrom:     1299,
		Rating:        4.6,
		CruiseCount:   5,
		DurationRange: "10-16 Days",
	},
}

var sampleCruises = []struct {
	destination string
	cruise      domain.Cruise
}{
	{"Caribbean", domain.Cruise{
		Title:             "Caribbean Paradise",
		Description:       "7-Night Western Caribbean & Perfect Day",
		ImageURL:          "https://images.unsplash.com/photo-1548574505-5e239809ee19",
		DepartureFrom:     "Miami, FL",
		Duration:          7,
		PricePerPerson:    899,
		OriginalPrice:     price(1199),
		CabinType:         "Ocean View Stateroom",
		IsBestSeller:      true,
		Rating:            4.5,
		AvailablePackages: []string{"Premium Dining Package", "$200 Onboard Credit"},
	}},
	{"Mediterranean", domain.Cruise{
		Title:             "Greek Isles Explorer",
		Description:       "10-Night Greek Isles & Mediterranean Journey",
		ImageURL:          "https://images.unsplash.com/photo-1612456144614-8f2ebcc7bb40",
		DepartureFrom:     "Rome, Italy",
		Duration:          10,
		PricePerPerson:    1499,
		OriginalPrice:     price(1799),
		CabinType:         "Balcony Stateroom",
		IsNewItinerary:    true,
		Rating:            5.0,
		AvailablePackages: []string{"Specialty Dining (3 meals)", "Shore Excursion Credit", "Drink Package"},
	}},
	{"Alaska", domain.Cruise{
		Title:             "Alaskan Adventure",
		Description:       "7-Night Glacier Experience",
		ImageURL:          "https://images.unsplash.com/photo-1531253450048-8e5e6a1d5db3",
		DepartureFrom:     "Seattle, WA",
		Duration:          7,
		PricePerPerson:    1099,
		OriginalPrice:     price(1399),
		CabinType:         "Balcony Stateroom",
		IsBestSeller:      true,
		Rating:            4.7,
		AvailablePackages: []string{"Wildlife Excursion Package", "Premium Beverage Package"},
	}},
	{"Europe", domain.Cruise{
		Title:             "European Capitals",
		Description:       "12-Night Tour of Historic Cities",
		ImageURL:          "https://images.unsplash.com/photo-1502920514313-52581002a659",
		DepartureFrom:     "Southampton, UK",
		Duration:          12,
		PricePerPerson:    1799,
		OriginalPrice:     price(2199),
		CabinType:         "Deluxe Balcony",
		IsNewItinerary:    true,
		Rating:            4.8,
		AvailablePackages: []string{"City Tours Bundle", "Fine Dining Experience"},
	}},
}

var sampleAmenities = []domain.Amenity{
	{
		Name:        "Gourmet Dining",
		Description: "Savor exquisite cuisine prepared by world-class chefs in our specialty restaurants, with dishes inspired by global destinations.",
		ImageURL:    "https://images.unsplash.com/photo-1593069567131-53a0614df2ea",
		Category:    "dining",
	},
	{
		Name:        "World-Class Entertainment",
		Description: "Enjoy Broadway-style shows, live music, comedy performances, and themed parties throughout your cruise vacation.",
		ImageURL:    "https://images.unsplash.com/photo-1591456983933-0cda86bbfec9",
		Category:    "entertainment",
	},
	{
		Name:        "Rejuvenating Spa",
		Description: "Relax and refresh with our comprehensive spa treatments, thermal suites, and expert therapists for the ultimate relaxation.",
		ImageURL:    "https://images.unsplash.com/photo-1610641818989-575305921886",
		Category:    "wellness",
	},
	{
		Name:        "Adventure Activities",
		Description: "Experience thrilling rock climbing walls, water slides, zip lines and more for adrenaline seekers of all ages.",
		ImageURL:    "https://images.unsplash.com/photo-1566438480900-0609be27a4be",
		Category:    "activities",
	},
	{
		Name:        "Family-Friendly Zones",
		Description: "Dedicated areas for children and teens with age-appropriate activities, games, and supervised programs.",
		ImageURL:    "https://images.unsplash.com/photo-1596178065887-1198b6148b2b",
		Category:    "family",
	},
	{
		Name:        "Luxury Shopping",
		Description: "Browse high-end boutiques and duty-free shops featuring designer brands, jewelry, and exclusive souvenirs.",
		ImageURL:    "https://images.unsplash.com/photo-1607083206968-13611e3d76db",
		Category:    "shopping",
	},
}

var sampleTestimonials = []domain.Testimonial{
	{
		Name:       "Robert J.",
		CruiseName: "Caribbean Paradise Cruise",
		Comment:    "Our Caribbean cruise exceeded all expectations. The staff was incredible, the food was amazing, and the excursions were unforgettable. Already planning our next trip!",
		Rating:     5,
		AvatarURL:  "https://images.unsplash.com/photo-1492562080023-ab3db95bfbce",
	},
	{
		Name:       "Jennifer M.",
		CruiseName: "Greek Isles Explorer",
		Comment:    "The Mediterranean cruise was the perfect family vacation. My kids loved the onboard activities, and my husband and I enjoyed the entertainment and shore excursions. Truly memorable!",
		Rating:     5,
		AvatarURL:  "https://images.unsplash.com/photo-1487412720507-e7ab37603c6f",
	},
	{
		Name:       "Lisa & David T.",
		CruiseName: "Alaska Adventure",
		Comment:    "As first-time cruisers, we were amazed by how smooth the entire experience was. The booking process was easy, and the onboard service was top-notch. Definitely recommend OceanView!",
		Rating:     4,
		AvatarURL:  "https://images.unsplash.com/photo-1534528741775-53994a69daeb",
	},
}
