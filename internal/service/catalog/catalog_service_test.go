package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/oceanview/internal/domain"
	"github.com/Domenick1991/oceanview/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetCruises(ctx context.Context) ([]domain.Cruise, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Cruise), args.Error(1)
}

func (m *MockCache) SetCruises(ctx context.Context, cruises []domain.Cruise) error {
	args := m.Called(ctx, cruises)
	return args.Error(0)
}

func (m *MockCache) GetDestinations(ctx context.Context) ([]domain.Destination, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Destination), args.Error(1)
}

func (m *MockCache) SetDestinations(ctx context.Context, destinations []domain.Destination) error {
	args := m.Called(ctx, destinations)
	return args.Error(0)
}

func (m *MockCache) InvalidateCatalog(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func seededService(t *testing.T) (*CatalogService, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	seeded, err := Seed(context.Background(), store, store)
	require.NoError(t, err)
	require.True(t, seeded)
	return NewCatalogService(store, nil, nil), store
}

func TestSeed(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()

	seeded, err := Seed(ctx, store, store)
	require.NoError(t, err)
	assert.True(t, seeded)

	destinations, _ := store.ListDestinations(ctx)
	cruises, _ := store.ListCruises(ctx)
	amenities, _ := store.ListAmenities(ctx)
	testimonials, _ := store.ListTestimonials(ctx)
	assert.Len(t, destinations, 6)
	assert.Len(t, cruises, 4)
	assert.Len(t, amenities, 6)
	assert.Len(t, testimonials, 3)

	assert.Equal(t, "Caribbean Paradise", cruises[0].Title)
	assert.Equal(t, destinations[0].ID, cruises[0].DestinationID)
	assert.Equal(t, int64(1199), *cruises[0].OriginalPrice)
	assert.Equal(t, "All meals, Entertainment, Port charges", cruises[3].Inclusions)

	again, err := Seed(ctx, store, store)
	require.NoError(t, err)
	assert.False(t, again)
	cruises, _ = store.ListCruises(ctx)
	assert.Len(t, cruises, 4)
}

func TestCatalogService_ListCruises_CacheHit(t *testing.T) {
	mockCache := &MockCache{}
	service := NewCatalogService(repository.NewMemoryStore(), mockCache, nil)
	ctx := context.Background()

	cached := []domain.Cruise{{ID: 7, Title: "Cached"}}
	mockCache.On("GetCruises", ctx).Return(cached, nil).Once()

	cruises, err := service.ListCruises(ctx)
	assert.NoError(t, err)
	assert.Equal(t, cached, cruises)
	mockCache.AssertExpectations(t)
	mockCache.AssertNotCalled(t, "SetCruises", mock.Anything, mock.Anything)
}

func TestCatalogService_ListCruises_CacheMiss(t *testing.T) {
	store := repository.NewMemoryStore()
	_, err := Seed(context.Background(), store, store)
	require.NoError(t, err)
	mockCache := &MockCache{}
	service := NewCatalogService(store, mockCache, nil)
	ctx := context.Background()

	mockCache.On("GetCruises", ctx).Return(nil, nil).Once()
	mockCache.On("SetCruises", ctx, mock.MatchedBy(func(c []domain.Cruise) bool { return len(c) == 4 })).Return(errors.New("redis down")).Once()

	cruises, err := service.ListCruises(ctx)
	assert.NoError(t, err)
	assert.Len(t, cruises, 4)
	mockCache.AssertExpectations(t)
}

func TestCatalogService_ListDestinations_CacheError(t *testing.T) {
	store := repository.NewMemoryStore()
	mockCache := &MockCache{}
	service := NewCatalogService(store, mockCache, nil)
	ctx := context.Background()

	mockCache.On("GetDestinations", ctx).Return(nil, errors.New("timeout")).Once()
	mockCache.On("SetDestinations", ctx, []domain.Destination{}).Return(nil).Once()

	destinations, err := service.ListDestinations(ctx)
	assert.NoError(t, err)
	assert.Empty(t, destinations)
	mockCache.AssertExpectations(t)
}

func TestCatalogService_CreateInvalidatesCache(t *testing.T) {
	mockCache := &MockCache{}
	service := NewCatalogService(repository.NewMemoryStore(), mockCache, nil)
	ctx := context.Background()

	mockCache.On("InvalidateCatalog", ctx).Return(nil).Twice()

	d, err := service.CreateDestination(ctx, &domain.Destination{Name: "Norway"})
	require.NoError(t, err)
	_, err = service.CreateCruise(ctx, &domain.Cruise{Title: "Fjords", DestinationID: d.ID, Duration: 8, PricePerPerson: 1200})
	require.NoError(t, err)
	mockCache.AssertExpectations(t)

	_, err = service.CreateCruise(ctx, &domain.Cruise{Title: "Nowhere", DestinationID: 99, Duration: 3})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = service.CreateCruise(ctx, &domain.Cruise{Title: "", Duration: 3})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = service.CreateDestination(ctx, &domain.Destination{Name: " "})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCatalogService_SearchCruises(t *testing.T) {
	service, _ := seededService(t)
	ctx := context.Background()

	titles := func(cruises []domain.Cruise) []string {
		out := []string{}
		for _, c := range cruises {
			out = append(out, c.Title)
		}
		return out
	}

	tests := []struct {
		name     string
		criteria SearchCriteria
		want     []string
	}{
		{"everything", SearchCriteria{}, []string{"Caribbean Paradise", "Greek Isles Explorer", "Alaskan Adventure", "European Capitals"}},
		{"any sentinels", SearchCriteria{Destination: AnyDestination, Duration: AnyLength}, []string{"Caribbean Paradise", "Greek Isles Explorer", "Alaskan Adventure", "European Capitals"}},
		{"destination", SearchCriteria{Destination: "Alaska"}, []string{"Alaskan Adventure"}},
		{"destination case insensitive", SearchCriteria{Destination: "mediterranean"}, []string{"Greek Isles Explorer"}},
		{"unknown destination does not filter", SearchCriteria{Destination: "Atlantis"}, []string{"Caribbean Paradise", "Greek Isles Explorer", "Alaskan Adventure", "European Capitals"}},
		{"destination without cruises", SearchCriteria{Destination: "Asia"}, []string{}},
		{"short", SearchCriteria{Duration: "2-5 Days"}, []string{}},
		{"week", SearchCriteria{Duration: "6-9 Days"}, []string{"Caribbean Paradise", "Alaskan Adventure"}},
		{"long", SearchCriteria{Duration: "10+ Days"}, []string{"Greek Isles Explorer", "European Capitals"}},
		{"combined", SearchCriteria{Destination: "Europe", Duration: "10+ Days"}, []string{"European Capitals"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cruises, err := service.SearchCruises(ctx, tt.criteria)
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(cruises))
		})
	}
}

func TestCatalogService_SearchCruises_MonthAndGuests(t *testing.T) {
	store := repository.NewMemoryStore()
	service := NewCatalogService(store, nil, nil)
	ctx := context.Background()

	june := time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC)
	summer, err := service.CreateCruise(ctx, &domain.Cruise{Title: "Summer", Duration: 7, AvailableDates: []time.Time{june}})
	require.NoError(t, err)
	_, err = service.CreateCruise(ctx, &domain.Cruise{Title: "Winter", Duration: 7, AvailableDates: []time.Time{june.AddDate(0, 6, 0)}})
	require.NoError(t, err)
	_, err = service.CreateCabinType(ctx, &domain.CabinType{CruiseID: summer.ID, Name: "Inside", Capacity: 2})
	require.NoError(t, err)

	byMonth, err := service.SearchCruises(ctx, SearchCriteria{DepartureMonth: "2026-06"})
	require.NoError(t, err)
	require.Len(t, byMonth, 1)
	assert.Equal(t, "Summer", byMonth[0].Title)

	bigParty, err := service.SearchCruises(ctx, SearchCriteria{Guests: 4})
	require.NoError(t, err)
	require.Len(t, bigParty, 1)
	assert.Equal(t, "Winter", bigParty[0].Title)
}

func TestCatalogService_CabinTypes(t *testing.T) {
	service, _ := seededService(t)
	ctx := context.Background()

	_, err := service.ListCabinTypes(ctx, 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = service.CreateCabinType(ctx, &domain.CabinType{CruiseID: 99, Name: "Suite"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	created, err := service.CreateCabinType(ctx, &domain.CabinType{CruiseID: 1, Name: "Suite", Capacity: 4, PriceModifier: 600})
	require.NoError(t, err)

	cabins, err := service.ListCabinTypes(ctx, 1)
	require.NoError(t, err)
	require.Len(t, cabins, 1)
	assert.Equal(t, created.ID, cabins[0].ID)

	_, err = service.ListCruisesByDestination(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	byDestination, err := service.ListCruisesByDestination(ctx, 2)
	require.NoError(t, err)
	require.Len(t, byDestination, 1)
	assert.Equal(t, "Greek Isles Explorer", byDestination[0].Title)
}
