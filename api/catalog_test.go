package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/oceanview/internal/domain"
	"github.com/Domenick1991/oceanview/internal/repository"
	"github.com/Domenick1991/oceanview/internal/service/catalog"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogRouter(t *testing.T) *gin.Engine {
	t.Helper()
	store := repository.NewMemoryStore()
	_, err := catalog.Seed(context.Background(), store, store)
	require.NoError(t, err)

	router := gin.New()
	NewCatalogHandler(catalog.NewCatalogService(store, nil, nil)).Register(router.Group("/api"))
	return router
}

func TestCatalogHandler_listCruises(t *testing.T) {
	router := newCatalogRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/cruises", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var cruises []domain.Cruise
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cruises))
	assert.Len(t, cruises, 4)
}

func TestCatalogHandler_getCruise(t *testing.T) {
	router := newCatalogRouter(t)

	tests := []struct {
		path   string
		status int
	}{
		{"/api/cruises/1", http.StatusOK},
		{"/api/cruises/999", http.StatusNotFound},
		{"/api/cruises/zero", http.StatusBadRequest},
		{"/api/destinations/1", http.StatusOK},
		{"/api/destinations/999", http.StatusNotFound},
		{"/api/cruises/destination/999", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest("GET", tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestCatalogHandler_search(t *testing.T) {
	router := newCatalogRouter(t)

	body, _ := json.Marshal(catalog.SearchCriteria{Destination: "Alaska"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/cruises/search", bytes.NewReader(body)))

	assert.Equal(t, http.StatusOK, w.Code)
	var cruises []domain.Cruise
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cruises))
	require.Len(t, cruises, 1)
	assert.Equal(t, "Alaskan Adventure", cruises[0].Title)
}

func TestCatalogHandler_search_BadBody(t *testing.T) {
	router := newCatalogRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/cruises/search", bytes.NewBufferString("{")))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogHandler_listAmenities(t *testing.T) {
	router := newCatalogRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/amenities", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var amenities []domain.Amenity
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &amenities))
	assert.Len(t, amenities, 6)
}
