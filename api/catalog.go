package api

import (
	"net/http"

	"github.com/Domenick1991/oceanview/internal/service/catalog"
	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	service catalog.CatalogUseCase
}

func NewCatalogHandler(service catalog.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{service: service}
}

func (h *CatalogHandler) Register(router *gin.RouterGroup) {
	router.GET("/destinations", h.listDestinations)
	router.GET("/destinations/:id", h.getDestination)

	router.GET("/cruises", h.listCruises)
	router.GET("/cruises/destination/:id", h.listByDestination)
	router.GET("/cruises/:id", h.getCruise)
	router.GET("/cruises/:id/cabins", h.listCabins)
	router.POST("/cruises/search", h.search)

	router.GET("/amenities", h.listAmenities)
}

func (h *CatalogHandler) listDestinations(c *gin.Context) {
	destinations, err := h.service.ListDestinations(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, destinations)
}

func (h *CatalogHandler) getDestination(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	destination, err := h.service.GetDestination(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, destination)
}

func (h *CatalogHandler) listCruises(c *gin.Context) {
	cruises, err := h.service.ListCruises(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cruises)
}

func (h *CatalogHandler) listByDestination(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	cruises, err := h.service.ListCruisesByDestination(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cruises)
}

func (h *CatalogHandler) getCruise(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	cruise, err := h.service.GetCruise(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cruise)
}

func (h *CatalogHandler) listCabins(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	cabins, err := h.service.ListCabinTypes(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cabins)
}

func (h *CatalogHandler) search(c *gin.Context) {
	var criteria catalog.SearchCriteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		badRequest(c, err.Error())
		return
	}
	cruises, err := h.service.SearchCruises(c.Request.Context(), criteria)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cruises)
}

func (h *CatalogHandler) listAmenities(c *gin.Context) {
	amenities, err := h.service.ListAmenities(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, amenities)
}
