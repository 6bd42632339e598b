package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/valpere/meteopin/internal/services"
	"github.com/valpere/meteopin/pkg/openmeteo"
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	services *services.Services
	logger   *zerolog.Logger
}

func NewHandlers(svcs *services.Services, logger *zerolog.Logger) *Handlers {
	return &Handlers{
		services: svcs,
		logger:   logger,
	}
}

type addLocationRequest struct {
	AddressName       string   `json:"addressName"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	Region1DepthName  string   `json:"region1DepthName"`
	Region2DepthName  string   `json:"region2DepthName"`
	Region3DepthName  string   `json:"region3DepthName"`
	Region3DepthHName string   `json:"region3DepthHName"`
	DeviceID          string   `json:"deviceId"`
}

// upstreamQuery is the parameter bag for the proxy endpoints. Coordinates are
// kept as json.Number so the exact client-supplied text reaches the outbound
// URL unmodified; queryParam is an already-encoded fragment passed through
// verbatim.
type upstreamQuery struct {
	Latitude   json.Number `json:"latitude"`
	Longitude  json.Number `json:"longitude"`
	QueryParam string      `json:"queryParam"`
}

// AddLocation handles POST /api/sidemenu/locations.
func (h *Handlers) AddLocation(c *gin.Context) {
	var req addLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(services.ErrInvalidRequest.Error()))
		return
	}

	// Required fields are rejected before any store call.
	if req.AddressName == "" || req.Latitude == nil || req.Longitude == nil || req.DeviceID == "" {
		c.JSON(http.StatusBadRequest, errorResponse(services.ErrInvalidRequest.Error()))
		return
	}

	location, err := h.services.Favorites.AddLocation(c.Request.Context(), &services.AddLocationRequest{
		AddressName:       req.AddressName,
		Latitude:          *req.Latitude,
		Longitude:         *req.Longitude,
		Region1DepthName:  req.Region1DepthName,
		Region2DepthName:  req.Region2DepthName,
		Region3DepthName:  req.Region3DepthName,
		Region3DepthHName: req.Region3DepthHName,
		DeviceID:          req.DeviceID,
	})
	if err != nil {
		status, message := mapError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	message := fmt.Sprintf("%s has been added to favorites", req.AddressName)
	c.JSON(http.StatusCreated, successResponse(message, location))
}

// ListLocations handles GET /api/sidemenu/locations.
func (h *Handlers) ListLocations(c *gin.Context) {
	deviceID := c.Query("deviceId")
	if deviceID == "" {
		c.JSON(http.StatusBadRequest, errorResponse(services.ErrInvalidRequest.Error()))
		return
	}

	locations, err := h.services.Favorites.ListLocations(c.Request.Context(), deviceID)
	if err != nil {
		status, message := mapError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("favorite locations retrieved", locations))
}

// DeleteLocation handles DELETE /api/sidemenu/locations.
func (h *Handlers) DeleteLocation(c *gin.Context) {
	latitude, longitude, deviceID, ok := coordinateParams(c)
	if !ok {
		return
	}

	addressName, err := h.services.Favorites.DeleteLocation(c.Request.Context(), latitude, longitude, deviceID)
	if err != nil {
		status, message := mapError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	message := fmt.Sprintf("%s has been removed from favorites", addressName)
	c.JSON(http.StatusOK, successResponse(message, nil))
}

// UpdateSortOrder handles PATCH /api/sidemenu/locations/sort-order.
func (h *Handlers) UpdateSortOrder(c *gin.Context) {
	latitude, longitude, deviceID, ok := coordinateParams(c)
	if !ok {
		return
	}

	sortOrder, err := strconv.Atoi(c.Query("sortOrder"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(services.ErrInvalidRequest.Error()))
		return
	}

	if err := h.services.Favorites.UpdateSortOrder(c.Request.Context(), latitude, longitude, deviceID, sortOrder); err != nil {
		status, message := mapError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("sort order updated", nil))
}

// CheckDuplicate handles GET /api/sidemenu/locations/check-duplicate.
// The body is a bare boolean, not the envelope.
func (h *Handlers) CheckDuplicate(c *gin.Context) {
	latitude, longitude, deviceID, ok := coordinateParams(c)
	if !ok {
		return
	}

	isDuplicate, err := h.services.Favorites.CheckDuplicate(c.Request.Context(), latitude, longitude, deviceID)
	if err != nil {
		status, message := mapError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, isDuplicate)
}

// Weather handles POST /api/weather.
func (h *Handlers) Weather(c *gin.Context) {
	h.proxy(c, openmeteo.FlagWeather)
}

// AirPollution handles POST /api/airPollution.
func (h *Handlers) AirPollution(c *gin.Context) {
	h.proxy(c, openmeteo.FlagAirPollution)
}

func (h *Handlers) proxy(c *gin.Context, flag string) {
	var query upstreamQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(services.ErrInvalidRequest.Error()))
		return
	}

	if query.Latitude == "" || query.Longitude == "" {
		c.JSON(http.StatusBadRequest, errorResponse(services.ErrInvalidRequest.Error()))
		return
	}

	payload, err := h.services.Weather.Execute(c.Request.Context(), flag, openmeteo.Query{
		Latitude:  query.Latitude.String(),
		Longitude: query.Longitude.String(),
		RawParams: query.QueryParam,
	})
	if err != nil {
		status, message := mapError(err)
		c.JSON(status, errorResponse(message))
		return
	}

	c.JSON(http.StatusOK, successResponse("upstream data retrieved", payload))
}

// coordinateParams parses the latitude/longitude/deviceId triple every
// coordinate-identified endpoint shares. Writes the 400 itself on failure.
func coordinateParams(c *gin.Context) (float64, float64, string, bool) {
	latitude, latErr := strconv.ParseFloat(c.Query("latitude"), 64)
	longitude, lonErr := strconv.ParseFloat(c.Query("longitude"), 64)
	deviceID := c.Query("deviceId")

	if latErr != nil || lonErr != nil || deviceID == "" {
		c.JSON(http.StatusBadRequest, errorResponse(services.ErrInvalidRequest.Error()))
		return 0, 0, "", false
	}

	return latitude, longitude, deviceID, true
}
