// Package handler exposes the discovery engine over HTTP.
package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"

	"carparkfinder/internal/model"
	"carparkfinder/internal/service"
)

// CarparkHandler handles carpark discovery HTTP requests
type CarparkHandler struct {
	carparkService *service.CarparkService
}

// NewCarparkHandler creates a new carpark handler
func NewCarparkHandler(carparkService *service.CarparkService) *CarparkHandler {
	return &CarparkHandler{
		carparkService: carparkService,
	}
}

// Search handles GET /api/v1/carparks
//
// Query parameters:
//
//	search    - free-text search term ("near me" browses by proximity)
//	duration  - parking duration in hours; enables cost estimation
//	day_type  - weekday (default), saturday or sunday
//	lat, lng  - user coordinates; attaches distance_km to results
//	sort      - "distance" to order results by proximity
func (h *CarparkHandler) Search(c *gin.Context) {
	req := &model.QueryRequest{
		SearchTerm: c.Query("search"),
		DayType:    model.DayTypeWeekday,
	}

	if raw := c.Query("duration"); raw != "" {
		duration, err := strconv.ParseFloat(raw, 64)
		if err != nil || duration <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid duration: must be a positive number of hours"})
			return
		}
		req.DurationHours = duration
	}

	if raw := c.Query("day_type"); raw != "" {
		dayType := model.DayType(strings.ToLower(raw))
		if !dayType.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid day_type: must be weekday, saturday or sunday"})
			return
		}
		req.DayType = dayType
	}

	loc, locErr := parseLocation(c.Query("lat"), c.Query("lng"))
	if locErr != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": locErr})
		return
	}
	req.UserLocation = loc

	if sortMode := c.Query("sort"); sortMode != "" {
		if sortMode != "distance" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sort: only \"distance\" is supported"})
			return
		}
		if req.UserLocation == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sort=distance requires lat and lng"})
			return
		}
		req.SortByDistance = true
	}

	response, err := h.carparkService.Search(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// parseLocation validates the lat/lng pair. Both or neither must be set.
// The returned string is a user-facing error message, empty on success.
func parseLocation(latRaw, lngRaw string) (*orb.Point, string) {
	if latRaw == "" && lngRaw == "" {
		return nil, ""
	}
	if latRaw == "" || lngRaw == "" {
		return nil, "lat and lng must be provided together"
	}

	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, "Invalid lat: must be a number between -90 and 90"
	}
	lng, err := strconv.ParseFloat(lngRaw, 64)
	if err != nil || lng < -180 || lng > 180 {
		return nil, "Invalid lng: must be a number between -180 and 180"
	}

	return &orb.Point{lng, lat}, ""
}
