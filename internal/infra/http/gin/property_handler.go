package ginserver

import (
	"net/http"
	"strconv"
	"strings"

	gin "github.com/gin-gonic/gin"

	"rentals/internal/app/dto"
	propertiesapp "rentals/internal/app/handlers/properties"
	"rentals/internal/app/queries"
	"rentals/internal/domain/properties"
	"rentals/internal/domain/shared/geo"
)

const nearbyExample = "/api/properties/nearby?latitude=52.52&longitude=13.40&radius=5"

// PropertyHandler wires catalog queries to HTTP.
type PropertyHandler struct {
	Queries queries.Bus
	// BaseURL prefixes pagination links; empty means derive from the request.
	BaseURL string
}

func (h PropertyHandler) List(c *gin.Context) {
	params, err := parseSearchParams(c)
	if err != nil {
		writeError(c, err)
		return
	}
	page, size := parsePaging(c)
	if page == 0 {
		writeError(c, propertiesapp.ErrPageNotFound)
		return
	}
	query := propertiesapp.SearchCatalogQuery{Params: params, Page: page, PageSize: size}
	result, err := queries.Ask[propertiesapp.SearchCatalogQuery, dto.PropertyPage](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	if result.HasNext() {
		result.Next = pageURL(c, h.BaseURL, result.Page+1)
	}
	if result.HasPrevious() {
		result.Previous = pageURL(c, h.BaseURL, result.Page-1)
	}
	result.FiltersApplied = filtersApplied(c)
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) Detail(c *gin.Context) {
	id, err := properties.ParseID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	result, err := queries.Ask[propertiesapp.GetPropertyQuery, dto.PropertyDetail](c.Request.Context(), h.Queries, propertiesapp.GetPropertyQuery{ID: id})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) GeoJSON(c *gin.Context) {
	params, err := parseSearchParams(c)
	if err != nil {
		writeError(c, err)
		return
	}
	result, err := queries.Ask[propertiesapp.GeoJSONQuery, dto.FeatureCollection](c.Request.Context(), h.Queries, propertiesapp.GeoJSONQuery{Params: params})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) Nearby(c *gin.Context) {
	latRaw, lonRaw := c.Query("latitude"), c.Query("longitude")
	if latRaw == "" || lonRaw == "" {
		writeError(c, propertiesapp.ErrCoordinatesRequired, gin.H{"example": nearbyExample})
		return
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(latRaw), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(lonRaw), 64)
	radius := properties.DefaultRadiusKm
	var errRadius error
	if raw := c.Query("radius"); raw != "" {
		radius, errRadius = strconv.ParseFloat(strings.TrimSpace(raw), 64)
	}
	if errLat != nil || errLon != nil || errRadius != nil {
		writeError(c, invalidParam("Invalid parameters: latitude, longitude and radius must be numbers"))
		return
	}
	query := propertiesapp.NearbyQuery{Center: &geo.Point{Lat: lat, Lon: lon}, RadiusKm: radius}
	result, err := queries.Ask[propertiesapp.NearbyQuery, dto.Nearby](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) Availability(c *gin.Context) {
	id, err := properties.ParseID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	result, err := queries.Ask[propertiesapp.AvailabilityQuery, dto.Availability](c.Request.Context(), h.Queries, propertiesapp.AvailabilityQuery{ID: id})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PropertyHandler) CalculatePrice(c *gin.Context) {
	id, err := properties.ParseID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	query := propertiesapp.CalculatePriceQuery{
		ID:       id,
		CheckIn:  c.Query("check_in"),
		CheckOut: c.Query("check_out"),
	}
	result, err := queries.Ask[propertiesapp.CalculatePriceQuery, dto.PriceQuote](c.Request.Context(), h.Queries, query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ PropertyHTTP = PropertyHandler{}
