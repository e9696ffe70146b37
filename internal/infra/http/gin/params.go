package ginserver

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"rentals/internal/app/dto"
	"rentals/internal/domain/properties"
	"rentals/internal/domain/shared/daterange"
	"rentals/internal/domain/shared/geo"
)

// parseSearchParams reads the list filters. Malformed numbers are dropped the
// way the catalog always treated them; malformed dates and unknown property
// types are rejected.
func parseSearchParams(c *gin.Context) (properties.SearchParams, error) {
	params := properties.SearchParams{
		MinPrice:     optionalDecimal(c.Query("min_price")),
		MaxPrice:     optionalDecimal(c.Query("max_price")),
		Bedrooms:     optionalInt(c.Query("bedrooms")),
		MinBedrooms:  optionalInt(c.Query("bedrooms__gte")),
		Bathrooms:    optionalDecimal(c.Query("bathrooms")),
		MinBathrooms: optionalDecimal(c.Query("bathrooms__gte")),
		City:         c.Query("city"),
		Country:      c.Query("country"),
		Amenities:    splitCSV(c.Query("amenities")),
		Text:         c.Query("search"),
	}
	if guests := optionalInt(c.Query("max_guests")); guests != nil {
		params.MinGuests = *guests
	}
	if raw := strings.TrimSpace(c.Query("property_type")); raw != "" {
		t, ok := properties.ParseType(raw)
		if !ok {
			return properties.SearchParams{}, invalidParam(fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", raw))
		}
		params.Type = t
	}
	var err error
	if params.CheckIn, err = optionalDay(c.Query("check_in")); err != nil {
		return properties.SearchParams{}, err
	}
	if params.CheckOut, err = optionalDay(c.Query("check_out")); err != nil {
		return properties.SearchParams{}, err
	}
	params.Near = optionalProximity(c.Query("latitude"), c.Query("longitude"), c.Query("radius"))
	if raw := c.Query("ordering"); raw != "" {
		if o, ok := properties.ParseOrdering(strings.Split(raw, ",")[0]); ok {
			params.Ordering = &o
		}
	}
	return params, nil
}

// parsePaging returns 0 for a page that can never exist.
func parsePaging(c *gin.Context) (page, size int) {
	page = 1
	if raw := strings.TrimSpace(c.Query("page")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return 0, 0
		}
		page = v
	}
	size = properties.DefaultPageSize
	if v, err := strconv.Atoi(strings.TrimSpace(c.Query("page_size"))); err == nil && v > 0 {
		size = min(v, properties.MaxPageSize)
	}
	return page, size
}

func filtersApplied(c *gin.Context) dto.FiltersApplied {
	return dto.FiltersApplied{
		PropertyType: optionalString(c, "property_type"),
		City:         optionalString(c, "city"),
		MinPrice:     optionalString(c, "min_price"),
		MaxPrice:     optionalString(c, "max_price"),
		Geolocation:  c.Query("latitude") != "" && c.Query("longitude") != "",
	}
}

// pageURL rebuilds the request URL for another page; page 1 drops the param.
func pageURL(c *gin.Context, baseURL string, page int) *string {
	u := *c.Request.URL
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	origin := baseURL
	if origin == "" {
		origin = requestOrigin(c)
	}
	out := origin + u.Path
	if u.RawQuery != "" {
		out += "?" + u.RawQuery
	}
	return &out
}

func requestOrigin(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	host := c.Request.Host
	if fwd := c.GetHeader("X-Forwarded-Host"); fwd != "" {
		host = fwd
	}
	return (&url.URL{Scheme: scheme, Host: host}).String()
}

func optionalProximity(latRaw, lonRaw, radiusRaw string) *properties.Proximity {
	if latRaw == "" || lonRaw == "" {
		return nil
	}
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(latRaw), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(lonRaw), 64)
	if errLat != nil || errLon != nil {
		return nil
	}
	center, err := geo.NewPoint(lat, lon)
	if err != nil {
		return nil
	}
	radius := properties.DefaultRadiusKm
	if radiusRaw != "" {
		r, err := strconv.ParseFloat(strings.TrimSpace(radiusRaw), 64)
		if err != nil || r <= 0 {
			return nil
		}
		radius = r
	}
	return &properties.Proximity{Center: center, RadiusKm: radius}
}

func optionalDecimal(raw string) decimal.NullDecimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// optionalInt accepts "2" and "2.0" alike.
func optionalInt(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return &v
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsInteger() {
		return nil
	}
	v := int(d.IntPart())
	return &v
}

func optionalDay(raw string) (t time.Time, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return t, nil
	}
	return daterange.ParseDay(raw)
}

func optionalString(c *gin.Context, key string) *string {
	v, ok := c.GetQuery(key)
	if !ok {
		return nil
	}
	return &v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
