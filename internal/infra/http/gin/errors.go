package ginserver

import (
	"errors"
	"fmt"
	"net/http"

	gin "github.com/gin-gonic/gin"

	propertiesapp "rentals/internal/app/handlers/properties"
	"rentals/internal/app/queries"
	"rentals/internal/domain/pricing"
	"rentals/internal/domain/properties"
	"rentals/internal/domain/shared/daterange"
	"rentals/internal/domain/shared/geo"
)

var errInvalidParam = errors.New("invalid parameter")

// paramError is a 400 whose message is safe to show as is.
type paramError struct {
	msg string
}

func (e paramError) Error() string { return e.msg }

func (e paramError) Is(target error) bool { return target == errInvalidParam }

func invalidParam(msg string) error {
	return paramError{msg: msg}
}

func writeError(c *gin.Context, err error, extra ...gin.H) {
	status, msg := classify(err)
	body := gin.H{"error": msg}
	for _, e := range extra {
		for k, v := range e {
			body[k] = v
		}
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, body)
}

func classify(err error) (int, string) {
	var perr paramError
	switch {
	case errors.As(err, &perr):
		return http.StatusBadRequest, perr.msg
	case errors.Is(err, properties.ErrNotFound):
		return http.StatusNotFound, "Property not found"
	case errors.Is(err, propertiesapp.ErrPageNotFound):
		return http.StatusNotFound, "Invalid page."
	case errors.Is(err, propertiesapp.ErrDatesRequired):
		return http.StatusBadRequest, "check_in and check_out dates are required"
	case errors.Is(err, pricing.ErrInvalidRange), errors.Is(err, daterange.ErrInvalidRange):
		return http.StatusBadRequest, "check_out must be after check_in"
	case errors.Is(err, pricing.ErrStayTooLong):
		return http.StatusBadRequest, fmt.Sprintf("stays are limited to %d nights", pricing.MaxNights)
	case errors.Is(err, daterange.ErrInvalidDate):
		return http.StatusBadRequest, "Invalid date format. Use YYYY-MM-DD"
	case errors.Is(err, propertiesapp.ErrCoordinatesRequired):
		return http.StatusBadRequest, "latitude and longitude are required"
	case errors.Is(err, propertiesapp.ErrInvalidRadius):
		return http.StatusBadRequest, "radius must be a positive number of kilometers"
	case errors.Is(err, geo.ErrInvalidPoint):
		return http.StatusBadRequest, "latitude must be in [-90, 90] and longitude in [-180, 180]"
	case errors.Is(err, queries.ErrHandlerNotFound), errors.Is(err, queries.ErrNilBus):
		return http.StatusServiceUnavailable, "catalog unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
