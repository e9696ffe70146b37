package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"
)

const apiVersion = "1.0"

// RootHandler describes the service and lists its endpoints.
func RootHandler(env string) gin.HandlerFunc {
	endpoints := gin.H{
		"properties":      "/api/properties",
		"property_detail": "/api/properties/{id}",
		"geojson":         "/api/properties/geojson",
		"nearby":          "/api/properties/nearby?latitude=52.52&longitude=13.40&radius=5",
		"availability":    "/api/properties/{id}/availability",
		"calculate_price": "/api/properties/{id}/calculate_price?check_in=YYYY-MM-DD&check_out=YYYY-MM-DD",
		"docs":            "/swagger",
	}
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "online",
			"message":   "Rental Property API",
			"version":   apiVersion,
			"env":       env,
			"endpoints": endpoints,
		})
	}
}
