package geo

import (
	"errors"
	"math"

	"github.com/mmcloughlin/geohash"
)

const (
	EarthRadiusKm = 6371.0088
	// HashPrecision is the geohash length stored with every property.
	HashPrecision = 9
)

var ErrInvalidPoint = errors.New("geo: latitude must be in [-90,90] and longitude in [-180,180]")

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64
	Lon float64
}

func NewPoint(lat, lon float64) (Point, error) {
	p := Point{Lat: lat, Lon: lon}
	if !p.Valid() {
		return Point{}, ErrInvalidPoint
	}
	return p, nil
}

func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Geohash encodes the point with the stored precision.
func (p Point) Geohash() string {
	return geohash.EncodeWithPrecision(p.Lat, p.Lon, HashPrecision)
}

// DistanceKm is the great-circle (haversine) distance between a and b.
func DistanceKm(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := lat2 - lat1
	dLon := toRadians(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * EarthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// RoundKm rounds a distance to two decimals the way list responses expose it.
func RoundKm(km float64) float64 {
	return math.Round(km*100) / 100
}

// cell heights in km for geohash lengths 1..9; widths are the same or double.
var cellHeightKm = []float64{0, 5000, 625, 156, 19.5, 4.89, 0.61, 0.153, 0.019, 0.0048}
var cellWidthKm = []float64{0, 5000, 1250, 156, 39.1, 4.89, 1.22, 0.153, 0.038, 0.0048}

// CoverPrefixes returns geohash prefixes whose cells together cover a circle of
// radiusKm around center. A nil result means the radius is too wide for
// bucketing and every point is a candidate.
func CoverPrefixes(center Point, radiusKm float64) []string {
	precision := coverPrecision(center.Lat, radiusKm)
	if precision == 0 {
		return nil
	}
	hash := geohash.EncodeWithPrecision(center.Lat, center.Lon, uint(precision))
	return append([]string{hash}, geohash.Neighbors(hash)...)
}

func coverPrecision(lat, radiusKm float64) int {
	if radiusKm <= 0 {
		radiusKm = 0.001
	}
	shrink := math.Cos(toRadians(lat))
	best := 0
	for precision := 1; precision < len(cellHeightKm); precision++ {
		cell := math.Min(cellHeightKm[precision], cellWidthKm[precision]*shrink)
		if cell < radiusKm {
			break
		}
		best = precision
	}
	return best
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
