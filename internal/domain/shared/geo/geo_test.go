package geo

import (
	"math"
	"strings"
	"testing"
)

func TestDistanceKm(t *testing.T) {
	nyc := Point{Lat: 40.7128, Lon: -74.0060}
	la := Point{Lat: 34.0522, Lon: -118.2437}
	got := DistanceKm(nyc, la)
	if math.Abs(got-3936) > 10 {
		t.Errorf("NYC-LA: got %.1f km, want ~3936", got)
	}
	if DistanceKm(nyc, nyc) != 0 {
		t.Error("distance to self should be zero")
	}
}

func TestNewPointValidation(t *testing.T) {
	if _, err := NewPoint(91, 0); err != ErrInvalidPoint {
		t.Errorf("lat 91: got %v, want ErrInvalidPoint", err)
	}
	if _, err := NewPoint(0, -181); err != ErrInvalidPoint {
		t.Errorf("lon -181: got %v, want ErrInvalidPoint", err)
	}
	if _, err := NewPoint(-33.86, 151.2); err != nil {
		t.Errorf("sydney: %v", err)
	}
}

func TestCoverPrefixesContainNearbyPoints(t *testing.T) {
	center := Point{Lat: 40.7580, Lon: -73.9855}
	prefixes := CoverPrefixes(center, 10)
	if len(prefixes) != 9 {
		t.Fatalf("prefixes: got %d, want 9", len(prefixes))
	}
	nearby := []Point{
		{Lat: 40.7484, Lon: -73.9857},
		{Lat: 40.6892, Lon: -74.0445},
		{Lat: 40.8296, Lon: -73.9262},
	}
	for _, p := range nearby {
		if DistanceKm(center, p) > 10 {
			continue
		}
		hash := p.Geohash()
		covered := false
		for _, prefix := range prefixes {
			if strings.HasPrefix(hash, prefix) {
				covered = true
				break
			}
		}
		if !covered {
			t.Errorf("%v (%s) is within 10km but not covered by %v", p, hash, prefixes)
		}
	}
}

func TestCoverPrefixesTooWide(t *testing.T) {
	if got := CoverPrefixes(Point{Lat: 0, Lon: 0}, 20000); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestRoundKm(t *testing.T) {
	if got := RoundKm(1.23456); got != 1.23 {
		t.Errorf("got %v, want 1.23", got)
	}
}
