package dto

import "rentals/internal/domain/properties"

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

type Feature struct {
	Type       string            `json:"type"`
	ID         int64             `json:"id"`
	Geometry   PointGeometry     `json:"geometry"`
	Properties FeatureProperties `json:"properties"`
}

// PointGeometry carries coordinates in GeoJSON order: longitude, latitude.
type PointGeometry struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

type FeatureProperties struct {
	Name              string `json:"name"`
	PropertyType      string `json:"property_type"`
	BasePricePerNight string `json:"base_price_per_night"`
	Bedrooms          int    `json:"bedrooms"`
	Bathrooms         string `json:"bathrooms"`
}

func MapFeatureCollection(hits []properties.Hit) FeatureCollection {
	features := make([]Feature, 0, len(hits))
	for _, hit := range hits {
		p := hit.Property
		features = append(features, Feature{
			Type: "Feature",
			ID:   int64(p.ID),
			Geometry: PointGeometry{
				Type:        "Point",
				Coordinates: [2]float64{p.Location.Lon, p.Location.Lat},
			},
			Properties: FeatureProperties{
				Name:              p.Name,
				PropertyType:      string(p.Type),
				BasePricePerNight: p.BasePrice.Amount.StringFixed(2),
				Bedrooms:          p.Bedrooms,
				Bathrooms:         p.Bathrooms.StringFixed(1),
			},
		})
	}
	return FeatureCollection{Type: "FeatureCollection", Features: features}
}
