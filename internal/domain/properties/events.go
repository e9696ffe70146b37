package properties

import "time"

type PropertyImportedEvent struct {
	PropertyID ID        `json:"property_id"`
	Source     string    `json:"source"`
	At         time.Time `json:"at"`
}

func (e PropertyImportedEvent) EventName() string     { return "property.imported" }
func (e PropertyImportedEvent) AggregateID() string   { return e.PropertyID.String() }
func (e PropertyImportedEvent) OccurredAt() time.Time { return e.At }

type CatalogClearedEvent struct {
	Removed int       `json:"removed"`
	At      time.Time `json:"at"`
}

func (e CatalogClearedEvent) EventName() string     { return "catalog.cleared" }
func (e CatalogClearedEvent) AggregateID() string   { return "catalog" }
func (e CatalogClearedEvent) OccurredAt() time.Time { return e.At }
