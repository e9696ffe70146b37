package postgres

import (
	"fmt"
	"strings"

	"rentals/internal/domain/properties"
)

type queryBuilder struct {
	conditions []string
	args       []interface{}
	argId      int
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{argId: 1, args: make([]interface{}, 0)}
}

// arg binds v and returns its placeholder.
func (qb *queryBuilder) arg(v interface{}) string {
	qb.args = append(qb.args, v)
	p := fmt.Sprintf("$%d", qb.argId)
	qb.argId++
	return p
}

func (qb *queryBuilder) addCondition(condition string, fieldName string, arg interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf(condition, fieldName, qb.arg(arg)))
}

func (qb *queryBuilder) where() string {
	if len(qb.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(qb.conditions, " AND ")
}

// applyFilters translates every attribute filter and the proximity circle.
// Availability is decided by the caller from bookings.
func applyFilters(params properties.SearchParams) (*queryBuilder, string) {
	qb := newQueryBuilder()
	distance := "NULL::float8"

	if params.MinPrice.Valid {
		qb.addCondition("%s >= %s", "p.base_price_per_night", params.MinPrice.Decimal)
	}
	if params.MaxPrice.Valid {
		qb.addCondition("%s <= %s", "p.base_price_per_night", params.MaxPrice.Decimal)
	}
	if params.Bedrooms != nil {
		qb.addCondition("%s = %s", "p.bedrooms", *params.Bedrooms)
	}
	if params.MinBedrooms != nil {
		qb.addCondition("%s >= %s", "p.bedrooms", *params.MinBedrooms)
	}
	if params.Bathrooms.Valid {
		qb.addCondition("%s = %s", "p.bathrooms", params.Bathrooms.Decimal)
	}
	if params.MinBathrooms.Valid {
		qb.addCondition("%s >= %s", "p.bathrooms", params.MinBathrooms.Decimal)
	}
	if params.Type != "" {
		qb.addCondition("%s = %s", "p.property_type", string(params.Type))
	}
	if params.City != "" {
		qb.addCondition("%s ILIKE %s", "p.city", likePattern(params.City))
	}
	if params.Country != "" {
		qb.addCondition("%s ILIKE %s", "p.country", likePattern(params.Country))
	}
	for _, amenity := range params.Amenities {
		qb.conditions = append(qb.conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM property_amenities a WHERE a.property_id = p.id AND a.name ILIKE %s)",
			qb.arg(likePattern(amenity))))
	}
	if params.MinGuests > 0 {
		qb.addCondition("%s >= %s", "p.max_guests", params.MinGuests)
	}
	if params.Text != "" {
		pattern := qb.arg(likePattern(params.Text))
		qb.conditions = append(qb.conditions, fmt.Sprintf(
			"(p.name ILIKE %[1]s OR p.description ILIKE %[1]s OR p.city ILIKE %[1]s OR p.address ILIKE %[1]s)", pattern))
	}
	if params.Near != nil {
		center := fmt.Sprintf("ST_SetSRID(ST_MakePoint(%s, %s), 4326)::geography",
			qb.arg(params.Near.Center.Lon), qb.arg(params.Near.Center.Lat))
		qb.conditions = append(qb.conditions, fmt.Sprintf("ST_DWithin(p.location, %s, %s)",
			center, qb.arg(params.Near.RadiusKm*1000)))
		distance = fmt.Sprintf("ST_Distance(p.location, %s) / 1000.0", center)
	}
	return qb, distance
}

var orderColumns = map[properties.OrderField]string{
	properties.OrderByPrice:     "p.base_price_per_night",
	properties.OrderByBedrooms:  "p.bedrooms",
	properties.OrderByBathrooms: "p.bathrooms",
	properties.OrderByCreated:   "p.created_at",
	properties.OrderByName:      "p.name",
	properties.OrderByDistance:  "distance_km",
}

func orderClause(o properties.Ordering) string {
	col, ok := orderColumns[o.Field]
	if !ok {
		col = "p.created_at"
	}
	dir := "ASC"
	if o.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf("ORDER BY %s %s, p.id ASC", col, dir)
}

// likePattern wraps s for a contains match, escaping LIKE wildcards.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}
