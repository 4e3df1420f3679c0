package catalog

import (
	"time"

	"github.com/rise-and-shine/catalog/dynquery"
)

// Field schemas for the dynamic query engine. Column names match the bun
// tags of the entities.
//
//nolint:gochecknoglobals // immutable after init
var (
	HousingSchema = dynquery.MustSchema(
		dynquery.Opaque[*Housing]("id", "id"),
		dynquery.Text("name", "name", func(h *Housing) string { return h.Name }),
		dynquery.Text("description", "description", func(h *Housing) string { return h.Description }),
		dynquery.Text("currency", "currency", func(h *Housing) string { return h.Currency }),
		dynquery.Opaque[*Housing]("region_id", "region_id"),
		dynquery.Float("price_per_night", "price_per_night", func(h *Housing) float64 { return h.PricePerNight }),
		dynquery.Integer("rooms", "rooms", func(h *Housing) int { return h.Rooms }),
		dynquery.Bool("available", "available", func(h *Housing) bool { return h.Available }),
		dynquery.Time("created_at", "created_at", func(h *Housing) time.Time { return h.CreatedAt }),
	)

	RegionSchema = dynquery.MustSchema(
		dynquery.Opaque[*Region]("id", "id"),
		dynquery.Text("code", "code", func(r *Region) string { return r.Code }),
		dynquery.Text("name", "name", func(r *Region) string { return r.Name }),
		dynquery.Time("created_at", "created_at", func(r *Region) time.Time { return r.CreatedAt }),
	)

	AmenitySchema = dynquery.MustSchema(
		dynquery.Opaque[*Amenity]("id", "id"),
		dynquery.Text("code", "code", func(a *Amenity) string { return a.Code }),
		dynquery.Text("name", "name", func(a *Amenity) string { return a.Name }),
	)
)
