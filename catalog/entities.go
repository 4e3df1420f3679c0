package catalog

import (
	"github.com/uptrace/bun"

	"github.com/rise-and-shine/catalog/pg"
)

type Region struct {
	bun.BaseModel `bun:"table:regions,alias:r" json:"-" msgpack:"-"`

	ID   string `bun:"id,pk"           json:"id"   msgpack:"id"`
	Code string `bun:"code,notnull"    json:"code" msgpack:"code"`
	Name string `bun:"name,notnull"    json:"name" msgpack:"name"`

	pg.Timestamps `bun:",extend"`
}

func (r *Region) GetID() string { return r.ID }

type Amenity struct {
	bun.BaseModel `bun:"table:amenities,alias:a" json:"-" msgpack:"-"`

	ID   string `bun:"id,pk"        json:"id"   msgpack:"id"`
	Code string `bun:"code,notnull" json:"code" msgpack:"code"`
	Name string `bun:"name,notnull" json:"name" msgpack:"name"`

	pg.Timestamps `bun:",extend"`
}

func (a *Amenity) GetID() string { return a.ID }

// Housing is a place to stay. Region is only set when the region relation
// was included.
type Housing struct {
	bun.BaseModel `bun:"table:housings,alias:h" json:"-" msgpack:"-"`

	ID            string   `bun:"id,pk"                  json:"id"              msgpack:"id"`
	Name          string   `bun:"name,notnull"           json:"name"            msgpack:"name"`
	Description   string   `bun:"description"            json:"description"     msgpack:"description"`
	RegionID      string   `bun:"region_id,notnull"      json:"region_id"       msgpack:"region_id"`
	PricePerNight float64  `bun:"price_per_night"        json:"price_per_night" msgpack:"price_per_night"`
	Currency      string   `bun:"currency"               json:"currency"        msgpack:"currency"`
	Rooms         int      `bun:"rooms"                  json:"rooms"           msgpack:"rooms"`
	Available     bool     `bun:"available"              json:"available"       msgpack:"available"`
	AmenityIDs    []string `bun:"amenity_ids,array"      json:"amenity_ids"     msgpack:"amenity_ids"`
	Region        *Region  `bun:"rel:belongs-to,join:region_id=id" json:"region,omitempty" msgpack:"region,omitempty"`

	pg.Timestamps `bun:",extend"`
}

func (h *Housing) GetID() string { return h.ID }
