package catalog

import (
	"context"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/catalog/cqrs"
	"github.com/rise-and-shine/catalog/logger"
	"github.com/rise-and-shine/catalog/ucdef"
)

// SeedData describes a data set for Seeder. Housings refer to regions and
// amenities by code.
type SeedData struct {
	Regions   []CreateRegion
	Amenities []CreateAmenity
	Housings  []SeedHousing
}

type SeedHousing struct {
	CreateHousing
	RegionCode   string
	AmenityCodes []string
}

// Seeder creates a data set through the dispatcher, one command per entity,
// so every row goes through validation and its own transaction.
type Seeder struct {
	d      *cqrs.Dispatcher
	logger logger.Logger
}

var _ ucdef.ManualCommand[SeedData] = (*Seeder)(nil)

func NewSeeder(d *cqrs.Dispatcher, log logger.Logger) *Seeder {
	return &Seeder{d: d, logger: log.Named("catalog.seed")}
}

func (s *Seeder) OperationID() string { return "seed-catalog" }

func (s *Seeder) Execute(ctx context.Context, in SeedData) error {
	regions := make(map[string]string, len(in.Regions))
	for _, r := range in.Regions {
		region, err := cqrs.Send[CreateRegion, *Region](ctx, s.d, r)
		if err != nil {
			return errx.Wrap(err, errx.WithDetails(errx.D{"region_code": r.Code}))
		}
		regions[region.Code] = region.ID
	}

	amenities := make(map[string]string, len(in.Amenities))
	for _, a := range in.Amenities {
		amenity, err := cqrs.Send[CreateAmenity, *Amenity](ctx, s.d, a)
		if err != nil {
			return errx.Wrap(err, errx.WithDetails(errx.D{"amenity_code": a.Code}))
		}
		amenities[amenity.Code] = amenity.ID
	}

	for _, h := range in.Housings {
		cmd := h.CreateHousing
		cmd.RegionID = regions[h.RegionCode]
		for _, code := range h.AmenityCodes {
			cmd.AmenityIDs = append(cmd.AmenityIDs, amenities[code])
		}
		if _, err := cqrs.Send[CreateHousing, *Housing](ctx, s.d, cmd); err != nil {
			return errx.Wrap(err, errx.WithDetails(errx.D{"housing": cmd.Name}))
		}
	}

	s.logger.WithContext(ctx).
		With("regions", len(in.Regions)).
		With("amenities", len(in.Amenities)).
		With("housings", len(in.Housings)).
		Info("catalog seeded")
	return nil
}

// DemoData is a small data set for local runs.
func DemoData() SeedData {
	return SeedData{
		Regions: []CreateRegion{
			{Code: "tashkent", Name: "Tashkent"},
			{Code: "samarkand", Name: "Samarkand"},
			{Code: "bukhara", Name: "Bukhara"},
		},
		Amenities: []CreateAmenity{
			{Code: "wifi", Name: "Wi-Fi"},
			{Code: "parking", Name: "Parking"},
			{Code: "breakfast", Name: "Breakfast"},
			{Code: "pool", Name: "Swimming pool"},
		},
		Housings: []SeedHousing{
			{
				CreateHousing: CreateHousing{Name: "Chorsu apartment", PricePerNight: 35, Currency: "USD", Rooms: 2, Available: true},
				RegionCode:    "tashkent",
				AmenityCodes:  []string{"wifi"},
			},
			{
				CreateHousing: CreateHousing{Name: "Registan view hotel", PricePerNight: 80, Currency: "USD", Rooms: 1, Available: true},
				RegionCode:    "samarkand",
				AmenityCodes:  []string{"wifi", "breakfast"},
			},
			{
				CreateHousing: CreateHousing{Name: "Lyabi-Hauz guest house", PricePerNight: 45, Currency: "USD", Rooms: 3},
				RegionCode:    "bukhara",
				AmenityCodes:  []string{"breakfast", "parking"},
			},
			{
				CreateHousing: CreateHousing{Name: "Yunusabad family villa", PricePerNight: 150, Currency: "USD", Rooms: 5, Available: true},
				RegionCode:    "tashkent",
				AmenityCodes:  []string{"wifi", "parking", "pool"},
			},
		},
	}
}
