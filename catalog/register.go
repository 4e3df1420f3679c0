package catalog

import (
	"github.com/code19m/errx"

	"github.com/rise-and-shine/catalog/cache"
	"github.com/rise-and-shine/catalog/cqrs"
	"github.com/rise-and-shine/catalog/cqrs/command/wrapper"
	"github.com/rise-and-shine/catalog/cqrs/query"
	"github.com/rise-and-shine/catalog/pagination"
)

// Register binds every catalog use case to d. Commands are validated before
// they run and execute in a transaction.
func Register(d *cqrs.Dispatcher, repos Repos, svc *cache.Service) error {
	registrations := []func() error{
		func() error {
			h := wrapper.NewValidateCommandWrapper[CreateHousing, *Housing]()(NewCreateHousingHandler(repos, svc))
			return cqrs.RegisterCommand(d, h, cqrs.Transactional())
		},
		func() error {
			h := wrapper.NewValidateCommandWrapper[CreateRegion, *Region]()(NewCreateRegionHandler(repos, svc))
			return cqrs.RegisterCommand(d, h, cqrs.Transactional())
		},
		func() error {
			h := wrapper.NewValidateCommandWrapper[CreateAmenity, *Amenity]()(NewCreateAmenityHandler(repos, svc))
			return cqrs.RegisterCommand(d, h, cqrs.Transactional())
		},
		func() error {
			return cqrs.RegisterQuery(d, query.Query[ListHousings, pagination.Response[*Housing]](NewListHousingsHandler(repos, svc)))
		},
		func() error {
			return cqrs.RegisterQuery(d, query.Query[SearchHousings, pagination.Response[*Housing]](NewSearchHousingsHandler(repos)))
		},
		func() error {
			return cqrs.RegisterQuery(d, query.Query[GetHousing, *Housing](NewGetHousingHandler(repos, svc)))
		},
		func() error {
			return cqrs.RegisterQuery(d, query.Query[ListRegions, pagination.Response[*Region]](NewListRegionsHandler(repos, svc)))
		},
		func() error {
			return cqrs.RegisterQuery(d, query.Query[ListAmenities, pagination.Response[*Amenity]](NewListAmenitiesHandler(repos, svc)))
		},
	}

	for _, register := range registrations {
		if err := register(); err != nil {
			return errx.Wrap(err)
		}
	}
	return nil
}
