package catalog

import (
	"context"

	"github.com/code19m/errx"
	"github.com/google/uuid"

	"github.com/rise-and-shine/catalog/cache"
	"github.com/rise-and-shine/catalog/dynquery"
	"github.com/rise-and-shine/catalog/pagination"
	"github.com/rise-and-shine/catalog/repository"
	"github.com/rise-and-shine/catalog/ucdef"
)

type CreateHousing struct {
	Name          string   `json:"name"            validate:"required,max=128"`
	Description   string   `json:"description"     validate:"max=2048"`
	RegionID      string   `json:"region_id"       validate:"required,uuid"`
	PricePerNight float64  `json:"price_per_night" validate:"gt=0"`
	Currency      string   `json:"currency"        validate:"required,currency"`
	Rooms         int      `json:"rooms"           validate:"gte=1,lte=64"`
	Available     bool     `json:"available"`
	AmenityIDs    []string `json:"amenity_ids"     validate:"dive,uuid"`
}

// CreateHousingHandler lists a new housing. Registered as transactional: the
// housing is staged before its amenities are checked, and an unknown amenity
// must leave nothing behind.
type CreateHousingHandler struct {
	repos Repos
	cache *cache.Service
}

var _ ucdef.UserAction[CreateHousing, *Housing] = (*CreateHousingHandler)(nil)

func NewCreateHousingHandler(repos Repos, svc *cache.Service) *CreateHousingHandler {
	return &CreateHousingHandler{repos: repos, cache: svc}
}

func (h *CreateHousingHandler) OperationID() string { return "create-housing" }

func (h *CreateHousingHandler) Execute(ctx context.Context, in CreateHousing) (*Housing, error) {
	exists, err := h.repos.Regions.ExistsByID(ctx, in.RegionID)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	if !exists {
		return nil, errx.New(
			"region does not exist",
			errx.WithCode(CodeRegionNotFound),
			errx.WithType(errx.T_NotFound),
			errx.WithDetails(errx.D{"region_id": in.RegionID}),
		)
	}

	housing := &Housing{
		ID:            uuid.NewString(),
		Name:          in.Name,
		Description:   in.Description,
		RegionID:      in.RegionID,
		PricePerNight: in.PricePerNight,
		Currency:      in.Currency,
		Rooms:         in.Rooms,
		Available:     in.Available,
		AmenityIDs:    in.AmenityIDs,
	}
	if err = h.repos.Housings.Add(ctx, housing); err != nil {
		return nil, errx.Wrap(err)
	}

	for _, id := range in.AmenityIDs {
		exists, err = h.repos.Amenities.ExistsByID(ctx, id)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		if !exists {
			return nil, errx.New(
				"unknown amenity",
				errx.WithCode(CodeAmenityNotFound),
				errx.WithType(errx.T_Validation),
				errx.WithFields(errx.M{"amenity_ids": "Unknown amenity " + id}),
			)
		}
	}

	if err = invalidate(ctx, h.cache, CacheKeyHousings); err != nil {
		return nil, err
	}
	return housing, nil
}

// ListHousings pages through the cached housing collection.
type ListHousings struct {
	dynquery.Params
}

type ListHousingsHandler struct {
	repos  Repos
	cache  *cache.Service
	engine *dynquery.Engine[*Housing]
}

var _ ucdef.UserAction[ListHousings, pagination.Response[*Housing]] = (*ListHousingsHandler)(nil)

func NewListHousingsHandler(repos Repos, svc *cache.Service) *ListHousingsHandler {
	return &ListHousingsHandler{
		repos:  repos,
		cache:  svc,
		engine: dynquery.NewEngine(HousingSchema, pagination.WithMaxItemsOnPage(maxItemsOnPage)),
	}
}

func (h *ListHousingsHandler) OperationID() string { return "list-housings" }

func (h *ListHousingsHandler) Execute(ctx context.Context, in ListHousings) (pagination.Response[*Housing], error) {
	items, err := cache.GetOrCreate(ctx, h.cache, CacheKeyHousings, func(ctx context.Context) ([]*Housing, error) {
		return h.repos.Housings.GetList(ctx, repository.Include(RelationRegion))
	})
	if err != nil {
		return pagination.Response[*Housing]{}, errx.Wrap(err)
	}
	return h.engine.Execute(ctx, dynquery.NewSliceSource(items), in.Params)
}

// SearchHousings runs the same query as ListHousings directly against the
// repository, bypassing the cache.
type SearchHousings struct {
	dynquery.Params
}

type SearchHousingsHandler struct {
	repos  Repos
	engine *dynquery.Engine[*Housing]
}

var _ ucdef.UserAction[SearchHousings, pagination.Response[*Housing]] = (*SearchHousingsHandler)(nil)

func NewSearchHousingsHandler(repos Repos) *SearchHousingsHandler {
	return &SearchHousingsHandler{
		repos:  repos,
		engine: dynquery.NewEngine(HousingSchema, pagination.WithMaxItemsOnPage(maxItemsOnPage)),
	}
}

func (h *SearchHousingsHandler) OperationID() string { return "search-housings" }

func (h *SearchHousingsHandler) Execute(ctx context.Context, in SearchHousings) (pagination.Response[*Housing], error) {
	return h.engine.Execute(ctx, h.repos.Housings.Query(ctx), in.Params)
}

type GetHousing struct {
	ID string `json:"id" validate:"required,uuid"`
}

// GetHousingHandler looks the housing up in the cached collection first and
// asks the repository only when it is not there.
type GetHousingHandler struct {
	repos Repos
	cache *cache.Service
}

var _ ucdef.UserAction[GetHousing, *Housing] = (*GetHousingHandler)(nil)

func NewGetHousingHandler(repos Repos, svc *cache.Service) *GetHousingHandler {
	return &GetHousingHandler{repos: repos, cache: svc}
}

func (h *GetHousingHandler) OperationID() string { return "get-housing" }

func (h *GetHousingHandler) Execute(ctx context.Context, in GetHousing) (*Housing, error) {
	if housing, ok := cache.GetByID[*Housing](ctx, h.cache, CacheKeyHousings, in.ID); ok {
		return housing, nil
	}
	housing, err := h.repos.Housings.GetByID(ctx, in.ID)
	if err != nil {
		return nil, errx.Wrap(err)
	}
	return housing, nil
}
