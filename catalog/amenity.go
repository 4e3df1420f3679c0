package catalog

import (
	"context"
	"strings"

	"github.com/code19m/errx"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/rise-and-shine/catalog/cache"
	"github.com/rise-and-shine/catalog/dynquery"
	"github.com/rise-and-shine/catalog/pagination"
	"github.com/rise-and-shine/catalog/ucdef"
)

type CreateAmenity struct {
	Code string `json:"code" validate:"required,slug,max=64"`
	Name string `json:"name" validate:"required,max=128"`
}

type CreateAmenityHandler struct {
	repos Repos
	cache *cache.Service
}

var _ ucdef.UserAction[CreateAmenity, *Amenity] = (*CreateAmenityHandler)(nil)

func NewCreateAmenityHandler(repos Repos, svc *cache.Service) *CreateAmenityHandler {
	return &CreateAmenityHandler{repos: repos, cache: svc}
}

func (h *CreateAmenityHandler) OperationID() string { return "create-amenity" }

func (h *CreateAmenityHandler) Execute(ctx context.Context, in CreateAmenity) (*Amenity, error) {
	amenities, err := listAmenities(ctx, h.repos, h.cache)
	if err != nil {
		return nil, err
	}
	if lo.ContainsBy(amenities, func(a *Amenity) bool { return strings.EqualFold(a.Code, in.Code) }) {
		return nil, errx.New(
			"amenity code is taken",
			errx.WithCode(CodeAmenityTaken),
			errx.WithType(errx.T_Conflict),
			errx.WithDetails(errx.D{"code": in.Code}),
		)
	}

	amenity := &Amenity{ID: uuid.NewString(), Code: in.Code, Name: in.Name}
	if err = h.repos.Amenities.Add(ctx, amenity); err != nil {
		return nil, errx.Wrap(err)
	}

	if err = invalidate(ctx, h.cache, CacheKeyAmenities); err != nil {
		return nil, err
	}
	return amenity, nil
}

type ListAmenities struct {
	dynquery.Params
}

type ListAmenitiesHandler struct {
	repos  Repos
	cache  *cache.Service
	engine *dynquery.Engine[*Amenity]
}

var _ ucdef.UserAction[ListAmenities, pagination.Response[*Amenity]] = (*ListAmenitiesHandler)(nil)

func NewListAmenitiesHandler(repos Repos, svc *cache.Service) *ListAmenitiesHandler {
	return &ListAmenitiesHandler{
		repos:  repos,
		cache:  svc,
		engine: dynquery.NewEngine(AmenitySchema, pagination.WithMaxItemsOnPage(maxItemsOnPage)),
	}
}

func (h *ListAmenitiesHandler) OperationID() string { return "list-amenities" }

func (h *ListAmenitiesHandler) Execute(ctx context.Context, in ListAmenities) (pagination.Response[*Amenity], error) {
	amenities, err := listAmenities(ctx, h.repos, h.cache)
	if err != nil {
		return pagination.Response[*Amenity]{}, err
	}
	return h.engine.Execute(ctx, dynquery.NewSliceSource(amenities), in.Params)
}

func listAmenities(ctx context.Context, repos Repos, svc *cache.Service) ([]*Amenity, error) {
	amenities, err := cache.GetOrCreate(ctx, svc, CacheKeyAmenities, func(ctx context.Context) ([]*Amenity, error) {
		return repos.Amenities.GetList(ctx)
	})
	return amenities, errx.Wrap(err)
}
