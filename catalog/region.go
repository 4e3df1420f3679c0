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

type CreateRegion struct {
	Code string `json:"code" validate:"required,slug,max=64"`
	Name string `json:"name" validate:"required,max=128"`
}

type CreateRegionHandler struct {
	repos Repos
	cache *cache.Service
}

var _ ucdef.UserAction[CreateRegion, *Region] = (*CreateRegionHandler)(nil)

func NewCreateRegionHandler(repos Repos, svc *cache.Service) *CreateRegionHandler {
	return &CreateRegionHandler{repos: repos, cache: svc}
}

func (h *CreateRegionHandler) OperationID() string { return "create-region" }

func (h *CreateRegionHandler) Execute(ctx context.Context, in CreateRegion) (*Region, error) {
	regions, err := listRegions(ctx, h.repos, h.cache)
	if err != nil {
		return nil, err
	}
	if lo.ContainsBy(regions, func(r *Region) bool { return strings.EqualFold(r.Code, in.Code) }) {
		return nil, errx.New(
			"region code is taken",
			errx.WithCode(CodeRegionCodeTaken),
			errx.WithType(errx.T_Conflict),
			errx.WithDetails(errx.D{"code": in.Code}),
		)
	}

	region := &Region{ID: uuid.NewString(), Code: in.Code, Name: in.Name}
	if err = h.repos.Regions.Add(ctx, region); err != nil {
		return nil, errx.Wrap(err)
	}

	if err = invalidate(ctx, h.cache, CacheKeyRegions); err != nil {
		return nil, err
	}
	return region, nil
}

type ListRegions struct {
	dynquery.Params
}

type ListRegionsHandler struct {
	repos  Repos
	cache  *cache.Service
	engine *dynquery.Engine[*Region]
}

var _ ucdef.UserAction[ListRegions, pagination.Response[*Region]] = (*ListRegionsHandler)(nil)

func NewListRegionsHandler(repos Repos, svc *cache.Service) *ListRegionsHandler {
	return &ListRegionsHandler{
		repos:  repos,
		cache:  svc,
		engine: dynquery.NewEngine(RegionSchema, pagination.WithMaxItemsOnPage(maxItemsOnPage)),
	}
}

func (h *ListRegionsHandler) OperationID() string { return "list-regions" }

func (h *ListRegionsHandler) Execute(ctx context.Context, in ListRegions) (pagination.Response[*Region], error) {
	regions, err := listRegions(ctx, h.repos, h.cache)
	if err != nil {
		return pagination.Response[*Region]{}, err
	}
	return h.engine.Execute(ctx, dynquery.NewSliceSource(regions), in.Params)
}

func listRegions(ctx context.Context, repos Repos, svc *cache.Service) ([]*Region, error) {
	regions, err := cache.GetOrCreate(ctx, svc, CacheKeyRegions, func(ctx context.Context) ([]*Region, error) {
		return repos.Regions.GetList(ctx)
	})
	return regions, errx.Wrap(err)
}
