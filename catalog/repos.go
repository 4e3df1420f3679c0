package catalog

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/rise-and-shine/catalog/repository"
	"github.com/rise-and-shine/catalog/repository/bunrepo"
	"github.com/rise-and-shine/catalog/repository/memrepo"
)

// Repos groups the repositories of the catalog entities.
type Repos struct {
	Housings  repository.Repo[*Housing, string]
	Regions   repository.Repo[*Region, string]
	Amenities repository.Repo[*Amenity, string]
}

// NewBunRepos returns repositories backed by postgres.
func NewBunRepos(db *bun.DB) Repos {
	return Repos{
		Housings: bunrepo.NewRepo(db,
			bunrepo.WithNotFoundCode[*Housing, string](CodeHousingNotFound),
			bunrepo.WithRelation[*Housing, string](RelationRegion, "Region"),
		),
		Regions: bunrepo.NewRepo(db,
			bunrepo.WithNotFoundCode[*Region, string](CodeRegionNotFound),
			bunrepo.WithConflictCode[*Region, string]("regions_code_key", CodeRegionCodeTaken),
		),
		Amenities: bunrepo.NewRepo(db,
			bunrepo.WithNotFoundCode[*Amenity, string](CodeAmenityNotFound),
			bunrepo.WithConflictCode[*Amenity, string]("amenities_code_key", CodeAmenityTaken),
		),
	}
}

// NewMemRepos returns repositories kept in db.
func NewMemRepos(db *memrepo.DB) Repos {
	regions := memrepo.NewRepo(db, "regions",
		memrepo.WithNotFoundCode[*Region, string](CodeRegionNotFound),
	)
	return Repos{
		Housings: memrepo.NewRepo(db, "housings",
			memrepo.WithNotFoundCode[*Housing, string](CodeHousingNotFound),
			memrepo.WithRelation[*Housing, string](RelationRegion, regionLoader(regions)),
		),
		Regions: regions,
		Amenities: memrepo.NewRepo(db, "amenities",
			memrepo.WithNotFoundCode[*Amenity, string](CodeAmenityNotFound),
		),
	}
}

// regionLoader attaches regions to copies of the housings so that rows
// stored in the in-memory table are never mutated.
func regionLoader(regions repository.Repo[*Region, string]) memrepo.Loader[*Housing] {
	return func(ctx context.Context, items []*Housing) error {
		for i, h := range items {
			region, err := regions.GetByID(ctx, h.RegionID)
			if err != nil {
				return err
			}
			withRegion := *h
			withRegion.Region = region
			items[i] = &withRegion
		}
		return nil
	}
}
