// Package catalog is the housing catalog: regions, amenities and the
// housings listed in them, plus the use cases the dispatcher serves.
package catalog

import (
	"context"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/catalog/cache"
	"github.com/rise-and-shine/catalog/repository"
)

// Cache keys. Each holds the full collection of one entity type and is
// dropped whenever an entity of that type is created, see invalidate.
const (
	CacheKeyHousings  = "housings"
	CacheKeyRegions   = "regions"
	CacheKeyAmenities = "amenities"
)

// Relations that GetList can include.
const (
	RelationRegion = "region"
)

const (
	CodeHousingNotFound = "HOUSING_NOT_FOUND"
	CodeRegionNotFound  = "REGION_NOT_FOUND"
	CodeAmenityNotFound = "AMENITY_NOT_FOUND"
	CodeRegionCodeTaken = "REGION_CODE_TAKEN"
	CodeAmenityTaken    = "AMENITY_CODE_TAKEN"
)

const maxItemsOnPage = 100

// invalidate evicts key now, so later reads in the same request see its
// writes, and again once the transaction commits, so that a concurrent read
// which refilled key from pre-commit data does not outlive the commit.
func invalidate(ctx context.Context, svc *cache.Service, key string) error {
	if err := svc.Remove(ctx, key); err != nil {
		return errx.Wrap(err)
	}
	return repository.AfterCommit(ctx, func(ctx context.Context) error {
		return svc.Remove(ctx, key)
	})
}
