package repositories

import (
	"context"

	"marketplace/internal/models"
)

// Sort keys accepted by ListingRepository.FindActive. Anything else falls
// back to newest-first by creation time.
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortDateDesc  = "date_desc"
)

// ActiveFilter narrows the set of active listings returned by FindActive.
// Nil price bounds are open-ended; an empty category matches everything.
// Free-text matching is deliberately not part of the filter: it is applied
// by the query engine as a portable predicate.
type ActiveFilter struct {
	Category string
	MinPrice *float64
	MaxPrice *float64
	Sort     string
}

// ListingRepository defines the interface for listing data access.
type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	GetByID(ctx context.Context, id uint) (*models.Listing, error)
	Update(ctx context.Context, listing *models.Listing) error
	Delete(ctx context.Context, id uint) error
	// FindActive returns active listings matching the filter, ordered by the
	// filter's sort key. GetByID intentionally ignores IsActive.
	FindActive(ctx context.Context, filter ActiveFilter) ([]models.Listing, error)
}
