package repositories

import (
	"context"
	"sort"
	"sync"

	apperrors "marketplace/internal/errors"
	"marketplace/internal/models"
)

// MockListingRepository is an in-memory implementation of ListingRepository.
type MockListingRepository struct {
	listings map[uint]models.Listing
	nextID   uint
	mu       sync.RWMutex
}

// NewMockListingRepository creates a new instance of MockListingRepository.
func NewMockListingRepository() *MockListingRepository {
	return &MockListingRepository{
		listings: make(map[uint]models.Listing),
		nextID:   1,
	}
}

// Create adds a new listing, assigning an id when none is set.
func (r *MockListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if listing.ID == 0 {
		listing.ID = r.nextID
	}
	if listing.ID >= r.nextID {
		r.nextID = listing.ID + 1
	}
	r.listings[listing.ID] = *listing
	return nil
}

// GetByID returns a listing by its ID, regardless of IsActive.
func (r *MockListingRepository) GetByID(ctx context.Context, id uint) (*models.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	listing, ok := r.listings[id]
	if !ok {
		return nil, apperrors.ErrListingNotFound
	}
	return &listing, nil
}

// Update replaces an existing listing.
func (r *MockListingRepository) Update(ctx context.Context, listing *models.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[listing.ID]; !ok {
		return apperrors.ErrListingNotFound
	}
	r.listings[listing.ID] = *listing
	return nil
}

// Delete removes a listing by its ID.
func (r *MockListingRepository) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[id]; !ok {
		return apperrors.ErrListingNotFound
	}
	delete(r.listings, id)
	return nil
}

// FindActive returns active listings matching the filter, ordered by the
// filter's sort key. Ties keep insertion (id) order.
func (r *MockListingRepository) FindActive(ctx context.Context, filter ActiveFilter) ([]models.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uint, 0, len(r.listings))
	for id := range r.listings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	matched := make([]models.Listing, 0, len(ids))
	for _, id := range ids {
		l := r.listings[id]
		if !l.IsActive {
			continue
		}
		if filter.Category != "" && l.Category != filter.Category {
			continue
		}
		if filter.MinPrice != nil && l.Price < *filter.MinPrice {
			continue
		}
		if filter.MaxPrice != nil && l.Price > *filter.MaxPrice {
			continue
		}
		matched = append(matched, l)
	}

	switch filter.Sort {
	case SortPriceAsc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price < matched[j].Price })
	case SortPriceDesc:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].Price > matched[j].Price })
	default:
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	}

	return matched, nil
}
