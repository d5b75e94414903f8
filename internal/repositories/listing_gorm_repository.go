package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "marketplace/internal/errors"
	"marketplace/internal/models"
)

// GORMListingRepository is a GORM implementation of ListingRepository.
type GORMListingRepository struct {
	db *gorm.DB
}

// NewGORMListingRepository creates a new instance of GORMListingRepository.
func NewGORMListingRepository(db *gorm.DB) *GORMListingRepository {
	return &GORMListingRepository{
		db: db,
	}
}

// Create inserts a new listing.
func (r *GORMListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

// GetByID retrieves a single listing by its ID, regardless of IsActive.
func (r *GORMListingRepository) GetByID(ctx context.Context, id uint) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to get listing %d: %w", id, err)
	}
	return &listing, nil
}

// Update persists all fields of an existing listing.
func (r *GORMListingRepository) Update(ctx context.Context, listing *models.Listing) error {
	res := r.db.WithContext(ctx).Save(listing)
	if res.Error != nil {
		return fmt.Errorf("failed to update listing %d: %w", listing.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		// Save does not return ErrRecordNotFound on a missing row.
		return apperrors.ErrListingNotFound
	}
	return nil
}

// Delete permanently removes a listing.
func (r *GORMListingRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Listing{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete listing %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrListingNotFound
	}
	return nil
}

// FindActive returns active listings matching the filter, ordered by the
// filter's sort key.
func (r *GORMListingRepository) FindActive(ctx context.Context, filter ActiveFilter) ([]models.Listing, error) {
	query := r.db.WithContext(ctx).Where("is_active = ?", true)

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}

	switch filter.Sort {
	case SortPriceAsc:
		query = query.Order("price ASC")
	case SortPriceDesc:
		query = query.Order("price DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var listings []models.Listing
	if err := query.Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to find active listings: %w", err)
	}
	return listings, nil
}
