package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"marketplace/internal/cache"
	apperrors "marketplace/internal/errors"
	"marketplace/internal/models"
	"marketplace/internal/repositories"
	"marketplace/pkg/rabbitmq"
)

const (
	// DefaultPageSize is the page window used when the caller supplies none.
	DefaultPageSize = 12
	// MaxPageSize caps the page window.
	MaxPageSize = 100

	listingCacheTTL = 5 * time.Minute
)

// CreateListingInput carries the caller-supplied fields for a new listing.
// Timestamps and the id are always server-assigned.
type CreateListingInput struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"omitempty,max=5000"`
	Price       float64  `json:"price" validate:"gte=0"`
	Category    string   `json:"category" validate:"required,max=50"`
	Condition   string   `json:"condition" validate:"omitempty,max=50"`
	Images      []string `json:"images"`
	Location    string   `json:"location" validate:"omitempty,max=100"`
	IsActive    *bool    `json:"is_active"`
	SellerID    uint     `json:"seller_id" validate:"required"`
}

// UpdateListingInput is a partial patch: nil fields are left untouched.
// SellerID is deliberately absent, ownership never changes.
type UpdateListingInput struct {
	Title       *string  `json:"title" validate:"omitempty,max=200"`
	Description *string  `json:"description" validate:"omitempty,max=5000"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category" validate:"omitempty,max=50"`
	Condition   *string  `json:"condition" validate:"omitempty,max=50"`
	Images      []string `json:"images"`
	Location    *string  `json:"location" validate:"omitempty,max=100"`
	IsActive    *bool    `json:"is_active"`
}

// SearchParams describe a filtered, sorted, paginated view over active
// listings. Nil price bounds are open-ended.
type SearchParams struct {
	Query    string
	Category string
	MinPrice *float64
	MaxPrice *float64
	Page     int
	PageSize int
	Sort     string
}

// SearchResult is one page of matches plus the total match count across all
// pages.
type SearchResult struct {
	Items    []models.Listing `json:"items"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// ListingService handles the listing lifecycle and search. Cache and message
// queue are optional collaborators: a nil client disables the concern.
type ListingService struct {
	listingRepo repositories.ListingRepository
	userRepo    repositories.UserRepository
	cache       *cache.Client
	mqClient    *rabbitmq.Client
}

// NewListingService creates a new ListingService.
func NewListingService(listingRepo repositories.ListingRepository, userRepo repositories.UserRepository, cacheClient *cache.Client, mqClient *rabbitmq.Client) *ListingService {
	return &ListingService{
		listingRepo: listingRepo,
		userRepo:    userRepo,
		cache:       cacheClient,
		mqClient:    mqClient,
	}
}

func listingCacheKey(id uint) string {
	return fmt.Sprintf("listing:%d", id)
}

// CreateListing validates the seller reference and persists a new listing
// with server-assigned timestamps. Nothing is persisted when the seller does
// not exist.
func (s *ListingService) CreateListing(ctx context.Context, input CreateListingInput) (*models.Listing, error) {
	if input.Price < 0 {
		return nil, apperrors.ErrInvalidPrice
	}

	if _, err := s.userRepo.GetByID(ctx, input.SellerID); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrSellerNotFound
		}
		return nil, err
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	now := time.Now()
	listing := &models.Listing{
		Title:       input.Title,
		Description: input.Description,
		Price:       input.Price,
		Category:    input.Category,
		Condition:   input.Condition,
		Images:      models.ImageList(input.Images),
		Location:    input.Location,
		IsActive:    isActive,
		CreatedAt:   now,
		UpdatedAt:   now,
		SellerID:    input.SellerID,
	}

	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, err
	}

	s.publishEvent("listing.created", listing)
	return listing, nil
}

// GetListing returns a listing by id regardless of its visibility flag.
// Reads go through the cache when one is configured.
func (s *ListingService) GetListing(ctx context.Context, id uint) (*models.Listing, error) {
	if data, _ := s.cache.Get(ctx, listingCacheKey(id)); data != nil {
		var cached models.Listing
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(listing); err == nil {
		_ = s.cache.Set(ctx, listingCacheKey(id), payload, listingCacheTTL)
	}
	return listing, nil
}

// UpdateListing applies only the fields present in the patch, refreshes
// UpdatedAt and persists the result.
func (s *ListingService) UpdateListing(ctx context.Context, id uint, input UpdateListingInput) (*models.Listing, error) {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Price != nil {
		if *input.Price < 0 {
			return nil, apperrors.ErrInvalidPrice
		}
		listing.Price = *input.Price
	}
	if input.Title != nil {
		listing.Title = *input.Title
	}
	if input.Description != nil {
		listing.Description = *input.Description
	}
	if input.Category != nil {
		listing.Category = *input.Category
	}
	if input.Condition != nil {
		listing.Condition = *input.Condition
	}
	if input.Images != nil {
		listing.Images = models.ImageList(input.Images)
	}
	if input.Location != nil {
		listing.Location = *input.Location
	}
	if input.IsActive != nil {
		listing.IsActive = *input.IsActive
	}

	listing.UpdatedAt = time.Now()

	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, listingCacheKey(id))
	s.publishEvent("listing.updated", listing)
	return listing, nil
}

// DeleteListing permanently removes a listing. This is a hard delete,
// distinct from flipping IsActive.
func (s *ListingService) DeleteListing(ctx context.Context, id uint) error {
	listing, err := s.listingRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.listingRepo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.cache.Delete(ctx, listingCacheKey(id))
	s.publishEvent("listing.deleted", listing)
	return nil
}

// Search builds the filtered, sorted, paginated view over active listings.
// Strict parameter validation belongs to the boundary layer; out-of-range
// paging values are clamped here so the window math stays safe.
func (s *ListingService) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	rows, err := s.listingRepo.FindActive(ctx, repositories.ActiveFilter{
		Category: params.Category,
		MinPrice: params.MinPrice,
		MaxPrice: params.MaxPrice,
		Sort:     params.Sort,
	})
	if err != nil {
		return nil, err
	}

	// The free-text match runs in-process as a lower-cased containment check
	// so behavior is identical across stores and correct for non-ASCII text,
	// which SQL LOWER/LIKE does not guarantee.
	matched := rows
	if params.Query != "" {
		needle := strings.ToLower(params.Query)
		matched = make([]models.Listing, 0, len(rows))
		for _, l := range rows {
			if strings.Contains(strings.ToLower(l.Title), needle) ||
				strings.Contains(strings.ToLower(l.Description), needle) {
				matched = append(matched, l)
			}
		}
	}

	// Total counts every match, independent of the page window.
	total := len(matched)

	items := []models.Listing{}
	offset := (page - 1) * pageSize
	if offset < total {
		end := offset + pageSize
		if end > total {
			end = total
		}
		items = matched[offset:end]
	}

	return &SearchResult{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// listingEvent is the envelope published to the message queue on every
// listing mutation.
type listingEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	ListingID  uint      `json:"listing_id"`
	SellerID   uint      `json:"seller_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// publishEvent emits a listing event. Publish failures are logged and never
// fail the originating request.
func (s *ListingService) publishEvent(eventType string, listing *models.Listing) {
	if s.mqClient == nil {
		return
	}

	event := listingEvent{
		EventID:    uuid.New().String(),
		Type:       eventType,
		ListingID:  listing.ID,
		SellerID:   listing.SellerID,
		OccurredAt: time.Now(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal %s event for listing %d: %v", eventType, listing.ID, err)
		return
	}
	if err := s.mqClient.Publish(eventType, body); err != nil {
		log.Printf("Warning: failed to publish %s event for listing %d: %v", eventType, listing.ID, err)
	}
}
