package handlers

import (
	"fmt"
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	apperrors "marketplace/internal/errors"
	"marketplace/internal/services"
)

// ListingHandler handles HTTP requests for listings.
type ListingHandler struct {
	service  *services.ListingService
	validate *validator.Validate
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(service *services.ListingService) *ListingHandler {
	return &ListingHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the listing routes with the Fiber app.
func (h *ListingHandler) RegisterRoutes(router fiber.Router) {
	listingRoutes := router.Group("/listings")
	listingRoutes.Get("/", h.HandleSearchListings)
	listingRoutes.Get("/:id", h.HandleGetListing)
	listingRoutes.Post("/", h.HandleCreateListing)
	listingRoutes.Put("/:id", h.HandleUpdateListing)
	listingRoutes.Delete("/:id", h.HandleDeleteListing)
}

// HandleSearchListings serves the filtered, sorted, paginated listing view.
// Parameter ranges are checked here, before the query engine runs.
func (h *ListingHandler) HandleSearchListings(c *fiber.Ctx) error {
	page, err := parseIntQuery(c, "page", 1)
	if err != nil || page < 1 {
		return respondError(c, apperrors.ErrInvalidSearchParams)
	}
	pageSize, err := parseIntQuery(c, "page_size", services.DefaultPageSize)
	if err != nil || pageSize < 1 || pageSize > services.MaxPageSize {
		return respondError(c, apperrors.ErrInvalidSearchParams)
	}
	minPrice, err := parseFloatQuery(c, "min_price")
	if err != nil || (minPrice != nil && *minPrice < 0) {
		return respondError(c, apperrors.ErrInvalidSearchParams)
	}
	maxPrice, err := parseFloatQuery(c, "max_price")
	if err != nil || (maxPrice != nil && *maxPrice < 0) {
		return respondError(c, apperrors.ErrInvalidSearchParams)
	}

	result, err := h.service.Search(c.Context(), services.SearchParams{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Page:     page,
		PageSize: pageSize,
		Sort:     c.Query("sort"),
	})
	if err != nil {
		log.Printf("Error searching listings: %v", err)
		return respondError(c, err)
	}
	return c.JSON(result)
}

// HandleGetListing retrieves a single listing by its ID. The visibility flag
// is ignored on direct lookup so sellers can inspect deactivated listings.
func (h *ListingHandler) HandleGetListing(c *fiber.Ctx) error {
	id, ok := parseIDParam(c)
	if !ok {
		return nil
	}

	listing, err := h.service.GetListing(c.Context(), id)
	if err != nil {
		log.Printf("Error getting listing %d: %v", id, err)
		return respondError(c, err)
	}
	return c.JSON(listing)
}

// HandleCreateListing creates a new listing for an existing seller.
func (h *ListingHandler) HandleCreateListing(c *fiber.Ctx) error {
	var input services.CreateListingInput
	if err := c.BodyParser(&input); err != nil {
		log.Printf("Error parsing create listing body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(input); err != nil {
		return respondValidationError(c, err)
	}

	listing, err := h.service.CreateListing(c.Context(), input)
	if err != nil {
		log.Printf("Error creating listing: %v", err)
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(listing)
}

// HandleUpdateListing applies a partial patch to an existing listing. Fields
// absent from the body are left untouched.
func (h *ListingHandler) HandleUpdateListing(c *fiber.Ctx) error {
	id, ok := parseIDParam(c)
	if !ok {
		return nil
	}

	var input services.UpdateListingInput
	if err := c.BodyParser(&input); err != nil {
		log.Printf("Error parsing update listing body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(input); err != nil {
		return respondValidationError(c, err)
	}

	listing, err := h.service.UpdateListing(c.Context(), id, input)
	if err != nil {
		log.Printf("Error updating listing %d: %v", id, err)
		return respondError(c, err)
	}
	return c.JSON(listing)
}

// HandleDeleteListing permanently removes a listing.
func (h *ListingHandler) HandleDeleteListing(c *fiber.Ctx) error {
	id, ok := parseIDParam(c)
	if !ok {
		return nil
	}

	if err := h.service.DeleteListing(c.Context(), id); err != nil {
		log.Printf("Error deleting listing %d: %v", id, err)
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// respondError maps a domain error to its HTTP representation.
func respondError(c *fiber.Ctx, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	return c.Status(httpErr.StatusCode).JSON(httpErr.ToErrorResponse())
}

// respondValidationError renders struct validation failures field by field.
func respondValidationError(c *fiber.Ctx, err error) error {
	errorMessages := make(map[string]string)
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// parseIDParam parses the :id path segment. On failure it writes the 400
// response itself and reports false.
func parseIDParam(c *fiber.Ctx) (uint, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Listing id must be a positive integer",
		})
		return 0, false
	}
	return uint(id), true
}

func parseIntQuery(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func parseFloatQuery(c *fiber.Ctx, key string) (*float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
