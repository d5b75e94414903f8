package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"marketplace/internal/handlers"
	"marketplace/internal/models"
	"marketplace/internal/repositories"
	"marketplace/internal/services"
)

// setupApp builds a Fiber app backed by a named in-memory SQLite database.
// Cache and message queue are left nil: both are optional collaborators.
func setupApp(t *testing.T, dbName string) (*fiber.App, *services.UserService, *services.ListingService) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", dbName)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Listing{}))

	listingRepo := repositories.NewGORMListingRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	userService := services.NewUserService(userRepo)
	listingService := services.NewListingService(listingRepo, userRepo, nil, nil)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	handlers.NewUserHandler(userService).RegisterRoutes(apiV1)
	handlers.NewListingHandler(listingService).RegisterRoutes(apiV1)

	return app, userService, listingService
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func testCtx() context.Context {
	return context.Background()
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestListUsersEndpoint(t *testing.T) {
	app, userService, _ := setupApp(t, "it_users")

	_, err := userService.CreateUser(testCtx(), services.CreateUserInput{Name: "Admin User", Email: "admin@example.com", Phone: "+7 999 000 00 00"})
	require.NoError(t, err)
	_, err = userService.CreateUser(testCtx(), services.CreateUserInput{Name: "Student One", Email: "student1@example.com"})
	require.NoError(t, err)

	resp := doJSON(t, app, http.MethodGet, "/api/v1/users", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var users []models.User
	decodeBody(t, resp, &users)
	require.Len(t, users, 2)
	assert.Equal(t, "admin@example.com", users[0].Email)
	assert.Equal(t, "Student One", users[1].Name)
}

func TestListingLifecycleEndpoints(t *testing.T) {
	app, userService, _ := setupApp(t, "it_lifecycle")

	seller, err := userService.CreateUser(testCtx(), services.CreateUserInput{Name: "Seller", Email: "seller@example.com"})
	require.NoError(t, err)

	// Create
	resp := doJSON(t, app, http.MethodPost, "/api/v1/listings", map[string]interface{}{
		"title":       "Велосипед",
		"description": "Горный, 21 скорость",
		"price":       500.0,
		"category":    "Спорт",
		"condition":   "Б/У",
		"images":      []string{"bike-1.jpg", "bike-2.jpg"},
		"location":    "Общежитие №3",
		"seller_id":   seller.ID,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Listing
	decodeBody(t, resp, &created)
	assert.NotZero(t, created.ID)
	assert.True(t, created.IsActive)
	assert.True(t, created.CreatedAt.Equal(created.UpdatedAt))
	assert.Equal(t, models.ImageList{"bike-1.jpg", "bike-2.jpg"}, created.Images)

	// Get
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/listings/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var fetched models.Listing
	decodeBody(t, resp, &fetched)
	assert.Equal(t, created.Title, fetched.Title)

	// Partial update: only the price moves.
	resp = doJSON(t, app, http.MethodPut, fmt.Sprintf("/api/v1/listings/%d", created.ID), map[string]interface{}{
		"price": 450.0,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.Listing
	decodeBody(t, resp, &updated)
	assert.Equal(t, 450.0, updated.Price)
	assert.Equal(t, created.Title, updated.Title)
	assert.Equal(t, created.Description, updated.Description)
	assert.Equal(t, created.Category, updated.Category)
	assert.Equal(t, created.Images, updated.Images)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	// Delete, then the listing is gone for good.
	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/listings/%d", created.ID), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/listings/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/v1/listings/%d", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestCreateListingRejections(t *testing.T) {
	app, userService, _ := setupApp(t, "it_create_reject")

	seller, err := userService.CreateUser(testCtx(), services.CreateUserInput{Name: "Seller", Email: "seller2@example.com"})
	require.NoError(t, err)

	// Nonexistent seller is a referential failure, mapped to 400.
	resp := doJSON(t, app, http.MethodPost, "/api/v1/listings", map[string]interface{}{
		"title":     "Orphan",
		"price":     10.0,
		"category":  "Misc",
		"seller_id": seller.ID + 999,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body map[string]interface{}
	decodeBody(t, resp, &body)
	assert.Equal(t, "SELLER_NOT_FOUND", body["code"])

	// Negative price never reaches persistence.
	resp = doJSON(t, app, http.MethodPost, "/api/v1/listings", map[string]interface{}{
		"title":     "Bad price",
		"price":     -1.0,
		"category":  "Misc",
		"seller_id": seller.ID,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Update of a missing listing is a 404.
	resp = doJSON(t, app, http.MethodPut, "/api/v1/listings/424242", map[string]interface{}{"price": 5.0})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// Non-numeric id is a client error.
	resp = doJSON(t, app, http.MethodGet, "/api/v1/listings/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestSearchListingsEndpoint(t *testing.T) {
	app, userService, listingService := setupApp(t, "it_search")

	seller, err := userService.CreateUser(testCtx(), services.CreateUserInput{Name: "Seller", Email: "seller3@example.com"})
	require.NoError(t, err)

	inactive := false
	samples := []services.CreateListingInput{
		{Title: "Алгебра. Учебник 1 курс", Description: "Почти новый учебник.", Price: 500, Category: "Учебники", SellerID: seller.ID},
		{Title: "Штатив для камеры", Description: "Высота до 160см.", Price: 300, Category: "Аренда оборудования", SellerID: seller.ID},
		{Title: "Гитара", Description: "Акустическая", Price: 100, Category: "Музыка", SellerID: seller.ID},
		{Title: "Скрытый лот", Description: "Не должен искаться", Price: 100, Category: "Музыка", IsActive: &inactive, SellerID: seller.ID},
	}
	var hiddenID uint
	for _, sample := range samples {
		created, err := listingService.CreateListing(testCtx(), sample)
		require.NoError(t, err)
		if sample.IsActive != nil && !*sample.IsActive {
			hiddenID = created.ID
		}
	}

	// No filters: every active listing, newest first.
	resp := doJSON(t, app, http.MethodGet, "/api/v1/listings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result services.SearchResult
	decodeBody(t, resp, &result)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, services.DefaultPageSize, result.PageSize)

	// Case-insensitive text match on a Cyrillic title.
	resp = doJSON(t, app, http.MethodGet, "/api/v1/listings?q=%D0%B0%D0%BB%D0%B3%D0%B5%D0%B1%D1%80%D0%B0", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &result)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "Алгебра. Учебник 1 курс", result.Items[0].Title)

	// Inclusive price bounds.
	resp = doJSON(t, app, http.MethodGet, "/api/v1/listings?min_price=100&max_price=100", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &result)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "Гитара", result.Items[0].Title)

	// Price sort.
	resp = doJSON(t, app, http.MethodGet, "/api/v1/listings?sort=price_asc", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &result)
	require.Len(t, result.Items, 3)
	assert.Equal(t, 100.0, result.Items[0].Price)
	assert.Equal(t, 500.0, result.Items[2].Price)

	// The hidden listing stays reachable by id.
	resp = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/v1/listings/%d", hiddenID), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Out-of-range or malformed parameters fail before the engine runs.
	for _, target := range []string{
		"/api/v1/listings?page=0",
		"/api/v1/listings?page=abc",
		"/api/v1/listings?page_size=0",
		"/api/v1/listings?page_size=101",
		"/api/v1/listings?min_price=-5",
		"/api/v1/listings?max_price=oops",
	} {
		resp = doJSON(t, app, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "expected 400 for %s", target)
		resp.Body.Close()
	}
}
