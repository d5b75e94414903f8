package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "marketplace/internal/errors"
	"marketplace/internal/models"
	"marketplace/internal/repositories"
)

func TestGORMUserRepository_CreateAndLookups(t *testing.T) {
	db := openTestDB(t, "user_lookups")
	repo := repositories.NewGORMUserRepository(db)
	ctx := context.Background()

	user := &models.User{Name: "Admin User", Email: "admin@example.com", Phone: "+7 999 000 00 00"}
	require.NoError(t, repo.Create(ctx, user))
	require.NotZero(t, user.ID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)

	byEmail, err := repo.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestGORMUserRepository_DeleteCascadesListings(t *testing.T) {
	db := openTestDB(t, "user_cascade")
	userRepo := repositories.NewGORMUserRepository(db)
	listingRepo := repositories.NewGORMListingRepository(db)
	ctx := context.Background()

	doomed := &models.User{Name: "Doomed", Email: "doomed@example.com"}
	require.NoError(t, userRepo.Create(ctx, doomed))
	survivor := &models.User{Name: "Survivor", Email: "survivor@example.com"}
	require.NoError(t, userRepo.Create(ctx, survivor))

	owned := []models.Listing{
		{Title: "First", Price: 10, Category: "Misc", IsActive: true, SellerID: doomed.ID},
		{Title: "Second", Price: 20, Category: "Misc", IsActive: true, SellerID: doomed.ID},
	}
	for i := range owned {
		require.NoError(t, listingRepo.Create(ctx, &owned[i]))
	}
	kept := &models.Listing{Title: "Kept", Price: 30, Category: "Misc", IsActive: true, SellerID: survivor.ID}
	require.NoError(t, listingRepo.Create(ctx, kept))

	require.NoError(t, userRepo.Delete(ctx, doomed.ID))

	_, err := userRepo.GetByID(ctx, doomed.ID)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	// Ownership is exclusive: the owner's listings go with them.
	for _, l := range owned {
		_, err := listingRepo.GetByID(ctx, l.ID)
		assert.ErrorIs(t, err, apperrors.ErrListingNotFound)
	}

	// Other sellers are untouched.
	stillThere, err := listingRepo.GetByID(ctx, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, survivor.ID, stillThere.SellerID)

	assert.ErrorIs(t, userRepo.Delete(ctx, doomed.ID), apperrors.ErrUserNotFound)
}
