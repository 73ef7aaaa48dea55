package repositories_test

import (
	"testing"
	"time"

	"lendvault/internal/database"
	"lendvault/internal/models"
	"lendvault/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCollateral(t *testing.T, repo repositories.CollateralRepositoryInterface, ownerID uuid.UUID, name string) *models.Collateral {
	t.Helper()
	collateral := &models.Collateral{
		OwnerID:      ownerID,
		Name:         name,
		LoanLimit:    decimal.RequireFromString("7000"),
		InterestRate: decimal.RequireFromString("5"),
	}
	require.NoError(t, repo.Create(collateral))
	return collateral
}

func TestCollateralRepository_CreateAndGet(t *testing.T) {
	db := database.SetupTestDB(t)
	repo := repositories.NewCollateralRepository(db.DB)
	user := database.CreateTestUser(t, db, "alice@example.com")

	collateral := seedCollateral(t, repo, user.ID, "2019 Toyota Corolla")
	assert.Equal(t, models.CollateralStatusPending, collateral.Status)

	found, err := repo.GetByID(collateral.ID)
	require.NoError(t, err)
	assert.Equal(t, "2019 Toyota Corolla", found.Name)
	assert.Equal(t, "7000", found.LoanLimit.String())

	_, err = repo.GetByID(uuid.New())
	assert.ErrorIs(t, err, repositories.ErrCollateralNotFound)
}

func TestCollateralRepository_GetWithFilters(t *testing.T) {
	db := database.SetupTestDB(t)
	repo := repositories.NewCollateralRepository(db.DB)
	user := database.CreateTestUser(t, db, "bob@example.com")
	other := database.CreateTestUser(t, db, "carol@example.com")

	pending := seedCollateral(t, repo, user.ID, "Watch")
	approved := seedCollateral(t, repo, user.ID, "Car")
	require.NoError(t, approved.Approve(decimal.RequireFromString("5000")))
	require.NoError(t, repo.Update(approved))
	seedCollateral(t, repo, other.ID, "Painting")

	byStatus, total, err := repo.GetWithFilters(models.CollateralFilters{
		OwnerID: user.ID,
		Status:  models.CollateralStatusPending,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, byStatus, 1)
	assert.Equal(t, pending.ID, byStatus[0].ID)

	byOwner, total, err := repo.GetWithFilters(models.CollateralFilters{OwnerID: user.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, byOwner, 2)
}

func TestCollateralRepository_GetOverdue(t *testing.T) {
	db := database.SetupTestDB(t)
	repo := repositories.NewCollateralRepository(db.DB)
	user := database.CreateTestUser(t, db, "dave@example.com")

	pastDue := time.Now().Add(-24 * time.Hour)
	overdue := seedCollateral(t, repo, user.ID, "Overdue asset")
	require.NoError(t, overdue.Approve(decimal.RequireFromString("5000")))
	overdue.DueDate = &pastDue
	require.NoError(t, repo.Update(overdue))

	futureDue := time.Now().Add(24 * time.Hour)
	current := seedCollateral(t, repo, user.ID, "Current asset")
	require.NoError(t, current.Approve(decimal.RequireFromString("5000")))
	current.DueDate = &futureDue
	require.NoError(t, repo.Update(current))

	// Pending collaterals never show up as overdue
	pendingStale := seedCollateral(t, repo, user.ID, "Pending asset")
	pendingStale.DueDate = &pastDue
	require.NoError(t, repo.Update(pendingStale))

	found, err := repo.GetOverdue(time.Now(), 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, overdue.ID, found[0].ID)
}
