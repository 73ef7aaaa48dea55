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

func seedTransaction(t *testing.T, db *database.DB, repo repositories.TransactionRepositoryInterface, account *models.Account) *models.Transaction {
	t.Helper()
	tx := &models.Transaction{
		AccountID:       account.ID,
		OwnerID:         account.OwnerID,
		Type:            models.TransactionTypeDeposit,
		Amount:          decimal.RequireFromString("100"),
		Description:     "test deposit",
		ReferenceNumber: models.GenerateTransactionReference(),
	}
	require.NoError(t, repo.Create(tx))
	return tx
}

func TestTransactionRepository_CreateAndGet(t *testing.T) {
	db := database.SetupTestDB(t)
	repo := repositories.NewTransactionRepository(db.DB)
	user := database.CreateTestUser(t, db, "alice@example.com")
	account := database.CreateTestAccount(t, db, user, "0.00")

	tx := seedTransaction(t, db, repo, account)

	// New entries start pending
	assert.Equal(t, models.TransactionStatusPending, tx.Status)

	byID, err := repo.GetByID(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx.ReferenceNumber, byID.ReferenceNumber)

	byRef, err := repo.GetByReference(tx.ReferenceNumber)
	require.NoError(t, err)
	assert.Equal(t, tx.ID, byRef.ID)

	_, err = repo.GetByID(uuid.New())
	assert.ErrorIs(t, err, repositories.ErrTransactionNotFound)
}

func TestTransactionRepository_UpdateStatus(t *testing.T) {
	db := database.SetupTestDB(t)
	repo := repositories.NewTransactionRepository(db.DB)
	user := database.CreateTestUser(t, db, "bob@example.com")
	account := database.CreateTestAccount(t, db, user, "0.00")

	tx := seedTransaction(t, db, repo, account)

	// Illegal transition is rejected before touching the database
	err := repo.UpdateStatus(tx.ID, models.TransactionStatusPending, models.TransactionStatusReversed)
	assert.ErrorIs(t, err, repositories.ErrInvalidTransition)

	// Missing row
	err = repo.UpdateStatus(uuid.New(), models.TransactionStatusPending, models.TransactionStatusCompleted)
	assert.ErrorIs(t, err, repositories.ErrTransactionNotFound)

	require.NoError(t, repo.UpdateStatus(tx.ID, models.TransactionStatusPending, models.TransactionStatusCancelled))

	fresh, err := repo.GetByID(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusCancelled, fresh.Status)

	// The guarded WHERE clause catches a stale expected status
	err = repo.UpdateStatus(tx.ID, models.TransactionStatusPending, models.TransactionStatusCompleted)
	assert.ErrorIs(t, err, repositories.ErrInvalidTransition)
}

func TestTransactionRepository_RecordSnapshot_WriteOnce(t *testing.T) {
	db := database.SetupTestDB(t)
	repo := repositories.NewTransactionRepository(db.DB)
	user := database.CreateTestUser(t, db, "carol@example.com")
	account := database.CreateTestAccount(t, db, user, "0.00")

	tx := seedTransaction(t, db, repo, account)

	err := repo.RecordSnapshot(db.DB, tx,
		decimal.Zero, decimal.Zero,
		decimal.Zero, decimal.RequireFromString("100"))
	require.NoError(t, err)

	fresh, err := repo.GetByID(tx.ID)
	require.NoError(t, err)
	require.True(t, fresh.HasSnapshot())
	assert.Equal(t, "100", fresh.InvestmentBalanceAfter.String())

	// Second write is rejected by the IS NULL guard
	err = repo.RecordSnapshot(db.DB, fresh,
		decimal.RequireFromString("1"), decimal.RequireFromString("2"),
		decimal.RequireFromString("3"), decimal.RequireFromString("4"))
	assert.ErrorIs(t, err, models.ErrSnapshotAlreadyRecorded)

	unchanged, err := repo.GetByID(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "100", unchanged.InvestmentBalanceAfter.String())
}

func TestTransactionRepository_MarkCompleted(t *testing.T) {
	db := database.SetupTestDB(t)
	repo := repositories.NewTransactionRepository(db.DB)
	user := database.CreateTestUser(t, db, "dave@example.com")
	account := database.CreateTestAccount(t, db, user, "0.00")

	tx := seedTransaction(t, db, repo, account)

	require.NoError(t, repo.MarkCompleted(db.DB, tx))
	assert.Equal(t, models.TransactionStatusCompleted, tx.Status)
	require.NotNil(t, tx.ProcessedAt)

	// Completing twice hits the guarded WHERE clause
	assert.ErrorIs(t, repo.MarkCompleted(db.DB, tx), repositories.ErrInvalidTransition)
}

func TestTransactionRepository_MarkFailed(t *testing.T) {
	db := database.SetupTestDB(t)
	repo := repositories.NewTransactionRepository(db.DB)
	user := database.CreateTestUser(t, db, "erin@example.com")
	account := database.CreateTestAccount(t, db, user, "0.00")

	t.Run("from pending", func(t *testing.T) {
		tx := seedTransaction(t, db, repo, account)

		require.NoError(t, repo.MarkFailed(db.DB, tx, "insufficient investment balance"))
		assert.Equal(t, models.TransactionStatusFailed, tx.Status)
		assert.Equal(t, "insufficient investment balance", tx.FailureReason)
	})

	t.Run("from completed, for reversals", func(t *testing.T) {
		tx := seedTransaction(t, db, repo, account)
		require.NoError(t, repo.MarkCompleted(db.DB, tx))

		require.NoError(t, repo.MarkFailed(db.DB, tx, "reverted: settlement failure"))

		fresh, err := repo.GetByID(tx.ID)
		require.NoError(t, err)
		assert.Equal(t, models.TransactionStatusFailed, fresh.Status)
		assert.Equal(t, "reverted: settlement failure", fresh.FailureReason)
	})

	t.Run("failed is terminal", func(t *testing.T) {
		tx := seedTransaction(t, db, repo, account)
		require.NoError(t, repo.MarkFailed(db.DB, tx, "first failure"))

		assert.ErrorIs(t, repo.MarkFailed(db.DB, tx, "second failure"), repositories.ErrInvalidTransition)
	})
}

func TestTransactionRepository_GetPendingOlderThan(t *testing.T) {
	db := database.SetupTestDB(t)
	repo := repositories.NewTransactionRepository(db.DB)
	user := database.CreateTestUser(t, db, "frank@example.com")
	account := database.CreateTestAccount(t, db, user, "0.00")

	stale := seedTransaction(t, db, repo, account)
	require.NoError(t, db.Model(&models.Transaction{}).
		Where("id = ?", stale.ID).
		UpdateColumn("created_at", time.Now().Add(-2*time.Hour)).Error)

	fresh := seedTransaction(t, db, repo, account)

	found, err := repo.GetPendingOlderThan(time.Now().Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, stale.ID, found[0].ID)
	assert.NotEqual(t, fresh.ID, found[0].ID)
}

func TestTransactionRepository_GetWithFilters(t *testing.T) {
	db := database.SetupTestDB(t)
	repo := repositories.NewTransactionRepository(db.DB)
	user := database.CreateTestUser(t, db, "grace@example.com")
	account := database.CreateTestAccount(t, db, user, "0.00")

	deposit := seedTransaction(t, db, repo, account)

	withdrawal := &models.Transaction{
		AccountID:       account.ID,
		OwnerID:         account.OwnerID,
		Type:            models.TransactionTypeWithdrawal,
		Amount:          decimal.RequireFromString("50"),
		Description:     "test withdrawal",
		ReferenceNumber: models.GenerateTransactionReference(),
	}
	require.NoError(t, repo.Create(withdrawal))

	byType, total, err := repo.GetWithFilters(models.TransactionFilters{
		OwnerID: user.ID,
		Type:    models.TransactionTypeDeposit,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, byType, 1)
	assert.Equal(t, deposit.ID, byType[0].ID)

	all, total, err := repo.GetWithFilters(models.TransactionFilters{OwnerID: user.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)
}

func TestTransactionRepository_GuardedUpdatesSkipRowValidation(t *testing.T) {
	db := database.SetupTestDB(t)
	repo := repositories.NewTransactionRepository(db.DB)
	user := database.CreateTestUser(t, db, "henry@example.com")
	account := database.CreateTestAccount(t, db, user, "0.00")

	tx := seedTransaction(t, db, repo, account)

	// Each of these writes through a bare model with a guarded WHERE clause;
	// none of them may trip per-row validation against the empty receiver.
	require.NoError(t, repo.RecordSnapshot(db.DB, tx,
		decimal.Zero, decimal.Zero,
		decimal.Zero, decimal.RequireFromString("100")))
	require.NoError(t, repo.MarkCompleted(db.DB, tx))
	require.NoError(t, repo.UpdateStatus(tx.ID,
		models.TransactionStatusCompleted, models.TransactionStatusReversed))

	fresh, err := repo.GetByID(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TransactionStatusReversed, fresh.Status)
	assert.True(t, fresh.HasSnapshot())
}
