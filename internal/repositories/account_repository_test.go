package repositories_test

import (
	"testing"

	"lendvault/internal/database"
	"lendvault/internal/models"
	"lendvault/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestAccountRepository_Create_OnePerOwner(t *testing.T) {
	db := database.SetupTestDB(t)
	repo := repositories.NewAccountRepository(db.DB)
	user := database.CreateTestUser(t, db, "alice@example.com")

	first := &models.Account{
		OwnerID:       user.ID,
		AccountNumber: models.GenerateAccountNumber(false),
	}
	require.NoError(t, repo.Create(first))

	second := &models.Account{
		OwnerID:       user.ID,
		AccountNumber: models.GenerateAccountNumber(false),
	}
	assert.ErrorIs(t, repo.Create(second), repositories.ErrAccountExists)
}

func TestAccountRepository_GetByOwnerID(t *testing.T) {
	db := database.SetupTestDB(t)
	repo := repositories.NewAccountRepository(db.DB)
	user := database.CreateTestUser(t, db, "bob@example.com")
	account := database.CreateTestAccount(t, db, user, "250.00")

	found, err := repo.GetByOwnerID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, found.ID)
	assert.Equal(t, "250", found.InvestmentBalance.String())

	_, err = repo.GetByOwnerID(uuid.New())
	assert.ErrorIs(t, err, repositories.ErrAccountNotFound)
}

func TestAccountRepository_GetOrganization(t *testing.T) {
	db := database.SetupTestDB(t)
	repo := repositories.NewAccountRepository(db.DB)

	_, err := repo.GetOrganization()
	assert.ErrorIs(t, err, repositories.ErrOrganizationNotFound)

	_, orgAccount := database.CreateTestOrganization(t, db, "1000000.00")

	found, err := repo.GetOrganization()
	require.NoError(t, err)
	assert.Equal(t, orgAccount.ID, found.ID)
	assert.True(t, found.Organization)
}

func TestAccountRepository_GenerateUniqueAccountNumber(t *testing.T) {
	db := database.SetupTestDB(t)
	repo := repositories.NewAccountRepository(db.DB)

	borrowerNumber, err := repo.GenerateUniqueAccountNumber(false)
	require.NoError(t, err)
	assert.Equal(t, models.BorrowerPrefix, borrowerNumber[:2])
	assert.True(t, models.ValidateAccountNumber(borrowerNumber))

	orgNumber, err := repo.GenerateUniqueAccountNumber(true)
	require.NoError(t, err)
	assert.Equal(t, models.OrganizationPrefix, orgNumber[:2])
}

func TestAccountRepository_SaveBalances(t *testing.T) {
	db := database.SetupTestDB(t)
	repo := repositories.NewAccountRepository(db.DB)
	user := database.CreateTestUser(t, db, "carol@example.com")
	account := database.CreateTestAccount(t, db, user, "500.00")

	err := repo.WithTransaction(func(tx *gorm.DB) error {
		return repo.SaveBalances(tx, account,
			decimal.RequireFromString("100"), decimal.RequireFromString("400"))
	})
	require.NoError(t, err)

	fresh, err := repo.GetByID(account.ID)
	require.NoError(t, err)
	assert.Equal(t, "100", fresh.LoanBalance.String())
	assert.Equal(t, "400", fresh.InvestmentBalance.String())
}

func TestAccountRepository_SaveBalances_RejectsNegative(t *testing.T) {
	db := database.SetupTestDB(t)
	repo := repositories.NewAccountRepository(db.DB)
	user := database.CreateTestUser(t, db, "dave@example.com")
	account := database.CreateTestAccount(t, db, user, "500.00")

	err := repo.WithTransaction(func(tx *gorm.DB) error {
		return repo.SaveBalances(tx, account,
			decimal.Zero, decimal.RequireFromString("-1"))
	})
	assert.ErrorIs(t, err, repositories.ErrNegativeBalance)

	// Rejected write leaves the stored balances untouched
	fresh, err := repo.GetByID(account.ID)
	require.NoError(t, err)
	assert.Equal(t, "500", fresh.InvestmentBalance.String())
}

func TestAccountRepository_SaveBalances_RejectsOrganizationLoan(t *testing.T) {
	db := database.SetupTestDB(t)
	repo := repositories.NewAccountRepository(db.DB)
	_, orgAccount := database.CreateTestOrganization(t, db, "1000000.00")

	err := repo.WithTransaction(func(tx *gorm.DB) error {
		return repo.SaveBalances(tx, orgAccount,
			decimal.RequireFromString("100"), decimal.RequireFromString("1000000"))
	})
	assert.ErrorIs(t, err, models.ErrOrganizationLoan)
}

func TestAccountRepository_Delete(t *testing.T) {
	db := database.SetupTestDB(t)
	repo := repositories.NewAccountRepository(db.DB)
	user := database.CreateTestUser(t, db, "erin@example.com")
	account := database.CreateTestAccount(t, db, user, "0.00")

	require.NoError(t, repo.Delete(account.ID))

	_, err := repo.GetByID(account.ID)
	assert.ErrorIs(t, err, repositories.ErrAccountNotFound)

	assert.ErrorIs(t, repo.Delete(account.ID), repositories.ErrAccountNotFound)
}

func TestAccountRepository_GetForUpdate_LocksRowOnPostgres(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	repo := repositories.NewAccountRepository(gdb)
	id := uuid.New()

	// The query must carry the locking clause or the expectation fails
	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE id = \$1 .* FOR UPDATE`).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "account_number", "owner_id", "organization", "loan_balance", "investment_balance", "status"}).
			AddRow(id.String(), "5012345678", uuid.NewString(), false, "0", "250", "active"))

	account, err := repo.GetForUpdate(gdb, id)
	require.NoError(t, err)
	assert.Equal(t, "250", account.InvestmentBalance.String())
	require.NoError(t, mock.ExpectationsWereMet())
}
