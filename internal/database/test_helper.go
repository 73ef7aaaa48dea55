package database

import (
	"fmt"
	"testing"

	"lendvault/internal/config"
	"lendvault/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), gormConfig)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	// Each sqlite :memory: connection is its own database, so pin the pool
	// to a single connection
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	testDB := &DB{
		DB: db,
		config: &config.DatabaseConfig{
			MaxConnections: 1,
			MaxIdleConns:   1,
		},
	}

	if err := testDB.AutoMigrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return testDB
}

func CreateTestUser(t *testing.T, db *DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		Email:     email,
		FirstName: "Test",
		LastName:  "Borrower",
		Role:      models.RoleBorrower,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

func CreateTestAccount(t *testing.T, db *DB, user *models.User, investmentBalance string) *models.Account {
	t.Helper()

	balance, err := decimal.NewFromString(investmentBalance)
	if err != nil {
		t.Fatalf("invalid investment balance %q: %v", investmentBalance, err)
	}

	account := &models.Account{
		OwnerID:           user.ID,
		AccountNumber:     models.GenerateAccountNumber(user.IsOrganization()),
		Organization:      user.IsOrganization(),
		Status:            models.AccountStatusActive,
		LoanBalance:       decimal.Zero,
		InvestmentBalance: balance,
	}

	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}

	return account
}

func CreateTestOrganization(t *testing.T, db *DB, openingFund string) (*models.User, *models.Account) {
	t.Helper()

	user := &models.User{
		Email:     "fund@lendvault.test",
		FirstName: "LendVault",
		LastName:  "Fund",
		Role:      models.RoleOrganization,
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test organization user: %v", err)
	}

	return user, CreateTestAccount(t, db, user, openingFund)
}

func CleanupTestDB(t *testing.T, db *DB) {
	t.Helper()

	tables := []string{
		"transactions",
		"collaterals",
		"accounts",
		"audit_logs",
		"users",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			t.Logf("failed to cleanup table %s: %v", table, err)
		}
	}
}
