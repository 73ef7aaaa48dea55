package database

import (
	"fmt"
	"log"
	"time"

	"lendvault/internal/config"
	"lendvault/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DB struct {
	*gorm.DB
	config *config.DatabaseConfig
}

func New(cfg *config.DatabaseConfig) (*DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxConnections)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{
		DB:     db,
		config: cfg,
	}, nil
}

func (db *DB) AutoMigrate() error {
	return db.DB.AutoMigrate(
		&models.User{},
		&models.AuditLog{},
		&models.Account{},
		&models.Transaction{},
		&models.Collateral{},
	)
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (db *DB) HealthCheck() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (db *DB) Transaction(fn func(*gorm.DB) error) error {
	return db.DB.Transaction(fn)
}

func (db *DB) CreateIndexes() error {
	queries := []string{
		"CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_role ON users(role)",
		"CREATE INDEX IF NOT EXISTS idx_users_deleted_at ON users(deleted_at) WHERE deleted_at IS NULL",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_user_id ON audit_logs(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_action ON audit_logs(action)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs(created_at)",
		// Account indexes
		"CREATE INDEX IF NOT EXISTS idx_accounts_owner_id ON accounts(owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_accounts_account_number ON accounts(account_number)",
		"CREATE INDEX IF NOT EXISTS idx_accounts_status ON accounts(status)",
		"CREATE INDEX IF NOT EXISTS idx_accounts_organization ON accounts(organization) WHERE organization = true",
		"CREATE INDEX IF NOT EXISTS idx_accounts_deleted_at ON accounts(deleted_at) WHERE deleted_at IS NULL",
		// Transaction indexes
		"CREATE INDEX IF NOT EXISTS idx_transactions_account_id ON transactions(account_id)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_owner_id ON transactions(owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_collateral_id ON transactions(collateral_id) WHERE collateral_id IS NOT NULL",
		"CREATE INDEX IF NOT EXISTS idx_transactions_created_at ON transactions(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_reference_number ON transactions(reference_number)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_status ON transactions(status)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_transaction_type ON transactions(transaction_type)",
		// Collateral indexes
		"CREATE INDEX IF NOT EXISTS idx_collaterals_owner_id ON collaterals(owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_collaterals_status ON collaterals(status)",
		"CREATE INDEX IF NOT EXISTS idx_collaterals_due_date ON collaterals(due_date) WHERE due_date IS NOT NULL",
	}

	for _, query := range queries {
		if err := db.DB.Exec(query).Error; err != nil {
			log.Printf("Failed to create index: %s, error: %v", query, err)
		}
	}

	return nil
}

// EnsureOrganizationAccount creates the platform's fund owner and account on
// first startup. Subsequent startups find the existing row and return it.
// The opening fund is credited directly; it predates the ledger and has no
// originating transaction.
func (db *DB) EnsureOrganizationAccount(cfg *config.OrganizationConfig) (*models.Account, error) {
	var existingUser models.User
	if err := db.DB.Where("email = ?", cfg.Email).First(&existingUser).Error; err == nil {
		var account models.Account
		if err := db.DB.Where("owner_id = ?", existingUser.ID).First(&account).Error; err != nil {
			return nil, fmt.Errorf("organization user exists without account: %w", err)
		}
		return &account, nil
	}

	openingFund, err := decimal.NewFromString(cfg.OpeningFund)
	if err != nil {
		return nil, fmt.Errorf("invalid opening fund amount %q: %w", cfg.OpeningFund, err)
	}

	user := &models.User{
		Email:     cfg.Email,
		FirstName: cfg.Name,
		LastName:  "Organization",
		Role:      models.RoleOrganization,
	}
	if err := db.DB.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create organization user: %w", err)
	}

	account := &models.Account{
		OwnerID:           user.ID,
		AccountNumber:     models.GenerateAccountNumber(true),
		Organization:      true,
		Status:            models.AccountStatusActive,
		LoanBalance:       decimal.Zero,
		InvestmentBalance: openingFund,
	}
	if err := db.DB.Create(account).Error; err != nil {
		return nil, fmt.Errorf("failed to create organization account: %w", err)
	}

	log.Printf("Organization account %s created with opening fund %s", account.AccountNumber, openingFund)
	return account, nil
}

// Initialize creates and configures the database connection. The returned
// wrapper owns the connection pool; callers close it on shutdown.
func Initialize(cfg *config.Config) (*DB, error) {
	db, err := New(&cfg.Database)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// Versioned SQL migrations when enabled, AutoMigrate otherwise
	migrated, err := MigrateIfEnabled(sqlDB)
	if err != nil {
		log.Printf("Warning: migration runner failed: %v, falling back to AutoMigrate", err)
	}
	if !migrated {
		if err := db.AutoMigrate(); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	if err := db.CreateIndexes(); err != nil {
		log.Printf("Warning: failed to create some indexes: %v", err)
	}

	if _, err := db.EnsureOrganizationAccount(&cfg.Organization); err != nil {
		return nil, fmt.Errorf("failed to bootstrap organization account: %w", err)
	}

	log.Println("Database initialized successfully")

	return db, nil
}
