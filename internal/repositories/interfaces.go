package repositories

import (
	"time"

	"lendvault/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AccountRepositoryInterface defines the contract for account repository operations
type AccountRepositoryInterface interface {
	Create(account *models.Account) error
	GetByID(id uuid.UUID) (*models.Account, error)
	GetByAccountNumber(accountNumber string) (*models.Account, error)
	GetByOwnerID(ownerID uuid.UUID) (*models.Account, error)
	GetOrganization() (*models.Account, error)
	GetAllWithFilters(filters models.AccountFilters) ([]models.Account, int64, error)
	Update(account *models.Account) error
	Delete(id uuid.UUID) error
	GenerateUniqueAccountNumber(organization bool) (string, error)
	GetForUpdate(tx *gorm.DB, id uuid.UUID) (*models.Account, error)
	SaveBalances(tx *gorm.DB, account *models.Account, loanBalance, investmentBalance decimal.Decimal) error
	WithTransaction(fn func(tx *gorm.DB) error) error
}

// TransactionRepositoryInterface defines the contract for ledger entry operations
type TransactionRepositoryInterface interface {
	Create(transaction *models.Transaction) error
	CreateInTx(tx *gorm.DB, transaction *models.Transaction) error
	GetByID(id uuid.UUID) (*models.Transaction, error)
	GetByReference(reference string) (*models.Transaction, error)
	GetByAccountID(accountID uuid.UUID, offset, limit int) ([]models.Transaction, int64, error)
	GetWithFilters(filters models.TransactionFilters) ([]models.Transaction, int64, error)
	GetPendingOlderThan(cutoff time.Time, limit int) ([]models.Transaction, error)
	UpdateStatus(id uuid.UUID, fromStatus, toStatus string) error
	RecordSnapshot(tx *gorm.DB, transaction *models.Transaction, loanBefore, loanAfter, investmentBefore, investmentAfter decimal.Decimal) error
	MarkCompleted(tx *gorm.DB, transaction *models.Transaction) error
	MarkFailed(tx *gorm.DB, transaction *models.Transaction, reason string) error
	GetSummaryByOwnerID(ownerID uuid.UUID) (*models.TransactionSummary, error)
}

// CollateralRepositoryInterface defines the contract for collateral repository operations
type CollateralRepositoryInterface interface {
	Create(collateral *models.Collateral) error
	GetByID(id uuid.UUID) (*models.Collateral, error)
	GetByOwnerID(ownerID uuid.UUID, offset, limit int) ([]models.Collateral, int64, error)
	GetWithFilters(filters models.CollateralFilters) ([]models.Collateral, int64, error)
	GetOverdue(asOf time.Time, limit int) ([]models.Collateral, error)
	Update(collateral *models.Collateral) error
	Delete(id uuid.UUID) error
}

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetOrganizationUser() (*models.User, error)
	Update(user *models.User) error
	Delete(id uuid.UUID) error
	ListUsers(offset, limit int) ([]*models.User, int64, error)
}

// AuditLogRepositoryInterface defines the contract for audit log repository operations
type AuditLogRepositoryInterface interface {
	Create(log *models.AuditLog) error
	GetByUserID(userID uuid.UUID, offset, limit int) ([]*models.AuditLog, int64, error)
	GetByResource(resource, resourceID string, offset, limit int) ([]*models.AuditLog, int64, error)
	GetByTimeRange(startTime, endTime time.Time, offset, limit int) ([]*models.AuditLog, int64, error)
	DeleteOlderThan(duration time.Duration) (int64, error)
}
