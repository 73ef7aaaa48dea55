package repositories

import (
	"errors"
	"fmt"
	"sync"

	"lendvault/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountNumberExists  = errors.New("account number already exists")
	ErrAccountExists        = errors.New("owner already has an account")
	ErrAccountNotActive     = errors.New("account is not active")
	ErrOrganizationNotFound = errors.New("organization account not found")
	ErrNegativeBalance      = errors.New("balance update would go negative")
)

// accountRepository implements AccountRepositoryInterface
type accountRepository struct {
	db *gorm.DB
	mu sync.Mutex // For account number generation
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) AccountRepositoryInterface {
	return &accountRepository{
		db: db,
	}
}

// Create creates a new account. Each owner may hold exactly one account.
func (r *accountRepository) Create(account *models.Account) error {
	var count int64
	if err := r.db.Model(&models.Account{}).
		Where("owner_id = ?", account.OwnerID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check existing account: %w", err)
	}
	if count > 0 {
		return ErrAccountExists
	}

	if err := r.db.Create(account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAccountNumberExists
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetByID retrieves an account by ID
func (r *accountRepository) GetByID(id uuid.UUID) (*models.Account, error) {
	account := &models.Account{}
	if err := r.db.Where("id = ?", id).First(account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// GetByAccountNumber retrieves an account by account number
func (r *accountRepository) GetByAccountNumber(accountNumber string) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("account_number = ?", accountNumber).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account by number: %w", err)
	}
	return &account, nil
}

// GetByOwnerID retrieves the single account owned by a principal
func (r *accountRepository) GetByOwnerID(ownerID uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("owner_id = ?", ownerID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account for owner: %w", err)
	}
	return &account, nil
}

// GetOrganization retrieves the custodial organization account
func (r *accountRepository) GetOrganization() (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("organization = ?", true).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization account: %w", err)
	}
	return &account, nil
}

// GetAllWithFilters retrieves accounts with filters and pagination
func (r *accountRepository) GetAllWithFilters(filters models.AccountFilters) ([]models.Account, int64, error) {
	var accounts []models.Account
	var total int64

	query := r.db.Model(&models.Account{})

	if filters.OwnerID != uuid.Nil {
		query = query.Where("owner_id = ?", filters.OwnerID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.Organization != nil {
		query = query.Where("organization = ?", *filters.Organization)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count filtered accounts: %w", err)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}

	if err := query.Offset(filters.Offset).Limit(limit).
		Order("created_at DESC").Find(&accounts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get filtered accounts: %w", err)
	}

	return accounts, total, nil
}

// Update updates an account
func (r *accountRepository) Update(account *models.Account) error {
	if err := r.db.Save(account).Error; err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

// Delete soft deletes an account
func (r *accountRepository) Delete(id uuid.UUID) error {
	result := r.db.Where("id = ?", id).Delete(&models.Account{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// GenerateUniqueAccountNumber generates a unique account number for the owner kind
func (r *accountRepository) GenerateUniqueAccountNumber(organization bool) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	maxAttempts := 10
	for i := 0; i < maxAttempts; i++ {
		accountNumber := models.GenerateAccountNumber(organization)

		var count int64
		if err := r.db.Model(&models.Account{}).
			Where("account_number = ?", accountNumber).
			Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check account number uniqueness: %w", err)
		}

		if count == 0 {
			return accountNumber, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique account number after %d attempts", maxAttempts)
}

// GetForUpdate re-reads an account inside a transaction with a FOR UPDATE
// row lock. sqlite rejects the clause and serializes writers on its own, so
// the lock is only taken on postgres.
func (r *accountRepository) GetForUpdate(tx *gorm.DB, id uuid.UUID) (*models.Account, error) {
	query := tx
	if tx.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var account models.Account
	if err := query.Where("id = ?", id).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	return &account, nil
}

// SaveBalances writes both balances for a locked account. Negative results
// are rejected here as the last line of defense below the calculator.
func (r *accountRepository) SaveBalances(tx *gorm.DB, account *models.Account, loanBalance, investmentBalance decimal.Decimal) error {
	if loanBalance.LessThan(decimal.Zero) || investmentBalance.LessThan(decimal.Zero) {
		return ErrNegativeBalance
	}

	if account.Organization && !loanBalance.IsZero() {
		return models.ErrOrganizationLoan
	}

	result := tx.Model(account).
		Updates(map[string]interface{}{
			"loan_balance":       loanBalance,
			"investment_balance": investmentBalance,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update balances: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrAccountNotFound
	}

	account.LoanBalance = loanBalance
	account.InvestmentBalance = investmentBalance
	return nil
}

// WithTransaction runs fn inside a database transaction
func (r *accountRepository) WithTransaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}
