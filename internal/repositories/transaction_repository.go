package repositories

import (
	"errors"
	"fmt"
	"time"

	"lendvault/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidTransition   = errors.New("invalid transaction status transition")
)

// transactionRepository implements TransactionRepositoryInterface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepositoryInterface {
	return &transactionRepository{
		db: db,
	}
}

// Create creates a new ledger entry
func (r *transactionRepository) Create(transaction *models.Transaction) error {
	if err := r.db.Create(transaction).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// CreateInTx creates a ledger entry inside an existing database transaction
func (r *transactionRepository) CreateInTx(tx *gorm.DB, transaction *models.Transaction) error {
	if err := tx.Create(transaction).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a transaction by ID
func (r *transactionRepository) GetByID(id uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := r.db.Where("id = ?", id).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &transaction, nil
}

// GetByReference retrieves a transaction by its external reference number
func (r *transactionRepository) GetByReference(reference string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := r.db.Where("reference_number = ?", reference).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction by reference: %w", err)
	}
	return &transaction, nil
}

// GetByAccountID retrieves transactions for an account with pagination
func (r *transactionRepository) GetByAccountID(accountID uuid.UUID, offset, limit int) ([]models.Transaction, int64, error) {
	var transactions []models.Transaction
	var total int64

	query := r.db.Model(&models.Transaction{}).Where("account_id = ?", accountID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	if err := query.Offset(offset).Limit(limit).
		Order("created_at DESC").Find(&transactions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get transactions: %w", err)
	}

	return transactions, total, nil
}

// GetWithFilters retrieves transactions matching the given filters
func (r *transactionRepository) GetWithFilters(filters models.TransactionFilters) ([]models.Transaction, int64, error) {
	var transactions []models.Transaction
	var total int64

	query := r.db.Model(&models.Transaction{})

	if filters.AccountID != uuid.Nil {
		query = query.Where("account_id = ?", filters.AccountID)
	}
	if filters.OwnerID != uuid.Nil {
		query = query.Where("owner_id = ?", filters.OwnerID)
	}
	if filters.CollateralID != uuid.Nil {
		query = query.Where("collateral_id = ?", filters.CollateralID)
	}
	if filters.Type != "" {
		query = query.Where("transaction_type = ?", filters.Type)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.ReferenceNumber != "" {
		query = query.Where("reference_number = ?", filters.ReferenceNumber)
	}
	if filters.StartDate != nil {
		query = query.Where("created_at >= ?", *filters.StartDate)
	}
	if filters.EndDate != nil {
		query = query.Where("created_at <= ?", *filters.EndDate)
	}
	if filters.MinAmount != nil {
		query = query.Where("amount >= ?", *filters.MinAmount)
	}
	if filters.MaxAmount != nil {
		query = query.Where("amount <= ?", *filters.MaxAmount)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count filtered transactions: %w", err)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = 50
	}

	if err := query.Offset(filters.Offset).Limit(limit).
		Order("created_at DESC").Find(&transactions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to get filtered transactions: %w", err)
	}

	return transactions, total, nil
}

// GetPendingOlderThan retrieves stale pending entries for reconciliation sweeps
func (r *transactionRepository) GetPendingOlderThan(cutoff time.Time, limit int) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := r.db.Where("status = ? AND created_at < ?", models.TransactionStatusPending, cutoff).
		Order("created_at ASC").Limit(limit).
		Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to get stale pending transactions: %w", err)
	}
	return transactions, nil
}

// UpdateStatus performs a guarded status transition. The WHERE clause pins the
// expected current status so a concurrent or illegal transition affects zero
// rows instead of clobbering state.
func (r *transactionRepository) UpdateStatus(id uuid.UUID, fromStatus, toStatus string) error {
	current := models.Transaction{Status: fromStatus}
	if !current.CanTransitionTo(toStatus) {
		return ErrInvalidTransition
	}

	// Map updates here and below skip hooks: BeforeUpdate would run against
	// the bare model receiver and fail row validation. The row was validated
	// when it was created, and the guarded WHERE clause constrains the change.
	result := r.db.Session(&gorm.Session{SkipHooks: true}).
		Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(map[string]interface{}{
			"status":     toStatus,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update transaction status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Distinguish missing row from a transition race
		var count int64
		if err := r.db.Model(&models.Transaction{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check transaction existence: %w", err)
		}
		if count == 0 {
			return ErrTransactionNotFound
		}
		return ErrInvalidTransition
	}
	return nil
}

// RecordSnapshot writes the before/after balance snapshot exactly once
func (r *transactionRepository) RecordSnapshot(tx *gorm.DB, transaction *models.Transaction, loanBefore, loanAfter, investmentBefore, investmentAfter decimal.Decimal) error {
	if err := transaction.RecordSnapshot(loanBefore, loanAfter, investmentBefore, investmentAfter); err != nil {
		return err
	}

	result := tx.Session(&gorm.Session{SkipHooks: true}).
		Model(&models.Transaction{}).
		Where("id = ? AND loan_balance_before IS NULL", transaction.ID).
		Updates(map[string]interface{}{
			"loan_balance_before":       loanBefore,
			"loan_balance_after":        loanAfter,
			"investment_balance_before": investmentBefore,
			"investment_balance_after":  investmentAfter,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to record balance snapshot: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return models.ErrSnapshotAlreadyRecorded
	}
	return nil
}

// MarkCompleted transitions a pending entry to completed inside a database transaction
func (r *transactionRepository) MarkCompleted(tx *gorm.DB, transaction *models.Transaction) error {
	now := time.Now()
	result := tx.Session(&gorm.Session{SkipHooks: true}).
		Model(&models.Transaction{}).
		Where("id = ? AND status = ?", transaction.ID, models.TransactionStatusPending).
		Updates(map[string]interface{}{
			"status":       models.TransactionStatusCompleted,
			"processed_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to complete transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInvalidTransition
	}

	transaction.Complete()
	return nil
}

// MarkFailed transitions an entry to failed with a reason
func (r *transactionRepository) MarkFailed(tx *gorm.DB, transaction *models.Transaction, reason string) error {
	now := time.Now()
	result := tx.Session(&gorm.Session{SkipHooks: true}).
		Model(&models.Transaction{}).
		Where("id = ? AND status IN ?", transaction.ID,
			[]string{models.TransactionStatusPending, models.TransactionStatusCompleted}).
		Updates(map[string]interface{}{
			"status":         models.TransactionStatusFailed,
			"failure_reason": reason,
			"failed_at":      now,
			"updated_at":     now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark transaction failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrInvalidTransition
	}

	transaction.Fail(reason)
	return nil
}

// GetSummaryByOwnerID aggregates completed ledger activity for an owner
func (r *transactionRepository) GetSummaryByOwnerID(ownerID uuid.UUID) (*models.TransactionSummary, error) {
	summary := &models.TransactionSummary{OwnerID: ownerID}

	rows, err := r.db.Model(&models.Transaction{}).
		Select("transaction_type, COALESCE(SUM(amount), 0) as total, COUNT(*) as count").
		Where("owner_id = ? AND status = ?", ownerID, models.TransactionStatusCompleted).
		Group("transaction_type").Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var txType string
		var total decimal.Decimal
		var count int64
		if err := rows.Scan(&txType, &total, &count); err != nil {
			return nil, fmt.Errorf("failed to scan transaction summary: %w", err)
		}

		summary.TransactionCount += count
		switch models.TransactionType(txType) {
		case models.TransactionTypeDeposit:
			summary.TotalDeposits = total
		case models.TransactionTypeWithdrawal:
			summary.TotalWithdrawals = total
		case models.TransactionTypePayment:
			summary.TotalPayments = total
		case models.TransactionTypeFee:
			summary.TotalFees = total
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transaction summary: %w", err)
	}

	return summary, nil
}
