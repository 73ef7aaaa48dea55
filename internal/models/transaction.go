package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType is the closed set of financial event kinds the ledger
// accepts. Balance rules dispatch on it exhaustively; unknown values are
// rejected, never defaulted.
type TransactionType string

const (
	// Investment movements
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeInterest   TransactionType = "interest"

	// Loan movements
	TransactionTypeLoanDisbursement TransactionType = "loan_disbursement"
	TransactionTypePayment          TransactionType = "payment"
	TransactionTypeFee              TransactionType = "fee"
)

const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
	TransactionStatusCancelled = "cancelled"
	TransactionStatusReversed  = "reversed"
)

var (
	ErrInvalidTransactionType   = errors.New("invalid transaction type")
	ErrInvalidTransactionStatus = errors.New("invalid transaction status")
	ErrInvalidAmount            = errors.New("transaction amount must be positive")
	ErrSnapshotAlreadyRecorded  = errors.New("balance snapshot already recorded")
)

// Transaction is a ledger entry. Amount is immutable once set; the four
// balance snapshot fields are written exactly once, when the entry leaves
// pending.
type Transaction struct {
	ID                      uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	AccountID               uuid.UUID        `gorm:"type:uuid;not null;index" json:"account_id"`
	OwnerID                 uuid.UUID        `gorm:"type:uuid;not null;index" json:"owner_id"`
	Type                    TransactionType  `gorm:"type:varchar(20);not null;column:transaction_type" json:"transaction_type"`
	Status                  string           `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Amount                  decimal.Decimal  `gorm:"type:decimal(15,2);not null" json:"amount"`
	CollateralID            *uuid.UUID       `gorm:"type:uuid;index" json:"collateral_id,omitempty"`
	LoanBalanceBefore       *decimal.Decimal `gorm:"type:decimal(15,2)" json:"loan_balance_before,omitempty"`
	LoanBalanceAfter        *decimal.Decimal `gorm:"type:decimal(15,2)" json:"loan_balance_after,omitempty"`
	InvestmentBalanceBefore *decimal.Decimal `gorm:"type:decimal(15,2)" json:"investment_balance_before,omitempty"`
	InvestmentBalanceAfter  *decimal.Decimal `gorm:"type:decimal(15,2)" json:"investment_balance_after,omitempty"`
	Description             string           `gorm:"type:text" json:"description"`
	ReferenceNumber         string           `gorm:"type:varchar(100);index" json:"reference_number,omitempty"`
	FailureReason           string           `gorm:"type:text" json:"failure_reason,omitempty"`
	Metadata                JSONBMap         `gorm:"type:text" json:"metadata,omitempty"`
	CreatedAt               time.Time        `gorm:"not null;index" json:"created_at"`
	UpdatedAt               time.Time        `gorm:"not null" json:"updated_at"`
	ProcessedAt             *time.Time       `json:"processed_at,omitempty"`
	FailedAt                *time.Time       `json:"failed_at,omitempty"`

	// Associations
	Account    Account     `gorm:"foreignKey:AccountID" json:"-"`
	Collateral *Collateral `gorm:"foreignKey:CollateralID" json:"-"`
}

// BeforeCreate hook for Transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	if t.Status == "" {
		t.Status = TransactionStatusPending
	}

	// Set timestamps if not already set (for tests)
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	return t.Validate()
}

// BeforeUpdate hook for Transaction
func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	t.UpdatedAt = time.Now()
	return t.Validate()
}

// Validate validates the transaction fields
func (t *Transaction) Validate() error {
	if t.AccountID == uuid.Nil {
		return errors.New("account ID is required")
	}

	if t.OwnerID == uuid.Nil {
		return errors.New("owner ID is required")
	}

	if !t.Type.Valid() {
		return ErrInvalidTransactionType
	}

	if !IsValidTransactionStatus(t.Status) {
		return ErrInvalidTransactionStatus
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	if t.Description == "" {
		return errors.New("transaction description is required")
	}

	return nil
}

// IsPending returns true if the transaction is pending
func (t *Transaction) IsPending() bool {
	return t.Status == TransactionStatusPending
}

// IsCompleted returns true if the transaction is completed
func (t *Transaction) IsCompleted() bool {
	return t.Status == TransactionStatusCompleted
}

// Complete marks the transaction as completed
func (t *Transaction) Complete() {
	t.Status = TransactionStatusCompleted
	now := time.Now()
	t.ProcessedAt = &now
}

// Fail marks the transaction as failed with the given reason
func (t *Transaction) Fail(reason string) {
	t.Status = TransactionStatusFailed
	t.FailureReason = reason
	now := time.Now()
	t.FailedAt = &now
}

// Cancel marks the transaction as cancelled
func (t *Transaction) Cancel() {
	t.Status = TransactionStatusCancelled
	now := time.Now()
	t.ProcessedAt = &now
}

// Reverse marks the transaction as reversed
func (t *Transaction) Reverse() {
	t.Status = TransactionStatusReversed
	now := time.Now()
	t.ProcessedAt = &now
}

// HasSnapshot reports whether the before/after balance snapshot has been
// recorded
func (t *Transaction) HasSnapshot() bool {
	return t.LoanBalanceBefore != nil && t.LoanBalanceAfter != nil &&
		t.InvestmentBalanceBefore != nil && t.InvestmentBalanceAfter != nil
}

// RecordSnapshot stores the before/after balances on the entry. The snapshot
// is write-once.
func (t *Transaction) RecordSnapshot(loanBefore, loanAfter, investmentBefore, investmentAfter decimal.Decimal) error {
	if t.HasSnapshot() {
		return ErrSnapshotAlreadyRecorded
	}

	t.LoanBalanceBefore = &loanBefore
	t.LoanBalanceAfter = &loanAfter
	t.InvestmentBalanceBefore = &investmentBefore
	t.InvestmentBalanceAfter = &investmentAfter
	return nil
}

// CanTransitionTo checks if a transaction can transition to a new status
func (t *Transaction) CanTransitionTo(newStatus string) bool {
	validTransitions := map[string][]string{
		TransactionStatusPending:   {TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusCancelled},
		TransactionStatusCompleted: {TransactionStatusReversed, TransactionStatusFailed},
		TransactionStatusFailed:    {}, // Terminal state
		TransactionStatusCancelled: {}, // Terminal state
		TransactionStatusReversed:  {}, // Terminal state
	}

	allowedStatuses, exists := validTransitions[t.Status]
	if !exists {
		return false
	}

	for _, status := range allowedStatuses {
		if status == newStatus {
			return true
		}
	}
	return false
}

// TableName returns the table name for Transaction
func (t *Transaction) TableName() string {
	return "transactions"
}

// Helper functions

// Valid checks if the transaction type is one of the closed set
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeInterest,
		TransactionTypeLoanDisbursement, TransactionTypePayment, TransactionTypeFee:
		return true
	default:
		return false
	}
}

// Mirrorable reports whether a completed entry of this type produces a
// mirrored organization entry. Interest is credited by the platform itself
// and is not mirrored.
func (t TransactionType) Mirrorable() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeLoanDisbursement,
		TransactionTypePayment, TransactionTypeFee:
		return true
	default:
		return false
	}
}

// OrganizationMirror returns the transaction type recorded against the
// organization account when a borrower entry of this type completes.
func (t TransactionType) OrganizationMirror() TransactionType {
	switch t {
	case TransactionTypeDeposit:
		return TransactionTypeDeposit // custodied cash moves in on both sides
	case TransactionTypeWithdrawal:
		return TransactionTypeWithdrawal
	case TransactionTypeLoanDisbursement:
		return TransactionTypeWithdrawal // fund decreases when the organization lends out
	case TransactionTypePayment:
		return TransactionTypeDeposit // organization receives the repayment
	case TransactionTypeFee:
		return TransactionTypeInterest
	case TransactionTypeInterest:
		return TransactionTypeFee
	default:
		return t
	}
}

// IsValidTransactionStatus checks if the transaction status is valid
func IsValidTransactionStatus(status string) bool {
	switch status {
	case TransactionStatusPending, TransactionStatusCompleted, TransactionStatusFailed,
		TransactionStatusCancelled, TransactionStatusReversed:
		return true
	default:
		return false
	}
}

// GenerateTransactionReference generates a unique external reference number
func GenerateTransactionReference() string {
	return "TXN-" + uuid.New().String()[:8] + "-" + time.Now().Format("20060102150405")
}
