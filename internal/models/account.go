package models

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	AccountStatusActive   = "active"
	AccountStatusInactive = "inactive"
	AccountStatusFrozen   = "frozen"
	AccountStatusClosed   = "closed"

	// Account number prefixes by owner kind
	BorrowerPrefix     = "50"
	OrganizationPrefix = "90"
)

var (
	ErrInvalidAccountStatus = errors.New("invalid account status")
	ErrInvalidBalance       = errors.New("balance cannot be negative")
	ErrAccountNotActive     = errors.New("account is not active")
	ErrOrganizationLoan     = errors.New("organization account cannot carry a loan balance")
)

// Account holds the two balances tracked per principal: outstanding loan
// principal and invested funds. Exactly one account exists per owner; the
// single organization account custodies pooled platform funds and never
// carries a loan balance.
type Account struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	AccountNumber     string          `gorm:"type:varchar(10);uniqueIndex;not null" json:"account_number"`
	OwnerID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"owner_id"`
	Organization      bool            `gorm:"not null;default:false" json:"organization"`
	LoanBalance       decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"loan_balance"`
	InvestmentBalance decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"investment_balance"`
	Status            string          `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	Currency          string          `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	CreatedAt         time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null" json:"updated_at"`
	ClosedAt          *time.Time      `gorm:"index" json:"closed_at,omitempty"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`

	// Associations
	Owner        User          `gorm:"foreignKey:OwnerID" json:"-"`
	Transactions []Transaction `gorm:"foreignKey:AccountID" json:"-"`
}

// BeforeCreate hook for Account
func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	if a.Status == "" {
		a.Status = AccountStatusActive
	}

	if a.Currency == "" {
		a.Currency = "USD"
	}

	// Set timestamps if not already set (for tests)
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}

	return a.Validate()
}

// BeforeUpdate hook for Account
func (a *Account) BeforeUpdate(tx *gorm.DB) error {
	a.UpdatedAt = time.Now()
	return a.Validate()
}

// Validate validates the account fields
func (a *Account) Validate() error {
	if a.OwnerID == uuid.Nil {
		return errors.New("owner ID is required")
	}

	if a.AccountNumber == "" {
		return errors.New("account number is required")
	}

	if len(a.AccountNumber) != 10 {
		return errors.New("account number must be 10 digits")
	}

	if !IsValidAccountStatus(a.Status) {
		return ErrInvalidAccountStatus
	}

	if a.LoanBalance.LessThan(decimal.Zero) || a.InvestmentBalance.LessThan(decimal.Zero) {
		return ErrInvalidBalance
	}

	if a.Organization && !a.LoanBalance.IsZero() {
		return ErrOrganizationLoan
	}

	expectedPrefix := BorrowerPrefix
	if a.Organization {
		expectedPrefix = OrganizationPrefix
	}
	if a.AccountNumber[:2] != expectedPrefix {
		return fmt.Errorf("account number prefix does not match owner kind")
	}

	return nil
}

// IsActive returns true if the account is active
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// Close closes the account. Accounts with outstanding loan principal cannot
// be closed.
func (a *Account) Close() error {
	if a.Status == AccountStatusClosed {
		return errors.New("account is already closed")
	}

	if !a.LoanBalance.IsZero() {
		return errors.New("loan balance must be zero to close")
	}

	a.Status = AccountStatusClosed
	now := time.Now()
	a.ClosedAt = &now
	return nil
}

// Freeze freezes the account
func (a *Account) Freeze() error {
	if a.Status == AccountStatusClosed {
		return errors.New("cannot freeze a closed account")
	}

	a.Status = AccountStatusFrozen
	return nil
}

// Activate activates the account
func (a *Account) Activate() error {
	if a.Status == AccountStatusClosed {
		return errors.New("cannot activate a closed account")
	}

	a.Status = AccountStatusActive
	return nil
}

// TableName returns the table name for Account
func (a *Account) TableName() string {
	return "accounts"
}

// Helper functions

// IsValidAccountStatus checks if the account status is valid
func IsValidAccountStatus(status string) bool {
	switch status {
	case AccountStatusActive, AccountStatusInactive, AccountStatusFrozen, AccountStatusClosed:
		return true
	default:
		return false
	}
}

// GenerateAccountNumber generates a 10-digit account number for the given
// owner kind
func GenerateAccountNumber(organization bool) string {
	prefix := BorrowerPrefix
	if organization {
		prefix = OrganizationPrefix
	}

	middle := fmt.Sprintf("%02d", rand.Intn(100))

	// In production, this would be from a database sequence
	suffix := fmt.Sprintf("%06d", rand.Intn(1000000))

	return prefix + middle + suffix
}

// ValidateAccountNumber validates an account number format
func ValidateAccountNumber(accountNumber string) bool {
	if len(accountNumber) != 10 {
		return false
	}

	for _, char := range accountNumber {
		if char < '0' || char > '9' {
			return false
		}
	}

	prefix := accountNumber[:2]
	if prefix != BorrowerPrefix && prefix != OrganizationPrefix {
		return false
	}

	return true
}
