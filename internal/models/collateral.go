package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	CollateralStatusPending   = "pending"
	CollateralStatusApproved  = "approved"
	CollateralStatusRejected  = "rejected"
	CollateralStatusReleased  = "released"
	CollateralStatusDefaulted = "defaulted"
)

var (
	ErrInvalidCollateralStatus = errors.New("invalid collateral status")
	ErrLoanLimitExceeded       = errors.New("loan amount exceeds loan limit")
	ErrCollateralNotApproved   = errors.New("collateral is not approved")
)

// Collateral is a pledged asset backing a loan. LoanLimit and InterestRate
// come from appraisal; LoanAmount tracks outstanding principal against this
// specific asset, including capitalized extension fees.
type Collateral struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OwnerID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	Status       string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	LoanAmount   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"loan_amount"`
	LoanLimit    decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0" json:"loan_limit"`
	InterestRate decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"interest_rate"`
	DueDate      *time.Time      `json:"due_date,omitempty"`
	Valuation    JSONBMap        `gorm:"type:text" json:"valuation,omitempty"`
	CreatedAt    time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null" json:"updated_at"`
	ApprovedAt   *time.Time      `json:"approved_at,omitempty"`
	ReleasedAt   *time.Time      `json:"released_at,omitempty"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`

	// Associations
	Owner        User          `gorm:"foreignKey:OwnerID" json:"-"`
	Transactions []Transaction `gorm:"foreignKey:CollateralID" json:"-"`
}

// BeforeCreate hook for Collateral
func (c *Collateral) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}

	if c.Status == "" {
		c.Status = CollateralStatusPending
	}

	// Set timestamps if not already set (for tests)
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}

	return c.Validate()
}

// BeforeUpdate hook for Collateral
func (c *Collateral) BeforeUpdate(tx *gorm.DB) error {
	c.UpdatedAt = time.Now()
	return c.Validate()
}

// Validate validates the collateral fields
func (c *Collateral) Validate() error {
	if c.OwnerID == uuid.Nil {
		return errors.New("owner ID is required")
	}

	if c.Name == "" {
		return errors.New("collateral name is required")
	}

	if !IsValidCollateralStatus(c.Status) {
		return ErrInvalidCollateralStatus
	}

	if c.LoanAmount.LessThan(decimal.Zero) || c.LoanLimit.LessThan(decimal.Zero) {
		return errors.New("loan amount and loan limit cannot be negative")
	}

	if c.InterestRate.LessThan(decimal.Zero) {
		return errors.New("interest rate cannot be negative")
	}

	// Holds at approval and through every later mutation, capitalized
	// extension fees included
	if c.LoanAmount.GreaterThan(c.LoanLimit) {
		return ErrLoanLimitExceeded
	}

	return nil
}

// IsPending returns true if the collateral is awaiting approval
func (c *Collateral) IsPending() bool {
	return c.Status == CollateralStatusPending
}

// IsApproved returns true if the collateral backs an active loan
func (c *Collateral) IsApproved() bool {
	return c.Status == CollateralStatusApproved
}

// Approve marks the collateral approved with the disbursed principal
func (c *Collateral) Approve(loanAmount decimal.Decimal) error {
	if !c.CanTransitionTo(CollateralStatusApproved) {
		return ErrInvalidCollateralStatus
	}

	if loanAmount.GreaterThan(c.LoanLimit) {
		return ErrLoanLimitExceeded
	}

	c.Status = CollateralStatusApproved
	c.LoanAmount = loanAmount
	now := time.Now()
	c.ApprovedAt = &now
	return nil
}

// Reject marks a pending collateral rejected
func (c *Collateral) Reject() error {
	if !c.CanTransitionTo(CollateralStatusRejected) {
		return ErrInvalidCollateralStatus
	}

	c.Status = CollateralStatusRejected
	return nil
}

// Release returns the asset to the owner after full repayment
func (c *Collateral) Release() error {
	if !c.CanTransitionTo(CollateralStatusReleased) {
		return ErrInvalidCollateralStatus
	}

	c.Status = CollateralStatusReleased
	now := time.Now()
	c.ReleasedAt = &now
	return nil
}

// Default marks the collateral forfeited after non-payment
func (c *Collateral) Default() error {
	if !c.CanTransitionTo(CollateralStatusDefaulted) {
		return ErrInvalidCollateralStatus
	}

	c.Status = CollateralStatusDefaulted
	return nil
}

// IsOverdue returns true if an approved loan is past its due date
func (c *Collateral) IsOverdue() bool {
	if c.Status != CollateralStatusApproved || c.DueDate == nil {
		return false
	}
	return time.Now().After(*c.DueDate)
}

// CanTransitionTo checks if the collateral can transition to a new status
func (c *Collateral) CanTransitionTo(newStatus string) bool {
	validTransitions := map[string][]string{
		CollateralStatusPending:   {CollateralStatusApproved, CollateralStatusRejected},
		CollateralStatusApproved:  {CollateralStatusReleased, CollateralStatusDefaulted},
		CollateralStatusRejected:  {}, // Terminal state
		CollateralStatusReleased:  {}, // Terminal state
		CollateralStatusDefaulted: {}, // Terminal state
	}

	allowedStatuses, exists := validTransitions[c.Status]
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

// TableName returns the table name for Collateral
func (c *Collateral) TableName() string {
	return "collaterals"
}

// IsValidCollateralStatus checks if the collateral status is valid
func IsValidCollateralStatus(status string) bool {
	switch status {
	case CollateralStatusPending, CollateralStatusApproved, CollateralStatusRejected,
		CollateralStatusReleased, CollateralStatusDefaulted:
		return true
	default:
		return false
	}
}
