package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionFilters contains filtering options for ledger queries
type TransactionFilters struct {
	AccountID       uuid.UUID
	OwnerID         uuid.UUID
	CollateralID    uuid.UUID
	Type            TransactionType
	Status          string
	ReferenceNumber string
	StartDate       *time.Time
	EndDate         *time.Time
	MinAmount       *decimal.Decimal
	MaxAmount       *decimal.Decimal
	Offset          int
	Limit           int
}

// CollateralFilters contains filtering options for collateral queries
type CollateralFilters struct {
	OwnerID    uuid.UUID
	Status     string
	OverdueBy  *time.Time
	Offset     int
	Limit      int
}

// AccountFilters contains filtering options for account queries
type AccountFilters struct {
	OwnerID      uuid.UUID
	Status       string
	Organization *bool
	Offset       int
	Limit        int
}

// TransactionSummary aggregates an owner's completed ledger activity
type TransactionSummary struct {
	OwnerID           uuid.UUID       `json:"owner_id"`
	TotalDeposits     decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals  decimal.Decimal `json:"total_withdrawals"`
	TotalPayments     decimal.Decimal `json:"total_payments"`
	TotalFees         decimal.Decimal `json:"total_fees"`
	TransactionCount  int64           `json:"transaction_count"`
	LoanBalance       decimal.Decimal `json:"loan_balance"`
	InvestmentBalance decimal.Decimal `json:"investment_balance"`
}
