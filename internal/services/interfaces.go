package services

import (
	"context"
	"time"

	"lendvault/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceCalculatorInterface computes balance deltas from the rule table
type BalanceCalculatorInterface interface {
	Compute(account *models.Account, txType models.TransactionType, amount decimal.Decimal) (*BalanceDelta, error)
}

// TransactionRequest describes a financial action to run through the ledger
type TransactionRequest struct {
	OwnerID           uuid.UUID
	Type              models.TransactionType
	Amount            decimal.Decimal
	Description       string
	CollateralID      *uuid.UUID
	SettlementAddress string
}

// BalanceServiceInterface is the single entry point for balance mutations
type BalanceServiceInterface interface {
	// Execute creates a pending entry, applies it, settles externally when an
	// address is given, and reverts on settlement failure.
	Execute(ctx context.Context, req TransactionRequest) (*models.Transaction, error)

	// ProcessTransaction applies a pending entry's delta, snapshots balances,
	// completes it and mirrors it to the organization account.
	ProcessTransaction(ctx context.Context, transactionID uuid.UUID) error

	// RevertTransaction restores the before-balances of a completed entry and
	// marks it failed. Idempotent.
	RevertTransaction(ctx context.Context, transactionID uuid.UUID) error
}

// AccountServiceInterface manages account lifecycle
type AccountServiceInterface interface {
	CreateAccount(ctx context.Context, ownerID uuid.UUID) (*models.Account, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetAccountByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Account, error)
	ListAccounts(ctx context.Context, filters models.AccountFilters) ([]models.Account, int64, error)
	CloseAccount(ctx context.Context, id uuid.UUID) error
	GetOwnerSummary(ctx context.Context, ownerID uuid.UUID) (*models.TransactionSummary, error)
}

// CollateralServiceInterface manages the collateral loan lifecycle
type CollateralServiceInterface interface {
	CreateCollateral(ctx context.Context, ownerID uuid.UUID, name, description string) (*models.Collateral, error)
	GetCollateral(ctx context.Context, id uuid.UUID) (*models.Collateral, error)
	ListCollaterals(ctx context.Context, filters models.CollateralFilters) ([]models.Collateral, int64, error)
	ApproveLoan(ctx context.Context, collateralID uuid.UUID, loanAmount decimal.Decimal, settlementAddress string) (*models.Collateral, error)
	RejectCollateral(ctx context.Context, collateralID uuid.UUID) error
	ExtendLoan(ctx context.Context, collateralID uuid.UUID, extensionDays int, fee decimal.Decimal) (*models.Collateral, error)
	ReleaseCollateral(ctx context.Context, collateralID uuid.UUID) error
	MarkDefaulted(ctx context.Context, collateralID uuid.UUID) error
}

// AuditLoggerInterface emits the structured audit trail for ledger events
type AuditLoggerInterface interface {
	LogTransactionStateChange(ctx context.Context, transactionID uuid.UUID, oldStatus, newStatus string)
	LogBalanceUpdate(ctx context.Context, accountID uuid.UUID, field, oldBalance, newBalance string, transactionID uuid.UUID)
	LogMirrorCreated(ctx context.Context, originalID, mirrorID uuid.UUID, mirrorType models.TransactionType)
	LogSettlementFailure(ctx context.Context, transactionID uuid.UUID, errorMsg string)
	LogReversal(ctx context.Context, transactionID uuid.UUID, reason string)
	LogCollateralStateChange(ctx context.Context, collateralID uuid.UUID, oldStatus, newStatus string)
	LogLoanExtension(ctx context.Context, collateralID uuid.UUID, extensionDays int, fee string, newDueDate time.Time)
}

// MetricsRecorderInterface records operational metrics
type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}
