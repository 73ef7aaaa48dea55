package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SettlementResult is the outcome of an external transfer attempt
type SettlementResult struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// SettlementGateway moves funds in the outside world. A non-OK result after
// the ledger has committed triggers a compensating reversal.
type SettlementGateway interface {
	Transfer(ctx context.Context, fromPrincipal, toAddress string, amount decimal.Decimal) (*SettlementResult, error)
}

// Appraisal is the valuation produced for newly pledged collateral
type Appraisal struct {
	LoanLimit    decimal.Decimal
	InterestRate decimal.Decimal
	DueDate      time.Time
}

// ValuationProvider appraises collateral at creation time
type ValuationProvider interface {
	Appraise(ctx context.Context, name, description string) (*Appraisal, error)
}
