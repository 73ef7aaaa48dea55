package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StaticValuationProvider appraises collateral from configured defaults.
// The production appraisal pipeline sits behind the same interface; this
// implementation covers environments without one.
type StaticValuationProvider struct {
	loanLimit    decimal.Decimal
	interestRate decimal.Decimal
	loanTermDays int
}

// NewStaticValuationProvider creates a config-driven appraiser
func NewStaticValuationProvider(loanLimit, interestRate decimal.Decimal, loanTermDays int) ValuationProvider {
	return &StaticValuationProvider{
		loanLimit:    loanLimit,
		interestRate: interestRate,
		loanTermDays: loanTermDays,
	}
}

// Appraise returns the configured limit, rate and term for any asset
func (p *StaticValuationProvider) Appraise(ctx context.Context, name, description string) (*Appraisal, error) {
	return &Appraisal{
		LoanLimit:    p.loanLimit,
		InterestRate: p.interestRate,
		DueDate:      time.Now().AddDate(0, 0, p.loanTermDays),
	}, nil
}
