package services

import (
	"errors"
	"fmt"

	"lendvault/internal/models"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownTransactionType = errors.New("unknown transaction type")
	ErrOrganizationDisburse   = errors.New("organization account cannot receive a loan disbursement")
)

// InsufficientBalanceError carries the amounts involved in a rejected debit
type InsufficientBalanceError struct {
	Field     string
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s: required %s, available %s",
		e.Field, e.Required.String(), e.Available.String())
}

// BalanceDelta is the result of applying one ledger entry to an account's
// balance pair
type BalanceDelta struct {
	LoanBefore       decimal.Decimal
	LoanAfter        decimal.Decimal
	InvestmentBefore decimal.Decimal
	InvestmentAfter  decimal.Decimal
}

// balanceCalculator implements BalanceCalculatorInterface. It is pure: no
// I/O, no mutation, just the rule table.
type balanceCalculator struct{}

// NewBalanceCalculator creates a new balance calculator
func NewBalanceCalculator() BalanceCalculatorInterface {
	return &balanceCalculator{}
}

// Compute applies the balance rule table for one entry. The switch is
// exhaustive over the closed type set; anything else is an error, never a
// fallthrough.
//
// Rules:
//
//	deposit            investment += amount
//	withdrawal         investment -= amount   (rejects overdraw)
//	interest           investment += amount
//	loan_disbursement  loan += amount         (forbidden for the organization)
//	payment            borrower: loan -= amount; organization: investment -= amount
//	fee                investment -= amount
//
// The organization account's loan balance is pinned to zero on every path.
func (c *balanceCalculator) Compute(account *models.Account, txType models.TransactionType, amount decimal.Decimal) (*BalanceDelta, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, models.ErrInvalidAmount
	}

	delta := &BalanceDelta{
		LoanBefore:       account.LoanBalance,
		LoanAfter:        account.LoanBalance,
		InvestmentBefore: account.InvestmentBalance,
		InvestmentAfter:  account.InvestmentBalance,
	}

	switch txType {
	case models.TransactionTypeDeposit:
		delta.InvestmentAfter = account.InvestmentBalance.Add(amount)

	case models.TransactionTypeWithdrawal:
		if account.InvestmentBalance.LessThan(amount) {
			return nil, &InsufficientBalanceError{
				Field:     "investment balance",
				Required:  amount,
				Available: account.InvestmentBalance,
			}
		}
		delta.InvestmentAfter = account.InvestmentBalance.Sub(amount)

	case models.TransactionTypeInterest:
		delta.InvestmentAfter = account.InvestmentBalance.Add(amount)

	case models.TransactionTypeLoanDisbursement:
		if account.Organization {
			return nil, ErrOrganizationDisburse
		}
		delta.LoanAfter = account.LoanBalance.Add(amount)

	case models.TransactionTypePayment:
		if account.Organization {
			if account.InvestmentBalance.LessThan(amount) {
				return nil, &InsufficientBalanceError{
					Field:     "investment balance",
					Required:  amount,
					Available: account.InvestmentBalance,
				}
			}
			delta.InvestmentAfter = account.InvestmentBalance.Sub(amount)
		} else {
			if account.LoanBalance.LessThan(amount) {
				return nil, &InsufficientBalanceError{
					Field:     "loan balance",
					Required:  amount,
					Available: account.LoanBalance,
				}
			}
			delta.LoanAfter = account.LoanBalance.Sub(amount)
		}

	case models.TransactionTypeFee:
		if account.InvestmentBalance.LessThan(amount) {
			return nil, &InsufficientBalanceError{
				Field:     "investment balance",
				Required:  amount,
				Available: account.InvestmentBalance,
			}
		}
		delta.InvestmentAfter = account.InvestmentBalance.Sub(amount)

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownTransactionType, txType)
	}

	if account.Organization {
		delta.LoanBefore = decimal.Zero
		delta.LoanAfter = decimal.Zero
	}

	return delta, nil
}
