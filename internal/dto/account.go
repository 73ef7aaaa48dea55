package dto

import (
	"time"

	"lendvault/internal/models"

	"github.com/google/uuid"
)

// Account Request DTOs

// CreateOwnerRequest represents the request payload for registering a borrower
// together with their account
type CreateOwnerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,min=1,max=100"`
	LastName  string `json:"last_name" validate:"omitempty,max=100"`
}

// AccountFilterParams contains query parameters for listing accounts
type AccountFilterParams struct {
	OwnerID string `query:"owner_id" validate:"omitempty,uuid"`
	Status  string `query:"status" validate:"omitempty,oneof=active inactive frozen closed"`
	PaginationParams
}

// Account Response DTOs

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID                uuid.UUID `json:"id"`
	AccountNumber     string    `json:"account_number"`
	OwnerID           uuid.UUID `json:"owner_id"`
	Organization      bool      `json:"organization"`
	LoanBalance       string    `json:"loan_balance"`
	InvestmentBalance string    `json:"investment_balance"`
	Status            string    `json:"status"`
	Currency          string    `json:"currency"`
	CreatedAt         time.Time `json:"created_at"`
}

// OwnerResponse represents an owner with their account
type OwnerResponse struct {
	ID        uuid.UUID        `json:"id"`
	Email     string           `json:"email"`
	FirstName string           `json:"first_name"`
	LastName  string           `json:"last_name,omitempty"`
	Role      string           `json:"role"`
	Account   *AccountResponse `json:"account,omitempty"`
}

// ListAccountsResponse represents the response for listing accounts
type ListAccountsResponse struct {
	Accounts   []AccountResponse `json:"accounts"`
	Pagination PaginationInfo    `json:"pagination"`
}

// SummaryResponse represents an owner's ledger summary
type SummaryResponse struct {
	OwnerID           uuid.UUID `json:"owner_id"`
	TotalDeposits     string    `json:"total_deposits"`
	TotalWithdrawals  string    `json:"total_withdrawals"`
	TotalPayments     string    `json:"total_payments"`
	TotalFees         string    `json:"total_fees"`
	TransactionCount  int64     `json:"transaction_count"`
	LoanBalance       string    `json:"loan_balance"`
	InvestmentBalance string    `json:"investment_balance"`
}

// NewAccountResponse converts a model to its API representation
func NewAccountResponse(a *models.Account) AccountResponse {
	return AccountResponse{
		ID:                a.ID,
		AccountNumber:     a.AccountNumber,
		OwnerID:           a.OwnerID,
		Organization:      a.Organization,
		LoanBalance:       a.LoanBalance.String(),
		InvestmentBalance: a.InvestmentBalance.String(),
		Status:            a.Status,
		Currency:          a.Currency,
		CreatedAt:         a.CreatedAt,
	}
}

// NewSummaryResponse converts a summary to its API representation
func NewSummaryResponse(s *models.TransactionSummary) SummaryResponse {
	return SummaryResponse{
		OwnerID:           s.OwnerID,
		TotalDeposits:     s.TotalDeposits.String(),
		TotalWithdrawals:  s.TotalWithdrawals.String(),
		TotalPayments:     s.TotalPayments.String(),
		TotalFees:         s.TotalFees.String(),
		TransactionCount:  s.TransactionCount,
		LoanBalance:       s.LoanBalance.String(),
		InvestmentBalance: s.InvestmentBalance.String(),
	}
}
