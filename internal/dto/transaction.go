package dto

import (
	"time"

	"lendvault/internal/models"

	"github.com/google/uuid"
)

// Transaction Request DTOs

// DepositRequest represents the request payload for a deposit
type DepositRequest struct {
	OwnerID     string `json:"owner_id" validate:"required,uuid"`
	Amount      string `json:"amount" validate:"required,amount"`
	Description string `json:"description" validate:"omitempty,max=255"`
}

// WithdrawalRequest represents the request payload for a withdrawal
type WithdrawalRequest struct {
	OwnerID           string `json:"owner_id" validate:"required,uuid"`
	Amount            string `json:"amount" validate:"required,amount"`
	Description       string `json:"description" validate:"omitempty,max=255"`
	SettlementAddress string `json:"settlement_address" validate:"omitempty,max=255"`
}

// PaymentRequest represents the request payload for a loan payment
type PaymentRequest struct {
	OwnerID           string `json:"owner_id" validate:"required,uuid"`
	Amount            string `json:"amount" validate:"required,amount"`
	Description       string `json:"description" validate:"omitempty,max=255"`
	SettlementAddress string `json:"settlement_address" validate:"omitempty,max=255"`
}

// TransactionFilterParams contains query parameters for listing transactions
type TransactionFilterParams struct {
	OwnerID   string `query:"owner_id" validate:"omitempty,uuid"`
	AccountID string `query:"account_id" validate:"omitempty,uuid"`
	Type      string `query:"type" validate:"omitempty,transaction_type"`
	Status    string `query:"status" validate:"omitempty,oneof=pending completed failed cancelled reversed"`
	Reference string `query:"reference"`
	PaginationParams
}

// Transaction Response DTOs

// TransactionResponse represents a ledger entry in API responses
type TransactionResponse struct {
	ID                      uuid.UUID  `json:"id"`
	AccountID               uuid.UUID  `json:"account_id"`
	OwnerID                 uuid.UUID  `json:"owner_id"`
	Type                    string     `json:"transaction_type"`
	Status                  string     `json:"status"`
	Amount                  string     `json:"amount"`
	CollateralID            *uuid.UUID `json:"collateral_id,omitempty"`
	LoanBalanceBefore       *string    `json:"loan_balance_before,omitempty"`
	LoanBalanceAfter        *string    `json:"loan_balance_after,omitempty"`
	InvestmentBalanceBefore *string    `json:"investment_balance_before,omitempty"`
	InvestmentBalanceAfter  *string    `json:"investment_balance_after,omitempty"`
	Description             string     `json:"description"`
	ReferenceNumber         string     `json:"reference_number,omitempty"`
	FailureReason           string     `json:"failure_reason,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
	ProcessedAt             *time.Time `json:"processed_at,omitempty"`
	FailedAt                *time.Time `json:"failed_at,omitempty"`
}

// ListTransactionsResponse represents the response for listing transactions
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   PaginationInfo        `json:"pagination"`
}

// NewTransactionResponse converts a model to its API representation
func NewTransactionResponse(t *models.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:              t.ID,
		AccountID:       t.AccountID,
		OwnerID:         t.OwnerID,
		Type:            string(t.Type),
		Status:          t.Status,
		Amount:          t.Amount.String(),
		CollateralID:    t.CollateralID,
		Description:     t.Description,
		ReferenceNumber: t.ReferenceNumber,
		FailureReason:   t.FailureReason,
		CreatedAt:       t.CreatedAt,
		ProcessedAt:     t.ProcessedAt,
		FailedAt:        t.FailedAt,
	}

	if t.LoanBalanceBefore != nil {
		v := t.LoanBalanceBefore.String()
		resp.LoanBalanceBefore = &v
	}
	if t.LoanBalanceAfter != nil {
		v := t.LoanBalanceAfter.String()
		resp.LoanBalanceAfter = &v
	}
	if t.InvestmentBalanceBefore != nil {
		v := t.InvestmentBalanceBefore.String()
		resp.InvestmentBalanceBefore = &v
	}
	if t.InvestmentBalanceAfter != nil {
		v := t.InvestmentBalanceAfter.String()
		resp.InvestmentBalanceAfter = &v
	}

	return resp
}
