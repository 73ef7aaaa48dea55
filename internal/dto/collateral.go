package dto

import (
	"time"

	"lendvault/internal/models"

	"github.com/google/uuid"
)

// Collateral Request DTOs

// CreateCollateralRequest represents the request payload for pledging an asset
type CreateCollateralRequest struct {
	OwnerID     string `json:"owner_id" validate:"required,uuid"`
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"omitempty,max=2000"`
}

// ApproveLoanRequest represents the request payload for approving a loan
type ApproveLoanRequest struct {
	LoanAmount        string `json:"loan_amount" validate:"required,amount"`
	SettlementAddress string `json:"settlement_address" validate:"omitempty,max=255"`
}

// ExtendLoanRequest represents the request payload for extending a loan
type ExtendLoanRequest struct {
	ExtensionDays int    `json:"extension_days" validate:"required,min=1,max=365"`
	Fee           string `json:"fee" validate:"required,amount"`
}

// CollateralFilterParams contains query parameters for listing collaterals
type CollateralFilterParams struct {
	OwnerID string `query:"owner_id" validate:"omitempty,uuid"`
	Status  string `query:"status" validate:"omitempty,oneof=pending approved rejected released defaulted"`
	PaginationParams
}

// Collateral Response DTOs

// CollateralResponse represents a collateral in API responses
type CollateralResponse struct {
	ID           uuid.UUID  `json:"id"`
	OwnerID      uuid.UUID  `json:"owner_id"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Status       string     `json:"status"`
	LoanAmount   string     `json:"loan_amount"`
	LoanLimit    string     `json:"loan_limit"`
	InterestRate string     `json:"interest_rate"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	ReleasedAt   *time.Time `json:"released_at,omitempty"`
}

// ListCollateralsResponse represents the response for listing collaterals
type ListCollateralsResponse struct {
	Collaterals []CollateralResponse `json:"collaterals"`
	Pagination  PaginationInfo       `json:"pagination"`
}

// NewCollateralResponse converts a model to its API representation
func NewCollateralResponse(c *models.Collateral) CollateralResponse {
	return CollateralResponse{
		ID:           c.ID,
		OwnerID:      c.OwnerID,
		Name:         c.Name,
		Description:  c.Description,
		Status:       c.Status,
		LoanAmount:   c.LoanAmount.String(),
		LoanLimit:    c.LoanLimit.String(),
		InterestRate: c.InterestRate.String(),
		DueDate:      c.DueDate,
		CreatedAt:    c.CreatedAt,
		ApprovedAt:   c.ApprovedAt,
		ReleasedAt:   c.ReleasedAt,
	}
}
