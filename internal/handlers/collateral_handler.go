package handlers

import (
	"net/http"

	"lendvault/internal/dto"
	"lendvault/internal/errors"
	"lendvault/internal/models"
	"lendvault/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// CollateralHandler handles collateral lifecycle HTTP requests
type CollateralHandler struct {
	collateralService services.CollateralServiceInterface
}

// NewCollateralHandler creates a new collateral handler
func NewCollateralHandler(collateralService services.CollateralServiceInterface) *CollateralHandler {
	return &CollateralHandler{
		collateralService: collateralService,
	}
}

// CreateCollateral registers a pledged asset for appraisal
func (h *CollateralHandler) CreateCollateral(c echo.Context) error {
	var req dto.CreateCollateralRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		return SendError(c, errors.OwnerInvalidID)
	}

	collateral, err := h.collateralService.CreateCollateral(c.Request().Context(), ownerID, req.Name, req.Description)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, SuccessResponse{
		Data: dto.NewCollateralResponse(collateral),
	})
}

// GetCollateral retrieves a collateral by ID
func (h *CollateralHandler) GetCollateral(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid collateral ID"))
	}

	collateral, err := h.collateralService.GetCollateral(c.Request().Context(), id)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data: dto.NewCollateralResponse(collateral),
	})
}

// ListCollaterals retrieves paginated, filtered collaterals
func (h *CollateralHandler) ListCollaterals(c echo.Context) error {
	var params dto.CollateralFilterParams
	if err := c.Bind(&params); err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid query parameters"))
	}
	if err := c.Validate(&params); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}
	params.Normalize()

	filters := models.CollateralFilters{
		Status: params.Status,
		Offset: params.Offset,
		Limit:  params.Limit,
	}
	if params.OwnerID != "" {
		ownerID, err := uuid.Parse(params.OwnerID)
		if err != nil {
			return SendError(c, errors.OwnerInvalidID)
		}
		filters.OwnerID = ownerID
	}

	collaterals, total, err := h.collateralService.ListCollaterals(c.Request().Context(), filters)
	if err != nil {
		return SendSystemError(c, err)
	}

	resp := dto.ListCollateralsResponse{
		Collaterals: make([]dto.CollateralResponse, 0, len(collaterals)),
		Pagination: dto.PaginationInfo{
			Offset: params.Offset,
			Limit:  params.Limit,
			Total:  total,
		},
	}
	for i := range collaterals {
		resp.Collaterals = append(resp.Collaterals, dto.NewCollateralResponse(&collaterals[i]))
	}

	return c.JSON(http.StatusOK, resp)
}

// ApproveLoan approves a pending collateral and disburses the loan
func (h *CollateralHandler) ApproveLoan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid collateral ID"))
	}

	var req dto.ApproveLoanRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	loanAmount, err := decimal.NewFromString(req.LoanAmount)
	if err != nil {
		return SendError(c, errors.TransactionInvalidAmount)
	}

	collateral, err := h.collateralService.ApproveLoan(c.Request().Context(), id, loanAmount, req.SettlementAddress)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data:    dto.NewCollateralResponse(collateral),
		Message: "loan approved and disbursed",
	})
}

// RejectCollateral rejects a pending collateral
func (h *CollateralHandler) RejectCollateral(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid collateral ID"))
	}

	if err := h.collateralService.RejectCollateral(c.Request().Context(), id); err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "collateral rejected"})
}

// ExtendLoan extends an approved loan's due date for a fee
func (h *CollateralHandler) ExtendLoan(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid collateral ID"))
	}

	var req dto.ExtendLoanRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	fee, err := decimal.NewFromString(req.Fee)
	if err != nil {
		return SendError(c, errors.TransactionInvalidAmount)
	}

	collateral, err := h.collateralService.ExtendLoan(c.Request().Context(), id, req.ExtensionDays, fee)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data:    dto.NewCollateralResponse(collateral),
		Message: "loan extended",
	})
}

// ReleaseCollateral returns a repaid asset to its owner
func (h *CollateralHandler) ReleaseCollateral(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid collateral ID"))
	}

	if err := h.collateralService.ReleaseCollateral(c.Request().Context(), id); err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "collateral released"})
}

// MarkDefaulted forfeits an approved collateral
func (h *CollateralHandler) MarkDefaulted(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid collateral ID"))
	}

	if err := h.collateralService.MarkDefaulted(c.Request().Context(), id); err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "collateral marked defaulted"})
}
