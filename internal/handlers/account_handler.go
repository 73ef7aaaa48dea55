package handlers

import (
	"net/http"

	"lendvault/internal/dto"
	"lendvault/internal/errors"
	"lendvault/internal/models"
	"lendvault/internal/repositories"
	"lendvault/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AccountHandler handles account and owner HTTP requests
type AccountHandler struct {
	accountService services.AccountServiceInterface
	userRepo       repositories.UserRepositoryInterface
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(
	accountService services.AccountServiceInterface,
	userRepo repositories.UserRepositoryInterface,
) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		userRepo:       userRepo,
	}
}

// CreateOwner registers a borrower and opens their account
func (h *AccountHandler) CreateOwner(c echo.Context) error {
	var req dto.CreateOwnerRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	user := &models.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      models.RoleBorrower,
	}
	if err := h.userRepo.Create(user); err != nil {
		return mapDomainError(c, err)
	}

	account, err := h.accountService.CreateAccount(c.Request().Context(), user.ID)
	if err != nil {
		return mapDomainError(c, err)
	}

	accountResp := dto.NewAccountResponse(account)
	return c.JSON(http.StatusCreated, SuccessResponse{
		Data: dto.OwnerResponse{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      user.Role,
			Account:   &accountResp,
		},
	})
}

// GetAccount retrieves an account by ID
func (h *AccountHandler) GetAccount(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid account ID"))
	}

	account, err := h.accountService.GetAccount(c.Request().Context(), id)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data: dto.NewAccountResponse(account),
	})
}

// GetAccountByOwner retrieves the account for an owner
func (h *AccountHandler) GetAccountByOwner(c echo.Context) error {
	ownerID, err := uuid.Parse(c.Param("ownerId"))
	if err != nil {
		return SendError(c, errors.OwnerInvalidID)
	}

	account, err := h.accountService.GetAccountByOwner(c.Request().Context(), ownerID)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data: dto.NewAccountResponse(account),
	})
}

// ListAccounts retrieves paginated, filtered accounts
func (h *AccountHandler) ListAccounts(c echo.Context) error {
	var params dto.AccountFilterParams
	if err := c.Bind(&params); err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid query parameters"))
	}
	if err := c.Validate(&params); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}
	params.Normalize()

	filters := models.AccountFilters{
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

	accounts, total, err := h.accountService.ListAccounts(c.Request().Context(), filters)
	if err != nil {
		return SendSystemError(c, err)
	}

	resp := dto.ListAccountsResponse{
		Accounts: make([]dto.AccountResponse, 0, len(accounts)),
		Pagination: dto.PaginationInfo{
			Offset: params.Offset,
			Limit:  params.Limit,
			Total:  total,
		},
	}
	for i := range accounts {
		resp.Accounts = append(resp.Accounts, dto.NewAccountResponse(&accounts[i]))
	}

	return c.JSON(http.StatusOK, resp)
}

// CloseAccount closes an account with no outstanding loan principal
func (h *AccountHandler) CloseAccount(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid account ID"))
	}

	if err := h.accountService.CloseAccount(c.Request().Context(), id); err != nil {
		if err.Error() == "loan balance must be zero to close" ||
			err.Error() == "account is already closed" {
			return SendError(c, errors.AccountOperationNotPermitted, errors.WithDetails(err.Error()))
		}
		return mapDomainError(c, err)
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "account closed"})
}

// GetOwnerSummary retrieves the aggregated ledger summary for an owner
func (h *AccountHandler) GetOwnerSummary(c echo.Context) error {
	ownerID, err := uuid.Parse(c.Param("ownerId"))
	if err != nil {
		return SendError(c, errors.OwnerInvalidID)
	}

	summary, err := h.accountService.GetOwnerSummary(c.Request().Context(), ownerID)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data: dto.NewSummaryResponse(summary),
	})
}
