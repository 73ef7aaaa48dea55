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
	"github.com/shopspring/decimal"
)

// TransactionHandler handles ledger-related HTTP requests
type TransactionHandler struct {
	balanceService  services.BalanceServiceInterface
	transactionRepo repositories.TransactionRepositoryInterface
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(
	balanceService services.BalanceServiceInterface,
	transactionRepo repositories.TransactionRepositoryInterface,
) *TransactionHandler {
	return &TransactionHandler{
		balanceService:  balanceService,
		transactionRepo: transactionRepo,
	}
}

// Deposit credits an owner's investment balance
func (h *TransactionHandler) Deposit(c echo.Context) error {
	var req dto.DepositRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	return h.execute(c, req.OwnerID, models.TransactionTypeDeposit, req.Amount, req.Description, "")
}

// Withdraw debits an owner's investment balance and settles externally when
// a settlement address is provided
func (h *TransactionHandler) Withdraw(c echo.Context) error {
	var req dto.WithdrawalRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	return h.execute(c, req.OwnerID, models.TransactionTypeWithdrawal, req.Amount, req.Description, req.SettlementAddress)
}

// Pay applies a repayment against an owner's loan balance
func (h *TransactionHandler) Pay(c echo.Context) error {
	var req dto.PaymentRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}

	return h.execute(c, req.OwnerID, models.TransactionTypePayment, req.Amount, req.Description, req.SettlementAddress)
}

func (h *TransactionHandler) execute(c echo.Context, ownerIDStr string, txType models.TransactionType, amountStr, description, settlementAddress string) error {
	ownerID, err := uuid.Parse(ownerIDStr)
	if err != nil {
		return SendError(c, errors.OwnerInvalidID)
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return SendError(c, errors.TransactionInvalidAmount)
	}

	if description == "" {
		description = string(txType)
	}

	transaction, err := h.balanceService.Execute(c.Request().Context(), services.TransactionRequest{
		OwnerID:           ownerID,
		Type:              txType,
		Amount:            amount,
		Description:       description,
		SettlementAddress: settlementAddress,
	})
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(http.StatusCreated, SuccessResponse{
		Data: dto.NewTransactionResponse(transaction),
	})
}

// GetTransaction retrieves a single ledger entry
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid transaction ID"))
	}

	transaction, err := h.transactionRepo.GetByID(id)
	if err != nil {
		return mapDomainError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data: dto.NewTransactionResponse(transaction),
	})
}

// ListTransactions retrieves paginated, filtered ledger history
func (h *TransactionHandler) ListTransactions(c echo.Context) error {
	var params dto.TransactionFilterParams
	if err := c.Bind(&params); err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid query parameters"))
	}
	if err := c.Validate(&params); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails(err.Error()))
	}
	params.Normalize()

	filters := models.TransactionFilters{
		Type:            models.TransactionType(params.Type),
		Status:          params.Status,
		ReferenceNumber: params.Reference,
		Offset:          params.Offset,
		Limit:           params.Limit,
	}

	if params.OwnerID != "" {
		ownerID, err := uuid.Parse(params.OwnerID)
		if err != nil {
			return SendError(c, errors.OwnerInvalidID)
		}
		filters.OwnerID = ownerID
	}
	if params.AccountID != "" {
		accountID, err := uuid.Parse(params.AccountID)
		if err != nil {
			return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid account ID"))
		}
		filters.AccountID = accountID
	}

	transactions, total, err := h.transactionRepo.GetWithFilters(filters)
	if err != nil {
		return SendSystemError(c, err)
	}

	resp := dto.ListTransactionsResponse{
		Transactions: make([]dto.TransactionResponse, 0, len(transactions)),
		Pagination: dto.PaginationInfo{
			Offset: params.Offset,
			Limit:  params.Limit,
			Total:  total,
		},
	}
	for i := range transactions {
		resp.Transactions = append(resp.Transactions, dto.NewTransactionResponse(&transactions[i]))
	}

	return c.JSON(http.StatusOK, resp)
}
