package handlers

import (
	"errors"
	"fmt"

	apierrors "lendvault/internal/errors"
	"lendvault/internal/models"
	"lendvault/internal/repositories"
	"lendvault/internal/services"

	"github.com/labstack/echo/v4"
)

func getIntParam(c echo.Context, name string, defaultValue int) int {
	param := c.QueryParam(name)
	if param == "" {
		return defaultValue
	}

	var value int
	if _, err := fmt.Sscanf(param, "%d", &value); err != nil {
		return defaultValue
	}

	return value
}

// mapDomainError translates service and repository errors into API error
// responses. Unrecognized errors become system errors so internals stay
// hidden from clients.
func mapDomainError(c echo.Context, err error) error {
	var insufficient *services.InsufficientBalanceError

	switch {
	case errors.Is(err, repositories.ErrAccountNotFound),
		errors.Is(err, repositories.ErrOrganizationNotFound):
		return SendError(c, apierrors.AccountNotFound)
	case errors.Is(err, repositories.ErrUserNotFound):
		return SendError(c, apierrors.OwnerNotFound)
	case errors.Is(err, repositories.ErrTransactionNotFound):
		return SendError(c, apierrors.TransactionNotFound)
	case errors.Is(err, repositories.ErrCollateralNotFound):
		return SendError(c, apierrors.CollateralNotFound)
	case errors.Is(err, repositories.ErrEmailExists):
		return SendError(c, apierrors.OwnerAlreadyExists)
	case errors.Is(err, repositories.ErrAccountExists):
		return SendError(c, apierrors.AccountAlreadyExists)
	case errors.Is(err, repositories.ErrAccountNotActive):
		return SendError(c, apierrors.AccountInactive)
	case errors.As(err, &insufficient):
		return SendError(c, apierrors.TransactionInsufficientBalance,
			apierrors.WithDetails(insufficient.Error()))
	case errors.Is(err, repositories.ErrInvalidTransition):
		return SendError(c, apierrors.TransactionInvalidTransition)
	case errors.Is(err, services.ErrMissingSnapshot):
		return SendError(c, apierrors.TransactionMissingSnapshot)
	case errors.Is(err, services.ErrUnknownTransactionType),
		errors.Is(err, models.ErrInvalidTransactionType):
		return SendError(c, apierrors.TransactionInvalidType)
	case errors.Is(err, models.ErrInvalidAmount):
		return SendError(c, apierrors.TransactionInvalidAmount)
	case errors.Is(err, services.ErrLoanLimitExceeded),
		errors.Is(err, models.ErrLoanLimitExceeded):
		return SendError(c, apierrors.CollateralLimitExceeded,
			apierrors.WithDetails(err.Error()))
	case errors.Is(err, services.ErrInsufficientFundAssets):
		return SendError(c, apierrors.SettlementInsufficientFund,
			apierrors.WithDetails(err.Error()))
	case errors.Is(err, models.ErrInvalidCollateralStatus):
		return SendError(c, apierrors.CollateralInvalidTransition)
	case errors.Is(err, models.ErrCollateralNotApproved):
		return SendError(c, apierrors.CollateralNotApproved)
	case errors.Is(err, services.ErrSettlementFailure):
		return SendError(c, apierrors.SettlementFailure,
			apierrors.WithDetails(err.Error()))
	default:
		return SendSystemError(c, err)
	}
}
