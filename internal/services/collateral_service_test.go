package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"lendvault/internal/database"
	"lendvault/internal/models"
	"lendvault/internal/repositories"
	"lendvault/internal/services"
	"lendvault/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *ledgerHarness) collateralService(t *testing.T, valuation services.ValuationProvider) services.CollateralServiceInterface {
	t.Helper()
	if valuation == nil {
		valuation = services.NewStaticValuationProvider(
			mustDecimal(t, "7000.00"), mustDecimal(t, "5.00"), 90)
	}
	return services.NewCollateralService(
		h.collateralRepo,
		h.accountRepo,
		h.balanceService(nil),
		valuation,
		services.NewAuditLogger(nil),
		h.auditRepo,
		noopMetrics{},
	)
}

func TestCollateralService_CreateCollateral(t *testing.T) {
	h := newLedgerHarness(t)
	svc := h.collateralService(t, nil)
	borrower, _ := h.newBorrower(t, "alice@example.com", "0.00")

	collateral, err := svc.CreateCollateral(context.Background(), borrower.ID,
		"2019 Toyota Corolla", "sedan, 60k miles")

	require.NoError(t, err)
	assert.Equal(t, models.CollateralStatusPending, collateral.Status)
	assert.Equal(t, "7000", collateral.LoanLimit.String())
	assert.Equal(t, "5", collateral.InterestRate.String())
	require.NotNil(t, collateral.DueDate)
	assert.True(t, collateral.DueDate.After(time.Now().AddDate(0, 0, 89)))
	assert.Equal(t, "7000.00", collateral.Valuation["loan_limit"])
}

func TestCollateralService_CreateCollateral_RequiresAccount(t *testing.T) {
	h := newLedgerHarness(t)
	svc := h.collateralService(t, nil)

	// An owner without an account cannot pledge
	orphan := database.CreateTestUser(t, h.db, "orphan@example.com")

	_, err := svc.CreateCollateral(context.Background(), orphan.ID, "Watch", "")
	assert.ErrorIs(t, err, repositories.ErrAccountNotFound)
}

func TestCollateralService_CreateCollateral_ValuationFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := newLedgerHarness(t)
	valuation := service_mocks.NewMockValuationProvider(ctrl)
	valuation.EXPECT().
		Appraise(gomock.Any(), "Painting", gomock.Any()).
		Return(nil, errors.New("appraiser unavailable"))

	svc := h.collateralService(t, valuation)
	borrower, _ := h.newBorrower(t, "bob@example.com", "0.00")

	_, err := svc.CreateCollateral(context.Background(), borrower.ID, "Painting", "oil on canvas")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "valuation failed")
}

func TestCollateralService_ApproveLoan(t *testing.T) {
	h := newLedgerHarness(t)
	svc := h.collateralService(t, nil)
	borrower, borrowerAcct := h.newBorrower(t, "carol@example.com", "0.00")

	collateral, err := svc.CreateCollateral(context.Background(), borrower.ID,
		"2019 Toyota Corolla", "")
	require.NoError(t, err)

	approved, err := svc.ApproveLoan(context.Background(), collateral.ID,
		mustDecimal(t, "7000.00"), "")

	require.NoError(t, err)
	assert.Equal(t, models.CollateralStatusApproved, approved.Status)
	assert.Equal(t, "7000", approved.LoanAmount.String())
	require.NotNil(t, approved.ApprovedAt)

	loan, _ := h.accountBalance(t, borrowerAcct)
	assert.Equal(t, "7000", loan.String())

	// Disbursement comes out of the organization fund
	_, orgInvestment := h.orgBalances(t)
	assert.Equal(t, "993000", orgInvestment.String())

	// The disbursement entry carries the collateral id
	entries, _, err := h.transactionRepo.GetByAccountID(borrowerAcct.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.TransactionTypeLoanDisbursement, entries[0].Type)
	require.NotNil(t, entries[0].CollateralID)
	assert.Equal(t, collateral.ID, *entries[0].CollateralID)
}

func TestCollateralService_ApproveLoan_ExceedsLimit(t *testing.T) {
	h := newLedgerHarness(t)
	svc := h.collateralService(t, nil)
	borrower, borrowerAcct := h.newBorrower(t, "dave@example.com", "0.00")

	collateral, err := svc.CreateCollateral(context.Background(), borrower.ID, "Asset", "")
	require.NoError(t, err)

	_, err = svc.ApproveLoan(context.Background(), collateral.ID,
		mustDecimal(t, "8000.00"), "")

	assert.ErrorIs(t, err, services.ErrLoanLimitExceeded)

	// Nothing moved
	loan, _ := h.accountBalance(t, borrowerAcct)
	assert.Equal(t, "0", loan.String())
	fresh, err := h.collateralRepo.GetByID(collateral.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CollateralStatusPending, fresh.Status)
}

func TestCollateralService_ApproveLoan_FundCannotCover(t *testing.T) {
	h := newLedgerHarness(t)
	svc := h.collateralService(t, nil)
	borrower, _ := h.newBorrower(t, "erin@example.com", "0.00")

	collateral, err := svc.CreateCollateral(context.Background(), borrower.ID, "Asset", "")
	require.NoError(t, err)

	// Drain the fund below the requested amount
	h.orgAccount.InvestmentBalance = mustDecimal(t, "100.00")
	require.NoError(t, h.accountRepo.Update(h.orgAccount))

	_, err = svc.ApproveLoan(context.Background(), collateral.ID,
		mustDecimal(t, "7000.00"), "")

	assert.ErrorIs(t, err, services.ErrInsufficientFundAssets)
}

func TestCollateralService_ApproveLoan_NotPending(t *testing.T) {
	h := newLedgerHarness(t)
	svc := h.collateralService(t, nil)
	borrower, _ := h.newBorrower(t, "frank@example.com", "0.00")

	collateral, err := svc.CreateCollateral(context.Background(), borrower.ID, "Asset", "")
	require.NoError(t, err)
	require.NoError(t, svc.RejectCollateral(context.Background(), collateral.ID))

	_, err = svc.ApproveLoan(context.Background(), collateral.ID,
		mustDecimal(t, "1000.00"), "")

	assert.ErrorIs(t, err, models.ErrInvalidCollateralStatus)
}

func TestCollateralService_ExtendLoan(t *testing.T) {
	h := newLedgerHarness(t)
	svc := h.collateralService(t, nil)
	borrower, borrowerAcct := h.newBorrower(t, "grace@example.com", "500.00")

	collateral, err := svc.CreateCollateral(context.Background(), borrower.ID, "Asset", "")
	require.NoError(t, err)
	_, err = svc.ApproveLoan(context.Background(), collateral.ID,
		mustDecimal(t, "5000.00"), "")
	require.NoError(t, err)

	originalDueDate := *collateral.DueDate

	extended, err := svc.ExtendLoan(context.Background(), collateral.ID, 30,
		mustDecimal(t, "350.00"))

	require.NoError(t, err)

	// The fee capitalizes into outstanding principal against the asset
	assert.Equal(t, "5350", extended.LoanAmount.String())
	require.NotNil(t, extended.DueDate)
	assert.WithinDuration(t, originalDueDate.AddDate(0, 0, 30), *extended.DueDate, time.Second)

	// The fee itself was charged through the ledger
	_, investment := h.accountBalance(t, borrowerAcct)
	assert.Equal(t, "150", investment.String())

	// Fee mirrors as organization interest income
	_, orgInvestment := h.orgBalances(t)
	assert.Equal(t, "995350", orgInvestment.String())
}

func TestCollateralService_ExtendLoan_ExceedsLimit(t *testing.T) {
	h := newLedgerHarness(t)
	svc := h.collateralService(t, nil)
	borrower, borrowerAcct := h.newBorrower(t, "olivia@example.com", "500.00")

	collateral, err := svc.CreateCollateral(context.Background(), borrower.ID, "Asset", "")
	require.NoError(t, err)
	_, err = svc.ApproveLoan(context.Background(), collateral.ID,
		mustDecimal(t, "7000.00"), "")
	require.NoError(t, err)

	// Capitalizing the fee would push principal past the appraised limit
	_, err = svc.ExtendLoan(context.Background(), collateral.ID, 30,
		mustDecimal(t, "500.00"))
	assert.ErrorIs(t, err, services.ErrLoanLimitExceeded)

	fresh, err := h.collateralRepo.GetByID(collateral.ID)
	require.NoError(t, err)
	assert.Equal(t, "7000", fresh.LoanAmount.String())

	// No fee was charged
	_, investment := h.accountBalance(t, borrowerAcct)
	assert.Equal(t, "500", investment.String())
}

func TestCollateralService_ExtendLoan_Guards(t *testing.T) {
	h := newLedgerHarness(t)
	svc := h.collateralService(t, nil)
	borrower, _ := h.newBorrower(t, "heidi@example.com", "500.00")

	collateral, err := svc.CreateCollateral(context.Background(), borrower.ID, "Asset", "")
	require.NoError(t, err)

	// Pending collateral cannot be extended
	_, err = svc.ExtendLoan(context.Background(), collateral.ID, 30, mustDecimal(t, "100.00"))
	assert.ErrorIs(t, err, models.ErrCollateralNotApproved)

	_, err = svc.ApproveLoan(context.Background(), collateral.ID, mustDecimal(t, "1000.00"), "")
	require.NoError(t, err)

	_, err = svc.ExtendLoan(context.Background(), collateral.ID, 0, mustDecimal(t, "100.00"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extension days must be positive")

	_, err = svc.ExtendLoan(context.Background(), collateral.ID, 30, mustDecimal(t, "0"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extension fee must be positive")
}

func TestCollateralService_ReleaseCollateral(t *testing.T) {
	h := newLedgerHarness(t)
	collateralSvc := h.collateralService(t, nil)
	balanceSvc := h.balanceService(nil)
	borrower, _ := h.newBorrower(t, "ivan@example.com", "0.00")

	collateral, err := collateralSvc.CreateCollateral(context.Background(), borrower.ID, "Asset", "")
	require.NoError(t, err)
	_, err = collateralSvc.ApproveLoan(context.Background(), collateral.ID,
		mustDecimal(t, "7000.00"), "")
	require.NoError(t, err)

	// Outstanding principal blocks release
	err = collateralSvc.ReleaseCollateral(context.Background(), collateral.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot release")

	// Repay in full, then release
	_, err = balanceSvc.Execute(context.Background(), services.TransactionRequest{
		OwnerID:     borrower.ID,
		Type:        models.TransactionTypePayment,
		Amount:      mustDecimal(t, "7000.00"),
		Description: "full repayment",
	})
	require.NoError(t, err)

	require.NoError(t, collateralSvc.ReleaseCollateral(context.Background(), collateral.ID))

	fresh, err := h.collateralRepo.GetByID(collateral.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CollateralStatusReleased, fresh.Status)
	require.NotNil(t, fresh.ReleasedAt)
}

func TestCollateralService_MarkDefaulted(t *testing.T) {
	h := newLedgerHarness(t)
	svc := h.collateralService(t, nil)
	borrower, _ := h.newBorrower(t, "judy@example.com", "0.00")

	collateral, err := svc.CreateCollateral(context.Background(), borrower.ID, "Asset", "")
	require.NoError(t, err)
	_, err = svc.ApproveLoan(context.Background(), collateral.ID,
		mustDecimal(t, "5000.00"), "")
	require.NoError(t, err)

	require.NoError(t, svc.MarkDefaulted(context.Background(), collateral.ID))

	fresh, err := h.collateralRepo.GetByID(collateral.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CollateralStatusDefaulted, fresh.Status)

	// Defaulted is terminal
	assert.ErrorIs(t, svc.MarkDefaulted(context.Background(), collateral.ID),
		models.ErrInvalidCollateralStatus)
}

func TestCollateralService_RejectCollateral(t *testing.T) {
	h := newLedgerHarness(t)
	svc := h.collateralService(t, nil)
	borrower, _ := h.newBorrower(t, "mallory@example.com", "0.00")

	collateral, err := svc.CreateCollateral(context.Background(), borrower.ID, "Asset", "")
	require.NoError(t, err)

	require.NoError(t, svc.RejectCollateral(context.Background(), collateral.ID))

	fresh, err := h.collateralRepo.GetByID(collateral.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CollateralStatusRejected, fresh.Status)

	assert.ErrorIs(t, svc.RejectCollateral(context.Background(), collateral.ID),
		models.ErrInvalidCollateralStatus)
}
