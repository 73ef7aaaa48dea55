package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"lendvault/internal/models"
	"lendvault/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrLoanLimitExceeded      = errors.New("requested loan amount exceeds loan limit")
	ErrInsufficientFundAssets = errors.New("organization fund cannot cover the disbursement")
)

// CollateralService drives the collateral loan lifecycle. All balance
// movement goes through the Balance Service; this service only manages
// collateral state and the gating checks around disbursement.
type CollateralService struct {
	collateralRepo repositories.CollateralRepositoryInterface
	accountRepo    repositories.AccountRepositoryInterface
	balanceService BalanceServiceInterface
	valuation      ValuationProvider
	auditLogger    AuditLoggerInterface
	auditRepo      repositories.AuditLogRepositoryInterface
	metrics        MetricsRecorderInterface
	logger         *slog.Logger
}

// NewCollateralService creates a new collateral service
func NewCollateralService(
	collateralRepo repositories.CollateralRepositoryInterface,
	accountRepo repositories.AccountRepositoryInterface,
	balanceService BalanceServiceInterface,
	valuation ValuationProvider,
	auditLogger AuditLoggerInterface,
	auditRepo repositories.AuditLogRepositoryInterface,
	metrics MetricsRecorderInterface,
) CollateralServiceInterface {
	return &CollateralService{
		collateralRepo: collateralRepo,
		accountRepo:    accountRepo,
		balanceService: balanceService,
		valuation:      valuation,
		auditLogger:    auditLogger,
		auditRepo:      auditRepo,
		metrics:        metrics,
		logger:         slog.Default(),
	}
}

// CreateCollateral registers a pledged asset and appraises it
func (s *CollateralService) CreateCollateral(ctx context.Context, ownerID uuid.UUID, name, description string) (*models.Collateral, error) {
	// The owner must hold an account before pledging
	if _, err := s.accountRepo.GetByOwnerID(ownerID); err != nil {
		return nil, err
	}

	appraisal, err := s.valuation.Appraise(ctx, name, description)
	if err != nil {
		return nil, fmt.Errorf("valuation failed: %w", err)
	}

	collateral := &models.Collateral{
		OwnerID:      ownerID,
		Name:         name,
		Description:  description,
		LoanLimit:    appraisal.LoanLimit,
		InterestRate: appraisal.InterestRate,
		DueDate:      &appraisal.DueDate,
		Valuation: models.JSONBMap{
			"loan_limit":    appraisal.LoanLimit.String(),
			"interest_rate": appraisal.InterestRate.String(),
			"due_date":      appraisal.DueDate.Format(time.RFC3339),
		},
	}

	if err := s.collateralRepo.Create(collateral); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, &ownerID, models.AuditActionCollateralCreated, collateral.ID.String(), models.JSONBMap{
		"name":       name,
		"loan_limit": appraisal.LoanLimit.String(),
	})
	s.metrics.IncrementCounter("collateral.created", nil)

	s.logger.InfoContext(ctx, "collateral created",
		slog.String("collateral_id", collateral.ID.String()),
		slog.String("owner_id", ownerID.String()),
		slog.String("loan_limit", appraisal.LoanLimit.String()),
	)

	return collateral, nil
}

// GetCollateral retrieves a collateral by ID
func (s *CollateralService) GetCollateral(ctx context.Context, id uuid.UUID) (*models.Collateral, error) {
	return s.collateralRepo.GetByID(id)
}

// ListCollaterals retrieves collaterals matching the filters
func (s *CollateralService) ListCollaterals(ctx context.Context, filters models.CollateralFilters) ([]models.Collateral, int64, error) {
	return s.collateralRepo.GetWithFilters(filters)
}

// ApproveLoan approves a pending collateral and disburses the loan through
// the Balance Service. Both gating checks run before any mutation: the
// requested amount against the appraised limit, and the organization fund's
// ability to cover the disbursement.
func (s *CollateralService) ApproveLoan(ctx context.Context, collateralID uuid.UUID, loanAmount decimal.Decimal, settlementAddress string) (*models.Collateral, error) {
	collateral, err := s.collateralRepo.GetByID(collateralID)
	if err != nil {
		return nil, err
	}

	if !collateral.IsPending() {
		return nil, models.ErrInvalidCollateralStatus
	}

	if loanAmount.GreaterThan(collateral.LoanLimit) {
		return nil, fmt.Errorf("%w: requested %s, limit %s",
			ErrLoanLimitExceeded, loanAmount.String(), collateral.LoanLimit.String())
	}

	orgAccount, err := s.accountRepo.GetOrganization()
	if err != nil {
		return nil, err
	}
	if orgAccount.InvestmentBalance.LessThan(loanAmount) {
		return nil, fmt.Errorf("%w: fund %s, requested %s",
			ErrInsufficientFundAssets, orgAccount.InvestmentBalance.String(), loanAmount.String())
	}

	id := collateral.ID
	if _, err := s.balanceService.Execute(ctx, TransactionRequest{
		OwnerID:           collateral.OwnerID,
		Type:              models.TransactionTypeLoanDisbursement,
		Amount:            loanAmount,
		Description:       fmt.Sprintf("loan disbursement against collateral %s", collateral.Name),
		CollateralID:      &id,
		SettlementAddress: settlementAddress,
	}); err != nil {
		return nil, err
	}

	if err := collateral.Approve(loanAmount); err != nil {
		return nil, err
	}
	if err := s.collateralRepo.Update(collateral); err != nil {
		return nil, err
	}

	s.auditLogger.LogCollateralStateChange(ctx, collateral.ID,
		models.CollateralStatusPending, models.CollateralStatusApproved)
	s.recordAudit(ctx, &collateral.OwnerID, models.AuditActionCollateralApproved, collateral.ID.String(), models.JSONBMap{
		"loan_amount": loanAmount.String(),
	})
	s.metrics.IncrementCounter("collateral.approved", nil)

	return collateral, nil
}

// RejectCollateral rejects a pending collateral
func (s *CollateralService) RejectCollateral(ctx context.Context, collateralID uuid.UUID) error {
	collateral, err := s.collateralRepo.GetByID(collateralID)
	if err != nil {
		return err
	}

	if err := collateral.Reject(); err != nil {
		return err
	}
	if err := s.collateralRepo.Update(collateral); err != nil {
		return err
	}

	s.auditLogger.LogCollateralStateChange(ctx, collateral.ID,
		models.CollateralStatusPending, models.CollateralStatusRejected)
	s.recordAudit(ctx, &collateral.OwnerID, models.AuditActionCollateralRejected, collateral.ID.String(), nil)

	return nil
}

// ExtendLoan pushes the due date of an approved loan in exchange for a fee.
// The fee is charged through the ledger and then capitalized into the
// collateral's outstanding principal.
func (s *CollateralService) ExtendLoan(ctx context.Context, collateralID uuid.UUID, extensionDays int, fee decimal.Decimal) (*models.Collateral, error) {
	collateral, err := s.collateralRepo.GetByID(collateralID)
	if err != nil {
		return nil, err
	}

	if !collateral.IsApproved() {
		return nil, models.ErrCollateralNotApproved
	}

	if extensionDays <= 0 {
		return nil, errors.New("extension days must be positive")
	}
	if fee.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("extension fee must be positive")
	}

	// Capitalizing the fee must keep the principal inside the appraised limit
	newPrincipal := collateral.LoanAmount.Add(fee)
	if newPrincipal.GreaterThan(collateral.LoanLimit) {
		return nil, fmt.Errorf("%w: principal %s plus fee %s exceeds limit %s",
			ErrLoanLimitExceeded, collateral.LoanAmount.String(), fee.String(), collateral.LoanLimit.String())
	}

	id := collateral.ID
	if _, err := s.balanceService.Execute(ctx, TransactionRequest{
		OwnerID:      collateral.OwnerID,
		Type:         models.TransactionTypeFee,
		Amount:       fee,
		Description:  fmt.Sprintf("loan extension fee for collateral %s (%d days)", collateral.Name, extensionDays),
		CollateralID: &id,
	}); err != nil {
		return nil, err
	}

	// The fee becomes additional principal owed against the asset
	collateral.LoanAmount = newPrincipal

	newDueDate := time.Now().AddDate(0, 0, extensionDays)
	if collateral.DueDate != nil {
		newDueDate = collateral.DueDate.AddDate(0, 0, extensionDays)
	}
	collateral.DueDate = &newDueDate

	if err := s.collateralRepo.Update(collateral); err != nil {
		return nil, err
	}

	s.auditLogger.LogLoanExtension(ctx, collateral.ID, extensionDays, fee.String(), newDueDate)
	s.recordAudit(ctx, &collateral.OwnerID, models.AuditActionLoanExtended, collateral.ID.String(), models.JSONBMap{
		"extension_days": extensionDays,
		"fee":            fee.String(),
	})
	s.metrics.IncrementCounter("collateral.extended", nil)

	return collateral, nil
}

// ReleaseCollateral returns a fully repaid asset to its owner
func (s *CollateralService) ReleaseCollateral(ctx context.Context, collateralID uuid.UUID) error {
	collateral, err := s.collateralRepo.GetByID(collateralID)
	if err != nil {
		return err
	}

	account, err := s.accountRepo.GetByOwnerID(collateral.OwnerID)
	if err != nil {
		return err
	}
	if !account.LoanBalance.IsZero() {
		return fmt.Errorf("loan balance %s outstanding, cannot release", account.LoanBalance.String())
	}

	if err := collateral.Release(); err != nil {
		return err
	}
	if err := s.collateralRepo.Update(collateral); err != nil {
		return err
	}

	s.auditLogger.LogCollateralStateChange(ctx, collateral.ID,
		models.CollateralStatusApproved, models.CollateralStatusReleased)
	s.recordAudit(ctx, &collateral.OwnerID, models.AuditActionCollateralReleased, collateral.ID.String(), nil)

	return nil
}

// MarkDefaulted forfeits an approved collateral after non-payment
func (s *CollateralService) MarkDefaulted(ctx context.Context, collateralID uuid.UUID) error {
	collateral, err := s.collateralRepo.GetByID(collateralID)
	if err != nil {
		return err
	}

	if err := collateral.Default(); err != nil {
		return err
	}
	if err := s.collateralRepo.Update(collateral); err != nil {
		return err
	}

	s.auditLogger.LogCollateralStateChange(ctx, collateral.ID,
		models.CollateralStatusApproved, models.CollateralStatusDefaulted)
	s.recordAudit(ctx, &collateral.OwnerID, models.AuditActionCollateralDefaulted, collateral.ID.String(), nil)
	s.metrics.IncrementCounter("collateral.defaulted", nil)

	return nil
}

func (s *CollateralService) recordAudit(ctx context.Context, userID *uuid.UUID, action, resourceID string, metadata models.JSONBMap) {
	entry := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   "collateral",
		ResourceID: resourceID,
		Metadata:   metadata,
	}
	if err := s.auditRepo.Create(entry); err != nil {
		s.logger.Warn("failed to persist audit log",
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
	}
}
