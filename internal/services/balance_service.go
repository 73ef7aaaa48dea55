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
	"gorm.io/gorm"
)

var (
	ErrMissingSnapshot   = errors.New("transaction has no recorded balance snapshot")
	ErrSettlementFailure = errors.New("settlement gateway reported failure")
	ErrNotPending        = errors.New("transaction is not pending")
)

// BalanceService applies ledger entries to accounts, mirrors them to the
// organization account, orchestrates settlement and issues compensating
// reversals when settlement fails after the ledger has committed.
type BalanceService struct {
	accountRepo     repositories.AccountRepositoryInterface
	transactionRepo repositories.TransactionRepositoryInterface
	calculator      BalanceCalculatorInterface
	gateway         SettlementGateway
	auditLogger     AuditLoggerInterface
	metrics         MetricsRecorderInterface
	locker          *accountLocker
	logger          *slog.Logger
}

// NewBalanceService creates a new balance service
func NewBalanceService(
	accountRepo repositories.AccountRepositoryInterface,
	transactionRepo repositories.TransactionRepositoryInterface,
	calculator BalanceCalculatorInterface,
	gateway SettlementGateway,
	auditLogger AuditLoggerInterface,
	metrics MetricsRecorderInterface,
) BalanceServiceInterface {
	return &BalanceService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		calculator:      calculator,
		gateway:         gateway,
		auditLogger:     auditLogger,
		metrics:         metrics,
		locker:          newAccountLocker(),
		logger:          slog.Default(),
	}
}

// Execute is the single entry point for financial actions. It creates the
// pending entry, applies it, and when a settlement address is given calls
// the gateway after the ledger has committed. The settlement call runs
// outside every balance lock; a gateway failure triggers a compensating
// reversal rather than a rollback.
func (s *BalanceService) Execute(ctx context.Context, req TransactionRequest) (*models.Transaction, error) {
	startTime := time.Now()

	account, err := s.accountRepo.GetByOwnerID(req.OwnerID)
	if err != nil {
		return nil, err
	}

	if !account.IsActive() {
		return nil, repositories.ErrAccountNotActive
	}

	transaction := &models.Transaction{
		AccountID:       account.ID,
		OwnerID:         req.OwnerID,
		Type:            req.Type,
		Amount:          req.Amount,
		Description:     req.Description,
		CollateralID:    req.CollateralID,
		ReferenceNumber: models.GenerateTransactionReference(),
	}

	if err := s.transactionRepo.Create(transaction); err != nil {
		return nil, err
	}

	if err := s.ProcessTransaction(ctx, transaction.ID); err != nil {
		s.metrics.IncrementCounter("ledger.transaction.rejected", map[string]string{
			"type": string(req.Type),
		})
		return nil, err
	}

	if s.gateway != nil && req.SettlementAddress != "" {
		if err := s.settle(ctx, transaction, req.SettlementAddress); err != nil {
			if revertErr := s.RevertTransaction(ctx, transaction.ID); revertErr != nil {
				s.logger.Error("compensating reversal failed",
					slog.String("transaction_id", transaction.ID.String()),
					slog.String("error", revertErr.Error()),
				)
				return nil, fmt.Errorf("reversal after settlement failure: %w", revertErr)
			}
			return nil, err
		}
	}

	s.metrics.IncrementCounter("ledger.transaction.completed", map[string]string{
		"type": string(req.Type),
	})
	s.metrics.RecordProcessingTime("ledger.transaction", time.Since(startTime))

	return s.transactionRepo.GetByID(transaction.ID)
}

// ProcessTransaction applies a pending entry: compute the delta, write the
// new balances and the snapshot atomically, complete the entry, then mirror
// it to the organization account. The per-account lock covers only the
// primary apply; the mirror locks the organization account separately.
func (s *BalanceService) ProcessTransaction(ctx context.Context, transactionID uuid.UUID) error {
	transaction, err := s.transactionRepo.GetByID(transactionID)
	if err != nil {
		return err
	}

	if !transaction.IsPending() {
		return fmt.Errorf("%w: %s", ErrNotPending, transaction.Status)
	}

	if err := s.applyPending(ctx, transaction); err != nil {
		return err
	}

	// The borrower entry has committed; a mirror that cannot apply is
	// recorded as failed and reconciled out of band rather than surfaced
	// as a failure of the original transaction.
	if err := s.mirrorToOrganization(ctx, transaction); err != nil {
		s.logger.Error("organization mirror failed",
			slog.String("transaction_id", transaction.ID.String()),
			slog.String("type", string(transaction.Type)),
			slog.String("error", err.Error()),
		)
		s.metrics.IncrementCounter("ledger.mirror.failed", map[string]string{
			"type": string(transaction.Type),
		})
	}

	return nil
}

// applyPending runs steps 2 and 3 under the account lock: calculator,
// balance write, snapshot, completion. Validation failures mark the entry
// failed with no balance mutation.
func (s *BalanceService) applyPending(ctx context.Context, transaction *models.Transaction) error {
	s.locker.Lock(transaction.AccountID)
	defer s.locker.Unlock(transaction.AccountID)

	var delta *BalanceDelta

	err := s.accountRepo.WithTransaction(func(tx *gorm.DB) error {
		account, err := s.accountRepo.GetForUpdate(tx, transaction.AccountID)
		if err != nil {
			return err
		}

		delta, err = s.calculator.Compute(account, transaction.Type, transaction.Amount)
		if err != nil {
			return err
		}

		if err := s.accountRepo.SaveBalances(tx, account, delta.LoanAfter, delta.InvestmentAfter); err != nil {
			return err
		}

		if err := s.transactionRepo.RecordSnapshot(tx, transaction,
			delta.LoanBefore, delta.LoanAfter,
			delta.InvestmentBefore, delta.InvestmentAfter); err != nil {
			return err
		}

		return s.transactionRepo.MarkCompleted(tx, transaction)
	})
	if err != nil {
		s.failPending(ctx, transaction, err)
		return err
	}

	s.auditLogger.LogTransactionStateChange(ctx, transaction.ID,
		models.TransactionStatusPending, models.TransactionStatusCompleted)
	s.auditLogger.LogBalanceUpdate(ctx, transaction.AccountID, "loan_balance",
		delta.LoanBefore.String(), delta.LoanAfter.String(), transaction.ID)
	s.auditLogger.LogBalanceUpdate(ctx, transaction.AccountID, "investment_balance",
		delta.InvestmentBefore.String(), delta.InvestmentAfter.String(), transaction.ID)

	return nil
}

// failPending records the rejection on the entry. The balance write already
// rolled back with the database transaction.
func (s *BalanceService) failPending(ctx context.Context, transaction *models.Transaction, cause error) {
	err := s.accountRepo.WithTransaction(func(tx *gorm.DB) error {
		return s.transactionRepo.MarkFailed(tx, transaction, cause.Error())
	})
	if err != nil {
		s.logger.Error("failed to mark transaction failed",
			slog.String("transaction_id", transaction.ID.String()),
			slog.String("error", err.Error()),
		)
		return
	}

	s.auditLogger.LogTransactionStateChange(ctx, transaction.ID,
		models.TransactionStatusPending, models.TransactionStatusFailed)
}

// mirrorToOrganization synthesizes the organization-side entry for a
// completed borrower transaction and processes it recursively. Mirrors carry
// the original transaction id as their reference and are never re-mirrored:
// the recursion bottoms out on the owner-is-organization check.
func (s *BalanceService) mirrorToOrganization(ctx context.Context, transaction *models.Transaction) error {
	if !transaction.Type.Mirrorable() {
		return nil
	}

	account, err := s.accountRepo.GetByID(transaction.AccountID)
	if err != nil {
		return err
	}
	if account.Organization {
		return nil
	}

	orgAccount, err := s.accountRepo.GetOrganization()
	if err != nil {
		return err
	}

	mirror := &models.Transaction{
		AccountID:       orgAccount.ID,
		OwnerID:         orgAccount.OwnerID,
		Type:            transaction.Type.OrganizationMirror(),
		Amount:          transaction.Amount,
		Description:     fmt.Sprintf("mirror of %s", transaction.ID),
		CollateralID:    transaction.CollateralID,
		ReferenceNumber: transaction.ID.String(),
	}

	if err := s.transactionRepo.Create(mirror); err != nil {
		return err
	}

	if err := s.ProcessTransaction(ctx, mirror.ID); err != nil {
		return fmt.Errorf("failed to process organization mirror: %w", err)
	}

	s.auditLogger.LogMirrorCreated(ctx, transaction.ID, mirror.ID, mirror.Type)
	s.metrics.IncrementCounter("ledger.mirror.created", map[string]string{
		"type": string(mirror.Type),
	})

	return nil
}

// RevertTransaction restores an account's balances to the entry's recorded
// before-values and marks the entry failed. This is a compensating
// transaction, not an undo-log rollback: reverting an already-failed entry
// is a no-op, and an entry without a snapshot cannot be reverted.
func (s *BalanceService) RevertTransaction(ctx context.Context, transactionID uuid.UUID) error {
	transaction, err := s.transactionRepo.GetByID(transactionID)
	if err != nil {
		return err
	}

	// Idempotency: a second revert of the same entry finds it failed
	if transaction.Status == models.TransactionStatusFailed ||
		transaction.Status == models.TransactionStatusReversed {
		return nil
	}

	if !transaction.IsCompleted() {
		return fmt.Errorf("%w: cannot revert %s transaction", repositories.ErrInvalidTransition, transaction.Status)
	}

	if !transaction.HasSnapshot() {
		return ErrMissingSnapshot
	}

	s.locker.Lock(transaction.AccountID)
	defer s.locker.Unlock(transaction.AccountID)

	err = s.accountRepo.WithTransaction(func(tx *gorm.DB) error {
		account, err := s.accountRepo.GetForUpdate(tx, transaction.AccountID)
		if err != nil {
			return err
		}

		if err := s.accountRepo.SaveBalances(tx, account,
			*transaction.LoanBalanceBefore, *transaction.InvestmentBalanceBefore); err != nil {
			return err
		}

		return s.transactionRepo.MarkFailed(tx, transaction, "reverted: settlement failure")
	})
	if err != nil {
		return err
	}

	s.auditLogger.LogReversal(ctx, transaction.ID, "settlement failure")
	s.auditLogger.LogTransactionStateChange(ctx, transaction.ID,
		models.TransactionStatusCompleted, models.TransactionStatusFailed)
	s.metrics.IncrementCounter("ledger.transaction.reverted", map[string]string{
		"type": string(transaction.Type),
	})

	return nil
}

// settle calls the external gateway. Runs outside every balance lock; the
// ledger already reflects the movement and will be compensated on failure.
func (s *BalanceService) settle(ctx context.Context, transaction *models.Transaction, address string) error {
	result, err := s.gateway.Transfer(ctx, transaction.OwnerID.String(), address, transaction.Amount)
	if err != nil {
		s.auditLogger.LogSettlementFailure(ctx, transaction.ID, err.Error())
		s.metrics.IncrementCounter("settlement.failed", map[string]string{
			"type": string(transaction.Type),
		})
		return fmt.Errorf("%w: %v", ErrSettlementFailure, err)
	}

	if !result.OK {
		s.auditLogger.LogSettlementFailure(ctx, transaction.ID, result.Message)
		s.metrics.IncrementCounter("settlement.failed", map[string]string{
			"type": string(transaction.Type),
		})
		return fmt.Errorf("%w: %s", ErrSettlementFailure, result.Message)
	}

	s.metrics.IncrementCounter("settlement.succeeded", map[string]string{
		"type": string(transaction.Type),
	})
	return nil
}
