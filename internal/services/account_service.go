package services

import (
	"context"
	"fmt"
	"log/slog"

	"lendvault/internal/models"
	"lendvault/internal/repositories"

	"github.com/google/uuid"
)

// AccountService manages account lifecycle on top of the repositories
type AccountService struct {
	accountRepo     repositories.AccountRepositoryInterface
	transactionRepo repositories.TransactionRepositoryInterface
	userRepo        repositories.UserRepositoryInterface
	auditRepo       repositories.AuditLogRepositoryInterface
	metrics         MetricsRecorderInterface
	logger          *slog.Logger
}

// NewAccountService creates a new account service
func NewAccountService(
	accountRepo repositories.AccountRepositoryInterface,
	transactionRepo repositories.TransactionRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	auditRepo repositories.AuditLogRepositoryInterface,
	metrics MetricsRecorderInterface,
) AccountServiceInterface {
	return &AccountService{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		userRepo:        userRepo,
		auditRepo:       auditRepo,
		metrics:         metrics,
		logger:          slog.Default(),
	}
}

// CreateAccount opens the single account for an owner
func (s *AccountService) CreateAccount(ctx context.Context, ownerID uuid.UUID) (*models.Account, error) {
	owner, err := s.userRepo.GetByID(ownerID)
	if err != nil {
		return nil, err
	}

	accountNumber, err := s.accountRepo.GenerateUniqueAccountNumber(owner.IsOrganization())
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		AccountNumber: accountNumber,
		OwnerID:       ownerID,
		Organization:  owner.IsOrganization(),
	}

	if err := s.accountRepo.Create(account); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, &ownerID, models.AuditActionAccountCreated, account.ID.String(), models.JSONBMap{
		"account_number": account.AccountNumber,
		"organization":   account.Organization,
	})
	s.metrics.IncrementCounter("account.created", map[string]string{
		"organization": fmt.Sprintf("%t", account.Organization),
	})

	s.logger.InfoContext(ctx, "account created",
		slog.String("account_id", account.ID.String()),
		slog.String("owner_id", ownerID.String()),
		slog.Bool("organization", account.Organization),
	)

	return account, nil
}

// GetAccount retrieves an account by ID
func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return s.accountRepo.GetByID(id)
}

// GetAccountByOwner retrieves the account for an owner
func (s *AccountService) GetAccountByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Account, error) {
	return s.accountRepo.GetByOwnerID(ownerID)
}

// ListAccounts retrieves accounts matching the filters
func (s *AccountService) ListAccounts(ctx context.Context, filters models.AccountFilters) ([]models.Account, int64, error) {
	return s.accountRepo.GetAllWithFilters(filters)
}

// CloseAccount closes an account. Outstanding loan principal blocks closure.
func (s *AccountService) CloseAccount(ctx context.Context, id uuid.UUID) error {
	account, err := s.accountRepo.GetByID(id)
	if err != nil {
		return err
	}

	if err := account.Close(); err != nil {
		return err
	}

	if err := s.accountRepo.Update(account); err != nil {
		return err
	}

	s.recordAudit(ctx, &account.OwnerID, models.AuditActionAccountClosed, account.ID.String(), nil)

	s.logger.InfoContext(ctx, "account closed",
		slog.String("account_id", account.ID.String()),
	)

	return nil
}

// GetOwnerSummary aggregates completed ledger activity plus current balances
func (s *AccountService) GetOwnerSummary(ctx context.Context, ownerID uuid.UUID) (*models.TransactionSummary, error) {
	account, err := s.accountRepo.GetByOwnerID(ownerID)
	if err != nil {
		return nil, err
	}

	summary, err := s.transactionRepo.GetSummaryByOwnerID(ownerID)
	if err != nil {
		return nil, err
	}

	summary.LoanBalance = account.LoanBalance
	summary.InvestmentBalance = account.InvestmentBalance
	return summary, nil
}

func (s *AccountService) recordAudit(ctx context.Context, userID *uuid.UUID, action, resourceID string, metadata models.JSONBMap) {
	entry := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   "account",
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
