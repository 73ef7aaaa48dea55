package services

import (
	"context"
	"fmt"
	"log/slog"

	"lendvault/internal/models"
	"lendvault/internal/repositories"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
)

// SeedService populates a development environment with sample borrowers,
// accounts and opening deposits. Not wired in production configurations.
type SeedService struct {
	userRepo       repositories.UserRepositoryInterface
	accountService AccountServiceInterface
	balanceService BalanceServiceInterface
	logger         *slog.Logger
}

// NewSeedService creates a new seed service
func NewSeedService(
	userRepo repositories.UserRepositoryInterface,
	accountService AccountServiceInterface,
	balanceService BalanceServiceInterface,
) *SeedService {
	return &SeedService{
		userRepo:       userRepo,
		accountService: accountService,
		balanceService: balanceService,
		logger:         slog.Default(),
	}
}

// SeedBorrowers creates count sample borrowers, each with an account and an
// opening deposit between 100 and 10000
func (s *SeedService) SeedBorrowers(ctx context.Context, count int) error {
	for i := 0; i < count; i++ {
		user := &models.User{
			Email:     gofakeit.Email(),
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			Role:      models.RoleBorrower,
		}

		if err := s.userRepo.Create(user); err != nil {
			if err == repositories.ErrEmailExists {
				continue
			}
			return fmt.Errorf("failed to seed user: %w", err)
		}

		if _, err := s.accountService.CreateAccount(ctx, user.ID); err != nil {
			return fmt.Errorf("failed to seed account: %w", err)
		}

		amount := decimal.NewFromFloat(gofakeit.Price(100, 10000)).Round(2)
		if _, err := s.balanceService.Execute(ctx, TransactionRequest{
			OwnerID:     user.ID,
			Type:        models.TransactionTypeDeposit,
			Amount:      amount,
			Description: "opening deposit",
		}); err != nil {
			return fmt.Errorf("failed to seed opening deposit: %w", err)
		}

		s.logger.Debug("seeded borrower",
			slog.String("email", user.Email),
			slog.String("opening_deposit", amount.String()),
		)
	}

	s.logger.Info("seeded sample borrowers", slog.Int("count", count))
	return nil
}
