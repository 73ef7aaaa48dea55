package services_test

import (
	"testing"
	"time"

	"lendvault/internal/database"
	"lendvault/internal/models"
	"lendvault/internal/repositories"
	"lendvault/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// noopMetrics satisfies MetricsRecorderInterface without touching the global
// Prometheus registry, which panics on duplicate registration across tests.
type noopMetrics struct{}

func (noopMetrics) IncrementCounter(name string, tags map[string]string)       {}
func (noopMetrics) RecordProcessingTime(name string, duration time.Duration)   {}
func (noopMetrics) RecordGauge(name string, value float64, tags map[string]string) {}

// ledgerHarness wires real repositories against an in-memory database with
// the organization account bootstrapped, mirroring production wiring minus
// the settlement gateway.
type ledgerHarness struct {
	db              *database.DB
	userRepo        repositories.UserRepositoryInterface
	accountRepo     repositories.AccountRepositoryInterface
	transactionRepo repositories.TransactionRepositoryInterface
	collateralRepo  repositories.CollateralRepositoryInterface
	auditRepo       repositories.AuditLogRepositoryInterface

	orgUser    *models.User
	orgAccount *models.Account
}

func newLedgerHarness(t *testing.T) *ledgerHarness {
	t.Helper()

	db := database.SetupTestDB(t)
	orgUser, orgAccount := database.CreateTestOrganization(t, db, "1000000.00")

	return &ledgerHarness{
		db:              db,
		userRepo:        repositories.NewUserRepository(db.DB),
		accountRepo:     repositories.NewAccountRepository(db.DB),
		transactionRepo: repositories.NewTransactionRepository(db.DB),
		collateralRepo:  repositories.NewCollateralRepository(db.DB),
		auditRepo:       repositories.NewAuditLogRepository(db.DB),
		orgUser:         orgUser,
		orgAccount:      orgAccount,
	}
}

func (h *ledgerHarness) balanceService(gateway services.SettlementGateway) services.BalanceServiceInterface {
	return services.NewBalanceService(
		h.accountRepo,
		h.transactionRepo,
		services.NewBalanceCalculator(),
		gateway,
		services.NewAuditLogger(nil),
		noopMetrics{},
	)
}

func (h *ledgerHarness) newBorrower(t *testing.T, email, investmentBalance string) (*models.User, *models.Account) {
	t.Helper()
	user := database.CreateTestUser(t, h.db, email)
	account := database.CreateTestAccount(t, h.db, user, investmentBalance)
	return user, account
}

func (h *ledgerHarness) accountBalance(t *testing.T, account *models.Account) (loan, investment decimal.Decimal) {
	t.Helper()
	fresh, err := h.accountRepo.GetByID(account.ID)
	require.NoError(t, err)
	return fresh.LoanBalance, fresh.InvestmentBalance
}

func (h *ledgerHarness) orgBalances(t *testing.T) (loan, investment decimal.Decimal) {
	t.Helper()
	return h.accountBalance(t, h.orgAccount)
}

// mirrorOf finds the organization-side entry whose reference carries the
// original transaction id.
func (h *ledgerHarness) mirrorOf(t *testing.T, original *models.Transaction) *models.Transaction {
	t.Helper()
	mirror, err := h.transactionRepo.GetByReference(original.ID.String())
	require.NoError(t, err)
	return mirror
}

func mustDecimal(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return d
}
