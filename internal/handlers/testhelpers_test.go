package handlers_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lendvault/internal/database"
	"lendvault/internal/errors"
	"lendvault/internal/handlers"
	"lendvault/internal/models"
	"lendvault/internal/repositories"
	"lendvault/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type apiMetrics struct{}

func (apiMetrics) IncrementCounter(name string, tags map[string]string)           {}
func (apiMetrics) RecordProcessingTime(name string, duration time.Duration)       {}
func (apiMetrics) RecordGauge(name string, value float64, tags map[string]string) {}

// apiHarness stands up the handler stack against an in-memory database,
// mirroring the route wiring in cmd/lendvault.
type apiHarness struct {
	echo *echo.Echo
	db   *database.DB

	userRepo        repositories.UserRepositoryInterface
	accountRepo     repositories.AccountRepositoryInterface
	transactionRepo repositories.TransactionRepositoryInterface
	collateralRepo  repositories.CollateralRepositoryInterface

	orgAccount *models.Account
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()

	db := database.SetupTestDB(t)
	_, orgAccount := database.CreateTestOrganization(t, db, "1000000.00")

	userRepo := repositories.NewUserRepository(db.DB)
	accountRepo := repositories.NewAccountRepository(db.DB)
	transactionRepo := repositories.NewTransactionRepository(db.DB)
	collateralRepo := repositories.NewCollateralRepository(db.DB)
	auditRepo := repositories.NewAuditLogRepository(db.DB)

	auditLogger := services.NewAuditLogger(nil)
	metrics := apiMetrics{}

	balanceService := services.NewBalanceService(
		accountRepo, transactionRepo, services.NewBalanceCalculator(), nil, auditLogger, metrics)
	accountService := services.NewAccountService(
		accountRepo, transactionRepo, userRepo, auditRepo, metrics)
	valuation := services.NewStaticValuationProvider(
		decimal.RequireFromString("7000.00"), decimal.RequireFromString("5.00"), 90)
	collateralService := services.NewCollateralService(
		collateralRepo, accountRepo, balanceService, valuation, auditLogger, auditRepo, metrics)

	e := echo.New()
	e.Validator = handlers.NewValidator()

	transactionHandler := handlers.NewTransactionHandler(balanceService, transactionRepo)
	accountHandler := handlers.NewAccountHandler(accountService, userRepo)
	collateralHandler := handlers.NewCollateralHandler(collateralService)

	api := e.Group("/api/v1")
	api.POST("/owners", accountHandler.CreateOwner)
	api.GET("/owners/:ownerId/account", accountHandler.GetAccountByOwner)
	api.GET("/owners/:ownerId/summary", accountHandler.GetOwnerSummary)
	api.GET("/accounts", accountHandler.ListAccounts)
	api.GET("/accounts/:id", accountHandler.GetAccount)
	api.POST("/accounts/:id/close", accountHandler.CloseAccount)
	api.POST("/transactions/deposit", transactionHandler.Deposit)
	api.POST("/transactions/withdrawal", transactionHandler.Withdraw)
	api.POST("/transactions/payment", transactionHandler.Pay)
	api.GET("/transactions", transactionHandler.ListTransactions)
	api.GET("/transactions/:id", transactionHandler.GetTransaction)
	api.POST("/collaterals", collateralHandler.CreateCollateral)
	api.GET("/collaterals", collateralHandler.ListCollaterals)
	api.GET("/collaterals/:id", collateralHandler.GetCollateral)
	api.POST("/collaterals/:id/approve", collateralHandler.ApproveLoan)
	api.POST("/collaterals/:id/reject", collateralHandler.RejectCollateral)
	api.POST("/collaterals/:id/extend", collateralHandler.ExtendLoan)
	api.POST("/collaterals/:id/release", collateralHandler.ReleaseCollateral)
	api.POST("/collaterals/:id/default", collateralHandler.MarkDefaulted)

	return &apiHarness{
		echo:            e,
		db:              db,
		userRepo:        userRepo,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		collateralRepo:  collateralRepo,
		orgAccount:      orgAccount,
	}
}

func (h *apiHarness) request(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	h.echo.ServeHTTP(rec, req)
	return rec
}

func (h *apiHarness) createBorrower(t *testing.T, email, investmentBalance string) (*models.User, *models.Account) {
	t.Helper()
	user := database.CreateTestUser(t, h.db, email)
	account := database.CreateTestAccount(t, h.db, user, investmentBalance)
	return user, account
}

// seedLoan writes loan principal directly onto an account, standing in for
// an already-disbursed loan.
func (h *apiHarness) seedLoan(t *testing.T, account *models.Account, principal string) {
	t.Helper()
	require.NoError(t, h.db.Model(account).
		Update("loan_balance", decimal.RequireFromString(principal)).Error)
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Data)
	return envelope.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errors.ErrorDetail {
	t.Helper()

	var response errors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	return response.Error
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "unexpected status, body: %s", rec.Body.String())
}
