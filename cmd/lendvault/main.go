package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lendvault/internal/config"
	"lendvault/internal/database"
	"lendvault/internal/handlers"
	"lendvault/internal/middleware"
	"lendvault/internal/repositories"
	"lendvault/internal/services"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()

	db, err := database.Initialize(cfg)
	if err != nil {
		logger.Error("failed to initialize database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Repositories
	userRepo := repositories.NewUserRepository(db.DB)
	accountRepo := repositories.NewAccountRepository(db.DB)
	transactionRepo := repositories.NewTransactionRepository(db.DB)
	collateralRepo := repositories.NewCollateralRepository(db.DB)
	auditRepo := repositories.NewAuditLogRepository(db.DB)

	// Services
	metrics := services.NewPrometheusMetrics()
	auditLogger := services.NewAuditLogger(logger)
	calculator := services.NewBalanceCalculator()

	var gateway services.SettlementGateway
	if cfg.SettlementActive() {
		gateway = services.NewSettlementClient(cfg.Settlement.BaseURL, cfg.Settlement.APIKey, cfg.Settlement.Timeout)
		logger.Info("settlement gateway enabled", slog.String("base_url", cfg.Settlement.BaseURL))
	} else {
		logger.Info("settlement gateway disabled, transactions settle internally only")
	}

	balanceService := services.NewBalanceService(
		accountRepo, transactionRepo, calculator, gateway, auditLogger, metrics)
	accountService := services.NewAccountService(
		accountRepo, transactionRepo, userRepo, auditRepo, metrics)

	valuation, err := buildValuationProvider(&cfg.Valuation)
	if err != nil {
		logger.Error("invalid valuation configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	collateralService := services.NewCollateralService(
		collateralRepo, accountRepo, balanceService, valuation, auditLogger, auditRepo, metrics)

	if cfg.IsDevelopment() {
		seedDevBorrowers(userRepo, accountService, balanceService, cfg.Server.SeedBorrowers, logger)
	}

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = middleware.CustomHTTPErrorHandler

	e.Use(middleware.RequestID())
	e.Use(middleware.PanicRecovery())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RateLimiterWithConfig(cfg.Security.RateLimitPerSecond, cfg.Security.RateLimitBurst))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
	}))

	registerRoutes(e, db.DB, balanceService, accountService, collateralService, transactionRepo, userRepo)

	// Graceful shutdown
	go func() {
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		logger.Info("starting server", slog.String("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", slog.String("error", err.Error()))
	}

	if err := db.Close(); err != nil {
		logger.Error("failed to close database", slog.String("error", err.Error()))
	}
}

func registerRoutes(
	e *echo.Echo,
	db *gorm.DB,
	balanceService services.BalanceServiceInterface,
	accountService services.AccountServiceInterface,
	collateralService services.CollateralServiceInterface,
	transactionRepo repositories.TransactionRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
) {
	healthHandler := handlers.NewHealthCheckHandler(db)
	transactionHandler := handlers.NewTransactionHandler(balanceService, transactionRepo)
	accountHandler := handlers.NewAccountHandler(accountService, userRepo)
	collateralHandler := handlers.NewCollateralHandler(collateralService)

	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

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
}

func buildValuationProvider(cfg *config.ValuationConfig) (services.ValuationProvider, error) {
	loanLimit, err := decimal.NewFromString(cfg.DefaultLoanLimit)
	if err != nil {
		return nil, err
	}
	interestRate, err := decimal.NewFromString(cfg.DefaultInterestRate)
	if err != nil {
		return nil, err
	}
	return services.NewStaticValuationProvider(loanLimit, interestRate, cfg.LoanTermDays), nil
}

// seedDevBorrowers populates sample data when SEED_BORROWERS is configured
// with a positive count. Development environments only.
func seedDevBorrowers(
	userRepo repositories.UserRepositoryInterface,
	accountService services.AccountServiceInterface,
	balanceService services.BalanceServiceInterface,
	count int,
	logger *slog.Logger,
) {
	if count <= 0 {
		return
	}

	seeder := services.NewSeedService(userRepo, accountService, balanceService)
	if err := seeder.SeedBorrowers(context.Background(), count); err != nil {
		logger.Warn("borrower seeding failed", slog.String("error", err.Error()))
	}
}
