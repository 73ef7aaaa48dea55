package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Organization OrganizationConfig
	Settlement   SettlementConfig
	Valuation    ValuationConfig
	Security     SecurityConfig
}

type ServerConfig struct {
	Port             string
	Host             string
	Environment      string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	CORSAllowOrigins []string
	// SeedBorrowers > 0 populates sample borrowers on startup in development
	SeedBorrowers int
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// OrganizationConfig describes the platform's own fund account, created at
// startup if it does not exist. Every mirrored ledger entry posts against it.
type OrganizationConfig struct {
	Email       string
	Name        string
	OpeningFund string
}

// SettlementConfig configures the external settlement gateway. When Enabled
// is false (or the API key is empty) transactions settle internally only.
type SettlementConfig struct {
	Enabled   bool
	BaseURL   string
	APIKey    string
	Principal string
	Timeout   time.Duration
}

// ValuationConfig holds the default appraisal terms applied to newly
// pledged collateral.
type ValuationConfig struct {
	DefaultLoanLimit    string
	DefaultInterestRate string
	LoanTermDays        int
}

type SecurityConfig struct {
	RateLimitPerSecond int
	RateLimitBurst     int
}

func Load() *Config {
	config := &Config{
		Server: ServerConfig{
			Port:          getEnv("SERVER_PORT", "8080"),
			Host:          getEnv("SERVER_HOST", "localhost"),
			Environment:   getEnv("APP_ENV", "development"),
			ReadTimeout:   getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:  getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			SeedBorrowers: getIntEnv("SEED_BORROWERS", 0),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "lendvault_user"),
			Password:        getEnv("DB_PASSWORD", "lendvault_password"),
			Name:            getEnv("DB_NAME", "lendvault_db"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxConnections:  getIntEnv("DB_MAX_CONNECTIONS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Organization: OrganizationConfig{
			Email:       getEnv("ORGANIZATION_EMAIL", "fund@lendvault.io"),
			Name:        getEnv("ORGANIZATION_NAME", "LendVault Fund"),
			OpeningFund: getEnv("ORGANIZATION_OPENING_FUND", "1000000.00"),
		},
		Settlement: SettlementConfig{
			Enabled:   getBoolEnv("SETTLEMENT_ENABLED", false),
			BaseURL:   getEnv("SETTLEMENT_BASE_URL", "https://staging.crossmint.com/api/2025-06-09"),
			APIKey:    getEnv("SETTLEMENT_API_KEY", ""),
			Principal: getEnv("SETTLEMENT_PRINCIPAL", ""),
			Timeout:   getDurationEnv("SETTLEMENT_TIMEOUT", 30*time.Second),
		},
		Valuation: ValuationConfig{
			DefaultLoanLimit:    getEnv("VALUATION_DEFAULT_LOAN_LIMIT", "7000.00"),
			DefaultInterestRate: getEnv("VALUATION_DEFAULT_INTEREST_RATE", "5.00"),
			LoanTermDays:        getIntEnv("VALUATION_LOAN_TERM_DAYS", 90),
		},
		Security: SecurityConfig{
			RateLimitPerSecond: getIntEnv("RATE_LIMIT_PER_SECOND", 5),
			RateLimitBurst:     getIntEnv("RATE_LIMIT_BURST", 10),
		},
	}

	config.Server.CORSAllowOrigins = config.loadCORSAllowOrigins()

	return config
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) IsTesting() bool {
	return c.Server.Environment == "testing"
}

// SettlementActive reports whether transactions should settle through the
// external gateway. An enabled flag without an API key is treated as off.
func (c *Config) SettlementActive() bool {
	return c.Settlement.Enabled && c.Settlement.APIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// loadCORSAllowOrigins retrieves CORS allowed origins from environment or returns default
func (c *Config) loadCORSAllowOrigins() []string {
	corsOrigins := os.Getenv("CORS_ALLOW_ORIGINS")

	if corsOrigins == "" {
		if c.IsProduction() {
			log.Println("WARNING: CORS_ALLOW_ORIGINS not set in production environment, defaulting to '*' (all origins). Consider setting specific origins for security.")
		} else {
			log.Println("INFO: CORS_ALLOW_ORIGINS not set, defaulting to '*' (all origins)")
		}
		return []string{"*"}
	}

	// Split by comma and trim whitespace
	origins := strings.Split(corsOrigins, ",")
	for i, origin := range origins {
		origins[i] = strings.TrimSpace(origin)
	}

	log.Printf("CORS allowed origins configured: %v", origins)
	return origins
}
