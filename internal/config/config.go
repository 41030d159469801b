package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	// TaxRate applied to order subtotals, e.g. 0.10 for 10%.
	TaxRate float64

	// Google Sheets reconciliation source. Sync jobs are skipped when the
	// spreadsheet id is empty.
	SheetsSpreadsheetID string
	SheetsAPIKey        string

	// Frankfurter-compatible exchange rate endpoint.
	RatesURL      string
	RatesBase     string
	RatesSymbols  string
	RatesDisabled bool

	RedisAddr     string
	RedisPassword string

	// Ordering endpoints are throttled per session when redis is
	// available.
	OrderRatePerSec   float64
	OrderRateBurst    int
	RateLimitDisabled bool

	// SnapshotHour is the UTC hour daily jobs fire at.
	SnapshotHour      int
	SchedulerDisabled bool

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "menuboard"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		TaxRate: getenvFloat("TAX_RATE", 0.10),

		SheetsSpreadsheetID: strings.TrimSpace(getenv("SHEETS_SPREADSHEET_ID", "")),
		SheetsAPIKey:        strings.TrimSpace(getenv("SHEETS_API_KEY", "")),

		RatesURL:      getenv("RATES_URL", "https://api.frankfurter.dev/v1"),
		RatesBase:     strings.ToUpper(getenv("RATES_BASE", "USD")),
		RatesSymbols:  strings.ToUpper(getenv("RATES_SYMBOLS", "CZK,EUR,CNY")),
		RatesDisabled: getenvBool("RATES_DISABLED", false),

		RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		OrderRatePerSec:   getenvFloat("ORDER_RATE_PER_SEC", 5),
		OrderRateBurst:    getenvInt("ORDER_RATE_BURST", 20),
		RateLimitDisabled: getenvBool("RATE_LIMIT_DISABLED", false),

		SnapshotHour:      getenvInt("SNAPSHOT_HOUR", 2),
		SchedulerDisabled: getenvBool("SCHEDULER_DISABLED", false),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "menuboard"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 600),
	}
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
