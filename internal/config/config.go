package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"finreport/internal/core"
)

// Backends accepted by DATA_BACKEND.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// DefaultReportCron runs at 06:00 on the first day of every month.
const DefaultReportCron = "0 0 6 1 * *"

// CronParser parses six-field cron specs (with seconds), as the scheduler does.
var CronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

type Config struct {
	// Ledger backend
	DataBackend   string `yaml:"data_backend"`
	DataDirectory string `yaml:"data_directory"`
	SQLiteDBPath  string `yaml:"sqlite_db_path"`

	// AMQP (optional)
	AMQPURL      string `yaml:"amqp_url"`
	AMQPExchange string `yaml:"amqp_exchange"`
	AMQPQueue    string `yaml:"amqp_queue"`

	// Google Sheets report export (optional)
	GoogleSpreadsheetID      string `yaml:"google_spreadsheet_id"`
	GoogleSheetName          string `yaml:"google_sheet_name"`
	GoogleServiceAccountJSON string `yaml:"google_service_account_json"`
	GoogleServiceAccountFile string `yaml:"google_service_account_file"`

	// Scheduling and caching
	ReportCron           string        `yaml:"report_cron"`
	BillCacheTTL         time.Duration `yaml:"bill_cache_ttl"`
	CacheCleanupInterval time.Duration `yaml:"cache_cleanup_interval"`

	// Classification
	NoNameExpenseAccountID  string `yaml:"no_name_expense_account_id"`
	DisposableIncomeTag     string `yaml:"disposable_income_tag"`
	BillsTag                string `yaml:"bills_tag"`
	PaycheckTag             string `yaml:"paycheck_tag"`
	ExpectedMonthlyPaycheck string `yaml:"expected_monthly_paycheck"`
}

func defaults() *Config {
	return &Config{
		DataBackend:          BackendMemory,
		DataDirectory:        "./data",
		SQLiteDBPath:         "./data/finreport.db",
		AMQPExchange:         "finreport",
		AMQPQueue:            "monthly_reports",
		ReportCron:           DefaultReportCron,
		BillCacheTTL:         5 * time.Minute,
		CacheCleanupInterval: 10 * time.Minute,
		DisposableIncomeTag:  "Disposable Income",
		BillsTag:             "Bills",
		PaycheckTag:          "Paycheck",
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func Load() (*Config, error) {
	cfg := defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.DataBackend = getEnv("DATA_BACKEND", cfg.DataBackend)
	cfg.DataDirectory = getEnv("DATA_DIRECTORY", cfg.DataDirectory)
	cfg.SQLiteDBPath = getEnv("SQLITE_DB_PATH", cfg.SQLiteDBPath)

	cfg.AMQPURL = getEnv("AMQP_URL", cfg.AMQPURL)
	cfg.AMQPExchange = getEnv("AMQP_EXCHANGE", cfg.AMQPExchange)
	cfg.AMQPQueue = getEnv("AMQP_QUEUE", cfg.AMQPQueue)

	cfg.GoogleSpreadsheetID = getEnv("GOOGLE_SPREADSHEET_ID", cfg.GoogleSpreadsheetID)
	cfg.GoogleSheetName = getEnv("GOOGLE_SHEET_NAME", cfg.GoogleSheetName)
	cfg.GoogleServiceAccountJSON = getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", cfg.GoogleServiceAccountJSON)
	cfg.GoogleServiceAccountFile = getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", cfg.GoogleServiceAccountFile)

	cfg.ReportCron = getEnv("REPORT_CRON", cfg.ReportCron)
	cfg.BillCacheTTL = getEnvDuration("BILL_CACHE_TTL", cfg.BillCacheTTL)
	cfg.CacheCleanupInterval = getEnvDuration("CACHE_CLEANUP_INTERVAL", cfg.CacheCleanupInterval)

	cfg.NoNameExpenseAccountID = getEnv("NO_NAME_EXPENSE_ACCOUNT_ID", cfg.NoNameExpenseAccountID)
	cfg.DisposableIncomeTag = getEnv("DISPOSABLE_INCOME_TAG", cfg.DisposableIncomeTag)
	cfg.BillsTag = getEnv("BILLS_TAG", cfg.BillsTag)
	cfg.PaycheckTag = getEnv("PAYCHECK_TAG", cfg.PaycheckTag)
	cfg.ExpectedMonthlyPaycheck = getEnv("EXPECTED_MONTHLY_PAYCHECK", cfg.ExpectedMonthlyPaycheck)

	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	switch c.DataBackend {
	case BackendMemory:
		if c.DataDirectory == "" {
			errors = append(errors, "data directory cannot be empty when using memory backend")
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of [%s %s]", c.DataBackend, BackendMemory, BackendSQLite))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleServiceAccountFile != "" {
		if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
		}
	}

	if _, err := CronParser.Parse(c.ReportCron); err != nil {
		errors = append(errors, fmt.Sprintf("invalid report cron '%s': %v", c.ReportCron, err))
	}

	if c.BillCacheTTL <= 0 {
		errors = append(errors, fmt.Sprintf("invalid bill cache TTL %v: must be positive", c.BillCacheTTL))
	}
	if c.CacheCleanupInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid cache cleanup interval %v: must be at least 1 second", c.CacheCleanupInterval))
	}

	if c.ExpectedMonthlyPaycheck != "" {
		if _, err := core.ParseAmount(c.ExpectedMonthlyPaycheck); err != nil {
			errors = append(errors, fmt.Sprintf("invalid expected monthly paycheck '%s': %v", c.ExpectedMonthlyPaycheck, err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Classification returns the settings the transaction classifier needs.
func (c *Config) Classification() core.ClassificationConfig {
	return core.ClassificationConfig{
		NoNameExpenseAccountID: c.NoNameExpenseAccountID,
		DisposableIncomeTag:    c.DisposableIncomeTag,
		BillsTag:               c.BillsTag,
		PaycheckTag:            c.PaycheckTag,
	}
}

// ExpectedPaycheck returns the configured monthly paycheck, or nil when it
// is unset or malformed.
func (c *Config) ExpectedPaycheck() *decimal.Decimal {
	if strings.TrimSpace(c.ExpectedMonthlyPaycheck) == "" {
		return nil
	}
	d, err := core.ParseAmount(c.ExpectedMonthlyPaycheck)
	if err != nil {
		return nil
	}
	return &d
}

func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

func (c *Config) SheetsEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
