package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Telegram
	TelegramToken  string
	TelegramChatID string

	// Backend selection
	DataBackend string

	// File snapshot
	SnapshotPath string

	// Database
	SQLiteDBPath string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// Period grouping
	PeriodMode string

	// Scheduled report
	TZName               string
	ScheduleDays         string
	ScheduleWeekdays     string
	ScheduleHour         int
	ScheduleMinute       int
	ReportPreviousPeriod bool

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func Load() *Config {
	return &Config{
		TelegramToken:  getEnv("TELEGRAM_TOKEN", ""),
		TelegramChatID: getEnv("TELEGRAM_CHAT_ID", ""),

		DataBackend: getEnv("DATA_BACKEND", "file"),

		SnapshotPath: getEnv("SNAPSHOT_PATH", "./data/financas.json"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/caixa.db"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:          getEnv("GOOGLE_SHEET_NAME", "Lancamentos"),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),

		PeriodMode: getEnv("PERIOD_MODE", "monthly"),

		TZName:               getEnv("TZ_NAME", "America/Sao_Paulo"),
		ScheduleDays:         getEnv("SCHEDULE_DAYS", "1"),
		ScheduleWeekdays:     getEnv("SCHEDULE_WEEKDAYS", ""),
		ScheduleHour:         getEnvInt("SCHEDULE_HOUR", 8),
		ScheduleMinute:       getEnvInt("SCHEDULE_MINUTE", 0),
		ReportPreviousPeriod: getEnvBool("REPORT_PREVIOUS_PERIOD", true),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "caixa"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "mirror_entries"),
	}
}

// Validate checks the loaded configuration, collecting every problem so the
// operator sees the full list at once.
func (c *Config) Validate() error {
	var errs []string

	if c.TelegramToken == "" {
		errs = append(errs, "TELEGRAM_TOKEN is required")
	}

	validBackends := []string{"file", "sqlite", "sheets", "memory"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "file" && c.SnapshotPath == "" {
		errs = append(errs, "snapshot path cannot be empty when using file backend")
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.DataBackend == "sheets" {
		if c.GoogleSpreadsheetID == "" {
			errs = append(errs, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleSheetName == "" {
			errs = append(errs, "Google Sheet name is required when using sheets backend")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errs = append(errs, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.PeriodMode != "monthly" && c.PeriodMode != "running" {
		errs = append(errs, fmt.Sprintf("invalid period mode '%s': must be 'monthly' or 'running'", c.PeriodMode))
	}

	if _, err := time.LoadLocation(c.TZName); err != nil {
		errs = append(errs, fmt.Sprintf("invalid timezone '%s': %v", c.TZName, err))
	}
	if c.ScheduleDays == "" && c.ScheduleWeekdays == "" {
		errs = append(errs, "either SCHEDULE_DAYS or SCHEDULE_WEEKDAYS must be set")
	}
	if c.ScheduleHour < 0 || c.ScheduleHour > 23 {
		errs = append(errs, fmt.Sprintf("invalid schedule hour %d: must be between 0 and 23", c.ScheduleHour))
	}
	if c.ScheduleMinute < 0 || c.ScheduleMinute > 59 {
		errs = append(errs, fmt.Sprintf("invalid schedule minute %d: must be between 0 and 59", c.ScheduleMinute))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
