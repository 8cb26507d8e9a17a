package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

const (
	defaultPollInterval = 30 * time.Second
	defaultTimezone     = "America/New_York"
)

// Config holds all configuration for the application
type Config struct {
	DatabaseURL string // optional, switches the ledger to postgres
	RedisURL    string // optional, schedules passes through asynq

	AirtableAPIKey string
	BaseID         string
	TableName      string
	GitHubToken    string

	PrinterName  string
	PrintCommand string

	PollInterval time.Duration
	Timezone     string
	Location     *time.Location

	LedgerPath    string
	OutputDir     string
	TemplateDir   string
	TemplateName  string
	OutputFormat  string
	PDFConverter  string
	QuestionsFile string
	GrantType     string

	APIPort string
}

// LoadConfig reads configuration from environment variables (.env file)
func LoadConfig() (*Config, error) {
	// In production the variables are usually set directly, so a missing .env is fine.
	_ = godotenv.Load()

	interval, err := parseInterval(getEnv("POLL_INTERVAL", ""))
	if err != nil {
		return nil, err
	}

	timezone := getEnv("TIMEZONE", defaultTimezone)
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", timezone, err)
	}

	format := strings.ToLower(getEnv("OUTPUT_FORMAT", "pdf"))
	switch format {
	case "pdf", "html", "text":
	default:
		return nil, fmt.Errorf("invalid OUTPUT_FORMAT %q: want pdf, html or text", format)
	}

	return &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		RedisURL:       getEnv("REDIS_URL", ""),
		AirtableAPIKey: getEnv("AIRTABLE_API_KEY", ""),
		BaseID:         getEnv("SPRIG_BASE_ID", ""),
		TableName:      getEnv("SPRIG_TABLE_NAME", ""),
		GitHubToken:    getEnv("GITHUB_TOKEN", ""),
		PrinterName:    getEnv("DEST_RECEIPT_PRINTER", ""),
		PrintCommand:   getEnv("PRINT_COMMAND", "lp"),
		PollInterval:   interval,
		Timezone:       timezone,
		Location:       location,
		LedgerPath:     getEnv("LEDGER_PATH", "processed_records.json"),
		OutputDir:      getEnv("OUTPUT_DIR", "."),
		TemplateDir:    getEnv("TEMPLATE_DIR", ""),
		TemplateName:   getEnv("TEMPLATE_NAME", "receipt.html"),
		OutputFormat:   format,
		PDFConverter:   getEnv("PDF_CONVERTER", "weasyprint"),
		QuestionsFile:  getEnv("QUESTIONS_FILE", ""),
		GrantType:      getEnv("GRANT_TYPE", "sprig"),
		APIPort:        getEnv("API_PORT", "8080"),
	}, nil
}

// parseInterval accepts a Go duration ("45s", "2m") or a bare number of seconds.
func parseInterval(raw string) (time.Duration, error) {
	if raw == "" {
		return defaultPollInterval, nil
	}

	if seconds, err := strconv.Atoi(raw); err == nil {
		if seconds <= 0 {
			return 0, fmt.Errorf("invalid POLL_INTERVAL %q: must be positive", raw)
		}
		return time.Duration(seconds) * time.Second, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid POLL_INTERVAL %q: %w", raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid POLL_INTERVAL %q: must be positive", raw)
	}
	return d, nil
}

// Helper function to get env var or return default
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
