package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Bookings backends
	GoogleSheetID            string
	GoogleServiceAccountJSON string
	BookingsExcelPath        string
	BookingsSheetName        string

	// Knowledge base
	KnowledgePath     string
	DefaultPropertyID string

	// AI
	OpenAIAPIKey  string
	AIModel       string
	AITemperature float64
	AIMaxTokens   int

	// SMTP
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPUseSSL   bool

	// Host notifications
	HostNotificationEmails []string

	// Chat log persistence (optional)
	MongoURI string
	MongoDB  string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	cwd, _ := os.Getwd()

	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 30)) * time.Second,

		GoogleSheetID:            getEnv("GOOGLE_SHEET_ID", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		BookingsExcelPath:        getEnv("BOOKINGS_EXCEL_PATH", filepath.Join(cwd, "Bookings.xlsx")),
		BookingsSheetName:        getEnv("BOOKINGS_SHEET_NAME", "Bookings"),

		KnowledgePath:     getEnv("KNOWLEDGE_PATH", filepath.Join(cwd, "conoscenza.txt")),
		DefaultPropertyID: getEnv("DEFAULT_PROPERTY_ID", "CT-01"),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		AIModel:       getEnv("AI_MODEL", "gpt-4o-mini"),
		AITemperature: getEnvAsFloat("AI_TEMPERATURE", 0.2),
		AIMaxTokens:   getEnvAsInt("AI_MAX_TOKENS", 350),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 465),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPUseSSL:   getEnvAsBool("SMTP_USE_SSL", true),

		MongoURI: getEnv("MONGODB_DSN", ""),
		MongoDB:  getEnv("MONGO_DB", "concierge"),
	}

	config.SMTPFrom = getEnv("SMTP_FROM", config.SMTPUsername)
	if config.SMTPFrom == "" {
		config.SMTPFrom = "no-reply@example.com"
	}

	hostEmails := getEnv("HOST_NOTIFICATION_EMAILS", "")
	if hostEmails == "" {
		hostEmails = getEnv("HOST_NOTIFICATION_EMAIL", "")
	}
	for _, email := range strings.Split(hostEmails, ",") {
		if email = strings.TrimSpace(email); email != "" {
			config.HostNotificationEmails = append(config.HostNotificationEmails, email)
		}
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	switch strings.ToLower(getEnv(key, "")) {
	case "1", "true", "yes", "y":
		return true
	case "0", "false", "no", "n":
		return false
	}
	return defaultValue
}
