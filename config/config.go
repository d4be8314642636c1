package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	AppName   string
	BaseURL   string
	JWTKey    string
	SaltRound int

	DBDialect  string // postgres or mysql
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	RootDomain string // {school-slug}.<RootDomain> resolves the tenant

	EmailSender    string
	SendgridAPIKey string
	SMTPHost       string
	SMTPPort       string
	SMTPPassword   string

	UploadDir      string
	MaxVideoSizeMB int

	WebhookTimeoutSeconds int
	WebhookMaxAttempts    int

	ReminderInactivityDays int
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		AppName:   getEnv("APP_NAME", "Teachwell"),
		BaseURL:   getEnv("APP_BASE_URL", "http://localhost:3000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		DBDialect:  getEnv("DB_DIALECT", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "teachwell"),

		RootDomain: getEnv("ROOT_DOMAIN", "teachwell.local"),

		EmailSender:    getEnv("EMAIL_SENDER", "no-reply@teachwell.local"),
		SendgridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		SMTPHost:       getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),

		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		MaxVideoSizeMB: getEnvInt("MAX_VIDEO_SIZE_MB", 512),

		WebhookTimeoutSeconds: getEnvInt("WEBHOOK_TIMEOUT_SECONDS", 10),
		WebhookMaxAttempts:    getEnvInt("WEBHOOK_MAX_ATTEMPTS", 5),

		ReminderInactivityDays: getEnvInt("REMINDER_INACTIVITY_DAYS", 3),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.SendgridAPIKey == "" && AppConfig.SMTPPassword == "" {
		log.Println("Warning: No SENDGRID_API_KEY or SMTP_PASSWORD set. Outgoing email will be logged only.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
