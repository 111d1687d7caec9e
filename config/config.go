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
	JWTKey    string
	SaltRound int

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	// Similarity oracle for essay auto-correction.
	OracleProvider string // "openai" or "gemini"
	OpenAIApiKey   string
	OpenAIBaseURL  string
	OpenAIModel    string
	GeminiApiKey   string
	GeminiModel    string

	EmailSender string
	Password    string // SMTP password

	// Cron spec for the optional expired-exam sweep. Empty disables it;
	// lifecycle reconciliation then happens only on request paths.
	ExamSweepCron string

	// Minimum minutes between global reconciliation scans on the
	// throttled listing path.
	ExamCheckIntervalMinutes int
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
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "examly"),
		DBPort:     getEnv("DB_PORT", "5432"),

		OracleProvider: getEnv("ORACLE_PROVIDER", "gemini"),
		OpenAIApiKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiApiKey:   getEnv("GEMINI_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		EmailSender: getEnv("EMAIL_SENDER", ""),
		Password:    getEnv("PASSWORD", ""),

		ExamSweepCron:            getEnv("EXAM_SWEEP_CRON", ""),
		ExamCheckIntervalMinutes: getEnvInt("EXAM_CHECK_INTERVAL_MINUTES", 15),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.GeminiApiKey == "" && AppConfig.OpenAIApiKey == "" {
		log.Println("Warning: No similarity oracle API key configured. Essay auto-correction will stay pending.")
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
