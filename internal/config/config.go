package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Env         string
	Port        string
	FrontendURL string
	CORSOrigin  string
	EnableDocs  bool

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Password hashing
	BcryptCost int

	// SMTP for password reset emails. Delivery is disabled when SMTPHost is empty.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	// Advisor. Disabled when GeminiAPIKey is empty.
	GeminiAPIKey        string
	GeminiBaseURL       string
	AdvisorModel        string
	AdvisorFallback     string
	AdvisorTimeout      time.Duration
	ShutdownGracePeriod time.Duration
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env:         getEnv("ENV", "development"),
		Port:        getEnv("PORT", "5000"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		CORSOrigin:  getEnv("CORS_ORIGIN", "*"),
		EnableDocs:  getEnv("ENABLE_SWAGGER", "true") == "true",

		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPUsername: getEnv("EMAIL_USER", ""),
		SMTPPassword: getEnv("EMAIL_PASS", ""),
		MailFrom:     getEnv("MAIL_FROM", "Orbit Security <noreply@orbit.com>"),

		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiBaseURL:   getEnv("GEMINI_BASE_URL", ""),
		AdvisorModel:    getEnv("ADVISOR_MODEL", "gemini-flash-lite-latest"),
		AdvisorFallback: getEnv("ADVISOR_FALLBACK_MODEL", "gemini-flash-latest"),
	}

	config.JWTExpirationDur = getDuration("JWT_EXPIRES_IN", 30*24*time.Hour)
	config.AdvisorTimeout = getDuration("ADVISOR_TIMEOUT", 30*time.Second)
	config.ShutdownGracePeriod = getDuration("SHUTDOWN_GRACE_PERIOD", 10*time.Second)
	config.BcryptCost = getInt("BCRYPT_COST", 10)
	config.SMTPPort = getInt("SMTP_PORT", 587)

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, raw, defaultValue)
		return defaultValue
	}
	return n
}
