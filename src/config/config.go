package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	JWTSecret          string
	Port               string
	DatabasePath       string
	LogLevel           string
	CSRFAuthKey        []byte
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	MaxUploadSizeBytes int64

	// External coaching collaborator (LLM API)
	CoachingAPIURL   string
	CoachingAPIKey   string
	CoachingModel    string
	CoachingDisabled bool

	// Market data provider
	PriceLookbackDays   int
	PriceCacheExpiry    time.Duration
	PriceRequestsPerSec float64

	EmailServiceProvider string

	SMTPServer   string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	MailgunDomain        string
	MailgunPrivateAPIKey string

	SenderEmail string
	SenderName  string

	VerificationEmailBaseURL string
	VerificationTokenExpiry  time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	FrontendBaseURL    string
}

var Cfg *AppConfig

func LoadConfig() {
	errEnv := godotenv.Load()
	if errEnv != nil {
		log.Println("Info: No .env file found or error loading .env file. Relying on OS environment variables and defaults. Error (if any):", errEnv)
	} else {
		log.Println(".env file loaded successfully.")
	}

	log.Println("Loading application configuration...")

	jwtSecret := getEnv("JWT_SECRET", "your-very-secure-and-long-jwt-secret-key-for-hs256-minimum-32-bytes")
	if jwtSecret == "your-very-secure-and-long-jwt-secret-key-for-hs256-minimum-32-bytes" {
		log.Println("WARNING: Using default insecure JWT_SECRET. Set JWT_SECRET environment variable for production.")
	}

	csrfAuthKeyStr := getEnv("CSRF_AUTH_KEY", "a-very-secure-32-byte-long-key-must-be-32-bytes!")
	if len(csrfAuthKeyStr) < 32 {
		log.Fatalf("FATAL: CSRF_AUTH_KEY must be at least 32 bytes long. Current length: %d", len(csrfAuthKeyStr))
	}

	accessTokenExpiry := getEnvAsDuration("ACCESS_TOKEN_EXPIRY", 60*time.Minute)
	refreshTokenExpiry := getEnvAsDuration("REFRESH_TOKEN_EXPIRY", 7*24*time.Hour)
	verificationTokenExpiry := getEnvAsDuration("VERIFICATION_TOKEN_EXPIRY", 24*time.Hour)
	priceCacheExpiry := getEnvAsDuration("PRICE_CACHE_EXPIRY", 6*time.Hour)

	maxUploadSizeBytesStr := getEnv("MAX_UPLOAD_SIZE_BYTES", "10485760")
	maxUploadSizeBytes, err := strconv.ParseInt(maxUploadSizeBytesStr, 10, 64)
	if err != nil {
		log.Printf("WARNING: Invalid MAX_UPLOAD_SIZE_BYTES format '%s'. Using default 10MB. Error: %v", maxUploadSizeBytesStr, err)
		maxUploadSizeBytes = 10 * 1024 * 1024
	}

	priceRPSStr := getEnv("PRICE_REQUESTS_PER_SEC", "4")
	priceRPS, err := strconv.ParseFloat(priceRPSStr, 64)
	if err != nil || priceRPS <= 0 {
		log.Printf("WARNING: Invalid PRICE_REQUESTS_PER_SEC '%s'. Using default 4.", priceRPSStr)
		priceRPS = 4
	}

	Cfg = &AppConfig{
		JWTSecret:          jwtSecret,
		Port:               getEnv("PORT", "8080"),
		DatabasePath:       getEnv("DATABASE_PATH", "./tradecoach.db"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CSRFAuthKey:        []byte(csrfAuthKeyStr),
		AccessTokenExpiry:  accessTokenExpiry,
		RefreshTokenExpiry: refreshTokenExpiry,
		MaxUploadSizeBytes: maxUploadSizeBytes,

		CoachingAPIURL:   getEnv("COACHING_API_URL", "https://api.anthropic.com/v1/messages"),
		CoachingAPIKey:   getEnv("COACHING_API_KEY", ""),
		CoachingModel:    getEnv("COACHING_MODEL", "claude-sonnet-4-5-20250929"),
		CoachingDisabled: getEnv("COACHING_DISABLED", "false") == "true",

		PriceLookbackDays:   getEnvAsInt("PRICE_LOOKBACK_DAYS", 90),
		PriceCacheExpiry:    priceCacheExpiry,
		PriceRequestsPerSec: priceRPS,

		EmailServiceProvider: getEnv("EMAIL_SERVICE_PROVIDER", "none"),

		SMTPServer:   getEnv("SMTP_SERVER", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		MailgunDomain:        getEnv("MAILGUN_DOMAIN", ""),
		MailgunPrivateAPIKey: getEnv("MAILGUN_PRIVATE_API_KEY", ""),

		SenderEmail: getEnv("SENDER_EMAIL", "noreply@example.com"),
		SenderName:  getEnv("SENDER_NAME", "TradeCoach"),

		VerificationEmailBaseURL: getEnv("VERIFICATION_EMAIL_BASE_URL", "http://localhost:3000/verify-email"),
		VerificationTokenExpiry:  verificationTokenExpiry,

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback"),
		FrontendBaseURL:    getEnv("FRONTEND_BASE_URL", "http://localhost:3000"),
	}

	if Cfg.EmailServiceProvider == "mailgun" {
		if Cfg.MailgunDomain == "" || Cfg.MailgunPrivateAPIKey == "" {
			log.Fatalf("FATAL: MAILGUN_DOMAIN and MAILGUN_PRIVATE_API_KEY are required when EMAIL_SERVICE_PROVIDER is 'mailgun'.")
		}
	}

	if Cfg.CoachingAPIKey == "" && !Cfg.CoachingDisabled {
		log.Println("WARNING: COACHING_API_KEY not set. Coaching requests will fail until it is configured or COACHING_DISABLED=true.")
	}

	log.Printf("Configuration loaded: Port=%s, LogLevel=%s, DBPath=%s, EmailProvider=%s",
		Cfg.Port, Cfg.LogLevel, Cfg.DatabasePath, Cfg.EmailServiceProvider)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Environment variable %s not set, using default: %s", key, fallback)
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid integer value for %s ('%s'), using default: %d", key, valueStr, fallback)
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	log.Printf("Invalid duration value for %s ('%s'), using default: %s", key, valueStr, fallback.String())
	return fallback
}
