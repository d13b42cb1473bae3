package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every process-wide setting. It is built once in main and
// passed down explicitly; nothing reads secrets from the environment later.
type Config struct {
	Port       string
	BaseURL    string // storefront origin, used for success/cancel URLs
	APIBaseURL string // this API's public origin, used for OAuth callbacks

	TokenSecret   []byte // handoff tokens (shipping, checkout, success)
	JWTSecret     []byte // session tokens
	SessionSecret []byte // gothic cookie store

	CheckoutTokenTTL time.Duration
	ShippingTokenTTL time.Duration
	SessionTTL       time.Duration
	TokenSingleUse   bool

	StripeSecretKey string
	StripeCurrency  string

	MongoURI string
	MongoDB  string

	RedisHost     string
	RedisPassword string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	CORSOrigins []string

	GoogleClientID       string
	GoogleClientSecret   string
	FacebookClientID     string
	FacebookClientSecret string

	CheckoutRateLimit int64
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	} else {
		log.Println("✅ .env file loaded")
	}
	return FromEnv()
}

// FromEnv builds a Config from the environment and validates it.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		BaseURL:    strings.TrimRight(getEnv("BASE_URL", "http://localhost:3000"), "/"),
		APIBaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080"), "/"),

		TokenSecret:   []byte(os.Getenv("TOKEN_SECRET")),
		JWTSecret:     []byte(os.Getenv("JWT_SECRET")),
		SessionSecret: []byte(os.Getenv("SESSION_SECRET")),

		StripeSecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		StripeCurrency:  strings.ToLower(getEnv("STRIPE_CURRENCY", "usd")),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "Ecommer_user"),

		RedisHost:     getEnv("REDIS_HOST", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@boltform.buttnetworks.com"),

		GoogleClientID:       os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret:   os.Getenv("GOOGLE_CLIENT_SECRET"),
		FacebookClientID:     os.Getenv("FACEBOOK_CLIENT_ID"),
		FacebookClientSecret: os.Getenv("FACEBOOK_CLIENT_SECRET"),
	}

	var err error
	if cfg.CheckoutTokenTTL, err = getDuration("CHECKOUT_TOKEN_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ShippingTokenTTL, err = getDuration("SHIPPING_TOKEN_TTL", 20*time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	cfg.TokenSingleUse = strings.ToLower(os.Getenv("TOKEN_SINGLE_USE")) == "true"

	if cfg.SMTPPort, err = strconv.Atoi(getEnv("SMTP_PORT", "587")); err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}
	limit, err := strconv.ParseInt(getEnv("CHECKOUT_RATE_LIMIT", "10"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CHECKOUT_RATE_LIMIT: %w", err)
	}
	cfg.CheckoutRateLimit = limit

	for _, origin := range strings.Split(getEnv("CORS_ORIGINS", cfg.BaseURL), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing secret at once.
func (c *Config) Validate() error {
	var errs []error
	if len(c.TokenSecret) == 0 {
		errs = append(errs, errors.New("TOKEN_SECRET is required"))
	}
	if len(c.JWTSecret) == 0 {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if len(c.SessionSecret) == 0 {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	}
	if c.StripeSecretKey == "" {
		errs = append(errs, errors.New("STRIPE_SECRET_KEY is required"))
	}
	if c.CheckoutTokenTTL <= 0 || c.ShippingTokenTTL <= 0 || c.SessionTTL <= 0 {
		errs = append(errs, errors.New("token TTLs must be positive"))
	}
	return errors.Join(errs...)
}

// MailEnabled reports whether order confirmation e-mails can be sent.
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPUsername != ""
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
