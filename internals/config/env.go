package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the auth backend
type Config struct {
	// Environment is "development" or "production"; production hides internal error detail
	Environment string `env:"APP_ENV" envDefault:"development"`
	Port        string `env:"PORT" envDefault:"5000"`
	AppName     string `env:"APP_NAME" envDefault:"Digital Healthcare"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`

	// JWTSecret signs session tokens (HS256)
	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	TokenTTL  time.Duration `env:"JWT_EXPIRATION" envDefault:"1h"`
	OTPTTL    time.Duration `env:"OTP_EXPIRATION" envDefault:"5m"`
	ResetTTL  time.Duration `env:"RESET_TOKEN_EXPIRATION" envDefault:"30m"`

	// EncryptionKey seals TOTP secrets at rest, must be 16, 24 or 32 bytes
	EncryptionKey string `env:"ENCRYPTION_KEY"`

	DB     DBConfig
	Mail   MailConfig
	Google GoogleConfig
	Cookie CookieConfig

	CleanupInterval   time.Duration `env:"CLEANUP_INTERVAL" envDefault:"30m"`
	UnverifiedUserTTL time.Duration `env:"UNVERIFIED_USER_TTL" envDefault:"24h"`
}

// DBConfig selects the user/challenge store backend
type DBConfig struct {
	// Driver is one of "sqlite", "mongo" or "memory"
	Driver   string `env:"DB_DRIVER" envDefault:"sqlite"`
	URL      string `env:"DB_URL" envDefault:"auth.db"`
	MongoURI string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB  string `env:"MONGO_DB" envDefault:"healthcare"`
}

// MailConfig selects the outbound mail provider and the dispatcher sizing
type MailConfig struct {
	// Provider is one of "smtp", "mailgun", "sendgrid" or "log"
	Provider       string `env:"MAIL_PROVIDER" envDefault:"smtp"`
	Host           string `env:"EMAIL_HOST" envDefault:"smtp.gmail.com"`
	Port           int    `env:"SMTP_PORT" envDefault:"587"`
	User           string `env:"EMAIL_USER"`
	Password       string `env:"EMAIL_PASS"`
	FromName       string `env:"MAIL_FROM_NAME" envDefault:"Digital Healthcare"`
	MailgunDomain  string `env:"MAILGUN_DOMAIN"`
	MailgunAPIKey  string `env:"MAILGUN_API_KEY"`
	SendGridAPIKey string `env:"SENDGRID_API_KEY"`
	Workers        int    `env:"MAIL_WORKERS" envDefault:"2"`
	QueueSize      int    `env:"MAIL_QUEUE_SIZE" envDefault:"100"`
	MaxRetries     uint64 `env:"MAIL_MAX_RETRIES" envDefault:"3"`
	// DrainTimeout bounds how long shutdown waits on queued mail
	DrainTimeout time.Duration `env:"MAIL_DRAIN_TIMEOUT" envDefault:"10s"`
}

// GoogleConfig holds the OAuth client used for federated login
type GoogleConfig struct {
	ClientID     string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string `env:"GOOGLE_REDIRECT_URL" envDefault:"http://localhost:5000/api/auth/google/callback"`
}

// IsProduction reports whether internal error details must stay hidden from clients
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Load reads .env (when present) and parses the environment into a Config
func Load() (*Config, error) {
	LoadEnvFile()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadEnvFile loads .env only if it exists.
// In Docker/K8s the variables are injected directly and .env isn't shipped.
func LoadEnvFile() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: failed to load .env file: %v", err)
		}
	}
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "sqlite", "mongo", "memory":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	switch c.Mail.Provider {
	case "smtp", "mailgun", "sendgrid", "log":
	default:
		return fmt.Errorf("unsupported MAIL_PROVIDER %q", c.Mail.Provider)
	}
	if c.EncryptionKey != "" {
		switch len(c.EncryptionKey) {
		case 16, 24, 32:
		default:
			return errors.New("ENCRYPTION_KEY must be 16, 24 or 32 bytes long")
		}
	}
	c.Cookie.HttpOnly = true
	if c.Mail.Workers <= 0 {
		c.Mail.Workers = 1
	}
	if c.Mail.QueueSize <= 0 {
		c.Mail.QueueSize = 1
	}
	return nil
}
