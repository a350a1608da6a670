package utils

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Email     EmailConfig
	OAuth     OAuthConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name            string
	Port            string
	Debug           bool
	LogPath         string
	BaseURL         string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int32
}

// JWTConfig holds the signing secret and the four token lifetimes.
type JWTConfig struct {
	Secret        string
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	RememberMeTTL time.Duration
	CompletionTTL time.Duration
}

type EmailConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	From       string
	FromName   string
	TLS        bool
	Timeout    time.Duration
	MaxRetries uint64
	// PasswordResetURL is the page that collects the new password.
	PasswordResetURL string
}

// Enabled reports whether an SMTP relay is configured.
func (c EmailConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	CompletionURL      string
	SuccessURL         string
}

func (c OAuthConfig) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

type CORSConfig struct {
	AllowedOrigins []string
}

type RateLimitConfig struct {
	AuthRequestsPerMinute int
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")

	// Set defaults
	v.SetDefault("APP_NAME", "pizzeria-backend")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_PATH", "logs/")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("JWT_ISSUER", "pizzeria-backend")
	v.SetDefault("JWT_ACCESS_TTL", "60m")
	v.SetDefault("JWT_REFRESH_TTL", "24h")
	v.SetDefault("JWT_REMEMBER_ME_TTL", "720h")
	v.SetDefault("JWT_COMPLETION_TTL", "10m")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_TLS", true)
	v.SetDefault("SMTP_TIMEOUT", "30s")
	v.SetDefault("SMTP_MAX_RETRIES", 3)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("AUTH_RATE_LIMIT_PER_MINUTE", 20)

	// .env is optional; the environment always wins
	if _, err := os.Stat(".env"); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	v.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:            v.GetString("APP_NAME"),
			Port:            v.GetString("PORT"),
			Debug:           v.GetBool("DEBUG"),
			LogPath:         v.GetString("LOG_PATH"),
			BaseURL:         strings.TrimSuffix(v.GetString("BASE_URL"), "/"),
			ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASS"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			Issuer:        v.GetString("JWT_ISSUER"),
			AccessTTL:     v.GetDuration("JWT_ACCESS_TTL"),
			RefreshTTL:    v.GetDuration("JWT_REFRESH_TTL"),
			RememberMeTTL: v.GetDuration("JWT_REMEMBER_ME_TTL"),
			CompletionTTL: v.GetDuration("JWT_COMPLETION_TTL"),
		},
		Email: EmailConfig{
			Host:             v.GetString("SMTP_HOST"),
			Port:             v.GetInt("SMTP_PORT"),
			User:             v.GetString("SMTP_USER"),
			Password:         v.GetString("SMTP_PASS"),
			From:             v.GetString("EMAIL_FROM"),
			FromName:         v.GetString("EMAIL_FROM_NAME"),
			TLS:              v.GetBool("SMTP_TLS"),
			Timeout:          v.GetDuration("SMTP_TIMEOUT"),
			MaxRetries:       v.GetUint64("SMTP_MAX_RETRIES"),
			PasswordResetURL: v.GetString("PASSWORD_RESET_URL"),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     v.GetString("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
			GoogleRedirectURL:  v.GetString("GOOGLE_REDIRECT_URL"),
			CompletionURL:      v.GetString("OAUTH_COMPLETION_URL"),
			SuccessURL:         v.GetString("OAUTH_SUCCESS_URL"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		RateLimit: RateLimitConfig{
			AuthRequestsPerMinute: v.GetInt("AUTH_RATE_LIMIT_PER_MINUTE"),
		},
	}

	if config.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return config, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
