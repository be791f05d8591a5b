package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL          string
	RedisAddr            string
	Port                 string
	AppEnv               string
	SessionSecret        string
	SessionTTL           time.Duration
	CookieSecure         bool
	AllowedOrigins       []string
	RateLimitPerMinute   int
	TrustProxy           bool
	OIDCIssuerURL        string
	OIDCClientID         string
	OtelExporterEndpoint string
}

// ExternalSignInEnabled reports whether an identity provider is configured.
func (c Config) ExternalSignInEnabled() bool {
	return c.OIDCIssuerURL != "" && c.OIDCClientID != ""
}

// Load reads configuration from environment variables.
// It applies defaults for "local" environments but enforces strictness for others.
func Load() (Config, error) {
	cfg := Config{
		Port:                 os.Getenv("PORT"),
		AppEnv:               os.Getenv("APP_ENV"),
		SessionSecret:        os.Getenv("SESSION_SECRET"),
		OIDCIssuerURL:        os.Getenv("OIDC_ISSUER_URL"),
		OIDCClientID:         os.Getenv("OIDC_CLIENT_ID"),
		OtelExporterEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		SessionTTL:           24 * time.Hour,
		RateLimitPerMinute:   120,
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.SessionSecret == "" {
		if cfg.AppEnv == "local" {
			cfg.SessionSecret = "dev-secret-do-not-use-in-prod"
		} else {
			return Config{}, errors.New("SESSION_SECRET is required")
		}
	}
	// Default to production safety if not explicitly set to local
	if cfg.AppEnv == "" {
		cfg.AppEnv = "production"
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	if cfg.RedisAddr == "" {
		return Config{}, errors.New("REDIS_ADDR is required")
	}

	if v := os.Getenv("SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil || ttl <= 0 {
			return Config{}, fmt.Errorf("SESSION_TTL must be a positive duration, got %q", v)
		}
		cfg.SessionTTL = ttl
	}

	// Cookies are Secure everywhere except local development over plain HTTP.
	cfg.CookieSecure = cfg.AppEnv != "local"
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("COOKIE_SECURE must be a boolean, got %q", v)
		}
		cfg.CookieSecure = secure
	}

	if v := os.Getenv("RATE_LIMIT_RPM"); v != "" {
		rpm, err := strconv.Atoi(v)
		if err != nil || rpm < 0 {
			return Config{}, fmt.Errorf("RATE_LIMIT_RPM must be a non-negative integer, got %q", v)
		}
		cfg.RateLimitPerMinute = rpm
	}

	if v := os.Getenv("TRUST_PROXY"); v != "" {
		trust, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("TRUST_PROXY must be a boolean, got %q", v)
		}
		cfg.TrustProxy = trust
	}

	for _, origin := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}

	if (cfg.OIDCIssuerURL == "") != (cfg.OIDCClientID == "") {
		return Config{}, errors.New("OIDC_ISSUER_URL and OIDC_CLIENT_ID must be set together")
	}

	return cfg, nil
}
