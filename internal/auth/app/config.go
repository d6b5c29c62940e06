package app

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/showreelhq/showreel/internal/auth/service"
	"github.com/showreelhq/showreel/pkg/jwtx"
)

// ErrMissingSecret is returned when a token secret is absent from the
// environment. The service refuses to start rather than sign with an
// empty key.
var ErrMissingSecret = errors.New("missing token secret")

type Config struct {
	Issuer        string // Optional: issuer claim for tokens (default: showreel-auth)
	AccessSecret  string // Required: HMAC secret for access tokens
	RefreshSecret string // Required: HMAC secret for refresh tokens
	AccessExpiry  string // Optional: access token lifetime spec, e.g. "15m" (default: 15m)
	RefreshExpiry string // Optional: refresh token lifetime spec, e.g. "7d" (default: 7d)

	RegistrationPolicy   service.RegistrationPolicy // Optional: issue-tokens or verify-email (default: verify-email)
	RequireVerifiedEmail bool                       // Optional: gate login on a verified address (default: true)
	OTPExpiry            time.Duration              // Optional: verification/reset code lifetime (default: 2m)

	DatabaseFile string // Optional: path to SQLite database file (default: ./auth.db)

	SMTPHost     string // Optional: SMTP relay host; empty switches to the log notifier
	SMTPPort     int    // Optional: SMTP relay port (default: 587)
	SMTPUsername string // Optional: SMTP auth username
	SMTPPassword string // Optional: SMTP auth password
	SMTPFrom     string // Optional: From address for outgoing mail

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		Issuer:        getEnvOrDefault("AUTH_ISSUER", "showreel-auth"),
		AccessSecret:  os.Getenv("AUTH_ACCESS_SECRET"),
		RefreshSecret: os.Getenv("AUTH_REFRESH_SECRET"),
		AccessExpiry:  getEnvOrDefault("AUTH_ACCESS_EXPIRES", jwtx.DefaultAccessExpiry),
		RefreshExpiry: getEnvOrDefault("AUTH_REFRESH_EXPIRES", jwtx.DefaultRefreshExpiry),

		RegistrationPolicy: service.RegistrationPolicy(
			getEnvOrDefault("AUTH_REGISTRATION_POLICY", string(service.RegisterVerifyEmail)),
		),
		RequireVerifiedEmail: getEnvBoolOrDefault("AUTH_REQUIRE_EMAIL_VERIFICATION", true),
		OTPExpiry:            getEnvDurationOrDefault("AUTH_OTP_EXPIRY", service.DefaultOTPTTL),

		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:     os.Getenv("SMTP_FROM"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// Validate rejects configurations the service cannot run with.
func (c Config) Validate() error {
	if c.AccessSecret == "" || c.RefreshSecret == "" {
		return ErrMissingSecret
	}
	switch c.RegistrationPolicy {
	case service.RegisterIssueTokens, service.RegisterVerifyEmail:
	default:
		return errors.New("unknown registration policy: " + string(c.RegistrationPolicy))
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
