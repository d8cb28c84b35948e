package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

/* ============================== Config ================================== */

// Config is everything the server reads from the environment.
type Config struct {
	AppEnv       string
	Port         string
	DatabaseURL  string
	JWTSecret    string
	ClientOrigin string
	UploadDir    string

	LogLevel  string
	LogFormat string // "json" | "console"

	Razorpay RazorpayConfig
	Supabase SupabaseConfig
}

// RazorpayConfig holds payment gateway credentials.
type RazorpayConfig struct {
	Enabled   bool
	KeyID     string
	KeySecret string
	BaseURL   string
}

// SupabaseConfig selects remote evidence storage when URL is set.
type SupabaseConfig struct {
	URL        string
	ServiceKey string
	Bucket     string
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv and fails with every missing required key at once.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		AppEnv:       get("APP_ENV", "development"),
		Port:         get("PORT", "5000"),
		DatabaseURL:  get("DATABASE_URL", ""),
		JWTSecret:    get("JWT_SECRET", ""),
		ClientOrigin: get("CLIENT_ORIGIN", "http://localhost:5173"),
		UploadDir:    get("UPLOAD_DIR", "uploads"),
		LogLevel:     get("LOG_LEVEL", "info"),
		LogFormat:    get("LOG_FORMAT", "json"),
		Razorpay: RazorpayConfig{
			Enabled:   !strings.EqualFold(get("PAYMENT_GATEWAY", "razorpay"), "disabled"),
			KeyID:     get("RAZORPAY_KEY_ID", ""),
			KeySecret: get("RAZORPAY_KEY_SECRET", ""),
			BaseURL:   get("RAZORPAY_BASE_URL", "https://api.razorpay.com"),
		},
		Supabase: SupabaseConfig{
			URL:        get("SUPABASE_URL", ""),
			ServiceKey: get("SUPABASE_SERVICE_KEY", ""),
			Bucket:     get("SUPABASE_BUCKET", "evidence"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that all required settings are present.
func (c *Config) Validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.Razorpay.Enabled {
		if c.Razorpay.KeyID == "" {
			missing = append(missing, "RAZORPAY_KEY_ID")
		}
		if c.Razorpay.KeySecret == "" {
			missing = append(missing, "RAZORPAY_KEY_SECRET")
		}
	}
	if c.Supabase.URL != "" && c.Supabase.ServiceKey == "" {
		missing = append(missing, "SUPABASE_SERVICE_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return errors.New("LOG_FORMAT must be json or console")
	}
	return nil
}

// IsProduction reports whether cookies should be Secure/SameSite=None.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
