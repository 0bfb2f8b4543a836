// Package config loads application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	RecipientsFile    string
	SendPlanFile      string
	AccountsFile      string
	TokensFile        string
	FilesDir          string
	APIBaseURL        string
	HTTPTimeout       time.Duration
	RequestInterval   time.Duration
	DefaultTokenLimit int
	LogLevel          slog.Level
	LogFormat         string
	LogFile           string
	MetricsAddr       string
}

// Load reads configuration from environment variables and returns a validated
// Config. Variables from envFile (normally ".env") are applied first without
// overriding ones already set; a missing envFile is not an error.
//
// All variables are optional: SIGNDISPATCH_RECIPIENTS_FILE (recipients.xlsx),
// SIGNDISPATCH_SENDPLAN_FILE (sendplan.xlsx), SIGNDISPATCH_ACCOUNTS_FILE
// (signnow_accounts.xlsx), SIGNDISPATCH_TOKENS_FILE (tokens.xlsx),
// SIGNDISPATCH_FILES_DIR (files), SIGNDISPATCH_API_BASE_URL
// (https://api.signnow.com), SIGNDISPATCH_HTTP_TIMEOUT (30s),
// SIGNDISPATCH_REQUEST_INTERVAL (0, unpaced), SIGNDISPATCH_DEFAULT_TOKEN_LIMIT
// (10), SIGNDISPATCH_LOG_LEVEL (info), SIGNDISPATCH_LOG_FORMAT (text),
// SIGNDISPATCH_LOG_FILE (none), SIGNDISPATCH_METRICS_ADDR (disabled).
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		RecipientsFile: getEnv("SIGNDISPATCH_RECIPIENTS_FILE", "recipients.xlsx"),
		SendPlanFile:   getEnv("SIGNDISPATCH_SENDPLAN_FILE", "sendplan.xlsx"),
		AccountsFile:   getEnv("SIGNDISPATCH_ACCOUNTS_FILE", "signnow_accounts.xlsx"),
		TokensFile:     getEnv("SIGNDISPATCH_TOKENS_FILE", "tokens.xlsx"),
		FilesDir:       getEnv("SIGNDISPATCH_FILES_DIR", "files"),
		APIBaseURL:     getEnv("SIGNDISPATCH_API_BASE_URL", "https://api.signnow.com"),
		LogFormat:      getEnv("SIGNDISPATCH_LOG_FORMAT", "text"),
		LogFile:        os.Getenv("SIGNDISPATCH_LOG_FILE"),
		MetricsAddr:    os.Getenv("SIGNDISPATCH_METRICS_ADDR"),
	}

	var err error
	if cfg.HTTPTimeout, err = getDuration("SIGNDISPATCH_HTTP_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.RequestInterval, err = getDuration("SIGNDISPATCH_REQUEST_INTERVAL", 0); err != nil {
		return nil, err
	}

	cfg.DefaultTokenLimit = 10
	if v, ok := os.LookupEnv("SIGNDISPATCH_DEFAULT_TOKEN_LIMIT"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("SIGNDISPATCH_DEFAULT_TOKEN_LIMIT must be a non-negative integer, got %q", v)
		}
		cfg.DefaultTokenLimit = n
	}

	if v, ok := os.LookupEnv("SIGNDISPATCH_LOG_LEVEL"); ok && v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("SIGNDISPATCH_LOG_LEVEL has invalid level %q: %w", v, err)
		}
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("SIGNDISPATCH_LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("SIGNDISPATCH_API_BASE_URL must be an absolute URL, got %q", cfg.APIBaseURL)
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid duration %q: %w", key, v, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %q", key, v)
	}
	return d, nil
}
