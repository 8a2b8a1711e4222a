package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultDiscoveryWindow = 48 * time.Hour
	defaultRefreshWindow   = 7 * 24 * time.Hour

	// Regulations.gov allows roughly 1000 requests per hour.
	defaultRequestInterval = 3600 * time.Millisecond
)

// Config carries the environment-provided settings for the sync jobs
type Config struct {
	NotionAPIKey         string
	NotionRuleDatabase   string
	RegulationsGovAPIKey string

	// DatabaseURL enables the Postgres audit trail when set.
	DatabaseURL string

	// RefreshDocketMetadata forces keyword/RIN recomputation on every
	// refresh pass instead of only when the docket set changes.
	RefreshDocketMetadata bool

	DiscoveryWindow        time.Duration
	RefreshWindow          time.Duration
	RegsGovRequestInterval time.Duration
}

// LoadDotEnv loads a .env file when present. Missing files are fine; real
// deployments provide the environment directly.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// Load reads the configuration from the environment. A missing credential
// is a fatal startup error, never a partial run.
func Load() (*Config, error) {
	LoadDotEnv()

	cfg := &Config{
		NotionAPIKey:           os.Getenv("NOTION_API_KEY"),
		NotionRuleDatabase:     os.Getenv("NOTION_RULE_DATABASE"),
		RegulationsGovAPIKey:   os.Getenv("REGULATIONS_GOV_API_KEY"),
		DatabaseURL:            os.Getenv("DATABASE_URL"),
		DiscoveryWindow:        defaultDiscoveryWindow,
		RefreshWindow:          defaultRefreshWindow,
		RegsGovRequestInterval: defaultRequestInterval,
	}

	if cfg.NotionAPIKey == "" {
		return nil, fmt.Errorf("NOTION_API_KEY environment variable is required")
	}
	if cfg.NotionRuleDatabase == "" {
		return nil, fmt.Errorf("NOTION_RULE_DATABASE environment variable is required")
	}
	if cfg.RegulationsGovAPIKey == "" {
		return nil, fmt.Errorf("REGULATIONS_GOV_API_KEY environment variable is required")
	}

	if raw := os.Getenv("REFRESH_DOCKET_METADATA"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid REFRESH_DOCKET_METADATA %q: %w", raw, err)
		}
		cfg.RefreshDocketMetadata = value
	}

	if raw := os.Getenv("DISCOVERY_WINDOW_DAYS"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			return nil, fmt.Errorf("invalid DISCOVERY_WINDOW_DAYS %q", raw)
		}
		cfg.DiscoveryWindow = time.Duration(days) * 24 * time.Hour
	}

	if raw := os.Getenv("REFRESH_WINDOW_DAYS"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			return nil, fmt.Errorf("invalid REFRESH_WINDOW_DAYS %q", raw)
		}
		cfg.RefreshWindow = time.Duration(days) * 24 * time.Hour
	}

	if raw := os.Getenv("REGS_GOV_REQUEST_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil || interval < 0 {
			return nil, fmt.Errorf("invalid REGS_GOV_REQUEST_INTERVAL %q", raw)
		}
		cfg.RegsGovRequestInterval = interval
	}

	return cfg, nil
}
