// Package config loads the classbot configuration: the core bot settings plus
// database, health endpoint, error reporting and conversation options.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "github.com/m3rciful/classbot/core/config"
	"github.com/m3rciful/classbot/core/database"
	"github.com/m3rciful/classbot/internal/chat"
	"github.com/m3rciful/classbot/internal/locale"
)

const defaultTimezone = "Asia/Taipei"

// HealthConfig configures the liveness endpoint. An empty Listen disables it.
type HealthConfig struct {
	Listen string `yaml:"listen" envconfig:"HEALTH_LISTEN"`
}

// SentryConfig enables error reporting when DSN is set.
type SentryConfig struct {
	DSN         string  `yaml:"dsn" envconfig:"SENTRY_DSN"`
	Environment string  `yaml:"environment" envconfig:"SENTRY_ENVIRONMENT"`
	SampleRate  float64 `yaml:"sample_rate" envconfig:"SENTRY_SAMPLE_RATE"`
}

// FeaturesConfig switches conversation behaviours.
type FeaturesConfig struct {
	// Onboarding defaults to true when omitted.
	Onboarding    *bool  `yaml:"onboarding" envconfig:"BOT_ONBOARDING"`
	RosterBinding bool   `yaml:"roster_binding" envconfig:"BOT_ROSTER_BINDING"`
	CheckIn       bool   `yaml:"check_in" envconfig:"BOT_CHECK_IN"`
	ClaimPolicy   string `yaml:"claim_policy" envconfig:"BOT_CLAIM_POLICY"`
}

// BotConfig holds the conversation settings.
type BotConfig struct {
	Locale string `yaml:"locale" envconfig:"BOT_LOCALE"`
	// Timezone decides which calendar day counts as today for course listings.
	Timezone    string         `yaml:"timezone" envconfig:"BOT_TIMEZONE"`
	CalendarURL string         `yaml:"calendar_url" envconfig:"BOT_CALENDAR_URL"`
	SeedFile    string         `yaml:"seed_file" envconfig:"BOT_SEED_FILE"`
	Features    FeaturesConfig `yaml:"features"`

	catalog  *locale.Catalog
	location *time.Location
	features chat.Features
}

// Catalog returns the message catalog resolved by Load.
func (b *BotConfig) Catalog() *locale.Catalog { return b.catalog }

// Location returns the timezone resolved by Load.
func (b *BotConfig) Location() *time.Location { return b.location }

// ChatFeatures returns the machine feature switches resolved by Load.
func (b *BotConfig) ChatFeatures() chat.Features { return b.features }

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database database.Config `yaml:"database"`
	Health   HealthConfig    `yaml:"health"`
	Sentry   SentryConfig    `yaml:"sentry"`
	Bot      BotConfig       `yaml:"bot"`
}

// CoreConfig exposes the embedded core settings.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// Load reads .env (if present), the YAML file at path and the environment, in
// that order of increasing precedence, then validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates every section and resolves the derived bot settings.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if err := c.Database.Normalize(); err != nil {
		return err
	}
	c.Health.Listen = strings.TrimSpace(c.Health.Listen)
	if c.Sentry.SampleRate < 0 || c.Sentry.SampleRate > 1 {
		return fmt.Errorf("sentry.sample_rate must be within 0..1")
	}
	if c.Sentry.Environment == "" {
		c.Sentry.Environment = c.Logging.Profile
	}
	return c.Bot.normalize()
}

func (b *BotConfig) normalize() error {
	if strings.TrimSpace(b.Locale) == "" {
		b.Locale = locale.Default
	}
	cat, err := locale.Lookup(b.Locale)
	if err != nil {
		return fmt.Errorf("bot.locale: %w", err)
	}
	b.catalog = cat

	if strings.TrimSpace(b.Timezone) == "" {
		b.Timezone = defaultTimezone
	}
	loc, err := time.LoadLocation(strings.TrimSpace(b.Timezone))
	if err != nil {
		return fmt.Errorf("bot.timezone: %w", err)
	}
	b.location = loc

	policy, err := chat.ParseClaimPolicy(b.Features.ClaimPolicy)
	if err != nil {
		return fmt.Errorf("bot.features.claim_policy: %w", err)
	}
	onboarding := b.Features.Onboarding == nil || *b.Features.Onboarding
	if !onboarding && !b.Features.RosterBinding {
		return fmt.Errorf("bot.features: enable onboarding or roster_binding, users could never bind otherwise")
	}
	b.features = chat.Features{
		Onboarding:    onboarding,
		RosterBinding: b.Features.RosterBinding,
		CheckIn:       b.Features.CheckIn,
		ClaimPolicy:   policy,
	}
	b.CalendarURL = strings.TrimSpace(b.CalendarURL)
	b.SeedFile = strings.TrimSpace(b.SeedFile)
	return nil
}
