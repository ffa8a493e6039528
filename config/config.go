// Package config reads settings from the environment and an optional .env
// file.
package config

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"progressboard/model"
)

const (
	SourceWebhook = "webhook"
	SourceSheets  = "sheets"
)

type Config struct {
	Port    int    `env:"PORT" envDefault:"3000"`
	Host    string `env:"HOST" envDefault:"0.0.0.0"`
	DataDir string `env:"DATA_DIR" envDefault:"./data"`
	GinMode string `env:"GIN_MODE" envDefault:"release"`

	WebhookURL            string        `env:"WEBHOOK_URL" envDefault:"https://n8n-hungyen.cahy.io.vn/webhook/check-connection"`
	WebhookTimeout        time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"30s"`
	WebhookConnectTimeout time.Duration `env:"WEBHOOK_CONNECT_TIMEOUT" envDefault:"10s"`
	DefaultSheetURL       string        `env:"DEFAULT_SHEET_URL"`
	DefaultSheetName      string        `env:"DEFAULT_SHEET_NAME"`
	Source                string        `env:"SOURCE" envDefault:"webhook"`
	GoogleCredentials     string        `env:"GOOGLE_APPLICATION_CREDENTIALS"`

	FirestoreMirror     bool   `env:"FIRESTORE_MIRROR" envDefault:"false"`
	FirebaseCredentials string `env:"FIREBASE_CREDENTIALS"`

	Timezone  string `env:"TIMEZONE" envDefault:"Asia/Ho_Chi_Minh"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	RelayURL     string        `env:"RELAY_URL" envDefault:"http://localhost:3000"`
	RelayTimeout time.Duration `env:"RELAY_TIMEOUT" envDefault:"30s"`
	CacheDir     string        `env:"CACHE_DIR"`
}

// Load reads the given .env files (default ".env"), then the process
// environment. Missing .env files are ignored; variables already set in the
// environment win.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "load %s", f)
		}
	}
	return parse(env.Options{})
}

// FromMap builds a Config from the given variables only.
func FromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) fillDefaults() {
	if c.DefaultSheetURL == "" {
		c.DefaultSheetURL = model.DefaultSheetURL
	}
	if c.DefaultSheetName == "" {
		c.DefaultSheetName = model.DefaultSheetName
	}
	if c.CacheDir == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			c.CacheDir = filepath.Join(dir, "progressboard")
		} else {
			c.CacheDir = filepath.Join(os.TempDir(), "progressboard")
		}
	}
	c.Source = strings.ToLower(strings.TrimSpace(c.Source))
}

func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.Errorf("PORT %d out of range", c.Port)
	}
	switch c.Source {
	case SourceWebhook:
		if c.WebhookURL == "" {
			return errors.New("WEBHOOK_URL is required for the webhook source")
		}
	case SourceSheets:
		if c.GoogleCredentials == "" {
			return errors.New("GOOGLE_APPLICATION_CREDENTIALS is required for the sheets source")
		}
	default:
		return errors.Errorf("SOURCE must be %q or %q, got %q", SourceWebhook, SourceSheets, c.Source)
	}
	if c.FirestoreMirror && c.FirebaseCredentials == "" {
		return errors.New("FIREBASE_CREDENTIALS is required when FIRESTORE_MIRROR is set")
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		return errors.Errorf("GIN_MODE must be debug, release or test, got %q", c.GinMode)
	}
	if c.WebhookTimeout <= 0 || c.RelayTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	return nil
}

// Addr is the relay listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// SheetConfig is the fixed source used by the refresh endpoint.
func (c *Config) SheetConfig() model.WebhookConfig {
	return model.WebhookConfig{SheetURL: c.DefaultSheetURL, SheetName: c.DefaultSheetName}
}

// Location resolves TIMEZONE, falling back to UTC+7 when the zone database
// is unavailable.
func (c *Config) Location() *time.Location {
	if loc, err := time.LoadLocation(c.Timezone); err == nil {
		return loc
	}
	return time.FixedZone("ICT", 7*60*60)
}
