package app

import (
	"io/fs"
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"

	"github.com/xenking/tablebill/internal/domain/bill"
)

// Menu sources.
const (
	MenuSourceBuiltin  = "builtin"
	MenuSourceFile     = "file"
	MenuSourcePostgres = "postgres"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (TABLEBILL_ prefix), flags, a .env file, or YAML
// config files.
type Config struct {
	Addr          string `default:"0.0.0.0:8080" usage:"API server listen address"`
	SessionSecret string `usage:"HMAC secret for session tokens (TABLEBILL_SESSION_SECRET)" flag:"session-secret"`
	Menu          MenuConfig
	Bill          BillConfig
	Receipt       ReceiptConfig
	Session       SessionConfig
	RateLimit     RateLimitConfig
	CORS          CORSConfig
	Graceful      GracefulConfig
}

// MenuConfig selects where the catalog is loaded from at startup.
type MenuConfig struct {
	Source      string `default:"builtin" usage:"Menu source: builtin, file or postgres"`
	File        string `usage:"YAML menu file, optionally .gz (source=file)" flag:"menu-file"`
	DatabaseURL string `usage:"PostgreSQL connection URL (source=postgres, or DATABASE_URL)" flag:"database-url"`
}

// BillConfig holds the rates new sessions start with.
type BillConfig struct {
	TaxRatePercent int `default:"10" usage:"Default tax rate in percent (0-20)"`
	TipRatePercent int `default:"5"  usage:"Default tip rate in percent (0-20)"`
}

// ReceiptConfig controls receipt layout.
type ReceiptConfig struct {
	Currency string `default:""   usage:"Currency prefix for receipt amounts"`
	Width    int    `default:"40" usage:"Receipt banner width"`
}

// SessionConfig controls session lifetime.
type SessionConfig struct {
	TTL             time.Duration `default:"4h"  usage:"Idle time before a session is evicted"`
	JanitorInterval time.Duration `default:"1m"  usage:"How often idle sessions are evicted" flag:"janitor-interval"`
	TokenTTL        time.Duration `default:"24h" usage:"Session token lifetime" flag:"token-ttl"`
}

// RateLimitConfig controls the per-client token bucket.
type RateLimitConfig struct {
	RPS   float64 `default:"10" usage:"Sustained requests per second per client"`
	Burst int     `default:"20" usage:"Burst size per client"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from .env, environment variables, flags
// and YAML config files, then applies platform defaults.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}
	return loadConfig(aconfig.Config{
		EnvPrefix: "TABLEBILL",
		Files:     []string{"config.yaml", "/etc/tablebill/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
}

func loadConfig(ac aconfig.Config) (*Config, error) {
	var cfg Config
	if err := aconfig.LoaderFor(&cfg, ac).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.SessionSecret == "" {
		return errors.New("session secret is required: set TABLEBILL_SESSION_SECRET")
	}
	switch c.Menu.Source {
	case MenuSourceBuiltin:
	case MenuSourceFile:
		if c.Menu.File == "" {
			return errors.New("menu file is required for source=file: set TABLEBILL_MENU_FILE")
		}
	case MenuSourcePostgres:
		if c.Menu.DatabaseURL == "" {
			return errors.New("database URL is required for source=postgres: set TABLEBILL_MENU_DATABASE_URL or DATABASE_URL")
		}
	default:
		return errors.Errorf("unknown menu source %q", c.Menu.Source)
	}
	if err := c.BillSettings().Validate(); err != nil {
		return errors.Wrap(err, "bill defaults")
	}
	return nil
}

// BillSettings returns the default settings for new sessions.
func (c *Config) BillSettings() bill.Settings {
	return bill.Settings{
		TaxRatePercent: c.Bill.TaxRatePercent,
		TipRatePercent: c.Bill.TipRatePercent,
	}
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) such as DATABASE_URL and PORT to the TABLEBILL_ configuration.
func (c *Config) applyPlatformDefaults() {
	if c.Menu.DatabaseURL == "" {
		c.Menu.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}
