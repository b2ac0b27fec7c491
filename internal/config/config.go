// Package config loads run settings from defaults, an optional YAML file
// and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/baxromumarov/pharma-pricer/internal/model"
	"github.com/baxromumarov/pharma-pricer/internal/scraper"
)

const (
	ModeBrowser = "browser"
	ModeStatic  = "static"

	DefaultOutput = "Precios_Farmacias_Unificado_Final.csv"
)

type Config struct {
	Catalog     []model.ProductQuery `yaml:"catalog"`
	Sites       []string             `yaml:"sites"`
	Output      string               `yaml:"output"`
	SnapshotDir string               `yaml:"snapshot_dir"`
	Session     SessionConfig        `yaml:"session"`
	Timeouts    TimeoutConfig        `yaml:"timeouts"`
	Store       StoreConfig          `yaml:"store"`
	HTTPPort    string               `yaml:"http_port"`
}

type SessionConfig struct {
	Mode            string        `yaml:"mode"` // browser | static
	Headless        bool          `yaml:"headless"`
	RemoteURL       string        `yaml:"remote_url"`
	UserAgent       string        `yaml:"user_agent"`
	PageLoadTimeout time.Duration `yaml:"page_load_timeout"`
}

type TimeoutConfig struct {
	PageReady  time.Duration `yaml:"page_ready"`
	Element    time.Duration `yaml:"element"`
	Settle     time.Duration `yaml:"settle"`
	PopupPause time.Duration `yaml:"popup_pause"`
}

func (t TimeoutConfig) Scraper() scraper.Timeouts {
	return scraper.Timeouts{
		PageReady:  t.PageReady,
		Element:    t.Element,
		Settle:     t.Settle,
		PopupPause: t.PopupPause,
	}
}

// StoreConfig is optional; an empty DSN disables the database sink.
type StoreConfig struct {
	Driver string `yaml:"driver"` // postgres | sqlite
	DSN    string `yaml:"dsn"`
}

func Default() *Config {
	t := scraper.DefaultTimeouts()
	return &Config{
		Catalog:     DefaultCatalog(),
		Sites:       scraper.SiteIDs(),
		Output:      DefaultOutput,
		SnapshotDir: ".",
		Session: SessionConfig{
			Mode:            ModeBrowser,
			PageLoadTimeout: 40 * time.Second,
		},
		Timeouts: TimeoutConfig{
			PageReady:  t.PageReady,
			Element:    t.Element,
			Settle:     t.Settle,
			PopupPause: t.PopupPause,
		},
		Store:    StoreConfig{Driver: "postgres"},
		HTTPPort: "8080",
	}
}

// Load builds the configuration. path may be empty.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Output = getEnv("PRICER_OUTPUT", c.Output)
	c.Session.Mode = getEnv("PRICER_SESSION_MODE", c.Session.Mode)
	c.Session.RemoteURL = getEnv("PRICER_REMOTE_URL", c.Session.RemoteURL)
	if v := os.Getenv("PRICER_HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PRICER_HEADLESS: %w", err)
		}
		c.Session.Headless = b
	}
	c.Store.Driver = getEnv("DATABASE_DRIVER", c.Store.Driver)
	c.Store.DSN = getEnv("DATABASE_URL", c.Store.DSN)
	c.HTTPPort = getEnv("PORT", c.HTTPPort)
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if len(c.Catalog) == 0 {
		errs = append(errs, errors.New("catalog is empty"))
	}
	seen := make(map[string]bool, len(c.Catalog))
	for i, q := range c.Catalog {
		switch {
		case strings.TrimSpace(q.EAN) == "":
			errs = append(errs, fmt.Errorf("catalog[%d]: empty ean", i))
		case seen[q.EAN]:
			errs = append(errs, fmt.Errorf("catalog[%d]: duplicate ean %s", i, q.EAN))
		}
		if strings.TrimSpace(q.Keyword) == "" {
			errs = append(errs, fmt.Errorf("catalog[%d]: empty keyword", i))
		}
		seen[q.EAN] = true
	}
	if len(c.Sites) == 0 {
		errs = append(errs, errors.New("no sites configured"))
	}
	if _, unknown := scraper.Lookup(c.Sites); len(unknown) > 0 {
		errs = append(errs, fmt.Errorf("unknown sites: %s", strings.Join(unknown, ", ")))
	}
	if c.Session.Mode != ModeBrowser && c.Session.Mode != ModeStatic {
		errs = append(errs, fmt.Errorf("session mode %q is not %s or %s", c.Session.Mode, ModeBrowser, ModeStatic))
	}
	if c.Output == "" {
		errs = append(errs, errors.New("output path is empty"))
	}
	return errors.Join(errs...)
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
