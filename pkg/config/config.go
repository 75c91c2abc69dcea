// Package config loads service configuration from defaults, an optional
// YAML or TOML file, and MANGASHELF_* environment variables, in that order.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Catalog  CatalogConfig  `yaml:"catalog" toml:"catalog"`
	Sync     SyncConfig     `yaml:"sync" toml:"sync"`
	Auth     AuthConfig     `yaml:"auth" toml:"auth"`
	Log      LogConfig      `yaml:"log" toml:"log"`
}

type ServerConfig struct {
	Addr            string   `yaml:"addr" toml:"addr"`
	TrustedProxies  []string `yaml:"trusted_proxies" toml:"trusted_proxies"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path        string   `yaml:"path" toml:"path"`
	BusyTimeout Duration `yaml:"busy_timeout" toml:"busy_timeout"`
}

type CatalogConfig struct {
	BaseURL string `yaml:"base_url" toml:"base_url"`
	// Timeout bounds each catalog call. Zero leaves the transport defaults alone.
	Timeout Duration `yaml:"timeout" toml:"timeout"`
}

type SyncConfig struct {
	// TCPAddr is the line-oriented event feed; empty disables it.
	TCPAddr string `yaml:"tcp_addr" toml:"tcp_addr"`
}

type AuthConfig struct {
	// Secret enables bearer-token checks on mutating routes when non-empty.
	Secret   string   `yaml:"secret" toml:"secret"`
	Issuer   string   `yaml:"issuer" toml:"issuer"`
	TokenTTL Duration `yaml:"token_ttl" toml:"token_ttl"`
}

type LogConfig struct {
	Level      string `yaml:"level" toml:"level"`
	Format     string `yaml:"format" toml:"format"`
	File       string `yaml:"file" toml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" toml:"max_backups"`
}

// Duration decodes "15s"-style strings from YAML and TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(b), err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			TrustedProxies:  []string{"127.0.0.1"},
			ShutdownTimeout: Duration{10 * time.Second},
		},
		Database: DatabaseConfig{
			Path:        filepath.Join(home, ".mangashelf", "mangas.db"),
			BusyTimeout: Duration{5 * time.Second},
		},
		Catalog: CatalogConfig{
			BaseURL: "https://api.jikan.moe/v4/manga",
		},
		Sync: SyncConfig{
			TCPAddr: ":7070",
		},
		Auth: AuthConfig{
			Issuer:   "mangashelf",
			TokenTTL: Duration{24 * time.Hour},
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load builds the effective configuration. path may be empty.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, c)
	case ".toml":
		err = toml.Unmarshal(b, c)
	default:
		return fmt.Errorf("config file %s: unsupported extension (want .yaml, .yml or .toml)", path)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		if err := dst.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		return nil
	}

	str("MANGASHELF_ADDR", &c.Server.Addr)
	str("MANGASHELF_DB_PATH", &c.Database.Path)
	str("MANGASHELF_CATALOG_URL", &c.Catalog.BaseURL)
	str("MANGASHELF_SYNC_ADDR", &c.Sync.TCPAddr)
	str("MANGASHELF_JWT_SECRET", &c.Auth.Secret)
	str("MANGASHELF_JWT_ISSUER", &c.Auth.Issuer)
	str("MANGASHELF_LOG_LEVEL", &c.Log.Level)
	str("MANGASHELF_LOG_FORMAT", &c.Log.Format)
	str("MANGASHELF_LOG_FILE", &c.Log.File)

	if err := dur("MANGASHELF_CATALOG_TIMEOUT", &c.Catalog.Timeout); err != nil {
		return err
	}
	if err := dur("MANGASHELF_JWT_TTL", &c.Auth.TokenTTL); err != nil {
		return err
	}
	if v, ok := lookup("MANGASHELF_JWT_TTL_HOURS"); ok && v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MANGASHELF_JWT_TTL_HOURS: %w", err)
		}
		c.Auth.TokenTTL = Duration{time.Duration(hours) * time.Hour}
	}
	return nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.ShutdownTimeout.Duration <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be > 0")
	}
	if strings.TrimSpace(c.Database.Path) == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Database.BusyTimeout.Duration < 0 {
		return fmt.Errorf("database.busy_timeout cannot be negative")
	}

	u, err := url.Parse(c.Catalog.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid catalog.base_url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("catalog.base_url must be an absolute http(s) URL")
	}
	if c.Catalog.Timeout.Duration < 0 {
		return fmt.Errorf("catalog.timeout cannot be negative")
	}

	if c.Auth.Secret != "" && c.Auth.TokenTTL.Duration <= 0 {
		return fmt.Errorf("auth.token_ttl must be > 0 when auth.secret is set")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json")
	}
	return nil
}

// AuthEnabled reports whether mutating routes require a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.Auth.Secret != ""
}
