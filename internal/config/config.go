package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file.
const FileName = "rentbook.yaml"

// Config represents the top-level rentbook.yaml configuration.
type Config struct {
	Agency AgencyConfig `yaml:"agency"`
	Store  StoreConfig  `yaml:"store"`
	Ledger LedgerConfig `yaml:"ledger"`
	Server ServerConfig `yaml:"server"`
	Auth   AuthConfig   `yaml:"auth"`
	Log    LogConfig    `yaml:"log"`
	Git    GitConfig    `yaml:"git"`
}

// AgencyConfig names the agency and the account the CLI works on.
type AgencyConfig struct {
	Name    string `yaml:"name"`
	Account string `yaml:"account"`
}

// StoreConfig selects the storage backend: file, memory, sqlite or postgres.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn,omitempty"`
}

// LedgerConfig controls payment classification.
type LedgerConfig struct {
	GraceDay int    `yaml:"grace_day"`
	Timezone string `yaml:"timezone"` // IANA name, e.g. "Africa/Dakar"
}

// Location loads the configured timezone, falling back to UTC when unset.
func (l LedgerConfig) Location() (*time.Location, error) {
	if l.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", l.Timezone, err)
	}
	return loc, nil
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// AuthConfig holds the token settings. The secret is normally supplied
// through RENTBOOK_JWT_SECRET rather than written to disk.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret,omitempty"`
	TokenTTL  string `yaml:"token_ttl"`
}

// TTL parses TokenTTL, defaulting to 24h.
func (a AuthConfig) TTL() (time.Duration, error) {
	if a.TokenTTL == "" {
		return 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(a.TokenTTL)
	if err != nil {
		return 0, fmt.Errorf("parsing token_ttl: %w", err)
	}
	return d, nil
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a rentbook.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(agencyName string) *Config {
	return &Config{
		Agency: AgencyConfig{
			Name:    agencyName,
			Account: "default",
		},
		Store: StoreConfig{
			Driver: "file",
		},
		Ledger: LedgerConfig{
			GraceDay: 10,
			Timezone: "Africa/Dakar",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Auth: AuthConfig{
			TokenTTL: "24h",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Rentbook",
			AuthorEmail: "rentbook@localhost",
		},
	}
}

// Environment overrides.
const (
	EnvStoreDriver = "RENTBOOK_STORE_DRIVER"
	EnvStoreDSN    = "RENTBOOK_STORE_DSN"
	EnvJWTSecret   = "RENTBOOK_JWT_SECRET"
	EnvAddr        = "RENTBOOK_ADDR"
	EnvLogLevel    = "RENTBOOK_LOG_LEVEL"
)

// LoadEnv loads a .env file into the process environment when one exists.
// Variables already set are not overridden.
func LoadEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with any RENTBOOK_* variables that are set.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&cfg.Store.Driver, EnvStoreDriver)
	set(&cfg.Store.DSN, EnvStoreDSN)
	set(&cfg.Auth.JWTSecret, EnvJWTSecret)
	set(&cfg.Server.Addr, EnvAddr)
	set(&cfg.Log.Level, EnvLogLevel)
}
