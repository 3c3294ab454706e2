// Package config loads the Planora TOML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Duration is a time.Duration that unmarshals from TOML strings like
// "24h" or "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Config struct {
	Server   Server   `toml:"server"`
	Database Database `toml:"database"`
	Auth     Auth     `toml:"auth"`
	Uploads  Uploads  `toml:"uploads"`
}

type Server struct {
	Port            int    `toml:"port"`
	CORSAllowOrigin string `toml:"cors_allow_origin"`
}

type Database struct {
	Path string `toml:"path"`
}

type Auth struct {
	// Secret is never read from the file; it comes from the
	// PLANORA_JWT_SECRET environment variable.
	Secret   string   `toml:"-"`
	TokenTTL Duration `toml:"token_ttl"`
	Issuer   string   `toml:"issuer"`
	Audience string   `toml:"audience"`
}

type Uploads struct {
	Dir          string `toml:"dir"`
	MaxSizeBytes int64  `toml:"max_size_bytes"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: Server{
			Port:            8080,
			CORSAllowOrigin: "*",
		},
		Database: Database{
			Path: "planora.db",
		},
		Auth: Auth{
			Secret:   "development-insecure-secret-change-me",
			TokenTTL: Duration{24 * time.Hour},
			Issuer:   "planora-api",
			Audience: "planora-clients",
		},
		Uploads: Uploads{
			Dir:          "uploads",
			MaxSizeBytes: 10 << 20,
		},
	}
}

// Load reads the TOML file at path, layered over the defaults. A missing
// file is not an error; an unreadable or invalid one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("stat config %s: %w", path, err)
		}
	}

	if v := os.Getenv("PLANORA_JWT_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Auth.TokenTTL.Duration <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	if c.Uploads.MaxSizeBytes <= 0 {
		return fmt.Errorf("uploads.max_size_bytes must be positive")
	}
	return nil
}
