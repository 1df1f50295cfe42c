package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Auth struct {
		Secret   string `yaml:"secret"`
		TokenTTL string `yaml:"token_ttl"`
		Mode     string `yaml:"mode"`
	} `yaml:"auth"`
	Store struct {
		Driver string `yaml:"driver"`
	} `yaml:"store"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Hint struct {
		Endpoint string `yaml:"endpoint"`
		APIKey   string `yaml:"api_key"`
		Model    string `yaml:"model"`
		Timeout  string `yaml:"timeout"`
		Fallback string `yaml:"fallback"`
	} `yaml:"hint"`
	Quests struct {
		File string `yaml:"file"`
	} `yaml:"quests"`
}

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Load reads YAML config from path and applies environment overrides.
// A missing file is not an error; defaults and the environment still apply.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// Validate checks settings required to serve traffic.
func (c Config) Validate() error {
	if c.Auth.Secret == "" {
		return errors.New("auth.secret (or JWT_SECRET) is required")
	}
	switch c.Auth.Mode {
	case "register", "access_code":
	default:
		return fmt.Errorf("unknown auth.mode %q", c.Auth.Mode)
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverRedis:
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required for the redis store")
		}
	case DriverPostgres:
		if c.Postgres.URL == "" {
			return errors.New("postgres.url is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	return nil
}

func (c *Config) applyEnv() {
	setFromEnv(&c.Auth.Secret, "JWT_SECRET")
	setFromEnv(&c.Hint.APIKey, "HINT_API_KEY")
	setFromEnv(&c.Postgres.URL, "DATABASE_URL")
	setFromEnv(&c.Redis.Addr, "REDIS_ADDR")
}

func (c *Config) applyDefaults() {
	if c.Auth.Mode == "" {
		c.Auth.Mode = "register"
	}
	if c.Store.Driver == "" {
		c.Store.Driver = DriverMemory
	}
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
