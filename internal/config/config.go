package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port        string   `yaml:"port"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		DefaultCount int    `yaml:"default_count"`
		MaxCount     int    `yaml:"max_count"`
		CacheTTL     string `yaml:"cache_ttl"`
		ResultTTL    string `yaml:"result_ttl"`
		Tick         string `yaml:"tick"`
	} `yaml:"quiz"`
	Guest struct {
		Limit    int    `yaml:"limit"`
		FailOpen *bool  `yaml:"fail_open"`
		TTL      string `yaml:"ttl"`
	} `yaml:"guest"`
	Auth struct {
		Secret           string `yaml:"secret"`
		EnableLocalLogin bool   `yaml:"enable_local_login"`
	} `yaml:"auth"`
	Upstream struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"upstream"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// GuestFailOpen reports the guest-quota storage failure policy; unset means allow.
func (c Config) GuestFailOpen() bool {
	if c.Guest.FailOpen == nil {
		return true
	}
	return *c.Guest.FailOpen
}

// AuthSecret returns the HMAC secret, falling back to AUTH_HMAC_SECRET and a dev default.
func (c Config) AuthSecret() string {
	if c.Auth.Secret != "" {
		return c.Auth.Secret
	}
	if v := os.Getenv("AUTH_HMAC_SECRET"); v != "" {
		return v
	}
	return "dev-quiz-secret"
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
