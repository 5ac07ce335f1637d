package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port            string   `yaml:"port"`
		ShutdownTimeout string   `yaml:"shutdownTimeout"`
		AllowedOrigins  []string `yaml:"allowedOrigins"`
	} `yaml:"server"`
	Log struct {
		Mode  string `yaml:"mode"`
		Level string `yaml:"level"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL         string `yaml:"ttl"`
		MaxAttempts int    `yaml:"maxAttempts"`
	} `yaml:"quiz"`
	Lock struct {
		TTL  string `yaml:"ttl"`
		Wait string `yaml:"wait"`
	} `yaml:"lock"`
}

// Load reads YAML config from path. A missing file yields defaults so the
// service can run purely in memory. LOG_LEVEL overrides log.level.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if cfg.Log.Mode == "" {
		cfg.Log.Mode = "production"
	}
	return cfg, nil
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
