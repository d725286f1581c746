package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// BaseURLEnv overrides upstream.baseUrl from the YAML file.
const BaseURLEnv = "EXAMIFYR_API_BASE_URL"

type ServerConfig struct {
	Port string `yaml:"port" validate:"omitempty,numeric"`
}

// UpstreamConfig points at the quiz generation service. BaseURL may be empty;
// that is reported per request, not at startup.
type UpstreamConfig struct {
	BaseURL string `yaml:"baseUrl" validate:"omitempty,url"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" validate:"omitempty,hostname_port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
	TTL      string `yaml:"ttl"`
}

// PlayConfig controls the websocket play sessions.
type PlayConfig struct {
	QuizTTL string `yaml:"quizTtl"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json text"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Upstream UpstreamConfig `yaml:"upstream"`
	Redis    RedisConfig    `yaml:"redis"`
	Play     PlayConfig     `yaml:"play"`
	Log      LogConfig      `yaml:"log"`
}

// Load reads YAML config from path and applies environment overrides.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if v := os.Getenv(BaseURLEnv); v != "" {
		cfg.Upstream.BaseURL = v
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks field formats. It does not require the upstream base URL.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	for name, raw := range map[string]string{"redis.ttl": c.Redis.TTL, "play.quizTtl": c.Play.QuizTTL} {
		if raw == "" {
			continue
		}
		if _, err := time.ParseDuration(raw); err != nil {
			return fmt.Errorf("invalid config: %s: %w", name, err)
		}
	}
	return nil
}

// BackendBaseURL returns the upstream base URL with trailing slashes removed.
func (c Config) BackendBaseURL() (string, error) {
	return NormalizeBaseURL(c.Upstream.BaseURL)
}

// NormalizeBaseURL strips trailing slashes so callers can append a path
// starting with "/". An empty value is a ConfigurationError.
func NormalizeBaseURL(raw string) (string, error) {
	if raw == "" {
		return "", &ConfigurationError{Key: BaseURLEnv}
	}
	return strings.TrimRight(raw, "/"), nil
}

// ConfigurationError reports a required configuration value that is missing.
type ConfigurationError struct {
	Key string
}

func (e *ConfigurationError) Error() string {
	return "missing " + e.Key
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
