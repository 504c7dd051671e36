package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/saadjs/fitfuel/internal/app"
)

const envPrefix = "FITFUEL_"

type Config struct {
	DBPath   string `yaml:"db_path"`
	Profile  string `yaml:"profile"`
	Currency string `yaml:"currency"`

	Redis         RedisConfig   `yaml:"redis"`
	Payment       PaymentConfig `yaml:"payment"`
	Server        ServerConfig  `yaml:"server"`
	API           APIConfig     `yaml:"api"`
	OpenFoodFacts OFFConfig     `yaml:"openfoodfacts"`
}

// RedisConfig switches cart storage from the local database to Redis when
// URL is set.
type RedisConfig struct {
	URL    string        `yaml:"url"`
	Prefix string        `yaml:"prefix"`
	TTL    time.Duration `yaml:"ttl"`
}

type PaymentConfig struct {
	BaseURL   string `yaml:"base_url"`
	KeyID     string `yaml:"key_id"`
	KeySecret string `yaml:"key_secret"`
}

type ServerConfig struct {
	Addr      string        `yaml:"addr"`
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// APIConfig points the sync client at a running fitfuel server.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type OFFConfig struct {
	BaseURL string `yaml:"base_url"`
}

func Default() Config {
	return Config{
		Currency: "INR",
		Redis:    RedisConfig{Prefix: "fitfuel:storage:"},
		Server:   ServerConfig{Addr: ":8080", TokenTTL: 24 * time.Hour},
		API:      APIConfig{BaseURL: "http://localhost:8080", Timeout: 15 * time.Second},
	}
}

// PaymentEnabled reports whether checkout can reach a gateway.
func (c Config) PaymentEnabled() bool {
	return c.Payment.BaseURL != "" && c.Payment.KeyID != "" && c.Payment.KeySecret != ""
}

// Load layers defaults, the YAML file at path, a .env file in the working
// directory, and FITFUEL_* environment variables, later layers winning. An
// empty path means the default config location; a missing file is not an
// error.
func Load(path string) (Config, error) {
	return LoadFiles(path, ".env")
}

func LoadFiles(path, envFile string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		p, err := app.DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}
	if err := mergeYAML(&cfg, path); err != nil {
		return Config{}, err
	}

	env := map[string]string{}
	if envFile != "" {
		dotenv, err := godotenv.Read(envFile)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("read %s: %w", envFile, err)
		}
		for k, v := range dotenv {
			env[k] = v
		}
	}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(k, envPrefix) {
			env[k] = v
		}
	}
	if err := applyEnv(&cfg, env); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func mergeYAML(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config, env map[string]string) error {
	strs := map[string]*string{
		"DB":                 &cfg.DBPath,
		"PROFILE":            &cfg.Profile,
		"CURRENCY":           &cfg.Currency,
		"REDIS_URL":          &cfg.Redis.URL,
		"REDIS_PREFIX":       &cfg.Redis.Prefix,
		"PAYMENT_BASE_URL":   &cfg.Payment.BaseURL,
		"PAYMENT_KEY_ID":     &cfg.Payment.KeyID,
		"PAYMENT_KEY_SECRET": &cfg.Payment.KeySecret,
		"LISTEN_ADDR":        &cfg.Server.Addr,
		"JWT_SECRET":         &cfg.Server.JWTSecret,
		"API_URL":            &cfg.API.BaseURL,
		"OFF_BASE_URL":       &cfg.OpenFoodFacts.BaseURL,
	}
	for name, dst := range strs {
		if v, ok := env[envPrefix+name]; ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	durations := map[string]*time.Duration{
		"REDIS_TTL":   &cfg.Redis.TTL,
		"TOKEN_TTL":   &cfg.Server.TokenTTL,
		"API_TIMEOUT": &cfg.API.Timeout,
	}
	for name, dst := range durations {
		v, ok := env[envPrefix+name]
		if !ok || strings.TrimSpace(v) == "" {
			continue
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s%s: %w", envPrefix, name, err)
		}
		*dst = d
	}
	return nil
}

// Keys lists the settings `fitfuel config` can show, in display order.
func (c Config) Keys() [][2]string {
	return [][2]string{
		{"db_path", c.DBPath},
		{"profile", c.Profile},
		{"currency", c.Currency},
		{"redis.url", c.Redis.URL},
		{"redis.prefix", c.Redis.Prefix},
		{"redis.ttl", c.Redis.TTL.String()},
		{"payment.base_url", c.Payment.BaseURL},
		{"payment.key_id", c.Payment.KeyID},
		{"payment.key_secret", redact(c.Payment.KeySecret)},
		{"server.addr", c.Server.Addr},
		{"server.jwt_secret", redact(c.Server.JWTSecret)},
		{"server.token_ttl", c.Server.TokenTTL.String()},
		{"api.base_url", c.API.BaseURL},
		{"api.timeout", c.API.Timeout.String()},
		{"openfoodfacts.base_url", c.OpenFoodFacts.BaseURL},
	}
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}
