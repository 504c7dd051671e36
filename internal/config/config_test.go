package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/saadjs/fitfuel/internal/config"
)

func TestLoadMissingFilesGivesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.LoadFiles(filepath.Join(dir, "nope.yaml"), filepath.Join(dir, ".env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Currency != "INR" || cfg.Server.Addr != ":8080" || cfg.Server.TokenTTL != 24*time.Hour {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.PaymentEnabled() {
		t.Fatalf("payment must be disabled without credentials")
	}
}

func TestLoadLayersYAMLDotEnvAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(yamlPath, []byte(`
currency: usd
redis:
  url: redis://localhost:6379/0
  ttl: 2h
payment:
  base_url: https://pay.example.com
  key_id: key_yaml
  key_secret: from-yaml
server:
  addr: ":9000"
`), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("FITFUEL_PAYMENT_KEY_ID=key_dotenv\nFITFUEL_JWT_SECRET=dotenv-secret\nFITFUEL_LISTEN_ADDR=:7000\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv("FITFUEL_LISTEN_ADDR", ":6000")
	t.Setenv("FITFUEL_TOKEN_TTL", "30m")

	cfg, err := config.LoadFiles(yamlPath, envPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Currency != "usd" || cfg.Redis.URL == "" || cfg.Redis.TTL != 2*time.Hour {
		t.Fatalf("yaml layer not applied: %+v", cfg)
	}
	if cfg.Redis.Prefix != "fitfuel:storage:" {
		t.Fatalf("unset yaml keys must keep defaults, got %q", cfg.Redis.Prefix)
	}
	if cfg.Payment.KeyID != "key_dotenv" || cfg.Server.JWTSecret != "dotenv-secret" {
		t.Fatalf(".env layer not applied: %+v", cfg)
	}
	if cfg.Server.Addr != ":6000" || cfg.Server.TokenTTL != 30*time.Minute {
		t.Fatalf("environment must win: %+v", cfg.Server)
	}
	if !cfg.PaymentEnabled() {
		t.Fatalf("expected payment enabled")
	}
	for _, kv := range cfg.Keys() {
		if kv[0] == "payment.key_secret" && kv[1] == "from-yaml" {
			t.Fatalf("secret must be redacted")
		}
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("FITFUEL_API_TIMEOUT", "soon")
	if _, err := config.LoadFiles(filepath.Join(t.TempDir(), "none.yaml"), ""); err == nil {
		t.Fatalf("expected invalid duration error")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	if _, err := config.LoadFiles(path, ""); err == nil {
		t.Fatalf("expected parse error")
	}
}
