package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Env != "local" {
		t.Errorf("env = %q, want local", cfg.Env)
	}
	if cfg.Server.Port != 5000 {
		t.Errorf("port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Checks.MaxValue != 1_000_000_000 {
		t.Errorf("max value = %d, want 1e9", cfg.Checks.MaxValue)
	}
	if cfg.Checks.Timeout != 5*time.Second {
		t.Errorf("timeout = %s, want 5s", cfg.Checks.Timeout)
	}
	if cfg.Checks.QueueTimeout != 250*time.Millisecond {
		t.Errorf("queue timeout = %s, want 250ms", cfg.Checks.QueueTimeout)
	}
	if cfg.Checks.MaxConcurrent < 3 {
		t.Errorf("max concurrent = %d, want at least 3", cfg.Checks.MaxConcurrent)
	}
	if cfg.Kafka.Enabled {
		t.Error("kafka enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CHECKS_TIMEOUT", "250ms")
	t.Setenv("MAX_INPUT_VALUE", "1000")
	t.Setenv("PORT", "8081")
	t.Setenv("SERVER_DEBUG", "true")

	cfg, err := load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Checks.Timeout != 250*time.Millisecond {
		t.Errorf("timeout = %s, want 250ms", cfg.Checks.Timeout)
	}
	if cfg.Checks.MaxValue != 1000 {
		t.Errorf("max value = %d, want 1000", cfg.Checks.MaxValue)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("port = %d, want 8081", cfg.Server.Port)
	}
	if !cfg.Server.Debug {
		t.Error("debug not enabled from env")
	}

	policy := cfg.Policy()
	if policy.MaxValue != 1000 || policy.Timeout != 250*time.Millisecond {
		t.Errorf("policy = %+v", policy)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
env: prod
server:
  port: 9090
checks:
  max_value: 5000
  timeout: 2s
  queue_timeout: 500ms
kafka:
  enabled: true
  brokers: ["kafka-1:9092", "kafka-2:9092"]
  topics:
    requests: in
    results: out
log:
  level: warn
`
	if err := os.WriteFile(filepath.Join(dir, "local.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Env != "prod" || cfg.Server.Port != 9090 || cfg.Log.Level != "warn" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Checks.MaxValue != 5000 || cfg.Checks.Timeout != 2*time.Second || cfg.Checks.QueueTimeout != 500*time.Millisecond {
		t.Errorf("unexpected checks config %+v", cfg.Checks)
	}
	if !cfg.Kafka.Enabled || len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Topics.Requests != "in" || cfg.Kafka.Topics.Results != "out" {
		t.Errorf("unexpected kafka config %+v", cfg.Kafka)
	}
	if cfg.Addr() != ":9090" {
		t.Errorf("addr = %q", cfg.Addr())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "zero max value", mutate: func(c *Config) { c.Checks.MaxValue = 0 }, wantErr: "MaxValue"},
		{name: "negative timeout", mutate: func(c *Config) { c.Checks.Timeout = -time.Second }, wantErr: "Timeout"},
		{name: "long queue wait", mutate: func(c *Config) { c.Checks.QueueTimeout = 5 * time.Second }, wantErr: "QueueTimeout"},
		{name: "port out of range", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "Port"},
		{name: "unknown env", mutate: func(c *Config) { c.Env = "staging" }, wantErr: "Env"},
		{name: "unknown log level", mutate: func(c *Config) { c.Log.Level = "trace" }, wantErr: "Level"},
		{name: "kafka without brokers", mutate: func(c *Config) {
			c.Kafka.Enabled = true
			c.Kafka.Brokers = nil
		}, wantErr: "Brokers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := load(t.TempDir())
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			tt.mutate(cfg)

			err = cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestLoadLegacyEnv(t *testing.T) {
	t.Setenv("TIMEOUT_SECONDS", "3")
	t.Setenv("FLASK_DEBUG", "true")
	t.Setenv("LOG_LEVEL", "WARN")

	cfg, err := load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Checks.Timeout != 3*time.Second {
		t.Errorf("timeout = %s, want 3s", cfg.Checks.Timeout)
	}
	if !cfg.Server.Debug {
		t.Error("FLASK_DEBUG=true did not enable debug")
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("log level = %q, want warn", cfg.Log.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
}

func TestLoadTimeoutPrecedence(t *testing.T) {
	t.Setenv("TIMEOUT_SECONDS", "3")
	t.Setenv("CHECKS_TIMEOUT", "750ms")

	cfg, err := load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Checks.Timeout != 750*time.Millisecond {
		t.Errorf("timeout = %s, want CHECKS_TIMEOUT to win", cfg.Checks.Timeout)
	}
}

func TestLoadInvalidTimeoutSeconds(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-2"} {
		t.Setenv("TIMEOUT_SECONDS", raw)
		if _, err := load(t.TempDir()); err == nil || !strings.Contains(err.Error(), "TIMEOUT_SECONDS") {
			t.Errorf("TIMEOUT_SECONDS=%q: err = %v, want rejection", raw, err)
		}
	}
}
