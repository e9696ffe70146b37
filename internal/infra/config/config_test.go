package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"STORAGE_DRIVER", "EVENTS_DRIVER", "CACHE_TTL", "KAFKA_BROKERS", "FLUENT_PORT"} {
		t.Setenv(key, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StorageDriver != DriverMemory {
		t.Fatalf("got driver %q, want %q", cfg.StorageDriver, DriverMemory)
	}
	if cfg.EventsDriver != EventsNone {
		t.Fatalf("got events %q, want %q", cfg.EventsDriver, EventsNone)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Fatalf("got ttl %v, want 5m", cfg.CacheTTL)
	}
	if cfg.FluentPort != 24224 {
		t.Fatalf("got fluent port %d, want 24224", cfg.FluentPort)
	}
	if len(cfg.RetryBackoff) != 3 {
		t.Fatalf("got backoff %v, want 3 steps", cfg.RetryBackoff)
	}
}

func TestLoadRequiresDriverSettings(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{name: "postgres without url", env: map[string]string{"STORAGE_DRIVER": "postgres", "DATABASE_URL": ""}},
		{name: "mongo without uri", env: map[string]string{"STORAGE_DRIVER": "mongo", "MONGO_URI": ""}},
		{name: "kafka without brokers", env: map[string]string{"EVENTS_DRIVER": "kafka", "KAFKA_BROKERS": ""}},
		{name: "unknown storage", env: map[string]string{"STORAGE_DRIVER": "sqlite"}},
		{name: "bad cache size", env: map[string]string{"CACHE_SIZE": "many"}},
		{name: "bad bool", env: map[string]string{"S3_USE_SSL": "maybe"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("got nil error, want failure")
			}
		})
	}
}

func TestLoadDotEnvKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("RENTALS_TEST_A=file\nRENTALS_TEST_B=file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("RENTALS_TEST_A", "env")
	t.Setenv("RENTALS_TEST_B", "")
	os.Unsetenv("RENTALS_TEST_B")

	if err := LoadDotEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("RENTALS_TEST_A"); got != "env" {
		t.Fatalf("got %q, want env", got)
	}
	if got := os.Getenv("RENTALS_TEST_B"); got != "file" {
		t.Fatalf("got %q, want file", got)
	}
}
