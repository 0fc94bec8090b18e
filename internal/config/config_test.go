package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LoadInterval != 300*time.Second {
		t.Fatalf("unexpected load interval %v", cfg.LoadInterval)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Fatalf("unexpected http timeout %v", cfg.HTTPTimeout)
	}
	if cfg.LoadConcurrency != 4 {
		t.Fatalf("unexpected load concurrency %d", cfg.LoadConcurrency)
	}
	if cfg.StorageType != "bbolt" || cfg.EndpointsFile != "./configs/endpoints.yaml" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("LOAD_INTERVAL", "60")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "3")
	t.Setenv("STORAGE_TYPE", "none")
	t.Setenv("LOAD_RATE_PER_SECOND", "2.5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LoadInterval != time.Minute || cfg.HTTPTimeout != 3*time.Second {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.LoadRatePerSecond != 2.5 {
		t.Fatalf("load rate = %v", cfg.LoadRatePerSecond)
	}
	if cfg.StorageType != "none" {
		t.Fatalf("storage type = %q", cfg.StorageType)
	}
}

func TestLoadRejectsNonPositiveValues(t *testing.T) {
	for _, key := range []string{"LOAD_INTERVAL", "HTTP_TIMEOUT_SECONDS", "STORAGE_TTL_SECONDS", "STORAGE_CLEANUP_INTERVAL_SECONDS", "LOAD_CONCURRENCY", "LOAD_BURST"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "0")
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=0", key)
			}
		})
	}
}

func TestLoadRejectsNegativeRate(t *testing.T) {
	t.Setenv("LOAD_RATE_PER_SECOND", "-1")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for negative load rate")
	}
}
