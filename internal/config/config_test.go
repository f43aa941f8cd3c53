package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.General.TopSubcategories != SubcategoryChartLimit {
		t.Fatalf("TopSubcategories = %d, want %d", cfg.General.TopSubcategories, SubcategoryChartLimit)
	}
	if cfg.Daemon.Addr == "" {
		t.Fatal("default daemon addr is empty")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg := DefaultConfig()
	cfg.General.PayloadDir = "/tmp/payloads"
	cfg.Remote.BaseURL = "http://localhost:8000"
	cfg.Reductions.Overrides = map[string]ReductionOverride{
		"Food": {Fraction: fptr(0.2), Tips: []string{"Eat less meat"}},
	}

	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.General.PayloadDir != "/tmp/payloads" {
		t.Errorf("PayloadDir = %q, want /tmp/payloads", got.General.PayloadDir)
	}
	if got.Remote.BaseURL != "http://localhost:8000" {
		t.Errorf("BaseURL = %q", got.Remote.BaseURL)
	}
	o, ok := got.Reductions.Overrides["Food"]
	if !ok || o.Fraction == nil || *o.Fraction != 0.2 {
		t.Fatalf("Food override = %+v, want fraction 0.2", o)
	}
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[general\npayload_dir = "), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Remote.BaseURL = "http://from-config"
	cfg.Remote.APIToken = "cfg-token"

	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvAPIToken, "")
	if got := RemoteBaseURL(cfg); got != "http://from-config" {
		t.Fatalf("RemoteBaseURL = %q, want config value", got)
	}

	t.Setenv(EnvAPIURL, "http://from-env")
	t.Setenv(EnvAPIToken, "env-token")
	if got := RemoteBaseURL(cfg); got != "http://from-env" {
		t.Fatalf("RemoteBaseURL = %q, want env value", got)
	}
	if got := RemoteToken(cfg); got != "env-token" {
		t.Fatalf("RemoteToken = %q, want env value", got)
	}
}

func TestPayloadDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	if got := PayloadDir(DefaultConfig()); got != filepath.Join("/data", "footprint", "payloads") {
		t.Fatalf("PayloadDir = %q", got)
	}
	cfg := DefaultConfig()
	cfg.General.PayloadDir = "/custom"
	if got := PayloadDir(cfg); got != "/custom" {
		t.Fatalf("PayloadDir = %q, want /custom", got)
	}
}
