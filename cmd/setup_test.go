package cmd

import (
	"testing"

	"github.com/theirongolddev/footprint/internal/config"
)

func TestApplySetup(t *testing.T) {
	cfg := config.DefaultConfig()
	applySetup(&cfg, setupValues{
		payloadDir: "  /data/payloads ",
		baseURL:    "https://api.example.com ",
		token:      " tok ",
		top:        "5",
		theme:      "no-such-theme",
		autoReload: false,
	})

	if cfg.General.PayloadDir != "/data/payloads" {
		t.Errorf("PayloadDir = %q", cfg.General.PayloadDir)
	}
	if cfg.General.TopSubcategories != 5 {
		t.Errorf("TopSubcategories = %d, want 5", cfg.General.TopSubcategories)
	}
	if cfg.General.AutoReload {
		t.Error("AutoReload = true, want false")
	}
	if cfg.Remote.BaseURL != "https://api.example.com" || cfg.Remote.APIToken != "tok" {
		t.Errorf("Remote = %+v", cfg.Remote)
	}
	if cfg.Appearance.Theme != "flexoki-dark" {
		t.Errorf("Theme = %q, want fallback flexoki-dark", cfg.Appearance.Theme)
	}
}

func TestApplySetup_BadTopKeepsDefault(t *testing.T) {
	cfg := config.DefaultConfig()
	applySetup(&cfg, setupValues{payloadDir: "/x", top: "zero"})
	if cfg.General.TopSubcategories != config.SubcategoryChartLimit {
		t.Errorf("TopSubcategories = %d, want %d", cfg.General.TopSubcategories, config.SubcategoryChartLimit)
	}
}

func TestValidatePositiveInt(t *testing.T) {
	for _, s := range []string{"1", " 8 ", "120"} {
		if err := validatePositiveInt(s); err != nil {
			t.Errorf("validatePositiveInt(%q) = %v", s, err)
		}
	}
	for _, s := range []string{"", "0", "-3", "abc"} {
		if err := validatePositiveInt(s); err == nil {
			t.Errorf("validatePositiveInt(%q) = nil, want error", s)
		}
	}
}

func TestMaskToken(t *testing.T) {
	tests := map[string]string{
		"abcdefghijklmnopqrst": "abcdefgh...qrst",
		"abcdefgh":             "abcd...",
		"abc":                  "****",
	}
	for in, want := range tests {
		if got := maskToken(in); got != want {
			t.Errorf("maskToken(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTopN(t *testing.T) {
	old := flagTop
	defer func() { flagTop = old }()

	cfg := config.DefaultConfig()
	flagTop = 0
	if got := topN(cfg); got != config.SubcategoryChartLimit {
		t.Errorf("topN default = %d, want %d", got, config.SubcategoryChartLimit)
	}
	cfg.General.TopSubcategories = 3
	if got := topN(cfg); got != 3 {
		t.Errorf("topN config = %d, want 3", got)
	}
	flagTop = 12
	if got := topN(cfg); got != 12 {
		t.Errorf("topN flag = %d, want 12", got)
	}
}
