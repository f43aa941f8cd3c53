// Package config holds footprint configuration and the static reduction heuristics.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all footprint configuration.
type Config struct {
	General    GeneralConfig      `toml:"general"`
	Remote     RemoteConfig       `toml:"remote"`
	Daemon     DaemonConfig       `toml:"daemon"`
	AMQP       AMQPConfig         `toml:"amqp"`
	Appearance AppearanceConfig   `toml:"appearance"`
	Reductions ReductionOverrides `toml:"reductions"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	PayloadDir       string `toml:"payload_dir,omitempty"`
	TopSubcategories int    `toml:"top_subcategories"`
	Recommendations  int    `toml:"recommendations"`
	AutoReload       bool   `toml:"auto_reload"`
}

// RemoteConfig points at the analysis backend used by `footprint fetch`.
type RemoteConfig struct {
	BaseURL  string `toml:"base_url,omitempty"`
	APIToken string `toml:"api_token,omitempty"`
}

// DaemonConfig holds defaults for `footprint daemon`.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	IntervalSec  int    `toml:"interval_sec"`
	EventsBuffer int    `toml:"events_buffer"`
}

// AMQPConfig enables publishing daemon events to a broker. Empty URL disables it.
type AMQPConfig struct {
	URL        string `toml:"url,omitempty"`
	Exchange   string `toml:"exchange"`
	RoutingKey string `toml:"routing_key"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// ReductionOverrides allows user-defined reduction heuristics for specific categories.
type ReductionOverrides struct {
	Overrides map[string]ReductionOverride `toml:"overrides,omitempty"`
}

// ReductionOverride replaces the fraction and/or tips of one category.
type ReductionOverride struct {
	Fraction *float64 `toml:"fraction,omitempty"`
	Tips     []string `toml:"tips,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			TopSubcategories: SubcategoryChartLimit,
			Recommendations:  2,
			AutoReload:       true,
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8797",
			IntervalSec:  10,
			EventsBuffer: 200,
		},
		AMQP: AMQPConfig{
			Exchange:   "footprint",
			RoutingKey: "derived",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "footprint")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "footprint")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DefaultPayloadDir is where payloads live when neither flag nor config sets one.
func DefaultPayloadDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "footprint", "payloads")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "footprint", "payloads")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config at path, returning defaults if it doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's config location
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes the config to path, creating its directory.
func SaveTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user config path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// PayloadDir resolves the payload directory from config, falling back to the default.
func PayloadDir(cfg Config) string {
	if cfg.General.PayloadDir != "" {
		return cfg.General.PayloadDir
	}
	return DefaultPayloadDir()
}
