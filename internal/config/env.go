package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that take precedence over the config file.
const (
	EnvAPIURL   = "FOOTPRINT_API_URL"
	EnvAPIToken = "FOOTPRINT_API_TOKEN"
	EnvAMQPURL  = "FOOTPRINT_AMQP_URL"
)

// LoadEnv loads .env files from the working directory and the config directory.
// Variables already set in the process environment are never overwritten, and
// missing files are not an error.
func LoadEnv() error {
	for _, path := range []string{".env", filepath.Join(Dir(), ".env")} {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// RemoteBaseURL returns the analysis backend URL from env var or config, in that order.
func RemoteBaseURL(cfg Config) string {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		return v
	}
	return cfg.Remote.BaseURL
}

// RemoteToken returns the analysis backend token from env var or config, in that order.
func RemoteToken(cfg Config) string {
	if v := strings.TrimSpace(os.Getenv(EnvAPIToken)); v != "" {
		return v
	}
	return cfg.Remote.APIToken
}

// AMQPURL returns the broker URL from env var or config, in that order.
func AMQPURL(cfg Config) string {
	if v := strings.TrimSpace(os.Getenv(EnvAMQPURL)); v != "" {
		return v
	}
	return cfg.AMQP.URL
}
