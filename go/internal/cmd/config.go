package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/mcdev12/liveworkshop/go/internal/live/auth"
	"gopkg.in/yaml.v3"
)

// Config is the API server's file configuration. Environment variables win
// over file values.
type Config struct {
	HTTP struct {
		Port           string   `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"http"`
	Auth struct {
		Issuer   string        `yaml:"issuer"`
		TokenTTL time.Duration `yaml:"token_ttl"`
	} `yaml:"auth"`
}

func defaultConfig() *Config {
	var config Config
	config.HTTP.Port = "8080"
	config.HTTP.AllowedOrigins = []string{"*"}
	authDefaults := auth.DefaultConfig()
	config.Auth.Issuer = authDefaults.Issuer
	config.Auth.TokenTTL = authDefaults.TokenTTL
	return &config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// loadConfig reads path over the defaults. A missing file is not an error.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.HTTP.Port = getEnv("PORT", config.HTTP.Port)
	return config, nil
}

// authConfig combines the file settings with the signing secret, which only
// ever comes from the environment.
func (c *Config) authConfig() (auth.Config, error) {
	secret := os.Getenv("LIVE_JWT_SECRET")
	if secret == "" {
		return auth.Config{}, errors.New("LIVE_JWT_SECRET environment variable is required")
	}
	return auth.Config{
		Secret:   secret,
		Issuer:   c.Auth.Issuer,
		TokenTTL: c.Auth.TokenTTL,
	}, nil
}
