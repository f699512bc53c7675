package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration. Values load once at startup
// from a YAML file, with environment variables taking precedence so secrets
// stay out of the file.
type Config struct {
	Server struct {
		Port string `yaml:"port" env:"SERVER_PORT"`
	} `yaml:"server"`
	Database struct {
		URL  string `yaml:"url" env:"DATABASE_URL"`
		Name string `yaml:"name" env:"DATABASE_NAME"`
	} `yaml:"database"`
	Auth struct {
		SecretKey string `yaml:"secret_key" env:"AUTH_SECRET_KEY"`
		Algorithm string `yaml:"algorithm" env:"AUTH_ALGORITHM"`
	} `yaml:"auth"`
}

// LoadConfig reads configuration from the specified YAML file and applies
// environment overrides.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if config.Server.Port == "" {
		config.Server.Port = ":8080"
	}
	if config.Auth.Algorithm == "" {
		config.Auth.Algorithm = "HS256"
	}
	if config.Auth.SecretKey == "" {
		return nil, fmt.Errorf("auth secret key is not set")
	}
	if config.Database.URL == "" {
		return nil, fmt.Errorf("database url is not set")
	}

	return config, nil
}
