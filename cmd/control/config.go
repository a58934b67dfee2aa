package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the control service configuration. Values come from an optional
// YAML file with environment variables taking precedence.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Storage struct {
		Driver string `yaml:"driver"` // file or postgres
		Dir    string `yaml:"dir"`
	} `yaml:"storage"`
	Live struct {
		Driver  string `yaml:"driver"` // nats or inmem
		URL     string `yaml:"url"`
		Subject string `yaml:"subject"`
	} `yaml:"live"`
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func loadConfig(path string) (*Config, error) {
	var config Config
	config.Server.Port = "8080"
	config.Storage.Driver = "file"
	config.Storage.Dir = "data"
	config.Live.Driver = "inmem"

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	config.Server.Port = getEnv("PORT", config.Server.Port)
	config.Storage.Driver = getEnv("STORAGE_DRIVER", config.Storage.Driver)
	config.Storage.Dir = getEnv("STORAGE_DIR", config.Storage.Dir)
	config.Live.Driver = getEnv("LIVE_DRIVER", config.Live.Driver)
	config.Live.URL = getEnv("NATS_URL", config.Live.URL)
	config.Live.Subject = getEnv("LIVE_SUBJECT", config.Live.Subject)

	return &config, nil
}

// postgresDSN assembles the connection string from DB_* variables.
func postgresDSN() string {
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvAsInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", "postgres"),
		Database: getEnv("DB_NAME", "auctiondesk"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Database, dbConfig.SSLMode)
}
