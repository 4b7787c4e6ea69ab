package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API struct {
		BaseURL   string `yaml:"base_url"`
		TimeoutMS int    `yaml:"timeout_ms"`
	} `yaml:"api"`
	Client struct {
		StoragePath  string   `yaml:"storage_path"`
		InstalledVer []string `yaml:"installed_versions"`
		PollSeconds  int      `yaml:"poll_seconds"`
	} `yaml:"client"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
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
	config := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Environment variables override file values.
	config.API.BaseURL = getEnv("PIKUDO_API_BASE", config.API.BaseURL)
	config.Client.StoragePath = getEnv("PIKUDO_STORAGE_PATH", config.Client.StoragePath)
	config.Client.PollSeconds = getEnvAsInt("PIKUDO_POLL_SECONDS", config.Client.PollSeconds)
	config.Log.Level = getEnv("PIKUDO_LOG_LEVEL", config.Log.Level)

	return config, nil
}

func defaultConfig() *Config {
	config := &Config{}
	config.API.TimeoutMS = 30000
	config.Client.StoragePath = "pikudo.db"
	config.Client.PollSeconds = 15
	config.Log.Level = "info"
	return config
}
