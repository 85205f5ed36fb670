package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const ConfigFileName = "bookline.json"

// Environment represents one API environment the client can talk to
type Environment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Config represents the project configuration stored in bookline.json
type Config struct {
	Environments []Environment `json:"environments"`
	DefaultPage  string        `json:"default_page,omitempty"`
}

// LoadFromCurrentDir reads bookline.json from the current directory
func LoadFromCurrentDir() (*Config, error) {
	return LoadFromFile(ConfigFileName)
}

// LoadFromFile reads a project configuration from the given path
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if len(cfg.Environments) == 0 {
		return nil, fmt.Errorf("config contains no environments")
	}

	return &cfg, nil
}

// Save writes the project configuration to dir
func (c *Config) Save(dir string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetEnvironmentByName finds an environment by its name
func (c *Config) GetEnvironmentByName(name string) (*Environment, error) {
	for i := range c.Environments {
		if c.Environments[i].Name == name {
			return &c.Environments[i], nil
		}
	}
	return nil, fmt.Errorf("environment %q not found in %s", name, ConfigFileName)
}
