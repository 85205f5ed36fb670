package userconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/bookline-dev/bookline/internal/models"
)

const (
	configDirName  = "bookline"
	configFileName = "config.json"
)

// UserConfig represents the user's local state stored in
// ~/.config/bookline/config.json. CachedUser backs degraded mode: it is the
// last user record the API confirmed, kept so an unreachable backend does
// not force a re-login.
type UserConfig struct {
	SelectedEnv string             `json:"selected_env"`
	ClientID    string             `json:"client_id"`
	CachedUser  *models.UserRecord `json:"cached_user,omitempty"`
}

// configPathOverride redirects storage during tests.
var configPathOverride string

// SetPathOverride points the package at an alternate config file. Pass an
// empty string to restore the default. Only used by tests.
func SetPathOverride(path string) {
	configPathOverride = path
}

// GetConfigPath returns the path to the user config file
func GetConfigPath() (string, error) {
	if configPathOverride != "" {
		return configPathOverride, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", configDirName)
	return filepath.Join(configDir, configFileName), nil
}

// Load reads the user configuration file
func Load() (*UserConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// If config doesn't exist, return empty config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &UserConfig{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the user configuration to a file
func Save(cfg *UserConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Create config directory if it doesn't exist
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}

	return nil
}

// SetSelectedEnv updates the selected environment name and saves the config
func SetSelectedEnv(name string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.SelectedEnv = name
	return Save(cfg)
}

// GetSelectedEnv returns the selected environment name, or empty string if
// not set
func GetSelectedEnv() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}

	return cfg.SelectedEnv, nil
}

// ClientID returns the stable per-installation client identifier, creating
// and persisting one on first use.
func ClientID() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}
	if cfg.ClientID != "" {
		return cfg.ClientID, nil
	}

	cfg.ClientID = uuid.NewString()
	if err := Save(cfg); err != nil {
		return "", err
	}
	return cfg.ClientID, nil
}

// SaveCachedUser persists the last confirmed user record for degraded mode
func SaveCachedUser(user *models.UserRecord) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.CachedUser = user
	return Save(cfg)
}

// LoadCachedUser returns the cached user record, or nil when none is stored
func LoadCachedUser() (*models.UserRecord, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	return cfg.CachedUser, nil
}

// ClearCachedUser removes the cached user record on sign-out
func ClearCachedUser() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.CachedUser = nil
	return Save(cfg)
}
