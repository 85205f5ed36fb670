package auth

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	service = "bookline-cli"
)

// ErrNotAuthenticated is returned when no token is stored for the
// environment.
var ErrNotAuthenticated = errors.New("not authenticated. Please run 'bookline login' first")

// getTokenKey returns a unique key for storing bearer tokens per environment
func getTokenKey(env string) string {
	return fmt.Sprintf("token-%s", env)
}

// getRoleKey returns a unique key for storing the role tag per environment
func getRoleKey(env string) string {
	return fmt.Sprintf("role-%s", env)
}

// SaveToken persists the bearer token and role tag securely in the OS
// keychain/credential manager
func SaveToken(env, tokenValue, role string) error {
	if err := keyring.Set(service, getTokenKey(env), tokenValue); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	if err := keyring.Set(service, getRoleKey(env), role); err != nil {
		return fmt.Errorf("failed to save role: %w", err)
	}
	return nil
}

// LoadToken retrieves the bearer token and role tag from the OS
// keychain/credential manager
func LoadToken(env string) (tokenValue, role string, err error) {
	tokenValue, err = keyring.Get(service, getTokenKey(env))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", "", ErrNotAuthenticated
		}
		return "", "", fmt.Errorf("failed to load token: %w", err)
	}

	role, err = keyring.Get(service, getRoleKey(env))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			// Tokens written by older CLI versions have no role tag.
			return tokenValue, "", nil
		}
		return "", "", fmt.Errorf("failed to load role: %w", err)
	}

	return tokenValue, role, nil
}

// DeleteToken removes the bearer token and role tag from the OS
// keychain/credential manager
func DeleteToken(env string) error {
	if err := keyring.Delete(service, getTokenKey(env)); err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("failed to delete token: %w", err)
		}
	}
	if err := keyring.Delete(service, getRoleKey(env)); err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("failed to delete role: %w", err)
		}
	}
	return nil
}
