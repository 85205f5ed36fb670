package commands

import (
	"fmt"

	"github.com/bookline-dev/bookline/internal/cli/auth"
	"github.com/bookline-dev/bookline/internal/cli/client"
	"github.com/bookline-dev/bookline/internal/cli/config"
	"github.com/bookline-dev/bookline/internal/cli/envselect"
	"github.com/bookline-dev/bookline/internal/cli/userconfig"
)

// getSelectedEnvironment loads the project config and returns the selected
// environment. This is common logic used by most commands.
func getSelectedEnvironment(envName string) (*config.Environment, error) {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w\nRun 'bookline init' to create a configuration file", err)
	}

	env, err := envselect.ResolveEnvironment(cfg, envName)
	if err != nil {
		return nil, err
	}

	if env.URL == "" {
		return nil, fmt.Errorf("environment URL is empty. Please edit %s and add a valid URL", config.ConfigFileName)
	}

	return env, nil
}

// newAPIClient builds the API client for an environment. The installation's
// client ID travels with every request; a fresh install mints one here.
func newAPIClient(env *config.Environment) *client.Client {
	c := client.New(env.URL)
	if id, err := userconfig.ClientID(); err == nil {
		c.SetClientID(id)
	}
	return c
}

// requireToken loads the stored bearer token for env or reports a
// login-required error.
func requireToken(store auth.TokenStore, env string) (string, error) {
	tokenValue, _, err := store.LoadToken(env)
	if err != nil {
		return "", err
	}
	return tokenValue, nil
}
