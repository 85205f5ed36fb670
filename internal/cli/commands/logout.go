package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookline-dev/bookline/internal/cli/auth"
	"github.com/bookline-dev/bookline/internal/cli/userconfig"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	var envName string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout(envName)
		},
	}

	cmd.Flags().StringVar(&envName, "env", "", "Environment name (uses selected environment if not specified)")

	return cmd
}

func runLogout(envName string) error {
	env, err := getSelectedEnvironment(envName)
	if err != nil {
		return err
	}

	tokenValue, _, err := auth.LoadToken(env.Name)
	if err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			fmt.Println("Already signed out.")
			return nil
		}
		return err
	}

	// Best effort: local credentials are cleared even when the backend
	// cannot be reached.
	if err := newAPIClient(env).SignOut(context.Background(), tokenValue); err != nil {
		fmt.Printf("Warning: server-side sign-out failed: %v\n", err)
	}

	if err := auth.DeleteToken(env.Name); err != nil {
		return fmt.Errorf("failed to clear stored token: %w", err)
	}
	if err := userconfig.ClearCachedUser(); err != nil {
		fmt.Printf("Warning: failed to clear cached account details: %v\n", err)
	}

	fmt.Println("✓ Signed out.")
	return nil
}
