package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookline-dev/bookline/internal/cli/auth"
	"github.com/bookline-dev/bookline/internal/cli/userconfig"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	var envName string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWhoami(envName)
		},
	}

	cmd.Flags().StringVar(&envName, "env", "", "Environment name (uses selected environment if not specified)")

	return cmd
}

func runWhoami(envName string) error {
	env, err := getSelectedEnvironment(envName)
	if err != nil {
		return err
	}

	_, role, err := auth.LoadToken(env.Name)
	if err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			fmt.Println("Not signed in.")
			return nil
		}
		return err
	}

	user, err := userconfig.LoadCachedUser()
	if err != nil || user == nil {
		fmt.Printf("Signed in (role: %s). Account details unavailable; run 'bookline status' to refresh.\n", role)
		return nil
	}

	fmt.Printf("%s %s\n%s\nRole: %s\n", user.FirstName, user.LastName, user.Email, user.Role)
	return nil
}
