package commands

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/bookline-dev/bookline/internal/cli/auth"
	"github.com/bookline-dev/bookline/internal/cli/client"
	"github.com/bookline-dev/bookline/internal/cli/userconfig"
	"github.com/bookline-dev/bookline/internal/models"
)

// loginDeps are the injectable collaborators for runLogin, overridable in
// tests.
type loginDeps struct {
	api      loginAPI
	tokens   auth.TokenStore
	env      string
	saveUser func(*models.UserRecord) error
}

type loginAPI interface {
	Login(ctx context.Context, email, password string) (*client.AuthResponse, error)
}

// LoginOption overrides a default collaborator
type LoginOption func(*loginDeps)

// WithLoginAPI overrides the API client
func WithLoginAPI(api loginAPI) LoginOption {
	return func(d *loginDeps) { d.api = api }
}

// WithLoginTokenStore overrides the token store
func WithLoginTokenStore(store auth.TokenStore) LoginOption {
	return func(d *loginDeps) { d.tokens = store }
}

// WithLoginEnv overrides environment resolution
func WithLoginEnv(env string) LoginOption {
	return func(d *loginDeps) { d.env = env }
}

// WithLoginUserSaver overrides how the cached user record is persisted
func WithLoginUserSaver(save func(*models.UserRecord) error) LoginOption {
	return func(d *loginDeps) { d.saveUser = save }
}

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password, envName string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate with the Bookline service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin(email, password, envName)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set BOOKLINE_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set BOOKLINE_PASSWORD, will prompt if not provided)")
	cmd.Flags().StringVar(&envName, "env", "", "Environment name (uses selected environment if not specified)")

	return cmd
}

func runLogin(email, password, envName string, opts ...LoginOption) error {
	// Check for environment variables (useful for CI/CD)
	if email == "" {
		email = os.Getenv("BOOKLINE_EMAIL")
	}
	if password == "" {
		password = os.Getenv("BOOKLINE_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or BOOKLINE_EMAIL env var)")
	}

	deps := loginDeps{
		tokens:   auth.Default,
		saveUser: userconfig.SaveCachedUser,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	if deps.api == nil {
		env, err := getSelectedEnvironment(envName)
		if err != nil {
			return err
		}
		deps.env = env.Name
		deps.api = newAPIClient(env)
	}

	// Prompt for password if not provided via flag or env var
	if password == "" {
		if term.IsTerminal(int(syscall.Stdin)) {
			fmt.Print("Password: ")
			bytePassword, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(bytePassword)
			fmt.Println()
		} else {
			return fmt.Errorf("password is required in non-interactive mode (use --password flag or BOOKLINE_PASSWORD env var)")
		}
	}

	fmt.Printf("Logging in to %s...\n", deps.env)

	resp, err := deps.api.Login(context.Background(), email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	role := resp.User.Role
	if role == "" {
		role = models.DefaultRole
	}

	if err := deps.tokens.SaveToken(deps.env, resp.Token, role); err != nil {
		return fmt.Errorf("failed to save authentication token: %w", err)
	}
	if err := deps.saveUser(&resp.User); err != nil {
		fmt.Printf("Warning: failed to save account details locally: %v\n", err)
	}

	fmt.Println("✓ Login successful!")
	fmt.Printf("  User: %s %s (%s)\n", resp.User.FirstName, resp.User.LastName, resp.User.Email)
	if role != models.DefaultRole {
		fmt.Printf("  Role: %s\n", role)
	}

	return nil
}
