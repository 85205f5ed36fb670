package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookline-dev/bookline/internal/cli/auth"
	"github.com/bookline-dev/bookline/internal/cli/client"
	"github.com/bookline-dev/bookline/internal/cli/userconfig"
	"github.com/bookline-dev/bookline/internal/models"
	"github.com/bookline-dev/bookline/internal/wizard"
)

type signupAPI interface {
	Signup(ctx context.Context, req models.SignupRequest) (*client.AuthResponse, error)
	ListServices(ctx context.Context) ([]models.Service, error)
}

// signupDeps are the injectable collaborators for runSignup
type signupDeps struct {
	api      signupAPI
	tokens   auth.TokenStore
	prompter wizard.Prompter
	env      string
	saveUser func(*models.UserRecord) error
}

// SignupOption overrides a default collaborator
type SignupOption func(*signupDeps)

// WithSignupAPI overrides the API client
func WithSignupAPI(api signupAPI) SignupOption {
	return func(d *signupDeps) { d.api = api }
}

// WithSignupTokenStore overrides the token store
func WithSignupTokenStore(store auth.TokenStore) SignupOption {
	return func(d *signupDeps) { d.tokens = store }
}

// WithSignupPrompter overrides the interactive prompter
func WithSignupPrompter(p wizard.Prompter) SignupOption {
	return func(d *signupDeps) { d.prompter = p }
}

// WithSignupEnv overrides environment resolution
func WithSignupEnv(env string) SignupOption {
	return func(d *signupDeps) { d.env = env }
}

// WithSignupUserSaver overrides how the cached user record is persisted
func WithSignupUserSaver(save func(*models.UserRecord) error) SignupOption {
	return func(d *signupDeps) { d.saveUser = save }
}

// NewSignupCmd creates the signup command
func NewSignupCmd() *cobra.Command {
	var envName string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a Bookline account through the signup wizard",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSignup(envName)
		},
	}

	cmd.Flags().StringVar(&envName, "env", "", "Environment name (uses selected environment if not specified)")

	return cmd
}

func runSignup(envName string, opts ...SignupOption) error {
	deps := signupDeps{
		tokens:   auth.Default,
		prompter: wizard.PromptUI{},
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

	ctx := context.Background()

	// Offer the current service list in the interest step; signup still
	// works when the listing is unavailable.
	var serviceNames []string
	if services, err := deps.api.ListServices(ctx); err == nil {
		for _, s := range services {
			if s.Active {
				serviceNames = append(serviceNames, s.Name)
			}
		}
	}

	req, err := wizard.New(deps.prompter).Run(serviceNames)
	if err != nil {
		if errors.Is(err, wizard.ErrCancelled) {
			fmt.Println("Signup cancelled.")
			return nil
		}
		return err
	}

	resp, err := deps.api.Signup(ctx, *req)
	if err != nil {
		return fmt.Errorf("signup failed: %w", err)
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

	fmt.Println("✓ Account created!")
	fmt.Printf("  User: %s %s (%s)\n", resp.User.FirstName, resp.User.LastName, resp.User.Email)
	return nil
}
