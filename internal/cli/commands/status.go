package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bookline-dev/bookline/internal/bootstrap"
	"github.com/bookline-dev/bookline/internal/cache"
	"github.com/bookline-dev/bookline/internal/cli/auth"
	"github.com/bookline-dev/bookline/internal/cli/userconfig"
	"github.com/bookline-dev/bookline/internal/identity"
	"github.com/bookline-dev/bookline/internal/logger"
	"github.com/bookline-dev/bookline/internal/models"
	"github.com/bookline-dev/bookline/internal/netprobe"
	"github.com/bookline-dev/bookline/internal/notify"
	"github.com/bookline-dev/bookline/internal/token"
)

// userCacheStore adapts the userconfig package to the bootstrapper's
// UserCache interface.
type userCacheStore struct{}

func (userCacheStore) SaveCachedUser(user *models.UserRecord) error {
	return userconfig.SaveCachedUser(user)
}

func (userCacheStore) LoadCachedUser() (*models.UserRecord, error) {
	return userconfig.LoadCachedUser()
}

func (userCacheStore) ClearCachedUser() error {
	return userconfig.ClearCachedUser()
}

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	var envName string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show connectivity and session status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(envName)
		},
	}

	cmd.Flags().StringVar(&envName, "env", "", "Environment name (uses selected environment if not specified)")

	return cmd
}

func runStatus(envName string) error {
	env, err := getSelectedEnvironment(envName)
	if err != nil {
		return err
	}

	log := logger.GetLogger()
	apiClient := newAPIClient(env)
	ctx := context.Background()

	prober := netprobe.New(apiClient, 2*time.Second, log)
	status := prober.Check(ctx)

	fmt.Printf("Environment:  %s (%s)\n", env.Name, apiClient.BaseURL())
	fmt.Printf("Network:      %s\n", onOff(status.Online, "online", "offline"))
	fmt.Printf("Backend:      %s\n", onOff(status.BackendConnected, "reachable", "unreachable"))

	tokenValue, role, err := auth.LoadToken(env.Name)
	if err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			fmt.Println("Session:      signed out")
			return nil
		}
		return err
	}

	switch token.Classify(tokenValue, time.Now()) {
	case token.Fresh:
		fmt.Println("Token:        valid")
	case token.NearExpiry:
		fmt.Println("Token:        expiring soon")
	case token.Expired:
		fmt.Println("Token:        expired")
	}
	if role != "" {
		fmt.Printf("Role:         %s\n", role)
	}

	// One full bootstrap pass answers the definitive question: is this
	// session usable right now?
	boot := bootstrap.New(bootstrap.Deps{
		Env:      env.Name,
		API:      apiClient,
		Tokens:   auth.Default,
		Cache:    cache.New(cache.AuthStateTTL),
		Provider: identity.NewLocal(env.Name, auth.Default, userCacheStore{}),
		Notifier: &notify.Console{Logger: log},
		Users:    userCacheStore{},
		Logger:   log,
	})

	result := boot.Run(ctx, &identity.User{}, tokenValue)
	switch {
	case result.Degraded:
		fmt.Println("Session:      degraded (saved account data)")
	case result.Authenticated:
		fmt.Printf("Session:      active (%s)\n", result.User.Email)
	default:
		fmt.Println("Session:      not usable, please sign in again")
	}

	return nil
}

func onOff(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}
