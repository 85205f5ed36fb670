package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/bookline-dev/bookline/internal/app"
	"github.com/bookline-dev/bookline/internal/bootstrap"
	"github.com/bookline-dev/bookline/internal/cache"
	"github.com/bookline-dev/bookline/internal/cli/auth"
	cliconfig "github.com/bookline-dev/bookline/internal/cli/config"
	appconfig "github.com/bookline-dev/bookline/internal/config"
	"github.com/bookline-dev/bookline/internal/events"
	"github.com/bookline-dev/bookline/internal/identity"
	"github.com/bookline-dev/bookline/internal/logger"
	"github.com/bookline-dev/bookline/internal/netprobe"
	"github.com/bookline-dev/bookline/internal/notify"
	"github.com/bookline-dev/bookline/internal/pages"
)

// NewOpenCmd creates the open command
func NewOpenCmd() *cobra.Command {
	var envName string

	cmd := &cobra.Command{
		Use:   "open [page]",
		Short: "Open a page (home, services, contact, reviews, account, documents)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			page := ""
			if len(args) > 0 {
				page = args[0]
			}
			return runOpen(page, envName)
		},
	}

	cmd.Flags().StringVar(&envName, "env", "", "Environment name (uses selected environment if not specified)")

	return cmd
}

func runOpen(pagePath, envName string) error {
	env, err := getSelectedEnvironment(envName)
	if err != nil {
		return err
	}

	if pagePath == "" {
		pagePath = "home"
		if projectCfg, err := cliconfig.LoadFromCurrentDir(); err == nil && projectCfg.DefaultPage != "" {
			pagePath = projectCfg.DefaultPage
		}
	}

	cfg, err := appconfig.Load()
	if err != nil {
		return err
	}

	log := logger.GetLogger()
	apiClient := newAPIClient(env)
	apiClient.SetHTTPClient(&http.Client{Timeout: cfg.API.Timeout})
	notifier := &notify.Console{Logger: log}
	provider := identity.NewLocal(env.Name, auth.Default, userCacheStore{})

	boot := bootstrap.New(bootstrap.Deps{
		Env:      env.Name,
		API:      apiClient,
		Tokens:   auth.Default,
		Cache:    cache.New(cache.AuthStateTTL),
		Provider: provider,
		Notifier: notifier,
		Users:    userCacheStore{},
		RedirectToSignIn: func() {
			fmt.Println("\nRedirecting to sign-in: run 'bookline login'")
		},
		Logger: log,
	})

	registry := pages.NewRegistry(pages.Deps{
		API:    apiClient,
		Tokens: auth.Default,
		Env:    env.Name,
		Out:    os.Stdout,
	}, cache.New(cache.PageModuleTTL), notifier, func() {
		fmt.Println("\nThis page needs an account: run 'bookline login'")
	}, log)

	prober := netprobe.New(apiClient, cfg.Probe.Interval, log)
	monitor := netprobe.NewMonitor(prober, notifier, cfg.Probe.Interval, log)

	a := app.New(app.Deps{
		Config:   cfg,
		Boot:     boot,
		Registry: registry,
		Prober:   prober,
		Monitor:  monitor,
		Provider: provider,
		Bus:      events.NewBus(),
		Notifier: notifier,
		Logger:   log,
	})
	defer a.Shutdown()

	if !a.Start(context.Background(), pagePath) {
		return fmt.Errorf("failed to open page %q", pagePath)
	}
	return nil
}
