package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookline-dev/bookline/internal/cli/config"
	"github.com/bookline-dev/bookline/internal/cli/envselect"
	"github.com/bookline-dev/bookline/internal/cli/userconfig"
)

// NewSelectEnvCmd creates the select-env command
func NewSelectEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select-env [name]",
		Short: "Select the environment used by other commands",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}
			return runSelectEnv(name)
		},
	}
}

func runSelectEnv(name string) error {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return fmt.Errorf("failed to load config: %w\nRun 'bookline init' to create a configuration file", err)
	}

	var env *config.Environment
	if name != "" {
		env, err = cfg.GetEnvironmentByName(name)
	} else {
		env, err = envselect.PromptEnvironmentSelection(cfg)
	}
	if err != nil {
		return err
	}

	if err := userconfig.SetSelectedEnv(env.Name); err != nil {
		return fmt.Errorf("failed to save selected environment: %w", err)
	}

	fmt.Printf("Selected environment: %s (%s)\n", env.Name, env.URL)
	return nil
}
