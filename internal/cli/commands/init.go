package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bookline-dev/bookline/internal/cli/config"
)

// NewInitCmd creates the init command
func NewInitCmd() *cobra.Command {
	var apiURL string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a bookline.json configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(apiURL)
		},
	}

	cmd.Flags().StringVar(&apiURL, "url", "https://api.bookline.app", "API base URL for the production environment")

	return cmd
}

func runInit(apiURL string) error {
	if _, err := os.Stat(config.ConfigFileName); err == nil {
		return fmt.Errorf("%s already exists in this directory", config.ConfigFileName)
	}

	cfg := &config.Config{
		Environments: []config.Environment{
			{Name: "production", URL: apiURL},
		},
		DefaultPage: "home",
	}

	if err := cfg.Save("."); err != nil {
		return err
	}

	fmt.Printf("Created %s\n", config.ConfigFileName)
	fmt.Println("\nNext steps:")
	fmt.Println("  bookline signup   Create an account")
	fmt.Println("  bookline login    Sign in to an existing account")
	return nil
}
