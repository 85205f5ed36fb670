package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bookline-dev/bookline/internal/cli/commands"
	"github.com/bookline-dev/bookline/internal/config"
	"github.com/bookline-dev/bookline/internal/logger"
)

var version = "dev" // Will be set during build

var rootCmd = &cobra.Command{
	Use:   "bookline",
	Short: "Bookline - Client for the Bookline booking service",
	Long: `Bookline CLI - Browse services, manage your account, and book appointments.

Bookline keeps a signed-in session on this machine, refreshing credentials
as needed and falling back to cached account data when the backend is
unreachable.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			logger.Init("info", "console")
			return
		}
		logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	},
}

func init() {
	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("bookline version %s\n", version)
		},
	})

	// Add all subcommands
	rootCmd.AddCommand(commands.NewInitCmd())
	rootCmd.AddCommand(commands.NewSignupCmd())
	rootCmd.AddCommand(commands.NewLoginCmd())
	rootCmd.AddCommand(commands.NewLogoutCmd())
	rootCmd.AddCommand(commands.NewStatusCmd())
	rootCmd.AddCommand(commands.NewWhoamiCmd())
	rootCmd.AddCommand(commands.NewOpenCmd())
	rootCmd.AddCommand(commands.NewBookCmd())
	rootCmd.AddCommand(commands.NewContactsCmd())
	rootCmd.AddCommand(commands.NewReviewsCmd())
	rootCmd.AddCommand(commands.NewServicesCmd())
	rootCmd.AddCommand(commands.NewDocumentsCmd())
	rootCmd.AddCommand(commands.NewSelectEnvCmd())
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
