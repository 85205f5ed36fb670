package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewServicesCmd creates the services command
func NewServicesCmd() *cobra.Command {
	var envName string
	var all bool

	cmd := &cobra.Command{
		Use:     "services",
		Aliases: []string{"ls"},
		Short:   "List bookable services",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServices(envName, all)
		},
	}

	cmd.Flags().StringVar(&envName, "env", "", "Environment name (uses selected environment if not specified)")
	cmd.Flags().BoolVar(&all, "all", false, "Include inactive services")

	return cmd
}

func runServices(envName string, all bool) error {
	env, err := getSelectedEnvironment(envName)
	if err != nil {
		return err
	}

	services, err := newAPIClient(env).ListServices(context.Background())
	if err != nil {
		return err
	}

	if len(services) == 0 {
		fmt.Println("No services are currently listed.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERVICE\tDURATION\tPRICE\tACTIVE")
	for _, s := range services {
		if !all && !s.Active {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t$%.2f\t%v\n", s.Name, s.Duration, float64(s.PriceCents)/100, s.Active)
	}
	return w.Flush()
}
