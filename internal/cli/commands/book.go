package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookline-dev/bookline/internal/cli/auth"
	"github.com/bookline-dev/bookline/internal/cli/client"
	"github.com/bookline-dev/bookline/internal/cli/userconfig"
	"github.com/bookline-dev/bookline/internal/mailtmpl"
	"github.com/bookline-dev/bookline/internal/models"
)

type bookAPI interface {
	ListServices(ctx context.Context) ([]models.Service, error)
	CreateBooking(ctx context.Context, bearer string, booking models.Booking) (*models.Booking, error)
	SendEmail(ctx context.Context, bearer string, req client.EmailRequest) error
}

// bookDeps are the injectable collaborators for the book command
type bookDeps struct {
	api      bookAPI
	tokens   auth.TokenStore
	env      string
	loadUser func() (*models.UserRecord, error)
}

// BookOption overrides a default collaborator
type BookOption func(*bookDeps)

// WithBookAPI overrides the API client
func WithBookAPI(api bookAPI) BookOption {
	return func(d *bookDeps) { d.api = api }
}

// WithBookTokenStore overrides the token store
func WithBookTokenStore(store auth.TokenStore) BookOption {
	return func(d *bookDeps) { d.tokens = store }
}

// WithBookEnv overrides environment resolution
func WithBookEnv(env string) BookOption {
	return func(d *bookDeps) { d.env = env }
}

// WithBookUserLoader overrides how the cached user record is read
func WithBookUserLoader(load func() (*models.UserRecord, error)) BookOption {
	return func(d *bookDeps) { d.loadUser = load }
}

// NewBookCmd creates the book command
func NewBookCmd() *cobra.Command {
	var envName, service, when, notes string

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book an appointment for a service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBook(envName, service, when, notes)
		},
	}

	cmd.Flags().StringVar(&service, "service", "", "Service to book")
	cmd.Flags().StringVar(&when, "when", "", "Requested date and time, e.g. \"2026-09-14 10:00\"")
	cmd.Flags().StringVar(&notes, "notes", "", "Anything we should know (optional)")
	cmd.Flags().StringVar(&envName, "env", "", "Environment name (uses selected environment if not specified)")
	cmd.MarkFlagRequired("service")
	cmd.MarkFlagRequired("when")

	return cmd
}

func runBook(envName, serviceName, when, notes string, opts ...BookOption) error {
	deps := bookDeps{
		tokens:   auth.Default,
		loadUser: userconfig.LoadCachedUser,
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

	bearer, err := requireToken(deps.tokens, deps.env)
	if err != nil {
		return err
	}

	ctx := context.Background()

	service, err := findService(ctx, deps.api, serviceName)
	if err != nil {
		return err
	}

	booking := models.Booking{
		Submission: models.NewSubmission(),
		Service:    service.Name,
		When:       when,
		Notes:      notes,
	}

	confirmed, err := deps.api.CreateBooking(ctx, bearer, booking)
	if err != nil {
		return fmt.Errorf("failed to book %s: %w", service.Name, err)
	}

	// The confirmation email is rendered client-side and handed to the mail
	// endpoint. Delivery problems don't undo the booking.
	if user, loadErr := deps.loadUser(); loadErr == nil && user != nil && user.Email != "" {
		html, renderErr := mailtmpl.BookingConfirmation(mailtmpl.BookingDetails{
			FirstName:   user.FirstName,
			ServiceName: service.Name,
			When:        confirmed.When,
			Duration:    service.Duration,
		})
		if renderErr == nil {
			emailReq := client.EmailRequest{
				To:      user.Email,
				Subject: fmt.Sprintf("Your %s booking is confirmed", service.Name),
				HTML:    html,
			}
			if sendErr := deps.api.SendEmail(ctx, bearer, emailReq); sendErr != nil {
				fmt.Printf("Note: confirmation email could not be sent: %v\n", sendErr)
			}
		}
	}

	fmt.Printf("✓ Booked %s for %s\n", service.Name, confirmed.When)
	fmt.Printf("  Reference: %s\n", confirmed.ID)
	return nil
}

// findService resolves name against the current service listing; only
// active services are bookable.
func findService(ctx context.Context, api bookAPI, name string) (*models.Service, error) {
	services, err := api.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load services: %w", err)
	}

	for i := range services {
		if services[i].Name == name && services[i].Active {
			return &services[i], nil
		}
	}

	available := make([]string, 0, len(services))
	for _, s := range services {
		if s.Active {
			available = append(available, s.Name)
		}
	}
	return nil, fmt.Errorf("unknown service %q; available: %v", name, available)
}
