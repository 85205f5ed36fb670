package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/bookline-dev/bookline/internal/cli/auth"
	"github.com/bookline-dev/bookline/internal/cli/client"
	"github.com/bookline-dev/bookline/internal/mailtmpl"
	"github.com/bookline-dev/bookline/internal/models"
)

// businessInbox receives the business-facing copies of transactional mail.
const businessInbox = "hello@bookline.app"

type contactsAPI interface {
	ListContacts(ctx context.Context, bearer string) ([]models.Contact, error)
	CreateContact(ctx context.Context, contact models.Contact) error
	SendEmail(ctx context.Context, bearer string, req client.EmailRequest) error
}

// contactsDeps are the injectable collaborators for the contacts commands
type contactsDeps struct {
	api    contactsAPI
	tokens auth.TokenStore
	env    string
}

// ContactsOption overrides a default collaborator
type ContactsOption func(*contactsDeps)

// WithContactsAPI overrides the API client
func WithContactsAPI(api contactsAPI) ContactsOption {
	return func(d *contactsDeps) { d.api = api }
}

// WithContactsTokenStore overrides the token store
func WithContactsTokenStore(store auth.TokenStore) ContactsOption {
	return func(d *contactsDeps) { d.tokens = store }
}

// WithContactsEnv overrides environment resolution
func WithContactsEnv(env string) ContactsOption {
	return func(d *contactsDeps) { d.env = env }
}

func resolveContactsDeps(envName string, opts []ContactsOption) (*contactsDeps, error) {
	deps := contactsDeps{tokens: auth.Default}
	for _, opt := range opts {
		opt(&deps)
	}
	if deps.api == nil {
		env, err := getSelectedEnvironment(envName)
		if err != nil {
			return nil, err
		}
		deps.env = env.Name
		deps.api = newAPIClient(env)
	}
	return &deps, nil
}

// NewContactsCmd creates the contacts command group
func NewContactsCmd() *cobra.Command {
	var envName string

	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "List and send contact messages",
	}
	cmd.PersistentFlags().StringVar(&envName, "env", "", "Environment name (uses selected environment if not specified)")

	listCmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List contact messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContactsList(envName)
		},
	}

	var name, email, phone, service, message string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Send a contact message",
		RunE: func(cmd *cobra.Command, args []string) error {
			contact := models.Contact{
				Submission: models.NewSubmission(),
				Name:       name,
				Email:      email,
				Phone:      phone,
				Service:    service,
				Message:    message,
			}
			return runContactsAdd(envName, contact)
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "Your name")
	addCmd.Flags().StringVar(&email, "email", "", "Your email address")
	addCmd.Flags().StringVar(&phone, "phone", "", "Your phone number (optional)")
	addCmd.Flags().StringVar(&service, "service", "", "Service you are asking about (optional)")
	addCmd.Flags().StringVar(&message, "message", "", "Your message")
	addCmd.MarkFlagRequired("name")
	addCmd.MarkFlagRequired("email")
	addCmd.MarkFlagRequired("message")

	cmd.AddCommand(listCmd)
	cmd.AddCommand(addCmd)
	return cmd
}

func runContactsList(envName string, opts ...ContactsOption) error {
	deps, err := resolveContactsDeps(envName, opts)
	if err != nil {
		return err
	}

	bearer, err := requireToken(deps.tokens, deps.env)
	if err != nil {
		return err
	}

	contacts, err := deps.api.ListContacts(context.Background(), bearer)
	if err != nil {
		return err
	}

	if len(contacts) == 0 {
		fmt.Println("No contact messages.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tSERVICE\tREPLIED")
	for _, c := range contacts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\n", c.ID, c.Name, c.Email, c.Service, c.Replied)
	}
	return w.Flush()
}

func runContactsAdd(envName string, contact models.Contact, opts ...ContactsOption) error {
	if err := validator.New().Struct(contact); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}

	deps, err := resolveContactsDeps(envName, opts)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := deps.api.CreateContact(ctx, contact); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	// Both transactional emails are rendered client-side and handed to the
	// mail endpoint. Delivery problems don't undo the submission.
	if html, renderErr := mailtmpl.ContactNotification(contact); renderErr == nil {
		emailReq := client.EmailRequest{
			To:      businessInbox,
			Subject: fmt.Sprintf("New contact request from %s", contact.Name),
			HTML:    html,
		}
		if sendErr := deps.api.SendEmail(ctx, "", emailReq); sendErr != nil {
			fmt.Printf("Note: notification email could not be sent: %v\n", sendErr)
		}
	}
	if html, renderErr := mailtmpl.ContactAutoReply(contact); renderErr == nil {
		emailReq := client.EmailRequest{
			To:      contact.Email,
			Subject: "We received your message",
			HTML:    html,
		}
		if sendErr := deps.api.SendEmail(ctx, "", emailReq); sendErr != nil {
			fmt.Printf("Note: confirmation email could not be sent: %v\n", sendErr)
		}
	}

	fmt.Println("✓ Message sent! We'll get back to you within one business day.")
	fmt.Printf("  Reference: %s\n", contact.ID)
	return nil
}
