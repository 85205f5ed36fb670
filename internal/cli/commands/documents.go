package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bookline-dev/bookline/internal/cli/auth"
	"github.com/bookline-dev/bookline/internal/cli/client"
	"github.com/bookline-dev/bookline/internal/models"
)

type documentsAPI interface {
	ListDocuments(ctx context.Context, bearer string) ([]models.Document, error)
	UploadDocument(ctx context.Context, bearer string, req client.UploadDocumentRequest) (*models.Document, error)
	DeleteDocument(ctx context.Context, bearer, documentID string) error
}

type documentsDeps struct {
	api    documentsAPI
	tokens auth.TokenStore
	env    string
}

// DocumentsOption configures the documents command
type DocumentsOption func(*documentsDeps)

// WithDocumentsAPI overrides the API client used by the documents command
func WithDocumentsAPI(api documentsAPI) DocumentsOption {
	return func(d *documentsDeps) { d.api = api }
}

// WithDocumentsTokenStore overrides the token store used by the documents command
func WithDocumentsTokenStore(store auth.TokenStore) DocumentsOption {
	return func(d *documentsDeps) { d.tokens = store }
}

// WithDocumentsEnv pins the environment name instead of resolving it
func WithDocumentsEnv(env string) DocumentsOption {
	return func(d *documentsDeps) { d.env = env }
}

func resolveDocumentsDeps(envName string, opts []DocumentsOption) (*documentsDeps, error) {
	deps := &documentsDeps{tokens: auth.Default}
	for _, opt := range opts {
		opt(deps)
	}
	if deps.api == nil {
		env, err := getSelectedEnvironment(envName)
		if err != nil {
			return nil, err
		}
		deps.api = newAPIClient(env)
		deps.env = env.Name
	}
	return deps, nil
}

// NewDocumentsCmd creates the documents command with its subcommands
func NewDocumentsCmd(opts ...DocumentsOption) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"docs"},
		Short:   "Manage documents on your account",
	}

	var lsEnv string
	lsCmd := &cobra.Command{
		Use:   "ls",
		Short: "List your documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := resolveDocumentsDeps(lsEnv, opts)
			if err != nil {
				return err
			}
			return runDocumentsList(deps)
		},
	}
	lsCmd.Flags().StringVar(&lsEnv, "env", "", "Environment name (uses selected environment if not specified)")

	var addEnv, kind string
	addCmd := &cobra.Command{
		Use:   "add <file>",
		Short: "Upload a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := resolveDocumentsDeps(addEnv, opts)
			if err != nil {
				return err
			}
			return runDocumentsAdd(deps, args[0], kind)
		},
	}
	addCmd.Flags().StringVar(&addEnv, "env", "", "Environment name (uses selected environment if not specified)")
	addCmd.Flags().StringVar(&kind, "kind", "other", "Document kind (intake, consent, other)")

	var rmEnv string
	rmCmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := resolveDocumentsDeps(rmEnv, opts)
			if err != nil {
				return err
			}
			return runDocumentsDelete(deps, args[0])
		},
	}
	rmCmd.Flags().StringVar(&rmEnv, "env", "", "Environment name (uses selected environment if not specified)")

	cmd.AddCommand(lsCmd, addCmd, rmCmd)
	return cmd
}

func runDocumentsList(deps *documentsDeps) error {
	bearer, err := requireToken(deps.tokens, deps.env)
	if err != nil {
		return err
	}

	docs, err := deps.api.ListDocuments(context.Background(), bearer)
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		fmt.Println("No documents on file.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tKIND\tSIZE\tUPLOADED")
	for _, d := range docs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", d.ID, d.Name, d.Kind, d.SizeBytes, d.UploadedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runDocumentsAdd(deps *documentsDeps, path, kind string) error {
	bearer, err := requireToken(deps.tokens, deps.env)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc, err := deps.api.UploadDocument(context.Background(), bearer, client.UploadDocumentRequest{
		Name:    filepath.Base(path),
		Kind:    kind,
		Content: content,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Uploaded %s (%s)\n", doc.Name, doc.ID)
	return nil
}

func runDocumentsDelete(deps *documentsDeps, id string) error {
	bearer, err := requireToken(deps.tokens, deps.env)
	if err != nil {
		return err
	}

	if err := deps.api.DeleteDocument(context.Background(), bearer, id); err != nil {
		return err
	}

	fmt.Printf("Deleted document %s\n", id)
	return nil
}
