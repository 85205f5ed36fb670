package commands

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/bookline-dev/bookline/internal/cli/auth"
	"github.com/bookline-dev/bookline/internal/models"
)

type reviewsAPI interface {
	ListReviews(ctx context.Context) ([]models.Review, error)
	CreateReview(ctx context.Context, bearer string, review models.Review) error
}

// reviewsDeps are the injectable collaborators for the reviews commands
type reviewsDeps struct {
	api    reviewsAPI
	tokens auth.TokenStore
	env    string
}

// ReviewsOption overrides a default collaborator
type ReviewsOption func(*reviewsDeps)

// WithReviewsAPI overrides the API client
func WithReviewsAPI(api reviewsAPI) ReviewsOption {
	return func(d *reviewsDeps) { d.api = api }
}

// WithReviewsTokenStore overrides the token store
func WithReviewsTokenStore(store auth.TokenStore) ReviewsOption {
	return func(d *reviewsDeps) { d.tokens = store }
}

// WithReviewsEnv overrides environment resolution
func WithReviewsEnv(env string) ReviewsOption {
	return func(d *reviewsDeps) { d.env = env }
}

func resolveReviewsDeps(envName string, opts []ReviewsOption) (*reviewsDeps, error) {
	deps := reviewsDeps{tokens: auth.Default}
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

// NewReviewsCmd creates the reviews command group
func NewReviewsCmd() *cobra.Command {
	var envName string

	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Read and write customer reviews",
	}
	cmd.PersistentFlags().StringVar(&envName, "env", "", "Environment name (uses selected environment if not specified)")

	listCmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List reviews",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReviewsList(envName)
		},
	}

	var author, comment string
	var rating int
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Write a review",
		RunE: func(cmd *cobra.Command, args []string) error {
			review := models.Review{
				Submission: models.NewSubmission(),
				Author:     author,
				Rating:     rating,
				Comment:    comment,
			}
			return runReviewsAdd(envName, review)
		},
	}
	addCmd.Flags().StringVar(&author, "author", "", "Your name")
	addCmd.Flags().IntVar(&rating, "rating", 5, "Rating from 1 to 5")
	addCmd.Flags().StringVar(&comment, "comment", "", "Your review")
	addCmd.MarkFlagRequired("author")
	addCmd.MarkFlagRequired("comment")

	cmd.AddCommand(listCmd)
	cmd.AddCommand(addCmd)
	return cmd
}

func runReviewsList(envName string, opts ...ReviewsOption) error {
	deps, err := resolveReviewsDeps(envName, opts)
	if err != nil {
		return err
	}

	reviews, err := deps.api.ListReviews(context.Background())
	if err != nil {
		return err
	}

	if len(reviews) == 0 {
		fmt.Println("No reviews yet.")
		return nil
	}

	for _, r := range reviews {
		fmt.Printf("%d/5  %s\n  %s\n\n", r.Rating, r.Author, r.Comment)
	}
	return nil
}

func runReviewsAdd(envName string, review models.Review, opts ...ReviewsOption) error {
	if review.Rating < 1 || review.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	if err := validator.New().Struct(review); err != nil {
		return fmt.Errorf("invalid review: %w", err)
	}

	deps, err := resolveReviewsDeps(envName, opts)
	if err != nil {
		return err
	}

	bearer, err := requireToken(deps.tokens, deps.env)
	if err != nil {
		return err
	}

	if err := deps.api.CreateReview(context.Background(), bearer, review); err != nil {
		return fmt.Errorf("failed to submit review: %w", err)
	}

	fmt.Println("✓ Thanks for your review!")
	return nil
}
