// Package pages holds the production page modules behind the router: each
// one fetches what its page needs from the API and renders it to the
// command output. They are loaded lazily and cached by the registry.
package pages

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/bookline-dev/bookline/internal/cache"
	"github.com/bookline-dev/bookline/internal/cli/auth"
	"github.com/bookline-dev/bookline/internal/cli/client"
	"github.com/bookline-dev/bookline/internal/notify"
	"github.com/bookline-dev/bookline/internal/router"
)

// Deps are shared by every page module.
type Deps struct {
	API    *client.Client
	Tokens auth.TokenStore
	Env    string
	Out    io.Writer
}

// NewRegistry builds the full page table for the client.
func NewRegistry(deps Deps, moduleCache *cache.Cache, notifier notify.Notifier, redirectToSignIn func(), logger zerolog.Logger) *router.Registry {
	descriptors := map[router.Page]router.Descriptor{
		router.PageHome: {
			Title:  "Welcome",
			Loader: func(ctx context.Context) (router.Module, error) { return &homeModule{deps}, nil },
		},
		router.PageServices: {
			Title:  "Our services",
			Loader: func(ctx context.Context) (router.Module, error) { return &servicesModule{deps}, nil },
		},
		router.PageReviews: {
			Title:  "Reviews",
			Loader: func(ctx context.Context) (router.Module, error) { return &reviewsModule{deps}, nil },
		},
		router.PageContact: {
			Title:  "Contact us",
			Loader: func(ctx context.Context) (router.Module, error) { return &contactModule{deps}, nil },
		},
		router.PageAccount: {
			Title:        "Your account",
			AuthRequired: true,
			Loader:       func(ctx context.Context) (router.Module, error) { return newAccountModule(deps), nil },
		},
		router.PageDocuments: {
			Title:        "Your documents",
			AuthRequired: true,
			Loader:       func(ctx context.Context) (router.Module, error) { return &documentsModule{deps}, nil },
		},
		router.PageSignIn: {
			Title:  "Sign in",
			Loader: func(ctx context.Context) (router.Module, error) { return &staticModule{deps, "Sign in with: bookline login"}, nil },
		},
		router.PageSignUp: {
			Title:  "Create an account",
			Loader: func(ctx context.Context) (router.Module, error) { return &staticModule{deps, "Create an account with: bookline signup"}, nil },
		},
	}
	return router.NewRegistry(descriptors, moduleCache, notifier, redirectToSignIn, logger)
}

type homeModule struct {
	deps Deps
}

func (m *homeModule) Init(ctx context.Context, pc router.PageContext) error {
	if pc.Authenticated && pc.User != nil {
		fmt.Fprintf(m.deps.Out, "Welcome back, %s!\n\n", pc.User.FirstName)
	} else {
		fmt.Fprintln(m.deps.Out, "Welcome to Bookline!")
		fmt.Fprintln(m.deps.Out)
	}

	services, err := m.deps.API.ListServices(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.deps.Out, "We offer %d services. See them all with: bookline open services\n", len(services))
	return nil
}

type servicesModule struct {
	deps Deps
}

func (m *servicesModule) Init(ctx context.Context, pc router.PageContext) error {
	services, err := m.deps.API.ListServices(ctx)
	if err != nil {
		return err
	}

	if len(services) == 0 {
		fmt.Fprintln(m.deps.Out, "No services are currently listed.")
		return nil
	}

	w := tabwriter.NewWriter(m.deps.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERVICE\tDURATION\tPRICE")
	for _, s := range services {
		if !s.Active {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t$%.2f\n", s.Name, s.Duration, float64(s.PriceCents)/100)
	}
	return w.Flush()
}

type reviewsModule struct {
	deps Deps
}

func (m *reviewsModule) Init(ctx context.Context, pc router.PageContext) error {
	reviews, err := m.deps.API.ListReviews(ctx)
	if err != nil {
		return err
	}

	if len(reviews) == 0 {
		fmt.Fprintln(m.deps.Out, "No reviews yet.")
		return nil
	}

	for _, r := range reviews {
		stars := ""
		for i := 0; i < r.Rating; i++ {
			stars += "★"
		}
		fmt.Fprintf(m.deps.Out, "%s  %s\n  %s\n\n", stars, r.Author, r.Comment)
	}
	return nil
}

type contactModule struct {
	deps Deps
}

func (m *contactModule) Init(ctx context.Context, pc router.PageContext) error {
	fmt.Fprintln(m.deps.Out, "Send us a message with: bookline contacts add")
	return nil
}

// accountModule renders the profile header and delegates the independent
// page regions to sub-modules initialized concurrently.
type accountModule struct {
	deps Deps
	subs []router.Module
}

func newAccountModule(deps Deps) *accountModule {
	return &accountModule{
		deps: deps,
		subs: []router.Module{&documentsSummary{deps}},
	}
}

func (m *accountModule) Init(ctx context.Context, pc router.PageContext) error {
	if pc.User == nil {
		return fmt.Errorf("account page requires a user record")
	}
	fmt.Fprintf(m.deps.Out, "%s %s\n%s\nRole: %s\n",
		pc.User.FirstName, pc.User.LastName, pc.User.Email, pc.User.Role)
	return nil
}

func (m *accountModule) SubModules() []router.Module {
	return m.subs
}

type documentsSummary struct {
	deps Deps
}

func (m *documentsSummary) Init(ctx context.Context, pc router.PageContext) error {
	tokenValue, _, err := m.deps.Tokens.LoadToken(m.deps.Env)
	if err != nil {
		return err
	}
	docs, err := m.deps.API.ListDocuments(ctx, tokenValue)
	if err != nil {
		return err
	}
	fmt.Fprintf(m.deps.Out, "\nDocuments on file: %d\n", len(docs))
	return nil
}

type documentsModule struct {
	deps Deps
}

func (m *documentsModule) Init(ctx context.Context, pc router.PageContext) error {
	tokenValue, _, err := m.deps.Tokens.LoadToken(m.deps.Env)
	if err != nil {
		return err
	}
	docs, err := m.deps.API.ListDocuments(ctx, tokenValue)
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		fmt.Fprintln(m.deps.Out, "No documents on file.")
		fmt.Fprintln(m.deps.Out, "\nUpload one with: bookline documents add <file>")
		return nil
	}

	w := tabwriter.NewWriter(m.deps.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tKIND\tUPLOADED")
	for _, d := range docs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.ID, d.Name, d.Kind, d.UploadedAt.Format("2006-01-02"))
	}
	return w.Flush()
}

type staticModule struct {
	deps Deps
	text string
}

func (m *staticModule) Init(ctx context.Context, pc router.PageContext) error {
	fmt.Fprintln(m.deps.Out, m.text)
	return nil
}
