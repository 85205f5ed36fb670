// Package router maps page names to typed module descriptors, enforces
// their auth requirements, and lazily loads and initializes page modules.
package router

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookline-dev/bookline/internal/bootstrap"
	"github.com/bookline-dev/bookline/internal/cache"
	"github.com/bookline-dev/bookline/internal/models"
	"github.com/bookline-dev/bookline/internal/notify"
)

// Page is the closed set of page identifiers. Unknown paths never map to a
// Page; lookup failures are definite and handled, not improvised.
type Page int

const (
	PageHome Page = iota
	PageServices
	PageContact
	PageReviews
	PageAccount
	PageDocuments
	PageSignIn
	PageSignUp
)

func (p Page) String() string {
	switch p {
	case PageHome:
		return "home"
	case PageServices:
		return "services"
	case PageContact:
		return "contact"
	case PageReviews:
		return "reviews"
	case PageAccount:
		return "account"
	case PageDocuments:
		return "documents"
	case PageSignIn:
		return "signin"
	case PageSignUp:
		return "signup"
	default:
		return "unknown"
	}
}

// ParsePage resolves a URL path to a page identifier: last path segment,
// ".html" suffix stripped, root path mapping to the home page.
func ParsePage(path string) (Page, bool) {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return PageHome, true
	}
	segments := strings.Split(trimmed, "/")
	name := strings.TrimSuffix(segments[len(segments)-1], ".html")

	for _, p := range []Page{PageHome, PageServices, PageContact, PageReviews, PageAccount, PageDocuments, PageSignIn, PageSignUp} {
		if p.String() == name {
			return p, true
		}
	}
	return 0, false
}

// PageContext is handed to every module init.
type PageContext struct {
	Page          Page
	Authenticated bool
	User          *models.UserRecord
}

// Module is a lazily loaded page module.
type Module interface {
	Init(ctx context.Context, pc PageContext) error
}

// SubModuled is implemented by modules composed of independent sub-modules
// that initialize concurrently with the parent.
type SubModuled interface {
	SubModules() []Module
}

// Descriptor is the static record for one page. Descriptors are built once
// at startup and never mutated.
type Descriptor struct {
	Loader       func(ctx context.Context) (Module, error)
	AuthRequired bool
	Title        string
}

// Registry resolves pages to descriptors and drives initialization.
type Registry struct {
	descriptors      map[Page]Descriptor
	cache            *cache.Cache
	notifier         notify.Notifier
	redirectToSignIn func()
	logger           zerolog.Logger
}

// NewRegistry builds the registry from the given descriptor table.
func NewRegistry(descriptors map[Page]Descriptor, moduleCache *cache.Cache, notifier notify.Notifier, redirectToSignIn func(), logger zerolog.Logger) *Registry {
	return &Registry{
		descriptors:      descriptors,
		cache:            moduleCache,
		notifier:         notifier,
		redirectToSignIn: redirectToSignIn,
		logger:           logger,
	}
}

// Lookup returns the descriptor for page, reporting absence instead of
// panicking on unregistered pages.
func (r *Registry) Lookup(page Page) (Descriptor, bool) {
	d, ok := r.descriptors[page]
	return d, ok
}

// InitializePage enforces the page's auth requirement, lazily loads its
// module through the cache, and runs the module plus its sub-modules
// concurrently. It never returns an error: every failure is caught,
// notified, and reported as false.
func (r *Registry) InitializePage(ctx context.Context, page Page, auth bootstrap.Result) bool {
	desc, ok := r.Lookup(page)
	if !ok {
		r.notifier.Notify(notify.Notification{
			Severity: notify.Error,
			Message:  "The requested page does not exist.",
		})
		return false
	}

	if desc.AuthRequired && !auth.Authenticated {
		r.notifier.Notify(notify.Notification{
			Severity: notify.Warning,
			Message:  "Please sign in to view this page.",
		})
		if r.redirectToSignIn != nil {
			r.redirectToSignIn()
		}
		return false
	}

	module, err := r.loadModule(ctx, page, desc)
	if err != nil {
		r.logger.Error().Err(err).Stringer("page", page).Msg("Page module load failed")
		r.notifier.Notify(notify.Notification{
			Severity: notify.Error,
			Message:  "Failed to load the page. Please try again.",
		})
		return false
	}

	pc := PageContext{
		Page:          page,
		Authenticated: auth.Authenticated,
		User:          auth.User,
	}

	mods := []Module{module}
	if sm, ok := module.(SubModuled); ok {
		mods = append(mods, sm.SubModules()...)
	}

	// Sub-modules own distinct page regions, so their inits run
	// concurrently and join before the page is declared ready. A failing
	// module never prevents its siblings from completing.
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0

	start := time.Now()
	for _, m := range mods {
		wg.Add(1)
		go func(m Module) {
			defer wg.Done()
			if err := m.Init(ctx, pc); err != nil {
				r.logger.Error().Err(err).Stringer("page", page).Msg("Page module init failed")
				r.notifier.Notify(notify.Notification{
					Severity: notify.Error,
					Message:  "Part of the page failed to load.",
				})
				mu.Lock()
				failed++
				mu.Unlock()
			}
		}(m)
	}
	wg.Wait()

	r.logger.Debug().
		Stringer("page", page).
		Int("modules", len(mods)).
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("Page initialization finished")

	return failed == 0
}

// loadModule fetches the page module through the response cache so repeat
// visits skip the loader.
func (r *Registry) loadModule(ctx context.Context, page Page, desc Descriptor) (Module, error) {
	key := "module:" + page.String()
	if cached, ok := r.cache.Get(key); ok {
		if m, ok := cached.(Module); ok {
			return m, nil
		}
	}

	module, err := desc.Loader(ctx)
	if err != nil {
		return nil, err
	}
	r.cache.Put(key, module)
	return module, nil
}
