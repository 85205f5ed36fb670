// Package app wires the startup sequence together: network probe, backend
// cold-start wait, identity-provider state, auth bootstrap, and page
// initialization. All shared state lives on the App value; nothing here is
// a package-level variable.
package app

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/bookline-dev/bookline/internal/bootstrap"
	"github.com/bookline-dev/bookline/internal/config"
	"github.com/bookline-dev/bookline/internal/events"
	"github.com/bookline-dev/bookline/internal/identity"
	"github.com/bookline-dev/bookline/internal/netprobe"
	"github.com/bookline-dev/bookline/internal/notify"
	"github.com/bookline-dev/bookline/internal/router"
)

// App owns one client session from startup to teardown.
type App struct {
	cfg      *config.Config
	boot     *bootstrap.Bootstrapper
	registry *router.Registry
	prober   *netprobe.Prober
	monitor  *netprobe.Monitor
	provider identity.Provider
	bus      *events.Bus
	notifier notify.Notifier
	logger   zerolog.Logger

	// initialized is the one-shot latch: the startup sequence runs at most
	// once, so bootstrap passes never race each other.
	initialized atomic.Bool

	// passMu serializes the bootstrap passes triggered later by
	// auth:updated signals and provider state changes.
	passMu      sync.Mutex
	currentUser atomic.Pointer[identity.User]
	currentAuth atomic.Pointer[bootstrap.Result]

	unsubscribe func()
}

// Deps collects the collaborators for New.
type Deps struct {
	Config   *config.Config
	Boot     *bootstrap.Bootstrapper
	Registry *router.Registry
	Prober   *netprobe.Prober
	Monitor  *netprobe.Monitor
	Provider identity.Provider
	Bus      *events.Bus
	Notifier notify.Notifier
	Logger   zerolog.Logger
}

// New assembles an App. Nothing starts until Start is called.
func New(deps Deps) *App {
	a := &App{
		cfg:      deps.Config,
		boot:     deps.Boot,
		registry: deps.Registry,
		prober:   deps.Prober,
		monitor:  deps.Monitor,
		provider: deps.Provider,
		bus:      deps.Bus,
		notifier: deps.Notifier,
		logger:   deps.Logger,
	}
	a.bus.Subscribe(events.AuthUpdated, func(any) {
		a.refreshAuth(context.Background())
	})
	return a
}

// Start runs the startup sequence once and initializes the page resolved
// from path. Repeat calls are no-ops returning false.
func (a *App) Start(ctx context.Context, path string) bool {
	if !a.initialized.CompareAndSwap(false, true) {
		a.logger.Debug().Msg("Startup requested twice, ignoring")
		return false
	}

	// Step 1: reachability. An online machine with an unreachable backend
	// usually means a cold start, so wait it out before giving up.
	status := a.prober.Check(ctx)
	if status.Online && !status.BackendConnected {
		a.notifier.Notify(notify.Notification{
			Severity: notify.Info,
			Message:  "The booking service is starting up, one moment...",
		})
		waitCtx, cancel := context.WithTimeout(ctx, a.cfg.Probe.ColdStartUp)
		if err := a.prober.WaitForBackend(waitCtx); err != nil {
			a.logger.Warn().Err(err).Msg("Backend still unreachable after cold-start wait")
		}
		cancel()
	}

	// Step 2: identity-provider session state. The subscription fires
	// immediately with the current user and keeps firing on later changes.
	firstUser := make(chan *identity.User, 1)
	var delivered atomic.Bool
	a.unsubscribe = a.provider.OnAuthStateChanged(func(user *identity.User) {
		a.currentUser.Store(user)
		if delivered.CompareAndSwap(false, true) {
			firstUser <- user
			return
		}
		// Later session changes are announced on the bus; the auth:updated
		// subscription re-runs the bootstrap pass, same as any other
		// emitter of the signal.
		a.bus.Emit(events.AuthUpdated, user)
	})

	var user *identity.User
	select {
	case user = <-firstUser:
	case <-ctx.Done():
		return false
	}

	// Steps 3-4: token acquisition and the bootstrap pass.
	result := a.runPass(ctx, user)

	// Step 5: the long-lived connectivity monitor. It only reads
	// connectivity; auth state stays owned by the bootstrap passes.
	a.monitor.Start()

	a.bus.Emit(events.AppInitialized, result)

	// Step 6: resolve and initialize the requested page.
	page, ok := router.ParsePage(path)
	if !ok {
		a.notifier.Notify(notify.Notification{
			Severity: notify.Error,
			Message:  "The requested page does not exist.",
		})
		return false
	}

	if !a.registry.InitializePage(ctx, page, result) {
		return false
	}
	a.bus.Emit(events.AppPageReady, page)
	return true
}

// runPass executes one serialized bootstrap pass for user.
func (a *App) runPass(ctx context.Context, user *identity.User) bootstrap.Result {
	a.passMu.Lock()
	defer a.passMu.Unlock()

	providerToken := ""
	if user != nil {
		tok, err := a.provider.IDToken(ctx, false)
		if err != nil {
			a.logger.Warn().Err(err).Msg("Identity provider token acquisition failed")
		} else {
			providerToken = tok
		}
	}

	result := a.boot.Run(ctx, user, providerToken)
	a.currentAuth.Store(&result)
	return result
}

// refreshAuth re-runs the bootstrap pass with the latest session handle.
func (a *App) refreshAuth(ctx context.Context) {
	result := a.runPass(ctx, a.currentUser.Load())
	a.bus.Emit(events.AppInitialized, result)
}

// CurrentAuth returns the result of the most recent bootstrap pass, or a
// zero result before the first pass completes.
func (a *App) CurrentAuth() bootstrap.Result {
	if r := a.currentAuth.Load(); r != nil {
		return *r
	}
	return bootstrap.Result{}
}

// Shutdown stops the connectivity monitor and the provider subscription.
// Safe to call more than once.
func (a *App) Shutdown() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	a.monitor.Stop()
}
