package app

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookline-dev/bookline/internal/bootstrap"
	"github.com/bookline-dev/bookline/internal/cache"
	cliauth "github.com/bookline-dev/bookline/internal/cli/auth"
	"github.com/bookline-dev/bookline/internal/cli/client"
	"github.com/bookline-dev/bookline/internal/config"
	"github.com/bookline-dev/bookline/internal/events"
	"github.com/bookline-dev/bookline/internal/identity"
	"github.com/bookline-dev/bookline/internal/models"
	"github.com/bookline-dev/bookline/internal/netprobe"
	"github.com/bookline-dev/bookline/internal/notify"
	"github.com/bookline-dev/bookline/internal/router"
)

// fakeProvider drives the identity session from tests.
type fakeProvider struct {
	user     atomic.Pointer[identity.User]
	idToken  string
	handlers []func(*identity.User)
	signOuts atomic.Int32
}

func (f *fakeProvider) OnAuthStateChanged(fn func(user *identity.User)) func() {
	f.handlers = append(f.handlers, fn)
	fn(f.user.Load())
	return func() {}
}

func (f *fakeProvider) IDToken(ctx context.Context, forceRefresh bool) (string, error) {
	return f.idToken, nil
}

func (f *fakeProvider) SignOut(ctx context.Context) error {
	f.signOuts.Add(1)
	return nil
}

func (f *fakeProvider) changeUser(user *identity.User) {
	f.user.Store(user)
	for _, fn := range f.handlers {
		fn(user)
	}
}

// fakeAuthAPI always verifies successfully and serves health probes.
type fakeAuthAPI struct {
	verifies atomic.Int32
}

func (f *fakeAuthAPI) VerifyToken(ctx context.Context, bearer string) (*client.AuthResponse, error) {
	f.verifies.Add(1)
	return &client.AuthResponse{
		Token: "T2",
		User:  models.UserRecord{ID: "u1", Email: "dana@example.com", Role: "client"},
	}, nil
}

func (f *fakeAuthAPI) RefreshToken(ctx context.Context, bearer string) (*client.AuthResponse, error) {
	return f.VerifyToken(ctx, bearer)
}

func (f *fakeAuthAPI) Health(ctx context.Context) error {
	return nil
}

type memUserCache struct {
	user *models.UserRecord
}

func (m *memUserCache) SaveCachedUser(u *models.UserRecord) error { m.user = u; return nil }
func (m *memUserCache) LoadCachedUser() (*models.UserRecord, error) {
	return m.user, nil
}
func (m *memUserCache) ClearCachedUser() error { m.user = nil; return nil }

type homeModule struct {
	inits atomic.Int32
}

func (h *homeModule) Init(ctx context.Context, pc router.PageContext) error {
	h.inits.Add(1)
	return nil
}

func newTestApp(provider *fakeProvider, api *fakeAuthAPI) (*App, *homeModule, *notify.Recorder, *events.Bus) {
	logger := zerolog.Nop()
	notifier := &notify.Recorder{}
	bus := events.NewBus()

	authCache := cache.New(cache.AuthStateTTL)
	boot := bootstrap.New(bootstrap.Deps{
		Env:         "production",
		API:         api,
		Tokens:      cliauth.NewMemory(),
		Cache:       authCache,
		Provider:    provider,
		Notifier:    notifier,
		Users:       &memUserCache{},
		MaxAttempts: 1,
		BaseDelay:   time.Millisecond,
		Logger:      logger,
	})

	home := &homeModule{}
	registry := router.NewRegistry(map[router.Page]router.Descriptor{
		router.PageHome: {
			Loader: func(ctx context.Context) (router.Module, error) {
				return home, nil
			},
			Title: "Welcome",
		},
	}, cache.New(cache.PageModuleTTL), notifier, nil, logger)

	prober := netprobe.New(api, 10*time.Millisecond, logger)
	prober.SetOnlineCheck(func() bool { return true })
	monitor := netprobe.NewMonitor(prober, notifier, time.Hour, logger)

	cfg := &config.Config{}
	cfg.Probe.ColdStartUp = 100 * time.Millisecond

	a := New(Deps{
		Config:   cfg,
		Boot:     boot,
		Registry: registry,
		Prober:   prober,
		Monitor:  monitor,
		Provider: provider,
		Bus:      bus,
		Notifier: notifier,
		Logger:   logger,
	})
	return a, home, notifier, bus
}

func TestStartInitializesPage(t *testing.T) {
	provider := &fakeProvider{idToken: "provider-token"}
	provider.user.Store(&identity.User{UID: "u1"})
	api := &fakeAuthAPI{}
	a, home, _, bus := newTestApp(provider, api)
	defer a.Shutdown()

	var initialized, pageReady atomic.Int32
	bus.Subscribe(events.AppInitialized, func(any) { initialized.Add(1) })
	bus.Subscribe(events.AppPageReady, func(any) { pageReady.Add(1) })

	ok := a.Start(context.Background(), "/")

	require.True(t, ok)
	assert.Equal(t, int32(1), home.inits.Load())
	assert.Equal(t, int32(1), initialized.Load())
	assert.Equal(t, int32(1), pageReady.Load())
	assert.True(t, a.CurrentAuth().Authenticated)
}

func TestStartIsOneShot(t *testing.T) {
	provider := &fakeProvider{}
	api := &fakeAuthAPI{}
	a, home, _, _ := newTestApp(provider, api)
	defer a.Shutdown()

	require.True(t, a.Start(context.Background(), "/"))
	assert.False(t, a.Start(context.Background(), "/"), "second start must be a no-op")
	assert.Equal(t, int32(1), home.inits.Load())
}

func TestSignedOutStart(t *testing.T) {
	provider := &fakeProvider{} // nil user
	api := &fakeAuthAPI{}
	a, home, _, _ := newTestApp(provider, api)
	defer a.Shutdown()

	ok := a.Start(context.Background(), "/")

	require.True(t, ok, "home page has no auth requirement")
	assert.False(t, a.CurrentAuth().Authenticated)
	assert.Equal(t, int32(1), home.inits.Load())
	assert.Equal(t, int32(0), api.verifies.Load())
	assert.Equal(t, int32(1), provider.signOuts.Load())
}

func TestAuthUpdatedRerunsBootstrap(t *testing.T) {
	provider := &fakeProvider{idToken: "provider-token"}
	provider.user.Store(&identity.User{UID: "u1"})
	api := &fakeAuthAPI{}
	a, _, _, bus := newTestApp(provider, api)
	defer a.Shutdown()

	require.True(t, a.Start(context.Background(), "/"))
	first := api.verifies.Load()

	bus.Emit(events.AuthUpdated, nil)

	// The cached auth state answers the repeat pass without new network
	// calls while it is fresh and the token unchanged.
	assert.Equal(t, first, api.verifies.Load())
	assert.True(t, a.CurrentAuth().Authenticated)
}

func TestProviderSignOutPropagates(t *testing.T) {
	provider := &fakeProvider{idToken: "provider-token"}
	provider.user.Store(&identity.User{UID: "u1"})
	api := &fakeAuthAPI{}
	a, _, _, _ := newTestApp(provider, api)
	defer a.Shutdown()

	require.True(t, a.Start(context.Background(), "/"))
	require.True(t, a.CurrentAuth().Authenticated)

	provider.changeUser(nil)

	assert.False(t, a.CurrentAuth().Authenticated)
	assert.Equal(t, int32(1), provider.signOuts.Load())
}

func TestProviderChangeEmitsAuthUpdated(t *testing.T) {
	provider := &fakeProvider{idToken: "provider-token"}
	provider.user.Store(&identity.User{UID: "u1"})
	api := &fakeAuthAPI{}
	a, _, _, bus := newTestApp(provider, api)
	defer a.Shutdown()

	var updates atomic.Int32
	bus.Subscribe(events.AuthUpdated, func(any) { updates.Add(1) })

	require.True(t, a.Start(context.Background(), "/"))
	assert.Equal(t, int32(0), updates.Load(), "startup itself is not a session change")

	provider.changeUser(nil)

	assert.Equal(t, int32(1), updates.Load())
	assert.False(t, a.CurrentAuth().Authenticated)
}
