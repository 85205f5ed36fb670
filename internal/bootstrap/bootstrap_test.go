package bootstrap

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookline-dev/bookline/internal/cache"
	cliauth "github.com/bookline-dev/bookline/internal/cli/auth"
	"github.com/bookline-dev/bookline/internal/cli/client"
	"github.com/bookline-dev/bookline/internal/identity"
	"github.com/bookline-dev/bookline/internal/models"
	"github.com/bookline-dev/bookline/internal/notify"
	"github.com/bookline-dev/bookline/internal/token"
)

const testEnv = "production"

// fakeAPI scripts verify/refresh outcomes and counts calls.
type fakeAPI struct {
	mu           sync.Mutex
	verifyCalls  int
	refreshCalls int
	verifyResp   *client.AuthResponse
	verifyErr    error
	refreshResp  *client.AuthResponse
	refreshErr   error
}

func (f *fakeAPI) VerifyToken(ctx context.Context, bearer string) (*client.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verifyCalls++
	return f.verifyResp, f.verifyErr
}

func (f *fakeAPI) RefreshToken(ctx context.Context, bearer string) (*client.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	return f.refreshResp, f.refreshErr
}

func (f *fakeAPI) calls() (verify, refresh int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verifyCalls, f.refreshCalls
}

// fakeProvider counts sign-out side effects.
type fakeProvider struct {
	signOuts int
}

func (f *fakeProvider) SignOut(ctx context.Context) error {
	f.signOuts++
	return nil
}

// memUserCache is an in-memory UserCache.
type memUserCache struct {
	user *models.UserRecord
}

func (m *memUserCache) SaveCachedUser(user *models.UserRecord) error {
	m.user = user
	return nil
}

func (m *memUserCache) LoadCachedUser() (*models.UserRecord, error) {
	return m.user, nil
}

func (m *memUserCache) ClearCachedUser() error {
	m.user = nil
	return nil
}

type harness struct {
	api       *fakeAPI
	tokens    *cliauth.Memory
	cache     *cache.Cache
	provider  *fakeProvider
	notifier  *notify.Recorder
	users     *memUserCache
	redirects int
	boot      *Bootstrapper
}

func newHarness(api *fakeAPI) *harness {
	h := &harness{
		api:      api,
		tokens:   cliauth.NewMemory(),
		cache:    cache.New(cache.AuthStateTTL),
		provider: &fakeProvider{},
		notifier: &notify.Recorder{},
		users:    &memUserCache{},
	}
	h.boot = New(Deps{
		Env:      testEnv,
		API:      api,
		Tokens:   h.tokens,
		Cache:    h.cache,
		Provider: h.provider,
		Notifier: h.notifier,
		Users:    h.users,
		RedirectToSignIn: func() {
			h.redirects++
		},
		MaxAttempts: 1,
		BaseDelay:   time.Millisecond,
		Logger:      zerolog.Nop(),
	})
	return h
}

func mint(t *testing.T, exp time.Time, role string) string {
	t.Helper()
	claims := token.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func someUser() *identity.User {
	return &identity.User{UID: "u1", Email: "dana@example.com"}
}

func authResp(tok, role string) *client.AuthResponse {
	return &client.AuthResponse{
		Token: tok,
		User:  models.UserRecord{ID: "u1", Email: "dana@example.com", Role: role},
	}
}

func TestSignedOutClearsEverything(t *testing.T) {
	h := newHarness(&fakeAPI{})
	require.NoError(t, h.tokens.SaveToken(testEnv, "old-token", "client"))
	h.users.user = &models.UserRecord{ID: "u1"}
	h.cache.Put(CacheKey, &AuthState{Token: "old-token"})

	result := h.boot.Run(context.Background(), nil, "")

	assert.False(t, result.Authenticated)
	assert.Nil(t, result.User)
	assert.Equal(t, 0, h.tokens.Len())
	assert.Nil(t, h.users.user)
	assert.Equal(t, 0, h.cache.Len())
	assert.Equal(t, 1, h.provider.signOuts)
}

func TestSignedOutIsSafeOnEmptyState(t *testing.T) {
	h := newHarness(&fakeAPI{})

	result := h.boot.Run(context.Background(), nil, "")

	assert.False(t, result.Authenticated)
	assert.Equal(t, 1, h.provider.signOuts)
}

func TestFreshTokenUsesVerifyNeverRefresh(t *testing.T) {
	api := &fakeAPI{verifyResp: authResp("T2", "client")}
	h := newHarness(api)
	require.NoError(t, h.tokens.SaveToken(testEnv, mint(t, time.Now().Add(10*time.Minute), "client"), "client"))

	result := h.boot.Run(context.Background(), someUser(), "")

	require.True(t, result.Authenticated)
	verify, refresh := api.calls()
	assert.Equal(t, 1, verify)
	assert.Equal(t, 0, refresh)

	// Token Store ends holding the rotated credential.
	tok, role, err := h.tokens.LoadToken(testEnv)
	require.NoError(t, err)
	assert.Equal(t, "T2", tok)
	assert.Equal(t, "client", role)

	// Cache holds the fresh auth state.
	cached, ok := h.cache.Get(CacheKey)
	require.True(t, ok)
	state := cached.(*AuthState)
	assert.Equal(t, "T2", state.Token)
	assert.Equal(t, "client", state.User.Role)
	assert.WithinDuration(t, time.Now(), state.Timestamp, time.Second)
}

func TestNearExpiryTokenUsesRefreshNeverVerify(t *testing.T) {
	api := &fakeAPI{refreshResp: authResp("T3", "client")}
	h := newHarness(api)
	require.NoError(t, h.tokens.SaveToken(testEnv, mint(t, time.Now().Add(3*time.Minute), "client"), "client"))

	result := h.boot.Run(context.Background(), someUser(), "")

	require.True(t, result.Authenticated)
	verify, refresh := api.calls()
	assert.Equal(t, 0, verify)
	assert.Equal(t, 1, refresh)
}

func TestExpiredTokenRoutesLikeAbsentToken(t *testing.T) {
	expired := mint(t, time.Now().Add(-time.Minute), "client")

	for _, tc := range []struct {
		name   string
		stored string
	}{
		{"expired token", expired},
		{"absent token", ""},
		{"undecodable token", "garbage"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeAPI{verifyResp: authResp("T2", "client")}
			h := newHarness(api)
			if tc.stored != "" {
				require.NoError(t, h.tokens.SaveToken(testEnv, tc.stored, "client"))
			}

			result := h.boot.Run(context.Background(), someUser(), "provider-token")

			require.True(t, result.Authenticated)
			verify, refresh := api.calls()
			assert.Equal(t, 1, verify)
			assert.Equal(t, 0, refresh)
		})
	}
}

func TestRoleDefaultsToClient(t *testing.T) {
	api := &fakeAPI{verifyResp: authResp("T2", "")}
	h := newHarness(api)

	result := h.boot.Run(context.Background(), someUser(), "provider-token")

	require.True(t, result.Authenticated)
	assert.Equal(t, "client", result.User.Role)

	_, role, err := h.tokens.LoadToken(testEnv)
	require.NoError(t, err)
	assert.Equal(t, "client", role)
}

func TestCacheShortCircuitSkipsNetwork(t *testing.T) {
	api := &fakeAPI{verifyResp: authResp("T2", "client")}
	h := newHarness(api)
	require.NoError(t, h.tokens.SaveToken(testEnv, mint(t, time.Now().Add(10*time.Minute), "client"), "client"))

	first := h.boot.Run(context.Background(), someUser(), "")
	second := h.boot.Run(context.Background(), someUser(), "")

	assert.Equal(t, first, second)
	verify, refresh := api.calls()
	assert.Equal(t, 1, verify, "second pass must not hit the network")
	assert.Equal(t, 0, refresh)
}

func TestCacheIgnoredWhenStoredTokenDiffers(t *testing.T) {
	api := &fakeAPI{verifyResp: authResp("T2", "client")}
	h := newHarness(api)

	// Cached state from a previous flow, but the stored token has since
	// been rotated by another process.
	h.cache.Put(CacheKey, &AuthState{Token: "stale", User: &models.UserRecord{ID: "old"}})
	require.NoError(t, h.tokens.SaveToken(testEnv, mint(t, time.Now().Add(10*time.Minute), "client"), "client"))

	result := h.boot.Run(context.Background(), someUser(), "")

	require.True(t, result.Authenticated)
	verify, _ := api.calls()
	assert.Equal(t, 1, verify, "mismatched cache token must force a network pass")
	assert.Equal(t, "u1", result.User.ID)
}

func TestLastResortRefreshRescuesFailedVerify(t *testing.T) {
	api := &fakeAPI{
		verifyErr:   &client.APIError{Kind: client.KindNetwork, Message: "connection refused"},
		refreshResp: authResp("T4", "client"),
	}
	h := newHarness(api)

	result := h.boot.Run(context.Background(), someUser(), "provider-token")

	require.True(t, result.Authenticated)
	verify, refresh := api.calls()
	assert.Equal(t, 1, verify)
	assert.Equal(t, 1, refresh)

	tok, _, err := h.tokens.LoadToken(testEnv)
	require.NoError(t, err)
	assert.Equal(t, "T4", tok)
}

func TestDegradedModeWithCachedUser(t *testing.T) {
	netErr := &client.APIError{Kind: client.KindNetwork, Message: "connection refused"}
	api := &fakeAPI{verifyErr: netErr, refreshErr: netErr}
	h := newHarness(api)
	h.users.user = &models.UserRecord{ID: "u1", Email: "dana@example.com", Role: "client"}

	result := h.boot.Run(context.Background(), someUser(), "provider-token")

	assert.True(t, result.Authenticated)
	assert.True(t, result.Degraded)
	assert.Equal(t, "u1", result.User.ID)

	sent := h.notifier.All()
	require.Len(t, sent, 1, "degraded mode emits exactly one notification")
	assert.Equal(t, notify.Warning, sent[0].Severity)

	// Credentials survive a network failure.
	assert.Equal(t, 0, h.provider.signOuts)
}

func TestNetworkFailureWithoutCachedUser(t *testing.T) {
	netErr := &client.APIError{Kind: client.KindNetwork, Message: "connection refused"}
	api := &fakeAPI{verifyErr: netErr, refreshErr: netErr}
	h := newHarness(api)

	result := h.boot.Run(context.Background(), someUser(), "provider-token")

	assert.False(t, result.Authenticated)
	assert.False(t, result.Degraded)
	require.Len(t, h.notifier.All(), 1)
}

func TestUnauthorizedForcesSignOut(t *testing.T) {
	authErr := &client.APIError{Kind: client.KindUnauthorized, Status: 401, Message: "invalid token"}
	api := &fakeAPI{verifyErr: authErr, refreshErr: authErr}
	h := newHarness(api)
	require.NoError(t, h.tokens.SaveToken(testEnv, mint(t, time.Now().Add(10*time.Minute), "client"), "client"))
	h.users.user = &models.UserRecord{ID: "u1"}

	result := h.boot.Run(context.Background(), someUser(), "")

	assert.False(t, result.Authenticated)
	assert.Equal(t, 0, h.tokens.Len())
	assert.Nil(t, h.users.user)
	assert.Equal(t, 1, h.provider.signOuts)
	assert.Equal(t, 1, h.redirects)
	require.Len(t, h.notifier.All(), 1)
	assert.Equal(t, notify.Error, h.notifier.All()[0].Severity)
}

func TestUnknownErrorKeepsCredentials(t *testing.T) {
	oddErr := &client.APIError{Kind: client.KindUnknown, Status: 500, Message: "database exploded"}
	api := &fakeAPI{verifyErr: oddErr, refreshErr: oddErr}
	h := newHarness(api)
	stored := mint(t, time.Now().Add(10*time.Minute), "client")
	require.NoError(t, h.tokens.SaveToken(testEnv, stored, "client"))

	result := h.boot.Run(context.Background(), someUser(), "")

	assert.False(t, result.Authenticated)
	assert.Equal(t, 0, h.provider.signOuts)
	assert.Equal(t, 0, h.redirects)

	tok, _, err := h.tokens.LoadToken(testEnv)
	require.NoError(t, err)
	assert.Equal(t, stored, tok, "an unrelated glitch must not destroy the session")

	sent := h.notifier.All()
	require.Len(t, sent, 1)
	assert.Equal(t, notify.Critical, sent[0].Severity)
	assert.Contains(t, sent[0].Actions, "retry")
}

func TestEndToEndScenario(t *testing.T) {
	// Token with exp 10 minutes out: verify path once, T2/client persisted,
	// cache holds the new state.
	api := &fakeAPI{verifyResp: authResp("T2", "client")}
	h := newHarness(api)
	require.NoError(t, h.tokens.SaveToken(testEnv, mint(t, time.Now().Add(10*time.Minute), "client"), "client"))

	result := h.boot.Run(context.Background(), someUser(), "")

	require.True(t, result.Authenticated)
	verify, refresh := api.calls()
	assert.Equal(t, 1, verify)
	assert.Equal(t, 0, refresh)

	tok, role, err := h.tokens.LoadToken(testEnv)
	require.NoError(t, err)
	assert.Equal(t, "T2", tok)
	assert.Equal(t, "client", role)

	cached, ok := h.cache.Get(CacheKey)
	require.True(t, ok)
	state := cached.(*AuthState)
	assert.Equal(t, "T2", state.Token)
	assert.Equal(t, "client", state.User.Role)
}
