// Package bootstrap implements the client's authentication/session bootstrap
// sequence: given the identity provider's session state and whatever token
// is stored locally, it produces a single definite auth result for the page
// router, tolerating backend outages without forcing an unnecessary
// re-login.
package bootstrap

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookline-dev/bookline/internal/cache"
	cliauth "github.com/bookline-dev/bookline/internal/cli/auth"
	"github.com/bookline-dev/bookline/internal/cli/client"
	"github.com/bookline-dev/bookline/internal/identity"
	"github.com/bookline-dev/bookline/internal/models"
	"github.com/bookline-dev/bookline/internal/notify"
	"github.com/bookline-dev/bookline/internal/retry"
	"github.com/bookline-dev/bookline/internal/token"
)

// CacheKey is the response-cache key holding the last good auth state.
const CacheKey = "auth_state"

// Defaults for the remote-call retry schedule.
const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 500 * time.Millisecond
)

// API is the slice of the remote client the bootstrapper consumes.
type API interface {
	VerifyToken(ctx context.Context, bearer string) (*client.AuthResponse, error)
	RefreshToken(ctx context.Context, bearer string) (*client.AuthResponse, error)
}

// SignOuter is the identity provider's sign-out side effect.
type SignOuter interface {
	SignOut(ctx context.Context) error
}

// UserCache persists the last confirmed user record across runs; it backs
// degraded mode.
type UserCache interface {
	SaveCachedUser(user *models.UserRecord) error
	LoadCachedUser() (*models.UserRecord, error)
	ClearCachedUser() error
}

// Result is the outcome of one bootstrap pass. It is always definite: the
// router never sees an error from this package.
type Result struct {
	Authenticated bool
	User          *models.UserRecord
	// Degraded is set when Authenticated rests on a cached user record
	// because the backend was unreachable.
	Degraded bool
}

// AuthState is the cache entry written after a successful pass.
type AuthState struct {
	Token     string
	User      *models.UserRecord
	Timestamp time.Time
}

// Deps is the explicit context object injected into the bootstrapper; there
// is no package-level mutable state.
type Deps struct {
	Env              string
	API              API
	Tokens           cliauth.TokenStore
	Cache            *cache.Cache
	Provider         SignOuter
	Notifier         notify.Notifier
	Users            UserCache
	RedirectToSignIn func()
	MaxAttempts      int
	BaseDelay        time.Duration
	Logger           zerolog.Logger
	Now              func() time.Time
}

// Bootstrapper runs the auth bootstrap state machine. One pass per call; a
// pass is idempotent and, thanks to the cache short-circuit, cheap to
// repeat.
type Bootstrapper struct {
	deps Deps
}

// New creates a bootstrapper, applying retry defaults.
func New(deps Deps) *Bootstrapper {
	if deps.MaxAttempts <= 0 {
		deps.MaxAttempts = DefaultMaxAttempts
	}
	if deps.BaseDelay <= 0 {
		deps.BaseDelay = DefaultBaseDelay
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Bootstrapper{deps: deps}
}

// Run executes one bootstrap pass. user is the identity provider's session
// handle (nil when signed out); providerToken is the provider-issued token
// used when no usable local token exists.
func (b *Bootstrapper) Run(ctx context.Context, user *identity.User, providerToken string) Result {
	if user == nil {
		return b.signedOutPass(ctx)
	}
	return b.signedInPass(ctx, providerToken)
}

// signedOutPass clears every trace of the session. Terminal for this pass.
func (b *Bootstrapper) signedOutPass(ctx context.Context) Result {
	d := b.deps

	if err := d.Tokens.DeleteToken(d.Env); err != nil {
		d.Logger.Warn().Err(err).Msg("Failed to clear stored token on sign-out")
	}
	if err := d.Users.ClearCachedUser(); err != nil {
		d.Logger.Warn().Err(err).Msg("Failed to clear cached user on sign-out")
	}
	d.Cache.Reset()

	if err := d.Provider.SignOut(ctx); err != nil {
		d.Logger.Warn().Err(err).Msg("Identity provider sign-out failed")
	}

	return Result{Authenticated: false}
}

func (b *Bootstrapper) signedInPass(ctx context.Context, providerToken string) Result {
	d := b.deps

	storedToken, storedRole, loadErr := d.Tokens.LoadToken(d.Env)
	if loadErr != nil && !errors.Is(loadErr, cliauth.ErrNotAuthenticated) {
		d.Logger.Warn().Err(loadErr).Msg("Failed to read token store")
	}

	// Short-circuit: an unexpired cached auth state whose token matches the
	// stored token exactly answers the pass with zero network calls. The
	// token-equality check guards against another flow having rotated the
	// stored token since the state was cached.
	if cached, ok := d.Cache.Get(CacheKey); ok {
		if state, ok := cached.(*AuthState); ok && state.Token == storedToken {
			return Result{Authenticated: true, User: state.User}
		}
	}

	resp, err := b.acquireToken(ctx, storedToken, providerToken)
	if err != nil {
		return b.handleFailure(ctx, err)
	}

	userRecord := resp.User
	if userRecord.Role == "" {
		userRecord.Role = models.DefaultRole
	}

	if err := d.Tokens.SaveToken(d.Env, resp.Token, userRecord.Role); err != nil {
		d.Logger.Error().Err(err).Msg("Failed to persist refreshed token")
	}
	if err := d.Users.SaveCachedUser(&userRecord); err != nil {
		d.Logger.Warn().Err(err).Msg("Failed to persist cached user record")
	}

	d.Cache.Put(CacheKey, &AuthState{
		Token:     resp.Token,
		User:      &userRecord,
		Timestamp: d.Now(),
	})

	d.Logger.Debug().
		Str("role", userRecord.Role).
		Str("stored_role_before", storedRole).
		Msg("Auth bootstrap pass succeeded")

	return Result{Authenticated: true, User: &userRecord}
}

// acquireToken performs the verify/refresh decision and at most one
// last-resort refresh when the primary call fails.
func (b *Bootstrapper) acquireToken(ctx context.Context, storedToken, providerToken string) (*client.AuthResponse, error) {
	d := b.deps

	// The credential for the remote call: the stored token when one exists,
	// else the provider-issued token.
	bearer := storedToken
	if bearer == "" {
		bearer = providerToken
	}

	// An absent token and an expired (or undecodable) token take the same
	// route: verify with whatever credential we have and lean on the
	// refresh fallback when that fails. Only a token inside the refresh
	// window goes straight to refresh.
	primary := d.API.VerifyToken
	if storedToken != "" && token.Classify(storedToken, d.Now()) == token.NearExpiry {
		primary = d.API.RefreshToken
	}

	resp, err := retry.Do(ctx, func(ctx context.Context) (*client.AuthResponse, error) {
		return primary(ctx, bearer)
	}, d.MaxAttempts, d.BaseDelay)
	if err == nil {
		return resp, nil
	}

	// Last resort: exactly one refresh, never retried, never cascaded
	// further.
	d.Logger.Debug().Err(err).Msg("Primary token call failed, attempting last-resort refresh")
	resp, refreshErr := d.API.RefreshToken(ctx, bearer)
	if refreshErr == nil {
		return resp, nil
	}
	// Propagate the original failure unless the refresh produced a more
	// specific credential rejection.
	if client.KindOf(refreshErr) == client.KindUnauthorized {
		return nil, refreshErr
	}
	return nil, err
}

// handleFailure classifies the terminal error of a pass into one of three
// outcomes: degraded mode, forced sign-out, or a generic critical notice.
func (b *Bootstrapper) handleFailure(ctx context.Context, err error) Result {
	d := b.deps

	switch client.KindOf(err) {
	case client.KindNetwork:
		cachedUser, loadErr := d.Users.LoadCachedUser()
		if loadErr != nil {
			d.Logger.Warn().Err(loadErr).Msg("Failed to read cached user record")
		}
		if cachedUser != nil {
			d.Logger.Warn().Err(err).Msg("Backend unreachable, entering degraded mode")
			d.Notifier.Notify(notify.Notification{
				Severity: notify.Warning,
				Message:  "The booking service is unreachable. Working with saved account data; some features are unavailable.",
			})
			return Result{Authenticated: true, User: cachedUser, Degraded: true}
		}

		d.Notifier.Notify(notify.Notification{
			Severity: notify.Warning,
			Message:  "The booking service is unreachable and no saved session was found. Please try again once you are back online.",
		})
		return Result{Authenticated: false}

	case client.KindUnauthorized:
		if delErr := d.Tokens.DeleteToken(d.Env); delErr != nil {
			d.Logger.Warn().Err(delErr).Msg("Failed to clear rejected token")
		}
		if clearErr := d.Users.ClearCachedUser(); clearErr != nil {
			d.Logger.Warn().Err(clearErr).Msg("Failed to clear cached user record")
		}
		d.Cache.Invalidate(CacheKey)
		if soErr := d.Provider.SignOut(ctx); soErr != nil {
			d.Logger.Warn().Err(soErr).Msg("Identity provider sign-out failed")
		}

		d.Notifier.Notify(notify.Notification{
			Severity: notify.Error,
			Message:  "Your session is no longer valid. Please sign in again.",
		})
		if d.RedirectToSignIn != nil {
			d.RedirectToSignIn()
		}
		return Result{Authenticated: false}

	default:
		// Leave credentials alone: an unrelated glitch must not destroy a
		// valid session.
		d.Logger.Error().Err(err).Msg("Unexpected auth bootstrap failure")
		d.Notifier.Notify(notify.Notification{
			Severity: notify.Critical,
			Message:  "Something went wrong while checking your session.",
			Actions:  []string{"retry", "contact support"},
		})
		return Result{Authenticated: false}
	}
}
