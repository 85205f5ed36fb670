package identity

import (
	"context"
	"errors"

	"github.com/bookline-dev/bookline/internal/cli/auth"
	"github.com/bookline-dev/bookline/internal/models"
)

// UserLoader reads the locally cached user record.
type UserLoader interface {
	LoadCachedUser() (*models.UserRecord, error)
}

// Local is the CLI's identity provider: the session exists exactly while a
// token is stored for the environment. Unlike a browser SDK there is no
// out-of-band session change, so the subscription fires once with the
// current state.
type Local struct {
	env    string
	tokens auth.TokenStore
	users  UserLoader
}

// NewLocal creates a Local provider for env.
func NewLocal(env string, tokens auth.TokenStore, users UserLoader) *Local {
	return &Local{env: env, tokens: tokens, users: users}
}

func (l *Local) currentUser() *User {
	if _, _, err := l.tokens.LoadToken(l.env); err != nil {
		return nil
	}
	user := &User{}
	if record, err := l.users.LoadCachedUser(); err == nil && record != nil {
		user.UID = record.ID
		user.Email = record.Email
	}
	return user
}

// OnAuthStateChanged implements Provider.
func (l *Local) OnAuthStateChanged(fn func(user *User)) func() {
	fn(l.currentUser())
	return func() {}
}

// IDToken implements Provider: the stored bearer token doubles as the
// provider credential.
func (l *Local) IDToken(ctx context.Context, forceRefresh bool) (string, error) {
	tokenValue, _, err := l.tokens.LoadToken(l.env)
	if err != nil {
		if errors.Is(err, auth.ErrNotAuthenticated) {
			return "", nil
		}
		return "", err
	}
	return tokenValue, nil
}

// SignOut implements Provider. The local session has no provider-side state
// beyond the token store, which the bootstrapper clears itself.
func (l *Local) SignOut(ctx context.Context) error {
	return nil
}
