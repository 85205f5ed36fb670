// Package identity defines the contract with the external identity
// provider. The client consumes exactly two operations: the session
// state-change subscription and provider token acquisition, plus the
// sign-out side effect.
package identity

import "context"

// User is the provider's handle for a signed-in session. A nil *User means
// signed out.
type User struct {
	UID   string
	Email string
}

// Provider is implemented by the identity SDK adapter.
type Provider interface {
	// OnAuthStateChanged registers fn to be called with the current user
	// handle (nil when signed out) immediately and on every subsequent
	// session change. It returns an unsubscribe function.
	OnAuthStateChanged(fn func(user *User)) (unsubscribe func())

	// IDToken returns a provider-issued token for the current session,
	// forcing a round-trip to the provider when forceRefresh is set.
	IDToken(ctx context.Context, forceRefresh bool) (string, error)

	// SignOut terminates the provider session.
	SignOut(ctx context.Context) error
}
