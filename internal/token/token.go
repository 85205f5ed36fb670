// Package token decodes the bearer tokens issued by the booking API. The
// client never verifies signatures (that is the backend's job); it only
// reads the expiry and role claims to decide between the verify and refresh
// paths.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RefreshWindow is how close to expiry a token must be before the client
// refreshes it instead of verifying it.
const RefreshWindow = 5 * time.Minute

// Claims are the token claims the client cares about.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Decode parses a bearer token without verifying its signature and returns
// the claims. Tokens without a decodable expiry are rejected.
func Decode(tokenString string) (*Claims, error) {
	parser := jwt.NewParser()
	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("token has no expiry claim")
	}
	return claims, nil
}

// Freshness describes how much life a token has left.
type Freshness int

const (
	// Expired means the expiry is in the past (or the token is undecodable).
	Expired Freshness = iota
	// NearExpiry means the token expires within RefreshWindow.
	NearExpiry
	// Fresh means the token has more than RefreshWindow of life left.
	Fresh
)

// Classify reports the freshness of tokenString at instant now. Decoding
// failures classify as Expired: an unreadable token gets the same
// refresh-first treatment as a stale one.
func Classify(tokenString string, now time.Time) Freshness {
	claims, err := Decode(tokenString)
	if err != nil {
		return Expired
	}
	remaining := claims.ExpiresAt.Time.Sub(now)
	switch {
	case remaining < 0:
		return Expired
	case remaining < RefreshWindow:
		return NearExpiry
	default:
		return Fresh
	}
}
