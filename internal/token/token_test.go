package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mint builds an HS256 token expiring at exp with the given role claim.
func mint(t *testing.T, exp time.Time, role string) string {
	t.Helper()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestDecodeReadsExpiryAndRole(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	claims, err := Decode(mint(t, exp, "client"))

	require.NoError(t, err)
	assert.Equal(t, "client", claims.Role)
	assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode("not-a-token")
	assert.Error(t, err)
}

func TestDecodeRejectsMissingExpiry(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": "client",
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = Decode(signed)
	assert.Error(t, err)
}

func TestClassify(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		token string
		want  Freshness
	}{
		{"well before expiry", mint(t, now.Add(10*time.Minute), ""), Fresh},
		{"exactly at refresh window", mint(t, now.Add(RefreshWindow+time.Second), ""), Fresh},
		{"inside refresh window", mint(t, now.Add(3*time.Minute), ""), NearExpiry},
		{"just issued but short-lived", mint(t, now.Add(30*time.Second), ""), NearExpiry},
		{"already expired", mint(t, now.Add(-time.Minute), ""), Expired},
		{"undecodable token", "garbage", Expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.token, now))
		})
	}
}
