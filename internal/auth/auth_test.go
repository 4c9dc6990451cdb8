package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

func testUser() domain.User {
	return domain.User{ID: uuid.New(), Email: "alice@example.com", Role: domain.UserRoleAdmin}
}

func TestTokens_RoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	u := testUser()

	raw, exp, err := tokens.Issue(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	id, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
	assert.True(t, id.IsAdmin())
}

func TestTokens_Verify_Rejects(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	valid, _, err := tokens.Issue(testUser())
	require.NoError(t, err)

	expired := NewTokens("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, err := expired.Issue(testUser())
	require.NoError(t, err)

	otherKey, _, err := NewTokens("other", time.Hour).Issue(testUser())
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject: uuid.NewString(), Issuer: issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"expired", stale},
		{"wrong key", otherKey},
		{"alg none", none},
		{"truncated", valid[:len(valid)-4]},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tokens.Verify(tc.raw)
			assert.ErrorIs(t, err, domain.ErrUnauthenticated)
		})
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	ok, err := CheckPassword(hash, "correct horse")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(hash, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = CheckPassword("not-a-hash", "x")
	assert.Error(t, err)
}

func TestContextIdentity(t *testing.T) {
	assert.Equal(t, uuid.Nil, UserID(context.Background()))

	id := Identity{UserID: uuid.New(), Role: domain.UserRoleUser}
	ctx := WithIdentity(context.Background(), id)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, id, got)
	assert.Equal(t, id.UserID, UserID(ctx))
	assert.False(t, got.IsAdmin())
}
