package auth_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/feria/backend/internal/infrastructure/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryBlacklistRevokesJTI(t *testing.T) {
	bl := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, bl.AddToBlacklist(ctx, "logout-caja-3", time.Hour))

	revoked, err := bl.IsBlacklisted(ctx, "logout-caja-3")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = bl.IsBlacklisted(ctx, "still-active-session")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryBlacklistEntryExpires(t *testing.T) {
	bl := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, bl.AddToBlacklist(ctx, "short-lived", time.Millisecond))
	time.Sleep(10 * time.Millisecond)

	// The entry outlives the token it revoked and is dropped on lookup.
	revoked, err := bl.IsBlacklisted(ctx, "short-lived")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryBlacklistUserWideRevocation(t *testing.T) {
	bl := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	issuedEarlier := time.Now().Add(-time.Hour)

	revoked, err := bl.IsUserTokenInvalidated(ctx, "seller-rosa", issuedEarlier)
	require.NoError(t, err)
	assert.False(t, revoked, "no revocation recorded yet")

	require.NoError(t, bl.AddUserTokensToBlacklist(ctx, "seller-rosa", time.Hour))

	revoked, err = bl.IsUserTokenInvalidated(ctx, "seller-rosa", issuedEarlier)
	require.NoError(t, err)
	assert.True(t, revoked, "token from before the password change must be rejected")

	time.Sleep(2 * time.Millisecond)
	revoked, err = bl.IsUserTokenInvalidated(ctx, "seller-rosa", time.Now())
	require.NoError(t, err)
	assert.False(t, revoked, "a token issued after the revocation stays valid")

	revoked, err = bl.IsUserTokenInvalidated(ctx, "seller-maria", issuedEarlier)
	require.NoError(t, err)
	assert.False(t, revoked, "other sellers keep their sessions")
}

func TestInMemoryBlacklistTracksManyTokens(t *testing.T) {
	bl := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, bl.AddToBlacklist(ctx, fmt.Sprintf("caja-%d-logout", i), time.Hour))
	}
	for i := 0; i < 10; i++ {
		revoked, err := bl.IsBlacklisted(ctx, fmt.Sprintf("caja-%d-logout", i))
		require.NoError(t, err)
		assert.True(t, revoked)
	}

	revoked, err := bl.IsBlacklisted(ctx, "caja-99-logout")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestBlacklistImplementations(t *testing.T) {
	var _ auth.TokenBlacklist = (*auth.InMemoryTokenBlacklist)(nil)
	var _ auth.TokenBlacklist = (*auth.RedisTokenBlacklist)(nil)
}
