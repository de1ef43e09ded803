package tokenstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"padyai-portal/internal/core/domain"
)

func newStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(rdb), mr
}

func session(userID uint, role domain.Role, hash string) domain.PersistedSession {
	return domain.PersistedSession{
		UserID:    userID,
		UserType:  role,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	want := session(7, domain.RoleStudent, "abc123")
	require.NoError(t, store.Set(ctx, "tok-1", want))

	got, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, want.TokenHash, got.TokenHash)
	assert.Equal(t, domain.RoleStudent, got.UserType)
	assert.Equal(t, uint(7), got.UserID)

	ok, err := store.Exists(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSetEmptyTokenDoesNotClobber(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	prior := session(7, domain.RoleSociety, "prior-hash")
	require.NoError(t, store.Set(ctx, "tok-1", prior))

	err := store.Set(ctx, "tok-1", session(7, domain.RoleSociety, ""))
	assert.ErrorIs(t, err, ErrEmptyToken)

	got, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "prior-hash", got.TokenHash, "failed set must not alter the stored value")
}

func TestSetExpiredSessionRejected(t *testing.T) {
	store, _ := newStore(t)

	sess := session(1, domain.RoleStudent, "h")
	sess.ExpiresAt = time.Now().Add(-time.Minute)
	assert.ErrorIs(t, store.Set(context.Background(), "tok-x", sess), ErrExpired)
}

func TestGetMissing(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveIdempotent(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "tok-1", session(2, domain.RoleStudent, "h")))
	require.NoError(t, store.Remove(ctx, "tok-1"))
	require.NoError(t, store.Remove(ctx, "tok-1"))

	ok, err := store.Exists(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRemoveAllForUser(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "tok-1", session(9, domain.RoleSociety, "h1")))
	require.NoError(t, store.Set(ctx, "tok-2", session(9, domain.RoleSociety, "h2")))
	require.NoError(t, store.Set(ctx, "tok-3", session(10, domain.RoleStudent, "h3")))

	require.NoError(t, store.RemoveAllForUser(ctx, 9))

	_, err := store.Get(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(ctx, "tok-2")
	assert.ErrorIs(t, err, ErrNotFound)

	// other users untouched
	_, err = store.Get(ctx, "tok-3")
	assert.NoError(t, err)
}

func TestRecordExpiresWithToken(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	sess := session(3, domain.RoleStudent, "h")
	sess.ExpiresAt = time.Now().Add(time.Minute)
	require.NoError(t, store.Set(ctx, "tok-1", sess))

	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrNotFound)
}
