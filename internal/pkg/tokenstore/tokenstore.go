// Package tokenstore persists refresh-token sessions in Redis: the
// hashed token plus the user-type tag, keyed by token ID. Records
// expire with the refresh token itself; revocation is deletion.
package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"padyai-portal/internal/core/domain"
)

var (
	ErrEmptyToken   = errors.New("token hash must not be empty")
	ErrExpired      = errors.New("session already expired")
	ErrNotFound     = errors.New("session not found")
	ErrVerification = errors.New("storage verification failed")
)

const (
	sessionPrefix = "session:"
	userPrefix    = "session:user:"
)

// Store is the persisted token store.
type Store struct {
	rdb *redis.Client
}

// New creates a token store backed by the given Redis client.
func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Set writes a session record and reads it back immediately, failing
// with ErrVerification if the echoed value does not match. An empty
// token hash is rejected before anything is written, so a prior record
// under the same ID is never clobbered.
func (s *Store) Set(ctx context.Context, tokenID string, sess domain.PersistedSession) error {
	if tokenID == "" || sess.TokenHash == "" {
		return ErrEmptyToken
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return err
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}

	key := sessionPrefix + tokenID
	if err := s.rdb.Set(ctx, key, payload, ttl).Err(); err != nil {
		return err
	}

	// verify the write round-trips; quota or eviction failures show up here
	echoed, err := s.rdb.Get(ctx, key).Result()
	if err != nil || echoed != string(payload) {
		return ErrVerification
	}

	// index by user for revoke-all
	if err := s.rdb.SAdd(ctx, userPrefix+itoa(sess.UserID), tokenID).Err(); err != nil {
		return err
	}
	return s.rdb.Expire(ctx, userPrefix+itoa(sess.UserID), ttl).Err()
}

// Get returns the stored session, or ErrNotFound.
func (s *Store) Get(ctx context.Context, tokenID string) (*domain.PersistedSession, error) {
	raw, err := s.rdb.Get(ctx, sessionPrefix+tokenID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var sess domain.PersistedSession
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Exists reports whether a session record is present.
func (s *Store) Exists(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, sessionPrefix+tokenID).Result()
	return n > 0, err
}

// Remove deletes a session record. Idempotent.
func (s *Store) Remove(ctx context.Context, tokenID string) error {
	return s.rdb.Del(ctx, sessionPrefix+tokenID).Err()
}

// RemoveAllForUser deletes every session of a user (logout-all).
func (s *Store) RemoveAllForUser(ctx context.Context, userID uint) error {
	setKey := userPrefix + itoa(userID)
	ids, err := s.rdb.SMembers(ctx, setKey).Result()
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.rdb.Del(ctx, sessionPrefix+id).Err(); err != nil {
			return err
		}
	}
	return s.rdb.Del(ctx, setKey).Err()
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
