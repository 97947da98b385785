package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/inkwell/dashboard/internal/core/domain"
)

const defaultPrefix = "dashboard:session:"

// SessionStore keeps the credential and the user record under two keys.
// Both are written in one MULTI/EXEC and read with one MGET, so readers
// never see half a pair.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	log    zerolog.Logger
}

// NewSessionStore creates a Redis-backed store. An empty prefix uses
// "dashboard:session:".
func NewSessionStore(client redis.UniversalClient, prefix string, log zerolog.Logger) *SessionStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &SessionStore{client: client, prefix: prefix, log: log}
}

func (s *SessionStore) credentialKey() string { return s.prefix + "credential" }
func (s *SessionStore) userKey() string       { return s.prefix + "user" }

func (s *SessionStore) Save(ctx context.Context, cred domain.Credential, user domain.UserRecord) error {
	if cred == "" {
		return errors.New("save session: empty credential")
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.credentialKey(), string(cred), 0)
		pipe.Set(ctx, s.userKey(), data, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}
	return nil
}

// Load returns the stored pair. A missing, partial or undecodable pair is
// cleared and reported as domain.ErrNoStoredSession.
func (s *SessionStore) Load(ctx context.Context) (domain.StoredSession, error) {
	vals, err := s.client.MGet(ctx, s.credentialKey(), s.userKey()).Result()
	if err != nil {
		return domain.StoredSession{}, fmt.Errorf("redis load session: %w", err)
	}

	cred, credOK := vals[0].(string)
	raw, userOK := vals[1].(string)
	if !credOK && !userOK {
		return domain.StoredSession{}, domain.ErrNoStoredSession
	}

	var user domain.UserRecord
	if credOK && userOK && cred != "" {
		if err := json.Unmarshal([]byte(raw), &user); err == nil && user.Valid() {
			return domain.StoredSession{Credential: domain.Credential(cred), User: user}, nil
		}
	}

	s.log.Warn().Bool("credential", credOK).Bool("user", userOK).Msg("discarding incomplete stored session")
	if err := s.Clear(ctx); err != nil {
		return domain.StoredSession{}, err
	}
	return domain.StoredSession{}, domain.ErrNoStoredSession
}

func (s *SessionStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.credentialKey(), s.userKey()).Err(); err != nil {
		return fmt.Errorf("redis clear session: %w", err)
	}
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
