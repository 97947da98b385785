package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inkwell/dashboard/internal/core/domain"
)

const (
	sessionCollection = "client_sessions"
	defaultSessionKey = "default"
)

// SessionStore keeps the credential and user record in a single document,
// so the pair is written and removed atomically.
type SessionStore struct {
	coll *mongo.Collection
	key  string
	log  zerolog.Logger
}

// NewSessionStore creates a Mongo-backed store. key identifies this
// client's document; empty uses "default".
func NewSessionStore(db *mongo.Database, key string, log zerolog.Logger) *SessionStore {
	if key == "" {
		key = defaultSessionKey
	}
	return &SessionStore{coll: db.Collection(sessionCollection), key: key, log: log}
}

type mongoUser struct {
	ID          string `bson:"id"`
	DisplayName string `bson:"name"`
	Email       string `bson:"email"`
	Role        string `bson:"role,omitempty"`
}

type sessionDoc struct {
	Key        string     `bson:"_id"`
	Credential string     `bson:"credential"`
	User       *mongoUser `bson:"user"`
	UpdatedAt  int64      `bson:"updated_at"`
}

func (s *SessionStore) Save(ctx context.Context, cred domain.Credential, user domain.UserRecord) error {
	if cred == "" {
		return errors.New("save session: empty credential")
	}
	doc := sessionDoc{
		Key:        s.key,
		Credential: string(cred),
		User: &mongoUser{
			ID:          user.ID,
			DisplayName: user.DisplayName,
			Email:       user.Email,
			Role:        user.Role.String(),
		},
		UpdatedAt: time.Now().UTC().Unix(),
	}

	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": s.key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the stored pair. An incomplete document is removed and
// reported as domain.ErrNoStoredSession.
func (s *SessionStore) Load(ctx context.Context) (domain.StoredSession, error) {
	var doc sessionDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": s.key}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.StoredSession{}, domain.ErrNoStoredSession
		}
		return domain.StoredSession{}, fmt.Errorf("load session: %w", err)
	}

	if doc.Credential == "" || doc.User == nil {
		s.log.Warn().Str("key", s.key).Msg("discarding incomplete stored session")
		if err := s.Clear(ctx); err != nil {
			return domain.StoredSession{}, err
		}
		return domain.StoredSession{}, domain.ErrNoStoredSession
	}

	role, _ := domain.ParseRole(doc.User.Role)
	user := domain.UserRecord{
		ID:          doc.User.ID,
		DisplayName: doc.User.DisplayName,
		Email:       doc.User.Email,
		Role:        role,
	}
	if !user.Valid() {
		if err := s.Clear(ctx); err != nil {
			return domain.StoredSession{}, err
		}
		return domain.StoredSession{}, domain.ErrNoStoredSession
	}
	return domain.StoredSession{Credential: domain.Credential(doc.Credential), User: user}, nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": s.key}); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}
