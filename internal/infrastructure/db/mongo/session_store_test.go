package mongo

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/inkwell/dashboard/internal/core/domain"
)

// setupTestDB connects to TEST_MONGO_URI. Tests are skipped when it is unset
// or unreachable.
func setupTestDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	client, db, err := Connect(context.Background(), Config{URI: uri, Database: "dashboard_test", Timeout: 2 * time.Second})
	if err != nil {
		t.Skipf("MongoDB not available for testing: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return db
}

func newTestStore(t *testing.T) (*SessionStore, *mongo.Database) {
	db := setupTestDB(t)
	store := NewSessionStore(db, strings.ReplaceAll(t.Name(), "/", "_"), zerolog.Nop())
	t.Cleanup(func() { _ = store.Clear(context.Background()) })
	return store, db
}

func TestSessionStore_SaveLoadClear(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrNoStoredSession)

	user := domain.UserRecord{ID: "3", DisplayName: "Super Admin", Email: "superadmin@example.com", Role: domain.RoleSuperAdmin}
	require.NoError(t, store.Save(ctx, "tok-3", user))
	require.NoError(t, store.Save(ctx, "tok-4", user))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.Credential("tok-4"), got.Credential)
	assert.Equal(t, user, got.User)

	require.NoError(t, store.Clear(ctx))
	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrNoStoredSession)
	assert.NoError(t, store.Ping(ctx))
}

func TestSessionStore_IncompleteDocumentIsCleared(t *testing.T) {
	store, db := newTestStore(t)
	ctx := context.Background()

	_, err := db.Collection(sessionCollection).InsertOne(ctx, bson.M{"_id": store.key, "credential": "tok"})
	require.NoError(t, err)

	_, err = store.Load(ctx)
	assert.ErrorIs(t, err, domain.ErrNoStoredSession)

	n, err := db.Collection(sessionCollection).CountDocuments(ctx, bson.M{"_id": store.key})
	require.NoError(t, err)
	assert.Zero(t, n)
}
