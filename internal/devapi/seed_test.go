package devapi

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell/dashboard/internal/core/domain"
)

const seedYAML = `
users:
  - name: Editor
    email: editor@example.com
    password: editorpass
    role: super_admin
  - name: Reader
    email: reader@example.com
    password: readerpass
contents:
  - title: Seeded post
    description: Loaded from a fixture file
    body: Some body text
    status: Published
    author: editor@example.com
`

func TestLoadSeedAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))

	seed, err := LoadSeed(path)
	require.NoError(t, err)
	require.Len(t, seed.Users, 2)

	store := NewMemoryStore()
	auth := NewAuthService(store, "secret", time.Hour)
	require.NoError(t, seed.Apply(context.Background(), auth, store))

	editor, err := store.FindByEmail(context.Background(), "editor@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSuperAdmin, editor.Role)

	reader, err := store.FindByEmail(context.Background(), "reader@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleNone, reader.Role)

	items := store.ListContents(context.Background())
	require.Len(t, items, 1)
	assert.Equal(t, domain.ContentStatusPublished, items[0].Status)
	assert.Equal(t, "Editor", items[0].AuthorName)
	assert.NotNil(t, items[0].PublishedAt)
}

func TestSeedApply_UnknownRole(t *testing.T) {
	seed := &Seed{Users: []SeedUser{{Name: "X", Email: "x@example.com", Password: "password", Role: "owner"}}}
	store := NewMemoryStore()
	err := seed.Apply(context.Background(), NewAuthService(store, "secret", time.Hour), store)
	assert.ErrorContains(t, err, "unknown role")
}
