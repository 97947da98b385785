package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromLookuper_Defaults(t *testing.T) {
	cfg, err := FromLookuper(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, ":8080", cfg.Dashboard.Listen)
	assert.Equal(t, "http://localhost:1337", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, BackendFile, cfg.Session.Backend)
	assert.True(t, strings.HasSuffix(cfg.Session.File, filepath.Join("inkwell-dashboard", "session.json")))
	assert.Equal(t, 24*time.Hour, cfg.DevAPI.TokenTTL)
	assert.Equal(t, 20, cfg.Dashboard.LoginRateLimit)
}

func TestFromLookuper_Overrides(t *testing.T) {
	cfg, err := FromLookuper(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":             "production",
		"API_BASE_URL":    "https://cms.example.com",
		"API_TIMEOUT":     "5s",
		"SESSION_BACKEND": "Redis",
		"REDIS_ADDR":      "cache:6380",
		"REDIS_DB":        "3",
	}))
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "https://cms.example.com", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, BackendRedis, cfg.Session.Backend)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestFromLookuper_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"backend":    {"SESSION_BACKEND": "sqlite"},
		"timeout":    {"API_TIMEOUT": "0s"},
		"bad number": {"REDIS_DB": "three"},
		"rate limit": {"LOGIN_RATE_LIMIT": "-1"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromLookuper(context.Background(), envconfig.MapLookuper(env))
			assert.Error(t, err)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DEVAPI_SEED_FILE=/tmp/seed.yaml\n"), 0o600))
	t.Setenv("DEVAPI_SEED_FILE", "")
	require.NoError(t, os.Unsetenv("DEVAPI_SEED_FILE"))

	cfg, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/seed.yaml", cfg.DevAPI.SeedFile)
}

func TestLoad_MissingEnvFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}
