package config

import (
	"context"
	"log/slog"
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/civicsim/internal/persistence"
	"github.com/talgya/civicsim/internal/scenario"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 8080, cfg.APIPort)
	assert.Equal(t, 60, cfg.ReplayRate)
	assert.Equal(t, time.Hour, cfg.ReplayWindow)
	assert.Empty(t, cfg.ContentDB)
	assert.Empty(t, cfg.ContentFile)
	assert.Empty(t, cfg.CORSOrigins)
	assert.Empty(t, cfg.TrustedProxies)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CIVICSIM_API_PORT", "9090")
	t.Setenv("CIVICSIM_LOG_LEVEL", "debug")
	t.Setenv("CIVICSIM_API_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CIVICSIM_API_REPLAY_WINDOW", "15m")

	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.APIPort)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 15*time.Minute, cfg.ReplayWindow)
}

func TestLoadTrustedProxies(t *testing.T) {
	t.Setenv("CIVICSIM_API_TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.7, ::ffff:198.51.100.9")

	cfg, err := Load(New())
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.0.2.7/32"),
		netip.MustParsePrefix("198.51.100.9/32"),
	}, cfg.TrustedProxies)

	v := New()
	v.Set(KeyTrustedProxy, "not-an-ip")
	_, err = Load(v)
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "civicsim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: warn
api:
  port: 7000
  replay_rate: 5
  cors_origins:
    - https://civic.example
`), 0o644))

	v := New()
	require.NoError(t, ReadFile(v, path))
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, 7000, cfg.APIPort)
	assert.Equal(t, 5, cfg.ReplayRate)
	assert.Equal(t, []string{"https://civic.example"}, cfg.CORSOrigins)

	assert.Error(t, ReadFile(New(), filepath.Join(t.TempDir(), "missing.yaml")))
	assert.NoError(t, ReadFile(New(), ""))
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		key   string
		value any
	}{
		{KeyAPIPort, 0},
		{KeyAPIPort, 70000},
		{KeyReplayRate, 0},
		{KeyReplayWindow, "-1s"},
		{KeyLogLevel, "chatty"},
	}
	for _, tt := range tests {
		v := New()
		v.Set(tt.key, tt.value)
		_, err := Load(v)
		assert.Error(t, err, "%s=%v", tt.key, tt.value)
	}
}

func TestCatalogSources(t *testing.T) {
	ctx := context.Background()

	cat, err := Config{}.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, scenario.Default().Len(), cat.Len())

	dir := t.TempDir()
	file := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
scenarios:
  - id: one
    title: One
    description: The only one.
    choices:
      - id: agree
        text: Agree
        impact: {empathy: 4}
      - id: refuse
        text: Refuse
`), 0o644))
	cat, err = Config{ContentFile: file}.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Len())

	dbPath := filepath.Join(dir, "content.db")
	db, err := persistence.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.SaveCatalog(ctx, scenario.Default(), "embedded"))
	require.NoError(t, db.Close())

	// The store wins over the file.
	cat, err = Config{ContentDB: dbPath, ContentFile: file}.Catalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, cat.Len())

	_, err = Config{ContentDB: filepath.Join(dir, "empty.db")}.Catalog(ctx)
	assert.ErrorIs(t, err, persistence.ErrNoContent)
}
