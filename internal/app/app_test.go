package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/awesome/internal/config"
	"github.com/roach88/awesome/internal/errs"
	"github.com/roach88/awesome/internal/record"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg, err := config.Parse([]byte(`
databases:
  default: {driver: sqlite3, dsn: "` + filepath.Join(dir, "default.db") + `"}
  awesome_app: {driver: sqlite3, dsn: "` + filepath.Join(dir, "app.db") + `"}
routes:
  - {domain: application, database: awesome_app}
`))
	require.NoError(t, err)
	return cfg
}

func TestOpen_EndToEnd(t *testing.T) {
	ctx := context.Background()
	a, err := Open(ctx, sqliteConfig(t), nil)
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Cache)
	require.NoError(t, a.Migrate(ctx))
	assert.Len(t, a.Migrator.Plan("awesome_app"), 21)
	assert.Empty(t, a.Migrator.Plan("default"))

	reg, err := a.Accounts.Register(ctx, "o-1", 1, record.ProfileFields{})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), reg.UID)

	p, err := a.Accounts.Profile(ctx, reg.UID)
	require.NoError(t, err)
	assert.Equal(t, "0", p.Region)
}

func TestOpen_WithCache(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Cache.Addr = "127.0.0.1:0"

	a, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.Cache)
	assert.Equal(t, "RAWE_k", a.Cache.Key("k"))
}

func TestOpen_UnroutedApplication(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Routes = nil

	_, err := Open(context.Background(), cfg, nil)
	require.Error(t, err)
	assert.True(t, errs.IsConfiguration(err), "got %v", err)
}

func TestChain(t *testing.T) {
	cfg := sqliteConfig(t)
	chain, err := Chain(cfg)
	require.NoError(t, err)

	assert.Equal(t, "awesome_app", chain.Route("application"))
	assert.Equal(t, "default", chain.Route("unrelated_domain"))
}
