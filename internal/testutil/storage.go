package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/awesome/internal/db"
	"github.com/roach88/awesome/internal/partition"
	"github.com/roach88/awesome/internal/querysql"
	"github.com/roach88/awesome/internal/router"
	"github.com/roach88/awesome/internal/schema"
)

// AppDatabase and DefaultDatabase are the physical databases of Storage.
const (
	AppDatabase     = "awesome_app"
	DefaultDatabase = "default"
)

// Storage is a migrated two-database SQLite deployment: the application
// domain pinned to AppDatabase, everything else on DefaultDatabase.
type Storage struct {
	Pools    *db.Pools
	Chain    *router.Chain
	Registry *schema.Registry
}

// NewStorage creates Storage under t.TempDir and closes it on cleanup.
func NewStorage(t *testing.T) *Storage {
	t.Helper()
	dir := t.TempDir()

	pools, err := db.Open(context.Background(), nil,
		db.Source{Name: DefaultDatabase, Driver: db.DriverSQLite, DSN: filepath.Join(dir, "default.db")},
		db.Source{Name: AppDatabase, Driver: db.DriverSQLite, DSN: filepath.Join(dir, "awesome_app.db")},
	)
	if err != nil {
		t.Fatalf("open pools: %v", err)
	}
	t.Cleanup(func() { pools.Close() })

	app, err := router.New(schema.DomainApplication, AppDatabase)
	if err != nil {
		t.Fatalf("new router: %v", err)
	}
	chain, err := router.NewChain(DefaultDatabase, app)
	if err != nil {
		t.Fatalf("new chain: %v", err)
	}

	reg, err := schema.Application(schema.DefaultTablePrefix, partition.DefaultCount)
	if err != nil {
		t.Fatalf("register schema: %v", err)
	}

	if err := schema.NewMigrator(reg, chain, pools, nil).Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return &Storage{Pools: pools, Chain: chain, Registry: reg}
}

// Count returns the number of rows in table of the application database.
func (s *Storage) Count(t *testing.T, table string) int {
	t.Helper()
	conn, err := s.Pools.DB(AppDatabase)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	ident, err := querysql.Ident(table)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	var n int
	if err := conn.QueryRow("SELECT COUNT(*) FROM " + ident).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}
