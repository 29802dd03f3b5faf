package schema

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/awesome/internal/db"
	"github.com/roach88/awesome/internal/errs"
	"github.com/roach88/awesome/internal/router"
)

// Migrator creates the registered tables in the databases the router
// chain assigns them to.
type Migrator struct {
	registry *Registry
	chain    *router.Chain
	pools    *db.Pools
	logger   *zap.Logger
}

// NewMigrator creates a migrator. A nil logger discards output.
func NewMigrator(registry *Registry, chain *router.Chain, pools *db.Pools, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{registry: registry, chain: chain, pools: pools, logger: logger}
}

// Plan returns the definitions the chain allows in database, in
// registration order.
func (m *Migrator) Plan(database string) []Definition {
	var out []Definition
	for _, d := range m.registry.Definitions() {
		if m.chain.AllowMigrate(database, d.Domain) {
			out = append(out, d)
		}
	}
	return out
}

// Migrate migrates every open database concurrently.
func (m *Migrator) Migrate(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, name := range m.pools.Names() {
		name := name
		g.Go(func() error {
			return m.MigrateDatabase(ctx, name)
		})
	}
	return g.Wait()
}

// MigrateDatabase creates, in one transaction, every table Plan allows in
// database.
func (m *Migrator) MigrateDatabase(ctx context.Context, database string) error {
	return m.apply(ctx, database, m.Plan(database))
}

// MigrateDomain creates the tables of domain in database. Unlike Migrate,
// which silently skips refused combinations, an explicit request the
// routers refuse is a routing conflict.
func (m *Migrator) MigrateDomain(ctx context.Context, database, domain string) error {
	if err := m.chain.CheckMigrate(database, domain); err != nil {
		return err
	}
	defs := m.registry.ForDomain(domain)
	if len(defs) == 0 {
		return errs.Configuration("migrate", "no tables registered for domain %q", domain)
	}
	return m.apply(ctx, database, defs)
}

func (m *Migrator) apply(ctx context.Context, database string, defs []Definition) error {
	if len(defs) == 0 {
		m.logger.Debug("nothing to migrate", zap.String("database", database))
		return nil
	}

	driver, err := m.pools.Driver(database)
	if err != nil {
		return err
	}
	dialect, err := ParseDialect(driver)
	if err != nil {
		return err
	}

	stmts := make([]string, len(defs))
	for i, d := range defs {
		stmts[i], err = dialect.CreateTable(d)
		if err != nil {
			return err
		}
	}

	err = m.pools.WithTx(ctx, database, func(tx *sql.Tx) error {
		for i, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return errs.Storage("migrate "+database, fmt.Errorf("create %s: %w", defs[i].Name, err))
			}
			m.logger.Info("table ready",
				zap.String("database", database),
				zap.String("table", defs[i].Name))
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Info("database migrated",
		zap.String("database", database),
		zap.Int("tables", len(defs)))
	return nil
}
