// Package app assembles the storage layer from configuration.
package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/roach88/awesome/internal/account"
	"github.com/roach88/awesome/internal/cache"
	"github.com/roach88/awesome/internal/config"
	"github.com/roach88/awesome/internal/db"
	"github.com/roach88/awesome/internal/identity"
	"github.com/roach88/awesome/internal/record"
	"github.com/roach88/awesome/internal/router"
	"github.com/roach88/awesome/internal/schema"
)

// App holds every component of a configured process.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Pools    *db.Pools
	Chain    *router.Chain
	Registry *schema.Registry
	Migrator *schema.Migrator
	IDs      *identity.Generator
	Records  *record.Store
	Cache    *cache.Cache // nil when no cache is configured
	Accounts *account.Service
}

// Chain builds the router chain of cfg.
func Chain(cfg *config.Config) (*router.Chain, error) {
	routers := make([]router.Router, 0, len(cfg.Routes))
	for _, r := range cfg.Routes {
		rt, err := router.New(r.Domain, r.Database)
		if err != nil {
			return nil, err
		}
		routers = append(routers, rt)
	}
	return router.NewChain(cfg.DefaultDatabase, routers...)
}

// Open connects every database of cfg and builds the components. Tables
// are not created; call Migrate for that. Configuration errors abort.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	chain, err := Chain(cfg)
	if err != nil {
		return nil, err
	}
	reg, err := schema.Application(cfg.TablePrefix, cfg.PartitionCount)
	if err != nil {
		return nil, err
	}

	pools, err := db.Open(ctx, logger.Named("db"), cfg.Sources()...)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Pools:    pools,
		Chain:    chain,
		Registry: reg,
		Migrator: schema.NewMigrator(reg, chain, pools, logger.Named("migrate")),
	}

	a.IDs, err = identity.New(pools, chain, identity.Config{
		Table:       cfg.TablePrefix + schema.GlobalIDBase,
		Domain:      schema.DomainApplication,
		Blacklist:   cfg.Identity.Blacklist,
		MaxAttempts: cfg.Identity.MaxAttempts,
	}, identity.WithLogger(logger.Named("identity")))
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Records, err = record.New(pools, chain, reg,
		record.DefaultConfig(cfg.TablePrefix, cfg.PartitionCount),
		record.WithLogger(logger.Named("record")))
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []account.Option{account.WithLogger(logger.Named("account"))}
	if cfg.Cache.Enabled() {
		a.Cache = cache.New(cache.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			Prefix:   cfg.Cache.Prefix,
			TTL:      cfg.Cache.TTL,
		})
		opts = append(opts, account.WithCache(account.NewRedisProfiles(a.Cache)))
	}
	a.Accounts = account.New(a.IDs, a.Records, opts...)

	return a, nil
}

// Migrate creates the registered tables in their routed databases.
func (a *App) Migrate(ctx context.Context) error {
	return a.Migrator.Migrate(ctx)
}

// Close releases the cache client and every pool.
func (a *App) Close() error {
	if a.Cache != nil {
		a.Cache.Close()
	}
	return a.Pools.Close()
}
