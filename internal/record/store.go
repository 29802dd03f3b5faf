// Package record reads and writes per-uid records on their partitions.
//
// Every operation resolves the partition table from the uid
// (uid mod partition count) and the physical database from the entity's
// domain, then runs one parameterized statement on a connection checked
// out for that call. Two entity kinds exist: profiles and uid mappings.
//
// The store never generates uids and never touches a cache; callers
// compose those around it.
package record

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/awesome/internal/db"
	"github.com/roach88/awesome/internal/errs"
	"github.com/roach88/awesome/internal/partition"
	"github.com/roach88/awesome/internal/querysql"
	"github.com/roach88/awesome/internal/router"
	"github.com/roach88/awesome/internal/schema"
)

// Entity locates one partitioned entity kind.
type Entity struct {
	Base       string // table name before the partition index
	Domain     string
	Partitions int
}

// Config lists the entity kinds the store serves.
type Config struct {
	Profiles Entity
	Mappings Entity
}

// DefaultConfig returns the application tables under prefix, split into
// partitions tables each.
func DefaultConfig(prefix string, partitions int) Config {
	return Config{
		Profiles: Entity{Base: prefix + schema.UserInfoBase, Domain: schema.DomainApplication, Partitions: partitions},
		Mappings: Entity{Base: prefix + schema.UIDOpenIDBase, Domain: schema.DomainApplication, Partitions: partitions},
	}
}

// Store performs record reads and writes.
type Store struct {
	pools    *db.Pools
	profiles target
	mappings target
	now      func() time.Time
	logger   *zap.Logger
}

// target is an Entity resolved to its physical database.
type target struct {
	Entity
	database string
}

func (t target) table(uid uint64) (string, error) {
	return partition.TableName(t.Base, uid, t.Partitions)
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock stamping written rows.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates a store. Each entity's partitions must all be registered
// under its domain, and the domain must be routed.
func New(pools *db.Pools, chain *router.Chain, reg *schema.Registry, cfg Config, opts ...Option) (*Store, error) {
	profiles, err := resolve(chain, reg, cfg.Profiles)
	if err != nil {
		return nil, err
	}
	mappings, err := resolve(chain, reg, cfg.Mappings)
	if err != nil {
		return nil, err
	}

	s := &Store{
		pools:    pools,
		profiles: profiles,
		mappings: mappings,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func resolve(chain *router.Chain, reg *schema.Registry, e Entity) (target, error) {
	const op = "new record store"
	if e.Partitions <= 0 {
		return target{}, errs.Configuration(op, "%s: partition count must be positive, got %d", e.Base, e.Partitions)
	}
	for i := 0; i < e.Partitions; i++ {
		name := partition.Name(e.Base, i)
		def, ok := reg.Lookup(name)
		if !ok {
			return target{}, errs.Configuration(op, "table %q is not registered", name)
		}
		if def.Domain != e.Domain {
			return target{}, errs.Configuration(op, "table %q belongs to domain %q, not %q", name, def.Domain, e.Domain)
		}
	}
	database, err := chain.MustRoute(e.Domain)
	if err != nil {
		return target{}, err
	}
	return target{Entity: e, database: database}, nil
}

// queryRow runs q on database and scans its single row. No row is a
// NotFound error.
func (s *Store) queryRow(ctx context.Context, op, database string, q querysql.Select, dest ...any) error {
	query, args, err := querysql.Compile(q)
	if err != nil {
		return errs.Configuration(op, "%v", err)
	}
	return s.pools.WithConn(ctx, database, func(conn *sql.Conn) error {
		return scanRow(conn.QueryRowContext(ctx, query, args...), op, dest...)
	})
}

func scanRow(row *sql.Row, op string, dest ...any) error {
	err := row.Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return errs.NotFound(op, "no row")
	}
	if err != nil {
		return errs.Storage(op, err)
	}
	return nil
}

// exec runs a write statement on database.
func (s *Store) exec(ctx context.Context, op, database string, q querysql.Query) error {
	query, args, err := querysql.Compile(q)
	if err != nil {
		return errs.Configuration(op, "%v", err)
	}
	return s.pools.WithConn(ctx, database, func(conn *sql.Conn) error {
		if _, err := conn.ExecContext(ctx, query, args...); err != nil {
			return errs.Storage(op, err)
		}
		return nil
	})
}

// text normalizes v to NFC and checks it fits a column of size characters.
func text(op, field, v string, size int) (string, error) {
	v = norm.NFC.String(v)
	if n := len([]rune(v)); n > size {
		return "", errs.Validation(op, "%s is %d characters, at most %d allowed", field, n, size)
	}
	return v, nil
}

func unix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
