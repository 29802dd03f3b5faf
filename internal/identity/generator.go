// Package identity issues globally unique uids.
//
// Uniqueness comes from the storage engine: every attempt inserts a
// timestamped row into the identity table and takes the auto-increment
// value as the candidate. Candidates on the blacklist (reserved and test
// values) are discarded and the row is kept, so a discarded counter value
// is consumed for good. The generator holds no lock; concurrent callers
// rely on the engine's atomic increment.
package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/awesome/internal/db"
	"github.com/roach88/awesome/internal/errs"
	"github.com/roach88/awesome/internal/querysql"
	"github.com/roach88/awesome/internal/router"
	"github.com/roach88/awesome/internal/schema"
)

// DefaultBlacklist is the set of uids never handed out.
var DefaultBlacklist = []uint64{2, 4, 5, 7, 8, 9, 10}

// ErrAttemptsExhausted is wrapped in the storage error returned when
// MaxAttempts candidates were all blacklisted.
var ErrAttemptsExhausted = errors.New("identity: attempts exhausted")

// Config configures a Generator.
type Config struct {
	// Table is the unpartitioned identity table.
	Table string

	// Domain routes Table to its database.
	Domain string

	// Blacklist lists uids that must never be returned.
	Blacklist []uint64

	// MaxAttempts caps the inserts per Generate call. Zero picks
	// len(Blacklist)+1: each attempt draws a distinct counter value, so
	// at most len(Blacklist) attempts can be discarded.
	MaxAttempts int
}

// Generator issues uids.
type Generator struct {
	pools       *db.Pools
	database    string
	table       string
	blacklist   map[uint64]struct{}
	maxAttempts int
	now         func() time.Time
	logger      *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock overrides the clock stamping identity rows.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// New creates a generator. The identity table's domain must be routed.
func New(pools *db.Pools, chain *router.Chain, cfg Config, opts ...Option) (*Generator, error) {
	if cfg.Table == "" {
		cfg.Table = schema.DefaultTablePrefix + schema.GlobalIDBase
	}
	if cfg.Domain == "" {
		cfg.Domain = schema.DomainApplication
	}
	if _, err := querysql.Ident(cfg.Table); err != nil {
		return nil, errs.Configuration("new identity generator", "%v", err)
	}
	if cfg.MaxAttempts < 0 {
		return nil, errs.Configuration("new identity generator", "negative max attempts %d", cfg.MaxAttempts)
	}

	database, err := chain.MustRoute(cfg.Domain)
	if err != nil {
		return nil, err
	}

	blacklist := make(map[uint64]struct{}, len(cfg.Blacklist))
	for _, uid := range cfg.Blacklist {
		blacklist[uid] = struct{}{}
	}

	maxAttempts := cfg.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = len(blacklist) + 1
	}

	g := &Generator{
		pools:       pools,
		database:    database,
		table:       cfg.Table,
		blacklist:   blacklist,
		maxAttempts: maxAttempts,
		now:         time.Now,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Blacklisted reports whether uid is never handed out.
func (g *Generator) Blacklisted(uid uint64) bool {
	_, ok := g.blacklist[uid]
	return ok
}

// Database returns the physical database holding the identity table.
func (g *Generator) Database() string {
	return g.database
}

// Generate returns a fresh uid not on the blacklist. Storage failures are
// returned as-is, without retry.
func (g *Generator) Generate(ctx context.Context) (uint64, error) {
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		uid, err := g.next(ctx)
		if err != nil {
			return 0, err
		}
		if !g.Blacklisted(uid) {
			return uid, nil
		}
		g.logger.Debug("discarding blacklisted uid",
			zap.Uint64("uid", uid),
			zap.Int("attempt", attempt))
	}
	return 0, errs.Storage("generate uid", fmt.Errorf("%w after %d inserts", ErrAttemptsExhausted, g.maxAttempts))
}

// next inserts one identity row and returns its counter value.
func (g *Generator) next(ctx context.Context) (uint64, error) {
	query, args, err := querysql.Compile(querysql.Insert{
		Table:   g.table,
		Columns: []string{schema.ColCreateTime},
		Values:  []any{g.now().Unix()},
	})
	if err != nil {
		return 0, errs.Configuration("generate uid", "%v", err)
	}

	var id int64
	err = g.pools.WithConn(ctx, g.database, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, query, args...)
		if err != nil {
			return errs.Storage("insert identity", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return errs.Storage("insert identity", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, errs.Storage("insert identity", fmt.Errorf("engine returned non-positive id %d", id))
	}
	return uint64(id), nil
}
