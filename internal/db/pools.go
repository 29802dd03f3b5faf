// Package db keeps one connection pool per physical database.
//
// Callers never hold a shared cursor. Every operation checks a dedicated
// connection out of the pool with WithConn (or WithTx) and the connection
// goes back on every exit path.
//
// # Drivers
//
//   - mysql: production, via github.com/go-sql-driver/mysql
//   - sqlite3: local runs and tests, via github.com/mattn/go-sqlite3
//
// SQLite databases get the same pragmas on open: WAL journal, NORMAL
// synchronous, 5 second busy timeout. SQLite allows one writer at a time,
// so its pool is capped at a single connection.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/roach88/awesome/internal/errs"
)

// Driver names accepted by Open.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// Source describes one physical database.
type Source struct {
	Name   string
	Driver string
	DSN    string

	// Pool sizing; zero keeps the driver defaults (SQLite is always 1).
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type pool struct {
	db     *sql.DB
	driver string
}

// Pools maps physical database names to their pools.
type Pools struct {
	mu     sync.RWMutex
	pools  map[string]*pool
	logger *zap.Logger
}

// New creates an empty pool set.
func New(logger *zap.Logger) *Pools {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pools{pools: make(map[string]*pool), logger: logger}
}

// Open opens every source. On failure the pools opened so far are closed.
func Open(ctx context.Context, logger *zap.Logger, sources ...Source) (*Pools, error) {
	p := New(logger)
	for _, src := range sources {
		if err := p.Add(ctx, src); err != nil {
			p.Close()
			return nil, err
		}
	}
	return p, nil
}

// Add opens src and verifies the connection.
func (p *Pools) Add(ctx context.Context, src Source) error {
	if src.Name == "" {
		return errs.Configuration("open database", "database name is required")
	}
	if src.Driver != DriverMySQL && src.Driver != DriverSQLite {
		return errs.Configuration("open database", "database %q: unsupported driver %q", src.Name, src.Driver)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.pools[src.Name]; ok {
		return errs.Configuration("open database", "database %q declared twice", src.Name)
	}

	db, err := sql.Open(src.Driver, src.DSN)
	if err != nil {
		return errs.Storage("open database "+src.Name, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return errs.Storage("connect database "+src.Name, err)
	}

	if src.Driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return errs.Storage("configure database "+src.Name, err)
		}
	} else {
		if src.MaxOpenConns > 0 {
			db.SetMaxOpenConns(src.MaxOpenConns)
		}
		if src.MaxIdleConns > 0 {
			db.SetMaxIdleConns(src.MaxIdleConns)
		}
		if src.ConnMaxLifetime > 0 {
			db.SetConnMaxLifetime(src.ConnMaxLifetime)
		}
	}

	p.pools[src.Name] = &pool{db: db, driver: src.Driver}
	p.logger.Debug("database opened", zap.String("database", src.Name), zap.String("driver", src.Driver))
	return nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func (p *Pools) get(name string) (*pool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	pl, ok := p.pools[name]
	if !ok {
		return nil, errs.Configuration("database", "unknown database %q", name)
	}
	return pl, nil
}

// DB returns the pool of the named database.
func (p *Pools) DB(name string) (*sql.DB, error) {
	pl, err := p.get(name)
	if err != nil {
		return nil, err
	}
	return pl.db, nil
}

// Driver returns the driver name of the named database.
func (p *Pools) Driver(name string) (string, error) {
	pl, err := p.get(name)
	if err != nil {
		return "", err
	}
	return pl.driver, nil
}

// Names returns the database names, sorted.
func (p *Pools) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.pools))
	for name := range p.pools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithConn checks a connection out of the named pool, runs fn, and
// returns the connection whatever fn does. Errors from fn are returned
// unchanged; failing to obtain a connection is a storage error.
func (p *Pools) WithConn(ctx context.Context, name string, fn func(*sql.Conn) error) error {
	pl, err := p.get(name)
	if err != nil {
		return err
	}

	conn, err := pl.db.Conn(ctx)
	if err != nil {
		return errs.Storage("acquire connection "+name, err)
	}
	defer conn.Close()

	return fn(conn)
}

// WithTx runs fn inside a transaction on a dedicated connection. The
// transaction commits when fn returns nil and rolls back otherwise.
func (p *Pools) WithTx(ctx context.Context, name string, fn func(*sql.Tx) error) error {
	return p.WithConn(ctx, name, func(conn *sql.Conn) error {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return errs.Storage("begin transaction "+name, err)
		}
		defer tx.Rollback() // No-op if committed

		if err := fn(tx); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return errs.Storage("commit "+name, err)
		}
		return nil
	})
}

// Close closes every pool. It returns the first error encountered.
func (p *Pools) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var first error
	for name, pl := range p.pools {
		if err := pl.db.Close(); err != nil && first == nil {
			first = fmt.Errorf("close %s: %w", name, err)
		}
		delete(p.pools, name)
	}
	return first
}
