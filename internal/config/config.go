// Package config loads the YAML process configuration: physical
// databases, domain routes, partitioning, identity blacklist, cache and
// logging.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/roach88/awesome/internal/cache"
	"github.com/roach88/awesome/internal/db"
	"github.com/roach88/awesome/internal/errs"
	"github.com/roach88/awesome/internal/identity"
	"github.com/roach88/awesome/internal/partition"
	"github.com/roach88/awesome/internal/querysql"
	"github.com/roach88/awesome/internal/schema"
)

// Config is the process configuration.
type Config struct {
	// TablePrefix is prepended to every table base name.
	TablePrefix string `yaml:"table_prefix"`

	// PartitionCount splits profile and mapping tables. Changing it on a
	// populated deployment orphans existing rows.
	PartitionCount int `yaml:"partition_count"`

	// DefaultDatabase holds domains no route claims.
	DefaultDatabase string `yaml:"default_database"`

	// Databases maps physical database names to connection settings.
	Databases map[string]Database `yaml:"databases"`

	// Routes pin domains to databases, consulted in order.
	Routes []Route `yaml:"routes"`

	Identity Identity `yaml:"identity"`
	Cache    Cache    `yaml:"cache"`
	Log      Log      `yaml:"log"`
}

// Database is one physical database.
type Database struct {
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns,omitempty"`
	MaxIdleConns    int           `yaml:"max_idle_conns,omitempty"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime,omitempty"`
}

// Route pins Domain to Database.
type Route struct {
	Domain   string `yaml:"domain"`
	Database string `yaml:"database"`
}

// Identity configures uid generation.
type Identity struct {
	Blacklist   []uint64 `yaml:"blacklist"`
	MaxAttempts int      `yaml:"max_attempts"`
}

// Cache configures the Redis cache. An empty Addr disables it.
type Cache struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password,omitempty"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// Enabled reports whether a cache address is configured.
func (c Cache) Enabled() bool { return c.Addr != "" }

// base returns the settings a file may leave out.
func base() Config {
	return Config{
		TablePrefix:     schema.DefaultTablePrefix,
		PartitionCount:  partition.DefaultCount,
		DefaultDatabase: "default",
		Identity: Identity{
			Blacklist: append([]uint64(nil), identity.DefaultBlacklist...),
		},
		Cache: Cache{Prefix: cache.DefaultPrefix, TTL: cache.DefaultTTL},
		Log:   Log{Level: "info", Format: "json"},
	}
}

// Default returns the reference deployment: four MySQL databases with the
// application domain pinned to awesome_app and a local Redis cache.
func Default() *Config {
	c := base()
	const server = "django@tcp(192.168.50.163:3306)/"
	c.Databases = map[string]Database{
		"default":       {Driver: db.DriverMySQL, DSN: server + "awesome_django_admin"},
		"awesome_app":   {Driver: db.DriverMySQL, DSN: server + "awesome_app"},
		"awesome_admin": {Driver: db.DriverMySQL, DSN: server + "awesome_admin"},
		"awesome_data":  {Driver: db.DriverMySQL, DSN: server + "awesome_data"},
	}
	c.Routes = []Route{{Domain: schema.DomainApplication, Database: "awesome_app"}}
	c.Cache.Addr = "127.0.0.1:6379"
	return &c
}

// Load reads and validates the YAML file at path. Keys the file leaves
// out keep their defaults; unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &errs.Error{Code: errs.CodeConfiguration, Op: "load config", Message: "read " + path, Err: err}
	}
	return Parse(data)
}

// Parse decodes and validates YAML configuration.
func Parse(data []byte) (*Config, error) {
	c := base()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, &errs.Error{Code: errs.CodeConfiguration, Op: "load config", Message: "parse YAML", Err: err}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks internal consistency. Connectivity is not checked.
func (c *Config) Validate() error {
	const op = "validate config"

	if _, err := querysql.Ident(c.TablePrefix + "x"); err != nil {
		return errs.Configuration(op, "table_prefix %q: %v", c.TablePrefix, err)
	}
	if c.PartitionCount < 1 {
		return errs.Configuration(op, "partition_count must be at least 1, got %d", c.PartitionCount)
	}

	if len(c.Databases) == 0 {
		return errs.Configuration(op, "no databases declared")
	}
	for name, d := range c.Databases {
		if err := d.validate(); err != nil {
			return errs.Configuration(op, "database %q: %v", name, err)
		}
	}
	if _, ok := c.Databases[c.DefaultDatabase]; !ok {
		return errs.Configuration(op, "default_database %q is not declared", c.DefaultDatabase)
	}

	seen := make(map[string]bool, len(c.Routes))
	for _, r := range c.Routes {
		if r.Domain == "" {
			return errs.Configuration(op, "route to %q has no domain", r.Database)
		}
		if seen[r.Domain] {
			return errs.Configuration(op, "domain %q routed twice", r.Domain)
		}
		seen[r.Domain] = true
		if _, ok := c.Databases[r.Database]; !ok {
			return errs.Configuration(op, "domain %q routed to undeclared database %q", r.Domain, r.Database)
		}
	}

	if c.Identity.MaxAttempts < 0 {
		return errs.Configuration(op, "identity.max_attempts must not be negative")
	}
	if c.Cache.TTL < 0 {
		return errs.Configuration(op, "cache.ttl must not be negative")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errs.Configuration(op, "log.level: %v", err)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return errs.Configuration(op, "log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}

func (d Database) validate() error {
	if d.DSN == "" {
		return errors.New("dsn is required")
	}
	switch d.Driver {
	case db.DriverMySQL:
		if _, err := mysql.ParseDSN(d.DSN); err != nil {
			return err
		}
	case db.DriverSQLite:
	default:
		return fmt.Errorf("unsupported driver %q", d.Driver)
	}
	return nil
}

// Sources lists the declared databases as pool sources.
func (c *Config) Sources() []db.Source {
	sources := make([]db.Source, 0, len(c.Databases))
	for name, d := range c.Databases {
		sources = append(sources, db.Source{
			Name:            name,
			Driver:          d.Driver,
			DSN:             d.DSN,
			MaxOpenConns:    d.MaxOpenConns,
			MaxIdleConns:    d.MaxIdleConns,
			ConnMaxLifetime: d.ConnMaxLifetime,
		})
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].Name < sources[j].Name })
	return sources
}
