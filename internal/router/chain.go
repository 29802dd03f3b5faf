package router

import (
	"github.com/roach88/awesome/internal/errs"
)

// Chain consults routers in order and falls back to a default database.
// It is immutable after construction and safe for concurrent use.
type Chain struct {
	routers []Router
	def     string
}

// NewChain builds a chain. Two routers claiming the same domain is a
// configuration error.
func NewChain(defaultDatabase string, routers ...Router) (*Chain, error) {
	if defaultDatabase == "" {
		return nil, errs.Configuration("new chain", "default database is required")
	}
	seen := make(map[string]bool, len(routers))
	for _, r := range routers {
		if r.domain == "" {
			return nil, errs.Configuration("new chain", "router without domain")
		}
		if seen[r.domain] {
			return nil, errs.Configuration("new chain", "domain %q routed twice", r.domain)
		}
		seen[r.domain] = true
	}
	return &Chain{
		routers: append([]Router(nil), routers...),
		def:     defaultDatabase,
	}, nil
}

// Default returns the fallback database.
func (c *Chain) Default() string { return c.def }

// Routers returns the routers in consultation order.
func (c *Chain) Routers() []Router {
	return append([]Router(nil), c.routers...)
}

// Route returns the database for domain, falling back to the default.
func (c *Chain) Route(domain string) string {
	if db, ok := c.lookup(domain); ok {
		return db
	}
	return c.def
}

// MustRoute returns the database pinned to domain. A domain no router
// claims is a configuration error.
func (c *Chain) MustRoute(domain string) (string, error) {
	if db, ok := c.lookup(domain); ok {
		return db, nil
	}
	return "", errs.Configuration("route", "no router for domain %q", domain)
}

func (c *Chain) lookup(domain string) (string, bool) {
	for _, r := range c.routers {
		if db, ok := r.Route(domain); ok {
			return db, true
		}
	}
	return "", false
}

// AllowMigrate returns the first decisive answer. When every router
// abstains, only the default database accepts the domain.
func (c *Chain) AllowMigrate(database, domain string) bool {
	for _, r := range c.routers {
		switch r.AllowMigrate(database, domain) {
		case Allow:
			return true
		case Deny:
			return false
		}
	}
	return database == c.def
}

// CheckMigrate is AllowMigrate as an error: a refused combination is a
// routing conflict.
func (c *Chain) CheckMigrate(database, domain string) error {
	if !c.AllowMigrate(database, domain) {
		return errs.RoutingConflict(database, domain)
	}
	return nil
}

// AllowRelation returns the first decisive answer. When every router
// abstains, a relation is allowed only between domains stored in the same
// database.
func (c *Chain) AllowRelation(domainA, domainB string) bool {
	for _, r := range c.routers {
		switch r.AllowRelation(domainA, domainB) {
		case Allow:
			return true
		case Deny:
			return false
		}
	}
	return c.Route(domainA) == c.Route(domainB)
}
