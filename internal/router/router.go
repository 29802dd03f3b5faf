// Package router pins logical domains to physical databases.
//
// A Router holds exactly one (domain, database) pair. It answers for its
// own domain and abstains for every other one, so routers compose: a Chain
// consults them in order and falls back to a default database when all of
// them abstain.
package router

import (
	"github.com/roach88/awesome/internal/errs"
)

// Decision is a router's answer to a migration or relation question.
type Decision int

const (
	// Abstain defers the question to the next router or the default.
	Abstain Decision = iota
	Allow
	Deny
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	default:
		return "abstain"
	}
}

// Router maps one domain label to one physical database.
type Router struct {
	domain   string
	database string
}

// New creates a router for domain -> database.
func New(domain, database string) (Router, error) {
	if domain == "" || database == "" {
		return Router{}, errs.Configuration("new router", "domain and database are required (got %q -> %q)", domain, database)
	}
	return Router{domain: domain, database: database}, nil
}

// Domain returns the configured domain label.
func (r Router) Domain() string { return r.domain }

// Database returns the configured physical database.
func (r Router) Database() string { return r.database }

// Route returns the database for domain, or false when the router does not
// own domain.
func (r Router) Route(domain string) (string, bool) {
	if domain == r.domain {
		return r.database, true
	}
	return "", false
}

// DBForRead routes reads. Reads and writes share the same database.
func (r Router) DBForRead(domain string) (string, bool) { return r.Route(domain) }

// DBForWrite routes writes.
func (r Router) DBForWrite(domain string) (string, bool) { return r.Route(domain) }

// AllowMigrate decides whether tables of domain may be created in
// database. The configured pair is allowed. Any other domain in the
// configured database is denied, and so is the configured domain in any
// other database; everything else is not this router's business.
func (r Router) AllowMigrate(database, domain string) Decision {
	if database == r.database {
		if domain == r.domain {
			return Allow
		}
		return Deny
	}
	if domain == r.domain {
		return Deny
	}
	return Abstain
}

// AllowRelation allows a relation when either side belongs to the
// configured domain.
func (r Router) AllowRelation(domainA, domainB string) Decision {
	if domainA == r.domain || domainB == r.domain {
		return Allow
	}
	return Abstain
}
