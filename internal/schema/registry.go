package schema

import (
	"github.com/roach88/awesome/internal/errs"
)

// Registry is the static table of concrete definitions.
// It is filled during initialization and only read afterwards; Register
// must not race with readers.
type Registry struct {
	defs   []Definition
	byName map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// Register adds definitions. A name that is already registered, or that
// repeats within defs, is a configuration error and nothing is added.
func (r *Registry) Register(defs ...Definition) error {
	batch := make(map[string]bool, len(defs))
	for _, d := range defs {
		if _, ok := r.byName[d.Name]; ok || batch[d.Name] {
			return errs.Configuration("register schema", "table %q registered twice", d.Name)
		}
		batch[d.Name] = true
	}

	for _, d := range defs {
		r.byName[d.Name] = len(r.defs)
		r.defs = append(r.defs, d)
	}
	return nil
}

// RegisterTemplate replicates t into t.Partitions definitions and
// registers them.
func (r *Registry) RegisterTemplate(t Template) error {
	defs, err := Replicate(t, t.Partitions)
	if err != nil {
		return err
	}
	return r.Register(defs...)
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Definition{}, false
	}
	return r.defs[i], true
}

// Definitions returns every definition in registration order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// ForDomain returns the definitions belonging to domain, in registration
// order.
func (r *Registry) ForDomain(domain string) []Definition {
	var out []Definition
	for _, d := range r.defs {
		if d.Domain == domain {
			out = append(out, d)
		}
	}
	return out
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	return len(r.defs)
}
