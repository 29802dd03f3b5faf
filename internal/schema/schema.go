package schema

import (
	"fmt"
	"strconv"

	"github.com/roach88/awesome/internal/errs"
	"github.com/roach88/awesome/internal/querysql"
)

// ColumnType is the storage type of a column, independent of dialect.
type ColumnType int

const (
	// TypeUint is an unsigned 32-bit integer (INT UNSIGNED).
	TypeUint ColumnType = iota

	// TypeSmallUint is an unsigned 16-bit integer (SMALLINT UNSIGNED).
	TypeSmallUint

	// TypeVarchar is a bounded string; Column.Size is its length.
	TypeVarchar
)

// Column describes one column of a table.
type Column struct {
	Name          string
	Label         string
	Type          ColumnType
	Size          int
	PrimaryKey    bool
	AutoIncrement bool
	Unique        bool
	Nullable      bool

	// Default is the literal default value; only used when HasDefault.
	Default    string
	HasDefault bool
}

// Unique is a composite unique constraint.
type Unique struct {
	Columns []string
}

// Template is the canonical definition from which partition tables are
// derived.
type Template struct {
	// BaseName is the table name without partition suffix.
	BaseName string

	// Label is the human-readable table description.
	Label string

	// Domain is the label used to route the table to a database.
	Domain string

	Columns []Column
	Uniques []Unique

	// Partitions is the number of physical tables. Zero means the table is
	// not partitioned and keeps BaseName as its only name.
	Partitions int
}

// Definition is one concrete table.
type Definition struct {
	Name   string
	Label  string
	Domain string

	// Partition is the zero-based partition index, or -1 for an
	// unpartitioned table.
	Partition int

	Columns []Column
	Uniques []Unique
}

// Partitioned reports whether the definition is one slice of a template.
func (d Definition) Partitioned() bool {
	return d.Partition >= 0
}

// ColumnNames returns the column names in declaration order.
func (d Definition) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// Replicate expands t into n concrete definitions named BaseName+index,
// each with columns and constraints identical to the template. n == 0
// yields the single unpartitioned definition.
func Replicate(t Template, n int) ([]Definition, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, errs.Configuration("replicate", "table %s: negative partition count %d", t.BaseName, n)
	}

	if n == 0 {
		return []Definition{t.definition(t.BaseName, t.Label, -1)}, nil
	}

	defs := make([]Definition, 0, n)
	for i := 0; i < n; i++ {
		name := t.BaseName + strconv.Itoa(i)
		label := fmt.Sprintf("%s(%d)", t.Label, i)
		defs = append(defs, t.definition(name, label, i))
	}
	return defs, nil
}

// definition builds a Definition with its own copies of the template's
// slices so partitions never alias each other.
func (t Template) definition(name, label string, partition int) Definition {
	cols := make([]Column, len(t.Columns))
	copy(cols, t.Columns)

	var uniques []Unique
	for _, u := range t.Uniques {
		uniques = append(uniques, Unique{Columns: append([]string(nil), u.Columns...)})
	}

	return Definition{
		Name:      name,
		Label:     label,
		Domain:    t.Domain,
		Partition: partition,
		Columns:   cols,
		Uniques:   uniques,
	}
}

func (t Template) validate() error {
	if t.BaseName == "" {
		return errs.Configuration("replicate", "template has no base name")
	}
	if !validIdentifier(t.BaseName) {
		return errs.Configuration("replicate", "invalid table name %q", t.BaseName)
	}
	if len(t.Columns) == 0 {
		return errs.Configuration("replicate", "table %s has no columns", t.BaseName)
	}

	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if !validIdentifier(c.Name) {
			return errs.Configuration("replicate", "table %s: invalid column name %q", t.BaseName, c.Name)
		}
		if seen[c.Name] {
			return errs.Configuration("replicate", "table %s: duplicate column %q", t.BaseName, c.Name)
		}
		if c.Type == TypeVarchar && c.Size <= 0 {
			return errs.Configuration("replicate", "table %s: varchar column %q needs a size", t.BaseName, c.Name)
		}
		if c.HasDefault && c.Type != TypeVarchar {
			if _, err := strconv.ParseUint(c.Default, 10, 32); err != nil {
				return errs.Configuration("replicate", "table %s: column %q has non-numeric default %q", t.BaseName, c.Name, c.Default)
			}
		}
		seen[c.Name] = true
	}

	for _, u := range t.Uniques {
		if len(u.Columns) == 0 {
			return errs.Configuration("replicate", "table %s: empty unique constraint", t.BaseName)
		}
		for _, name := range u.Columns {
			if !seen[name] {
				return errs.Configuration("replicate", "table %s: unique constraint on unknown column %q", t.BaseName, name)
			}
		}
	}
	return nil
}

func validIdentifier(s string) bool {
	_, err := querysql.Ident(s)
	return err == nil
}
