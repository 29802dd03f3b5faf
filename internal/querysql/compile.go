// Package querysql compiles statements against one concrete table into
// parameterized SQL.
//
// Table and column names cannot be bound as parameters, so they are
// checked against a strict identifier pattern and backquoted (both MySQL
// and SQLite accept backquotes). Values are never interpolated: every one
// of them becomes a ? placeholder.
package querysql

import (
	"fmt"
	"strconv"
	"strings"
)

// Query is a compilable statement.
type Query interface {
	query()
}

// Predicate is a WHERE clause fragment.
type Predicate interface {
	predicate()
}

// Select reads Columns from Table. An empty column list selects "*".
type Select struct {
	Table   string
	Columns []string
	Where   []Predicate // joined with AND
	OrderBy []string    // ascending
	Limit   int         // 0 means no limit
}

// Insert writes one row.
type Insert struct {
	Table   string
	Columns []string
	Values  []any
}

// Replace writes one row, overwriting any row that collides on a primary
// or unique key.
type Replace struct {
	Table   string
	Columns []string
	Values  []any
}

// Equals is "column = ?".
type Equals struct {
	Column string
	Value  any
}

// In is "column IN (?, ...)".
type In struct {
	Column string
	Values []any
}

func (Select) query()  {}
func (Insert) query()  {}
func (Replace) query() {}

func (Equals) predicate() {}
func (In) predicate()     {}

// Compile converts q to SQL and its parameters.
func Compile(q Query) (string, []any, error) {
	if q == nil {
		return "", nil, fmt.Errorf("cannot compile nil query")
	}

	switch query := q.(type) {
	case Select:
		return compileSelect(query)
	case *Select:
		return compileSelect(*query)
	case Insert:
		return compileWrite("INSERT", query.Table, query.Columns, query.Values)
	case *Insert:
		return compileWrite("INSERT", query.Table, query.Columns, query.Values)
	case Replace:
		return compileWrite("REPLACE", query.Table, query.Columns, query.Values)
	case *Replace:
		return compileWrite("REPLACE", query.Table, query.Columns, query.Values)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func compileSelect(q Select) (string, []any, error) {
	table, err := Ident(q.Table)
	if err != nil {
		return "", nil, err
	}

	columns := "*"
	if len(q.Columns) > 0 {
		columns, err = identList(q.Columns)
		if err != nil {
			return "", nil, err
		}
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(columns)
	b.WriteString(" FROM ")
	b.WriteString(table)

	var params []any
	if len(q.Where) > 0 {
		parts := make([]string, 0, len(q.Where))
		for _, p := range q.Where {
			sql, args, err := compilePredicate(p)
			if err != nil {
				return "", nil, fmt.Errorf("compile filter: %w", err)
			}
			parts = append(parts, sql)
			params = append(params, args...)
		}
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(parts, " AND "))
	}

	if len(q.OrderBy) > 0 {
		order, err := identList(q.OrderBy)
		if err != nil {
			return "", nil, err
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(order)
	}

	if q.Limit < 0 {
		return "", nil, fmt.Errorf("negative limit %d", q.Limit)
	}
	if q.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(q.Limit))
	}

	return b.String(), params, nil
}

func compileWrite(verb, tableName string, columns []string, values []any) (string, []any, error) {
	table, err := Ident(tableName)
	if err != nil {
		return "", nil, err
	}
	if len(columns) == 0 {
		return "", nil, fmt.Errorf("%s into %s: no columns", strings.ToLower(verb), tableName)
	}
	if len(columns) != len(values) {
		return "", nil, fmt.Errorf("%s into %s: %d columns but %d values", strings.ToLower(verb), tableName, len(columns), len(values))
	}
	cols, err := identList(columns)
	if err != nil {
		return "", nil, err
	}

	sql := fmt.Sprintf("%s INTO %s (%s) VALUES (%s)", verb, table, cols, placeholders(len(values)))
	return sql, append([]any(nil), values...), nil
}

func compilePredicate(p Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case Equals:
		return compileEquals(pred)
	case *Equals:
		return compileEquals(*pred)
	case In:
		return compileIn(pred)
	case *In:
		return compileIn(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compileEquals(eq Equals) (string, []any, error) {
	col, err := Ident(eq.Column)
	if err != nil {
		return "", nil, err
	}
	return col + " = ?", []any{eq.Value}, nil
}

func compileIn(in In) (string, []any, error) {
	col, err := Ident(in.Column)
	if err != nil {
		return "", nil, err
	}
	if len(in.Values) == 0 {
		return "", nil, fmt.Errorf("IN on %s with no values", in.Column)
	}
	return col + " IN (" + placeholders(len(in.Values)) + ")", append([]any(nil), in.Values...), nil
}

// Ident validates name as an SQL identifier and returns it backquoted.
func Ident(name string) (string, error) {
	if !validIdent(name) {
		return "", fmt.Errorf("invalid identifier %q", name)
	}
	return "`" + name + "`", nil
}

func identList(names []string) (string, error) {
	quoted := make([]string, len(names))
	for i, n := range names {
		q, err := Ident(n)
		if err != nil {
			return "", err
		}
		quoted[i] = q
	}
	return strings.Join(quoted, ", "), nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func validIdent(s string) bool {
	if s == "" || len(s) > 64 {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
