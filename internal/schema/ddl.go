package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/awesome/internal/errs"
)

// Dialect selects the SQL flavor DDL is rendered in. Values match the
// database/sql driver names.
type Dialect string

const (
	SQLite Dialect = "sqlite3"
	MySQL  Dialect = "mysql"
)

// ParseDialect maps a database/sql driver name to its dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch Dialect(driver) {
	case SQLite, MySQL:
		return Dialect(driver), nil
	default:
		return "", errs.Configuration("parse dialect", "unsupported driver %q", driver)
	}
}

// CreateTable renders an idempotent CREATE TABLE statement for def.
func (d Dialect) CreateTable(def Definition) (string, error) {
	switch d {
	case SQLite:
		return sqliteCreateTable(def), nil
	case MySQL:
		return mysqlCreateTable(def), nil
	default:
		return "", errs.Configuration("create table", "unsupported dialect %q", d)
	}
}

func sqliteCreateTable(def Definition) string {
	var lines []string
	for _, c := range def.Columns {
		lines = append(lines, sqliteColumn(c))
	}
	for _, u := range def.Uniques {
		lines = append(lines, "UNIQUE ("+strings.Join(u.Columns, ", ")+")")
	}
	return "CREATE TABLE IF NOT EXISTS " + def.Name + " (\n  " + strings.Join(lines, ",\n  ") + "\n)"
}

func sqliteColumn(c Column) string {
	// SQLite only honors AUTOINCREMENT on this exact spelling.
	if c.AutoIncrement {
		return c.Name + " INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteString(" ")
	switch c.Type {
	case TypeUint:
		b.WriteString("INTEGER")
	case TypeSmallUint:
		b.WriteString("SMALLINT")
	case TypeVarchar:
		b.WriteString("VARCHAR(" + strconv.Itoa(c.Size) + ")")
	}
	if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	if c.HasDefault {
		b.WriteString(" DEFAULT " + literal(c))
	}
	if c.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
	}
	if c.Unique {
		b.WriteString(" UNIQUE")
	}
	return b.String()
}

func mysqlCreateTable(def Definition) string {
	var lines []string
	var pk []string
	for _, c := range def.Columns {
		lines = append(lines, mysqlColumn(c))
		if c.PrimaryKey {
			pk = append(pk, quote(c.Name))
		}
	}
	if len(pk) > 0 {
		lines = append(lines, "PRIMARY KEY ("+strings.Join(pk, ", ")+")")
	}
	for _, c := range def.Columns {
		if c.Unique && !c.PrimaryKey {
			lines = append(lines, fmt.Sprintf("UNIQUE KEY %s (%s)", quote(c.Name), quote(c.Name)))
		}
	}
	for _, u := range def.Uniques {
		quoted := make([]string, len(u.Columns))
		for i, name := range u.Columns {
			quoted[i] = quote(name)
		}
		name := def.Name + "_" + strings.Join(u.Columns, "_") + "_uniq"
		lines = append(lines, fmt.Sprintf("UNIQUE KEY %s (%s)", quote(name), strings.Join(quoted, ", ")))
	}

	return "CREATE TABLE IF NOT EXISTS " + quote(def.Name) + " (\n  " +
		strings.Join(lines, ",\n  ") +
		"\n) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COMMENT=" + stringLiteral(def.Label)
}

func mysqlColumn(c Column) string {
	var b strings.Builder
	b.WriteString(quote(c.Name))
	b.WriteString(" ")
	switch c.Type {
	case TypeUint:
		b.WriteString("INT UNSIGNED")
	case TypeSmallUint:
		b.WriteString("SMALLINT UNSIGNED")
	case TypeVarchar:
		b.WriteString("VARCHAR(" + strconv.Itoa(c.Size) + ")")
	}
	if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	if c.AutoIncrement {
		b.WriteString(" AUTO_INCREMENT")
	}
	if c.HasDefault {
		b.WriteString(" DEFAULT " + literal(c))
	}
	if c.Label != "" {
		b.WriteString(" COMMENT " + stringLiteral(c.Label))
	}
	return b.String()
}

// literal renders a column default: quoted for strings, bare for numbers.
func literal(c Column) string {
	if c.Type == TypeVarchar {
		return stringLiteral(c.Default)
	}
	return c.Default
}

func stringLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quote(ident string) string {
	return "`" + ident + "`"
}
