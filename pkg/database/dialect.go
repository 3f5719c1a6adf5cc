package database

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrUniqueViolation wraps a storage-level unique constraint failure.
var ErrUniqueViolation = errors.New("unique constraint violation")

// Dialect 数据库方言
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
	Pgx      Dialect = "pgx"
)

// ParseDialect maps a configured driver name onto a dialect. Empty means sqlite.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite", "sqlite3":
		return SQLite, nil
	case "postgres", "postgresql", "pq":
		return Postgres, nil
	case "pgx":
		return Pgx, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q (use sqlite, postgres or pgx)", driver)
	}
}

// DriverName is the database/sql driver registered for this dialect.
func (d Dialect) DriverName() string { return string(d) }

func (d Dialect) isPostgres() bool { return d == Postgres || d == Pgx }

// Rebind rewrites `?` placeholders into `$n` for PostgreSQL. Question marks
// inside single-quoted literals are left alone.
func (d Dialect) Rebind(query string) string {
	if !d.isPostgres() || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// JSONText extracts key from a JSON column as a comparable scalar.
// key is embedded verbatim and must already be a safe identifier.
func (d Dialect) JSONText(column, key string) string {
	if d.isPostgres() {
		return fmt.Sprintf("%s->>'%s'", column, key)
	}
	return fmt.Sprintf("json_extract(%s, '$.%s')", column, key)
}

// sqlite keeps timestamps as fixed-width text so they order lexically
const sqliteTimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// TimeValue is the bind value for a timestamp column.
func (d Dialect) TimeValue(t time.Time) interface{} {
	if d.isPostgres() {
		return t
	}
	return t.UTC().Format(sqliteTimeLayout)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
}

// ParseTime reads a timestamp column scanned into a string.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// IsUniqueViolation reports whether err came from a unique constraint.
func (d Dialect) IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUniqueViolation) {
		return true
	}
	switch d {
	case Postgres:
		return isPQUniqueViolation(err)
	case Pgx:
		return isPgxUniqueViolation(err)
	default:
		return isSQLiteUniqueViolation(err)
	}
}

func (d Dialect) schemaStatements() []string {
	if d.isPostgres() {
		return postgresSchema
	}
	return sqliteSchema
}
