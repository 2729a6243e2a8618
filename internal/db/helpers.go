package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strconv"
	"strings"
)

// Dialect selects placeholder style and schema DDL.
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
)

// DriverName returns the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	if d == Postgres {
		return "pgx"
	}
	return "mysql"
}

// Rebind rewrites '?' placeholders into '$n' for PostgreSQL. Queries in this
// module never contain literal question marks.
func Rebind(d Dialect, query string) string {
	if d != Postgres {
		return query
	}
	var out strings.Builder
	out.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			out.WriteByte('$')
			out.WriteString(strconv.Itoa(n))
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}

// NullIfEmpty helps store optional strings as NULL.
func NullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type QueryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func schemaExpr(d Dialect) string {
	if d == Postgres {
		return "current_schema()"
	}
	return "DATABASE()"
}

func HasTable(ctx context.Context, q QueryRower, d Dialect, table string) bool {
	var name sql.NullString
	err := q.QueryRowContext(ctx, Rebind(d, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = `+schemaExpr(d)+`
		  AND table_name = ?
		LIMIT 1`), table).Scan(&name)
	if err != nil {
		return false
	}
	return name.Valid && name.String != ""
}

func HasColumn(ctx context.Context, q QueryRower, d Dialect, table, column string) bool {
	var name sql.NullString
	err := q.QueryRowContext(ctx, Rebind(d, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = `+schemaExpr(d)+`
		  AND table_name = ?
		  AND column_name = ?
		LIMIT 1`), table, column).Scan(&name)
	if err != nil {
		return false
	}
	return name.Valid && name.String != ""
}

// IsUnavailable reports connection-level failures, as opposed to query errors.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
