package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// SQLStore implements Storage on top of database/sql. The same queries serve
// SQLite and PostgreSQL; only placeholders and column types differ.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

var _ Storage = (*SQLStore)(nil)

// Open opens a store for the given driver name: "sqlite3", "pgx" or "postgres".
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	switch driver {
	case "", "sqlite3", "sqlite":
		return NewSQLiteStore(dsn)
	case "pgx", "postgres":
		return NewPostgresStore(ctx, driver, dsn)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
}

// schema creates the tables if they don't already exist.
// Decimal fields are TEXT so no precision is lost in either database.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	name TEXT NOT NULL,
	balance TEXT NOT NULL,
	daily_limit TEXT,
	daily_used TEXT NOT NULL DEFAULT '0',
	monthly_limit TEXT,
	monthly_used TEXT NOT NULL DEFAULT '0',
	created_at %[1]s NOT NULL,
	updated_at %[1]s NOT NULL
);
CREATE TABLE IF NOT EXISTS transfers (
	id TEXT PRIMARY KEY,
	from_type TEXT NOT NULL,
	from_id TEXT NOT NULL,
	to_type TEXT NOT NULL,
	to_id TEXT NOT NULL,
	amount TEXT NOT NULL,
	fee TEXT NOT NULL,
	fee_bearer TEXT NOT NULL,
	debit TEXT NOT NULL,
	credit TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at %[1]s NOT NULL,
	completed_at %[1]s
);
CREATE INDEX IF NOT EXISTS idx_transfers_from_id ON transfers(from_id);
CREATE INDEX IF NOT EXISTS idx_transfers_to_id ON transfers(to_id);
CREATE TABLE IF NOT EXISTS installment_plans (
	id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	principal TEXT NOT NULL,
	total_months INTEGER NOT NULL,
	interest_rate_percent TEXT NOT NULL,
	admin_fee TEXT NOT NULL,
	start_date %[1]s NOT NULL,
	paid_months INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	settled TEXT NOT NULL DEFAULT '[]',
	created_at %[1]s NOT NULL,
	updated_at %[1]s NOT NULL
);
CREATE TABLE IF NOT EXISTS investments (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	currency TEXT NOT NULL,
	kind TEXT NOT NULL,
	holding TEXT NOT NULL,
	created_at %[1]s NOT NULL
);
CREATE TABLE IF NOT EXISTS cashback_records (
	id TEXT PRIMARY KEY,
	account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
	purchase_amount TEXT NOT NULL,
	rate_percent TEXT NOT NULL,
	amount TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	created_at %[1]s NOT NULL
);
CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at %[1]s NOT NULL
);
`

// migrations add columns introduced after the initial schema.
var migrations = []struct {
	table  string
	column string
}{
	{"accounts", "usage_date %[1]s"},
	{"transfers", "description TEXT NOT NULL DEFAULT ''"},
}

func (s *SQLStore) timestampType() string {
	if s.dialect == dialectPostgres {
		return "TIMESTAMPTZ"
	}
	return "TIMESTAMP"
}

// initSchema creates the database tables and adds new columns if necessary.
func (s *SQLStore) initSchema(ctx context.Context) error {
	ts := s.timestampType()
	for _, stmt := range strings.Split(fmt.Sprintf(schema, ts), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	for _, m := range migrations {
		col := strings.ReplaceAll(m.column, "%[1]s", ts)
		var stmt string
		if s.dialect == dialectPostgres {
			stmt = fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s", m.table, col)
		} else {
			stmt = fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", m.table, col)
		}
		_, err := s.db.ExecContext(ctx, stmt)
		if err != nil && !isDuplicateColumnError(err) {
			return fmt.Errorf("failed to add column %s.%s: %w", m.table, col, err)
		}
	}

	return nil
}

// isDuplicateColumnError checks if the error indicates a duplicate column.
func isDuplicateColumnError(err error) bool {
	if err == nil {
		return false
	}
	return strings.HasPrefix(err.Error(), "duplicate column name")
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLStore) exec(ctx context.Context, e execer, query string, args ...any) (sql.Result, error) {
	return e.ExecContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.rebind(query), args...)
}

func (s *SQLStore) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.rebind(query), args...)
}

// mustAffect turns a zero-row update or delete into ErrNotFound.
func mustAffect(result sql.Result, what string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s %w", what, ErrNotFound)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
