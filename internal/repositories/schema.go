package repositories

import (
	"context"
	"fmt"
	"log"

	intdb "parking/internal/db"
)

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS tickets (
		id VARCHAR(64) NOT NULL PRIMARY KEY,
		plate VARCHAR(32) NOT NULL,
		customer_name VARCHAR(160) NOT NULL,
		phone VARCHAR(40) NOT NULL,
		vehicle_class VARCHAR(20) NOT NULL,
		spot VARCHAR(20) NOT NULL,
		entry_time DATETIME(6) NOT NULL,
		estimated_exit_time DATETIME(6) NOT NULL,
		rate_tier VARCHAR(20) NULL,
		total BIGINT NOT NULL DEFAULT 0,
		quoted_total BIGINT NULL,
		paid BOOLEAN NOT NULL DEFAULT FALSE,
		actual_exit_time DATETIME(6) NULL,
		schema_version INT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		INDEX idx_tickets_paid_entry (paid, entry_time)
	) CHARACTER SET utf8mb4`,
	`CREATE TABLE IF NOT EXISTS parking_settings (
		name VARCHAR(64) NOT NULL PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME(6) NOT NULL
	) CHARACTER SET utf8mb4`,
	`CREATE TABLE IF NOT EXISTS admin_credentials (
		id INT NOT NULL PRIMARY KEY,
		email VARCHAR(190) NOT NULL,
		password_hash VARCHAR(100) NOT NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL
	) CHARACTER SET utf8mb4`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS tickets (
		id VARCHAR(64) NOT NULL PRIMARY KEY,
		plate VARCHAR(32) NOT NULL,
		customer_name VARCHAR(160) NOT NULL,
		phone VARCHAR(40) NOT NULL,
		vehicle_class VARCHAR(20) NOT NULL,
		spot VARCHAR(20) NOT NULL,
		entry_time TIMESTAMPTZ NOT NULL,
		estimated_exit_time TIMESTAMPTZ NOT NULL,
		rate_tier VARCHAR(20) NULL,
		total BIGINT NOT NULL DEFAULT 0,
		quoted_total BIGINT NULL,
		paid BOOLEAN NOT NULL DEFAULT FALSE,
		actual_exit_time TIMESTAMPTZ NULL,
		schema_version INT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tickets_paid_entry ON tickets (paid, entry_time)`,
	`CREATE TABLE IF NOT EXISTS parking_settings (
		name VARCHAR(64) NOT NULL PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS admin_credentials (
		id INT NOT NULL PRIMARY KEY,
		email VARCHAR(190) NOT NULL,
		password_hash VARCHAR(100) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
}

// Columns added after the first release. Older tables get them on boot and
// their rows read back as schema version 1.
var ticketUpgradeColumns = []struct {
	name string
	ddl  string
}{
	{"rate_tier", "VARCHAR(20) NULL"},
	{"quoted_total", "BIGINT NULL"},
	{"schema_version", "INT NULL"},
}

// EnsureSchema creates missing tables and backfills columns on legacy ticket
// tables.
func (s SQLStore) EnsureSchema(ctx context.Context) error {
	hadTickets := intdb.HasTable(ctx, s.DB, s.Dialect, "tickets")

	stmts := mysqlSchema
	if s.Dialect == intdb.Postgres {
		stmts = postgresSchema
	}
	for _, stmt := range stmts {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return s.wrap("ensure schema", err)
		}
	}

	if !hadTickets {
		return nil
	}
	for _, col := range ticketUpgradeColumns {
		if intdb.HasColumn(ctx, s.DB, s.Dialect, "tickets", col.name) {
			continue
		}
		log.Printf("[STORE] action=migrate msg=adding tickets.%s", col.name)
		if _, err := s.DB.ExecContext(ctx, fmt.Sprintf(`ALTER TABLE tickets ADD COLUMN %s %s`, col.name, col.ddl)); err != nil {
			return s.wrap("upgrade tickets", err)
		}
	}
	return nil
}
