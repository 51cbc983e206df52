// Copyright (c) 2025 the Agora authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect identifies the SQL backend. The engine is written against the
// common subset of sqlite and postgres; the few divergences (row locking)
// are keyed off this value.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ParseDialect maps a configured database type to a Dialect.
func ParseDialect(databaseType string) (Dialect, error) {
	switch databaseType {
	case "sqlite":
		return DialectSQLite, nil
	case "postgres":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("unsupported database type %q", databaseType)
	}
}

// LockSuffix returns the clause appended to a SELECT that must take a row
// lock for the rest of the transaction. SQLite has no FOR UPDATE; its writer
// lock serializes transactions instead.
func (d Dialect) LockSuffix() string {
	if d == DialectPostgres {
		return " FOR UPDATE"
	}
	return ""
}

// Open connects to the database for the given dialect and verifies the
// connection.
func Open(dialect Dialect, databaseURL string) (*sql.DB, error) {
	driver := "postgres"
	if dialect == DialectSQLite {
		driver = "sqlite"
	}

	conn, err := sql.Open(driver, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if dialect == DialectSQLite {
		// modernc sqlite allows one writer; a single connection avoids
		// SQLITE_BUSY under concurrent transactions.
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return conn, nil
}
