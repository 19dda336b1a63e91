package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq" // Import postgres driver
	_ "modernc.org/sqlite"

	"github.com/Dosada05/pickleball-league/repositories"
)

// Connect opens the database named by dsn. postgres:// URLs use lib/pq;
// sqlite://<path>, file:<path> and :memory: use modernc sqlite.
func Connect(dsn string, timeout time.Duration) (*sql.DB, repositories.Dialect, error) {
	driver, source, dialect := parseDSN(dsn)

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create database handle: %w", err)
	}

	// Configure connection pool
	if dialect == repositories.DialectSQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	// Verify the connection with a timeout
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("failed to ping database within %v: %w", timeout, err)
	}

	return db, dialect, nil
}

func parseDSN(dsn string) (driver, source string, dialect repositories.Dialect) {
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", withPragmas(strings.TrimPrefix(dsn, "sqlite://")), repositories.DialectSQLite
	case strings.HasPrefix(dsn, "file:"), dsn == ":memory:":
		return "sqlite", withPragmas(dsn), repositories.DialectSQLite
	}
	return "postgres", dsn, repositories.DialectPostgres
}

func withPragmas(source string) string {
	if strings.Contains(source, "_pragma") {
		return source
	}
	sep := "?"
	if strings.Contains(source, "?") {
		sep = "&"
	}
	return source + sep + "_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS matches (
		id            TEXT PRIMARY KEY,
		tournament_id TEXT        NOT NULL,
		status        TEXT        NOT NULL DEFAULT '',
		revision      BIGINT      NOT NULL DEFAULT 1,
		document      JSONB       NOT NULL,
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS matches_tournament_id_idx ON matches (tournament_id)`,
	`CREATE TABLE IF NOT EXISTS players (
		id      TEXT PRIMARY KEY,
		team_id TEXT NOT NULL,
		name    TEXT NOT NULL,
		gender  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS players_team_id_idx ON players (team_id)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS matches (
		id            TEXT PRIMARY KEY,
		tournament_id TEXT    NOT NULL,
		status        TEXT    NOT NULL DEFAULT '',
		revision      INTEGER NOT NULL DEFAULT 1,
		document      TEXT    NOT NULL,
		updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS matches_tournament_id_idx ON matches (tournament_id)`,
	`CREATE TABLE IF NOT EXISTS players (
		id      TEXT PRIMARY KEY,
		team_id TEXT NOT NULL,
		name    TEXT NOT NULL,
		gender  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS players_team_id_idx ON players (team_id)`,
}

// Migrate creates the tables the repositories need if they are missing.
func Migrate(ctx context.Context, db *sql.DB, dialect repositories.Dialect) error {
	schema := postgresSchema
	if dialect == repositories.DialectSQLite {
		schema = sqliteSchema
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
