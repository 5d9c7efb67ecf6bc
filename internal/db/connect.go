package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:pathlight.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/pathlight?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  pass_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'user',
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS assessment_sessions (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL,                  -- in_progress|completed
  step INTEGER NOT NULL DEFAULT 0,
  question_count INTEGER NOT NULL,
  catalog_json TEXT NOT NULL,            -- ordered question snapshot
  responses_json TEXT NOT NULL,
  scores_json TEXT,
  time_spent_sec INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL,
  last_saved_at INTEGER NOT NULL,
  submitted_at INTEGER
);

-- at most one in-progress session per user; racing starts collapse here
CREATE UNIQUE INDEX IF NOT EXISTS ux_sessions_user_in_progress
  ON assessment_sessions(user_id) WHERE status = 'in_progress';

CREATE TABLE IF NOT EXISTS education_intakes (
  user_id TEXT PRIMARY KEY,
  level TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT '',
  common_json TEXT NOT NULL,
  specific_json TEXT NOT NULL,
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS analysis_artifacts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  source_id TEXT NOT NULL,
  source_kind TEXT NOT NULL,             -- assessment|intake
  payload_json TEXT NOT NULL,
  confidence REAL NOT NULL DEFAULT 0,
  regeneration_count INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS ix_artifacts_user_created
  ON analysis_artifacts(user_id, created_at DESC);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  pass_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'user',
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS assessment_sessions (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL,
  step INTEGER NOT NULL DEFAULT 0,
  question_count INTEGER NOT NULL,
  catalog_json TEXT NOT NULL,
  responses_json TEXT NOT NULL,
  scores_json TEXT,
  time_spent_sec INTEGER NOT NULL DEFAULT 0,
  created_at BIGINT NOT NULL,
  last_saved_at BIGINT NOT NULL,
  submitted_at BIGINT
);

CREATE UNIQUE INDEX IF NOT EXISTS ux_sessions_user_in_progress
  ON assessment_sessions(user_id) WHERE status = 'in_progress';

CREATE TABLE IF NOT EXISTS education_intakes (
  user_id TEXT PRIMARY KEY,
  level TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT '',
  common_json TEXT NOT NULL,
  specific_json TEXT NOT NULL,
  updated_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS analysis_artifacts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  source_id TEXT NOT NULL,
  source_kind TEXT NOT NULL,
  payload_json TEXT NOT NULL,
  confidence DOUBLE PRECISION NOT NULL DEFAULT 0,
  regeneration_count INTEGER NOT NULL DEFAULT 0,
  created_at BIGINT NOT NULL,
  updated_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS ix_artifacts_user_created
  ON analysis_artifacts(user_id, created_at DESC);
`
