package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = map[Dialect][]string{
	DialectPostgres: {
		`CREATE TABLE IF NOT EXISTS tournaments (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			preset     TEXT NOT NULL DEFAULT '',
			document   JSONB NOT NULL,
			games      INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS simulations (
			id            BIGSERIAL PRIMARY KEY,
			tournament_id TEXT NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
			runs          INTEGER NOT NULL,
			min_games     INTEGER NOT NULL,
			max_games     INTEGER NOT NULL,
			mean_games    DOUBLE PRECISION NOT NULL,
			min_duration  BIGINT NOT NULL,
			max_duration  BIGINT NOT NULL,
			mean_duration BIGINT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS simulations_tournament_id_idx ON simulations (tournament_id)`,
	},
	DialectSQLite: {
		`CREATE TABLE IF NOT EXISTS tournaments (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			preset     TEXT NOT NULL DEFAULT '',
			document   TEXT NOT NULL,
			games      INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS simulations (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			tournament_id TEXT NOT NULL REFERENCES tournaments(id) ON DELETE CASCADE,
			runs          INTEGER NOT NULL,
			min_games     INTEGER NOT NULL,
			max_games     INTEGER NOT NULL,
			mean_games    REAL NOT NULL,
			min_duration  INTEGER NOT NULL,
			max_duration  INTEGER NOT NULL,
			mean_duration INTEGER NOT NULL,
			created_at    TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS simulations_tournament_id_idx ON simulations (tournament_id)`,
	},
}

// Migrate creates the tables used by the repositories when they don't exist yet.
func Migrate(ctx context.Context, db *sql.DB, dialect Dialect) error {
	statements, ok := schema[dialect]
	if !ok {
		return fmt.Errorf("no schema for dialect %q", dialect)
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
