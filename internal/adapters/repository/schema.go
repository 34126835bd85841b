package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateSchema creates the tables used by SQLStore. It is safe to call more
// than once. The column types are chosen to work on both sqlite and postgres.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS members (
    id TEXT PRIMARY KEY,
    full_name TEXT NOT NULL,
    position TEXT NOT NULL,
    membership_type TEXT NOT NULL,
    jersey_number INTEGER,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_members_created_at ON members(created_at);

CREATE TABLE IF NOT EXISTS formations (
    id TEXT PRIMARY KEY,
    club_id TEXT NOT NULL,
    name TEXT NOT NULL,
    strategy TEXT,
    teams TEXT NOT NULL,
    created_at TEXT NOT NULL,
    UNIQUE (club_id, name)
);

CREATE INDEX IF NOT EXISTS idx_formations_club_id ON formations(club_id);
`
