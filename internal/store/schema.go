package store

import (
	"database/sql"
	"fmt"

	"codeintel/internal/metrics"
)

// SchemaVersion is bumped whenever the tables below change incompatibly.
const SchemaVersion = "1"

var ddl = fmt.Sprintf(`
PRAGMA journal_mode=WAL;

CREATE TABLE IF NOT EXISTS history (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    created_at DATETIME NOT NULL,
    mode       TEXT NOT NULL,
    path       TEXT NOT NULL DEFAULT '',
    filename   TEXT NOT NULL,
    language   TEXT NOT NULL DEFAULT '',
    cluster    INTEGER NOT NULL DEFAULT -1,
    label      TEXT NOT NULL DEFAULT '',
    score      INTEGER NOT NULL DEFAULT 0,
    grade      TEXT NOT NULL DEFAULT '',
    features   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS history_created ON history(created_at);

CREATE VIRTUAL TABLE IF NOT EXISTS vec_history USING vec0(
    analysis_id INTEGER PRIMARY KEY,
    features float[%d]
);

CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`, len(metrics.NumericNames))

// Init creates the schema tables if they don't exist.
func Init(db *sql.DB) error {
	_, err := db.Exec(ddl)
	return err
}
