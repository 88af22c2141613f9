package db

const (
	// SchemaV1 defines the SQL statements for version 1 of the database schema.
	// This schema pertains to the 'journaldb' component.
	//
	// entry_date holds the calendar day as 'YYYY-MM-DD'; its unique index is what
	// keeps concurrent writers from committing two entries for the same day.
	// Timestamps are fixed-width RFC3339 UTC text so equality and ordering are exact.
	SchemaV1 = `
CREATE TABLE IF NOT EXISTS daylog_versions (
    component TEXT PRIMARY KEY,
    version INTEGER NOT NULL,
    created_at REAL DEFAULT (unixepoch())
);

CREATE TABLE IF NOT EXISTS entries (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    entry_date TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    content_rich TEXT NOT NULL DEFAULT '',
    primary_mood_id INTEGER NOT NULL CHECK (primary_mood_id > 0),
    tags_raw TEXT NOT NULL DEFAULT '',
    word_count INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_entries_entry_date ON entries (entry_date);
CREATE INDEX IF NOT EXISTS idx_entries_created_at ON entries (created_at);
`
)
