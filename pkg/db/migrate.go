package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog/log"
)

const (
	// TargetSchemaVersion is the highest schema version this version of the code supports for the journaldb component.
	// This constant is used by the CLI to pass to UpgradeDB.
	TargetSchemaVersion int64 = 1
	// JournalDBComponent is the name for the main journal database component.
	JournalDBComponent = "journaldb"
)

// GetComponentSchemaVersion retrieves the schema version for a given component.
// Returns 0 if the component is not found, the versions table is uninitialized, or the table doesn't exist.
func GetComponentSchemaVersion(ctx context.Context, db *sql.DB, componentName string) (int64, error) {
	query := `SELECT version FROM daylog_versions WHERE component = ?;`

	var version int64
	err := db.QueryRowContext(ctx, query, componentName).Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		if strings.Contains(err.Error(), "no such table") && strings.Contains(err.Error(), "daylog_versions") {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to scan version for component '%s': %w", componentName, err)
	}
	return version, nil
}

// InitializeSchema creates the database schema (all tables for journaldb)
// and sets the specified schema version for the journaldb component.
func InitializeSchema(ctx context.Context, db *sql.DB, schemaVersionToSet int64) error {
	if _, err := db.ExecContext(ctx, SchemaV1); err != nil {
		return fmt.Errorf("failed to execute schema v1 SQL: %w", err)
	}

	insertVersionSQL := `
INSERT INTO daylog_versions (component, version) VALUES (?, ?)
ON CONFLICT(component) DO UPDATE SET version = excluded.version, created_at = unixepoch();`

	if _, err := db.ExecContext(ctx, insertVersionSQL, JournalDBComponent, schemaVersionToSet); err != nil {
		return fmt.Errorf("failed to insert/update version for component %s to %d: %w", JournalDBComponent, schemaVersionToSet, err)
	}

	log.Debug().
		Str("component", JournalDBComponent).
		Int64("version", schemaVersionToSet).
		Msg("schema initialized")
	return nil
}

// UpgradeDB applies necessary migrations to bring the database, represented by the *sql.DB connection,
// for the JournalDBComponent to the appTargetSchemaVersion.
// dbIdentifierForLog is used for logging purposes only.
func UpgradeDB(ctx context.Context, db *sql.DB, dbIdentifierForLog string, appTargetSchemaVersion int64) error {
	currentDBVersion, err := GetComponentSchemaVersion(ctx, db, JournalDBComponent)
	if err != nil {
		return err
	}

	logger := log.With().
		Str("component", JournalDBComponent).
		Str("db", dbIdentifierForLog).
		Logger()

	switch {
	case currentDBVersion == 0:
		logger.Info().Int64("target", appTargetSchemaVersion).Msg("database uninitialized, creating schema")
		if err := InitializeSchema(ctx, db, appTargetSchemaVersion); err != nil {
			return fmt.Errorf("failed to initialize component %s in database '%s': %w", JournalDBComponent, dbIdentifierForLog, err)
		}
		return nil
	case currentDBVersion == appTargetSchemaVersion:
		logger.Debug().Int64("version", currentDBVersion).Msg("schema already up to date")
		return nil
	case currentDBVersion < appTargetSchemaVersion:
		return fmt.Errorf("component %s in database '%s' has schema version %d, which is older than application's target schema version %d. Automatic migration from this older version is not yet supported", JournalDBComponent, dbIdentifierForLog, currentDBVersion, appTargetSchemaVersion)
	default:
		return fmt.Errorf("component %s in database '%s' has schema version %d, which is newer than application's target schema version %d. Please upgrade the application", JournalDBComponent, dbIdentifierForLog, currentDBVersion, appTargetSchemaVersion)
	}
}

// Open opens the database at path and brings its schema to TargetSchemaVersion.
func Open(ctx context.Context, path string, opts Options) (*sql.DB, error) {
	conn, err := OpenDBConnection(path, opts)
	if err != nil {
		return nil, err
	}
	if err := UpgradeDB(ctx, conn, path, TargetSchemaVersion); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}
