package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DefaultBusyTimeoutMS is how long a writer waits on a locked database before giving up.
const DefaultBusyTimeoutMS = 5000

// validSyncModes lists the allowed values for the synchronous pragma.
var validSyncModes = map[string]bool{
	"OFF":    true,
	"NORMAL": true,
	"FULL":   true,
	"EXTRA":  true, // SQLite also supports EXTRA
}

// Options controls how OpenDBConnection builds the DSN.
type Options struct {
	// EnableWAL sets the journal_mode to WAL.
	EnableWAL bool
	// SyncPragma sets the synchronous pragma (OFF, NORMAL, FULL, EXTRA). Empty keeps the SQLite default.
	SyncPragma string
	// BusyTimeoutMS makes concurrent writers wait for the lock instead of failing with SQLITE_BUSY.
	// Zero selects DefaultBusyTimeoutMS.
	BusyTimeoutMS int
}

// OpenDBConnection establishes a connection to a SQLite database with specified options.
// baseDSN is the initial data source name (e.g., file path or ":memory:").
func OpenDBConnection(baseDSN string, opts Options) (*sql.DB, error) {
	params := url.Values{}

	if opts.EnableWAL {
		params.Add("_journal_mode", "WAL")
	}

	if opts.SyncPragma != "" {
		ucSyncPragma := strings.ToUpper(opts.SyncPragma)
		if !validSyncModes[ucSyncPragma] {
			return nil, fmt.Errorf("invalid sync pragma value: %s. Must be one of OFF, NORMAL, FULL, EXTRA", opts.SyncPragma)
		}
		params.Add("_synchronous", ucSyncPragma)
	}

	busyTimeout := opts.BusyTimeoutMS
	if busyTimeout <= 0 {
		busyTimeout = DefaultBusyTimeoutMS
	}
	params.Add("_busy_timeout", strconv.Itoa(busyTimeout))
	params.Add("_foreign_keys", "on")
	// Writers take the lock at BEGIN so the busy timeout applies to them.
	params.Add("_txlock", "immediate")

	constructedDSN := baseDSN
	if strings.Contains(baseDSN, "?") {
		constructedDSN += "&" + params.Encode()
	} else {
		constructedDSN += "?" + params.Encode()
	}

	db, err := sql.Open("sqlite3", constructedDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database with DSN '%s': %w", constructedDSN, err)
	}

	// Every pooled connection to ":memory:" would get its own empty database.
	if isMemoryDSN(baseDSN) {
		db.SetMaxOpenConns(1)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database with DSN '%s': %w", constructedDSN, err)
	}

	return db, nil
}

func isMemoryDSN(dsn string) bool {
	return strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
