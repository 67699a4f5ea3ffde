// Package db persists spectrometer configuration in a local sqlite
// database. Acquired spectra are deliberately not stored here; the
// database holds only serial port presets and similar slow-changing
// configuration.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the sql handle with the application's queries.
type DB struct {
	*sql.DB
}

const schema = `
	CREATE TABLE IF NOT EXISTS spectro_serial_config (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL,
		port_path   TEXT NOT NULL,
		baud_rate   INTEGER NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		enabled     INTEGER NOT NULL DEFAULT 0,
		created_at  INTEGER NOT NULL DEFAULT (unixepoch()),
		updated_at  INTEGER NOT NULL DEFAULT (unixepoch())
	);
`

// NewDB opens (creating if necessary) the sqlite database at path and
// ensures the schema exists.
func NewDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialise schema: %w", err)
	}

	return &DB{conn}, nil
}
