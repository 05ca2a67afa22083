// Package migrations holds the embedded schema for the event map document
// store.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var fs embed.FS

var (
	setupOnce sync.Once
	setupErr  error
)

// goose keeps its configuration in package globals.
func setup() error {
	setupOnce.Do(func() {
		goose.SetBaseFS(fs)
		// goose prints to the standard logger, which would interleave
		// with the JSON log stream.
		goose.SetLogger(goose.NopLogger())
		setupErr = goose.SetDialect("sqlite3")
	})
	if setupErr != nil {
		return fmt.Errorf("setting dialect: %w", setupErr)
	}
	return nil
}

// Run applies all pending migrations against db.
func Run(db *sql.DB) error {
	if err := setup(); err != nil {
		return err
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Version reports the schema version recorded in db.
func Version(db *sql.DB) (int64, error) {
	if err := setup(); err != nil {
		return 0, err
	}
	v, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return v, nil
}
