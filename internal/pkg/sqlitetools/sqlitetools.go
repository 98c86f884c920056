package sqlitetools

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Leopold1975/incidents_control/internal/pkg/config"
	"github.com/Leopold1975/incidents_control/migrations"
	_ "github.com/mattn/go-sqlite3" // sqlite driver
	"github.com/pressly/goose/v3"
)

// Connect opens the database file with foreign keys enforced and a busy
// timeout so concurrent request handlers don't fail on transient locks.
func Connect(ctx context.Context, cfg config.SQLiteDB) (*sql.DB, error) {
	dsn := "file:" + cfg.Path + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open db error: %w", err)
	}

	// A single writer keeps sqlite out of SQLITE_BUSY territory.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("cannot ping db error: %w", err)
	}

	return db, nil
}

func ApplyMigration(db *sql.DB, cfg config.SQLiteDB) error {
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose set dialect error: %w", err)
	}

	goose.SetBaseFS(migrations.FS)

	if cfg.Reload {
		if err := goose.DownTo(db, ".", 0); err != nil {
			return fmt.Errorf("goose down error: %w", err)
		}
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("goose up error: %w", err)
	}

	return nil
}

func CommitOrRollback(tx *sql.Tx, err error, where string) error {
	if err == nil {
		if errT := tx.Commit(); errT != nil {
			err = fmt.Errorf("commit error: %w", errT)
		}
	} else {
		if errT := tx.Rollback(); errT != nil {
			err = fmt.Errorf("%s error: %w rollback error: %w", where, err, errT)
		} else {
			err = fmt.Errorf("%s error: %w", where, err)
		}
	}

	return err
}
