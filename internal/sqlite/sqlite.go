// Package sqlite is the store backend: an embedded SQLite database holding
// the ledger, tenant settings, and infraction log. All access from the
// repositories goes through WithTx, which bounds transaction time and retries
// transient lock contention before surfacing a storage error.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/AesthetixDev/koko/internal/domain"
	"github.com/AesthetixDev/koko/internal/metrics"
	"github.com/AesthetixDev/koko/internal/platform/retry"
)

const txTimeout = 5 * time.Second

var busyPolicy = retry.Policy{
	MaxAttempts:    3,
	InitialBackoff: 10 * time.Millisecond,
	OnRetry: func(attempt int, err error, backoff time.Duration) {
		slog.Debug("retrying locked store transaction", "attempt", attempt, "backoff", backoff, "error", err)
	},
}

type DB struct {
	*sql.DB
}

// Open opens (creating if necessary) the database at path. WAL keeps readers
// unblocked by the single writer; immediate transactions take the write lock
// up front so guarded updates never upgrade mid-transaction.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer at a time; a single connection avoids
	// spurious SQLITE_BUSY between our own goroutines.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// RunMigrations creates the schema idempotently. A failure here is fatal to
// process start.
func (db *DB) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS ledger (
			user_id INTEGER PRIMARY KEY,
			balance INTEGER NOT NULL DEFAULT 0,
			last_claim REAL NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS tenant_settings (
			tenant_id INTEGER PRIMARY KEY,
			audit_channel INTEGER,
			prefix TEXT NOT NULL DEFAULT '!'
		)`,
		`CREATE TABLE IF NOT EXISTS infractions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			reason TEXT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_infractions_user_id ON infractions(user_id)`,
	}

	for _, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	slog.Info("database migrations completed")
	return nil
}

// WithTx runs fn inside a single transaction named op for metrics. It commits
// on nil return and rolls back otherwise. Domain errors returned by fn pass
// through untouched; everything else comes back as *domain.StorageError.
// The context handed to fn is detached from the caller and bounded only by
// txTimeout, so statements inside the transaction must use it, not the
// caller's context.
func (db *DB) WithTx(ctx context.Context, op string, fn func(ctx context.Context, tx *sql.Tx) error) error {
	// A dropped caller must not abort a half-applied mutation; the timeout is
	// the only bound on a started transaction.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), txTimeout)
	defer cancel()

	start := time.Now()
	err := retry.DoVoid(ctx, busyPolicy, classify, func() error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return &domain.StorageError{Op: op, Err: err}
		}
		defer tx.Rollback() //nolint:errcheck // no-op after commit

		if err := fn(ctx, tx); err != nil {
			if isDomainOutcome(err) {
				return err
			}
			return &domain.StorageError{Op: op, Err: err}
		}

		if err := tx.Commit(); err != nil {
			return &domain.StorageError{Op: op, Err: err}
		}
		return nil
	})
	metrics.StoreOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err != nil {
		var storageErr *domain.StorageError
		if errors.As(err, &storageErr) {
			metrics.StoreErrorsTotal.WithLabelValues(op).Inc()
		}
		return err
	}
	return nil
}

// isDomainOutcome reports whether err is one of the expected business results
// a repository signals from inside a transaction, as opposed to an
// infrastructure failure.
func isDomainOutcome(err error) bool {
	var cooldownErr *domain.CooldownError
	var storageErr *domain.StorageError
	return errors.Is(err, domain.ErrInsufficientFunds) ||
		errors.As(err, &cooldownErr) ||
		errors.As(err, &storageErr)
}

// classify treats SQLite lock contention as transient. Everything else,
// including domain errors from fn, aborts immediately.
func classify(err error) retry.Action {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		if sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked {
			return retry.Retry
		}
	}
	return retry.Stop
}
