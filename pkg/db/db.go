// SPDX-License-Identifier: Apache-2.0

package db

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/cloudflare/backoff"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	lockNotAvailableErrorCode pq.ErrorCode = "55P03"
	maxBackoffDuration                     = 1 * time.Minute
	backoffInterval                        = 1 * time.Second
)

// Dialect identifies the SQL flavour spoken by a connection.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// Driver returns the database/sql driver name for the dialect.
func (d Dialect) Driver() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite"
}

// DialectFor picks the dialect for a store URL. postgres:// and
// postgresql:// URLs are Postgres, everything else names a SQLite file.
func DialectFor(url string) Dialect {
	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return Postgres
	}
	return SQLite
}

type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	WithRetryableTransaction(ctx context.Context, f func(context.Context, *sql.Tx) error) error
	Rebind(query string) string
	Dialect() Dialect
	Close() error
}

// RDB wraps a *sql.DB and retries queries using an exponential backoff (with
// jitter) while the database reports a lock conflict: lock_timeout errors on
// Postgres and SQLITE_BUSY on SQLite.
//
// Queries use `?` placeholders; they are rewritten for the connection's
// dialect before being sent.
type RDB struct {
	DB      *sql.DB
	Flavour Dialect
}

// ExecContext wraps sql.DB.ExecContext, retrying queries on lock errors.
func (db *RDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	b := backoff.New(maxBackoffDuration, backoffInterval)
	query = db.Rebind(query)

	for {
		res, err := db.DB.ExecContext(ctx, query, args...)
		if err == nil {
			return res, nil
		}

		if isLockError(err) {
			if err := sleepCtx(ctx, b.Duration()); err != nil {
				return nil, err
			}
			continue
		}

		return nil, err
	}
}

// QueryContext wraps sql.DB.QueryContext, retrying queries on lock errors.
func (db *RDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	b := backoff.New(maxBackoffDuration, backoffInterval)
	query = db.Rebind(query)

	for {
		rows, err := db.DB.QueryContext(ctx, query, args...)
		if err == nil {
			return rows, nil
		}

		if isLockError(err) {
			if err := sleepCtx(ctx, b.Duration()); err != nil {
				return nil, err
			}
			continue
		}

		return nil, err
	}
}

// WithRetryableTransaction runs `f` in a transaction, retrying on lock errors.
// Statements issued by `f` on the transaction must be passed through Rebind.
func (db *RDB) WithRetryableTransaction(ctx context.Context, f func(context.Context, *sql.Tx) error) error {
	b := backoff.New(maxBackoffDuration, backoffInterval)

	for {
		tx, err := db.DB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}

		err = f(ctx, tx)
		if err == nil {
			return tx.Commit()
		}

		if errRollback := tx.Rollback(); errRollback != nil {
			return errRollback
		}

		if isLockError(err) {
			if err := sleepCtx(ctx, b.Duration()); err != nil {
				return err
			}
			continue
		}

		return err
	}
}

// Rebind rewrites `?` placeholders into the dialect's form.
func (db *RDB) Rebind(query string) string {
	if db.Flavour != Postgres {
		return query
	}

	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (db *RDB) Dialect() Dialect {
	return db.Flavour
}

func (db *RDB) Close() error {
	return db.DB.Close()
}

// Ping checks the connection, retrying with backoff until it succeeds or
// attempts are exhausted.
func Ping(ctx context.Context, conn *sql.DB, attempts int) error {
	b := backoff.New(maxBackoffDuration, backoffInterval)

	var err error
	for range max(attempts, 1) {
		if err = conn.PingContext(ctx); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := sleepCtx(ctx, b.Duration()); err != nil {
			return err
		}
	}
	return err
}

func isLockError(err error) bool {
	pqErr := &pq.Error{}
	if errors.As(err, &pqErr) && pqErr.Code == lockNotAvailableErrorCode {
		return true
	}

	sqliteErr := &sqlite.Error{}
	if errors.As(err, &sqliteErr) {
		// extended result codes keep the primary code in the low byte
		code := sqliteErr.Code() & 0xff
		return code == sqlite3.SQLITE_BUSY || code == sqlite3.SQLITE_LOCKED
	}
	return false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// ScanFirstValue is a helper function to scan the first value with the assumption that Rows contains
// a single row with a single value.
func ScanFirstValue[T any](rows *sql.Rows, dest *T) error {
	if rows.Next() {
		if err := rows.Scan(dest); err != nil {
			return err
		}
	}
	return rows.Err()
}
