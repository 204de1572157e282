// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/xataio/jmeter-analyzer/internal/connstr"
	"github.com/xataio/jmeter-analyzer/pkg/db"
	"github.com/xataio/jmeter-analyzer/pkg/report"
)

const pingAttempts = 5

var ErrRunNotFound = errors.New("run not found")

const sqlInit = `
CREATE TABLE IF NOT EXISTS runs (
	id			TEXT PRIMARY KEY,
	name		TEXT NOT NULL UNIQUE,
	source		TEXT NOT NULL DEFAULT '',
	created_at	TIMESTAMP NOT NULL,
	tables		TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS analyzer_version (
	version			TEXT NOT NULL,
	initialized_at	TIMESTAMP NOT NULL
);
`

// Run is a stored analysis.
type Run struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Source    string           `json:"source,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	Tables    *report.TableSet `json:"tables,omitempty"`
}

// Store keeps parsed reports so that later runs can be compared against
// them.
type Store struct {
	conn    db.DB
	version string
	schema  string
}

type options struct {
	schema string
}

type Option func(*options)

// WithSchema keeps the store's tables in the named Postgres schema, creating
// it if needed. It has no effect on SQLite stores.
func WithSchema(schema string) Option {
	return func(o *options) {
		o.schema = schema
	}
}

// Open connects to the store at url, creating its tables when needed.
// postgres:// URLs are served by Postgres, anything else is the path of a
// SQLite database. version is the analyzer version recorded against the
// store.
func Open(ctx context.Context, url, version string, opts ...Option) (*Store, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	dialect := db.DialectFor(url)
	if dialect != db.Postgres {
		o.schema = ""
	}

	dsn := url
	if dialect == db.Postgres {
		var err error
		if dsn, err = connstr.AppendSearchPathOption(url, o.schema); err != nil {
			return nil, err
		}
	} else {
		path := strings.TrimPrefix(url, "sqlite://")
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating store directory: %w", err)
			}
		}
		dsn = sqliteDSN(path)
	}

	conn, err := sql.Open(dialect.Driver(), dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(ctx, conn, pingAttempts); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to %s store %s: %w", dialect, connstr.Redact(url), err)
	}

	s := &Store{
		conn:    &db.RDB{DB: conn, Flavour: dialect},
		version: version,
		schema:  o.schema,
	}
	if err := s.init(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("initializing store: %w", err)
	}
	return s, nil
}

// sqlitePragmas are applied by the driver to every new connection.
var sqlitePragmas = []string{"busy_timeout(5000)", "journal_mode(WAL)"}

// sqliteDSN returns the modernc.org/sqlite DSN for the database at path.
func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	var b strings.Builder
	b.WriteString(path)
	for _, p := range sqlitePragmas {
		b.WriteString(sep)
		b.WriteString("_pragma=")
		b.WriteString(p)
		sep = "&"
	}
	return b.String()
}

func (s *Store) init(ctx context.Context) error {
	if s.schema != "" {
		if _, err := s.conn.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+pq.QuoteIdentifier(s.schema)); err != nil {
			return err
		}
	}

	for _, stmt := range strings.Split(sqlInit, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return s.recordVersion(ctx)
}

func (s *Store) Close() error {
	return s.conn.Close()
}

// Save stores a parsed report under name, replacing any run with the same
// name.
func (s *Store) Save(ctx context.Context, name string, set *report.TableSet) (*Run, error) {
	if err := s.checkWritable(ctx); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal tables: %w", err)
	}

	run := &Run{
		ID:        uuid.NewString(),
		Name:      name,
		Source:    set.Source,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		Tables:    set,
	}

	err = s.conn.WithRetryableTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.conn.Rebind("DELETE FROM runs WHERE name = ?"), name); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			s.conn.Rebind("INSERT INTO runs (id, name, source, created_at, tables) VALUES (?, ?, ?, ?, ?)"),
			run.ID, run.Name, run.Source, run.CreatedAt, string(raw))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("saving run %q: %w", name, err)
	}
	return run, nil
}

// Get returns the run stored under name.
func (s *Store) Get(ctx context.Context, name string) (*Run, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT id, name, source, created_at, tables FROM runs WHERE name = ?", name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %q", ErrRunNotFound, name)
	}

	var run Run
	var raw string
	if err := rows.Scan(&run.ID, &run.Name, &run.Source, &run.CreatedAt, &raw); err != nil {
		return nil, err
	}

	run.Tables = &report.TableSet{}
	if err := json.Unmarshal([]byte(raw), run.Tables); err != nil {
		return nil, fmt.Errorf("unable to unmarshal tables of run %q: %w", name, err)
	}
	return &run, rows.Err()
}

// List returns every stored run, newest first, without their tables.
func (s *Store) List(ctx context.Context) ([]Run, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT id, name, source, created_at FROM runs ORDER BY created_at DESC, name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Name, &run.Source, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Delete removes the run stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.checkWritable(ctx); err != nil {
		return err
	}

	res, err := s.conn.ExecContext(ctx, "DELETE FROM runs WHERE name = ?", name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrRunNotFound, name)
	}
	return nil
}
