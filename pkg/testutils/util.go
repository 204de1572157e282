// SPDX-License-Identifier: Apache-2.0

package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// The version of postgres against which the tests are run
// if the POSTGRES_VERSION environment variable is not set.
const defaultPostgresVersion = "15.3"

// tConnStr holds the connection string to the test container created in
// SharedTestMain. It is empty when no container could be started.
var tConnStr string

// SharedTestMain starts a postgres container to be used by all tests in a
// package. Each test then connects to the container and creates a new
// database. Without a container runtime the package's postgres tests are
// skipped and the rest still run.
func SharedTestMain(m *testing.M) {
	ctx := context.Background()

	waitForLogs := wait.
		ForLog("database system is ready to accept connections").
		WithOccurrence(2).
		WithStartupTimeout(30 * time.Second)

	pgVersion := os.Getenv("POSTGRES_VERSION")
	if pgVersion == "" {
		pgVersion = defaultPostgresVersion
	}

	ctr, err := startContainer(ctx, pgVersion, waitForLogs)
	if err != nil {
		log.Printf("postgres tests disabled: %v", err)
		os.Exit(m.Run())
	}

	tConnStr, err = ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		os.Exit(1)
	}

	exitCode := m.Run()

	if err := ctr.Terminate(ctx); err != nil {
		log.Printf("Failed to terminate container: %v", err)
	}

	os.Exit(exitCode)
}

func startContainer(ctx context.Context, version string, strategy wait.Strategy) (ctr *postgres.PostgresContainer, err error) {
	// the docker provider panics when no daemon is reachable
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("starting postgres container: %v", r)
		}
	}()

	return postgres.Run(ctx, "postgres:"+version,
		testcontainers.WithWaitStrategy(strategy),
	)
}

// WithPostgres calls fn with the URL of a fresh database in the shared test
// container, skipping the test when there is no container.
func WithPostgres(t *testing.T, fn func(connStr string)) {
	t.Helper()

	if tConnStr == "" {
		t.Skip("no postgres container available")
	}

	_, connStr := setupTestDatabase(t)
	fn(connStr)
}

// setupTestDatabase creates a new database in the test container and returns
// a connection to it and its connection string.
func setupTestDatabase(t *testing.T) (*sql.DB, string) {
	t.Helper()
	ctx := context.Background()

	tDB, err := sql.Open("postgres", tConnStr)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err := tDB.Close(); err != nil {
			t.Fatalf("Failed to close database connection: %v", err)
		}
	})

	dbName := randomDBName()

	_, err = tDB.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE %s", pq.QuoteIdentifier(dbName)))
	if err != nil {
		t.Fatal(err)
	}

	u, err := url.Parse(tConnStr)
	if err != nil {
		t.Fatal(err)
	}

	u.Path = "/" + dbName
	connStr := u.String()

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Fatalf("Failed to close database connection: %v", err)
		}
	})

	return db, connStr
}

func randomDBName() string {
	return "testdb_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
