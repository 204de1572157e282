// SPDX-License-Identifier: Apache-2.0

package history_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/oapi-codegen/nullable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xataio/jmeter-analyzer/pkg/history"
	"github.com/xataio/jmeter-analyzer/pkg/report"
	"github.com/xataio/jmeter-analyzer/pkg/testutils"
)

func TestMain(m *testing.M) {
	testutils.SharedTestMain(m)
}

// withStores runs fn against a SQLite store and, when a container is
// available, a Postgres store.
func withStores(t *testing.T, fn func(t *testing.T, url string)) {
	t.Helper()

	t.Run("sqlite", func(t *testing.T) {
		fn(t, filepath.Join(t.TempDir(), "nested", "history.db"))
	})
	t.Run("postgres", func(t *testing.T) {
		testutils.WithPostgres(t, func(connStr string) {
			fn(t, connStr)
		})
	})
}

func tableSet() *report.TableSet {
	return &report.TableSet{
		Source: "/reports/nightly",
		Endpoints: report.EndpointTable{
			{
				Label:    "Total",
				Samples:  nullable.NewNullableWithValue[int64](110),
				Failures: nullable.NewNullableWithValue[int64](5),
				ErrorPct: nullable.NewNullableWithValue(4.55),
				Average:  nullable.NewNullableWithValue(120.0),
			},
			{
				Label:    "GET /api/users",
				Samples:  nullable.NewNullableWithValue[int64](100),
				Failures: nullable.NewNullableWithValue[int64](5),
				Average:  nullable.NewNullableWithValue(125.5),
				P99:      nullable.NewNullNullable[float64](),
			},
		},
		Aggregate: &report.Aggregate{
			Average:  nullable.NewNullableWithValue(120.0),
			ErrorPct: nullable.NewNullableWithValue(4.55),
		},
		Errors: report.ErrorTable{
			{Endpoint: "GET /api/users", Error: "500/Internal Server Error", Errors: 5, Requests: 100, ErrorPct: 5},
		},
	}
}

func TestSaveAndGet(t *testing.T) {
	t.Parallel()

	withStores(t, func(t *testing.T, url string) {
		ctx := context.Background()

		store, err := history.Open(ctx, url, "v1.0.0")
		require.NoError(t, err)
		defer store.Close()

		saved, err := store.Save(ctx, "nightly", tableSet())
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)

		got, err := store.Get(ctx, "nightly")
		require.NoError(t, err)

		assert.Equal(t, saved.ID, got.ID)
		assert.Equal(t, "nightly", got.Name)
		assert.Equal(t, "/reports/nightly", got.Source)
		assert.WithinDuration(t, saved.CreatedAt, got.CreatedAt, time.Second)
		assert.Equal(t, tableSet(), got.Tables)
	})
}

func TestSaveReplacesRunWithSameName(t *testing.T) {
	t.Parallel()

	withStores(t, func(t *testing.T, url string) {
		ctx := context.Background()

		store, err := history.Open(ctx, url, "v1.0.0")
		require.NoError(t, err)
		defer store.Close()

		_, err = store.Save(ctx, "nightly", tableSet())
		require.NoError(t, err)

		updated := tableSet()
		updated.Source = "/reports/rerun"
		second, err := store.Save(ctx, "nightly", updated)
		require.NoError(t, err)

		runs, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, second.ID, runs[0].ID)
		assert.Equal(t, "/reports/rerun", runs[0].Source)
		assert.Nil(t, runs[0].Tables)
	})
}

func TestListAndDelete(t *testing.T) {
	t.Parallel()

	withStores(t, func(t *testing.T, url string) {
		ctx := context.Background()

		store, err := history.Open(ctx, url, "v1.0.0")
		require.NoError(t, err)
		defer store.Close()

		for _, name := range []string{"baseline", "candidate"} {
			_, err := store.Save(ctx, name, tableSet())
			require.NoError(t, err)
		}

		runs, err := store.List(ctx)
		require.NoError(t, err)
		var names []string
		for _, r := range runs {
			names = append(names, r.Name)
		}
		assert.ElementsMatch(t, []string{"baseline", "candidate"}, names)

		require.NoError(t, store.Delete(ctx, "baseline"))

		_, err = store.Get(ctx, "baseline")
		assert.ErrorIs(t, err, history.ErrRunNotFound)
		assert.ErrorIs(t, store.Delete(ctx, "baseline"), history.ErrRunNotFound)

		runs, err = store.List(ctx)
		require.NoError(t, err)
		require.Len(t, runs, 1)
		assert.Equal(t, "candidate", runs[0].Name)
	})
}

func TestVersionCompatibility(t *testing.T) {
	t.Parallel()

	withStores(t, func(t *testing.T, url string) {
		ctx := context.Background()

		newer, err := history.Open(ctx, url, "v1.2.0")
		require.NoError(t, err)

		compat, err := newer.VersionCompatibility(ctx)
		require.NoError(t, err)
		assert.Equal(t, history.VersionCompatStoreEqual, compat)
		require.NoError(t, newer.Close())

		// an older binary can read but not write
		older, err := history.Open(ctx, url, "1.1.0")
		require.NoError(t, err)
		defer older.Close()

		compat, err = older.VersionCompatibility(ctx)
		require.NoError(t, err)
		assert.Equal(t, history.VersionCompatStoreNewer, compat)

		_, err = older.List(ctx)
		require.NoError(t, err)

		_, err = older.Save(ctx, "nightly", tableSet())
		assert.ErrorIs(t, err, history.ErrNewerStoreSchema)

		version, err := older.StoreVersion(ctx)
		require.NoError(t, err)
		assert.Equal(t, "v1.2.0", version)

		// development builds skip the check
		dev, err := history.Open(ctx, url, "development")
		require.NoError(t, err)
		defer dev.Close()

		compat, err = dev.VersionCompatibility(ctx)
		require.NoError(t, err)
		assert.Equal(t, history.VersionCompatCheckSkipped, compat)
	})
}

func TestOpenCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := history.Open(ctx, filepath.Join(t.TempDir(), "history.db"), "v1.0.0")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPostgresSchema(t *testing.T) {
	t.Parallel()

	testutils.WithPostgres(t, func(connStr string) {
		ctx := context.Background()

		store, err := history.Open(ctx, connStr, "v1.0.0", history.WithSchema("perf_runs"))
		require.NoError(t, err)
		defer store.Close()

		_, err = store.Save(ctx, "nightly", tableSet())
		require.NoError(t, err)

		conn, err := sql.Open("postgres", connStr)
		require.NoError(t, err)
		defer conn.Close()

		var count int
		err = conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM perf_runs.runs").Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
