//go:build integration

package storage

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-divergence-service/internal/platform/db"
)

// Requires TEST_DATABASE_URL pointing at a disposable Postgres database.
func TestSQLRecordSinkPostgres(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	conn, err := db.Open(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, InitPostgresSchema(conn))
	_, err = conn.Exec(`DELETE FROM poll_records WHERE route_id = 'it-route'`)
	require.NoError(t, err)

	ctx := context.Background()
	sink := NewSQLRecordSink(conn)
	for i := 1; i <= 3; i++ {
		require.NoError(t, sink.Append(ctx, "it-route", record("it-route", i)))
	}

	all, err := sink.ReadAll(ctx, "it-route")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, record("it-route", 1), all[0])

	latest, err := sink.ReadLatest(ctx, "it-route", 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "it-route-002", latest[0].ID)
}
