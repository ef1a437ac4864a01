package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-divergence-service/internal/domain"
	"route-divergence-service/internal/platform/db"
	"route-divergence-service/internal/ports"
)

func record(routeID string, i int) domain.PollRecord {
	return domain.PollRecord{
		ID:        fmt.Sprintf("%s-%03d", routeID, i),
		Timestamp: int64(1_700_000_000_000 + i*300_000),
		RouteID:   routeID,
		Results: []domain.ProviderResult{
			domain.Succeeded("google", domain.Estimate{DurationSeconds: 600 + i, DistanceMeters: 5000, Polyline: "_p~iF~ps|U"}),
			domain.Failed("tomtom", "HTTP 500"),
		},
	}
}

func newSqliteSink(t *testing.T) ports.RecordSink {
	t.Helper()

	conn, err := db.OpenSqlite(filepath.Join(t.TempDir(), "records.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, InitSchema(conn))
	// Running it twice must be harmless.
	require.NoError(t, InitSchema(conn))

	return NewSqliteRecordSink(conn)
}

func newRedisSink(t *testing.T) ports.RecordSink {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisRecordSink(client)
}

func TestRecordSinks(t *testing.T) {
	sinks := map[string]func(t *testing.T) ports.RecordSink{
		"file":   func(t *testing.T) ports.RecordSink { return NewFileRecordSink(t.TempDir()) },
		"sqlite": newSqliteSink,
		"redis":  newRedisSink,
	}

	for name, newSink := range sinks {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("empty route reads as empty", func(t *testing.T) {
				sink := newSink(t)

				all, err := sink.ReadAll(ctx, "nowhere")
				require.NoError(t, err)
				assert.Empty(t, all)

				latest, err := sink.ReadLatest(ctx, "nowhere", 5)
				require.NoError(t, err)
				assert.Empty(t, latest)
			})

			t.Run("append preserves order and content", func(t *testing.T) {
				sink := newSink(t)
				for i := 1; i <= 5; i++ {
					require.NoError(t, sink.Append(ctx, "r1", record("r1", i)))
				}
				require.NoError(t, sink.Append(ctx, "r2", record("r2", 1)))

				all, err := sink.ReadAll(ctx, "r1")
				require.NoError(t, err)
				require.Len(t, all, 5)
				for i, rec := range all {
					assert.Equal(t, record("r1", i+1), rec)
				}

				other, err := sink.ReadAll(ctx, "r2")
				require.NoError(t, err)
				assert.Len(t, other, 1)
			})

			t.Run("read latest returns the newest n oldest first", func(t *testing.T) {
				sink := newSink(t)
				for i := 1; i <= 5; i++ {
					require.NoError(t, sink.Append(ctx, "r1", record("r1", i)))
				}

				latest, err := sink.ReadLatest(ctx, "r1", 2)
				require.NoError(t, err)
				require.Len(t, latest, 2)
				assert.Equal(t, "r1-004", latest[0].ID)
				assert.Equal(t, "r1-005", latest[1].ID)

				more, err := sink.ReadLatest(ctx, "r1", 50)
				require.NoError(t, err)
				assert.Len(t, more, 5)

				none, err := sink.ReadLatest(ctx, "r1", 0)
				require.NoError(t, err)
				assert.Empty(t, none)
			})

			t.Run("append rejects mismatched route id", func(t *testing.T) {
				sink := newSink(t)
				err := sink.Append(ctx, "r2", record("r1", 1))
				require.ErrorIs(t, err, errRouteMismatch)
			})
		})
	}
}

func TestFileRecordSinkLayout(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")
	sink := NewFileRecordSink(dir)

	require.NoError(t, sink.Append(ctx, "r1", record("r1", 1)))

	data, err := os.ReadFile(filepath.Join(dir, "r1.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  {")
	assert.Contains(t, string(data), `"routeId": "r1"`)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileRecordSinkCorruptFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fp := filepath.Join(dir, "r1.json")
	require.NoError(t, os.WriteFile(fp, []byte("{not json"), 0o644))

	sink := NewFileRecordSink(dir)

	all, err := sink.ReadAll(ctx, "r1")
	require.NoError(t, err)
	assert.Empty(t, all)

	err = sink.Append(ctx, "r1", record("r1", 1))
	require.ErrorIs(t, err, errCorruptFile)

	data, err := os.ReadFile(fp)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data), "corrupt file must be left untouched")
}

func TestFileRecordSinkRejectsPathTraversal(t *testing.T) {
	ctx := context.Background()
	sink := NewFileRecordSink(t.TempDir())

	for _, id := range []string{"../etc", "a/b", `a\b`, ".."} {
		rec := record(id, 1)
		assert.Error(t, sink.Append(ctx, id, rec), id)

		_, err := sink.ReadAll(ctx, id)
		assert.Error(t, err, id)
	}
}

func TestRedisRecordSinkKeys(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sink := NewRedisRecordSink(client)
	require.NoError(t, sink.Append(ctx, "r1", record("r1", 1)))
	require.NoError(t, sink.Append(ctx, "r1", record("r1", 2)))

	values, err := mr.List("poll_records:r1")
	require.NoError(t, err)
	assert.Len(t, values, 2)
}

func TestNewRedisClientUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedisClient(context.Background(), addr, "", 0)
	require.Error(t, err)
}
