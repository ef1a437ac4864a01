package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"route-divergence-service/internal/domain"
	"route-divergence-service/internal/platform/obs"
)

// SQLRecordSink is a Postgres-backed RecordSink (pgx stdlib driver).
type SQLRecordSink struct {
	DB *sql.DB
}

func NewSQLRecordSink(db *sql.DB) *SQLRecordSink {
	return &SQLRecordSink{DB: db}
}

// Store one poll record.
func (s *SQLRecordSink) Append(ctx context.Context, routeID string, record domain.PollRecord) (err error) {
	defer obs.Time(ctx, "records.postgres.Append")(&err)

	if s.DB == nil {
		return errors.New("record sink: db is nil")
	}
	if err := checkAppend(routeID, record); err != nil {
		return err
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("append record: marshal: %w", err)
	}

	q := `
	INSERT INTO poll_records (id, route_id, ts_ms, payload)
	VALUES ($1, $2, $3, $4);
	`
	if _, err := s.DB.ExecContext(ctx, q, record.ID, routeID, record.Timestamp, payload); err != nil {
		return fmt.Errorf("append record route=%q: %w", routeID, err)
	}

	return nil
}

// Fetch every record for a route, oldest first.
func (s *SQLRecordSink) ReadAll(ctx context.Context, routeID string) (_ []domain.PollRecord, err error) {
	defer obs.Time(ctx, "records.postgres.ReadAll")(&err)

	q := `
	SELECT payload
	FROM poll_records
	WHERE route_id = $1
	ORDER BY seq;
	`
	return s.query(ctx, q, routeID)
}

// Fetch the newest n records for a route, oldest first.
func (s *SQLRecordSink) ReadLatest(ctx context.Context, routeID string, n int) (_ []domain.PollRecord, err error) {
	defer obs.Time(ctx, "records.postgres.ReadLatest")(&err)

	if n <= 0 {
		return []domain.PollRecord{}, nil
	}

	q := `
	SELECT payload FROM (
		SELECT seq, payload
		FROM poll_records
		WHERE route_id = $1
		ORDER BY seq DESC
		LIMIT $2
	) latest
	ORDER BY seq;
	`
	return s.query(ctx, q, routeID, n)
}

func (s *SQLRecordSink) query(ctx context.Context, q string, args ...any) ([]domain.PollRecord, error) {
	if s.DB == nil {
		return nil, errors.New("record sink: db is nil")
	}

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("read records: query poll_records table: %w", err)
	}
	defer rows.Close()

	payloads := make([][]byte, 0, 64)
	for rows.Next() {
		var p []byte
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("read records: scan rows: %w", err)
		}
		payloads = append(payloads, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read records: row iteration: %w", err)
	}

	return decodePayloads(payloads)
}
