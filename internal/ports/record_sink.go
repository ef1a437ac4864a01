package ports

import (
	"context"
	"route-divergence-service/internal/domain"
)

// Port: append-only persistence of poll records, keyed by route identifier.
type RecordSink interface {
	// Persist one record for the route. Records are never updated afterwards.
	Append(ctx context.Context, routeID string, record domain.PollRecord) error
	// Return every record for the route, oldest first.
	ReadAll(ctx context.Context, routeID string) ([]domain.PollRecord, error)
	// Return the last n records for the route, oldest first.
	ReadLatest(ctx context.Context, routeID string, n int) ([]domain.PollRecord, error)
}
