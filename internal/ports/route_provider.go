package ports

import (
	"context"
	"route-divergence-service/internal/domain"
)

// Contract for fetching a travel estimate for one route from a routing provider.
type RouteProvider interface {
	// Stable identifier used as the provider key in poll records (e.g. "google").
	Name() string
	// Return the normalized estimate, or an error when no usable route is available.
	// Implementations must not return partial numeric data alongside an error.
	Fetch(ctx context.Context, route domain.RouteConfig) (domain.Estimate, error)
}
