package obs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

type ctxKey string

const (
	RequestIDKey ctxKey = "req_id"
	RouteIDKey   ctxKey = "route_id"
)

// WithRouteID tags ctx so timing lines can be correlated with a route poll.
func WithRouteID(ctx context.Context, routeID string) context.Context {
	return context.WithValue(ctx, RouteIDKey, routeID)
}

// Time starts a timer for op name. Call the returned func (usually deferred)
// with a pointer to the operation's error.
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID, _ := ctx.Value(RequestIDKey).(string)
	routeID, _ := ctx.Value(RouteIDKey).(string)

	return func(errp *error) {
		ev := log.Debug()
		if errp != nil && *errp != nil {
			ev = log.Warn().Err(*errp)
		}
		if reqID != "" {
			ev = ev.Str("req_id", reqID)
		}
		if routeID != "" {
			ev = ev.Str("route_id", routeID)
		}
		ev.Str("op", name).Int64("dur_ms", time.Since(start).Milliseconds()).Msg("timing")
	}
}
