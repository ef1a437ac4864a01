package alerts

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"route-divergence-service/internal/ports"
)

// LogNotifier writes divergence alerts to the structured log only.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: log.Logger}
}

// NewLogNotifierWith uses the given logger instead of the global one.
func NewLogNotifierWith(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, alert ports.DivergenceAlert) error {
	n.logger.Warn().
		Str("event", EventRouteDivergence).
		Str("record_id", alert.RecordID).
		Str("route_id", alert.RouteID).
		Str("provider", alert.Provider).
		Str("compared_to", alert.ComparedTo).
		Int("avg_m", alert.AvgDeviationMeters).
		Int("max_m", alert.MaxDeviationMeters).
		Int64("ts_ms", alert.Timestamp).
		Msg("provider route diverges from reference")
	return nil
}
