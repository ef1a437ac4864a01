package ports

import "context"

// DivergenceAlert is emitted when a provider suggests a different road than the reference.
type DivergenceAlert struct {
	RecordID           string `json:"recordId"`
	RouteID            string `json:"routeId"`
	Provider           string `json:"provider"`
	ComparedTo         string `json:"comparedTo"`
	AvgDeviationMeters int    `json:"avgDeviationMeters"`
	MaxDeviationMeters int    `json:"maxDeviationMeters"`
	Timestamp          int64  `json:"timestamp"`
}

type DivergenceNotifier interface {
	Notify(ctx context.Context, alert DivergenceAlert) error
}
