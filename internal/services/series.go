package services

import "route-divergence-service/internal/domain"

// SeriesPoint is one provider's value at one poll instant. Nil fields mean the
// provider failed or reported nothing for that poll.
type SeriesPoint struct {
	Timestamp          int64 `json:"timestamp"`
	DurationSeconds    *int  `json:"durationSeconds"`
	DistanceMeters     *int  `json:"distanceMeters"`
	AvgDeviationMeters *int  `json:"avgDeviationMeters"`
	IsDifferentRoute   bool  `json:"isDifferentRoute"`
}

type ProviderSeries struct {
	Provider string        `json:"provider"`
	Points   []SeriesPoint `json:"points"`
}

// BuildSeries turns stored records into one time series per provider, in the
// given provider order. Every series has one point per record, so series line
// up on the same timestamps. Providers missing from a record get an empty point.
func BuildSeries(records []domain.PollRecord, providers []string) []ProviderSeries {
	out := make([]ProviderSeries, 0, len(providers))
	for _, name := range providers {
		points := make([]SeriesPoint, 0, len(records))
		for _, rec := range records {
			pt := SeriesPoint{Timestamp: rec.Timestamp}

			if res, ok := rec.Result(name); ok && res.OK() {
				dur := res.Estimate.DurationSeconds
				dist := res.Estimate.DistanceMeters
				pt.DurationSeconds = &dur
				pt.DistanceMeters = &dist

				if res.Divergence != nil {
					avg := res.Divergence.AvgDeviationMeters
					pt.AvgDeviationMeters = &avg
					pt.IsDifferentRoute = res.Divergence.IsDifferentRoute
				}
			}

			points = append(points, pt)
		}
		out = append(out, ProviderSeries{Provider: name, Points: points})
	}
	return out
}

// ProvidersIn lists provider names in first-seen order across records.
func ProvidersIn(records []domain.PollRecord) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, rec := range records {
		for _, res := range rec.Results {
			if _, ok := seen[res.Provider]; ok {
				continue
			}
			seen[res.Provider] = struct{}{}
			names = append(names, res.Provider)
		}
	}
	return names
}
