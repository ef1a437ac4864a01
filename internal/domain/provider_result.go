package domain

import "strings"

const unknownError = "Unknown error"

// Normalized travel estimate returned by a provider adapter.
// Optional fields are only populated by providers that report them.
type Estimate struct {
	DurationSeconds          int    `json:"durationSeconds"`
	DurationNoTrafficSeconds *int   `json:"durationNoTrafficSeconds,omitempty"`
	TrafficDelaySeconds      *int   `json:"trafficDelaySeconds,omitempty"`
	DistanceMeters           int    `json:"distanceMeters"`
	Polyline                 string `json:"polyline,omitempty"`
}

// DivergenceReport describes how far a candidate path strays from the reference path.
type DivergenceReport struct {
	ComparedTo         string `json:"comparedTo"`
	AvgDeviationMeters int    `json:"avgDeviationMeters"`
	MaxDeviationMeters int    `json:"maxDeviationMeters"`
	IsDifferentRoute   bool   `json:"isDifferentRoute"`
}

// ResultStatus tags which half of a ProviderResult is populated.
type ResultStatus string

const (
	StatusOK    ResultStatus = "ok"
	StatusError ResultStatus = "error"
)

// ProviderResult is the outcome of one provider call for one route poll.
// It is either an estimate (StatusOK) or an error description (StatusError),
// never both. Build it with Succeeded or Failed.
type ProviderResult struct {
	Provider   string            `json:"provider"`
	Status     ResultStatus      `json:"status"`
	Estimate   *Estimate         `json:"estimate,omitempty"`
	Error      string            `json:"error,omitempty"`
	Divergence *DivergenceReport `json:"routeDivergence,omitempty"`
}

func Succeeded(provider string, est Estimate) ProviderResult {
	return ProviderResult{Provider: provider, Status: StatusOK, Estimate: &est}
}

// Failed records a provider failure. An empty message becomes "Unknown error".
func Failed(provider string, msg string) ProviderResult {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		msg = unknownError
	}
	return ProviderResult{Provider: provider, Status: StatusError, Error: msg}
}

func (r ProviderResult) OK() bool {
	return r.Status == StatusOK && r.Estimate != nil
}

// Return the encoded path, or "" when the call failed or produced no geometry.
func (r ProviderResult) Polyline() string {
	if !r.OK() {
		return ""
	}
	return r.Estimate.Polyline
}
