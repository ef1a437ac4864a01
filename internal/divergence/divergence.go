// Package divergence decides whether two encoded polylines describe
// materially different physical routes.
package divergence

import (
	"math"

	"route-divergence-service/internal/domain"
	"route-divergence-service/internal/polyline"
)

const (
	DefaultSampleCount  = 12
	DefaultAvgThreshold = 500.0
	DefaultMaxThreshold = 1000.0
)

// Config tunes the comparison. Zero values select the defaults.
type Config struct {
	SampleCount  int
	AvgThreshold float64
	MaxThreshold float64
}

func DefaultConfig() Config {
	return Config{
		SampleCount:  DefaultSampleCount,
		AvgThreshold: DefaultAvgThreshold,
		MaxThreshold: DefaultMaxThreshold,
	}
}

func (c Config) withDefaults() Config {
	if c.SampleCount <= 0 {
		c.SampleCount = DefaultSampleCount
	}
	if c.AvgThreshold <= 0 {
		c.AvgThreshold = DefaultAvgThreshold
	}
	if c.MaxThreshold <= 0 {
		c.MaxThreshold = DefaultMaxThreshold
	}
	return c
}

// Compare measures how far the candidate path strays from the reference path.
//
// Up to SampleCount points are drawn evenly from the candidate (first and last
// included) and each is matched to its nearest reference point. The comparison
// is one-sided: a candidate lying entirely along a longer reference is not a
// different route, while any sampled candidate point outside the reference
// corridor is detected.
//
// Compare returns nil when either input is malformed or decodes to no points.
// ComparedTo is left for the caller to fill in.
func Compare(referenceEncoded, candidateEncoded string, cfg Config) *domain.DivergenceReport {
	cfg = cfg.withDefaults()

	reference, err := polyline.Decode(referenceEncoded)
	if err != nil || len(reference) == 0 {
		return nil
	}
	candidate, err := polyline.Decode(candidateEncoded)
	if err != nil || len(candidate) == 0 {
		return nil
	}

	sampled := Sample(candidate, cfg.SampleCount)

	var total, maxDev float64
	for _, p := range sampled {
		d := nearestDistance(p, reference)
		total += d
		if d > maxDev {
			maxDev = d
		}
	}
	avg := total / float64(len(sampled))

	return &domain.DivergenceReport{
		AvgDeviationMeters: int(math.Round(avg)),
		MaxDeviationMeters: int(math.Round(maxDev)),
		IsDifferentRoute:   avg > cfg.AvgThreshold || maxDev > cfg.MaxThreshold,
	}
}

// Sample returns n points evenly spaced across points by index, including the
// first and last. Inputs with at most n points are returned unchanged.
func Sample(points []domain.GeoPoint, n int) []domain.GeoPoint {
	if len(points) <= n {
		return points
	}
	if n <= 1 {
		return points[:1]
	}

	step := float64(len(points)-1) / float64(n-1)
	out := make([]domain.GeoPoint, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, points[int(math.Round(float64(i)*step))])
	}
	return out
}

func nearestDistance(p domain.GeoPoint, path []domain.GeoPoint) float64 {
	best := math.Inf(1)
	for _, q := range path {
		if d := p.DistanceTo(q); d < best {
			best = d
		}
	}
	return best
}
