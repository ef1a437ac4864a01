package divergence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"route-divergence-service/internal/domain"
	"route-divergence-service/internal/polyline"
)

// eastbound builds n points along latitude lat starting at lng, 0.005 degrees apart.
func eastbound(lat, lng float64, n int) []domain.GeoPoint {
	points := make([]domain.GeoPoint, n)
	for i := range points {
		points[i] = domain.GeoPoint{Lat: lat, Lng: lng + float64(i)*0.005}
	}
	return points
}

func shiftNorth(points []domain.GeoPoint, deg float64) []domain.GeoPoint {
	out := make([]domain.GeoPoint, len(points))
	for i, p := range points {
		out[i] = domain.GeoPoint{Lat: p.Lat + deg, Lng: p.Lng}
	}
	return out
}

func TestCompareIdenticalPaths(t *testing.T) {
	path := polyline.Encode(eastbound(12.9, 77.5, 21))

	report := Compare(path, path, DefaultConfig())
	require.NotNil(t, report)

	assert.Equal(t, 0, report.AvgDeviationMeters)
	assert.Equal(t, 0, report.MaxDeviationMeters)
	assert.False(t, report.IsDifferentRoute)
}

func TestCompareParallelOffsetExceedsAverage(t *testing.T) {
	ref := eastbound(12.9, 77.5, 21)
	// 0.006 degrees of latitude is ~667m.
	cand := shiftNorth(ref, 0.006)

	report := Compare(polyline.Encode(ref), polyline.Encode(cand), DefaultConfig())
	require.NotNil(t, report)

	assert.InDelta(t, 667, report.AvgDeviationMeters, 2)
	assert.InDelta(t, 667, report.MaxDeviationMeters, 2)
	assert.True(t, report.IsDifferentRoute, "persistent offset above avg threshold")
}

func TestCompareSingleDetourExceedsMax(t *testing.T) {
	ref := eastbound(12.9, 77.5, 12)
	cand := append([]domain.GeoPoint(nil), ref...)
	// ~2.2km detour at one point only.
	cand[6] = domain.GeoPoint{Lat: ref[6].Lat + 0.02, Lng: ref[6].Lng}

	report := Compare(polyline.Encode(ref), polyline.Encode(cand), DefaultConfig())
	require.NotNil(t, report)

	assert.Less(t, report.AvgDeviationMeters, 500)
	assert.Greater(t, report.MaxDeviationMeters, 1000)
	assert.GreaterOrEqual(t, report.MaxDeviationMeters, report.AvgDeviationMeters)
	assert.True(t, report.IsDifferentRoute, "single long detour above max threshold")
}

func TestCompareSmallOffsetIsSameRoute(t *testing.T) {
	ref := eastbound(12.9, 77.5, 21)
	// ~111m, well inside both thresholds.
	cand := shiftNorth(ref, 0.001)

	report := Compare(polyline.Encode(ref), polyline.Encode(cand), DefaultConfig())
	require.NotNil(t, report)

	assert.InDelta(t, 111, report.AvgDeviationMeters, 2)
	assert.False(t, report.IsDifferentRoute)
}

func TestCompareIsOneSided(t *testing.T) {
	long := eastbound(12.9, 77.5, 21)
	short := long[:5]

	contained := Compare(polyline.Encode(long), polyline.Encode(short), DefaultConfig())
	require.NotNil(t, contained)
	assert.Equal(t, 0, contained.AvgDeviationMeters)
	assert.False(t, contained.IsDifferentRoute, "candidate inside a longer reference is not different")

	overrun := Compare(polyline.Encode(short), polyline.Encode(long), DefaultConfig())
	require.NotNil(t, overrun)
	assert.True(t, overrun.IsDifferentRoute, "candidate leaving the reference corridor is different")

	assert.NotEqual(t, contained.AvgDeviationMeters, overrun.AvgDeviationMeters)
}

func TestCompareInsufficientData(t *testing.T) {
	path := polyline.Encode(eastbound(12.9, 77.5, 5))
	empty := polyline.Encode(nil)

	assert.Nil(t, Compare(empty, path, DefaultConfig()))
	assert.Nil(t, Compare(path, empty, DefaultConfig()))
	assert.Nil(t, Compare(empty, empty, DefaultConfig()))
}

func TestCompareMalformedInputReturnsNil(t *testing.T) {
	path := polyline.Encode(eastbound(12.9, 77.5, 5))

	assert.Nil(t, Compare("_p~iF", path, DefaultConfig()))
	assert.Nil(t, Compare(path, path+"_", DefaultConfig()))
}

func TestCompareOnlyInspectsSampledPoints(t *testing.T) {
	ref := eastbound(12.9, 77.5, 100)
	cand := append([]domain.GeoPoint(nil), ref...)
	// Index 1 is never drawn when sampling 12 of 100 points (step 9).
	cand[1] = domain.GeoPoint{Lat: ref[1].Lat + 0.05, Lng: ref[1].Lng}

	report := Compare(polyline.Encode(ref), polyline.Encode(cand), DefaultConfig())
	require.NotNil(t, report)
	assert.False(t, report.IsDifferentRoute)

	all := Compare(polyline.Encode(ref), polyline.Encode(cand), Config{SampleCount: 100})
	require.NotNil(t, all)
	assert.True(t, all.IsDifferentRoute)
}

func TestCompareCustomThresholds(t *testing.T) {
	ref := eastbound(12.9, 77.5, 21)
	cand := shiftNorth(ref, 0.001)

	report := Compare(polyline.Encode(ref), polyline.Encode(cand), Config{AvgThreshold: 50, MaxThreshold: 5000})
	require.NotNil(t, report)
	assert.True(t, report.IsDifferentRoute)
}

func TestSample(t *testing.T) {
	points := eastbound(0, 0, 100)

	got := Sample(points, 12)
	require.Len(t, got, 12)
	for i, p := range got {
		assert.Equal(t, points[i*9], p, "sample %d", i)
	}
	assert.Equal(t, points[0], got[0])
	assert.Equal(t, points[99], got[11])

	short := points[:7]
	assert.Equal(t, short, Sample(short, 12))

	assert.Equal(t, points[:1], Sample(points, 1))
}
