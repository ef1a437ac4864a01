package domain

import (
	"math"
	"testing"
)

func TestFailedDefaultsMessage(t *testing.T) {
	r := Failed("tomtom", "  ")
	if r.Error != "Unknown error" {
		t.Fatalf("Error = %q, want %q", r.Error, "Unknown error")
	}
	if r.OK() || r.Estimate != nil {
		t.Fatalf("failed result must not carry an estimate: %+v", r)
	}
	if r.Polyline() != "" {
		t.Fatalf("Polyline() = %q, want empty", r.Polyline())
	}
}

func TestSucceededCarriesEstimateOnly(t *testing.T) {
	r := Succeeded("google", Estimate{DurationSeconds: 600, DistanceMeters: 4200, Polyline: "_p~iF~ps|U"})
	if !r.OK() {
		t.Fatalf("expected OK result")
	}
	if r.Error != "" {
		t.Fatalf("Error = %q, want empty", r.Error)
	}
	if r.Polyline() != "_p~iF~ps|U" {
		t.Fatalf("Polyline() = %q", r.Polyline())
	}
}

func TestGeoPointDistanceTo(t *testing.T) {
	a := GeoPoint{Lat: 12.9716, Lng: 77.5946}
	if d := a.DistanceTo(a); d != 0 {
		t.Fatalf("distance to self = %v, want 0", d)
	}

	// One degree of latitude is ~111.195 km on a 6371 km sphere.
	b := GeoPoint{Lat: 13.9716, Lng: 77.5946}
	got := a.DistanceTo(b)
	if math.Abs(got-111_195) > 10 {
		t.Fatalf("distance = %.1f, want ~111195", got)
	}
}

func TestGeoPointLatLng(t *testing.T) {
	p := GeoPoint{Lat: 38.5, Lng: -120.2}
	if got := p.LatLng(); got != "38.5,-120.2" {
		t.Fatalf("LatLng() = %q", got)
	}
}

func TestPollRecordResult(t *testing.T) {
	rec := PollRecord{Results: []ProviderResult{
		Succeeded("google", Estimate{DurationSeconds: 1}),
		Failed("ola", "boom"),
	}}

	r, ok := rec.Result("ola")
	if !ok || r.Error != "boom" {
		t.Fatalf("Result(ola) = %+v, %v", r, ok)
	}
	if _, ok := rec.Result("tomtom"); ok {
		t.Fatalf("unexpected result for tomtom")
	}
}
