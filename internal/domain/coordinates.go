package domain

import (
	"math"
	"strconv"
)

const earthRadiusMeters = 6_371_000.0

// Immutable WGS-84 position (latitude, longitude) in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// Return the point as "lat,lng" for provider query strings.
func (p GeoPoint) LatLng() string {
	return formatCoord(p.Lat) + "," + formatCoord(p.Lng)
}

// Great-circle (haversine) distance to q in meters.
func (p GeoPoint) DistanceTo(q GeoPoint) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(q.Lat - p.Lat)
	dLng := toRad(q.Lng - p.Lng)
	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	a := sinLat*sinLat + math.Cos(toRad(p.Lat))*math.Cos(toRad(q.Lat))*sinLng*sinLng
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
