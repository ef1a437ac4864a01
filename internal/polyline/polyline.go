// Package polyline implements the Google encoded polyline format with
// 5-decimal-digit precision.
package polyline

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"route-divergence-service/internal/domain"
)

const (
	precision = 1e5
	offset    = 63
	chunkMask = 0x1f
	moreBit   = 0x20
	// 64-bit accumulator; anything longer is corrupt input.
	maxShift = 60
)

// ErrMalformedEncoding reports a truncated or corrupt encoded polyline.
var ErrMalformedEncoding = errors.New("malformed polyline encoding")

// Encode converts points into an encoded polyline string.
// Coordinates are quantized to 1e-5 degrees; an empty input yields "".
func Encode(points []domain.GeoPoint) string {
	var sb strings.Builder
	sb.Grow(len(points) * 8)

	var prevLat, prevLng int64
	for _, p := range points {
		lat := quantize(p.Lat)
		lng := quantize(p.Lng)

		writeValue(&sb, lat-prevLat)
		writeValue(&sb, lng-prevLng)

		prevLat, prevLng = lat, lng
	}

	return sb.String()
}

// Decode converts an encoded polyline into points.
// On ErrMalformedEncoding the points decoded before the fault are returned.
func Decode(encoded string) ([]domain.GeoPoint, error) {
	points := make([]domain.GeoPoint, 0, len(encoded)/4)

	var lat, lng int64
	idx := 0
	for idx < len(encoded) {
		dLat, next, err := readValue(encoded, idx)
		if err != nil {
			return points, fmt.Errorf("decode latitude at offset %d: %w", idx, err)
		}

		dLng, next, err := readValue(encoded, next)
		if err != nil {
			return points, fmt.Errorf("decode longitude at offset %d: %w", idx, err)
		}
		idx = next

		lat += dLat
		lng += dLng
		points = append(points, domain.GeoPoint{
			Lat: float64(lat) / precision,
			Lng: float64(lng) / precision,
		})
	}

	return points, nil
}

func quantize(deg float64) int64 {
	return int64(math.Round(deg * precision))
}

// writeValue emits one zig-zagged signed delta as 5-bit groups, least significant first.
func writeValue(sb *strings.Builder, v int64) {
	u := uint64(v << 1)
	if v < 0 {
		u = ^u
	}

	for u >= moreBit {
		sb.WriteByte(byte((moreBit | (u & chunkMask)) + offset))
		u >>= 5
	}
	sb.WriteByte(byte(u + offset))
}

// readValue decodes one signed delta starting at idx and returns the index after it.
func readValue(encoded string, idx int) (int64, int, error) {
	var result uint64
	shift := uint(0)

	for {
		if idx >= len(encoded) {
			return 0, idx, fmt.Errorf("%w: input ends mid-value", ErrMalformedEncoding)
		}

		c := encoded[idx]
		if c < offset || c > offset+moreBit+chunkMask {
			return 0, idx, fmt.Errorf("%w: invalid character %q", ErrMalformedEncoding, c)
		}
		if shift > maxShift {
			return 0, idx, fmt.Errorf("%w: value overflows", ErrMalformedEncoding)
		}
		idx++

		b := uint64(c - offset)
		result |= (b & chunkMask) << shift
		shift += 5

		if b < moreBit {
			break
		}
	}

	v := int64(result >> 1)
	if result&1 != 0 {
		v = ^v
	}
	return v, idx, nil
}
