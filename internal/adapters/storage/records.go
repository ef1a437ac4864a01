package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"route-divergence-service/internal/domain"
)

var errRouteMismatch = errors.New("record route id does not match append route id")

func checkAppend(routeID string, record domain.PollRecord) error {
	if strings.TrimSpace(routeID) == "" {
		return fmt.Errorf("append record: route id must not be empty")
	}
	if record.RouteID != routeID {
		return fmt.Errorf("append record: %w: %q != %q", errRouteMismatch, record.RouteID, routeID)
	}
	if record.ID == "" {
		return fmt.Errorf("append record: record id must not be empty")
	}
	return nil
}

// tail returns the last n records, oldest first.
func tail(records []domain.PollRecord, n int) []domain.PollRecord {
	if n <= 0 {
		return []domain.PollRecord{}
	}
	if n >= len(records) {
		return records
	}
	return records[len(records)-n:]
}

func decodePayloads(payloads [][]byte) ([]domain.PollRecord, error) {
	out := make([]domain.PollRecord, 0, len(payloads))
	for i, p := range payloads {
		var rec domain.PollRecord
		if err := json.Unmarshal(p, &rec); err != nil {
			return nil, fmt.Errorf("decode record #%d: %w", i+1, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
