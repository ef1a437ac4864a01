package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"route-divergence-service/internal/domain"
	"route-divergence-service/internal/platform/obs"
)

var errCorruptFile = errors.New("record file is not a valid JSON array")

// FileRecordSink keeps one pretty-printed JSON array per route under Dir.
// Append rewrites the whole file (read, append, write back) and assumes a
// single writer per route.
type FileRecordSink struct {
	Dir string
	mu  sync.Mutex
}

func NewFileRecordSink(dir string) *FileRecordSink {
	return &FileRecordSink{Dir: dir}
}

func (s *FileRecordSink) path(routeID string) (string, error) {
	if routeID == "" || routeID == "." || routeID == ".." ||
		strings.ContainsAny(routeID, `/\`) || strings.Contains(routeID, "..") {
		return "", fmt.Errorf("invalid route id %q", routeID)
	}
	return filepath.Join(s.Dir, routeID+".json"), nil
}

// Append adds one record to the route's file.
// A file that cannot be parsed is left untouched and reported as an error.
func (s *FileRecordSink) Append(ctx context.Context, routeID string, record domain.PollRecord) (err error) {
	defer obs.Time(ctx, "records.file.Append")(&err)

	if err := checkAppend(routeID, record); err != nil {
		return err
	}
	fp, err := s.path(routeID)
	if err != nil {
		return fmt.Errorf("append record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("append record: create data dir %q: %w", s.Dir, err)
	}

	records, err := readRecordFile(fp)
	if err != nil {
		return fmt.Errorf("append record route=%q: %w", routeID, err)
	}
	records = append(records, record)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("append record: marshal: %w", err)
	}

	// Write to a sibling temp file and rename so readers never see a partial array.
	tmp, err := os.CreateTemp(s.Dir, routeID+".*.tmp")
	if err != nil {
		return fmt.Errorf("append record: create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("append record: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("append record: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fp); err != nil {
		return fmt.Errorf("append record: replace %q: %w", fp, err)
	}

	return nil
}

// ReadAll returns every record for the route, oldest first.
// A missing or unparseable file reads as empty.
func (s *FileRecordSink) ReadAll(ctx context.Context, routeID string) (_ []domain.PollRecord, err error) {
	defer obs.Time(ctx, "records.file.ReadAll")(&err)

	fp, err := s.path(routeID)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := readRecordFile(fp)
	if errors.Is(err, errCorruptFile) {
		log.Warn().Err(err).Str("route_id", routeID).Msg("ignoring unreadable record file")
		return []domain.PollRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read records route=%q: %w", routeID, err)
	}
	return records, nil
}

func (s *FileRecordSink) ReadLatest(ctx context.Context, routeID string, n int) ([]domain.PollRecord, error) {
	records, err := s.ReadAll(ctx, routeID)
	if err != nil {
		return nil, err
	}
	return tail(records, n), nil
}

func readRecordFile(fp string) ([]domain.PollRecord, error) {
	data, err := os.ReadFile(fp)
	if errors.Is(err, os.ErrNotExist) {
		return []domain.PollRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", fp, err)
	}

	var records []domain.PollRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", errCorruptFile, fp, err)
	}
	if records == nil {
		records = []domain.PollRecord{}
	}
	return records, nil
}
