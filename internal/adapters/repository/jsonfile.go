package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/okian/portfolio/internal/domain/model"
	"github.com/okian/portfolio/pkg/metrics"
)

// JSONFileStore keeps every record in a single JSON array on disk. Each
// Append reads the whole file, appends, and rewrites the whole file.
//
// There is no lock or transaction around the read-modify-write: two appends
// racing on the same file can both read the old array and one record is lost.
// This is a known limitation of the file format.
type JSONFileStore struct {
	path    string
	mode    os.FileMode
	metrics bool
}

var _ Store = (*JSONFileStore)(nil)

// NewJSONFileStore returns a store backed by path. The file is created on the
// first Append.
func NewJSONFileStore(path string, opts ...Option) *JSONFileStore {
	s := &JSONFileStore{path: path, mode: 0o644, metrics: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file.
func (s *JSONFileStore) Path() string { return s.path }

// Append implements Store.
func (s *JSONFileStore) Append(ctx context.Context, rec model.SubmissionRecord) (int, error) {
	start := time.Now()
	records, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	records = append(records, rec)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := os.WriteFile(s.path, data, s.mode); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	if s.metrics {
		metrics.RecordStoreWriteLatency(float64(time.Since(start).Microseconds()) / 1000)
		metrics.UpdateStoredRecords(len(records))
	}
	return len(records), nil
}

// List implements Store. A missing or empty file holds no records.
func (s *JSONFileStore) List(ctx context.Context) ([]model.SubmissionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []model.SubmissionRecord{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []model.SubmissionRecord{}, nil
	}
	var records []model.SubmissionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if records == nil {
		records = []model.SubmissionRecord{}
	}
	return records, nil
}

// Count implements Store.
func (s *JSONFileStore) Count(ctx context.Context) (int, error) {
	records, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}
