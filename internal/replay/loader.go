package replay

import (
	"bytes"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/goccy/go-json"
)

// sampleRecord mirrors one element of a dataset file. Pointers distinguish
// a missing field from a zero value.
type sampleRecord struct {
	Timestamp *int64   `json:"timestamp"`
	Value     *float64 `json:"value"`
}

// Loader reads and validates dataset files from a Store.
type Loader struct {
	store Store
	log   *slog.Logger
}

// NewLoader returns a Loader over store.
func NewLoader(store Store, log *slog.Logger) *Loader {
	return &Loader{store: store, log: log}
}

// Load reads the dataset at relPath. Failures wrap one of ErrPathInvalid,
// ErrNotFound, ErrReadFailure, ErrParseFailure or ErrInvalidFormat; an empty
// array also wraps ErrEmptyDataset. Samples are returned sorted by timestamp.
func (l *Loader) Load(relPath string) (*Dataset, error) {
	if strings.TrimSpace(relPath) == "" {
		return nil, fmt.Errorf("%w: empty path", ErrPathInvalid)
	}

	data, err := l.store.Read(relPath)
	if err != nil {
		l.log.Warn("dataset read failed", slog.String("path", relPath), slog.String("error", err.Error()))
		return nil, err
	}

	samples, err := decodeSamples(data)
	if err != nil {
		l.log.Warn("dataset rejected", slog.String("path", relPath), slog.String("error", err.Error()))
		return nil, err
	}

	if !slices.IsSortedFunc(samples, compareTimestamp) {
		slices.SortStableFunc(samples, compareTimestamp)
		l.log.Warn("dataset timestamps out of order, sorted on load", slog.String("path", relPath))
	}

	clean := path.Clean(relPath)
	ds := &Dataset{
		Category: path.Dir(clean),
		Name:     DisplayName(clean),
		Path:     clean,
		Samples:  samples,
	}
	if ds.Category == "." {
		ds.Category = ""
	}

	l.log.Debug("dataset loaded",
		slog.String("path", relPath),
		slog.Int("samples", len(samples)),
		slog.Int("bytes", len(data)))
	return ds, nil
}

func decodeSamples(data []byte) ([]Sample, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrParseFailure)
	}

	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: expected an array of samples", ErrInvalidFormat)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("%w: expected an array of samples", ErrInvalidFormat)
	}
	if len(elems) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, ErrEmptyDataset)
	}

	samples := make([]Sample, len(elems))
	for i, raw := range elems {
		var rec sampleRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("%w: element %d: %w", ErrInvalidFormat, i, err)
		}
		if rec.Timestamp == nil || rec.Value == nil {
			return nil, fmt.Errorf("%w: element %d: timestamp and value are required", ErrInvalidFormat, i)
		}
		if *rec.Value < 0 || *rec.Value > 1 {
			return nil, fmt.Errorf("%w: element %d: value %v outside [0,1]", ErrInvalidFormat, i, *rec.Value)
		}
		samples[i] = Sample{Timestamp: *rec.Timestamp, Value: *rec.Value}
	}
	return samples, nil
}

func compareTimestamp(a, b Sample) int {
	switch {
	case a.Timestamp < b.Timestamp:
		return -1
	case a.Timestamp > b.Timestamp:
		return 1
	default:
		return 0
	}
}
