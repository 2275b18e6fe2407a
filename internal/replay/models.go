package replay

import (
	"path"
	"strings"
	"time"
)

// Sample is one recorded reading: a calm probability at a millisecond timestamp.
type Sample struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

// Dataset is a loaded recording. It is immutable once returned by the Loader.
type Dataset struct {
	Category string
	Name     string
	// Path is root-relative and slash separated, e.g. "eyes-closed/crimson-hawk-calm.json".
	Path    string
	Samples []Sample
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Samples)
}

// Duration is the span between the first and last sample timestamps.
func (d *Dataset) Duration() time.Duration {
	if len(d.Samples) < 2 {
		return 0
	}
	return time.Duration(d.Samples[len(d.Samples)-1].Timestamp-d.Samples[0].Timestamp) * time.Millisecond
}

// ValueRange returns the smallest and largest sample values.
func (d *Dataset) ValueRange() (lo, hi float64) {
	for i, s := range d.Samples {
		if i == 0 || s.Value < lo {
			lo = s.Value
		}
		if i == 0 || s.Value > hi {
			hi = s.Value
		}
	}
	return lo, hi
}

// CatalogFile is one replayable file inside a category.
type CatalogFile struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// CatalogEntry groups the files of one category directory.
type CatalogEntry struct {
	Category string        `json:"category"`
	Files    []CatalogFile `json:"files"`
}

// DisplayName derives a human readable name from a file name:
// the extension is stripped and '_' and '-' become spaces.
func DisplayName(file string) string {
	base := path.Base(file)
	base = strings.TrimSuffix(base, path.Ext(base))
	return strings.Map(func(r rune) rune {
		if r == '_' || r == '-' {
			return ' '
		}
		return r
	}, base)
}
