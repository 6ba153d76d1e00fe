// Package history keeps a small rolling archive of past shade analyses.
package history

import (
	"strings"
	"time"

	"github.com/affodent/shadematch/pkg/sampler"
	"github.com/affodent/shadematch/pkg/shade"
)

// DefaultMax bounds the archive to the most recent patients.
const DefaultMax = 10

// Override records a manually chosen shade alongside the automatic results.
type Override struct {
	GuideID string `json:"guide_id"`
	Shade   string `json:"shade"`
}

// Record is one completed analysis. Records are immutable once appended.
type Record struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Age  int    `json:"age"`
	Sex  string `json:"sex"`

	Sampled     shade.RGB      `json:"sampled"`
	SamplerMode sampler.Mode   `json:"sampler_mode"`
	Results     []shade.Result `json:"results"`
	Override    *Override      `json:"override,omitempty"`

	ImagePath  string    `json:"image_path,omitempty"`
	ReportPath string    `json:"report_path,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// MatchesName reports whether query is a case-insensitive substring of the
// patient name.
func (r *Record) MatchesName(query string) bool {
	return strings.Contains(strings.ToLower(r.Name), strings.ToLower(query))
}

// Store is a bounded most-recent-first archive of Records. Appending past
// the bound evicts the oldest record; eviction never removes the record's
// image or report files (see the prune command for that).
type Store interface {
	// Append inserts rec at the front, evicting the oldest record when full.
	Append(rec Record) error
	// Recent returns all retained records, most recent first.
	Recent() ([]Record, error)
	// SearchByName returns retained records whose patient name contains
	// query, case-insensitively. No matches is an empty slice, not an error.
	SearchByName(query string) ([]Record, error)
}
