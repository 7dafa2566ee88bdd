// Package report assembles catalog audit results into persistable reports.
package report

import (
	"crypto/rand"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
)

// Flag records one listing whose text clashed with its assigned category.
type Flag struct {
	SKU      string   `json:"sku"`
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
}

// Report summarizes a single audit run over a catalog.
type Report struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Audited   int       `json:"audited"`
	Skipped   int       `json:"skipped"`
	Flagged   int       `json:"flagged"`
	Flags     []Flag    `json:"flags,omitempty"`
}

// Builder stamps reports with sortable monotonic IDs.
type Builder struct {
	entropy *ulid.MonotonicEntropy
}

// New creates a report builder.
func New() *Builder {
	return &Builder{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Build assembles a report from one audit run. Flags are reordered by SKU so
// two runs over the same catalog produce identical reports apart from ID and
// timestamp.
func (b *Builder) Build(audited, skipped int, flags []Flag) Report {
	sorted := make([]Flag, len(flags))
	copy(sorted, flags)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].SKU < sorted[j].SKU
	})

	return Report{
		ID:        ulid.MustNew(ulid.Now(), b.entropy).String(),
		CreatedAt: time.Now().UTC(),
		Audited:   audited,
		Skipped:   skipped,
		Flagged:   len(sorted),
		Flags:     sorted,
	}
}
