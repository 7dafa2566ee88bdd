// Package audit runs a trained model over a stored catalog and records the
// listings whose text clashes with their assigned category.
package audit

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cataloglab/miscat/pkg/miscat"
	"github.com/cataloglab/miscat/pkg/miscat/ingest"
	"github.com/cataloglab/miscat/pkg/miscat/report"
	"github.com/cataloglab/miscat/pkg/miscat/store"
)

// DefaultWorkers is the judging parallelism used when Options.Workers is
// not set.
const DefaultWorkers = 4

// Options configures an Auditor.
type Options struct {
	Store   store.Store
	Model   *miscat.Model[string]
	Workers int
}

// Auditor judges every listing in a catalog against its assigned category.
type Auditor struct {
	store   store.Store
	model   *miscat.Model[string]
	builder *report.Builder
	workers int
}

// New creates an Auditor with the given dependencies.
func New(opts Options) (*Auditor, error) {
	if opts.Store == nil {
		return nil, errors.New("audit: nil store")
	}
	if opts.Model == nil {
		return nil, errors.New("audit: nil model")
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	return &Auditor{
		store:   opts.Store,
		model:   opts.Model,
		builder: report.New(),
		workers: workers,
	}, nil
}

// ListingText is the document the model sees for a listing: the title plus
// the visible text of the description, normalized. Training and auditing
// must build documents through the same function.
func ListingText(l store.Listing) string {
	text := l.Title
	if l.Description != "" {
		text += " " + ingest.ExtractText(l.Description)
	}
	return ingest.Normalize(text)
}

// Run audits the whole catalog, persists the resulting report, and returns
// it. Listings whose category is outside the model's vocabulary are counted
// as skipped rather than judged; catalogs routinely carry categories no
// model was trained for. Judging runs on Workers goroutines, and the flags
// are identical for any worker count.
func (a *Auditor) Run(ctx context.Context) (report.Report, error) {
	if !a.model.Trained() {
		return report.Report{}, fmt.Errorf("audit: %w", miscat.ErrUntrained)
	}

	listings, err := a.store.Listings(ctx)
	if err != nil {
		return report.Report{}, fmt.Errorf("audit: load listings: %w", err)
	}

	known := make(map[string]struct{})
	for _, label := range a.model.Labels() {
		known[label] = struct{}{}
	}

	var audited []store.Listing
	skipped := 0
	for _, l := range listings {
		if _, ok := known[l.Category]; ok {
			audited = append(audited, l)
		} else {
			skipped++
		}
	}

	docs := make([]string, len(audited))
	cats := make([]string, len(audited))
	for i, l := range audited {
		docs[i] = ListingText(l)
		cats[i] = l.Category
	}

	// Each goroutine judges a contiguous span and writes into its own
	// region of results; judging itself never mutates the model.
	results := make([][]string, len(audited))
	g, gctx := errgroup.WithContext(ctx)
	for _, sp := range split(len(audited), a.workers) {
		sp := sp
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := a.model.Judge(docs[sp.lo:sp.hi], cats[sp.lo:sp.hi])
			if err != nil {
				return err
			}
			copy(results[sp.lo:sp.hi], out)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report.Report{}, fmt.Errorf("audit: judge: %w", err)
	}

	var flags []report.Flag
	for i, keywords := range results {
		if len(keywords) == 0 {
			continue
		}
		flags = append(flags, report.Flag{
			SKU:      audited[i].SKU,
			Category: audited[i].Category,
			Keywords: keywords,
		})
	}

	rep := a.builder.Build(len(audited), skipped, flags)
	if err := a.store.SaveReport(ctx, rep); err != nil {
		return report.Report{}, fmt.Errorf("audit: save report: %w", err)
	}
	return rep, nil
}

type span struct {
	lo, hi int
}

// split cuts n items into at most parts contiguous spans of near-equal size.
func split(n, parts int) []span {
	if n == 0 {
		return nil
	}
	if parts > n {
		parts = n
	}

	spans := make([]span, 0, parts)
	size := n / parts
	rem := n % parts
	lo := 0
	for i := 0; i < parts; i++ {
		hi := lo + size
		if i < rem {
			hi++
		}
		spans = append(spans, span{lo: lo, hi: hi})
		lo = hi
	}
	return spans
}
