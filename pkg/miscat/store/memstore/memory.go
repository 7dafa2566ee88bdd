// Package memstore is an in-memory store.Store for tests and demos.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/cataloglab/miscat/pkg/miscat/report"
	"github.com/cataloglab/miscat/pkg/miscat/store"
)

// Store keeps listings and reports in maps, keyed the same way the SQLite
// store keys them.
type Store struct {
	mu       sync.RWMutex
	nextID   int64
	listings map[int64]store.Listing
	skuIndex map[string]int64
	reports  map[string]report.Report
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		nextID:   1,
		listings: make(map[int64]store.Listing),
		skuIndex: make(map[string]int64),
		reports:  make(map[string]report.Report),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// UpsertListing inserts or updates a listing, keyed by SKU.
func (s *Store) UpsertListing(ctx context.Context, l store.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.SKU == "" {
		return nil
	}

	id, ok := s.skuIndex[l.SKU]
	if !ok {
		id = s.nextID
		s.nextID++
		s.skuIndex[l.SKU] = id
	}

	l.ID = id
	s.listings[id] = l
	return nil
}

// GetListingBySKU returns a listing by SKU.
func (s *Store) GetListingBySKU(ctx context.Context, sku string) (store.Listing, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id, ok := s.skuIndex[sku]; ok {
		if l, exists := s.listings[id]; exists {
			return l, true, nil
		}
	}
	return store.Listing{}, false, nil
}

// Listings returns every listing ordered by SKU.
func (s *Store) Listings(ctx context.Context) ([]store.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Listing, 0, len(s.listings))
	for _, l := range s.listings {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SKU < out[j].SKU
	})
	return out, nil
}

// SaveReport stores a report, keyed by its ID.
func (s *Store) SaveReport(ctx context.Context, r report.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports[r.ID] = copyReport(r)
	return nil
}

// GetReport returns a report by ID.
func (s *Store) GetReport(ctx context.Context, id string) (report.Report, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.reports[id]; ok {
		return copyReport(r), true, nil
	}
	return report.Report{}, false, nil
}

// Reports returns the most recent reports, newest first. Report IDs sort
// chronologically, so recency falls out of ordinary string order.
func (s *Store) Reports(ctx context.Context, limit int) ([]report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]report.Report, 0, len(s.reports))
	for _, r := range s.reports {
		out = append(out, copyReport(r))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// PruneReports deletes all but the keep newest reports.
func (s *Store) PruneReports(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		return 0, errors.New("memstore: negative keep")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.reports) <= keep {
		return 0, nil
	}

	ids := make([]string, 0, len(s.reports))
	for id := range s.reports {
		ids = append(ids, id)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))

	deleted := 0
	for _, id := range ids[keep:] {
		delete(s.reports, id)
		deleted++
	}
	return deleted, nil
}

func copyReport(r report.Report) report.Report {
	out := r
	if r.Flags != nil {
		out.Flags = make([]report.Flag, len(r.Flags))
		for i, f := range r.Flags {
			out.Flags[i] = f
			out.Flags[i].Keywords = append([]string(nil), f.Keywords...)
		}
	}
	return out
}
