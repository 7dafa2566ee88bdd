// Package store persists catalog listings and audit reports.
package store

import (
	"context"

	"github.com/cataloglab/miscat/pkg/miscat/report"
)

// Listing is one product listing in a catalog.
type Listing struct {
	ID          int64
	SKU         string
	Title       string
	Description string
	Category    string
}

// Store is the persistence interface for catalogs and their audit history.
type Store interface {
	Close() error

	// Listings
	UpsertListing(ctx context.Context, l Listing) error
	GetListingBySKU(ctx context.Context, sku string) (Listing, bool, error)
	Listings(ctx context.Context) ([]Listing, error)

	// Audit reports
	SaveReport(ctx context.Context, r report.Report) error
	GetReport(ctx context.Context, id string) (report.Report, bool, error)
	Reports(ctx context.Context, limit int) ([]report.Report, error)

	// PruneReports deletes all but the keep newest reports and returns
	// the number removed. keep must not be negative.
	PruneReports(ctx context.Context, keep int) (int, error)
}
