// Package sqlite is the SQLite-backed store.Store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cataloglab/miscat/pkg/miscat/report"
	"github.com/cataloglab/miscat/pkg/miscat/store"
)

type sqliteStore struct {
	db *sql.DB
}

// Open opens a SQLite database with WAL mode enabled and initializes the
// schema.
func Open(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection.
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS listings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	sku TEXT UNIQUE NOT NULL,
	title TEXT,
	description TEXT,
	category TEXT
);

CREATE TABLE IF NOT EXISTS audit_reports (
	id TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	audited INTEGER NOT NULL,
	skipped INTEGER NOT NULL,
	flagged INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_flags (
	report_id TEXT NOT NULL,
	sku TEXT NOT NULL,
	category TEXT NOT NULL,
	keywords TEXT NOT NULL,
	PRIMARY KEY(report_id, sku),
	FOREIGN KEY(report_id) REFERENCES audit_reports(id) ON DELETE CASCADE
);
`

	_, err := db.ExecContext(ctx, schema)
	return err
}

// UpsertListing inserts or updates a listing, keyed by SKU.
func (s *sqliteStore) UpsertListing(ctx context.Context, l store.Listing) error {
	if l.SKU == "" {
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO listings (sku, title, description, category)
VALUES (?, ?, ?, ?)
ON CONFLICT(sku) DO UPDATE SET
	title=excluded.title,
	description=excluded.description,
	category=excluded.category;
`, l.SKU, l.Title, l.Description, l.Category)
	return err
}

// GetListingBySKU retrieves a listing by SKU.
func (s *sqliteStore) GetListingBySKU(ctx context.Context, sku string) (store.Listing, bool, error) {
	var l store.Listing
	err := s.db.QueryRowContext(ctx, `
SELECT id, sku, title, description, category
FROM listings
WHERE sku = ?;
`, sku).Scan(&l.ID, &l.SKU, &l.Title, &l.Description, &l.Category)
	if err == sql.ErrNoRows {
		return store.Listing{}, false, nil
	}
	if err != nil {
		return store.Listing{}, false, err
	}
	return l, true, nil
}

// Listings returns every listing ordered by SKU.
func (s *sqliteStore) Listings(ctx context.Context) ([]store.Listing, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, sku, title, description, category
FROM listings
ORDER BY sku;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []store.Listing
	for rows.Next() {
		var l store.Listing
		if err := rows.Scan(&l.ID, &l.SKU, &l.Title, &l.Description, &l.Category); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// SaveReport stores a report and its flags in one transaction.
func (s *sqliteStore) SaveReport(ctx context.Context, r report.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
INSERT INTO audit_reports (id, created_at, audited, skipped, flagged)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	created_at=excluded.created_at,
	audited=excluded.audited,
	skipped=excluded.skipped,
	flagged=excluded.flagged;
`, r.ID, r.CreatedAt.UTC().Format(time.RFC3339Nano), r.Audited, r.Skipped, r.Flagged)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM audit_flags WHERE report_id=?`, r.ID); err != nil {
		return err
	}

	if len(r.Flags) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO audit_flags (report_id, sku, category, keywords)
VALUES (?, ?, ?, ?);
`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, f := range r.Flags {
			keywordsJSON, err := json.Marshal(f.Keywords)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, r.ID, f.SKU, f.Category, string(keywordsJSON)); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// GetReport retrieves a report and its flags by ID.
func (s *sqliteStore) GetReport(ctx context.Context, id string) (report.Report, bool, error) {
	r, err := s.loadReport(ctx, id)
	if err == sql.ErrNoRows {
		return report.Report{}, false, nil
	}
	if err != nil {
		return report.Report{}, false, err
	}
	return r, true, nil
}

// Reports returns the most recent reports, newest first. Report IDs sort
// chronologically, so ordering by ID is ordering by creation time.
func (s *sqliteStore) Reports(ctx context.Context, limit int) ([]report.Report, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id FROM audit_reports
ORDER BY id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	reports := make([]report.Report, 0, len(ids))
	for _, id := range ids {
		r, err := s.loadReport(ctx, id)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// PruneReports deletes all but the keep newest reports. Flags go with
// their report through the ON DELETE CASCADE constraint.
func (s *sqliteStore) PruneReports(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		return 0, errors.New("sqlite: negative keep")
	}

	res, err := s.db.ExecContext(ctx, `
DELETE FROM audit_reports
WHERE id NOT IN (
	SELECT id FROM audit_reports
	ORDER BY id DESC
	LIMIT ?
);
`, keep)
	if err != nil {
		return 0, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *sqliteStore) loadReport(ctx context.Context, id string) (report.Report, error) {
	var (
		r       report.Report
		created string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, created_at, audited, skipped, flagged
FROM audit_reports
WHERE id = ?;
`, id).Scan(&r.ID, &created, &r.Audited, &r.Skipped, &r.Flagged)
	if err != nil {
		return report.Report{}, err
	}

	if parsed, perr := time.Parse(time.RFC3339Nano, created); perr == nil {
		r.CreatedAt = parsed
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT sku, category, keywords
FROM audit_flags
WHERE report_id = ?
ORDER BY sku;
`, id)
	if err != nil {
		return report.Report{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			f            report.Flag
			keywordsJSON string
		)
		if err := rows.Scan(&f.SKU, &f.Category, &keywordsJSON); err != nil {
			return report.Report{}, err
		}
		if err := json.Unmarshal([]byte(keywordsJSON), &f.Keywords); err != nil {
			return report.Report{}, err
		}
		r.Flags = append(r.Flags, f)
	}
	return r, rows.Err()
}
