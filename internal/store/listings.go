package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"jobscout-engine/internal/dedup"
	"jobscout-engine/internal/domain"
)

// ListOpts controls ListListings.
type ListOpts struct {
	Sort   string // quality | saved_at | company | title
	Order  string // asc | desc
	Source string // filter by origin source, empty = all
	Limit  int
}

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}
	if v >= 1 {
		return tx.Commit()
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS listings (
  canonical_url TEXT PRIMARY KEY,
  url TEXT NOT NULL,
  title TEXT NOT NULL,
  company TEXT NOT NULL,
  location TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  salary_min INTEGER,
  salary_max INTEGER,
  job_type TEXT NOT NULL DEFAULT 'unknown',
  remote_type TEXT NOT NULL DEFAULT 'unknown',
  source TEXT NOT NULL,
  alternate_sources TEXT NOT NULL DEFAULT '[]',
  skills TEXT NOT NULL DEFAULT '[]',
  quality REAL NOT NULL DEFAULT 0,
  run_id TEXT NOT NULL DEFAULT '',
  posted_at TEXT NOT NULL DEFAULT '',
  saved_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_listings_quality ON listings(quality);
`); err != nil {
		return err
	}
	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_listings_source ON listings(source);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveResult upserts every listing of a run, keyed by canonical URL. A
// re-run of the same search refreshes rows instead of duplicating them.
func (d *DB) SaveResult(ctx context.Context, res domain.AggregatedResult) (int, error) {
	tx, err := d.Pool.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO listings (
  canonical_url, url, title, company, location, description,
  salary_min, salary_max, job_type, remote_type,
  source, alternate_sources, skills, quality, run_id, posted_at, saved_at
) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(canonical_url) DO UPDATE SET
  url=excluded.url, title=excluded.title, company=excluded.company,
  location=excluded.location, description=excluded.description,
  salary_min=excluded.salary_min, salary_max=excluded.salary_max,
  job_type=excluded.job_type, remote_type=excluded.remote_type,
  source=excluded.source, alternate_sources=excluded.alternate_sources,
  skills=excluded.skills, quality=excluded.quality,
  run_id=excluded.run_id, posted_at=excluded.posted_at, saved_at=excluded.saved_at;
`)
	if err != nil {
		return 0, err
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC().Format(time.RFC3339)
	saved := 0
	for _, l := range res.Listings {
		key := dedup.CanonicalURL(l.URL)
		if key == "" {
			continue
		}
		alt, _ := json.Marshal(l.AlternateSources)
		skills, _ := json.Marshal(l.Skills)
		postedAt := ""
		if !l.PostedAt.IsZero() {
			postedAt = l.PostedAt.UTC().Format(time.RFC3339)
		}
		if _, err := stmt.ExecContext(ctx,
			key, l.URL, l.Title, l.Company, l.Location, l.Description,
			l.SalaryMin, l.SalaryMax, string(l.JobType), string(l.RemoteType),
			l.Source, string(alt), string(skills), l.Quality, res.RunID, postedAt, now,
		); err != nil {
			return saved, err
		}
		saved++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return saved, nil
}

// ListListings reads saved listings back, ranked per opts.
func (d *DB) ListListings(ctx context.Context, opts ListOpts) ([]domain.ScoredListing, error) {
	col := "quality"
	switch opts.Sort {
	case "saved_at", "company", "title":
		col = opts.Sort
	}
	dir := "DESC"
	if opts.Order == "asc" {
		dir = "ASC"
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 200
	}

	q := `
SELECT url, title, company, location, description,
       salary_min, salary_max, job_type, remote_type,
       source, alternate_sources, skills, quality, posted_at
FROM listings`
	args := []any{}
	if opts.Source != "" {
		q += ` WHERE source = ?`
		args = append(args, opts.Source)
	}
	q += ` ORDER BY ` + col + ` ` + dir + ` LIMIT ?`
	args = append(args, limit)

	rows, err := d.Pool.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []domain.ScoredListing
	for rows.Next() {
		var l domain.ScoredListing
		var salaryMin, salaryMax sql.NullInt64
		var alt, skills, postedAt string
		if err := rows.Scan(
			&l.URL, &l.Title, &l.Company, &l.Location, &l.Description,
			&salaryMin, &salaryMax, (*string)(&l.JobType), (*string)(&l.RemoteType),
			&l.Source, &alt, &skills, &l.Quality, &postedAt,
		); err != nil {
			return nil, err
		}
		if salaryMin.Valid {
			v := int(salaryMin.Int64)
			l.SalaryMin = &v
		}
		if salaryMax.Valid {
			v := int(salaryMax.Int64)
			l.SalaryMax = &v
		}
		_ = json.Unmarshal([]byte(alt), &l.AlternateSources)
		_ = json.Unmarshal([]byte(skills), &l.Skills)
		if postedAt != "" {
			if t, err := time.Parse(time.RFC3339, postedAt); err == nil {
				l.PostedAt = t
			}
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// CountListings reports the total saved rows, optionally per source.
func (d *DB) CountListings(ctx context.Context, source string) (int, error) {
	q := `SELECT COUNT(*) FROM listings`
	args := []any{}
	if source != "" {
		q += ` WHERE source = ?`
		args = append(args, source)
	}
	var n int
	err := d.Pool.QueryRowContext(ctx, q, args...).Scan(&n)
	return n, err
}
