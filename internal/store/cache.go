// Package store provides the SQLite-backed snapshot history and file tracker.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/footprint/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache holds per-file derived snapshots and the mtime/size of the files they
// came from.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the history database at the given path and applies
// pending migrations.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked mtime and size for a file, plus the fingerprint
// of the options its snapshot was derived with.
type FileInfo struct {
	MtimeNs     int64
	SizeBytes   int64
	Fingerprint string
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := c.db.Query("SELECT file_path, mtime_ns, size_bytes, fingerprint FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes, &fi.Fingerprint); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveSnapshot stores a snapshot, replacing any earlier snapshot of the same
// file, and records the file's tracking info.
func (c *Cache) SaveSnapshot(s model.Snapshot, fi FileInfo) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if s.FilePath != "" {
		if _, err := tx.Exec("DELETE FROM snapshots WHERE file_path = ?", s.FilePath); err != nil {
			return err
		}
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO snapshots
		(id, file_path, statement_id, analyzed_at, categories, subcategories,
		 total_amount, allotted, actual, after_actual, reduction_pct, compliant,
		 offset_kg, credit_cost_usd, trees, over_budget, transactions_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.FilePath, s.StatementID, s.AnalyzedAt.UTC().Format(time.RFC3339Nano),
		s.Categories, s.Subcategories,
		s.TotalAmount, s.Allotted, s.Actual, s.AfterActual, s.ReductionPct, boolToInt(s.Compliant),
		s.OffsetKg, s.CreditCostUSD, s.Trees, s.OverBudget, s.TransactionsCount,
	)
	if err != nil {
		return err
	}

	if s.FilePath != "" {
		_, err = tx.Exec(`INSERT OR REPLACE INTO file_tracker (file_path, mtime_ns, size_bytes, fingerprint)
			VALUES (?, ?, ?, ?)`, s.FilePath, fi.MtimeNs, fi.SizeBytes, fi.Fingerprint)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadSnapshots reads all snapshots, newest first.
func (c *Cache) LoadSnapshots() ([]model.Snapshot, error) {
	rows, err := c.db.Query(`SELECT
		id, file_path, statement_id, analyzed_at, categories, subcategories,
		total_amount, allotted, actual, after_actual, reduction_pct, compliant,
		offset_kg, credit_cost_usd, trees, over_budget, transactions_count
		FROM snapshots
		ORDER BY analyzed_at DESC, file_path ASC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var snaps []model.Snapshot
	for rows.Next() {
		var s model.Snapshot
		var analyzedAt string
		var compliant int

		err := rows.Scan(
			&s.ID, &s.FilePath, &s.StatementID, &analyzedAt, &s.Categories, &s.Subcategories,
			&s.TotalAmount, &s.Allotted, &s.Actual, &s.AfterActual, &s.ReductionPct, &compliant,
			&s.OffsetKg, &s.CreditCostUSD, &s.Trees, &s.OverBudget, &s.TransactionsCount,
		)
		if err != nil {
			return nil, err
		}

		if t, err := time.Parse(time.RFC3339Nano, analyzedAt); err == nil {
			s.AnalyzedAt = t
		}
		s.Compliant = compliant != 0

		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

// DeleteSnapshot removes a snapshot and stops tracking its file so the next
// cached load re-parses it.
func (c *Cache) DeleteSnapshot(id string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var path string
	err = tx.QueryRow("SELECT file_path FROM snapshots WHERE id = ?", id).Scan(&path)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := tx.Exec("DELETE FROM snapshots WHERE id = ?", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM file_tracker WHERE file_path = ?", path); err != nil {
		return err
	}
	return tx.Commit()
}

// PruneMissing drops snapshots and tracking rows for files not in keep.
func (c *Cache) PruneMissing(keep map[string]struct{}) (int, error) {
	tracked, err := c.GetTrackedFiles()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for path := range tracked {
		if _, ok := keep[path]; ok {
			continue
		}
		if _, err := c.db.Exec("DELETE FROM snapshots WHERE file_path = ?", path); err != nil {
			return pruned, err
		}
		if _, err := c.db.Exec("DELETE FROM file_tracker WHERE file_path = ?", path); err != nil {
			return pruned, err
		}
		pruned++
	}
	return pruned, nil
}

// SnapshotCount returns the number of stored snapshots.
func (c *Cache) SnapshotCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM snapshots").Scan(&count)
	return count, err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
