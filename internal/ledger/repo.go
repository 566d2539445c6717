package ledger

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/kramify/internal/apperr"
	"github.com/starford/kramify/internal/models"
)

// Store is the ledger interface the pipeline and API depend on.
type Store interface {
	Record(r models.ConversionRecord) error
	Get(path string) (*models.ConversionRecord, error)
	Delete(path string) error
	AllChecksums() (map[string]string, error)
	List() ([]models.ConversionRecord, error)
}

var _ Store = (*DB)(nil)

// Record inserts or replaces the entry for r.Path.
func (db *DB) Record(r models.ConversionRecord) error {
	_, err := db.conn.Exec(`
		INSERT INTO documents (path, checksum, generator, converted_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum     = excluded.checksum,
			generator    = excluded.generator,
			converted_at = excluded.converted_at
	`, r.Path, r.Checksum, r.Generator, r.ConvertedAt)
	if err != nil {
		return fmt.Errorf("ledger: record %s: %w", r.Path, err)
	}
	return nil
}

// Get returns the entry for path or apperr.ErrNotFound.
func (db *DB) Get(path string) (*models.ConversionRecord, error) {
	var r models.ConversionRecord
	err := db.conn.QueryRow(
		`SELECT path, checksum, generator, converted_at FROM documents WHERE path = ?`, path,
	).Scan(&r.Path, &r.Checksum, &r.Generator, &r.ConvertedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: get %s: %w", path, err)
	}
	return &r, nil
}

// Delete removes the entry for path. Missing entries are not an error.
func (db *DB) Delete(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM documents WHERE path = ?`, path); err != nil {
		return fmt.Errorf("ledger: delete %s: %w", path, err)
	}
	return nil
}

// AllChecksums returns path → checksum for every entry.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("ledger: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// List returns every entry, most recently converted first.
func (db *DB) List() ([]models.ConversionRecord, error) {
	rows, err := db.conn.Query(
		`SELECT path, checksum, generator, converted_at FROM documents ORDER BY converted_at DESC, path`,
	)
	if err != nil {
		return nil, fmt.Errorf("ledger: list: %w", err)
	}
	defer rows.Close()

	var out []models.ConversionRecord
	for rows.Next() {
		var r models.ConversionRecord
		if err := rows.Scan(&r.Path, &r.Checksum, &r.Generator, &r.ConvertedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
