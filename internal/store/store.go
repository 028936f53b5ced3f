// Package store persists run history to a local sqlite database so batches
// of roasts or grinds can be compared over time.
package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"beangauge/internal/measure"
	"beangauge/internal/report"
)

// Store wraps the history database.
type Store struct {
	*sql.DB
}

// Open opens (or creates) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			source TEXT,
			sheet_version TEXT,
			mode TEXT,
			ruler_mm DOUBLE,
			scale_px_per_mm DOUBLE,
			particle_count INTEGER,
			mean_major_mm DOUBLE,
			mean_minor_mm DOUBLE,
			mean_luma DOUBLE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS particles (
			run_id TEXT,
			particle_id INTEGER,
			major_mm DOUBLE,
			minor_mm DOUBLE,
			area_px INTEGER,
			r DOUBLE,
			g DOUBLE,
			b DOUBLE,
			luma DOUBLE,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("history schema: %w", err)
	}

	return &Store{db}, nil
}

// RecordRun inserts one run and its particles, returning the run id.
func (s *Store) RecordRun(source, sheetVersion, mode string, rulerMM, scale float64, sum report.Summary, ms []measure.Measurement) (string, error) {
	runID := uuid.NewString()

	tx, err := s.Begin()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, source, sheet_version, mode, ruler_mm, scale_px_per_mm,
			particle_count, mean_major_mm, mean_minor_mm, mean_luma)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, source, sheetVersion, mode, rulerMM, scale,
		sum.Count, sum.MeanMajorMM, sum.MeanMinorMM, sum.MeanLuma)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, m := range ms {
		_, err = tx.Exec(
			`INSERT INTO particles (run_id, particle_id, major_mm, minor_mm, area_px, r, g, b, luma)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, m.ID, m.MajorMM, m.MinorMM, m.AreaPx, m.Color.R, m.Color.G, m.Color.B, m.Luma)
		if err != nil {
			return "", fmt.Errorf("insert particle %d: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return runID, nil
}
