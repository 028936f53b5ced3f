// Package report serializes analysis results: the CSV particle table,
// summary statistics, PNG charts and an HTML report.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"beangauge/internal/measure"
)

// WriteTable writes the particle table with a header row. An empty
// measurement set still produces a valid table with just the header.
func WriteTable(w io.Writer, ms []measure.Measurement, includeArea bool) error {
	cw := csv.NewWriter(w)

	header := []string{"id", "major_mm", "minor_mm", "r", "g", "b", "luma"}
	if includeArea {
		header = []string{"id", "major_mm", "minor_mm", "area_px", "r", "g", "b", "luma"}
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, m := range ms {
		row := []string{
			strconv.Itoa(m.ID),
			strconv.FormatFloat(m.MajorMM, 'f', 3, 64),
			strconv.FormatFloat(m.MinorMM, 'f', 3, 64),
		}
		if includeArea {
			row = append(row, strconv.Itoa(m.AreaPx))
		}
		row = append(row,
			strconv.FormatFloat(m.Color.R, 'f', 1, 64),
			strconv.FormatFloat(m.Color.G, 'f', 1, 64),
			strconv.FormatFloat(m.Color.B, 'f', 1, 64),
			strconv.FormatFloat(m.Luma, 'f', 1, 64),
		)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", m.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteTableFile writes the particle table to a file.
func WriteTableFile(path string, ms []measure.Measurement, includeArea bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteTable(f, ms, includeArea); err != nil {
		return err
	}
	return f.Close()
}
