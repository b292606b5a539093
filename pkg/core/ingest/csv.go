// Package ingest loads a rectangular table from the supported input
// formats. It does no semantic interpretation: headers and cells come out
// as raw strings for the schema mapper and cleaner to deal with.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"insight_engine/pkg/core/clean"
)

// ReadCSV parses one CSV document into a table. The first record is the
// header row. Ragged rows are tolerated (the cleaner treats short rows as
// having empty trailing cells).
func ReadCSV(r io.Reader) (clean.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	all, err := cr.ReadAll()
	if err != nil {
		return clean.Table{}, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(all) == 0 {
		return clean.Table{}, fmt.Errorf("CSV input is empty")
	}

	headers := make([]string, len(all[0]))
	for i, h := range all[0] {
		headers[i] = strings.TrimSpace(stripBOM(h))
	}
	return clean.Table{Headers: headers, Rows: all[1:]}, nil
}

// ReadFile dispatches on the file extension: .csv, or .html/.htm for
// exported HTML tables.
func ReadFile(path string) (clean.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return clean.Table{}, err
	}
	defer f.Close()

	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".html"), strings.HasSuffix(lower, ".htm"):
		return ReadHTMLTable(f)
	default:
		return ReadCSV(f)
	}
}

// stripBOM drops a UTF-8 byte-order mark that spreadsheet exports often
// prepend to the first header.
func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
