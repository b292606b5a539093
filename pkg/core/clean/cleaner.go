// Package clean normalizes raw tabular cells into campaign records.
// Cleaning never fails a run: unparsable cells fall back to defaults and are
// counted, so callers can report data quality without losing the row.
package clean

import (
	"strconv"
	"strings"
	"time"

	"insight_engine/pkg/core/schema"
)

// Record is one cleaned campaign row. All numeric fields are finite and
// non-negative. HasDate is false when the date cell was absent or failed
// every accepted format; such rows keep their KPIs but are excluded from
// time-series analysis.
type Record struct {
	Date     time.Time
	HasDate  bool
	Campaign string

	Impressions float64
	Clicks      float64
	Spend       float64
	Conversions float64
	Revenue     float64
}

// Stats carries the data-quality counters accumulated while cleaning.
// These are warnings, not errors: the pipeline proceeds with defaults.
type Stats struct {
	TotalRows    int `json:"total_rows"`
	KeptRows     int `json:"kept_rows"`
	DroppedRows  int `json:"dropped_rows"`
	FlaggedRows  int `json:"flagged_rows"`
	FlaggedCells int `json:"flagged_cells"`
	InvalidDates int `json:"invalid_dates"`
}

// dateFormats is the ordered list of accepted date layouts. First parse wins.
var dateFormats = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Table is the minimal rectangular input the cleaner consumes.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Clean converts raw rows into Records using the resolved column mapping.
//
// Numeric cells are stripped of currency symbols, thousands separators and
// percent signs before parsing; anything still unparsable becomes 0 and is
// counted in Stats. A row whose required numeric cells (impressions, clicks,
// spend) are all missing or unparsable is dropped entirely.
func Clean(t Table, m schema.Mapping) ([]Record, Stats) {
	idx := columnIndex(t.Headers, m)
	stats := Stats{TotalRows: len(t.Rows)}
	records := make([]Record, 0, len(t.Rows))

	for _, row := range t.Rows {
		var rec Record
		flagged := 0
		missingRequired := 0

		read := func(f schema.Field) (float64, bool) {
			cell, ok := cellAt(row, idx, f)
			if !ok || strings.TrimSpace(cell) == "" {
				return 0, false
			}
			v, err := parseNumeric(cell)
			if err != nil || v < 0 {
				flagged++
				return 0, false
			}
			return v, true
		}

		var ok bool
		if rec.Impressions, ok = read(schema.FieldImpressions); !ok {
			missingRequired++
		}
		if rec.Clicks, ok = read(schema.FieldClicks); !ok {
			missingRequired++
		}
		if rec.Spend, ok = read(schema.FieldSpend); !ok {
			missingRequired++
		}
		rec.Conversions, _ = read(schema.FieldConversions)
		rec.Revenue, _ = read(schema.FieldRevenue)

		if missingRequired == len(schema.RequiredFields) {
			stats.DroppedRows++
			stats.FlaggedCells += flagged
			continue
		}

		if cell, ok := cellAt(row, idx, schema.FieldCampaign); ok {
			rec.Campaign = strings.TrimSpace(cell)
		}
		if cell, ok := cellAt(row, idx, schema.FieldDate); ok && strings.TrimSpace(cell) != "" {
			if d, derr := parseDate(cell); derr == nil {
				rec.Date, rec.HasDate = d, true
			} else {
				stats.InvalidDates++
			}
		}

		stats.FlaggedCells += flagged
		if flagged > 0 {
			stats.FlaggedRows++
		}
		stats.KeptRows++
		records = append(records, rec)
	}
	return records, stats
}

// parseNumeric coerces a raw cell to a float after stripping formatting
// noise. Accepts "$1,234.56", "1 234", "12%", "(45.00)" accounting negatives.
func parseNumeric(s string) (float64, error) {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", "€", "", "£", "", ",", "", "%", "", " ", "").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if neg {
		v = -v
	}
	return v, nil
}

// parseDate tries each accepted layout in order.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateFormats {
		d, err := time.Parse(layout, s)
		if err == nil {
			return d, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func columnIndex(headers []string, m schema.Mapping) map[schema.Field]int {
	pos := make(map[string]int, len(headers))
	for i, h := range headers {
		pos[h] = i
	}
	idx := make(map[schema.Field]int, len(m))
	for f, src := range m {
		if i, ok := pos[src]; ok {
			idx[f] = i
		}
	}
	return idx
}

func cellAt(row []string, idx map[schema.Field]int, f schema.Field) (string, bool) {
	i, ok := idx[f]
	if !ok || i >= len(row) {
		return "", false
	}
	return row[i], true
}
