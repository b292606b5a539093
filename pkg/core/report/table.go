package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"insight_engine/pkg/core/kpi"
)

// kpiTableHeader is the canonical column order of the KPI table consumed
// by chart and export collaborators.
var kpiTableHeader = []string{
	"date", "campaign",
	"impressions", "clicks", "spend", "conversions", "revenue",
	"ctr", "cpc", "cpm", "conversion_rate", "roas",
}

// WriteKPITable writes one CSV row per record plus a final aggregate row.
// Undefined metrics are written as the sentinel string, keeping "no data"
// distinguishable from zero in downstream spreadsheets.
func WriteKPITable(w io.Writer, rows []kpi.Row, agg kpi.Aggregate) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(kpiTableHeader); err != nil {
		return err
	}

	for _, r := range rows {
		date := ""
		if r.Record.HasDate {
			date = r.Record.Date.Format("2006-01-02")
		}
		rec := []string{
			date,
			r.Record.Campaign,
			formatCount(r.Record.Impressions),
			formatCount(r.Record.Clicks),
			formatAmount(r.Record.Spend),
			formatCount(r.Record.Conversions),
			formatAmount(r.Record.Revenue),
			metricCell(r.CTR),
			metricCell(r.CPC),
			metricCell(r.CPM),
			metricCell(r.ConversionRate),
			metricCell(r.ROAS),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	total := []string{
		"", "TOTAL",
		formatCount(agg.TotalImpressions),
		formatCount(agg.TotalClicks),
		formatAmount(agg.TotalSpend),
		formatCount(agg.TotalConversions),
		formatAmount(agg.TotalRevenue),
		metricCell(agg.CTR),
		metricCell(agg.CPC),
		metricCell(agg.CPM),
		metricCell(agg.ConversionRate),
		metricCell(agg.ROAS),
	}
	if err := cw.Write(total); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

func metricCell(m kpi.Metric) string {
	v, ok := m.Value()
	if !ok {
		return kpi.UndefinedLabel
	}
	return fmt.Sprintf("%.4f", v)
}

func formatCount(v float64) string  { return fmt.Sprintf("%.0f", v) }
func formatAmount(v float64) string { return fmt.Sprintf("%.2f", v) }
