// Package kpi computes advertising performance ratios from cleaned campaign
// records. Division by zero is defined away: every ratio is a tagged Metric
// that is either a finite non-negative value or the "undefined" sentinel.
package kpi

import (
	"insight_engine/pkg/core/clean"
)

// Row holds the derived metrics for one campaign record, alongside the
// record itself so table consumers get canonical fields in one place.
type Row struct {
	Record clean.Record

	CTR            Metric `json:"ctr"`
	CPC            Metric `json:"cpc"`
	CPM            Metric `json:"cpm"`
	ConversionRate Metric `json:"conversion_rate"`
	ROAS           Metric `json:"roas"`
}

// Aggregate holds the raw totals across all records plus the overall
// ratios. Ratios are computed from the totals, never by averaging per-row
// ratios: averaging rates across unequal volumes distorts the picture.
type Aggregate struct {
	TotalImpressions float64 `json:"total_impressions"`
	TotalClicks      float64 `json:"total_clicks"`
	TotalSpend       float64 `json:"total_spend"`
	TotalConversions float64 `json:"total_conversions"`
	TotalRevenue     float64 `json:"total_revenue"`
	RecordCount      int     `json:"record_count"`

	CTR            Metric `json:"ctr"`
	CPC            Metric `json:"cpc"`
	CPM            Metric `json:"cpm"`
	ConversionRate Metric `json:"conversion_rate"`
	ROAS           Metric `json:"roas"`
}

// Compute derives per-record metric rows and the aggregate in one pass.
//
//	ctr             = clicks / impressions * 100
//	cpc             = spend / clicks
//	cpm             = spend / impressions * 1000
//	conversion_rate = conversions / clicks * 100
//	roas            = revenue / spend
func Compute(records []clean.Record) ([]Row, Aggregate) {
	rows := make([]Row, len(records))
	var agg Aggregate
	agg.RecordCount = len(records)

	for i, r := range records {
		rows[i] = Row{
			Record:         r,
			CTR:            ctr(r.Clicks, r.Impressions),
			CPC:            Ratio(r.Spend, r.Clicks),
			CPM:            cpm(r.Spend, r.Impressions),
			ConversionRate: ctr(r.Conversions, r.Clicks),
			ROAS:           Ratio(r.Revenue, r.Spend),
		}
		agg.TotalImpressions += r.Impressions
		agg.TotalClicks += r.Clicks
		agg.TotalSpend += r.Spend
		agg.TotalConversions += r.Conversions
		agg.TotalRevenue += r.Revenue
	}

	agg.CTR = ctr(agg.TotalClicks, agg.TotalImpressions)
	agg.CPC = Ratio(agg.TotalSpend, agg.TotalClicks)
	agg.CPM = cpm(agg.TotalSpend, agg.TotalImpressions)
	agg.ConversionRate = ctr(agg.TotalConversions, agg.TotalClicks)
	agg.ROAS = Ratio(agg.TotalRevenue, agg.TotalSpend)
	return rows, agg
}

// ctr doubles as the conversion-rate formula: numerator over denominator,
// expressed as a percentage.
func ctr(num, den float64) Metric {
	m := Ratio(num, den)
	if v, ok := m.Value(); ok {
		return Defined(v * 100)
	}
	return m
}

func cpm(spend, impressions float64) Metric {
	m := Ratio(spend, impressions)
	if v, ok := m.Value(); ok {
		return Defined(v * 1000)
	}
	return m
}

// Summary flattens the aggregate into the headline-metric map used by the
// insight report ("summary" object in the report schema).
func (a Aggregate) Summary() map[string]Metric {
	return map[string]Metric{
		"total_impressions": Defined(a.TotalImpressions),
		"total_clicks":      Defined(a.TotalClicks),
		"total_spend":       Defined(a.TotalSpend),
		"total_conversions": Defined(a.TotalConversions),
		"total_revenue":     Defined(a.TotalRevenue),
		"ctr":               a.CTR,
		"cpc":               a.CPC,
		"cpm":               a.CPM,
		"conversion_rate":   a.ConversionRate,
		"roas":              a.ROAS,
	}
}
