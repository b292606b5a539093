// Package trend derives period-over-period deltas from date-ordered KPI
// rows. Periods are whatever calendar dates the data actually contains;
// missing periods are never invented by resampling.
package trend

import (
	"sort"
	"time"

	"insight_engine/pkg/core/kpi"
)

// Point is one consecutive-period comparison for a single metric.
type Point struct {
	Metric       string     `json:"metric"`
	PeriodStart  time.Time  `json:"period_start"`
	PeriodEnd    time.Time  `json:"period_end"`
	Previous     kpi.Metric `json:"previous"`
	Current      kpi.Metric `json:"current"`
	PercentDelta kpi.Metric `json:"percent_delta"`
	Direction    Direction  `json:"direction"`
	Significant  bool       `json:"significant"`
}

// Direction classifies the sign of the delta.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
	DirectionFlat Direction = "flat"
)

// Config controls trend detection.
type Config struct {
	// SignificanceThreshold is the absolute percent delta at or above
	// which a point is flagged, in percentage points.
	SignificanceThreshold float64
}

// DefaultConfig flags moves of 10% or more.
func DefaultConfig() Config {
	return Config{SignificanceThreshold: 10}
}

// TrackedMetrics are the series compared period over period.
var TrackedMetrics = []string{"ctr", "spend", "conversions", "revenue", "clicks", "impressions"}

// Analyze aggregates valid-date rows per calendar day and compares each
// tracked metric across consecutive periods. Rows without a valid date are
// skipped. Fewer than two periods yield an empty (non-nil error free) slice.
func Analyze(rows []kpi.Row, cfg Config) []Point {
	type bucket struct {
		impressions, clicks, spend, conversions, revenue float64
	}
	byDay := make(map[time.Time]*bucket)
	for _, r := range rows {
		if !r.Record.HasDate {
			continue
		}
		day := r.Record.Date.Truncate(24 * time.Hour)
		b, ok := byDay[day]
		if !ok {
			b = &bucket{}
			byDay[day] = b
		}
		b.impressions += r.Record.Impressions
		b.clicks += r.Record.Clicks
		b.spend += r.Record.Spend
		b.conversions += r.Record.Conversions
		b.revenue += r.Record.Revenue
	}
	if len(byDay) < 2 {
		return []Point{}
	}

	days := make([]time.Time, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	series := func(b *bucket, metric string) float64 {
		switch metric {
		case "ctr":
			if b.impressions == 0 {
				return 0
			}
			return b.clicks / b.impressions * 100
		case "spend":
			return b.spend
		case "conversions":
			return b.conversions
		case "revenue":
			return b.revenue
		case "clicks":
			return b.clicks
		default:
			return b.impressions
		}
	}

	var points []Point
	for _, metric := range TrackedMetrics {
		for i := 1; i < len(days); i++ {
			prev := series(byDay[days[i-1]], metric)
			curr := series(byDay[days[i]], metric)
			points = append(points, makePoint(metric, days[i-1], days[i], prev, curr, cfg))
		}
	}
	return points
}

func makePoint(metric string, start, end time.Time, prev, curr float64, cfg Config) Point {
	p := Point{
		Metric:      metric,
		PeriodStart: start,
		PeriodEnd:   end,
		Previous:    kpi.Defined(prev),
		Current:     kpi.Defined(curr),
	}
	switch {
	case curr > prev:
		p.Direction = DirectionUp
	case curr < prev:
		p.Direction = DirectionDown
	default:
		p.Direction = DirectionFlat
	}
	// Percent delta shares the safe-division sentinel: no baseline, no delta.
	if prev == 0 {
		p.PercentDelta = kpi.Undefined
		p.Significant = curr != 0
		return p
	}
	delta := (curr - prev) / prev * 100
	p.PercentDelta = kpi.Defined(delta)
	p.Significant = abs(delta) >= cfg.SignificanceThreshold
	return p
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
