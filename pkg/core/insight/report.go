// Package insight turns computed KPIs and trends into a narrative report.
// Two paths produce the same schema: a deterministic rule engine and an
// external AI provider whose output must survive grounding validation.
package insight

import (
	"insight_engine/pkg/core/kpi"
	"insight_engine/pkg/core/trend"
)

// Source identifies which engine produced a report.
type Source string

const (
	SourceRuleBased Source = "rule_based"
	SourceAI        Source = "ai"
)

// Report is the insight payload handed to report/export collaborators.
// Findings and recommendations are capped; issues are unbounded because
// they represent risk signals.
type Report struct {
	Summary         map[string]kpi.Metric `json:"summary"`
	Findings        []string              `json:"findings"`
	Issues          []string              `json:"issues"`
	Recommendations []string              `json:"recommendations"`
	Source          Source                `json:"source"`
}

// NumericContext is the frozen numeric input both engines work from. It is
// computed once per run and passed by value; neither engine may reference a
// number that is not derivable from it.
type NumericContext struct {
	Aggregate kpi.Aggregate `json:"aggregate"`
	Trends    []trend.Point `json:"trends"`
}

// LatestTrend returns the most recent trend point for a metric, or nil when
// the series has no points. Points arrive time-ascending per metric.
func (nc NumericContext) LatestTrend(metric string) *trend.Point {
	var last *trend.Point
	for i := range nc.Trends {
		if nc.Trends[i].Metric == metric {
			last = &nc.Trends[i]
		}
	}
	return last
}

// Config bounds report shape and validation strictness.
type Config struct {
	MaxFindings        int
	MaxRecommendations int
	// NumericTolerance is the relative tolerance used when checking
	// numbers quoted by an external provider against computed values.
	NumericTolerance float64
}

// DefaultConfig caps findings and recommendations at 5 and allows external
// numbers to deviate 1% from the computed value.
func DefaultConfig() Config {
	return Config{
		MaxFindings:        5,
		MaxRecommendations: 5,
		NumericTolerance:   0.01,
	}
}
