package insight

import (
	"fmt"

	"insight_engine/pkg/core/trend"
)

// category routes a fired statement into one of the report lists.
type category int

const (
	catFinding category = iota
	catIssue
	catRecommendation
)

// rule is one entry of the declarative rule table: a predicate over the
// numeric context and a renderer that substitutes already-computed values
// into a fixed template. A rule fires at most one statement; it must never
// quote a number that is not present in the context.
type rule struct {
	category category
	when     func(NumericContext) bool
	render   func(NumericContext) string
}

// ruleTable is evaluated top to bottom. Order is priority order: findings
// and recommendations keep only the first MaxFindings/MaxRecommendations
// fired statements, issues keep everything.
var ruleTable = []rule{
	// ---- Issues (risk signals) ----
	{catIssue,
		func(nc NumericContext) bool { return nc.Aggregate.ROAS.Or(1) < 1 },
		func(nc NumericContext) string {
			return fmt.Sprintf("Campaign is losing money: ROAS of %.2f returns less than is spent", nc.Aggregate.ROAS.Or(0))
		}},
	{catIssue,
		func(nc NumericContext) bool {
			return !nc.Aggregate.ConversionRate.IsDefined() && nc.Aggregate.TotalSpend > 0
		},
		func(nc NumericContext) string {
			return fmt.Sprintf("No conversions recorded: %.0f clicks against $%.2f spend", nc.Aggregate.TotalClicks, nc.Aggregate.TotalSpend)
		}},
	{catIssue,
		func(nc NumericContext) bool {
			return nc.Aggregate.ConversionRate.Or(1) == 0 && nc.Aggregate.TotalClicks > 0
		},
		func(nc NumericContext) string {
			return fmt.Sprintf("No conversions recorded across %.0f clicks", nc.Aggregate.TotalClicks)
		}},
	{catIssue,
		func(nc NumericContext) bool { return nc.Aggregate.CTR.Or(1) < 1 },
		func(nc NumericContext) string {
			return fmt.Sprintf("Low CTR of %.2f%% indicates poor ad relevance or targeting", nc.Aggregate.CTR.Or(0))
		}},
	{catIssue,
		func(nc NumericContext) bool { return nc.Aggregate.CPC.Or(0) > 2 },
		func(nc NumericContext) string {
			return fmt.Sprintf("High CPC of $%.2f may impact profitability", nc.Aggregate.CPC.Or(0))
		}},
	{catIssue,
		func(nc NumericContext) bool { return significantDown(nc, "ctr") },
		func(nc NumericContext) string {
			p := nc.LatestTrend("ctr")
			return fmt.Sprintf("Click-through rate declining: down %.1f%% versus the prior period", -p.PercentDelta.Or(0))
		}},
	{catIssue,
		func(nc NumericContext) bool { return significantDown(nc, "revenue") },
		func(nc NumericContext) string {
			p := nc.LatestTrend("revenue")
			return fmt.Sprintf("Revenue dropped %.1f%% versus the prior period", -p.PercentDelta.Or(0))
		}},
	{catIssue,
		func(nc NumericContext) bool {
			return significantUp(nc, "spend") && !significantUp(nc, "revenue")
		},
		func(nc NumericContext) string {
			p := nc.LatestTrend("spend")
			return fmt.Sprintf("Spend rose %.1f%% without matching revenue growth", p.PercentDelta.Or(0))
		}},

	// ---- Findings ----
	{catFinding,
		func(nc NumericContext) bool { return nc.Aggregate.ROAS.Or(0) >= 2 },
		func(nc NumericContext) string {
			return fmt.Sprintf("Strong ROAS of %.2f indicates profitable campaigns", nc.Aggregate.ROAS.Or(0))
		}},
	{catFinding,
		func(nc NumericContext) bool { return nc.Aggregate.CTR.Or(0) >= 1 },
		func(nc NumericContext) string {
			return fmt.Sprintf("CTR of %.2f%% shows good engagement", nc.Aggregate.CTR.Or(0))
		}},
	{catFinding,
		func(nc NumericContext) bool { return nc.Aggregate.ConversionRate.Or(0) >= 2 },
		func(nc NumericContext) string {
			return fmt.Sprintf("Conversion rate of %.2f%% is performing well", nc.Aggregate.ConversionRate.Or(0))
		}},
	{catFinding,
		func(nc NumericContext) bool { return significantUp(nc, "revenue") },
		func(nc NumericContext) string {
			p := nc.LatestTrend("revenue")
			return fmt.Sprintf("Revenue grew %.1f%% versus the prior period", p.PercentDelta.Or(0))
		}},
	{catFinding,
		func(nc NumericContext) bool { return significantUp(nc, "ctr") },
		func(nc NumericContext) string {
			p := nc.LatestTrend("ctr")
			return fmt.Sprintf("Click-through rate improved %.1f%% versus the prior period", p.PercentDelta.Or(0))
		}},
	{catFinding,
		func(nc NumericContext) bool { return nc.Aggregate.CPC.IsDefined() },
		func(nc NumericContext) string {
			return fmt.Sprintf("Average CPC is $%.2f", nc.Aggregate.CPC.Or(0))
		}},
	{catFinding,
		func(nc NumericContext) bool { return nc.Aggregate.RecordCount > 0 },
		func(nc NumericContext) string {
			return fmt.Sprintf("Analyzed %d records covering %.0f impressions", nc.Aggregate.RecordCount, nc.Aggregate.TotalImpressions)
		}},

	// ---- Recommendations ----
	{catRecommendation,
		func(nc NumericContext) bool { return nc.Aggregate.ROAS.Or(1) < 1 },
		func(nc NumericContext) string {
			return "Pause the lowest-return segments and reallocate budget to campaigns with positive return"
		}},
	{catRecommendation,
		func(nc NumericContext) bool { return nc.Aggregate.CTR.Or(1) < 1 },
		func(nc NumericContext) string {
			return "Improve ad copy and creative to increase engagement"
		}},
	{catRecommendation,
		func(nc NumericContext) bool { return nc.Aggregate.CPC.Or(0) > 2 },
		func(nc NumericContext) string {
			return "Optimize bidding strategy to reduce cost per click"
		}},
	{catRecommendation,
		func(nc NumericContext) bool { return nc.Aggregate.ConversionRate.Or(2) < 2 },
		func(nc NumericContext) string {
			return "Optimize landing pages and checkout flow"
		}},
	{catRecommendation,
		func(nc NumericContext) bool { return significantDown(nc, "ctr") },
		func(nc NumericContext) string {
			return "Rotate in fresh creatives to counter click-through fatigue"
		}},
	{catRecommendation,
		func(nc NumericContext) bool { return true },
		func(nc NumericContext) string {
			return "Monitor performance daily and adjust bids based on return"
		}},
	{catRecommendation,
		func(nc NumericContext) bool { return true },
		func(nc NumericContext) string {
			return "A/B test different ad creatives and messaging"
		}},
	{catRecommendation,
		func(nc NumericContext) bool { return true },
		func(nc NumericContext) string {
			return "Shift budget toward the best-performing segments"
		}},
}

func significantUp(nc NumericContext, metric string) bool {
	p := nc.LatestTrend(metric)
	return p != nil && p.Significant && p.Direction == trend.DirectionUp
}

func significantDown(nc NumericContext, metric string) bool {
	p := nc.LatestTrend(metric)
	return p != nil && p.Significant && p.Direction == trend.DirectionDown
}

// Generate evaluates the rule table in priority order and assembles a
// rule-based report. Output is a pure function of the numeric context:
// identical input produces byte-identical content.
func Generate(nc NumericContext, cfg Config) *Report {
	r := &Report{
		Summary:         nc.Aggregate.Summary(),
		Findings:        []string{},
		Issues:          []string{},
		Recommendations: []string{},
		Source:          SourceRuleBased,
	}
	for _, rl := range ruleTable {
		if !rl.when(nc) {
			continue
		}
		switch rl.category {
		case catFinding:
			if len(r.Findings) < cfg.MaxFindings {
				r.Findings = append(r.Findings, rl.render(nc))
			}
		case catIssue:
			r.Issues = append(r.Issues, rl.render(nc))
		case catRecommendation:
			if len(r.Recommendations) < cfg.MaxRecommendations {
				r.Recommendations = append(r.Recommendations, rl.render(nc))
			}
		}
	}
	if len(r.Findings) == 0 {
		r.Findings = append(r.Findings, "Data analysis completed; no headline movements detected")
	}
	return r
}
