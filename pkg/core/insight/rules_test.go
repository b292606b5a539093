package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"insight_engine/pkg/core/clean"
	"insight_engine/pkg/core/kpi"
	"insight_engine/pkg/core/trend"
)

func contextFor(recs []clean.Record) NumericContext {
	rows, agg := kpi.Compute(recs)
	return NumericContext{
		Aggregate: agg,
		Trends:    trend.Analyze(rows, trend.DefaultConfig()),
	}
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerateLosingMoneyIssue(t *testing.T) {
	nc := contextFor([]clean.Record{
		{Impressions: 10000, Clicks: 200, Spend: 500, Conversions: 5, Revenue: 250},
	})
	r := Generate(nc, DefaultConfig())

	if r.Source != SourceRuleBased {
		t.Errorf("source = %s, want rule_based", r.Source)
	}
	if !hasStatementContaining(r.Issues, "losing money") {
		t.Errorf("expected losing-money issue, got %v", r.Issues)
	}
	// The matching recommendation fires too.
	if !hasStatementContaining(r.Recommendations, "reallocate budget") {
		t.Errorf("expected reallocation recommendation, got %v", r.Recommendations)
	}
}

func TestGenerateNoConversionsIssue(t *testing.T) {
	// Zero clicks makes conversion_rate undefined; spend is positive.
	nc := contextFor([]clean.Record{
		{Impressions: 10000, Clicks: 0, Spend: 50},
	})
	r := Generate(nc, DefaultConfig())
	if !hasStatementContaining(r.Issues, "No conversions recorded") {
		t.Errorf("expected no-conversions issue, got %v", r.Issues)
	}
}

func TestGenerateDecliningCTRFinding(t *testing.T) {
	nc := contextFor([]clean.Record{
		{Date: day(1), HasDate: true, Impressions: 10000, Clicks: 400, Spend: 100, Conversions: 20, Revenue: 400},
		{Date: day(2), HasDate: true, Impressions: 10000, Clicks: 200, Spend: 100, Conversions: 10, Revenue: 400},
	})
	r := Generate(nc, DefaultConfig())
	if !hasStatementContaining(r.Issues, "Click-through rate declining") {
		t.Errorf("expected declining-CTR issue, got %v", r.Issues)
	}
}

func TestGenerateCaps(t *testing.T) {
	nc := contextFor([]clean.Record{
		{Impressions: 10000, Clicks: 500, Spend: 100, Conversions: 50, Revenue: 900},
	})
	r := Generate(nc, DefaultConfig())
	if len(r.Findings) > 5 {
		t.Errorf("findings over cap: %d", len(r.Findings))
	}
	if len(r.Recommendations) > 5 {
		t.Errorf("recommendations over cap: %d", len(r.Recommendations))
	}
}

func TestGenerateDeterministic(t *testing.T) {
	nc := contextFor([]clean.Record{
		{Date: day(1), HasDate: true, Impressions: 12000, Clicks: 240, Spend: 90, Conversions: 6, Revenue: 300},
		{Date: day(2), HasDate: true, Impressions: 9000, Clicks: 120, Spend: 110, Conversions: 2, Revenue: 120},
	})
	a, err := json.Marshal(Generate(nc, DefaultConfig()))
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(Generate(nc, DefaultConfig()))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("identical context must produce byte-identical reports")
	}
}

func TestGenerateNeverQuotesForeignNumbers(t *testing.T) {
	// Every number in a rule-based report must survive the same grounding
	// check applied to external payloads.
	nc := contextFor([]clean.Record{
		{Date: day(1), HasDate: true, Impressions: 125000, Clicks: 1250, Spend: 450, Conversions: 45, Revenue: 2250},
		{Date: day(2), HasDate: true, Impressions: 100000, Clicks: 800, Spend: 500, Conversions: 20, Revenue: 1500},
	})
	r := Generate(nc, DefaultConfig())

	grounded := groundedValues(nc)
	for _, stmt := range allStatements(r) {
		// Rendered values are rounded to 1-2 decimals, so allow the same
		// tolerance the validator grants external providers.
		if reasons := checkNumbers(stmt, grounded, 0.01); len(reasons) != 0 {
			t.Errorf("rule-based statement not grounded: %v", reasons)
		}
	}
}

func TestRuleBasedProviderMatchesGenerate(t *testing.T) {
	nc := contextFor([]clean.Record{
		{Impressions: 10000, Clicks: 200, Spend: 500, Conversions: 5, Revenue: 250},
	})
	p := RuleBasedProvider{Config: DefaultConfig()}
	got, err := p.ProduceInsights(context.Background(), nc)
	if err != nil {
		t.Fatalf("ProduceInsights failed: %v", err)
	}
	want := Generate(nc, DefaultConfig())
	a, _ := json.Marshal(got)
	b, _ := json.Marshal(want)
	if !bytes.Equal(a, b) {
		t.Error("provider output differs from direct generation")
	}
}

func hasStatementContaining(list []string, substr string) bool {
	for _, s := range list {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
