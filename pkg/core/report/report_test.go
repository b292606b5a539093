package report

import (
	"strings"
	"testing"
	"time"

	"insight_engine/pkg/core/clean"
	"insight_engine/pkg/core/insight"
	"insight_engine/pkg/core/kpi"
)

func sampleDocument() Document {
	_, agg := kpi.Compute([]clean.Record{
		{Impressions: 125000, Clicks: 1250, Spend: 450, Conversions: 45, Revenue: 2250},
	})
	nc := insight.NumericContext{Aggregate: agg}
	return Document{
		Title:       "Campaign Performance Report",
		GeneratedAt: time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC),
		Aggregate:   agg,
		Report:      insight.Generate(nc, insight.DefaultConfig()),
		Stats:       clean.Stats{TotalRows: 1, KeptRows: 1},
	}
}

func TestRenderMarkdown(t *testing.T) {
	md, err := RenderMarkdown(sampleDocument())
	if err != nil {
		t.Fatalf("RenderMarkdown failed: %v", err)
	}
	for _, want := range []string{
		"# Campaign Performance Report",
		"source: rule_based",
		"| Total Spend | $450.00 |",
		"| CTR | 1.00% |",
		"| ROAS | 5.00 |",
		"## Key Findings",
		"## Recommendations",
		"Rows analyzed: 1 of 1",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderMarkdownUndefinedMetric(t *testing.T) {
	doc := sampleDocument()
	_, agg := kpi.Compute([]clean.Record{{Impressions: 1000, Clicks: 0, Spend: 10}})
	doc.Aggregate = agg
	doc.Report = insight.Generate(insight.NumericContext{Aggregate: agg}, insight.DefaultConfig())

	md, err := RenderMarkdown(doc)
	if err != nil {
		t.Fatalf("RenderMarkdown failed: %v", err)
	}
	if !strings.Contains(md, "| CPC | undefined |") {
		t.Error("undefined CPC must render as the sentinel, not 0")
	}
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML(sampleDocument())
	if err != nil {
		t.Fatalf("RenderHTML failed: %v", err)
	}
	if !strings.Contains(html, "<table>") {
		t.Error("summary table not converted to HTML")
	}
	if !strings.Contains(html, "<title>Campaign Performance Report</title>") {
		t.Error("missing page title")
	}
}

func TestFormatters(t *testing.T) {
	if got := FormatCurrency(1234567.891); got != "$1,234,567.89" {
		t.Errorf("FormatCurrency = %q", got)
	}
	if got := FormatNumber(125000); got != "125,000" {
		t.Errorf("FormatNumber = %q", got)
	}
	if got := FormatPercent(3.6); got != "3.60%" {
		t.Errorf("FormatPercent = %q", got)
	}
}
