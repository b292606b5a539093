// Package report renders a pipeline result into Markdown and HTML for the
// export collaborators. Rendering is presentation only: no numbers are
// computed here.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"insight_engine/pkg/core/clean"
	"insight_engine/pkg/core/insight"
	"insight_engine/pkg/core/kpi"
)

// Document is everything the renderer needs for one report.
type Document struct {
	Title       string
	GeneratedAt time.Time
	Aggregate   kpi.Aggregate
	Report      *insight.Report
	Stats       clean.Stats
}

var funcMap = template.FuncMap{
	"currency": FormatCurrency,
	"percent":  FormatPercent,
	"number":   FormatNumber,
	"metric":   formatMetric,
	"inc":      func(i int) int { return i + 1 },
}

var markdownTemplate = template.Must(template.New("report").Funcs(funcMap).Parse(`# {{.Title}}

Generated on {{.GeneratedAt.Format "January 2, 2006 at 15:04"}} · source: {{.Report.Source}}

## Executive Summary

| Metric | Value |
|---|---|
| Total Impressions | {{number .Aggregate.TotalImpressions}} |
| Total Clicks | {{number .Aggregate.TotalClicks}} |
| Total Spend | {{currency .Aggregate.TotalSpend}} |
| Total Conversions | {{number .Aggregate.TotalConversions}} |
| Total Revenue | {{currency .Aggregate.TotalRevenue}} |
| CTR | {{metric .Aggregate.CTR "percent"}} |
| CPC | {{metric .Aggregate.CPC "currency"}} |
| CPM | {{metric .Aggregate.CPM "currency"}} |
| Conversion Rate | {{metric .Aggregate.ConversionRate "percent"}} |
| ROAS | {{metric .Aggregate.ROAS "ratio"}} |

## Key Findings
{{range $i, $f := .Report.Findings}}
{{inc $i}}. {{$f}}{{end}}

{{if .Report.Issues}}## Performance Issues
{{range $i, $f := .Report.Issues}}
{{inc $i}}. {{$f}}{{end}}

{{end}}## Recommendations
{{range $i, $f := .Report.Recommendations}}
{{inc $i}}. {{$f}}{{end}}

## Data Quality

- Rows analyzed: {{.Stats.KeptRows}} of {{.Stats.TotalRows}}
- Rows dropped (no usable numeric data): {{.Stats.DroppedRows}}
- Cells defaulted to zero: {{.Stats.FlaggedCells}}
- Unparsable dates: {{.Stats.InvalidDates}}
`))

// RenderMarkdown produces the Markdown report body.
func RenderMarkdown(doc Document) (string, error) {
	var buf bytes.Buffer
	if err := markdownTemplate.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}

// FormatCurrency renders "$1,234.56".
func FormatCurrency(v float64) string {
	return "$" + groupThousands(fmt.Sprintf("%.2f", v))
}

// FormatPercent renders "1.23%".
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// FormatNumber renders "1,234" with thousands separators.
func FormatNumber(v float64) string {
	return groupThousands(fmt.Sprintf("%.0f", v))
}

func formatMetric(m kpi.Metric, style string) string {
	v, ok := m.Value()
	if !ok {
		return kpi.UndefinedLabel
	}
	switch style {
	case "currency":
		return FormatCurrency(v)
	case "percent":
		return FormatPercent(v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// groupThousands inserts commas into the integer part of a formatted
// non-negative number.
func groupThousands(s string) string {
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return intPart + frac
	}
	var b bytes.Buffer
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return b.String() + frac
}
