package insight

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"

	"insight_engine/pkg/core/llm"
	"insight_engine/pkg/core/utils"
)

// systemPrompt frames the provider as an analyst bound to the supplied
// numbers. The validator enforces that binding regardless.
const systemPrompt = "You are an expert AdTech analyst providing data-driven insights. " +
	"Only reference numbers present in the supplied metrics."

var promptTemplate = template.Must(template.New("insight").Parse(`Analyze the following campaign performance data and provide insights.

SUMMARY METRICS:
{{.Summary}}

TRENDS (consecutive periods):
{{.Trends}}

Provide:
1. Up to 5 key findings, each citing only the numbers above
2. Performance issues or red flags
3. Up to 5 specific, actionable recommendations

Respond with ONLY a JSON object in this exact shape:
{
  "findings": ["...", "..."],
  "issues": ["...", "..."],
  "recommendations": ["...", "..."]
}
`))

// AIProvider bridges an llm.Provider to the insight Provider interface:
// it serializes the frozen numeric context into the prompt, repairs the
// model's JSON and unmarshals it into the report shape. Grounding checks
// stay with the validator; this type only handles transport and parsing.
type AIProvider struct {
	LLM     llm.Provider
	Options map[string]interface{}
}

var _ Provider = (*AIProvider)(nil)

func (p *AIProvider) ProduceInsights(ctx context.Context, nc NumericContext) (*Report, error) {
	prompt, err := buildPrompt(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	opts := map[string]interface{}{
		"response_format": map[string]interface{}{"type": "json_object"},
	}
	for k, v := range p.Options {
		opts[k] = v
	}

	raw, err := p.LLM.GenerateResponse(ctx, prompt, systemPrompt, opts)
	if err != nil {
		return nil, fmt.Errorf("provider call failed: %w", err)
	}

	var candidate Report
	if err := utils.DecodeLenientJSON(raw, &candidate); err != nil {
		return nil, fmt.Errorf("provider returned unusable JSON: %w", err)
	}
	return &candidate, nil
}

func buildPrompt(nc NumericContext) (string, error) {
	summary, err := json.MarshalIndent(nc.Aggregate.Summary(), "", "  ")
	if err != nil {
		return "", err
	}

	var trends bytes.Buffer
	if len(nc.Trends) == 0 {
		trends.WriteString("(fewer than two periods; no trend data)")
	}
	for _, p := range nc.Trends {
		fmt.Fprintf(&trends, "- %s %s -> %s: %s to %s (%s%%, %s",
			p.Metric,
			p.PeriodStart.Format("2006-01-02"), p.PeriodEnd.Format("2006-01-02"),
			p.Previous, p.Current, p.PercentDelta, p.Direction)
		if p.Significant {
			trends.WriteString(", significant")
		}
		trends.WriteString(")\n")
	}

	var out bytes.Buffer
	err = promptTemplate.Execute(&out, map[string]string{
		"Summary": string(summary),
		"Trends":  trends.String(),
	})
	return out.String(), err
}
