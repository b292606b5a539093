package insight

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"insight_engine/pkg/core/trend"
)

// ValidationError reports why an externally supplied report was rejected.
// The validator never repairs a payload: on any failure the caller must
// fall back to the rule-based generator.
type ValidationError struct {
	Reasons []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("insight payload failed validation: %s", strings.Join(e.Reasons, "; "))
}

// numberPattern captures checkable quantities: anything carrying a currency
// or percent marker, or a decimal point. Bare integers ("top 5 campaigns")
// are not treated as claims.
var numberPattern = regexp.MustCompile(`[$€£]\s*\d[\d,]*(?:\.\d+)?|\d[\d,]*\.\d+\s*%?|\d[\d,]*\s*%`)

// directionWords maps increase/decrease vocabulary to the trend direction
// the statement asserts.
var directionWords = map[string]trend.Direction{
	"increase": trend.DirectionUp, "increased": trend.DirectionUp,
	"grew": trend.DirectionUp, "growing": trend.DirectionUp, "growth": trend.DirectionUp,
	"rose": trend.DirectionUp, "rising": trend.DirectionUp, "climbed": trend.DirectionUp,
	"improved": trend.DirectionUp, "up": trend.DirectionUp,
	"decrease": trend.DirectionDown, "decreased": trend.DirectionDown,
	"dropped": trend.DirectionDown, "declined": trend.DirectionDown,
	"declining": trend.DirectionDown, "fell": trend.DirectionDown,
	"falling": trend.DirectionDown, "down": trend.DirectionDown,
	"shrank": trend.DirectionDown, "worsened": trend.DirectionDown,
}

// metricMentions maps statement vocabulary to tracked trend metrics.
// Ordered: the first mention found decides which series the statement is
// about, so more specific phrases come first.
var metricMentions = []struct {
	mention, metric string
}{
	{"click-through", "ctr"},
	{"click through", "ctr"},
	{"ctr", "ctr"},
	{"conversion", "conversions"},
	{"revenue", "revenue"},
	{"sales", "revenue"},
	{"impression", "impressions"},
	{"spend", "spend"},
	{"cost", "spend"},
	{"click", "clicks"},
}

// Validate checks a candidate report against the numeric context it claims
// to describe. All checks must pass; the first failure set is returned as a
// *ValidationError. On success the report is returned with Source forced to
// SourceAI so downstream consumers see a uniform schema.
func Validate(candidate *Report, nc NumericContext, cfg Config) (*Report, error) {
	var reasons []string

	reasons = append(reasons, checkStructure(candidate, cfg)...)
	if len(reasons) > 0 {
		// Structurally broken payloads are not worth grounding checks.
		return nil, &ValidationError{Reasons: reasons}
	}

	grounded := groundedValues(nc)
	for _, stmt := range allStatements(candidate) {
		reasons = append(reasons, checkNumbers(stmt, grounded, cfg.NumericTolerance)...)
		reasons = append(reasons, checkDirections(stmt, nc)...)
	}
	if len(reasons) > 0 {
		return nil, &ValidationError{Reasons: reasons}
	}

	out := *candidate
	out.Source = SourceAI
	if out.Summary == nil {
		out.Summary = nc.Aggregate.Summary()
	}
	return &out, nil
}

func checkStructure(r *Report, cfg Config) []string {
	var reasons []string
	if r == nil {
		return []string{"payload is empty"}
	}
	if r.Findings == nil || r.Recommendations == nil || r.Issues == nil {
		reasons = append(reasons, "findings, issues and recommendations are all required")
		return reasons
	}
	if len(r.Findings) > cfg.MaxFindings {
		reasons = append(reasons, fmt.Sprintf("findings exceed cap of %d", cfg.MaxFindings))
	}
	if len(r.Recommendations) > cfg.MaxRecommendations {
		reasons = append(reasons, fmt.Sprintf("recommendations exceed cap of %d", cfg.MaxRecommendations))
	}
	for _, s := range allStatements(r) {
		if strings.TrimSpace(s) == "" {
			reasons = append(reasons, "empty statement in report lists")
			break
		}
	}
	return reasons
}

// groundedValues collects every number derivable from the context: summary
// metrics, trend endpoints and percent deltas (plus their absolute values,
// since statements phrase declines as positive percentages).
func groundedValues(nc NumericContext) []float64 {
	var vals []float64
	add := func(v float64) { vals = append(vals, v) }

	for _, m := range nc.Aggregate.Summary() {
		if v, ok := m.Value(); ok {
			add(v)
		}
	}
	add(float64(nc.Aggregate.RecordCount))
	for _, p := range nc.Trends {
		for _, m := range []interface{ Value() (float64, bool) }{p.Previous, p.Current, p.PercentDelta} {
			if v, ok := m.Value(); ok {
				add(v)
				add(math.Abs(v))
			}
		}
	}
	return vals
}

func checkNumbers(stmt string, grounded []float64, tolerance float64) []string {
	var reasons []string
	for _, raw := range numberPattern.FindAllString(stmt, -1) {
		v, err := parseQuantity(raw)
		if err != nil {
			continue
		}
		if !matchesAny(v, grounded, tolerance) {
			reasons = append(reasons, fmt.Sprintf("number %q in %q matches no computed value", raw, stmt))
		}
	}
	return reasons
}

func checkDirections(stmt string, nc NumericContext) []string {
	lower := strings.ToLower(stmt)

	metric := ""
	for _, mm := range metricMentions {
		if strings.Contains(lower, mm.mention) {
			metric = mm.metric
			break
		}
	}
	if metric == "" {
		return nil
	}
	p := nc.LatestTrend(metric)
	if p == nil {
		return nil
	}

	for _, word := range strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z') && r != '-'
	}) {
		claimed, ok := directionWords[word]
		if !ok {
			continue
		}
		if claimed != p.Direction {
			return []string{fmt.Sprintf("statement %q claims %s is %s but the computed direction is %s",
				stmt, metric, claimed, p.Direction)}
		}
	}
	return nil
}

func matchesAny(v float64, grounded []float64, tolerance float64) bool {
	for _, g := range grounded {
		if g == 0 {
			if v == 0 {
				return true
			}
			continue
		}
		if math.Abs(v-g)/math.Abs(g) <= tolerance {
			return true
		}
	}
	return false
}

func parseQuantity(raw string) (float64, error) {
	raw = strings.NewReplacer("$", "", "€", "", "£", "", "%", "", ",", "", " ", "").Replace(raw)
	return strconv.ParseFloat(raw, 64)
}

func allStatements(r *Report) []string {
	out := make([]string, 0, len(r.Findings)+len(r.Issues)+len(r.Recommendations))
	out = append(out, r.Findings...)
	out = append(out, r.Issues...)
	out = append(out, r.Recommendations...)
	return out
}
