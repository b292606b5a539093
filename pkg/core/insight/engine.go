package insight

import (
	"context"
	"log/slog"
	"time"
)

// Provider produces a candidate insight report from a frozen numeric
// context. Implementations may block or fail; the engine bounds the wait
// and substitutes the rule-based result on any failure.
type Provider interface {
	ProduceInsights(ctx context.Context, nc NumericContext) (*Report, error)
}

// RuleBasedProvider is the deterministic Provider implementation. It is
// the guaranteed fallback: it cannot fail and needs no validation, since
// every number it emits is a substitution of a computed value.
type RuleBasedProvider struct {
	Config Config
}

func (p RuleBasedProvider) ProduceInsights(_ context.Context, nc NumericContext) (*Report, error) {
	return Generate(nc, p.Config), nil
}

// Engine runs the external provider when one is configured, validates its
// output against the numeric context, and falls back to the rule engine on
// timeout, provider error or validation failure. It always returns a
// complete report.
type Engine struct {
	provider Provider
	cfg      Config
	timeout  time.Duration
	log      *slog.Logger
}

// NewEngine wires an engine. provider may be nil, in which case every run
// takes the rule-based path. A zero timeout defaults to 30s.
func NewEngine(provider Provider, cfg Config, timeout time.Duration, log *slog.Logger) *Engine {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{provider: provider, cfg: cfg, timeout: timeout, log: log}
}

// Generate never fails: whichever path runs, the caller gets a report
// conforming to the same schema.
func (e *Engine) Generate(ctx context.Context, nc NumericContext) *Report {
	if e.provider == nil {
		return Generate(nc, e.cfg)
	}

	pctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	candidate, err := e.provider.ProduceInsights(pctx, nc)
	if err != nil {
		e.log.Warn("insight provider failed, using rule-based report", "error", err)
		return Generate(nc, e.cfg)
	}
	validated, err := Validate(candidate, nc, e.cfg)
	if err != nil {
		e.log.Warn("insight payload rejected, using rule-based report", "error", err)
		return Generate(nc, e.cfg)
	}
	return validated
}
