// Package pipeline runs the end-to-end analysis for one in-memory table:
// schema resolution -> cleaning -> KPI computation -> trend analysis ->
// insight generation. Each run is independent; the only long-lived shared
// state is the read-only alias table inside the schema mapper.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"insight_engine/pkg/core/clean"
	"insight_engine/pkg/core/config"
	"insight_engine/pkg/core/insight"
	"insight_engine/pkg/core/kpi"
	"insight_engine/pkg/core/llm"
	"insight_engine/pkg/core/schema"
	"insight_engine/pkg/core/trend"
)

// Result is the complete output of one run. It always carries a report:
// every failure mode past schema resolution degrades to the rule-based
// path rather than aborting.
type Result struct {
	ReportID    string          `json:"report_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Mapping     schema.Mapping  `json:"mapping"`
	Rows        []kpi.Row       `json:"-"`
	Aggregate   kpi.Aggregate   `json:"aggregate"`
	Trends      []trend.Point   `json:"trends"`
	Stats       clean.Stats     `json:"data_quality"`
	Report      *insight.Report `json:"report"`
	Elapsed     time.Duration   `json:"-"`
}

// Orchestrator wires the pipeline stages together.
type Orchestrator struct {
	mapper   *schema.Mapper
	trendCfg trend.Config
	engine   *insight.Engine
	log      *slog.Logger
}

// New builds an orchestrator from config. The registry supplies the
// external provider when one is configured; a nil registry or an empty
// provider name leaves the pipeline fully rule-based.
func New(cfg config.Config, registry *llm.Registry, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}

	var provider insight.Provider
	if cfg.Provider != "" && registry != nil {
		if lp := registry.Get(cfg.Provider); lp != nil {
			opts := map[string]interface{}{}
			if cfg.ProviderModel != "" {
				opts["model"] = cfg.ProviderModel
			}
			provider = &insight.AIProvider{LLM: lp, Options: opts}
		} else {
			log.Warn("unknown insight provider, falling back to rule-based", "provider", cfg.Provider)
		}
	}

	return &Orchestrator{
		mapper:   cfg.Mapper(),
		trendCfg: cfg.TrendConfig(),
		engine:   insight.NewEngine(provider, cfg.InsightConfig(), cfg.ProviderTimeout(), log),
		log:      log,
	}
}

// SetInsightEngine injects a custom engine (e.g. for testing).
func (o *Orchestrator) SetInsightEngine(e *insight.Engine) {
	o.engine = e
}

// Run executes the pipeline over one table. The only returned error is an
// unresolvable schema (*schema.SchemaError); it aborts before any KPI work
// and must be surfaced to the caller verbatim.
func (o *Orchestrator) Run(ctx context.Context, table clean.Table) (*Result, error) {
	start := time.Now()

	mapping, err := o.mapper.Resolve(table.Headers)
	if err != nil {
		return nil, err
	}

	records, stats := clean.Clean(table, mapping)
	rows, agg := kpi.Compute(records)
	trends := trend.Analyze(rows, o.trendCfg)

	nc := insight.NumericContext{Aggregate: agg, Trends: trends}
	rep := o.engine.Generate(ctx, nc)

	res := &Result{
		ReportID:    uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Mapping:     mapping,
		Rows:        rows,
		Aggregate:   agg,
		Trends:      trends,
		Stats:       stats,
		Report:      rep,
		Elapsed:     time.Since(start),
	}
	o.log.Info("pipeline run complete",
		"report_id", res.ReportID,
		"rows", stats.KeptRows,
		"dropped", stats.DroppedRows,
		"trend_points", len(trends),
		"source", rep.Source,
		"elapsed", res.Elapsed)
	return res, nil
}
