// Command pipeline analyzes one campaign export from the command line and
// writes the KPI table and report artifacts to an output directory.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"insight_engine/pkg/core/config"
	"insight_engine/pkg/core/ingest"
	"insight_engine/pkg/core/llm"
	"insight_engine/pkg/core/pipeline"
	"insight_engine/pkg/core/report"
	"insight_engine/pkg/core/schema"
)

func main() {
	input := flag.String("input", "", "Path to the campaign export (.csv, .html)")
	configPath := flag.String("config", "", "Optional config file (.yaml or .hjson)")
	outDir := flag.String("out", "output", "Output directory for report artifacts")
	title := flag.String("title", "Campaign Performance Report", "Report title")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: pipeline -input data.csv [-config engine.yaml] [-out output]")
		os.Exit(2)
	}

	// Provider API keys come from the environment.
	godotenv.Load()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
	}

	table, err := ingest.ReadFile(*input)
	if err != nil {
		log.Error("failed to read input", "path", *input, "error", err)
		os.Exit(1)
	}

	orch := pipeline.New(cfg, llm.NewRegistry(cfg.Provider), log)
	res, err := orch.Run(context.Background(), table)
	if err != nil {
		var se *schema.SchemaError
		if errors.As(err, &se) {
			log.Error("input schema could not be resolved", "missing", se.Missing)
		} else {
			log.Error("pipeline failed", "error", err)
		}
		os.Exit(1)
	}

	if err := writeArtifacts(*outDir, *title, res); err != nil {
		log.Error("failed to write artifacts", "error", err)
		os.Exit(1)
	}
	log.Info("report written", "dir", *outDir, "report_id", res.ReportID, "source", res.Report.Source)
}

func writeArtifacts(dir, title string, res *pipeline.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	doc := report.Document{
		Title:       title,
		GeneratedAt: res.GeneratedAt,
		Aggregate:   res.Aggregate,
		Report:      res.Report,
		Stats:       res.Stats,
	}

	kpiFile, err := os.Create(filepath.Join(dir, "kpi_table.csv"))
	if err != nil {
		return err
	}
	defer kpiFile.Close()
	if err := report.WriteKPITable(kpiFile, res.Rows, res.Aggregate); err != nil {
		return err
	}

	md, err := report.RenderMarkdown(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "report.md"), []byte(md), 0o644); err != nil {
		return err
	}

	html, err := report.RenderHTML(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "report.html"), []byte(html), 0o644); err != nil {
		return err
	}

	payload, err := json.MarshalIndent(res.Report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "report.json"), payload, 0o644)
}
