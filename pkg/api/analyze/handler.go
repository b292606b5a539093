// Package analyze exposes the pipeline over HTTP. The handler is a thin
// adapter: parsing and analysis all live in pkg/core.
package analyze

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"insight_engine/pkg/core/clean"
	"insight_engine/pkg/core/ingest"
	"insight_engine/pkg/core/pipeline"
	"insight_engine/pkg/core/schema"
)

// Handler serves POST /api/analyze with a CSV body (or text/html for an
// HTML table export) and responds with the pipeline result as JSON.
type Handler struct {
	orchestrator *pipeline.Orchestrator
	log          *slog.Logger
}

func NewHandler(o *pipeline.Orchestrator, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{orchestrator: o, log: log}
}

type errorResponse struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing_fields,omitempty"`
}

func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	table, err := readTable(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err, nil)
		return
	}

	res, err := h.orchestrator.Run(r.Context(), table)
	if err != nil {
		var se *schema.SchemaError
		if errors.As(err, &se) {
			missing := make([]string, len(se.Missing))
			for i, f := range se.Missing {
				missing[i] = string(f)
			}
			writeError(w, http.StatusUnprocessableEntity, err, missing)
			return
		}
		h.log.Error("analysis failed", "error", err)
		writeError(w, http.StatusInternalServerError, err, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	if err := enc.Encode(res); err != nil {
		h.log.Error("failed to encode response", "error", err)
	}
}

func readTable(r *http.Request) (clean.Table, error) {
	if r.Header.Get("Content-Type") == "text/html" {
		return ingest.ReadHTMLTable(r.Body)
	}
	tbl, err := ingest.ReadCSV(r.Body)
	if err != nil {
		return tbl, fmt.Errorf("could not parse request body as CSV: %w", err)
	}
	return tbl, nil
}

func writeError(w http.ResponseWriter, status int, err error, missing []string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: err.Error(), Missing: missing})
}
