package analyze

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"insight_engine/pkg/core/config"
	"insight_engine/pkg/core/pipeline"
)

func newTestHandler() *Handler {
	return NewHandler(pipeline.New(config.Default(), nil, nil), nil)
}

func TestHandleAnalyzeCSV(t *testing.T) {
	body := "date,impressions,clicks,spend,conversions,revenue\n" +
		"2024-03-01,125000,1250,450.00,45,2250.00\n"
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	rec := httptest.NewRecorder()

	newTestHandler().HandleAnalyze(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var res struct {
		ReportID  string `json:"report_id"`
		Aggregate struct {
			ROAS float64 `json:"roas"`
		} `json:"aggregate"`
		Report struct {
			Source string `json:"source"`
		} `json:"report"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("bad response JSON: %v", err)
	}
	if res.ReportID == "" || res.Report.Source != "rule_based" {
		t.Errorf("response = %+v", res)
	}
	if res.Aggregate.ROAS != 5.0 {
		t.Errorf("roas = %v, want 5.0", res.Aggregate.ROAS)
	}
}

func TestHandleAnalyzeSchemaError(t *testing.T) {
	body := "date,cost\n2024-03-01,450.00\n"
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	rec := httptest.NewRecorder()

	newTestHandler().HandleAnalyze(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var res struct {
		Missing []string `json:"missing_fields"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Missing) != 2 {
		t.Errorf("missing_fields = %v, want impressions and clicks", res.Missing)
	}
}

func TestHandleAnalyzeMethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/analyze", nil)
	rec := httptest.NewRecorder()
	newTestHandler().HandleAnalyze(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
