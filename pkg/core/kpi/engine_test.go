package kpi

import (
	"math"
	"reflect"
	"testing"

	"insight_engine/pkg/core/clean"
)

func TestComputeReferenceRow(t *testing.T) {
	recs := []clean.Record{
		{Impressions: 125000, Clicks: 1250, Spend: 450.00, Conversions: 45, Revenue: 2250.00},
	}
	rows, agg := Compute(recs)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}

	r := rows[0]
	checks := []struct {
		name string
		m    Metric
		want float64
	}{
		{"ctr", r.CTR, 1.0},
		{"cpc", r.CPC, 0.36},
		{"cpm", r.CPM, 3.6},
		{"conversion_rate", r.ConversionRate, 3.6},
		{"roas", r.ROAS, 5.0},
	}
	for _, c := range checks {
		v, ok := c.m.Value()
		if !ok {
			t.Errorf("%s: undefined, want %v", c.name, c.want)
			continue
		}
		if math.Abs(v-c.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", c.name, v, c.want)
		}
	}

	// With one record the aggregate ratios equal the row ratios.
	if v, _ := agg.ROAS.Value(); math.Abs(v-5.0) > 1e-9 {
		t.Errorf("aggregate roas = %v, want 5.0", v)
	}
}

func TestComputeZeroDenominators(t *testing.T) {
	recs := []clean.Record{
		{Impressions: 1000, Clicks: 0, Spend: 10},
	}
	rows, _ := Compute(recs)
	r := rows[0]

	if r.CPC.IsDefined() {
		t.Error("cpc with zero clicks must be undefined")
	}
	if r.ConversionRate.IsDefined() {
		t.Error("conversion_rate with zero clicks must be undefined")
	}
	// CTR is a true zero here, not undefined: impressions are positive.
	if v, ok := r.CTR.Value(); !ok || v != 0 {
		t.Errorf("ctr = %v (defined=%v), want defined 0", v, ok)
	}
	// Spend is positive, so ROAS is a true zero as well.
	if v, ok := r.ROAS.Value(); !ok || v != 0 {
		t.Errorf("roas = %v (defined=%v), want defined 0", v, ok)
	}
}

func TestAggregateFromTotalsNotMeanOfRatios(t *testing.T) {
	// Per-row ROAS values are 10 and 1; their mean is 5.5. The correct
	// aggregate is total revenue over total spend.
	recs := []clean.Record{
		{Impressions: 100, Clicks: 10, Spend: 10, Revenue: 100},
		{Impressions: 100, Clicks: 10, Spend: 1000, Revenue: 1000},
	}
	_, agg := Compute(recs)

	want := 1100.0 / 1010.0
	if v, ok := agg.ROAS.Value(); !ok || math.Abs(v-want) > 1e-12 {
		t.Errorf("aggregate roas = %v, want %v", v, want)
	}
}

func TestComputeIdempotent(t *testing.T) {
	recs := []clean.Record{
		{Impressions: 5000, Clicks: 40, Spend: 22.5, Conversions: 3, Revenue: 120},
		{Impressions: 8000, Clicks: 0, Spend: 0, Conversions: 0, Revenue: 0},
	}
	rows1, agg1 := Compute(recs)
	rows2, agg2 := Compute(recs)
	if !reflect.DeepEqual(rows1, rows2) || !reflect.DeepEqual(agg1, agg2) {
		t.Error("Compute is not deterministic for identical input")
	}
}

func TestMetricJSON(t *testing.T) {
	if got := Defined(3.6).String(); got != "3.6000" {
		t.Errorf("String() = %q", got)
	}
	b, err := Undefined.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"undefined"` {
		t.Errorf("undefined marshals to %s", b)
	}

	var m Metric
	if err := m.UnmarshalJSON([]byte(`"undefined"`)); err != nil {
		t.Fatal(err)
	}
	if m.IsDefined() {
		t.Error("round-tripped undefined became defined")
	}
	if err := m.UnmarshalJSON([]byte(`2.5`)); err != nil {
		t.Fatal(err)
	}
	if v, ok := m.Value(); !ok || v != 2.5 {
		t.Errorf("round-tripped 2.5 = %v (defined=%v)", v, ok)
	}
}

func TestDefinedRejectsNonFinite(t *testing.T) {
	if Defined(math.NaN()).IsDefined() || Defined(math.Inf(1)).IsDefined() {
		t.Error("NaN/Inf must collapse to Undefined")
	}
}
