package schema

import (
	"errors"
	"testing"
)

func TestResolveExactAndAlias(t *testing.T) {
	headers := []string{"Date", "Campaign Name", "Impressions", "Click_Count", "Total Spend ($)", "Conversions", "Revenue"}

	m, err := Resolve(headers)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	cases := map[Field]string{
		FieldDate:        "Date",
		FieldCampaign:    "Campaign Name",
		FieldImpressions: "Impressions",
		FieldClicks:      "Click_Count",
		FieldSpend:       "Total Spend ($)",
		FieldConversions: "Conversions",
		FieldRevenue:     "Revenue",
	}
	for field, want := range cases {
		if got := m[field]; got != want {
			t.Errorf("%s: mapped to %q, want %q", field, got, want)
		}
	}
}

func TestResolveMissingRequired(t *testing.T) {
	// No impressions, no clicks. Spend resolves via "cost".
	_, err := Resolve([]string{"Date", "Campaign", "Cost", "Revenue"})
	if err == nil {
		t.Fatal("expected SchemaError, got nil")
	}

	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SchemaError, got %T", err)
	}
	if len(se.Missing) != 2 {
		t.Fatalf("Missing = %v, want exactly impressions and clicks", se.Missing)
	}
	if se.Missing[0] != FieldImpressions || se.Missing[1] != FieldClicks {
		t.Errorf("Missing = %v, want [impressions clicks]", se.Missing)
	}
}

func TestResolveOptionalAbsence(t *testing.T) {
	m, err := Resolve([]string{"impressions", "clicks", "spend"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	for _, f := range []Field{FieldDate, FieldCampaign, FieldConversions, FieldRevenue} {
		if m.Has(f) {
			t.Errorf("optional field %s should be unresolved", f)
		}
	}
}

func TestResolveDoesNotClaimDerivedColumns(t *testing.T) {
	// A precomputed CTR column must not be mistaken for clicks.
	m, err := Resolve([]string{"Impressions", "CTR", "Link Clicks", "Spend"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got := m[FieldClicks]; got != "Link Clicks" {
		t.Errorf("clicks mapped to %q, want %q", got, "Link Clicks")
	}
}

func TestResolveFirstMatchWins(t *testing.T) {
	// Two candidate spend columns.
	m, err := Resolve([]string{"impressions", "clicks", "Media Cost", "Spend Cap"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	// "spend" is declared before "cost" in the alias list, so "Spend Cap"
	// takes the field despite appearing later in the header row.
	if got := m[FieldSpend]; got != "Spend Cap" {
		t.Errorf("spend mapped to %q, want %q", got, "Spend Cap")
	}
}

func TestMapperExtraAliases(t *testing.T) {
	mp := NewMapper(map[Field][]string{FieldSpend: {"inversion"}})
	m, err := mp.Resolve([]string{"impressions", "clicks", "Inversion Total"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if got := m[FieldSpend]; got != "Inversion Total" {
		t.Errorf("spend mapped to %q, want %q", got, "Inversion Total")
	}
}
