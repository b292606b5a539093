package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeTemp(t, "engine.yaml", `
provider: gemini
provider_timeout_seconds: 10
significance_threshold: 15
extra_aliases:
  spend:
    - inversion
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider != "gemini" {
		t.Errorf("Provider = %q", cfg.Provider)
	}
	if cfg.SignificanceThreshold != 15 {
		t.Errorf("SignificanceThreshold = %v", cfg.SignificanceThreshold)
	}
	// Unset fields fall back to defaults.
	if cfg.NumericTolerance != 0.01 || cfg.MaxFindings != 5 {
		t.Errorf("defaults not applied: %+v", cfg)
	}

	m, err := cfg.Mapper().Resolve([]string{"impressions", "clicks", "inversion total"})
	if err != nil {
		t.Fatalf("extra alias not honored: %v", err)
	}
	if m["spend"] != "inversion total" {
		t.Errorf("spend = %q", m["spend"])
	}
}

func TestLoadHJSON(t *testing.T) {
	path := writeTemp(t, "engine.hjson", `{
  # comments are fine in hjson
  provider: openai
  numeric_tolerance: 0.02
}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Provider != "openai" || cfg.NumericTolerance != 0.02 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.SignificanceThreshold != 10 {
		t.Errorf("default significance threshold = %v, want 10", cfg.SignificanceThreshold)
	}
	if cfg.NumericTolerance != 0.01 {
		t.Errorf("default numeric tolerance = %v, want 0.01", cfg.NumericTolerance)
	}
}
