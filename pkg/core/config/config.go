// Package config loads the run configuration. Every tunable the core
// consumes is an explicit field here; API keys are the only thing read
// from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"insight_engine/pkg/core/insight"
	"insight_engine/pkg/core/schema"
	"insight_engine/pkg/core/trend"
	"insight_engine/pkg/core/utils"
)

// Config is the file-level configuration shape. YAML is the primary
// format; .hjson is accepted for hand-edited files.
type Config struct {
	// Provider selects the external insight provider ("gemini",
	// "openai"). Empty means rule-based only.
	Provider      string `yaml:"provider" json:"provider"`
	ProviderModel string `yaml:"provider_model" json:"provider_model"`
	// ProviderTimeoutSeconds bounds the external call; on expiry the
	// rule-based engine answers instead.
	ProviderTimeoutSeconds int `yaml:"provider_timeout_seconds" json:"provider_timeout_seconds"`

	SignificanceThreshold float64 `yaml:"significance_threshold" json:"significance_threshold"`
	NumericTolerance      float64 `yaml:"numeric_tolerance" json:"numeric_tolerance"`
	MaxFindings           int     `yaml:"max_findings" json:"max_findings"`
	MaxRecommendations    int     `yaml:"max_recommendations" json:"max_recommendations"`

	// ExtraAliases extends the built-in column alias table, keyed by
	// canonical field name.
	ExtraAliases map[string][]string `yaml:"extra_aliases" json:"extra_aliases"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		ProviderTimeoutSeconds: 30,
		SignificanceThreshold:  10,
		NumericTolerance:       0.01,
		MaxFindings:            5,
		MaxRecommendations:     5,
	}
}

// Load reads a config file, filling unset numeric fields from Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if strings.HasSuffix(strings.ToLower(path), ".hjson") {
		err = utils.ParseHJSONToStruct(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	d := Default()
	if c.ProviderTimeoutSeconds <= 0 {
		c.ProviderTimeoutSeconds = d.ProviderTimeoutSeconds
	}
	if c.SignificanceThreshold <= 0 {
		c.SignificanceThreshold = d.SignificanceThreshold
	}
	if c.NumericTolerance <= 0 {
		c.NumericTolerance = d.NumericTolerance
	}
	if c.MaxFindings <= 0 {
		c.MaxFindings = d.MaxFindings
	}
	if c.MaxRecommendations <= 0 {
		c.MaxRecommendations = d.MaxRecommendations
	}
	return c
}

// ProviderTimeout returns the timeout as a duration.
func (c Config) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutSeconds) * time.Second
}

// TrendConfig derives the trend analyzer configuration.
func (c Config) TrendConfig() trend.Config {
	return trend.Config{SignificanceThreshold: c.SignificanceThreshold}
}

// InsightConfig derives the insight engine configuration.
func (c Config) InsightConfig() insight.Config {
	return insight.Config{
		MaxFindings:        c.MaxFindings,
		MaxRecommendations: c.MaxRecommendations,
		NumericTolerance:   c.NumericTolerance,
	}
}

// Mapper builds the schema mapper with any configured alias extensions.
func (c Config) Mapper() *schema.Mapper {
	extra := make(map[schema.Field][]string, len(c.ExtraAliases))
	for name, aliases := range c.ExtraAliases {
		extra[schema.Field(name)] = aliases
	}
	return schema.NewMapper(extra)
}
