// Package config loads plantagent's runtime configuration: defaults, then a
// TOML file, then environment variables (env wins).
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	LLM         LLMConfig         `toml:"llm"`
	Graph       GraphConfig       `toml:"graph"`
	Maintenance MaintenanceConfig `toml:"maintenance"`
	TimeSeries  TimeSeriesConfig  `toml:"time_series"`
	Timeouts    TimeoutsConfig    `toml:"timeouts"`
	Observer    ObserverConfig    `toml:"observer"`
}

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"` // openai-compatible providers only
}

type GraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

type MaintenanceConfig struct {
	MCPURL string `toml:"mcp_url"`
}

type TimeSeriesConfig struct {
	UseReal bool   `toml:"use_real"`
	MCPURL  string `toml:"mcp_url"`
}

// TimeoutsConfig mirrors plantagent.Timeouts in milliseconds, the
// TOML-friendly unit. A zero field means "use the package default".
type TimeoutsConfig struct {
	GraphMs       int64 `toml:"graph_ms"`
	MaintenanceMs int64 `toml:"maintenance_ms"`
	TimeSeriesMs  int64 `toml:"time_series_ms"`
	SynthesizerMs int64 `toml:"synthesizer_ms"`
	WorkflowMs    int64 `toml:"workflow_ms"`
}

// duration returns ms as a time.Duration, or def if ms is zero or negative.
func (t TimeoutsConfig) duration(ms int64, def time.Duration) time.Duration {
	if ms <= 0 {
		return def
	}
	return time.Duration(ms) * time.Millisecond
}

type ObserverConfig struct {
	Enabled        bool   `toml:"enabled"`
	OTLPEndpoint   string `toml:"otlp_endpoint"`
	MetricsEnabled bool   `toml:"metrics_enabled"`
}

// Default returns a Config with every field set to its out-of-the-box
// value: no credentials, real backends disabled.
func Default() Config {
	return Config{
		LLM: LLMConfig{Provider: "anthropic", Model: "claude-sonnet-4-5"},
		Graph: GraphConfig{
			URI:      "bolt://localhost:7687",
			Database: "neo4j",
		},
		TimeSeries: TimeSeriesConfig{UseReal: false},
	}
}

// Load reads config: defaults -> TOML file -> env vars (env wins).
func Load(path string) Config {
	cfg := Default()

	if path == "" {
		path = "plantagent.toml"
	}

	if data, err := os.ReadFile(path); err == nil {
		_ = toml.Unmarshal(data, &cfg)
	}

	if v := os.Getenv("PLANTAGENT_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("PLANTAGENT_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("PLANTAGENT_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("PLANTAGENT_GRAPH_URI"); v != "" {
		cfg.Graph.URI = v
	}
	if v := os.Getenv("PLANTAGENT_GRAPH_USER"); v != "" {
		cfg.Graph.User = v
	}
	if v := os.Getenv("PLANTAGENT_GRAPH_PASSWORD"); v != "" {
		cfg.Graph.Password = v
	}
	if v := os.Getenv("PLANTAGENT_MAINTENANCE_MCP_URL"); v != "" {
		cfg.Maintenance.MCPURL = v
	}
	if v := os.Getenv("PLANTAGENT_TIME_SERIES_MCP_URL"); v != "" {
		cfg.TimeSeries.MCPURL = v
	}
	if os.Getenv("PLANTAGENT_TIME_SERIES_USE_REAL") == "true" || os.Getenv("PLANTAGENT_TIME_SERIES_USE_REAL") == "1" {
		cfg.TimeSeries.UseReal = true
	}
	if os.Getenv("PLANTAGENT_OBSERVER_ENABLED") == "true" || os.Getenv("PLANTAGENT_OBSERVER_ENABLED") == "1" {
		cfg.Observer.Enabled = true
	}
	if v := os.Getenv("PLANTAGENT_OTLP_ENDPOINT"); v != "" {
		cfg.Observer.OTLPEndpoint = v
	}

	return cfg
}

// Durations returns the configured node/workflow timeouts, substituting
// defGraph..defWorkflow for any field left unset in the TOML/env layer.
func (c Config) Durations(defGraph, defMaintenance, defTimeSeries, defSynthesizer, defWorkflow time.Duration) (graph, maintenance, timeSeries, synthesizer, workflow time.Duration) {
	t := c.Timeouts
	return t.duration(t.GraphMs, defGraph),
		t.duration(t.MaintenanceMs, defMaintenance),
		t.duration(t.TimeSeriesMs, defTimeSeries),
		t.duration(t.SynthesizerMs, defSynthesizer),
		t.duration(t.WorkflowMs, defWorkflow)
}
