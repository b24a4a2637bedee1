package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.LLM.Provider != "anthropic" {
		t.Errorf("expected anthropic, got %s", cfg.LLM.Provider)
	}
	if cfg.Graph.Database != "neo4j" {
		t.Errorf("expected neo4j, got %s", cfg.Graph.Database)
	}
	if cfg.TimeSeries.UseReal {
		t.Error("expected time-series UseReal to default false")
	}
}

func TestLoadFromTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.toml")
	os.WriteFile(path, []byte(`
[graph]
uri = "bolt://graph.internal:7687"
user = "neo4j"

[time_series]
use_real = true
`), 0644)

	cfg := Load(path)
	if cfg.Graph.URI != "bolt://graph.internal:7687" {
		t.Errorf("expected bolt://graph.internal:7687, got %s", cfg.Graph.URI)
	}
	if !cfg.TimeSeries.UseReal {
		t.Error("expected UseReal true from TOML")
	}
	// Defaults preserved for untouched sections
	if cfg.LLM.Provider != "anthropic" {
		t.Errorf("default should be preserved, got %s", cfg.LLM.Provider)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("PLANTAGENT_LLM_API_KEY", "env-key")
	t.Setenv("PLANTAGENT_GRAPH_URI", "bolt://env-graph:7687")

	cfg := Load("/nonexistent/path.toml")
	if cfg.LLM.APIKey != "env-key" {
		t.Errorf("expected env-key, got %s", cfg.LLM.APIKey)
	}
	if cfg.Graph.URI != "bolt://env-graph:7687" {
		t.Errorf("expected bolt://env-graph:7687, got %s", cfg.Graph.URI)
	}
}

func TestDurationsFallsBackToDefaults(t *testing.T) {
	cfg := Default()
	g, m, ts, s, w := cfg.Durations(10*time.Second, 15*time.Second, 10*time.Second, 20*time.Second, 45*time.Second)
	if g != 10*time.Second || m != 15*time.Second || ts != 10*time.Second || s != 20*time.Second || w != 45*time.Second {
		t.Errorf("Durations() = %v %v %v %v %v, want defaults", g, m, ts, s, w)
	}
}

func TestDurationsUsesConfiguredValue(t *testing.T) {
	cfg := Default()
	cfg.Timeouts.GraphMs = 5000
	cfg.Timeouts.WorkflowMs = 30000

	g, _, _, _, w := cfg.Durations(10*time.Second, 15*time.Second, 10*time.Second, 20*time.Second, 45*time.Second)
	if g != 5*time.Second {
		t.Errorf("graph timeout = %v, want 5s", g)
	}
	if w != 30*time.Second {
		t.Errorf("workflow timeout = %v, want 30s", w)
	}
}
