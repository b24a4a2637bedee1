// Binary plantagent runs the multi-agent orchestration core against
// questions read one-per-line from stdin, printing each RunResult as JSON
// to stdout.
//
// Configuration is read from plantagent.toml (or PLANTAGENT_CONFIG) layered
// with PLANTAGENT_* environment variables; see internal/config.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	plantagent "github.com/plantagent/core"
	"github.com/plantagent/core/graph"
	"github.com/plantagent/core/intent"
	"github.com/plantagent/core/internal/config"
	"github.com/plantagent/core/maintenance"
	"github.com/plantagent/core/mcpclient"
	"github.com/plantagent/core/observer"
	"github.com/plantagent/core/provider/anthropic"
	"github.com/plantagent/core/provider/openaicompat"
	"github.com/plantagent/core/synth"
	"github.com/plantagent/core/timeseries"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := config.Load(os.Getenv("PLANTAGENT_CONFIG"))

	coord, shutdown, err := build(ctx, cfg)
	if err != nil {
		log.Fatalf("plantagent: %v", err)
	}
	defer shutdown(context.Background())

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}

		result, err := coord.Run(ctx, question, nil)
		if err != nil {
			log.Printf("plantagent: workflow failed: %v", err)
			continue
		}

		out, _ := json.Marshal(result)
		fmt.Println(string(out))
	}
}

// build wires the five agents from cfg and returns a ready Coordinator plus
// a shutdown func for anything holding a live connection (Neo4j driver,
// OTEL exporter).
func build(ctx context.Context, cfg config.Config) (*plantagent.Coordinator, func(context.Context) error, error) {
	shutdowns := []func(context.Context) error{}
	shutdown := func(ctx context.Context) error {
		var firstErr error
		for _, fn := range shutdowns {
			if err := fn(ctx); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	llm, err := buildProvider(cfg.LLM)
	if err != nil {
		return nil, shutdown, fmt.Errorf("llm provider: %w", err)
	}

	store, err := graph.NewNeo4jStore(ctx, cfg.Graph.URI, cfg.Graph.User, cfg.Graph.Password, cfg.Graph.Database)
	if err != nil {
		return nil, shutdown, fmt.Errorf("graph store: %w", err)
	}
	shutdowns = append(shutdowns, store.Close)

	var (
		intentNode plantagent.IntentClassifier = intent.New(llm)
		graphNode  plantagent.GraphAgent       = graph.NewAgent(store, llm)
		maintNode  plantagent.MaintenanceAgent = maintenance.NewAgent(newMaintenanceClient(cfg.Maintenance))
		tsNode     plantagent.TimeSeriesAgent  = timeseries.NewAgent(newTimeSeriesSource(cfg.TimeSeries))
		synthNode  plantagent.Synthesizer      = synth.NewAgent(llm)
	)

	opts := []plantagent.CoordinatorOption{
		plantagent.WithLogger(slog.Default()),
	}

	graphDur, maintDur, tsDur, synthDur, workflowDur := cfg.Durations(
		plantagent.DefaultTimeouts().Graph,
		plantagent.DefaultTimeouts().Maintenance,
		plantagent.DefaultTimeouts().TimeSeries,
		plantagent.DefaultTimeouts().Synthesizer,
		plantagent.DefaultTimeouts().Workflow,
	)
	opts = append(opts, plantagent.WithTimeouts(plantagent.Timeouts{
		Graph:       graphDur,
		Maintenance: maintDur,
		TimeSeries:  tsDur,
		Synthesizer: synthDur,
		Workflow:    workflowDur,
	}))

	if cfg.Observer.Enabled {
		otelShutdown, err := observer.Init(ctx)
		if err != nil {
			return nil, shutdown, fmt.Errorf("observer init: %w", err)
		}
		shutdowns = append(shutdowns, otelShutdown)
		opts = append(opts, plantagent.WithTracer(observer.NewTracer()))

		// Decorate each node with its own OTEL span, the per-node/per-tool
		// equivalent of the teacher's ObservedAgent/ObservedTool wrappers.
		intentNode = observer.WrapIntentClassifier(intentNode)
		graphNode = observer.WrapGraphAgent(graphNode)
		maintNode = observer.WrapMaintenanceAgent(maintNode)
		tsNode = observer.WrapTimeSeriesAgent(tsNode)
		synthNode = observer.WrapSynthesizer(synthNode)
	}
	if cfg.Observer.MetricsEnabled {
		opts = append(opts, plantagent.WithMetrics(observer.NewNodeMetrics()))
		go serveMetrics()
	}

	coord := plantagent.NewCoordinator(
		intentNode,
		graphNode,
		maintNode,
		tsNode,
		synthNode,
		opts...,
	)

	return coord, shutdown, nil
}

func buildProvider(cfg config.LLMConfig) (plantagent.Provider, error) {
	switch cfg.Provider {
	case "", "anthropic":
		return anthropic.New(anthropic.Config{APIKey: cfg.APIKey, Model: cfg.Model})
	default:
		return openaicompat.NewProvider(cfg.APIKey, cfg.Model, cfg.BaseURL, openaicompat.WithName(cfg.Provider)), nil
	}
}

// newMaintenanceClient returns nil when no URL is configured, which
// NewAgent treats as "disabled" (§6).
func newMaintenanceClient(cfg config.MaintenanceConfig) *mcpclient.Client {
	if cfg.MCPURL == "" {
		return nil
	}
	return mcpclient.New(cfg.MCPURL, &http.Client{Timeout: 30 * time.Second})
}

func newTimeSeriesSource(cfg config.TimeSeriesConfig) timeseries.Source {
	if !cfg.UseReal || cfg.MCPURL == "" {
		return timeseries.NewMockSource()
	}
	return timeseries.NewRemoteSource(mcpclient.New(cfg.MCPURL, &http.Client{Timeout: 30 * time.Second}))
}

func serveMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(":9090", mux); err != nil {
		log.Printf("plantagent: metrics server stopped: %v", err)
	}
}
