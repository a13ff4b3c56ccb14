package cli

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nforb26-art/tradeanalyser/config"
	"github.com/nforb26-art/tradeanalyser/internal/analyzer"
	"github.com/nforb26-art/tradeanalyser/internal/cache"
	"github.com/nforb26-art/tradeanalyser/internal/dataflows"
	"github.com/nforb26-art/tradeanalyser/internal/logger"
	"github.com/nforb26-art/tradeanalyser/internal/metrics"
	"github.com/nforb26-art/tradeanalyser/internal/orchestrator"
	"github.com/nforb26-art/tradeanalyser/internal/resolver"
)

// Session holds the components built from one configuration.
type Session struct {
	Config   *config.Config
	Log      *logger.Logger
	Registry *prometheus.Registry
	Metrics  *metrics.Recorder
	Client   *dataflows.Client
	Resolver *resolver.Resolver
	Analyzer *analyzer.Requester
}

// NewSession wires the service client, resolver and analyzer for cfg.
func NewSession(cfg *config.Config) (*Session, error) {
	log, err := logger.New(&logger.Config{
		Level:  cfg.EffectiveLogLevel(),
		Format: cfg.LogFormat,
		Output: cfg.LogOutput,
	})
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	rec := metrics.New(reg)

	client := dataflows.NewClient(cfg.BackendURL,
		dataflows.WithTimeout(cfg.Timeout),
		dataflows.WithLogger(log),
		dataflows.WithObserver(rec),
	)

	var searcher resolver.Searcher = client
	if cfg.SearchCacheTTL > 0 {
		searcher = cache.NewSearchCache(client, cfg.SearchCacheTTL, log)
	}

	return &Session{
		Config:   cfg,
		Log:      log,
		Registry: reg,
		Metrics:  rec,
		Client:   client,
		Resolver: resolver.New(searcher, client.BaseURL(), resolver.WithMetrics(rec), resolver.WithLogger(log)),
		Analyzer: analyzer.New(client, client.BaseURL(), log),
	}, nil
}

// Controller builds an event loop that drives p.
func (s *Session) Controller(p orchestrator.Presenter) *orchestrator.Controller {
	return orchestrator.New(s.Resolver, s.Analyzer, p,
		orchestrator.WithDebounce(s.Config.Debounce),
		orchestrator.WithMetrics(s.Metrics),
		orchestrator.WithLogger(s.Log),
	)
}

// ServeMetrics blocks until ctx is done, exposing metrics when an address
// is configured.
func (s *Session) ServeMetrics(ctx context.Context) error {
	if s.Config.MetricsAddr == "" {
		<-ctx.Done()
		return nil
	}
	return metrics.Serve(ctx, s.Config.MetricsAddr, s.Registry, s.Log)
}

// runLoop runs ctrl until ctx ends, treating cancellation as a clean exit.
func runLoop(ctx context.Context, ctrl *orchestrator.Controller) error {
	if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
