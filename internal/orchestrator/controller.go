// Package orchestrator sequences keystrokes, lookups and analysis requests
// on a single event loop and pushes the outcome into a Presenter.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/nforb26-art/tradeanalyser/internal/debounce"
	"github.com/nforb26-art/tradeanalyser/internal/logger"
	"github.com/nforb26-art/tradeanalyser/internal/metrics"
	"github.com/nforb26-art/tradeanalyser/internal/models"
)

const eventBuffer = 64

type Resolver interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
	Resolve(ctx context.Context, query string) (models.SearchResult, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisResult, error)
}

// Controller owns the display state. Input, Submit and Select may be called
// from any goroutine; everything else happens inside Run.
type Controller struct {
	resolver  Resolver
	analyzer  Analyzer
	presenter Presenter
	debouncer *debounce.Debouncer
	metrics   *metrics.Recorder
	log       *logger.Logger

	events chan func()
	done   chan struct{}

	// loop state
	ctx           context.Context
	searchGen     uint64
	analyzeGen    uint64
	cancelSearch  context.CancelFunc
	cancelAnalyze context.CancelFunc
}

type Option func(*Controller)

func WithDebounce(window time.Duration) Option {
	return func(c *Controller) {
		c.debouncer.SetWindow(window)
	}
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

func New(resolver Resolver, analyzer Analyzer, presenter Presenter, opts ...Option) *Controller {
	c := &Controller{
		resolver:  resolver,
		analyzer:  analyzer,
		presenter: presenter,
		debouncer: debounce.New(debounce.DefaultWindow),
		log:       logger.Nop(),
		events:    make(chan func(), eventBuffer),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run processes events until ctx is cancelled. It must be called once.
func (c *Controller) Run(ctx context.Context) error {
	c.ctx = ctx
	defer func() {
		close(c.done)
		c.debouncer.Cancel()
		c.cancelInFlight()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-c.events:
			fn()
		}
	}
}

// Input records the current text of the search box. The lookup runs once
// the debounce window passes without further input.
func (c *Controller) Input(text string) {
	c.debouncer.Schedule(func() {
		c.post(func() { c.startSearch(text) })
	})
}

// Submit resolves text to its best match and analyzes it.
func (c *Controller) Submit(text string) {
	c.debouncer.Cancel()
	c.post(func() { c.startSubmit(text) })
}

// Select analyzes a result picked from the suggestion list.
func (c *Controller) Select(result models.SearchResult) {
	c.debouncer.Cancel()
	c.post(func() {
		gen := c.beginAnalysis()
		c.launchAnalysis(gen, models.RequestFromResult(result))
	})
}

// SetDebounce changes the window applied to later input.
func (c *Controller) SetDebounce(window time.Duration) {
	c.debouncer.SetWindow(window)
}

func (c *Controller) post(fn func()) {
	select {
	case c.events <- fn:
	case <-c.done:
	}
}

// async runs work off the loop and posts its completion back.
func (c *Controller) async(work func() func()) {
	go func() {
		complete := work()
		c.post(complete)
	}()
}

func (c *Controller) startSearch(text string) {
	c.searchGen++
	gen := c.searchGen
	c.stopSearch()

	ctx, cancel := context.WithCancel(c.ctx)
	c.cancelSearch = cancel
	c.async(func() func() {
		results, err := c.resolver.Search(ctx, text)
		return func() { c.finishSearch(gen, results, err) }
	})
}

func (c *Controller) finishSearch(gen uint64, results []models.SearchResult, err error) {
	if gen != c.searchGen {
		c.metrics.RecordStale("search")
		c.log.Debug("discarding stale search", logger.Uint64("generation", gen), logger.Uint64("current", c.searchGen))
		return
	}
	if isCancellation(err) {
		return
	}

	if err != nil {
		c.presenter.ClearSuggestions()
		c.showError(err)
		return
	}
	if results == nil {
		c.presenter.ClearSuggestions()
		return
	}
	c.presenter.ClearError()
	c.presenter.RenderSuggestions(results)
}

func (c *Controller) startSubmit(text string) {
	gen := c.beginAnalysis()

	ctx, cancel := context.WithCancel(c.ctx)
	c.cancelAnalyze = cancel
	c.async(func() func() {
		match, err := c.resolver.Resolve(ctx, text)
		if err != nil {
			return func() { c.finishAnalysis(gen, nil, err) }
		}
		return func() {
			if gen != c.analyzeGen {
				c.metrics.RecordStale("analyze")
				return
			}
			c.launchAnalysis(gen, models.RequestFromResult(match))
		}
	})
}

// beginAnalysis supersedes every outstanding lookup and analysis and
// resets the display for a new attempt.
func (c *Controller) beginAnalysis() uint64 {
	c.searchGen++
	c.analyzeGen++
	c.cancelInFlight()

	c.presenter.ClearSuggestions()
	c.presenter.ClearError()
	return c.analyzeGen
}

func (c *Controller) launchAnalysis(gen uint64, req models.AnalysisRequest) {
	if c.cancelAnalyze != nil {
		c.cancelAnalyze()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancelAnalyze = cancel

	c.log.Debug("requesting analysis",
		logger.String("crypto_id", req.CryptoID()),
		logger.String("symbol", req.Symbol()),
		logger.Uint64("generation", gen),
	)
	c.async(func() func() {
		result, err := c.analyzer.Analyze(ctx, req)
		return func() { c.finishAnalysis(gen, result, err) }
	})
}

func (c *Controller) finishAnalysis(gen uint64, result *models.AnalysisResult, err error) {
	if gen != c.analyzeGen {
		c.metrics.RecordStale("analyze")
		c.log.Debug("discarding stale analysis", logger.Uint64("generation", gen), logger.Uint64("current", c.analyzeGen))
		return
	}
	if isCancellation(err) {
		return
	}

	if err != nil {
		c.showError(err)
		return
	}
	c.presenter.RenderAnalysis(result)
	c.presenter.ScrollTo(models.RegionAnalysis)
}

func (c *Controller) showError(err error) {
	var es *models.ErrorState
	if !errors.As(err, &es) {
		es = models.WrapError(models.ServerFailure, err.Error(), err)
	}
	c.presenter.RenderError(es)
	c.presenter.ScrollTo(models.RegionError)
}

func (c *Controller) stopSearch() {
	if c.cancelSearch != nil {
		c.cancelSearch()
		c.cancelSearch = nil
	}
}

func (c *Controller) cancelInFlight() {
	c.stopSearch()
	if c.cancelAnalyze != nil {
		c.cancelAnalyze()
		c.cancelAnalyze = nil
	}
}

// isCancellation reports errors caused by our own context, as opposed to a
// transport timeout that was already mapped to an ErrorState.
func isCancellation(err error) bool {
	var es *models.ErrorState
	if errors.As(err, &es) {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
