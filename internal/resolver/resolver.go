// Package resolver turns free-text queries into asset identifiers using the
// search endpoint. The first result of a lookup is always the best match.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nforb26-art/tradeanalyser/internal/dataflows"
	"github.com/nforb26-art/tradeanalyser/internal/logger"
	"github.com/nforb26-art/tradeanalyser/internal/metrics"
	"github.com/nforb26-art/tradeanalyser/internal/models"
)

const (
	EmptyQueryMessage = "Please enter a trading pair (e.g., BTC/USDT or BTC)"
	NoSuggestions     = `No results found - try "BTC", "ETH", "Bitcoin"`

	unknownError = "Unknown error"

	modeIncremental = "incremental"
	modeSubmit      = "submit"
)

// Searcher is the lookup the resolver depends on.
type Searcher interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

type Resolver struct {
	searcher Searcher
	baseURL  string
	metrics  *metrics.Recorder
	log      *logger.Logger
}

type Option func(*Resolver)

func WithMetrics(m *metrics.Recorder) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.log = l
		}
	}
}

// New creates a resolver. baseURL only appears in network error messages.
func New(searcher Searcher, baseURL string, opts ...Option) *Resolver {
	r := &Resolver{searcher: searcher, baseURL: baseURL, log: logger.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Search is the incremental lookup behind the suggestion list. An empty
// query makes no call and returns nil, nil: the list should be cleared.
func (r *Resolver) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, nil
	}

	results, err := r.searcher.Search(ctx, q)
	if err != nil {
		r.metrics.RecordLookup(modeIncremental, metrics.OutcomeError)
		return nil, r.mapError(ctx, err, "Search failed: %s")
	}
	if len(results) == 0 {
		r.metrics.RecordLookup(modeIncremental, metrics.OutcomeEmpty)
		return nil, models.NewError(models.NotFound, NoSuggestions)
	}

	r.metrics.RecordLookup(modeIncremental, metrics.OutcomeResults)
	return results, nil
}

// Resolve picks the best match for an explicit submit.
func (r *Resolver) Resolve(ctx context.Context, query string) (models.SearchResult, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return models.SearchResult{}, models.NewError(models.ValidationFailure, EmptyQueryMessage)
	}

	results, err := r.searcher.Search(ctx, q)
	if err != nil {
		r.metrics.RecordLookup(modeSubmit, metrics.OutcomeError)
		return models.SearchResult{}, r.mapError(ctx, err, "Pair not found: %s")
	}
	if len(results) == 0 {
		r.metrics.RecordLookup(modeSubmit, metrics.OutcomeEmpty)
		return models.SearchResult{}, models.NewError(models.NotFound,
			fmt.Sprintf(`No results found for "%s". Try BTC, ETH, or SOL.`, q))
	}

	r.metrics.RecordLookup(modeSubmit, metrics.OutcomeResults)
	best := results[0]
	r.log.Debug("resolved query",
		logger.String("query", q),
		logger.String("crypto_id", best.ID),
		logger.Int("candidates", len(results)),
	)
	return best, nil
}

// mapError converts a lookup failure into an ErrorState. Cancellation is
// returned as is so callers can drop it silently.
func (r *Resolver) mapError(ctx context.Context, err error, format string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var apiErr *dataflows.APIError
	if errors.As(err, &apiErr) {
		return models.WrapError(models.NotFound, fmt.Sprintf(format, apiErr.DetailOr(unknownError)), err)
	}

	var tErr *dataflows.TransportError
	if errors.As(err, &tErr) {
		return models.WrapError(models.NetworkFailure, dataflows.NetworkMessage(err, r.baseURL), err)
	}
	return models.WrapError(models.NotFound, fmt.Sprintf(format, err.Error()), err)
}
