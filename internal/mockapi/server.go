// Package mockapi serves a canned version of the analysis service for
// local runs and tests.
package mockapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nforb26-art/tradeanalyser/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// Fault replaces the analyze response for one crypto id.
type Fault struct {
	Status      int
	ContentType string
	Body        string
}

type searchResult struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank int    `json:"market_cap_rank"`
}

type trendingCoin struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank int    `json:"market_cap_rank"`
}

type analyzeRequest struct {
	CryptoID string `json:"crypto_id"`
	Symbol   string `json:"symbol"`
}

type Server struct {
	echo    *echo.Echo
	catalog *Catalog
	faults  map[string]Fault
	latency time.Duration
	log     *logger.Logger
}

type Option func(*Server)

func WithCatalog(assets []Asset) Option {
	return func(s *Server) { s.catalog = NewCatalog(assets) }
}

// WithLatency delays every API response by d.
func WithLatency(d time.Duration) Option {
	return func(s *Server) { s.latency = d }
}

func WithFault(cryptoID string, f Fault) Option {
	return func(s *Server) { s.faults[cryptoID] = f }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

func New(opts ...Option) *Server {
	s := &Server{
		catalog: NewCatalog(DefaultCatalog()),
		faults:  map[string]Fault{},
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(s.requestLogging)

	g := e.Group("/api", s.delay)
	g.GET("/search/*", s.search)
	g.POST("/analyze", s.analyze)
	g.GET("/trending", s.trending)
	g.GET("/health", s.health)

	s.echo = e
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Start listens on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("mock api listening", logger.String("addr", addr))
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("mock api: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}

func (s *Server) requestLogging(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		s.log.Debug("mock api request",
			logger.String("method", c.Request().Method),
			logger.String("uri", c.Request().RequestURI),
			logger.Int("status", c.Response().Status),
			logger.Duration("latency", time.Since(start)),
		)
		return err
	}
}

func (s *Server) delay(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if s.latency > 0 {
			select {
			case <-time.After(s.latency):
			case <-c.Request().Context().Done():
				return c.Request().Context().Err()
			}
		}
		return next(c)
	}
}

func detail(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"detail": msg})
}

func (s *Server) search(c echo.Context) error {
	query, err := url.PathUnescape(c.Param("*"))
	if err != nil {
		return detail(c, http.StatusBadRequest, "Invalid query")
	}

	results := []searchResult{}
	for _, a := range s.catalog.Search(query) {
		results = append(results, searchResult{ID: a.ID, Name: a.Name, Symbol: a.Symbol, MarketCapRank: a.Rank})
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "results": results})
}

func (s *Server) analyze(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{{
				"loc":  []string{"body"},
				"msg":  "invalid request body",
				"type": "value_error",
			}},
		})
	}

	query := strings.TrimSpace(req.CryptoID)
	if query == "" {
		query = strings.TrimSpace(req.Symbol)
	}
	if query == "" {
		return detail(c, http.StatusBadRequest, "Error: Please provide either crypto_id or symbol")
	}

	if f, ok := s.faults[query]; ok {
		ct := f.ContentType
		if ct == "" {
			ct = echo.MIMEApplicationJSON
		}
		return c.Blob(f.Status, ct, []byte(f.Body))
	}

	matches := s.catalog.Search(query)
	if len(matches) == 0 {
		return detail(c, http.StatusNotFound,
			fmt.Sprintf("No results found for '%s'. Try: BTC, ETH, Bitcoin, Ethereum", query))
	}
	return c.JSON(http.StatusOK, Analyze(matches[0], query))
}

func (s *Server) trending(c echo.Context) error {
	coins := []trendingCoin{}
	for _, a := range s.catalog.Top(7) {
		coins = append(coins, trendingCoin{ID: a.ID, Name: a.Name, Symbol: a.Symbol, MarketCapRank: a.Rank})
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "trending": coins})
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "healthy",
		"api_keys_configured": map[string]bool{
			"gemini":    true,
			"groq":      true,
			"replicate": false,
			"binance":   true,
		},
		"market_data_sources": []string{"mock"},
		"ai_models_available": 2,
		"news_sources":        []string{},
		"total_models":        3,
		"total_news_sources":  0,
	})
}
