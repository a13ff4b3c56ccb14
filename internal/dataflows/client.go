package dataflows

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/nforb26-art/tradeanalyser/internal/logger"
	"github.com/nforb26-art/tradeanalyser/internal/models"
)

const (
	EndpointSearch   = "search"
	EndpointAnalyze  = "analyze"
	EndpointTrending = "trending"
	EndpointHealth   = "health"

	requestIDHeader = "X-Request-ID"
	defaultTimeout  = 30 * time.Second
)

// Observer receives one callback per completed request. status is zero when
// the request never produced a response.
type Observer interface {
	ObserveRequest(endpoint string, status int, elapsed time.Duration, err error)
}

// Client talks to the trade analysis service.
type Client struct {
	http     *resty.Client
	baseURL  string
	timeout  time.Duration
	log      *logger.Logger
	observer Observer
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithHTTPClient replaces the underlying transport, e.g. with an httptest client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = resty.NewWithClient(hc)
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// NewClient creates a client for the service rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: defaultTimeout,
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = resty.New()
	}

	c.http.SetBaseURL(c.baseURL)
	c.http.SetTimeout(c.timeout)
	c.http.SetHeader("Accept", "application/json")
	return c
}

// BaseURL is the service root requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type searchResponse struct {
	Results []models.SearchResult `json:"results"`
}

// Search looks up assets matching query. The query is path-escaped.
func (c *Client) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	req := c.http.R().SetPathParam("query", query)
	resp, err := c.do(ctx, EndpointSearch, req, http.MethodGet, "/api/search/{query}")
	if err != nil {
		return nil, err
	}

	body := resp.Body()
	if err := checkEnvelope(resp.StatusCode(), body); err != nil {
		return nil, err
	}

	var out searchResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode(), Malformed: true, Body: body}
	}
	return out.Results, nil
}

// Analyze requests the analysis for payload and normalizes the result.
func (c *Client) Analyze(ctx context.Context, payload models.AnalyzePayload) (*models.AnalysisResult, error) {
	req := c.http.R().
		SetHeader("Content-Type", "application/json").
		SetBody(payload)
	resp, err := c.do(ctx, EndpointAnalyze, req, http.MethodPost, "/api/analyze")
	if err != nil {
		return nil, err
	}

	body := resp.Body()
	if err := checkEnvelope(resp.StatusCode(), body); err != nil {
		return nil, err
	}

	result, err := NormalizeAnalysis(body)
	if err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode(), Malformed: true, Body: body}
	}
	return result, nil
}

type trendingResponse struct {
	Trending []models.TrendingCoin `json:"trending"`
}

func (c *Client) Trending(ctx context.Context) ([]models.TrendingCoin, error) {
	resp, err := c.do(ctx, EndpointTrending, c.http.R(), http.MethodGet, "/api/trending")
	if err != nil {
		return nil, err
	}

	body := resp.Body()
	if err := checkEnvelope(resp.StatusCode(), body); err != nil {
		return nil, err
	}

	var out trendingResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode(), Malformed: true, Body: body}
	}
	return out.Trending, nil
}

// Health reports the service status. The health body carries no success flag.
func (c *Client) Health(ctx context.Context) (*models.HealthStatus, error) {
	resp, err := c.do(ctx, EndpointHealth, c.http.R(), http.MethodGet, "/api/health")
	if err != nil {
		return nil, err
	}

	body := resp.Body()
	if !isSuccess(resp.StatusCode()) {
		return nil, newAPIError(resp.StatusCode(), body)
	}

	var out models.HealthStatus
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &APIError{StatusCode: resp.StatusCode(), Malformed: true, Body: body}
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, endpoint string, req *resty.Request, method, path string) (*resty.Response, error) {
	requestID := uuid.NewString()
	req.SetContext(ctx).SetHeader(requestIDHeader, requestID)

	start := time.Now()
	resp, err := req.Execute(method, path)
	elapsed := time.Since(start)

	status := 0
	if err == nil {
		status = resp.StatusCode()
	}
	if c.observer != nil {
		c.observer.ObserveRequest(endpoint, status, elapsed, err)
	}

	if err != nil {
		c.log.Debug("request failed",
			logger.String("request_id", requestID),
			logger.String("endpoint", endpoint),
			logger.Duration("latency", elapsed),
			logger.Error(err),
		)
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}

	c.log.Debug("request completed",
		logger.String("request_id", requestID),
		logger.String("endpoint", endpoint),
		logger.String("path", resp.Request.URL),
		logger.Int("status", status),
		logger.Duration("latency", elapsed),
	)
	return resp, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
