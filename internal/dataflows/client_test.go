package dataflows

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/nforb26-art/tradeanalyser/internal/models"
)

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *recordingObserver) ObserveRequest(endpoint string, status int, elapsed time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, endpoint)
}

func TestClientSearchEscapesQuery(t *testing.T) {
	var gotPath, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"success":true,"results":[{"id":"bitcoin","name":"Bitcoin","symbol":"BTC","market_cap_rank":1}]}`)
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	c := NewClient(srv.URL+"/", WithObserver(obs))
	results, err := c.Search(context.Background(), "BTC/USDT")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if gotPath != "/api/search/BTC%2FUSDT" {
		t.Errorf("path = %q, want %q", gotPath, "/api/search/BTC%2FUSDT")
	}
	if gotRequestID == "" {
		t.Error("X-Request-ID header not set")
	}
	if len(results) != 1 || results[0].ID != "bitcoin" {
		t.Fatalf("results = %+v", results)
	}
	if results[0].MarketCapRank == nil || *results[0].MarketCapRank != 1 {
		t.Errorf("market cap rank = %v, want 1", results[0].MarketCapRank)
	}
	if len(obs.calls) != 1 || obs.calls[0] != EndpointSearch {
		t.Errorf("observer calls = %v", obs.calls)
	}
}

func TestClientSearchFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
		malformed  bool
	}{
		{"detail string", http.StatusNotFound, `{"detail":"Cryptocurrency not found"}`, "Cryptocurrency not found", false},
		{"success false on 200", http.StatusOK, `{"success":false,"error":"rate limited"}`, "rate limited", false},
		{"missing success flag", http.StatusOK, `{"results":[]}`, "", false},
		{"unparseable 200", http.StatusOK, `not json`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).Search(context.Background(), "x")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *APIError", err)
			}
			if apiErr.Detail != tt.wantDetail {
				t.Errorf("Detail = %q, want %q", apiErr.Detail, tt.wantDetail)
			}
			if apiErr.Malformed != tt.malformed {
				t.Errorf("Malformed = %v, want %v", apiErr.Malformed, tt.malformed)
			}
		})
	}
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, WithTimeout(time.Second)).Search(context.Background(), "btc")
	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("error = %v, want *TransportError", err)
	}
	if tErr.Endpoint != EndpointSearch {
		t.Errorf("Endpoint = %q, want %q", tErr.Endpoint, EndpointSearch)
	}
}

func TestClientAnalyzeSendsPayload(t *testing.T) {
	var got models.AnalyzePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/analyze" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		io.WriteString(w, `{"success":true,"pair":"BTC","current_price":"67,000.00","change_24h":"-1.20%"}`)
	}))
	defer srv.Close()

	req := models.NewAnalysisRequest("bitcoin", "BTC")
	result, err := NewClient(srv.URL).Analyze(context.Background(), req.Payload())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got.CryptoID != "bitcoin" || got.Symbol != "BTC" {
		t.Errorf("payload = %+v", got)
	}
	if result.Pair != "BTC" || result.Direction != models.DirectionDown {
		t.Errorf("result = %+v", result)
	}
	if result.Levels.Entry != models.Placeholder {
		t.Errorf("Entry = %q, want placeholder", result.Levels.Entry)
	}
}

func TestClientAnalyzeNonObjectBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[1,2,3]`)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Analyze(context.Background(), models.AnalyzePayload{CryptoID: "bitcoin"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || !apiErr.Malformed {
		t.Fatalf("error = %v, want malformed *APIError", err)
	}
}

func TestClientTrendingAndHealth(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/trending", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"success":true,"trending":[{"id":"solana","name":"Solana","symbol":"SOL","market_cap_rank":5}]}`)
	})
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status":"healthy","api_keys_configured":{"gemini":true},"total_models":3}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL)
	coins, err := c.Trending(context.Background())
	if err != nil {
		t.Fatalf("Trending: %v", err)
	}
	if len(coins) != 1 || coins[0].Symbol != "SOL" {
		t.Errorf("coins = %+v", coins)
	}

	health, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Status != "healthy" || !health.APIKeysConfigured["gemini"] || health.TotalModels != 3 {
		t.Errorf("health = %+v", health)
	}
}
