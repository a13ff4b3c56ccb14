package analyzer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/nforb26-art/tradeanalyser/internal/dataflows"
	"github.com/nforb26-art/tradeanalyser/internal/models"
)

func serve(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func errorState(t *testing.T, err error) *models.ErrorState {
	t.Helper()
	var es *models.ErrorState
	if !errors.As(err, &es) {
		t.Fatalf("error = %v, want *models.ErrorState", err)
	}
	return es
}

func TestAnalyzeEmptyIDMakesNoCall(t *testing.T) {
	srv, calls := serve(t, http.StatusOK, `{"success":true}`)
	client := dataflows.NewClient(srv.URL)

	_, err := New(client, srv.URL, nil).Analyze(context.Background(), models.NewAnalysisRequest("", "BTC"))
	es := errorState(t, err)
	if es.Kind != models.ValidationFailure {
		t.Errorf("kind = %v, want %v", es.Kind, models.ValidationFailure)
	}
	if !strings.Contains(es.Message, "crypto_id is required") {
		t.Errorf("message = %q", es.Message)
	}
	if calls.Load() != 0 {
		t.Errorf("calls = %d, want 0", calls.Load())
	}
}

func TestAnalyzeOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		kind    models.ErrorKind
		message string
	}{
		{"success false overrides 200", http.StatusOK, `{"success":false,"error":"X"}`, models.ServerFailure, "Analysis failed: X"},
		{"missing success flag", http.StatusOK, `{"pair":"BTC"}`, models.ServerFailure, "Analysis failed: Unknown error occurred"},
		{"detail before error", http.StatusNotFound, `{"detail":"Cryptocurrency not found","error":"ignored"}`, models.ServerFailure, "Analysis failed: Cryptocurrency not found"},
		{"fastapi validation list", http.StatusUnprocessableEntity, `{"detail":[{"msg":"field required"}]}`, models.ServerFailure, "Analysis failed: field required"},
		{"html gateway page", http.StatusBadGateway, `<html><title>Bad Gateway</title></html>`, models.ServerFailure, "Analysis failed: Bad Gateway"},
		{"no message", http.StatusInternalServerError, `{}`, models.ServerFailure, "Analysis failed: Unknown error occurred"},
		{"malformed 200", http.StatusOK, `{"success":true,`, models.ServerFailure, "Analysis failed: malformed response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls := serve(t, tt.status, tt.body)
			client := dataflows.NewClient(srv.URL)

			_, err := New(client, srv.URL, nil).Analyze(context.Background(), models.NewAnalysisRequest("bitcoin", "BTC"))
			es := errorState(t, err)
			if es.Kind != tt.kind || es.Message != tt.message {
				t.Errorf("error = {%v %q}, want {%v %q}", es.Kind, es.Message, tt.kind, tt.message)
			}
			if calls.Load() != 1 {
				t.Errorf("calls = %d, want exactly 1", calls.Load())
			}
		})
	}
}

func TestAnalyzeSuccess(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, `{"success":true,"pair":"BTC","change_24h":"1.5%","sentiment":{"models":{"gemini":{"signal":"BUY"}}}}`)
	client := dataflows.NewClient(srv.URL)

	result, err := New(client, srv.URL, nil).Analyze(context.Background(), models.NewAnalysisRequest("bitcoin", "BTC"))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.Pair != "BTC" || result.CryptoID != "bitcoin" {
		t.Errorf("result = %+v", result)
	}
	if len(result.Sentiment.Models) != 1 || result.Sentiment.Models[0].Signal != "BUY" {
		t.Errorf("models = %+v", result.Sentiment.Models)
	}
}

func TestAnalyzeNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := New(dataflows.NewClient(base), base, nil).Analyze(context.Background(), models.NewAnalysisRequest("bitcoin", "BTC"))
	es := errorState(t, err)
	if es.Kind != models.NetworkFailure {
		t.Fatalf("kind = %v, want %v", es.Kind, models.NetworkFailure)
	}
	if !strings.HasPrefix(es.Message, "Network error: ") || !strings.HasSuffix(es.Message, "API is available at "+base) {
		t.Errorf("message = %q", es.Message)
	}
}
