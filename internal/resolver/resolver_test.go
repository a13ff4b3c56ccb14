package resolver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nforb26-art/tradeanalyser/internal/dataflows"
	"github.com/nforb26-art/tradeanalyser/internal/models"
)

type fakeSearcher struct {
	results []models.SearchResult
	err     error
	queries []string
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

func kindOf(t *testing.T, err error) *models.ErrorState {
	t.Helper()
	var es *models.ErrorState
	if !errors.As(err, &es) {
		t.Fatalf("error = %v, want *models.ErrorState", err)
	}
	return es
}

func TestSearchEmptyQueryMakesNoCall(t *testing.T) {
	f := &fakeSearcher{}
	r := New(f, "http://localhost")

	for _, q := range []string{"", "   ", "\t"} {
		results, err := r.Search(context.Background(), q)
		if results != nil || err != nil {
			t.Errorf("Search(%q) = %v, %v; want nil, nil", q, results, err)
		}
	}
	if len(f.queries) != 0 {
		t.Errorf("searcher called %d times, want 0", len(f.queries))
	}
}

func TestSearchOutcomes(t *testing.T) {
	t.Run("results keep order", func(t *testing.T) {
		f := &fakeSearcher{results: []models.SearchResult{{ID: "bitcoin"}, {ID: "bitcoin-cash"}}}
		results, err := New(f, "").Search(context.Background(), "  btc ")
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(results) != 2 || results[0].ID != "bitcoin" {
			t.Errorf("results = %+v", results)
		}
		if f.queries[0] != "btc" {
			t.Errorf("query = %q, want trimmed", f.queries[0])
		}
	})

	t.Run("zero results", func(t *testing.T) {
		_, err := New(&fakeSearcher{}, "").Search(context.Background(), "zzz")
		es := kindOf(t, err)
		if es.Kind != models.NotFound || es.Message != NoSuggestions {
			t.Errorf("error = %+v", es)
		}
	})

	t.Run("http failure", func(t *testing.T) {
		f := &fakeSearcher{err: &dataflows.APIError{StatusCode: 500, Detail: "upstream down"}}
		_, err := New(f, "").Search(context.Background(), "btc")
		es := kindOf(t, err)
		if es.Kind != models.NotFound || es.Message != "Search failed: upstream down" {
			t.Errorf("error = %+v", es)
		}
	})

	t.Run("http failure without detail", func(t *testing.T) {
		f := &fakeSearcher{err: &dataflows.APIError{StatusCode: 500}}
		_, err := New(f, "").Search(context.Background(), "btc")
		if es := kindOf(t, err); es.Message != "Search failed: Unknown error" {
			t.Errorf("message = %q", es.Message)
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		f := &fakeSearcher{err: &dataflows.TransportError{Endpoint: "search", Err: errors.New("connection refused")}}
		_, err := New(f, "http://127.0.0.1:8000").Search(context.Background(), "btc")
		es := kindOf(t, err)
		if es.Kind != models.NetworkFailure {
			t.Errorf("kind = %v, want %v", es.Kind, models.NetworkFailure)
		}
		if !strings.Contains(es.Message, "API is available at http://127.0.0.1:8000") {
			t.Errorf("message = %q", es.Message)
		}
	})
}

func TestResolve(t *testing.T) {
	t.Run("empty query", func(t *testing.T) {
		f := &fakeSearcher{}
		_, err := New(f, "").Resolve(context.Background(), "  ")
		es := kindOf(t, err)
		if es.Kind != models.ValidationFailure || es.Message != EmptyQueryMessage {
			t.Errorf("error = %+v", es)
		}
		if len(f.queries) != 0 {
			t.Error("searcher must not be called for an empty query")
		}
	})

	t.Run("first result wins", func(t *testing.T) {
		f := &fakeSearcher{results: []models.SearchResult{
			{ID: "bitcoin", Symbol: "BTC"},
			{ID: "wrapped-bitcoin", Symbol: "WBTC"},
		}}
		got, err := New(f, "").Resolve(context.Background(), "bitcoin")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if got.ID != "bitcoin" || got.Symbol != "BTC" {
			t.Errorf("resolved = %+v", got)
		}
	})

	t.Run("zero results", func(t *testing.T) {
		_, err := New(&fakeSearcher{}, "").Resolve(context.Background(), " doge2 ")
		es := kindOf(t, err)
		want := `No results found for "doge2". Try BTC, ETH, or SOL.`
		if es.Kind != models.NotFound || es.Message != want {
			t.Errorf("error = %+v", es)
		}
	})

	t.Run("http failure", func(t *testing.T) {
		f := &fakeSearcher{err: &dataflows.APIError{StatusCode: 404, Detail: "Cryptocurrency not found"}}
		_, err := New(f, "").Resolve(context.Background(), "nope")
		es := kindOf(t, err)
		if es.Kind != models.NotFound || es.Message != "Pair not found: Cryptocurrency not found" {
			t.Errorf("error = %+v", es)
		}
	})

	t.Run("cancelled context is not an error state", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		f := &fakeSearcher{err: &dataflows.TransportError{Endpoint: "search", Err: context.Canceled}}
		_, err := New(f, "").Resolve(ctx, "btc")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestResolveAgainstService(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"success":false,"detail":[{"msg":"query too short"}]}`)
	}))
	defer srv.Close()

	client := dataflows.NewClient(srv.URL)
	_, err := New(client, client.BaseURL()).Resolve(context.Background(), "b")
	es := kindOf(t, err)
	if es.Kind != models.NotFound || es.Message != "Pair not found: query too short" {
		t.Errorf("error = %+v", es)
	}
}
