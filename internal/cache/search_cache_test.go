package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nforb26-art/tradeanalyser/internal/models"
)

type countingSearcher struct {
	calls int
	err   error
}

func (s *countingSearcher) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []models.SearchResult{{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc"}}, nil
}

func TestSearchCacheHitAndExpiry(t *testing.T) {
	next := &countingSearcher{}
	c := NewSearchCache(next, time.Minute, nil)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	ctx := context.Background()
	if _, err := c.Search(ctx, "BTC"); err != nil {
		t.Fatal(err)
	}
	results, err := c.Search(ctx, " btc ")
	if err != nil {
		t.Fatal(err)
	}
	if next.calls != 1 {
		t.Errorf("calls = %d, want 1", next.calls)
	}
	if len(results) != 1 || results[0].ID != "bitcoin" {
		t.Errorf("results = %+v", results)
	}

	now = now.Add(2 * time.Minute)
	if _, err := c.Search(ctx, "btc"); err != nil {
		t.Fatal(err)
	}
	if next.calls != 2 {
		t.Errorf("calls after expiry = %d, want 2", next.calls)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestSearchCacheSkipsFailures(t *testing.T) {
	next := &countingSearcher{err: errors.New("down")}
	c := NewSearchCache(next, time.Minute, nil)

	for i := 0; i < 2; i++ {
		if _, err := c.Search(context.Background(), "eth"); err == nil {
			t.Fatal("expected error")
		}
	}
	if next.calls != 2 {
		t.Errorf("calls = %d, want 2", next.calls)
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d, want 0", c.Len())
	}
}
