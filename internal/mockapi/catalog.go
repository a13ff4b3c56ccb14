package mockapi

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Asset is one tradable coin with a fixed market snapshot.
type Asset struct {
	ID     string
	Name   string
	Symbol string
	Rank   int

	Price     decimal.Decimal
	Change24h decimal.Decimal
	High24h   decimal.Decimal
	Low24h    decimal.Decimal
	MarketCap decimal.Decimal
	Volume24h decimal.Decimal

	// Signals maps model name to its signal. Models missing from the map
	// are reported as unavailable.
	Signals map[string]string
}

var modelNames = []string{"gemini", "groq", "replicate"}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// DefaultCatalog is the asset list served when no other catalog is given.
func DefaultCatalog() []Asset {
	return []Asset{
		{
			ID: "bitcoin", Name: "Bitcoin", Symbol: "btc", Rank: 1,
			Price: d("64250.12"), Change24h: d("2.35"), High24h: d("65010"), Low24h: d("62800.5"),
			MarketCap: d("1265000000000"), Volume24h: d("31200000000"),
			Signals: map[string]string{"gemini": "BUY", "groq": "BULLISH"},
		},
		{
			ID: "ethereum", Name: "Ethereum", Symbol: "eth", Rank: 2,
			Price: d("3120.44"), Change24h: d("-1.12"), High24h: d("3204.1"), Low24h: d("3050.77"),
			MarketCap: d("375000000000"), Volume24h: d("15400000000"),
			Signals: map[string]string{"gemini": "HOLD", "groq": "NEUTRAL", "replicate": "SELL"},
		},
		{
			ID: "solana", Name: "Solana", Symbol: "sol", Rank: 5,
			Price: d("145.87"), Change24h: d("6.8"), High24h: d("149.9"), Low24h: d("132.4"),
			MarketCap: d("67000000000"), Volume24h: d("3100000000"),
			Signals: map[string]string{"gemini": "BUY"},
		},
		{
			ID: "ripple", Name: "XRP", Symbol: "xrp", Rank: 7,
			Price: d("0.5231"), Change24h: d("0"), High24h: d("0.5302"), Low24h: d("0.5188"),
			MarketCap: d("29000000000"), Volume24h: d("1200000000"),
		},
		{
			ID: "dogecoin", Name: "Dogecoin", Symbol: "doge", Rank: 9,
			Price: d("0.1533"), Change24h: d("-7.4"), High24h: d("0.171"), Low24h: d("0.149"),
			MarketCap: d("22000000000"), Volume24h: d("1900000000"),
			Signals: map[string]string{"groq": "BEARISH", "replicate": "SELL"},
		},
		{
			ID: "bitcoin-cash", Name: "Bitcoin Cash", Symbol: "bch", Rank: 18,
			Price: d("389.2"), Change24h: d("1.05"), High24h: d("395"), Low24h: d("380.1"),
			MarketCap: d("7600000000"), Volume24h: d("310000000"),
		},
		{
			ID: "shiba-inu", Name: "Shiba Inu", Symbol: "shib", Rank: 12,
			Price: d("0.00002412"), Change24h: d("3.3"), High24h: d("0.00002490"), Low24h: d("0.00002301"),
			MarketCap: d("14200000000"), Volume24h: d("540000000"),
		},
	}
}

// Catalog answers lookups over a fixed asset list.
type Catalog struct {
	assets []Asset
}

func NewCatalog(assets []Asset) *Catalog {
	sorted := append([]Asset(nil), assets...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Rank < sorted[j].Rank })
	return &Catalog{assets: sorted}
}

// Search returns assets whose id, name or symbol contains query, exact
// symbol or id matches first. A pair such as "BTC/USDT" matches on its
// base asset.
func (c *Catalog) Search(query string) []Asset {
	q := strings.ToLower(strings.TrimSpace(query))
	if base, _, ok := strings.Cut(q, "/"); ok {
		q = base
	}
	if q == "" {
		return nil
	}

	var exact, partial []Asset
	for _, a := range c.assets {
		switch {
		case a.Symbol == q || a.ID == q || strings.ToLower(a.Name) == q:
			exact = append(exact, a)
		case strings.Contains(a.ID, q) || strings.Contains(a.Symbol, q) || strings.Contains(strings.ToLower(a.Name), q):
			partial = append(partial, a)
		}
	}
	return append(exact, partial...)
}

// Top returns the n best ranked assets.
func (c *Catalog) Top(n int) []Asset {
	if n > len(c.assets) {
		n = len(c.assets)
	}
	return c.assets[:n]
}
