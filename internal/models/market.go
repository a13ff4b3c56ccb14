package models

// SearchResult is one match returned by the search endpoint. Results arrive
// ordered by relevance, the first element being the best match.
type SearchResult struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank *int   `json:"market_cap_rank,omitempty"`
}

type TrendingCoin struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank *int   `json:"market_cap_rank,omitempty"`
	SmallImage    string `json:"small_image,omitempty"`
}

type HealthStatus struct {
	Status            string          `json:"status"`
	APIKeysConfigured map[string]bool `json:"api_keys_configured"`
	MarketDataSources []string        `json:"market_data_sources"`
	AIModelsAvailable int             `json:"ai_models_available"`
	NewsSources       []string        `json:"news_sources"`
	TotalModels       int             `json:"total_models"`
	TotalNewsSources  int             `json:"total_news_sources"`
}
