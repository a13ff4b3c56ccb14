package models

import "strings"

const (
	// Placeholder is rendered for any field missing from an analysis payload.
	Placeholder = "N/A"

	UnknownVolatility = "UNKNOWN"

	NotConfigured = "API key not configured"
)

type Direction int

const (
	DirectionUnknown Direction = iota
	DirectionUp
	DirectionDown
)

type AnalysisResult struct {
	Pair         string    `json:"pair"`
	CryptoID     string    `json:"crypto_id,omitempty"`
	CurrentPrice string    `json:"current_price"`
	Change24h    string    `json:"change_24h"`
	Direction    Direction `json:"-"`

	Levels     TradingLevels `json:"levels"`
	Volatility Volatility    `json:"volatility"`
	RiskReward string        `json:"risk_reward_ratio"`

	Sentiment Sentiment   `json:"sentiment"`
	Market    MarketStats `json:"market_data"`
}

type TradingLevels struct {
	Entry      string `json:"entry"`
	StopLoss   string `json:"stoploss"`
	TakeProfit string `json:"takeprofit"`
}

type Volatility struct {
	Level             string `json:"level"`
	Percent           string `json:"percent"`
	StopLossPercent   string `json:"sl_percentage"`
	TakeProfitPercent string `json:"tp_percentage"`
}

type Sentiment struct {
	Consensus       string           `json:"consensus"`
	Confidence      string           `json:"confidence"`
	AvailableModels string           `json:"available_models"`
	Models          []ModelSentiment `json:"models"`
}

// ModelSentiment is the display-safe view of one AI model's output. Signal
// is empty when the model is unavailable.
type ModelSentiment struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Signal    string `json:"signal,omitempty"`
}

// Status returns the marker shown in place of a signal for unavailable models.
func (m ModelSentiment) Status() string {
	if m.Available {
		return m.Signal
	}
	return NotConfigured
}

// ConsensusClass is the lowercased consensus label, used for styling.
func (s Sentiment) ConsensusClass() string {
	return strings.ToLower(s.Consensus)
}

type MarketStats struct {
	MarketCap string `json:"market_cap"`
	Volume24h string `json:"volume_24h"`
	High24h   string `json:"high_24h"`
	Low24h    string `json:"low_24h"`
}
