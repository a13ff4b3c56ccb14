package dataflows

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nforb26-art/tradeanalyser/internal/models"
)

var errNotObject = errors.New("analysis body is not a JSON object")

type analysisPayload struct {
	Pair              json.RawMessage `json:"pair"`
	CryptoID          json.RawMessage `json:"crypto_id"`
	CurrentPrice      json.RawMessage `json:"current_price"`
	Change24h         json.RawMessage `json:"change_24h"`
	Entry             json.RawMessage `json:"entry"`
	StopLoss          json.RawMessage `json:"stoploss"`
	TakeProfit        json.RawMessage `json:"takeprofit"`
	Volatility        json.RawMessage `json:"volatility"`
	VolatilityPercent json.RawMessage `json:"volatility_percent"`
	SLPercentage      json.RawMessage `json:"sl_percentage"`
	TPPercentage      json.RawMessage `json:"tp_percentage"`
	RiskReward        json.RawMessage `json:"risk_reward_ratio"`
	Sentiment         json.RawMessage `json:"sentiment"`
	MarketData        json.RawMessage `json:"market_data"`
}

type sentimentPayload struct {
	Consensus       json.RawMessage `json:"consensus"`
	Confidence      json.RawMessage `json:"confidence"`
	AvailableModels json.RawMessage `json:"available_models"`
	Models          json.RawMessage `json:"models"`
}

type marketPayload struct {
	MarketCap json.RawMessage `json:"market_cap"`
	Volume24h json.RawMessage `json:"volume_24h"`
	High24h   json.RawMessage `json:"high_24h"`
	Low24h    json.RawMessage `json:"low_24h"`
}

// NormalizeAnalysis maps a successful analyze body onto an AnalysisResult.
// Missing or oddly typed fields degrade to models.Placeholder; only a body
// that is not a JSON object is an error.
func NormalizeAnalysis(body []byte) (*models.AnalysisResult, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errNotObject
	}

	var p analysisPayload
	if err := json.Unmarshal(trimmed, &p); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}

	result := &models.AnalysisResult{
		Pair:         display(p.Pair),
		CryptoID:     scalar(p.CryptoID),
		CurrentPrice: display(p.CurrentPrice),
		Change24h:    display(p.Change24h),
		Levels: models.TradingLevels{
			Entry:      display(p.Entry),
			StopLoss:   display(p.StopLoss),
			TakeProfit: display(p.TakeProfit),
		},
		Volatility: models.Volatility{
			Level:             orDefault(scalar(p.Volatility), models.UnknownVolatility),
			Percent:           display(p.VolatilityPercent),
			StopLossPercent:   display(p.SLPercentage),
			TakeProfitPercent: display(p.TPPercentage),
		},
		RiskReward: display(p.RiskReward),
	}
	result.Direction = ChangeDirection(result.Change24h)
	result.Sentiment = normalizeSentiment(p.Sentiment)
	result.Market = normalizeMarket(p.MarketData)
	return result, nil
}

func normalizeSentiment(raw json.RawMessage) models.Sentiment {
	var s sentimentPayload
	// a non-object sentiment block leaves every field empty
	_ = json.Unmarshal(raw, &s)

	return models.Sentiment{
		Consensus:       display(s.Consensus),
		Confidence:      display(s.Confidence),
		AvailableModels: display(s.AvailableModels),
		Models:          NormalizeModels(s.Models),
	}
}

func normalizeMarket(raw json.RawMessage) models.MarketStats {
	var m marketPayload
	_ = json.Unmarshal(raw, &m)

	return models.MarketStats{
		MarketCap: display(m.MarketCap),
		Volume24h: display(m.Volume24h),
		High24h:   display(m.High24h),
		Low24h:    display(m.Low24h),
	}
}

// NormalizeModels turns the sentiment.models object into display entries,
// preserving the key order of the input. Anything that is not an object
// yields no entries.
func NormalizeModels(raw json.RawMessage) []models.ModelSentiment {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	var out []models.ModelSentiment
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return out
		}
		name, _ := keyTok.(string)

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return out
		}
		out = append(out, normalizeModel(name, value))
	}
	return out
}

func normalizeModel(name string, raw json.RawMessage) models.ModelSentiment {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return models.ModelSentiment{Name: name, Available: true, Signal: models.Placeholder}
	}

	if isFalse(fields["available"]) {
		return models.ModelSentiment{Name: name}
	}

	signal := truthy(fields["sentiment"])
	if signal == "" {
		signal = truthy(fields["signal"])
	}
	return models.ModelSentiment{Name: name, Available: true, Signal: orDefault(signal, models.Placeholder)}
}

// ChangeDirection classifies a percent change such as "-1.25%" or "+3.4".
// Zero counts as up.
func ChangeDirection(change string) models.Direction {
	s := strings.TrimSpace(change)
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimPrefix(strings.TrimSpace(s), "+")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return models.DirectionUnknown
	}
	if d.IsNegative() {
		return models.DirectionDown
	}
	return models.DirectionUp
}

func isFalse(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "false"
}

// truthy renders raw when it is a non-empty string, a non-zero number or
// true, and returns "" otherwise.
func truthy(raw json.RawMessage) string {
	s := scalar(raw)
	switch s {
	case "", "false":
		return ""
	}
	if d, err := decimal.NewFromString(s); err == nil && d.IsZero() && isNumber(raw) {
		return ""
	}
	return s
}

func isNumber(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && (trimmed[0] == '-' || (trimmed[0] >= '0' && trimmed[0] <= '9'))
}

// scalar renders a JSON string, number or bool; everything else is "".
func scalar(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return ""
		}
		return s
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return ""
		}
		if b {
			return "true"
		}
		return "false"
	case 'n', '{', '[':
		return ""
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return ""
		}
		return n.String()
	}
}

func display(raw json.RawMessage) string {
	return orDefault(scalar(raw), models.Placeholder)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
