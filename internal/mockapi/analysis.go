package mockapi

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	five    = decimal.NewFromInt(5)
	two     = decimal.NewFromInt(2)
)

type analysisBody struct {
	Success           bool        `json:"success"`
	Pair              string      `json:"pair"`
	Query             string      `json:"query"`
	CryptoID          string      `json:"crypto_id"`
	CurrentPrice      string      `json:"current_price"`
	Change24h         string      `json:"change_24h"`
	Entry             string      `json:"entry"`
	StopLoss          string      `json:"stoploss"`
	TakeProfit        string      `json:"takeprofit"`
	RiskReward        string      `json:"risk_reward_ratio"`
	Volatility        string      `json:"volatility"`
	VolatilityPercent json.Number `json:"volatility_percent"`
	SLPercentage      json.Number `json:"sl_percentage"`
	TPPercentage      json.Number `json:"tp_percentage"`
	Sentiment         sentiment   `json:"sentiment"`
	MarketData        marketData  `json:"market_data"`
}

type sentiment struct {
	Consensus       string      `json:"consensus"`
	Confidence      json.Number `json:"confidence"`
	AvailableModels int         `json:"available_models"`
	Models          modelSet    `json:"models"`
}

// modelSet keeps the model keys in a fixed order on the wire.
type modelSet struct {
	Gemini    modelView `json:"gemini"`
	Groq      modelView `json:"groq"`
	Replicate modelView `json:"replicate"`
}

type modelView struct {
	Available bool   `json:"available"`
	Sentiment string `json:"sentiment"`
	Signal    string `json:"signal,omitempty"`
}

type marketData struct {
	MarketCap string `json:"market_cap"`
	Volume24h string `json:"volume_24h"`
	High24h   string `json:"high_24h"`
	Low24h    string `json:"low_24h"`
}

// Analyze computes the trading levels for a over its 24h range.
func Analyze(a Asset, query string) analysisBody {
	vol := decimal.Zero
	if !a.Price.IsZero() {
		vol = a.High24h.Sub(a.Low24h).Div(a.Price).Mul(hundred)
	}

	sl := stopLossPercent(vol)
	tp := takeProfitPercent(a.Change24h, vol)

	entry := a.Price
	stop := entry.Mul(decimal.NewFromInt(1).Sub(sl.Div(hundred)))
	take := entry.Mul(decimal.NewFromInt(1).Add(tp.Div(hundred)))

	return analysisBody{
		Success:           true,
		Pair:              strings.ToUpper(a.Symbol),
		Query:             query,
		CryptoID:          a.ID,
		CurrentPrice:      formatPrice(a.Price),
		Change24h:         a.Change24h.StringFixed(2) + "%",
		Entry:             formatPrice(entry),
		StopLoss:          formatPrice(stop),
		TakeProfit:        formatPrice(take),
		RiskReward:        riskReward(entry, stop, take),
		Volatility:        volatilityLevel(vol),
		VolatilityPercent: json.Number(vol.Round(2).String()),
		SLPercentage:      json.Number(sl.Round(2).String()),
		TPPercentage:      json.Number(tp.Round(2).String()),
		Sentiment:         aggregate(a.Signals),
		MarketData: marketData{
			MarketCap: formatPrice(a.MarketCap),
			Volume24h: formatPrice(a.Volume24h),
			High24h:   formatPrice(a.High24h),
			Low24h:    formatPrice(a.Low24h),
		},
	}
}

// stopLossPercent widens the stop as the 24h range grows.
func stopLossPercent(vol decimal.Decimal) decimal.Decimal {
	switch {
	case vol.LessThan(two):
		return decimal.RequireFromString("1.5")
	case vol.LessThan(five):
		return decimal.RequireFromString("2.5")
	case vol.LessThan(decimal.NewFromInt(10)):
		return decimal.NewFromInt(4)
	default:
		return decimal.NewFromInt(6)
	}
}

func takeProfitPercent(change, vol decimal.Decimal) decimal.Decimal {
	tp := five
	switch {
	case change.GreaterThan(five):
		tp = tp.Add(decimal.NewFromInt(3))
	case change.IsPositive():
		tp = tp.Add(change.Div(five))
	case change.GreaterThan(five.Neg()):
		tp = tp.Sub(two)
	default:
		tp = tp.Sub(decimal.NewFromInt(3))
	}
	if change.IsNegative() {
		tp = tp.Add(decimal.Min(two, vol.Div(five)))
	}
	return tp
}

func volatilityLevel(vol decimal.Decimal) string {
	switch {
	case vol.LessThan(two):
		return "VERY LOW"
	case vol.LessThan(five):
		return "LOW"
	case vol.LessThan(decimal.NewFromInt(10)):
		return "MEDIUM"
	case vol.LessThan(decimal.NewFromInt(15)):
		return "HIGH"
	default:
		return "EXTREME"
	}
}

func riskReward(entry, stop, take decimal.Decimal) string {
	risk := entry.Sub(stop).Abs()
	if entry.IsZero() || risk.IsZero() {
		return "N/A"
	}
	return trimZeros(take.Sub(entry).Abs().Div(risk).StringFixed(4))
}

// aggregate folds the model signals into a consensus. Bullish signals
// count +1, bearish -1, anything else 0.
func aggregate(signals map[string]string) sentiment {
	views := make(map[string]modelView, len(modelNames))
	sum, n := 0, 0
	for _, name := range modelNames {
		sig, ok := signals[name]
		if !ok {
			views[name] = modelView{Sentiment: "N/A"}
			continue
		}
		n++
		up := strings.ToUpper(sig)
		switch {
		case strings.Contains(up, "BUY") || strings.Contains(up, "BULLISH"):
			sum++
		case strings.Contains(up, "SELL") || strings.Contains(up, "BEARISH"):
			sum--
		}
		views[name] = modelView{Available: true, Sentiment: up, Signal: up}
	}

	out := sentiment{
		Consensus:       "HOLD",
		Confidence:      "0",
		AvailableModels: n,
		Models: modelSet{
			Gemini:    views["gemini"],
			Groq:      views["groq"],
			Replicate: views["replicate"],
		},
	}
	if n == 0 {
		return out
	}

	avg := decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(n)))
	threshold := decimal.RequireFromString("0.3")
	switch {
	case avg.GreaterThan(threshold):
		out.Consensus = "BUY"
	case avg.LessThan(threshold.Neg()):
		out.Consensus = "SELL"
	}
	out.Confidence = json.Number(five.Add(avg.Abs().Mul(five)).Round(1).String())
	return out
}

// formatPrice prints four decimals, eight for sub-0.0001 values, without
// trailing zeros.
func formatPrice(v decimal.Decimal) string {
	places := int32(4)
	if v.IsPositive() && v.LessThan(decimal.RequireFromString("0.0001")) {
		places = 8
	}
	return trimZeros(v.StringFixed(places))
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	return strings.TrimRight(strings.TrimRight(s, "0"), ".")
}
