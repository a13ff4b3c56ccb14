package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nforb26-art/tradeanalyser/internal/models"
)

func sampleResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		Pair:         "BTC",
		CurrentPrice: "67,012.50",
		Change24h:    "2.31%",
		Direction:    models.DirectionUp,
		Levels:       models.TradingLevels{Entry: "66,900.00", StopLoss: "65,200.00", TakeProfit: models.Placeholder},
		Volatility:   models.Volatility{Level: "MEDIUM", Percent: "3.2", StopLossPercent: "2.5", TakeProfitPercent: "5"},
		RiskReward:   "1:2.1",
		Sentiment: models.Sentiment{
			Consensus:       "BUY",
			Confidence:      "7.5",
			AvailableModels: "2",
			Models: []models.ModelSentiment{
				{Name: "gemini", Available: true, Signal: "BUY"},
				{Name: "groq"},
			},
		},
		Market: models.MarketStats{MarketCap: "1.3T", Volume24h: "30B", High24h: "68,000", Low24h: "65,000"},
	}
}

func TestConsoleRenderAnalysis(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)
	c.RenderAnalysis(sampleResult())

	out := buf.String()
	for _, want := range []string{
		"BTC", "$67,012.50", "+2.31%",
		"$66,900.00", "Take Profit  N/A",
		"MEDIUM 3.2%", "5%",
		"Confidence: 7.5/10 (2 AI models)",
		"GEMINI", "API key not configured",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	select {
	case <-c.Settled():
	default:
		t.Error("RenderAnalysis did not settle")
	}
}

func TestConsoleNegativeChange(t *testing.T) {
	r := sampleResult()
	r.Change24h = "-4.10%"
	r.Direction = models.DirectionDown

	var buf bytes.Buffer
	NewConsole(&buf, false).RenderAnalysis(r)
	if strings.Contains(buf.String(), "+-4.10%") || !strings.Contains(buf.String(), "-4.10%") {
		t.Errorf("unexpected change rendering:\n%s", buf.String())
	}
}

func TestConsoleErrorState(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, false)

	es := models.NewError(models.NotFound, "Pair not found: nope")
	c.RenderError(es)
	if c.Err() != es {
		t.Fatalf("Err() = %v, want rendered error", c.Err())
	}
	if !strings.Contains(buf.String(), "Pair not found: nope") {
		t.Errorf("output = %q", buf.String())
	}

	c.ClearError()
	if c.Err() != nil {
		t.Error("ClearError did not reset the error")
	}
}

func TestSuggestionsShowRank(t *testing.T) {
	rank := 1
	out := NewStyles(nil, false).Suggestions([]models.SearchResult{
		{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc", MarketCapRank: &rank},
		{ID: "bitcoin-cash", Name: "Bitcoin Cash", Symbol: "bch"},
	}, 0)

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "> Bitcoin BTC") || !strings.HasSuffix(lines[0], "#1") {
		t.Errorf("first line = %q", lines[0])
	}
	if strings.Contains(lines[1], "#") {
		t.Errorf("second line = %q, want no rank", lines[1])
	}
}

func TestMoneyAndPercent(t *testing.T) {
	if got := money("1,234.5"); got != "$1,234.5" {
		t.Errorf("money = %q", got)
	}
	if got := money(models.Placeholder); got != models.Placeholder {
		t.Errorf("money(N/A) = %q", got)
	}
	if got := money("1.3T"); got != "1.3T" {
		t.Errorf("money(1.3T) = %q", got)
	}
	if got := percent("2.5%"); got != "2.5%" {
		t.Errorf("percent = %q", got)
	}
}
