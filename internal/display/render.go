package display

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/nforb26-art/tradeanalyser/internal/models"
)

// Suggestions renders the suggestion list. selected is the highlighted row,
// -1 for none.
func (s Styles) Suggestions(results []models.SearchResult, selected int) string {
	var b strings.Builder
	for i, r := range results {
		cursor := "  "
		name := s.Value.Render(r.Name)
		if i == selected {
			cursor = s.Selected.Render("> ")
			name = s.Selected.Render(r.Name)
		}
		fmt.Fprintf(&b, "%s%s %s%s\n", cursor, name, s.Label.Render(strings.ToUpper(r.Symbol)), s.Muted.Render(rankSuffix(r.MarketCapRank)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func rankSuffix(rank *int) string {
	if rank == nil {
		return ""
	}
	return fmt.Sprintf("  #%d", *rank)
}

// Analysis renders the full analysis panel.
func (s Styles) Analysis(r *models.AnalysisResult) string {
	sections := []string{
		s.header(r),
		s.levels(r),
		s.volatility(r),
		s.sentiment(r.Sentiment),
		s.market(r.Market),
	}
	return s.Panel.Render(strings.Join(sections, "\n\n"))
}

func (s Styles) header(r *models.AnalysisResult) string {
	change := s.Label.Render(r.Change24h)
	switch r.Direction {
	case models.DirectionUp:
		text := r.Change24h
		if !strings.HasPrefix(text, "+") {
			text = "+" + text
		}
		change = s.Positive.Render(text)
	case models.DirectionDown:
		change = s.Negative.Render(r.Change24h)
	}
	return fmt.Sprintf("%s  %s  %s", s.Title.Render(r.Pair), s.Value.Render(money(r.CurrentPrice)), change)
}

func (s Styles) levels(r *models.AnalysisResult) string {
	return strings.Join([]string{
		s.row("Entry", s.Entry.Render(money(r.Levels.Entry))),
		s.row("Stop Loss", s.StopLoss.Render(money(r.Levels.StopLoss))),
		s.row("Take Profit", s.TakeProfit.Render(money(r.Levels.TakeProfit))),
		s.row("Risk/Reward", s.Value.Render(r.RiskReward)),
	}, "\n")
}

func (s Styles) volatility(r *models.AnalysisResult) string {
	v := r.Volatility
	return strings.Join([]string{
		s.row("Volatility", s.Value.Render(v.Level)+" "+s.Label.Render(percent(v.Percent))),
		s.row("SL distance", s.Value.Render(percent(v.StopLossPercent))),
		s.row("TP distance", s.Value.Render(percent(v.TakeProfitPercent))),
	}, "\n")
}

func (s Styles) sentiment(st models.Sentiment) string {
	lines := []string{
		s.row("Consensus", s.consensus(st.ConsensusClass()).Render(st.Consensus)),
		s.Label.Render(ConfidenceLine(st)),
	}
	for _, m := range st.Models {
		status := s.Positive.Render("active")
		detail := s.Value.Render(m.Status())
		if !m.Available {
			status = s.Muted.Render("unavailable")
			detail = s.Muted.Render(m.Status())
		}
		lines = append(lines, fmt.Sprintf("  %-10s %s  %s", strings.ToUpper(m.Name), status, detail))
	}
	return strings.Join(lines, "\n")
}

func (s Styles) market(m models.MarketStats) string {
	return strings.Join([]string{
		s.row("Market Cap", s.Value.Render(m.MarketCap)),
		s.row("24h Volume", s.Value.Render(m.Volume24h)),
		s.row("24h High", s.Value.Render(m.High24h)),
		s.row("24h Low", s.Value.Render(m.Low24h)),
	}, "\n")
}

func (s Styles) row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, s.Label.Render(fmt.Sprintf("%-13s", label)), value)
}

// ConfidenceLine is the sentiment summary line, e.g.
// "Confidence: 7.5/10 (2 AI models)".
func ConfidenceLine(st models.Sentiment) string {
	return fmt.Sprintf("Confidence: %s/10 (%s AI models)", st.Confidence, st.AvailableModels)
}

// Error renders an error panel. Multi-line messages keep their breaks.
func (s Styles) Error(es *models.ErrorState) string {
	return s.ErrorPanel.Render(s.Negative.Render(es.Message))
}

// Trending renders the trending coins table.
func (s Styles) Trending(coins []models.TrendingCoin) string {
	if len(coins) == 0 {
		return s.Muted.Render("No trending coins right now")
	}
	var b strings.Builder
	b.WriteString(s.Title.Render("Trending") + "\n")
	for i, c := range coins {
		fmt.Fprintf(&b, "%2d. %s %s%s\n", i+1, s.Value.Render(c.Name), s.Label.Render(strings.ToUpper(c.Symbol)), s.Muted.Render(rankSuffix(c.MarketCapRank)))
	}
	return s.Panel.Render(strings.TrimRight(b.String(), "\n"))
}

// Health renders the service health summary.
func (s Styles) Health(h *models.HealthStatus) string {
	status := s.Positive.Render(h.Status)
	if h.Status != "healthy" {
		status = s.Negative.Render(h.Status)
	}

	lines := []string{
		s.row("Status", status),
		s.row("AI models", s.Value.Render(fmt.Sprintf("%d/%d", h.AIModelsAvailable, h.TotalModels))),
		s.row("Market data", s.Value.Render(strings.Join(h.MarketDataSources, ", "))),
		s.row("News", s.Value.Render(fmt.Sprintf("%s (%d)", strings.Join(h.NewsSources, ", "), h.TotalNewsSources))),
	}
	for _, name := range sortedKeys(h.APIKeysConfigured) {
		mark := s.Positive.Render("configured")
		if !h.APIKeysConfigured[name] {
			mark = s.Muted.Render(models.NotConfigured)
		}
		lines = append(lines, fmt.Sprintf("  %-12s %s", name, mark))
	}
	return s.Panel.Render(strings.Join(lines, "\n"))
}

// money prefixes numeric values with a dollar sign and leaves placeholders
// alone.
func money(v string) string {
	if v == models.Placeholder || v == "" {
		return v
	}
	if _, err := decimal.NewFromString(strings.ReplaceAll(v, ",", "")); err != nil {
		return v
	}
	return "$" + v
}

func percent(v string) string {
	if v == models.Placeholder || v == "" || strings.HasSuffix(v, "%") {
		return v
	}
	return v + "%"
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
