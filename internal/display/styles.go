package display

import "github.com/charmbracelet/lipgloss"

const panelWidth = 72

// Styles holds every style used to render analysis output. Styles built
// for a renderer without color support degrade to plain text.
type Styles struct {
	Title      lipgloss.Style
	Panel      lipgloss.Style
	ErrorPanel lipgloss.Style
	Label      lipgloss.Style
	Value      lipgloss.Style
	Muted      lipgloss.Style
	Positive   lipgloss.Style
	Negative   lipgloss.Style
	Entry      lipgloss.Style
	StopLoss   lipgloss.Style
	TakeProfit lipgloss.Style
	Selected   lipgloss.Style
	Consensus  map[string]lipgloss.Style
}

// NewStyles builds the palette on r. A nil renderer uses lipgloss' default.
func NewStyles(r *lipgloss.Renderer, color bool) Styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	fg := func(hex string) lipgloss.Style {
		s := r.NewStyle()
		if color {
			s = s.Foreground(lipgloss.Color(hex))
		}
		return s
	}
	border := func(hex string) lipgloss.Style {
		s := r.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(panelWidth)
		if color {
			s = s.BorderForeground(lipgloss.Color(hex))
		}
		return s
	}

	return Styles{
		Title:      fg("#7C3AED").Bold(true),
		Panel:      border("#3B82F6"),
		ErrorPanel: border("#EF4444"),
		Label:      fg("#6B7280"),
		Value:      fg("#F9FAFB").Bold(true),
		Muted:      fg("#6B7280").Italic(true),
		Positive:   fg("#10B981").Bold(true),
		Negative:   fg("#EF4444").Bold(true),
		Entry:      fg("#3B82F6").Bold(true),
		StopLoss:   fg("#EF4444").Bold(true),
		TakeProfit: fg("#10B981").Bold(true),
		Selected:   fg("#F59E0B").Bold(true),
		Consensus: map[string]lipgloss.Style{
			"buy":     fg("#10B981").Bold(true),
			"bullish": fg("#10B981").Bold(true),
			"sell":    fg("#EF4444").Bold(true),
			"bearish": fg("#EF4444").Bold(true),
			"hold":    fg("#F59E0B").Bold(true),
			"neutral": fg("#F59E0B").Bold(true),
		},
	}
}

func (s Styles) consensus(class string) lipgloss.Style {
	if st, ok := s.Consensus[class]; ok {
		return st
	}
	return s.Value
}
