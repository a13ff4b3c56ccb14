package cli

import (
	"errors"

	"github.com/charmbracelet/lipgloss"

	"github.com/nforb26-art/tradeanalyser/internal/dataflows"
	"github.com/nforb26-art/tradeanalyser/internal/models"
)

// UI styles
var (
	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Background(lipgloss.Color("#1F2937")).
		Padding(0, 1).
		MarginBottom(1)

	inputStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#3B82F6")).
		Padding(0, 1)

	suggestionBoxStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#F59E0B")).
		Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280"))

	helpStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#6B7280")).
		Italic(true)
)

const helpText = "type to search • ↑/↓ pick a suggestion • enter analyze • pgup/pgdn scroll • esc quit"

func banner() string {
	return titleStyle.Render("tradeanalyser") + "  " + statusStyle.Render("crypto trading pair analysis")
}

// describe maps a raw client error onto the error taxonomy for commands
// that call the service directly.
func describe(err error, baseURL, prefix string) *models.ErrorState {
	var apiErr *dataflows.APIError
	if errors.As(err, &apiErr) {
		return models.WrapError(models.ServerFailure, prefix+apiErr.DetailOr("Unknown error"), err)
	}
	var tErr *dataflows.TransportError
	if errors.As(err, &tErr) {
		return models.WrapError(models.NetworkFailure, dataflows.NetworkMessage(err, baseURL), err)
	}
	return models.WrapError(models.ServerFailure, prefix+err.Error(), err)
}
