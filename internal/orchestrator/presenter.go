package orchestrator

import "github.com/nforb26-art/tradeanalyser/internal/models"

// Presenter receives display instructions. All calls come from the
// controller's loop goroutine, one at a time.
type Presenter interface {
	RenderSuggestions(results []models.SearchResult)
	ClearSuggestions()
	RenderAnalysis(result *models.AnalysisResult)
	RenderError(err *models.ErrorState)
	ClearError()
	ScrollTo(region models.Region)
}

// Multi fans every call out to each presenter in order.
type Multi []Presenter

func (m Multi) RenderSuggestions(results []models.SearchResult) {
	for _, p := range m {
		p.RenderSuggestions(results)
	}
}

func (m Multi) ClearSuggestions() {
	for _, p := range m {
		p.ClearSuggestions()
	}
}

func (m Multi) RenderAnalysis(result *models.AnalysisResult) {
	for _, p := range m {
		p.RenderAnalysis(result)
	}
}

func (m Multi) RenderError(err *models.ErrorState) {
	for _, p := range m {
		p.RenderError(err)
	}
}

func (m Multi) ClearError() {
	for _, p := range m {
		p.ClearError()
	}
}

func (m Multi) ScrollTo(region models.Region) {
	for _, p := range m {
		p.ScrollTo(region)
	}
}
