// Package display renders analysis output with lipgloss.
package display

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/nforb26-art/tradeanalyser/internal/models"
)

// Console prints each instruction to a writer as it arrives. Output is
// append-only, so the clear instructions only update state.
type Console struct {
	out    io.Writer
	styles Styles

	mu          sync.Mutex
	lastErr     *models.ErrorState
	suggestions int
	settled     chan struct{}
}

func NewConsole(out io.Writer, color bool) *Console {
	return &Console{
		out:     out,
		styles:  NewStyles(lipgloss.NewRenderer(out), color),
		settled: make(chan struct{}, 1),
	}
}

func (c *Console) Styles() Styles {
	return c.styles
}

// Settled receives after each RenderAnalysis or RenderError.
func (c *Console) Settled() <-chan struct{} {
	return c.settled
}

// Err is the error currently shown, nil after ClearError or a successful
// analysis.
func (c *Console) Err() *models.ErrorState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Console) RenderSuggestions(results []models.SearchResult) {
	c.mu.Lock()
	c.suggestions = len(results)
	c.mu.Unlock()
	fmt.Fprintln(c.out, c.styles.Suggestions(results, -1))
}

func (c *Console) ClearSuggestions() {
	c.mu.Lock()
	c.suggestions = 0
	c.mu.Unlock()
}

func (c *Console) RenderAnalysis(result *models.AnalysisResult) {
	c.mu.Lock()
	c.lastErr = nil
	c.mu.Unlock()
	fmt.Fprintln(c.out, c.styles.Analysis(result))
	c.settle()
}

func (c *Console) RenderError(err *models.ErrorState) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
	fmt.Fprintln(c.out, c.styles.Error(err))
	c.settle()
}

func (c *Console) ClearError() {
	c.mu.Lock()
	c.lastErr = nil
	c.mu.Unlock()
}

func (c *Console) ScrollTo(models.Region) {}

func (c *Console) settle() {
	select {
	case c.settled <- struct{}{}:
	default:
	}
}
