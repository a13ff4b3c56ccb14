package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/nforb26-art/tradeanalyser/config"
	"github.com/nforb26-art/tradeanalyser/internal/display"
	"github.com/nforb26-art/tradeanalyser/internal/logger"
	"github.com/nforb26-art/tradeanalyser/internal/models"
)

// Messages carrying presenter instructions into the program.
type (
	suggestionsMsg      []models.SearchResult
	clearSuggestionsMsg struct{}
	analysisMsg         struct{ result *models.AnalysisResult }
	errorMsg            struct{ err *models.ErrorState }
	clearErrorMsg       struct{}
	scrollMsg           models.Region
	statusMsg           string
)

// teaPresenter forwards every instruction to the bubbletea program.
type teaPresenter struct {
	send func(tea.Msg)
}

func (p *teaPresenter) RenderSuggestions(results []models.SearchResult) {
	p.send(suggestionsMsg(results))
}

func (p *teaPresenter) ClearSuggestions() { p.send(clearSuggestionsMsg{}) }

func (p *teaPresenter) RenderAnalysis(result *models.AnalysisResult) {
	p.send(analysisMsg{result: result})
}

func (p *teaPresenter) RenderError(err *models.ErrorState) { p.send(errorMsg{err: err}) }

func (p *teaPresenter) ClearError() { p.send(clearErrorMsg{}) }

func (p *teaPresenter) ScrollTo(region models.Region) { p.send(scrollMsg(region)) }

// controls is the part of the controller the screen drives.
type controls interface {
	Input(text string)
	Submit(text string)
	Select(result models.SearchResult)
}

const chromeHeight = 8

type tuiModel struct {
	ctrl   controls
	styles display.Styles

	input   textinput.Model
	spinner spinner.Model
	view    viewport.Model

	suggestions []models.SearchResult
	cursor      int
	analysis    *models.AnalysisResult
	err         *models.ErrorState
	region      models.Region
	loading     bool
	status      string
}

func newTUIModel(ctrl controls, styles display.Styles) tuiModel {
	ti := textinput.New()
	ti.Placeholder = "BTC, ETH, Bitcoin, BTC/USDT…"
	ti.Prompt = "› "
	ti.CharLimit = 64
	ti.Width = 40
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return tuiModel{
		ctrl:    ctrl,
		styles:  styles,
		input:   ti,
		spinner: sp,
		view:    viewport.New(80, 20),
		cursor:  -1,
	}
}

func (m tuiModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.view.Width = msg.Width
		m.view.Height = max(msg.Height-chromeHeight-len(m.suggestions), 3)
		return m, nil

	case suggestionsMsg:
		m.suggestions = msg
		m.cursor = -1
		return m, nil

	case clearSuggestionsMsg:
		m.suggestions = nil
		m.cursor = -1
		return m, nil

	case analysisMsg:
		m.analysis = msg.result
		m.err = nil
		m.loading = false
		m.refresh()
		return m, nil

	case errorMsg:
		m.err = msg.err
		m.loading = false
		m.refresh()
		return m, nil

	case clearErrorMsg:
		m.err = nil
		m.refresh()
		return m, nil

	case scrollMsg:
		m.region = models.Region(msg)
		m.view.GotoTop()
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m tuiModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyUp:
		if m.cursor >= 0 {
			m.cursor--
		}
		return m, nil

	case tea.KeyDown:
		if m.cursor < len(m.suggestions)-1 {
			m.cursor++
		}
		return m, nil

	case tea.KeyEnter:
		if m.cursor >= 0 && m.cursor < len(m.suggestions) {
			m.ctrl.Select(m.suggestions[m.cursor])
		} else {
			m.ctrl.Submit(m.input.Value())
		}
		m.input.SetValue("")
		m.suggestions = nil
		m.cursor = -1
		m.loading = true
		return m, m.spinner.Tick

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.view, cmd = m.view.Update(msg)
		return m, cmd
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.ctrl.Input(m.input.Value())
	}
	return m, cmd
}

// refresh puts the current result into the viewport. An error, when
// present, is the current result.
func (m *tuiModel) refresh() {
	switch {
	case m.err != nil:
		m.view.SetContent(m.styles.Error(m.err))
	case m.analysis != nil:
		m.view.SetContent(m.styles.Analysis(m.analysis))
	default:
		m.view.SetContent("")
	}
}

func (m tuiModel) View() string {
	var b strings.Builder
	b.WriteString(banner() + "\n")
	b.WriteString(inputStyle.Render(m.input.View()) + "\n")

	if len(m.suggestions) > 0 {
		b.WriteString(suggestionBoxStyle.Render(m.styles.Suggestions(m.suggestions, m.cursor)) + "\n")
	}
	if m.loading {
		b.WriteString(m.spinner.View() + " analyzing…\n")
	}

	b.WriteString(m.view.View() + "\n")

	footer := helpText
	if m.status != "" {
		footer = m.status + " • " + footer
	}
	b.WriteString(helpStyle.Render(footer))
	return b.String()
}

// runInteractive starts the search screen with live suggestions.
func (a *app) runInteractive(ctx context.Context) error {
	s, err := NewSession(a.cfg)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(ctx)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gctx)
	defer cancel()

	presenter := &teaPresenter{}
	ctrl := s.Controller(presenter)
	prog := tea.NewProgram(newTUIModel(ctrl, display.NewStyles(nil, !a.cfg.NoColor)),
		tea.WithAltScreen(),
		tea.WithContext(runCtx),
	)
	presenter.send = prog.Send

	if err := a.watchConfig(runCtx, s.Log, func(cfg config.Config) {
		ctrl.SetDebounce(cfg.Debounce)
		prog.Send(statusMsg(fmt.Sprintf("config reloaded (debounce %s)", cfg.Debounce)))
	}); err != nil {
		s.Log.Warn("config watch disabled", logger.Error(err))
	}

	g.Go(func() error { return runLoop(runCtx, ctrl) })
	g.Go(func() error { return s.ServeMetrics(runCtx) })
	g.Go(func() error {
		defer cancel()
		if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return err
		}
		return nil
	})
	return g.Wait()
}

func (a *app) watchConfig(ctx context.Context, log *logger.Logger, onChange func(config.Config)) error {
	mgr, err := config.NewManager(config.WithConfigPath(a.configPath), config.WithLogger(log))
	if err != nil {
		return err
	}
	return mgr.Watch(ctx, onChange)
}
