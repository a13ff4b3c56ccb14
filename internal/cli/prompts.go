package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"golang.org/x/sync/errgroup"

	"github.com/nforb26-art/tradeanalyser/internal/display"
	"github.com/nforb26-art/tradeanalyser/internal/models"
)

const bestMatchOption = "Analyze best match"

// PromptForQuery asks for a trading pair. An empty answer is allowed and
// ends the prompt loop.
func PromptForQuery() (string, error) {
	var query string
	prompt := &survey.Input{
		Message: "Trading pair (e.g., BTC/USDT or BTC), empty to quit:",
		Help:    "Type a name or symbol; matching assets are listed next",
	}

	err := survey.AskOne(prompt, &query, survey.WithValidator(func(val interface{}) error {
		str, _ := val.(string)
		if len(strings.TrimSpace(str)) > 64 {
			return fmt.Errorf("query too long (max 64 characters)")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(query), nil
}

// PromptForResult lets the user pick one of the suggestions. It returns
// -1 when the best match option is chosen.
func PromptForResult(results []models.SearchResult) (int, error) {
	options := make([]string, 0, len(results)+1)
	options = append(options, bestMatchOption)
	for _, r := range results {
		options = append(options, optionLabel(r))
	}

	var choice int
	prompt := &survey.Select{
		Message:  "Select an asset:",
		Options:  options,
		Default:  bestMatchOption,
		PageSize: 10,
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return 0, err
	}
	return choice - 1, nil
}

func optionLabel(r models.SearchResult) string {
	label := fmt.Sprintf("%s (%s)", r.Name, strings.ToUpper(r.Symbol))
	if r.MarketCapRank != nil {
		label += fmt.Sprintf(" #%d", *r.MarketCapRank)
	}
	return label
}

// runPrompt loops over query → suggestion list → analysis until the user
// leaves with an empty query or Ctrl+C.
func (a *app) runPrompt(ctx context.Context, out io.Writer) error {
	s, err := NewSession(a.cfg)
	if err != nil {
		return err
	}

	console := display.NewConsole(out, !a.cfg.NoColor)
	ctrl := s.Controller(console)

	g, gctx := errgroup.WithContext(ctx)
	loopCtx, cancel := context.WithCancel(gctx)
	g.Go(func() error { return runLoop(loopCtx, ctrl) })
	g.Go(func() error {
		defer cancel()
		for {
			query, err := PromptForQuery()
			if err != nil {
				return promptErr(err)
			}
			if query == "" {
				fmt.Fprintln(out, "Bye!")
				return nil
			}

			results, err := s.Resolver.Search(loopCtx, query)
			if err != nil {
				var es *models.ErrorState
				if errors.As(err, &es) {
					console.RenderError(es)
					continue
				}
				return err
			}

			idx, err := PromptForResult(results)
			if err != nil {
				return promptErr(err)
			}
			if idx < 0 {
				ctrl.Submit(query)
			} else {
				ctrl.Select(results[idx])
			}

			select {
			case <-console.Settled():
			case <-loopCtx.Done():
				return nil
			}
		}
	})
	return g.Wait()
}

func promptErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return nil
	}
	return err
}
