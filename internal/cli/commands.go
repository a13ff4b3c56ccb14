package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nforb26-art/tradeanalyser/config"
	"github.com/nforb26-art/tradeanalyser/internal/display"
	"github.com/nforb26-art/tradeanalyser/internal/models"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// app carries what the persistent flags resolved to.
type app struct {
	configPath string
	baseURL    string
	debug      bool

	cfg *config.Config
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "tradeanalyser",
		Short: "Find a crypto asset and fetch its trading analysis",
		Long: `tradeanalyser looks up a crypto asset by name or symbol and asks the analysis
service for entry, stop-loss and take-profit levels, volatility, AI sentiment
and market statistics.

Run without arguments for the interactive search screen.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInteractive(cmd.Context())
		},
	}

	rootCmd.AddCommand(a.newAnalyzeCmd())
	rootCmd.AddCommand(a.newSearchCmd())
	rootCmd.AddCommand(a.newPromptCmd())
	rootCmd.AddCommand(a.newTrendingCmd())
	rootCmd.AddCommand(a.newHealthCmd())
	rootCmd.AddCommand(a.newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "Analysis service URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")

	return rootCmd
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.baseURL != "" {
		cfg.BackendURL = a.baseURL
	}
	if a.debug {
		cfg.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func (a *app) newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze QUERY",
		Short: "Analyze the best match for a trading pair",
		Long: `Resolve QUERY to its best match and print the analysis.
Example: tradeanalyser analyze BTC/USDT`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAnalyze(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "))
		},
	}
}

func (a *app) newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "List assets matching a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSearch(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "))
		},
	}
}

func (a *app) newPromptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Search and pick assets with interactive prompts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPrompt(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func (a *app) newTrendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trending",
		Short: "Show trending assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := NewSession(a.cfg)
			if err != nil {
				return err
			}
			console := a.console(cmd.OutOrStdout())
			coins, err := s.Client.Trending(cmd.Context())
			if err != nil {
				return a.report(console, s, err, "Trending failed: ")
			}
			fmt.Fprintln(cmd.OutOrStdout(), console.Styles().Trending(coins))
			return nil
		},
	}
}

func (a *app) newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the analysis service",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := NewSession(a.cfg)
			if err != nil {
				return err
			}
			console := a.console(cmd.OutOrStdout())
			h, err := s.Client.Health(cmd.Context())
			if err != nil {
				return a.report(console, s, err, "Health check failed: ")
			}
			fmt.Fprintln(cmd.OutOrStdout(), console.Styles().Health(h))
			return nil
		},
	}
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tradeanalyser %s\n", Version)
		},
	}
}

func (a *app) console(out io.Writer) *display.Console {
	return display.NewConsole(out, !a.cfg.NoColor)
}

// runAnalyze drives one explicit submit through the event loop and waits
// for its outcome.
func (a *app) runAnalyze(ctx context.Context, out io.Writer, query string) error {
	s, err := NewSession(a.cfg)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(ctx)
	defer stop()

	console := a.console(out)
	ctrl := s.Controller(console)

	g, gctx := errgroup.WithContext(ctx)
	loopCtx, cancelLoop := context.WithCancel(gctx)
	g.Go(func() error { return runLoop(loopCtx, ctrl) })
	g.Go(func() error {
		defer cancelLoop()
		ctrl.Submit(query)
		select {
		case <-console.Settled():
		case <-gctx.Done():
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if console.Err() != nil {
		return ErrReported
	}
	return ctx.Err()
}

// runSearch performs a single incremental lookup.
func (a *app) runSearch(ctx context.Context, out io.Writer, query string) error {
	s, err := NewSession(a.cfg)
	if err != nil {
		return err
	}

	console := a.console(out)
	results, err := s.Resolver.Search(ctx, query)
	if err != nil {
		return a.report(console, s, err, "")
	}
	if results == nil {
		return nil
	}
	console.RenderSuggestions(results)
	return nil
}

// report renders err as an error panel. Errors that are not already an
// ErrorState are mapped the same way the analyzer maps them.
func (a *app) report(console *display.Console, s *Session, err error, prefix string) error {
	var es *models.ErrorState
	if !errors.As(err, &es) {
		es = describe(err, s.Client.BaseURL(), prefix)
	}
	console.RenderError(es)
	return ErrReported
}

func signalContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
