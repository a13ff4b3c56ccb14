package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nforb26-art/tradeanalyser/internal/logger"
	"github.com/nforb26-art/tradeanalyser/internal/mockapi"
)

func main() {
	var (
		addr    string
		latency time.Duration
		level   string
	)

	cmd := &cobra.Command{
		Use:   "mockapi",
		Short: "Serve a canned analysis service for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := logger.New(&logger.Config{Level: level, Format: "console", Output: "stderr"})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := mockapi.New(mockapi.WithLatency(latency), mockapi.WithLogger(log))
			return srv.Start(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8000", "Listen address")
	cmd.Flags().DurationVar(&latency, "latency", 0, "Delay added to every response")
	cmd.Flags().StringVar(&level, "log-level", "info", "Log level")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
