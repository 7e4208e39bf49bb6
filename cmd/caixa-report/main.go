// caixa-report prints the report for one period to stdout. Useful for
// inspecting a snapshot without a bot token.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"caixa/internal/backend"
	"caixa/internal/config"
	"caixa/internal/core"
	"caixa/internal/ledger"
	"caixa/internal/log"
	"caixa/internal/services"
)

func main() {
	_ = godotenv.Load()

	var period string
	flag.StringVar(&period, "period", "", "period to report (YYYY-MM or 'geral'; default: current)")
	flag.Parse()

	// Quiet by default: stdout carries the report, diagnostics go to stderr.
	logger := log.New(log.Config{
		Level:   slog.LevelWarn,
		Handler: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}),
	})

	cfg := config.Load()
	ctx := context.Background()

	result, err := backend.NewFactory(logger).Create(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize storage backend", log.FieldError, err)
		os.Exit(1)
	}
	defer result.Cleanup()

	mode := core.Monthly
	if cfg.PeriodMode == "running" {
		mode = core.Running
	}

	store := ledger.New(result.Snapshotter, mode, logger)
	if err := store.Load(ctx); err != nil {
		logger.Error("failed to restore ledger state", log.FieldError, err)
		os.Exit(1)
	}

	if period == "" {
		period = store.CurrentPeriod()
	}
	if !core.ValidPeriodKey(period) {
		fmt.Fprintf(os.Stderr, "invalid period %q: use YYYY-MM or 'geral'\n", period)
		os.Exit(2)
	}

	fmt.Println(services.BuildReport(store, period))
}
