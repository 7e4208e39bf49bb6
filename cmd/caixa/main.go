package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"caixa/internal/amqp"
	"caixa/internal/backend"
	"caixa/internal/command"
	"caixa/internal/config"
	"caixa/internal/core"
	"caixa/internal/ledger"
	"caixa/internal/log"
	"caixa/internal/notify"
	"caixa/internal/schedule"
	"caixa/internal/services"
	"caixa/internal/telegram"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{Level: slog.LevelInfo, Component: log.ComponentApp})
	log.SetDefault(logger)

	logger.Info("starting caixa")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := backend.NewFactory(logger).Create(ctx, cfg)
	if err != nil {
		logger.Error("failed to initialize storage backend",
			log.FieldBackend, cfg.DataBackend, log.FieldError, err)
		os.Exit(1)
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("backend cleanup failed", log.FieldError, err)
		}
	}()

	mode := core.Monthly
	if cfg.PeriodMode == "running" {
		mode = core.Running
	}

	var storeOpts []ledger.Option
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("failed to initialize AMQP client, continuing without events",
				log.FieldError, err)
		} else {
			defer amqpClient.Close()
			storeOpts = append(storeOpts, ledger.WithPublisher(amqpClient))
			logger.Info("AMQP events enabled",
				"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	store := ledger.New(result.Snapshotter, mode, logger, storeOpts...)
	if err := store.Load(ctx); err != nil {
		// A malformed snapshot must abort startup, never start empty.
		logger.Error("failed to restore ledger state", log.FieldError, err)
		os.Exit(1)
	}

	bot := telegram.NewClient(cfg.TelegramToken, logger)
	router := command.NewRouter(store, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return bot.Poll(gctx, func(ctx context.Context, _ int64, text string) string {
			return router.Handle(ctx, text)
		})
	})

	if cfg.TelegramChatID != "" {
		loc, err := time.LoadLocation(cfg.TZName)
		if err != nil {
			logger.Error("failed to load timezone", log.FieldError, err)
			os.Exit(1)
		}
		days, err := schedule.ParseDays(cfg.ScheduleDays)
		if err != nil {
			logger.Error("invalid SCHEDULE_DAYS", log.FieldError, err)
			os.Exit(1)
		}
		weekdays, err := schedule.ParseWeekdays(cfg.ScheduleWeekdays)
		if err != nil {
			logger.Error("invalid SCHEDULE_WEEKDAYS", log.FieldError, err)
			os.Exit(1)
		}
		rule, err := schedule.NewRule(days, weekdays, cfg.ScheduleHour, cfg.ScheduleMinute, loc)
		if err != nil {
			logger.Error("invalid schedule rule", log.FieldError, err)
			os.Exit(1)
		}

		notifier := notify.New(bot, logger)
		reports := services.NewReportService(store, notifier, cfg.TelegramChatID,
			cfg.ReportPreviousPeriod, logger)
		scheduler := schedule.New(rule, reports.SendScheduledReport, logger)

		g.Go(func() error {
			return scheduler.Start(gctx)
		})
	} else {
		logger.Info("TELEGRAM_CHAT_ID not set, scheduled reports disabled")
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("caixa stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("caixa stopped gracefully")
}
