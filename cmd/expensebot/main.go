package main

import (
	"context"
	"os"
	_ "time/tzdata"

	"golang.org/x/sync/errgroup"

	"expensebot/internal/amqp"
	"expensebot/internal/backend"
	"expensebot/internal/bot"
	"expensebot/internal/cli"
	"expensebot/internal/config"
	"expensebot/internal/core"
	"expensebot/internal/ratelimit"
	"expensebot/internal/services"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting expensebot")

	cfg, err := cli.LoadConfig((*config.Config).ValidateBot)
	if err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	loc, err := cfg.Location()
	if err != nil {
		logger.Error("Invalid timezone", "error", err, "timezone", cfg.Timezone)
		os.Exit(1)
	}

	ctx, cancel := cli.ShutdownContext(context.Background(), logger)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	repo, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer repo.Close()

	// Events are optional; without a broker the bot keeps working locally.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	clock := core.NewClock(loc)
	categories := services.NewCategoryService(repo)
	expenses := services.NewExpenseService(repo, categories, publisher, clock)
	stats := services.NewStatisticsService(repo, clock, cfg.Currency)
	router := bot.NewRouter(expenses, stats, categories, cfg.Currency)

	var limiter bot.Limiter
	if cfg.RateLimitPerMinute > 0 {
		rl := ratelimit.NewLimiter(ratelimit.Config{MessagesPerMinute: cfg.RateLimitPerMinute})
		defer rl.Stop()
		limiter = rl
	}

	tg, err := bot.New(cfg.TelegramToken, router, bot.NewAccessList(cfg.AccessIDs), limiter, logger)
	if err != nil {
		logger.Error("Failed to start Telegram bot", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return tg.Run(gctx) })

	if err := g.Wait(); err != nil {
		logger.Error("Bot stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Shutdown complete")
}
