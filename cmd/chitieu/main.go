package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"chitieu/internal/backend"
	"chitieu/internal/cache"
	"chitieu/internal/cli"
	"chitieu/internal/config"
	"chitieu/internal/conversation"
	apphttp "chitieu/internal/http"
	applog "chitieu/internal/log"
	"chitieu/internal/telegram"
)

const (
	cacheSweepInterval = 10 * time.Minute
	shutdownTimeout    = 30 * time.Second
)

func main() {
	cfg, logger, err := cli.LoadConfig(applog.ComponentApp, (*config.Config).ValidateBot)
	if err == nil {
		err = run(cfg, logger)
	}
	if err != nil {
		logger.Error("Bot stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Bot stopped")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	ctx, stop := cli.ShutdownContext()
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return fmt.Errorf("backend configuration: %w", err)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return fmt.Errorf("initialize %s backend: %w", backendCfg.Type, err)
	}
	defer func() {
		if err := result.Close(); err != nil {
			logger.Error("Backend cleanup failed", "error", err)
		}
	}()

	store := conversation.NewStore(conversation.StoreConfig{
		MaxConversations: cfg.MaxConversations,
		TTL:              cfg.ConversationTTL,
	})
	caches := cache.NewManager()
	caches.Register(store)
	caches.StartCleanup(cacheSweepInterval)
	defer caches.Stop()

	machine := conversation.NewMachine(store, result.Backend, conversation.WithLocation(cfg.Location()))

	api, err := telegram.Connect(cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("connect to telegram: %w", err)
	}
	bot := telegram.NewBot(api, machine, telegram.Config{
		MaxConcurrent: cfg.MaxConcurrentUpdates,
		Fallback:      conversation.MainMenu(),
	})

	opts := apphttp.Options{
		Ready:          result.CheckReady,
		TrustedProxies: cfg.TrustedProxies,
		Logger:         logger.WithComponent(applog.ComponentHTTP),
	}
	if cfg.TelegramMode == config.TelegramWebhook {
		opts.Webhook = bot.WebhookHandler(cfg.TelegramWebhookSecret)
		if cfg.TelegramWebhookURL != "" {
			if err := bot.RegisterWebhook(cfg.TelegramWebhookURL, cfg.TelegramWebhookSecret); err != nil {
				return fmt.Errorf("register webhook: %w", err)
			}
		}
	}
	srv := apphttp.NewServer(":"+cfg.Port, opts)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting server",
			"port", cfg.Port,
			"backend", backendCfg.Type,
			"telegram_mode", cfg.TelegramMode)
		return srv.ListenAndServe()
	})
	if cfg.TelegramMode == config.TelegramPolling {
		g.Go(func() error {
			return bot.Poll(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		bot.Wait()
		return nil
	})

	return g.Wait()
}
