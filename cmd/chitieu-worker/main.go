package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"chitieu/internal/amqp"
	"chitieu/internal/backend"
	"chitieu/internal/cli"
	"chitieu/internal/config"
	apphttp "chitieu/internal/http"
	applog "chitieu/internal/log"
	"chitieu/internal/services"
	gsheet "chitieu/internal/sheets/google"
	"chitieu/internal/worker"
)

const (
	amqpDialAttempts = 5
	shutdownTimeout  = 30 * time.Second
)

func main() {
	cfg, logger, err := cli.LoadConfig(applog.ComponentWorker, (*config.Config).ValidateWorker)
	if err == nil {
		logger.Info("Starting chitieu-worker")
		err = run(cfg, logger)
	}
	if err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped")
}

func run(cfg *config.Config, logger *applog.Logger) error {
	ctx, stop := cli.ShutdownContext()
	defer stop()

	repo, err := cli.InitSQLite(ctx, logger, cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return fmt.Errorf("backend configuration: %w", err)
	}
	sheetsClient, err := gsheet.New(ctx, backendCfg.SheetsOptions())
	if err != nil {
		return fmt.Errorf("initialize google sheets client: %w", err)
	}
	if err := sheetsClient.EnsureHeader(ctx); err != nil {
		logger.Warn("Could not verify sheet header", "error", err)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	syncWorker := worker.NewSyncWorker(repo, sheetsClient, cfg.SyncBatchSize)
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Startup sync check failed", "error", err)
	}

	processor := services.NewSyncProcessor(syncWorker, services.SyncProcessorConfig{
		PollInterval: cfg.SyncInterval,
		BatchSize:    cfg.SyncBatchSize,
	})
	if err := processor.Start(ctx); err != nil {
		return fmt.Errorf("start sync processor: %w", err)
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Ready:          repo.Ping,
		TrustedProxies: cfg.TrustedProxies,
		Logger:         logger.WithComponent(applog.ComponentHTTP),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)

	if cfg.AMQPURL != "" {
		client, err := amqp.DialWithRetry(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, amqpDialAttempts)
		if err != nil {
			// The periodic sweep still drains pending records
			logger.Warn("AMQP unavailable, relying on periodic sync", "error", err)
		} else {
			defer client.Close()
			g.Go(func() error {
				err := client.ConsumeRecordSync(gctx, syncWorker.HandleSyncMessage)
				if gctx.Err() != nil {
					return nil
				}
				return err
			})
		}
	} else {
		logger.Info("AMQP disabled, relying on periodic sync", "interval", cfg.SyncInterval)
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down worker")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := processor.Stop(shutdownCtx); err != nil {
			logger.Error("Sync processor stop error", "error", err)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		return nil
	})

	return g.Wait()
}
