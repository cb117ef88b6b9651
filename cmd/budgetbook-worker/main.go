package main

import (
	"os"

	"budgetbook/internal/amqp"
	"budgetbook/internal/cli"
	"budgetbook/internal/config"
	"budgetbook/internal/log"
	"budgetbook/internal/services"
	"budgetbook/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentWorker)
	logger.Info("Starting budgetbook-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}
	if cfg.SheetsBackend == config.BackendNone {
		logger.Error("SHEETS_BACKEND must not be none for the worker")
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	// The worker only reads the store, so it does not announce saves.
	storeCfg := *cfg
	storeCfg.AMQPURL = ""
	res := cli.InitBackend(ctx, logger, &storeCfg)
	defer res.Close()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	processor := services.NewSheetsSyncProcessor(res.Store, res.Sheets, services.SyncProcessorConfig{
		Key: cfg.StoreKey,
	}, logger)

	w := worker.NewSyncWorker(client, processor, cfg.SyncInterval, logger)
	if err := w.Run(ctx); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
