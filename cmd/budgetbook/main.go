package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"budgetbook/internal/cli"
	apphttp "budgetbook/internal/http"
	"budgetbook/internal/ledger"
	"budgetbook/internal/log"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	res := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := res.Close(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()

	l := ledger.Open(ctx, res.Store,
		ledger.WithKey(cfg.StoreKey),
		ledger.WithLogger(logger))

	srv := apphttp.NewServer(":"+cfg.Port, l, res.Sheets, logger)

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	}()

	logger.Info("Starting budgetbook server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"sheets", cfg.SheetsBackend,
		"publishing", res.Publishing)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		cancel()
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
