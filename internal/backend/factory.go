package backend

import (
	"context"
	"errors"
	"fmt"

	"budgetbook/internal/amqp"
	"budgetbook/internal/log"
	"budgetbook/internal/services"
	"budgetbook/internal/sheets"
	gsheet "budgetbook/internal/sheets/google"
	sheetsmem "budgetbook/internal/sheets/memory"
	"budgetbook/internal/storage"
	"budgetbook/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var cleanups []CleanupFunc
	result := &BackendResult{}
	result.Cleanup = func() error {
		var errs []error
		for i := len(cleanups) - 1; i >= 0; i-- {
			errs = append(errs, cleanups[i]())
		}
		return errors.Join(errs...)
	}

	store, cleanup, err := f.createStore(config)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		cleanups = append(cleanups, cleanup)
	}
	result.Store = store

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without change fan-out", log.FieldError, err)
		} else {
			cleanups = append(cleanups, client.Close)
			result.Store = services.NewPublishingStore(store, client, f.logger)
			result.Publishing = true
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	result.Sheets, err = f.createSheets(ctx, config)
	if err != nil {
		_ = result.Close()
		return nil, err
	}
	return result, nil
}

func (f *DefaultFactory) createStore(config Config) (storage.BlobStore, CleanupFunc, error) {
	switch config.Type {
	case SQLiteBackend:
		s, err := storage.NewSQLiteStore(config.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return s, s.Close, nil
	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return memory.New(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSheets(ctx context.Context, config Config) (sheets.WorkbookStore, error) {
	switch config.Sheets {
	case GoogleSheets:
		cli, err := gsheet.New(ctx, gsheet.Options{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			CredentialsJSON: config.GoogleServiceAccountJSON,
			CredentialsFile: config.GoogleServiceAccountFile,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.InfoContext(ctx, "Initialized Google Sheets mirror", "spreadsheet_id", config.GoogleSpreadsheetID)
		return cli, nil
	case MemorySheets:
		return sheetsmem.New(), nil
	default:
		return nil, nil
	}
}
