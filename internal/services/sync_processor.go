package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"budgetbook/internal/amqp"
	"budgetbook/internal/core"
	"budgetbook/internal/ledger"
	"budgetbook/internal/log"
	"budgetbook/internal/sheets"
	"budgetbook/internal/storage"

	"golang.org/x/sync/errgroup"
)

// SyncProcessorConfig holds configuration for the sheets sync processor
type SyncProcessorConfig struct {
	// Key is the blob key to mirror; messages for other keys are ignored (default: ledger.DefaultKey)
	Key string

	// Timeout bounds one full mirror of every user (default: 60s)
	Timeout time.Duration

	// Concurrency caps parallel per-user writes (default: 2)
	Concurrency int
}

// DefaultSyncProcessorConfig returns sensible defaults
func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		Key:         ledger.DefaultKey,
		Timeout:     60 * time.Second,
		Concurrency: 2,
	}
}

// SheetsSyncProcessor mirrors every user's tabular view to a spreadsheet
// backend whenever the stored document changes.
type SheetsSyncProcessor struct {
	store  storage.BlobStore
	sheets sheets.WorkbookWriter
	config SyncProcessorConfig
	logger *log.Logger

	mu           sync.Mutex
	lastRevision int64
}

func NewSheetsSyncProcessor(store storage.BlobStore, writer sheets.WorkbookWriter, config SyncProcessorConfig, logger *log.Logger) *SheetsSyncProcessor {
	defaults := DefaultSyncProcessorConfig()
	if config.Key == "" {
		config.Key = defaults.Key
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	if config.Concurrency <= 0 {
		config.Concurrency = defaults.Concurrency
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &SheetsSyncProcessor{
		store:  store,
		sheets: writer,
		config: config,
		logger: logger.WithComponent(log.ComponentSheets),
	}
}

// Process handles one change message. Messages for another key, or with a
// revision not newer than the last mirrored one, are skipped.
func (p *SheetsSyncProcessor) Process(ctx context.Context, msg *amqp.StoreChangedMessage) error {
	if msg == nil || msg.Key != p.config.Key {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if msg.Revision <= p.lastRevision {
		p.logger.DebugContext(ctx, "Skipping stale store change",
			log.FieldRevision, msg.Revision, "last_revision", p.lastRevision)
		return nil
	}

	if err := p.syncAll(ctx); err != nil {
		return err
	}
	p.lastRevision = msg.Revision
	return nil
}

// SyncAll mirrors the current document regardless of revisions.
func (p *SheetsSyncProcessor) SyncAll(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.syncAll(ctx)
}

func (p *SheetsSyncProcessor) syncAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	l, err := ledger.Load(ctx, p.store, ledger.WithKey(p.config.Key), ledger.WithLogger(p.logger))
	if errors.Is(err, storage.ErrNotFound) {
		p.logger.InfoContext(ctx, "Nothing stored yet, skipping sync", log.FieldKey, p.config.Key)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load ledger: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Concurrency)
	for _, user := range core.Users {
		wb, err := l.ExportWorkbook(user)
		if err != nil {
			return fmt.Errorf("export workbook for %s: %w", user, err)
		}
		g.Go(func() error {
			if err := p.sheets.WriteWorkbook(gctx, user, wb); err != nil {
				return fmt.Errorf("write workbook for %s: %w", user, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	p.logger.InfoContext(ctx, "Synced ledger to sheets", log.FieldKey, p.config.Key, log.FieldCount, len(core.Users))
	return nil
}
