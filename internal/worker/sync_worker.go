package worker

import (
	"context"
	"errors"
	"time"

	"budgetbook/internal/amqp"
	"budgetbook/internal/log"

	"golang.org/x/sync/errgroup"
)

// Consumer delivers store change notifications.
type Consumer interface {
	ConsumeStoreChanged(ctx context.Context, handler func(context.Context, *amqp.StoreChangedMessage) error) error
}

// Syncer mirrors the ledger somewhere.
type Syncer interface {
	Process(ctx context.Context, msg *amqp.StoreChangedMessage) error
	SyncAll(ctx context.Context) error
}

// SyncWorker drives a Syncer from AMQP deliveries, with a startup sync and
// a periodic full sync as backup for lost messages.
type SyncWorker struct {
	consumer Consumer
	syncer   Syncer
	interval time.Duration
	logger   *log.Logger
}

func NewSyncWorker(consumer Consumer, syncer Syncer, interval time.Duration, logger *log.Logger) *SyncWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &SyncWorker{
		consumer: consumer,
		syncer:   syncer,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Run blocks until ctx is done or consumption fails for good. A cancelled
// context is a clean shutdown and returns nil.
func (w *SyncWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Performing startup sync")
	if err := w.syncer.SyncAll(ctx); err != nil {
		// Keep going; the next message or tick retries.
		w.logger.ErrorContext(ctx, "Startup sync failed", log.FieldError, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	if w.consumer != nil {
		g.Go(func() error {
			return w.consumer.ConsumeStoreChanged(gctx, w.handle)
		})
	}
	if w.interval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(w.interval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case <-ticker.C:
					if err := w.syncer.SyncAll(gctx); err != nil {
						w.logger.ErrorContext(gctx, "Periodic sync failed", log.FieldError, err)
					}
				}
			}
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		w.logger.InfoContext(ctx, "Sync worker stopped")
		return nil
	}
	return err
}

func (w *SyncWorker) handle(ctx context.Context, msg *amqp.StoreChangedMessage) error {
	w.logger.DebugContext(ctx, "Processing store change", log.FieldKey, msg.Key, log.FieldRevision, msg.Revision)
	return w.syncer.Process(ctx, msg)
}
