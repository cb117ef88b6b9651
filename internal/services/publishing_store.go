package services

import (
	"context"
	"time"

	"budgetbook/internal/amqp"
	"budgetbook/internal/log"
	"budgetbook/internal/storage"
)

// Publisher announces persisted revisions.
type Publisher interface {
	PublishStoreChanged(ctx context.Context, msg *amqp.StoreChangedMessage) error
}

// PublishingStore decorates a BlobStore and publishes a change message
// after every successful Save.
type PublishingStore struct {
	storage.BlobStore
	publisher Publisher
	logger    *log.Logger
	now       func() time.Time
}

var _ storage.BlobStore = (*PublishingStore)(nil)

func NewPublishingStore(store storage.BlobStore, publisher Publisher, logger *log.Logger) *PublishingStore {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &PublishingStore{
		BlobStore: store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentAMQP),
		now:       time.Now,
	}
}

// Save persists data and then publishes. A publish failure is logged and
// not returned: the data is already stored.
func (s *PublishingStore) Save(ctx context.Context, key string, data []byte) error {
	if err := s.BlobStore.Save(ctx, key, data); err != nil {
		return err
	}
	if s.publisher == nil {
		return nil
	}
	msg := amqp.NewStoreChangedMessage(key, s.now().UnixNano())
	if err := s.publisher.PublishStoreChanged(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish store change",
			log.FieldKey, key,
			log.FieldRevision, msg.Revision,
			log.FieldError, err)
	}
	return nil
}
