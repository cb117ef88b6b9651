// Package ledger owns the household document and every operation on it.
//
// A Ledger loads the document once from a storage.BlobStore, serves reads
// from memory and writes the whole document back after each mutation.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/log"
	"budgetbook/internal/storage"

	"github.com/google/uuid"
)

// DefaultKey is the blob key the document is stored under.
const DefaultKey = "expense_manager_data"

type Ledger struct {
	mu     sync.Mutex
	doc    *core.Document
	store  storage.BlobStore
	key    string
	logger *log.Logger
	newID  func() string
	now    func() time.Time
}

type Option func(*Ledger)

// WithKey overrides the blob key.
func WithKey(key string) Option {
	return func(l *Ledger) {
		if key != "" {
			l.key = key
		}
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger.WithComponent(log.ComponentLedger)
		}
	}
}

// WithIDGenerator replaces the random id source, mainly for tests.
func WithIDGenerator(gen func() string) Option {
	return func(l *Ledger) {
		if gen != nil {
			l.newID = gen
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// Open loads the document from store. A missing, unreadable or malformed
// blob is logged and replaced by the default document; Open never fails.
func Open(ctx context.Context, store storage.BlobStore, opts ...Option) *Ledger {
	l := newLedger(store, opts)
	doc, err := l.read(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		l.logger.InfoContext(ctx, "No stored document, starting from defaults", "key", l.key)
		doc = core.DefaultDocument()
	case err != nil:
		l.logger.WarnContext(ctx, "Failed to load document, starting from defaults",
			"key", l.key, log.FieldError, err)
		doc = core.DefaultDocument()
	}
	l.doc = doc
	return l
}

// Load is the strict form of Open: any load or decode failure is
// returned, storage.ErrNotFound included.
func Load(ctx context.Context, store storage.BlobStore, opts ...Option) (*Ledger, error) {
	l := newLedger(store, opts)
	doc, err := l.read(ctx)
	if err != nil {
		return nil, err
	}
	l.doc = doc
	return l, nil
}

func newLedger(store storage.BlobStore, opts []Option) *Ledger {
	l := &Ledger{
		store:  store,
		key:    DefaultKey,
		logger: log.New(log.DefaultConfig()).WithComponent(log.ComponentLedger),
		newID:  uuid.NewString,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) read(ctx context.Context) (*core.Document, error) {
	data, err := l.store.Load(ctx, l.key)
	if err != nil {
		return nil, fmt.Errorf("load document %q: %w", l.key, err)
	}
	doc, err := core.DecodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("decode document %q: %w", l.key, err)
	}
	l.logger.DebugContext(ctx, "Document loaded", "key", l.key, "bytes", len(data))
	return doc, nil
}

// persist writes the whole document. Callers hold l.mu.
func (l *Ledger) persist(ctx context.Context) error {
	data, err := json.Marshal(l.doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := l.store.Save(ctx, l.key, data); err != nil {
		l.logger.ErrorContext(ctx, "Failed to persist document", "key", l.key, log.FieldError, err)
		return fmt.Errorf("persist document: %w", err)
	}
	return nil
}

// Save persists the current document, including forecasts created by
// the Forecast accessor.
func (l *Ledger) Save(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.persist(ctx)
}

// Reset replaces everything with the default document.
func (l *Ledger) Reset(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.doc = core.DefaultDocument()
	l.logger.InfoContext(ctx, "Document reset to defaults")
	return l.persist(ctx)
}

// Now returns the ledger clock's current time.
func (l *Ledger) Now() time.Time {
	return l.now()
}

// Document returns a deep copy of the whole document.
func (l *Ledger) Document() *core.Document {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneDocument(l.doc)
}

// User returns a deep copy of one user's data.
func (l *Ledger) User(id core.UserID) (*core.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	u := l.doc.Users[id]
	if u == nil {
		return nil, core.ErrUnknownUser
	}
	return cloneUser(u), nil
}

// user returns the live record. Callers hold l.mu.
func (l *Ledger) user(id core.UserID) (*core.User, error) {
	u := l.doc.Users[id]
	if u == nil {
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownUser, id)
	}
	return u, nil
}

// mutate runs fn against the live user under the lock and persists when
// fn reports a change.
func (l *Ledger) mutate(ctx context.Context, id core.UserID, fn func(u *core.User) (bool, error)) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, err := l.user(id)
	if err != nil {
		return false, err
	}
	changed, err := fn(u)
	if err != nil || !changed {
		return changed, err
	}
	if err := l.persist(ctx); err != nil {
		return true, err
	}
	return true, nil
}
