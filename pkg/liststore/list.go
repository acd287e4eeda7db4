// Package liststore keeps an ordered list of records under one storage key.
// The list is loaded once when opened and written back after every
// mutation. Records are kept newest first.
package liststore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-formwizard/pkg/storage"
)

// Item is implemented by stored records. Stamp returns a copy carrying a
// generated id and creation time.
type Item[T any] interface {
	ItemID() string
	Stamp(id string, created time.Time) T
}

// List is safe for concurrent use.
type List[T Item[T]] struct {
	store      storage.Store
	key        string
	serializer storage.Serializer
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string

	mu    sync.RWMutex
	items []T
}

// Option configures a List.
type Option func(*config)

type config struct {
	serializer storage.Serializer
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string
}

// WithSerializer overrides the default JSON serializer.
func WithSerializer(s storage.Serializer) Option {
	return func(c *config) {
		if s != nil {
			c.serializer = s
		}
	}
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides time.Now for creation stamps.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDFunc overrides the random UUID generator.
func WithIDFunc(fn func() string) Option {
	return func(c *config) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// Open loads the list stored under key. A missing key yields an empty list;
// an unreadable value is logged and also treated as empty.
func Open[T Item[T]](ctx context.Context, store storage.Store, key string, opts ...Option) (*List[T], error) {
	if store == nil {
		return nil, errors.New("liststore: store is required")
	}
	cfg := config{
		serializer: storage.JSON{},
		logger:     slog.Default(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	l := &List[T]{
		store:      store,
		key:        key,
		serializer: cfg.serializer,
		logger:     cfg.logger,
		now:        cfg.now,
		newID:      cfg.newID,
	}

	data, err := store.Get(ctx, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return l, nil
	case err != nil:
		return nil, fmt.Errorf("liststore: load %q: %w", key, err)
	}
	var items []T
	if err := l.serializer.Unmarshal(data, &items); err != nil {
		l.logger.Error("liststore_load_failed", "key", key, "error", err)
		return l, nil
	}
	l.items = items
	return l, nil
}

// Add stamps item with a fresh id and the current time and prepends it.
func (l *List[T]) Add(ctx context.Context, item T) (T, error) {
	stamped := item.Stamp(l.newID(), l.now().UTC())

	l.mu.Lock()
	defer l.mu.Unlock()
	next := append([]T{stamped}, l.items...)
	if err := l.saveLocked(ctx, next); err != nil {
		var zero T
		return zero, err
	}
	return stamped, nil
}

// Insert prepends item as is unless a record with the same id exists. It
// reports whether the item was added.
func (l *List[T]) Insert(ctx context.Context, item T) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.indexLocked(item.ItemID()) >= 0 {
		return false, nil
	}
	if err := l.saveLocked(ctx, append([]T{item}, l.items...)); err != nil {
		return false, err
	}
	return true, nil
}

// Remove drops the record with id. Removing an unknown id is a no-op.
func (l *List[T]) Remove(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexLocked(id)
	if i < 0 {
		return nil
	}
	return l.saveLocked(ctx, slices.Delete(slices.Clone(l.items), i, i+1))
}

// Update replaces the record with id by fn's result and reports whether a
// record matched.
func (l *List[T]) Update(ctx context.Context, id string, fn func(T) T) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexLocked(id)
	if i < 0 {
		return false, nil
	}
	next := slices.Clone(l.items)
	next[i] = fn(next[i])
	if err := l.saveLocked(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// Get returns the record with id.
func (l *List[T]) Get(id string) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.indexLocked(id); i >= 0 {
		return l.items[i], true
	}
	var zero T
	return zero, false
}

// All returns a copy of every record, newest first.
func (l *List[T]) All() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.items)
}

// Len returns the number of records.
func (l *List[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Find returns the records matching pred.
func (l *List[T]) Find(pred func(T) bool) []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []T
	for _, item := range l.items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// Search returns records where any of fields contains query, ignoring case.
// A blank query returns every record.
func (l *List[T]) Search(query string, fields ...func(T) string) []T {
	if strings.TrimSpace(query) == "" {
		return l.All()
	}
	needle := strings.ToLower(query)
	return l.Find(func(item T) bool {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(f(item)), needle) {
				return true
			}
		}
		return false
	})
}

// Clear empties the list and deletes its key.
func (l *List[T]) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.store.Delete(ctx, l.key); err != nil {
		return fmt.Errorf("liststore: clear %q: %w", l.key, err)
	}
	l.items = nil
	return nil
}

func (l *List[T]) indexLocked(id string) int {
	return slices.IndexFunc(l.items, func(item T) bool { return item.ItemID() == id })
}

// saveLocked persists next and only then makes it current, so a failed
// write leaves the in-memory list unchanged.
func (l *List[T]) saveLocked(ctx context.Context, next []T) error {
	data, err := l.serializer.Marshal(next)
	if err != nil {
		return fmt.Errorf("liststore: encode %q: %w", l.key, err)
	}
	if err := l.store.Set(ctx, l.key, data); err != nil {
		return fmt.Errorf("liststore: save %q: %w", l.key, err)
	}
	l.items = next
	return nil
}
