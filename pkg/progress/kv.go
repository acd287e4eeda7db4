package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/goliatone/go-formwizard/pkg/field"
	"github.com/goliatone/go-formwizard/pkg/storage"
)

// ErrCorrupt wraps decode failures of a stored snapshot.
var ErrCorrupt = errors.New("progress: corrupt snapshot")

// KV adapts a storage.Store into a progress Store.
type KV struct {
	store      storage.Store
	serializer storage.Serializer
	logger     *slog.Logger
}

// Option configures KV.
type Option func(*KV)

// WithSerializer overrides the default JSON serializer.
func WithSerializer(s storage.Serializer) Option {
	return func(kv *KV) {
		if s != nil {
			kv.serializer = s
		}
	}
}

// WithLogger sets the logger used for decode diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(kv *KV) {
		if logger != nil {
			kv.logger = logger
		}
	}
}

// NewKV wraps store.
func NewKV(store storage.Store, opts ...Option) *KV {
	kv := &KV{
		store:      store,
		serializer: storage.JSON{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(kv)
		}
	}
	return kv
}

type wireSnapshot struct {
	Values         map[string]any `json:"formData"`
	CurrentStep    int            `json:"currentStep"`
	CompletedSteps []int          `json:"completedSteps"`
}

func (kv *KV) Save(ctx context.Context, key string, snap Snapshot) error {
	completed := snap.CompletedSteps
	if completed == nil {
		completed = []int{}
	}
	values := map[string]any(snap.Values)
	if values == nil {
		values = map[string]any{}
	}
	data, err := kv.serializer.Marshal(wireSnapshot{
		Values:         values,
		CurrentStep:    snap.CurrentStep,
		CompletedSteps: completed,
	})
	if err != nil {
		return fmt.Errorf("progress: encode %q: %w", key, err)
	}
	if err := kv.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("progress: save %q: %w", key, err)
	}
	return nil
}

func (kv *KV) Restore(ctx context.Context, key string) (Snapshot, bool, error) {
	data, err := kv.store.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("progress: restore %q: %w", key, err)
	}

	var wire wireSnapshot
	if err := kv.serializer.Unmarshal(data, &wire); err != nil {
		kv.logger.Debug("progress_decode_failed", "key", key, "bytes", len(data), "error", err)
		return Snapshot{}, false, fmt.Errorf("%w %q: %v", ErrCorrupt, key, err)
	}

	completed := slices.Clone(wire.CompletedSteps)
	slices.Sort(completed)
	return Snapshot{
		Values:         field.Normalize(wire.Values),
		CurrentStep:    wire.CurrentStep,
		CompletedSteps: slices.Compact(completed),
	}, true, nil
}

func (kv *KV) Clear(ctx context.Context, key string) error {
	if err := kv.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("progress: clear %q: %w", key, err)
	}
	return nil
}
