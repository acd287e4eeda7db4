package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/storage"
)

func backends(t *testing.T) map[string]storage.Store {
	t.Helper()

	dir, err := storage.NewDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	db, err := storage.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	sqlite, err := storage.NewSQLite(context.Background(), db)
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}

	return map[string]storage.Store{
		"memory": storage.NewMemory(),
		"dir":    dir,
		"sqlite": sqlite,
	}
}

func TestStoreContract(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	for name, store := range backends(t) {
		store := store
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
				t.Fatalf("want ErrNotFound, got %v", err)
			}

			key := "stepApplicationFormMeta-player/new"
			if err := store.Set(ctx, key, []byte("one")); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := store.Set(ctx, key, []byte("two")); err != nil {
				t.Fatalf("Set overwrite: %v", err)
			}
			got, err := store.Get(ctx, key)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != "two" {
				t.Fatalf("want last write, got %q", got)
			}

			if err := store.Delete(ctx, key); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if err := store.Delete(ctx, key); err != nil {
				t.Fatalf("Delete missing: %v", err)
			}
			if _, err := store.Get(ctx, key); !errors.Is(err, storage.ErrNotFound) {
				t.Fatalf("want ErrNotFound after delete, got %v", err)
			}
		})
	}
}

func TestMemoryIsolatesCallerBuffers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemory()
	buf := []byte("abc")
	if err := store.Set(ctx, "k", buf); err != nil {
		t.Fatalf("Set: %v", err)
	}
	buf[0] = 'x'
	got, _ := store.Get(ctx, "k")
	if string(got) != "abc" {
		t.Fatalf("stored value changed with caller buffer: %q", got)
	}
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := storage.NewMemory().Set(ctx, "k", nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

type record struct {
	Name  string         `json:"name"`
	Step  int            `json:"step"`
	Done  []int          `json:"done"`
	Extra map[string]any `json:"extra"`
}

func TestSerializers(t *testing.T) {
	t.Parallel()

	in := record{Name: "Ada", Step: 2, Done: []int{0, 1}, Extra: map[string]any{"licensed": "yes"}}
	for name, s := range map[string]storage.Serializer{
		"json":    storage.JSON{},
		"pretty":  storage.JSON{Pretty: true},
		"msgpack": storage.MsgPack{},
	} {
		data, err := s.Marshal(in)
		if err != nil {
			t.Fatalf("%s Marshal: %v", name, err)
		}
		var out record
		if err := s.Unmarshal(data, &out); err != nil {
			t.Fatalf("%s Unmarshal: %v", name, err)
		}
		if diff := cmp.Diff(in, out); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}

	var out record
	if err := (storage.MsgPack{}).Unmarshal(nil, &out); !errors.Is(err, storage.ErrInvalidData) {
		t.Fatalf("want ErrInvalidData, got %v", err)
	}
}
