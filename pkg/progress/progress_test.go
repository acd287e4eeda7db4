package progress_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-formwizard/pkg/field"
	"github.com/goliatone/go-formwizard/pkg/progress"
	"github.com/goliatone/go-formwizard/pkg/storage"
)

func stores(t *testing.T) map[string]progress.Store {
	t.Helper()
	return map[string]progress.Store{
		"memory":     progress.NewMemory(),
		"kv-json":    progress.NewKV(storage.NewMemory()),
		"kv-msgpack": progress.NewKV(storage.NewMemory(), progress.WithSerializer(storage.MsgPack{})),
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	key := progress.Key(progress.WizardNamespace, "K")
	want := progress.Snapshot{
		Values:         field.Values{"a": "x"},
		CurrentStep:    1,
		CompletedSteps: []int{0},
	}

	for name, store := range stores(t) {
		if err := store.Save(ctx, key, want); err != nil {
			t.Fatalf("%s Save: %v", name, err)
		}
		got, ok, err := store.Restore(ctx, key)
		if err != nil || !ok {
			t.Fatalf("%s Restore: ok=%v err=%v", name, ok, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%s snapshot mismatch (-want +got):\n%s", name, diff)
		}
	}
}

func TestRestoreUnknownKey(t *testing.T) {
	t.Parallel()

	for name, store := range stores(t) {
		snap, ok, err := store.Restore(context.Background(), "stepApplicationFormMeta-unknown")
		if err != nil {
			t.Fatalf("%s: unknown key should not error, got %v", name, err)
		}
		if ok {
			t.Fatalf("%s: unknown key should report ok=false", name)
		}
		if diff := cmp.Diff(progress.Snapshot{}, snap); diff != "" {
			t.Fatalf("%s: expected empty snapshot (-want +got):\n%s", name, diff)
		}
	}
}

func TestClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	for name, store := range stores(t) {
		if err := store.Save(ctx, "k", progress.Snapshot{CurrentStep: 2}); err != nil {
			t.Fatalf("%s Save: %v", name, err)
		}
		if err := store.Clear(ctx, "k"); err != nil {
			t.Fatalf("%s Clear: %v", name, err)
		}
		if _, ok, _ := store.Restore(ctx, "k"); ok {
			t.Fatalf("%s: snapshot survived Clear", name)
		}
	}
}

func TestKVRestoresFileRefs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ref := field.FileRef{URL: "https://cdn.example/documents/resume/cv.pdf", Name: "cv.pdf", Key: "resume/cv.pdf", Size: 2048, Type: "application/pdf"}
	want := progress.Snapshot{
		Values:         field.Values{"resume": ref, "licensed": "yes", "terms": true, "note": nil},
		CurrentStep:    3,
		CompletedSteps: []int{0, 1, 2},
	}

	for _, serializer := range []storage.Serializer{storage.JSON{}, storage.MsgPack{}} {
		kv := progress.NewKV(storage.NewMemory(), progress.WithSerializer(serializer))
		if err := kv.Save(ctx, "k", want); err != nil {
			t.Fatalf("%T Save: %v", serializer, err)
		}
		got, ok, err := kv.Restore(ctx, "k")
		if err != nil || !ok {
			t.Fatalf("%T Restore: ok=%v err=%v", serializer, ok, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%T mismatch (-want +got):\n%s", serializer, diff)
		}
	}
}

func TestKVWireShape(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backing := storage.NewMemory()
	kv := progress.NewKV(backing)
	if err := kv.Save(ctx, "stepApplicationFormMeta-player", progress.Snapshot{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, err := backing.Get(ctx, "stepApplicationFormMeta-player")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got, want := string(raw), `{"formData":{},"currentStep":0,"completedSteps":[]}`; got != want {
		t.Fatalf("wire shape mismatch\nwant %s\ngot  %s", want, got)
	}

	got, ok, err := kv.Restore(ctx, "stepApplicationFormMeta-player")
	if err != nil || !ok {
		t.Fatalf("Restore: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(progress.Snapshot{Values: field.Values{}}, got, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestKVCorruptData(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backing := storage.NewMemory()
	_ = backing.Set(ctx, "k", []byte("{not json"))

	_, ok, err := progress.NewKV(backing).Restore(ctx, "k")
	if ok || !errors.Is(err, progress.ErrCorrupt) {
		t.Fatalf("want ErrCorrupt, got ok=%v err=%v", ok, err)
	}
}

func TestKeyNamespaces(t *testing.T) {
	t.Parallel()

	if got := progress.Key(progress.WizardNamespace, "player"); got != "stepApplicationFormMeta-player" {
		t.Fatalf("unexpected wizard key %q", got)
	}
	if got := progress.Key(progress.FormNamespace, "contact"); got != "applicationFormMeta-contact" {
		t.Fatalf("unexpected form key %q", got)
	}
}
