package liststore_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/liststore"
	"github.com/goliatone/go-formwizard/pkg/storage"
)

type note struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Coach   string    `json:"coach"`
	Created time.Time `json:"createdDate"`
}

func (n note) ItemID() string { return n.ID }

func (n note) Stamp(id string, created time.Time) note {
	n.ID = id
	n.Created = created
	return n
}

var fixedNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func openNotes(t *testing.T, store storage.Store, opts ...liststore.Option) *liststore.List[note] {
	t.Helper()
	seq := 0
	base := []liststore.Option{
		liststore.WithClock(func() time.Time { return fixedNow }),
		liststore.WithIDFunc(func() string { seq++; return fmt.Sprintf("n%d", seq) }),
	}
	l, err := liststore.Open[note](context.Background(), store, "notes", append(base, opts...)...)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return l
}

func TestListAddAndReload(t *testing.T) {
	for _, tc := range []struct {
		name       string
		serializer storage.Serializer
	}{
		{"json", storage.JSON{}},
		{"msgpack", storage.MsgPack{}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			store := storage.NewMemory()
			l := openNotes(t, store, liststore.WithSerializer(tc.serializer))

			first, err := l.Add(ctx, note{Title: "Finishing drills", Coach: "Marta"})
			if err != nil {
				t.Fatalf("add: %v", err)
			}
			if first.ID != "n1" || !first.Created.Equal(fixedNow) {
				t.Fatalf("add should stamp id and time, got %+v", first)
			}
			if _, err := l.Add(ctx, note{Title: "Goalkeeping", Coach: "Iker"}); err != nil {
				t.Fatalf("add: %v", err)
			}

			reloaded, err := liststore.Open[note](ctx, store, "notes", liststore.WithSerializer(tc.serializer))
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			want := []note{
				{ID: "n2", Title: "Goalkeeping", Coach: "Iker", Created: fixedNow},
				{ID: "n1", Title: "Finishing drills", Coach: "Marta", Created: fixedNow},
			}
			if diff := cmp.Diff(want, reloaded.All()); diff != "" {
				t.Fatalf("reloaded list mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestListMutations(t *testing.T) {
	ctx := context.Background()
	l := openNotes(t, storage.NewMemory())
	for _, title := range []string{"Passing", "Dribbling", "Shooting"} {
		if _, err := l.Add(ctx, note{Title: title}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	ok, err := l.Update(ctx, "n2", func(n note) note { n.Coach = "Ana"; return n })
	if err != nil || !ok {
		t.Fatalf("update: %v %v", ok, err)
	}
	if got, _ := l.Get("n2"); got.Coach != "Ana" {
		t.Fatalf("update not applied: %+v", got)
	}
	if ok, _ := l.Update(ctx, "missing", func(n note) note { return n }); ok {
		t.Fatalf("update of unknown id should report false")
	}

	if err := l.Remove(ctx, "n1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := l.Remove(ctx, "n1"); err != nil {
		t.Fatalf("second remove should be a no-op: %v", err)
	}
	if _, ok := l.Get("n1"); ok || l.Len() != 2 {
		t.Fatalf("remove failed, len %d", l.Len())
	}

	added, err := l.Insert(ctx, note{ID: "n3", Title: "dup"})
	if err != nil || added {
		t.Fatalf("insert of existing id should be refused: %v %v", added, err)
	}
	added, err = l.Insert(ctx, note{ID: "ext-1", Title: "External"})
	if err != nil || !added {
		t.Fatalf("insert: %v %v", added, err)
	}
	if l.All()[0].ID != "ext-1" {
		t.Fatalf("insert should prepend")
	}

	if err := l.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("clear left %d items", l.Len())
	}
}

func TestListSearchAndFind(t *testing.T) {
	ctx := context.Background()
	l := openNotes(t, storage.NewMemory())
	for _, n := range []note{
		{Title: "Finishing drills", Coach: "Marta"},
		{Title: "Goalkeeping", Coach: "Iker"},
		{Title: "Small sided games", Coach: "MARTIN"},
	} {
		if _, err := l.Add(ctx, n); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	titles := func(items []note) []string {
		var out []string
		for _, n := range items {
			out = append(out, n.Title)
		}
		return out
	}
	byTitle := func(n note) string { return n.Title }
	byCoach := func(n note) string { return n.Coach }

	if diff := cmp.Diff([]string{"Small sided games", "Finishing drills"}, titles(l.Search("mart", byTitle, byCoach))); diff != "" {
		t.Fatalf("search mismatch (-want +got):\n%s", diff)
	}
	if got := l.Search("mart", byTitle); len(got) != 0 {
		t.Fatalf("search should only look at the given fields, got %v", titles(got))
	}
	if got := l.Search("   ", byTitle); len(got) != 3 {
		t.Fatalf("blank search should return all, got %d", len(got))
	}
	found := l.Find(func(n note) bool { return strings.HasPrefix(n.Title, "G") })
	if diff := cmp.Diff([]string{"Goalkeeping"}, titles(found)); diff != "" {
		t.Fatalf("find mismatch (-want +got):\n%s", diff)
	}
}

func TestListCorruptValueLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	if err := store.Set(ctx, "notes", []byte("{not json")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	l := openNotes(t, store)
	if l.Len() != 0 {
		t.Fatalf("corrupt data should load empty, got %d", l.Len())
	}
}

type failingStore struct {
	storage.Store
}

func (failingStore) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestListFailedSaveKeepsState(t *testing.T) {
	ctx := context.Background()
	l := openNotes(t, failingStore{Store: storage.NewMemory()})
	if _, err := l.Add(ctx, note{Title: "Passing"}); err == nil {
		t.Fatalf("expected save error")
	}
	if l.Len() != 0 {
		t.Fatalf("failed save should not change the list")
	}
}
