package field

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormatPhone(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"98", "98"},
		{"987", "987-"},
		{"98765", "987-65"},
		{"9876543210", "987-654-3210"},
		{"987-654-3210", "987-654-3210"},
		{"(987) 654 3210 99", "987-654-3210"},
	}
	for _, tc := range cases {
		if got := FormatPhone(tc.in); got != tc.want {
			t.Errorf("FormatPhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCheckRejectsDuplicateNamesAcrossSteps(t *testing.T) {
	t.Parallel()

	steps := []Step{
		{Title: "One", Fields: []Field{Text{Base: Base{Name: "email", Label: "Email"}}}},
		{Title: "Two", Fields: []Field{Text{Base: Base{Name: "email", Label: "Email again"}, TextKind: KindEmail}}},
	}
	if err := Check(steps); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestCheckRejectsInvalidTextKind(t *testing.T) {
	t.Parallel()

	steps := []Step{{Fields: []Field{Text{Base: Base{Name: "x"}, TextKind: KindDate}}}}
	if err := Check(steps); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
	if err := Check(nil); !errors.Is(err, ErrNoSteps) {
		t.Fatalf("expected ErrNoSteps, got %v", err)
	}
}

func TestVisibleFieldsHonoursConditions(t *testing.T) {
	t.Parallel()

	fields := []Field{
		Text{Base: Base{Name: "always"}},
		Checkbox{Base: Base{Name: "minor", Condition: func(v Values) bool { return v.String("age") == "12" }}},
	}

	got := names(VisibleFields(fields, Values{"age": "40"}))
	if diff := cmp.Diff([]string{"always"}, got); diff != "" {
		t.Fatalf("visible mismatch (-want +got):\n%s", diff)
	}
	got = names(VisibleFields(fields, Values{"age": "12"}))
	if diff := cmp.Diff([]string{"always", "minor"}, got); diff != "" {
		t.Fatalf("visible mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeRestoresFileRefs(t *testing.T) {
	t.Parallel()

	got := Normalize(map[string]any{
		"avatar": map[string]any{"url": "https://cdn/x/players/a.png", "name": "a.png", "size": float64(2048), "type": "image/png"},
		"age":    float64(12),
		"terms":  true,
		"empty":  nil,
	})
	want := Values{
		"avatar": FileRef{URL: "https://cdn/x/players/a.png", Name: "a.png", Size: 2048, Type: "image/png"},
		"age":    "12",
		"terms":  true,
		"empty":  nil,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("normalize mismatch (-want +got):\n%s", diff)
	}
}

func TestFileLimitDefaults(t *testing.T) {
	t.Parallel()

	if got := (File{}).LimitMB(); got != DefaultMaxSizeMB {
		t.Fatalf("expected default limit %d, got %d", DefaultMaxSizeMB, got)
	}
	if got := (File{MaxSizeMB: 2}).MaxBytes(); got != 2*1024*1024 {
		t.Fatalf("unexpected byte limit %d", got)
	}
}

func names(fields []Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Common().Name)
	}
	return out
}
