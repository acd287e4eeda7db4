package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/render"
)

func TestMergeAndSortHiddenFields(t *testing.T) {
	base := map[string]string{
		" existing ": "keep",
		"":           "ignored",
	}

	merged := render.MergeHiddenFields(base,
		render.CSRFToken("gorilla.csrf.Token", "token123"),
		render.StepField(2),
		render.InstanceField("stepApplicationFormMeta-signup"),
		render.Hidden("  ", "skip"),
	)

	wantMerged := map[string]string{
		"existing":           "keep",
		"gorilla.csrf.Token": "token123",
		"_step":              "2",
		"_instance":          "stepApplicationFormMeta-signup",
	}
	if diff := cmp.Diff(wantMerged, merged); diff != "" {
		t.Fatalf("merged hidden fields mismatch (-want +got):\n%s", diff)
	}

	sorted := render.SortedHiddenFields(merged)
	wantSorted := []render.HiddenField{
		{Name: "_instance", Value: "stepApplicationFormMeta-signup"},
		{Name: "_step", Value: "2"},
		{Name: "existing", Value: "keep"},
		{Name: "gorilla.csrf.Token", Value: "token123"},
	}
	if diff := cmp.Diff(wantSorted, sorted); diff != "" {
		t.Fatalf("sorted hidden fields mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeHiddenFieldsEmpty(t *testing.T) {
	if got := render.MergeHiddenFields(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	if got := render.SortedHiddenFields(nil); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestParseAction(t *testing.T) {
	cases := []struct {
		raw  string
		want render.Action
	}{
		{"next", render.Action{Kind: render.ActionNext}},
		{" previous ", render.Action{Kind: render.ActionPrevious}},
		{"submit", render.Action{Kind: render.ActionSubmit}},
		{"jump:2", render.Action{Kind: render.ActionJump, Target: 2}},
		{"jump:-1", render.Action{Kind: render.ActionSave}},
		{"jump:x", render.Action{Kind: render.ActionSave}},
		{"remove:resume", render.Action{Kind: render.ActionRemove, Field: "resume"}},
		{"remove:", render.Action{Kind: render.ActionSave}},
		{"", render.Action{Kind: render.ActionSave}},
	}
	for _, tc := range cases {
		if diff := cmp.Diff(tc.want, render.ParseAction(tc.raw)); diff != "" {
			t.Errorf("ParseAction(%q) mismatch (-want +got):\n%s", tc.raw, diff)
		}
	}
}
