package schema_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/field"
	"github.com/goliatone/go-formwizard/pkg/schema"
	"github.com/goliatone/go-formwizard/pkg/visibility/expr"
)

func fixedClock() time.Time {
	return time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
}

func loadFixture(t *testing.T) schema.Definition {
	t.Helper()
	loader := schema.New(schema.WithEvaluator(expr.New(expr.WithClock(fixedClock))))
	def, err := loader.Load(context.Background(), schema.SourceFromFile("testdata/account.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return def
}

func TestLoadYAMLSteps(t *testing.T) {
	t.Parallel()

	def := loadFixture(t)
	if def.SubmitText != "Submit Application" {
		t.Fatalf("unexpected submit text %q", def.SubmitText)
	}
	if len(def.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(def.Steps))
	}

	var kinds []field.Kind
	for _, f := range def.AllFields() {
		kinds = append(kinds, f.Kind())
	}
	want := []field.Kind{
		field.KindText, field.KindEmail, field.KindDate,
		field.KindPassword, field.KindPassword, field.KindSelect,
		field.KindCheckbox, field.KindFile,
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Fatalf("kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadPasswordValidation(t *testing.T) {
	t.Parallel()

	def := loadFixture(t)
	pw, _, ok := field.Lookup(def.Steps, "password")
	if !ok {
		t.Fatalf("password field missing")
	}
	rules, ok := pw.(field.Password).Validation.(field.PasswordRules)
	if !ok {
		t.Fatalf("expected PasswordRules, got %T", pw.(field.Password).Validation)
	}
	want := field.PasswordRules{RequireSpecialChars: field.Ptr(true)}
	if diff := cmp.Diff(want, rules); diff != "" {
		t.Fatalf("rules mismatch (-want +got):\n%s", diff)
	}
	if rules.Length() != 8 || !rules.Uppercase() || !rules.Numbers() {
		t.Fatalf("omitted keys should keep their defaults: %+v", rules)
	}

	confirm, _, _ := field.Lookup(def.Steps, "confirmPassword")
	if _, ok := confirm.(field.Password).Validation.(field.MatchPassword); !ok {
		t.Fatalf("expected MatchPassword, got %T", confirm.(field.Password).Validation)
	}
}

func TestLoadOptionsAndFile(t *testing.T) {
	t.Parallel()

	def := loadFixture(t)
	sel, _, _ := field.Lookup(def.Steps, "position")
	wantOptions := []field.Option{
		{Label: "Goalkeeper", Value: "Goalkeeper"},
		{Label: "Left Wing", Value: "left-wing"},
	}
	if diff := cmp.Diff(wantOptions, sel.(field.Select).Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}

	file, step, _ := field.Lookup(def.Steps, "resume")
	if step != 1 {
		t.Fatalf("expected resume on step 1, got %d", step)
	}
	got := file.(field.File)
	if got.AcceptTypes != ".pdf,.doc,.docx" || got.MaxSizeMB != 2 || got.Path != "documents/resume" {
		t.Fatalf("unexpected file field %+v", got)
	}
}

func TestLoadConditionUsesEvaluator(t *testing.T) {
	t.Parallel()

	def := loadFixture(t)
	consent, _, _ := field.Lookup(def.Steps, "parentalConsent")

	if !field.Visible(consent, field.Values{"birthday": "2012-04-10"}) {
		t.Fatalf("expected consent visible for a minor")
	}
	if field.Visible(consent, field.Values{"birthday": "1990-04-10"}) {
		t.Fatalf("expected consent hidden for an adult")
	}
}

func TestParseJSONSinglePageForm(t *testing.T) {
	t.Parallel()

	doc := []byte(`{
		"title": "Contact",
		"fields": [
			{"name": "name", "type": "text", "label": "Name", "required": true},
			{"name": "phone", "type": "phone", "label": "Phone", "placeholder": "XXX-XXX-XXXX"},
			{"name": "kind", "type": "select", "label": "Kind", "options": ["A", {"label": "Bee", "value": "b"}]}
		]
	}`)
	def, err := schema.New().Parse(doc, "inline.json")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(def.Steps) != 0 || len(def.Fields) != 3 {
		t.Fatalf("expected flat form, got %d steps %d fields", len(def.Steps), len(def.Fields))
	}
	if diff := cmp.Diff([]field.Option{{Label: "A", Value: "A"}, {Label: "Bee", Value: "b"}}, def.Fields[2].(field.Select).Options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestParseErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		doc  string
		want error
	}{
		{"unknown type", "steps:\n  - fields:\n      - {name: a, type: slider}\n", schema.ErrUnknownType},
		{"unknown validation", "steps:\n  - fields:\n      - {name: a, type: password, validation: sameAs}\n", schema.ErrUnknownValidation},
		{"duplicate names", "steps:\n  - fields:\n      - {name: a}\n  - fields:\n      - {name: a}\n", field.ErrDuplicateName},
		{"no steps", "title: empty\n", field.ErrNoSteps},
		{"mixed", "steps:\n  - fields:\n      - {name: a}\nfields:\n  - {name: b}\n", schema.ErrMixedLayout},
		{"empty option", `{"fields": [{"name": "s", "type": "select", "options": [{}]}]}`, schema.ErrEmptyOption},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := schema.New().Parse([]byte(tc.doc), tc.name)
			if !errors.Is(err, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, err)
			}
		})
	}

	if _, err := schema.New().Parse([]byte("steps:\n  - fields:\n      - {name: a, condition: 'a = 1'}\n"), "rule"); err == nil {
		t.Fatalf("expected malformed condition to be rejected")
	}
}

func TestLoadFromFSAndURL(t *testing.T) {
	t.Parallel()

	raw, err := os.ReadFile("testdata/account.yaml")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	loader := schema.New(schema.WithFileSystem(fstest.MapFS{"forms/account.yaml": {Data: raw}}))
	def, err := loader.Load(context.Background(), schema.SourceFromFS("forms/account.yaml"))
	if err != nil {
		t.Fatalf("Load fs: %v", err)
	}
	if len(def.Steps) != 2 {
		t.Fatalf("expected 2 steps from fs, got %d", len(def.Steps))
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(raw)
	}))
	defer server.Close()

	if _, err := schema.New().Load(context.Background(), schema.SourceFromURL(server.URL)); err == nil {
		t.Fatalf("expected URL load without client to fail")
	}
	def, err = schema.New(schema.WithHTTPClient(server.Client())).Load(context.Background(), schema.SourceFromURL(server.URL))
	if err != nil {
		t.Fatalf("Load url: %v", err)
	}
	if def.Title != "Application" {
		t.Fatalf("unexpected title %q", def.Title)
	}
}
