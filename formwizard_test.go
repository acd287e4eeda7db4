package formwizard

import (
	"context"
	"io/fs"
	"strings"
	"testing"
)

func TestAssetsFSContainsStylesheet(t *testing.T) {
	if _, err := fs.ReadFile(AssetsFS(), "formwizard.css"); err != nil {
		t.Fatalf("expected stylesheet to be readable: %v", err)
	}
	if _, err := fs.ReadFile(EmbeddedTemplates(), "form.html"); err != nil {
		t.Fatalf("expected form template to be readable: %v", err)
	}
}

func TestRenderHTML(t *testing.T) {
	if _, err := NewForm([]Field{nil}, nil); err == nil {
		t.Fatalf("expected a nil field to be rejected")
	}

	w, err := NewWizard([]Step{{Title: "Contact"}}, nil)
	if err != nil {
		t.Fatalf("new wizard: %v", err)
	}
	html, err := RenderHTML(context.Background(), w, RenderOptions{Flash: "Saved"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, fragment := range []string{"<form", "Saved"} {
		if !strings.Contains(string(html), fragment) {
			t.Fatalf("output missing %q\n%s", fragment, html)
		}
	}
}
