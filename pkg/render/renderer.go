// Package render projects a wizard into a renderer-neutral StepView and
// defines the contract renderers implement to turn that view into bytes.
package render

import (
	"context"
	"mime"
	"strings"
)

// Renderer converts a StepView into a byte representation (HTML, JSON, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view StepView, options RenderOptions) ([]byte, error)
}

// RenderOptions carry per-request data that is not part of the wizard state.
type RenderOptions struct {
	// Action is the URL the step form posts to.
	Action string
	// Title overrides the renderer's default heading.
	Title string
	// Hidden inputs emitted inside the form, typically the CSRF token.
	Hidden []HiddenField
	// Flash is a one-off status line shown above the step, e.g. a submit
	// failure. Markdown is allowed where the renderer supports it.
	Flash string
}

func containsMediaType(accept, contentType string) bool {
	want, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(accept, ",") {
		got, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if got == want {
			return true
		}
	}
	return false
}
