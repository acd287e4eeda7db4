package formwizard

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-formwizard/pkg/field"
	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/renderers/vanilla"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// Field is the closed set of form field variants.
type Field = field.Field

// Step groups fields presented on one page.
type Step = field.Step

// Values holds the answers collected so far, keyed by field name.
type Values = field.Values

// Wizard drives step navigation, validation and submission.
type Wizard = wizard.Wizard

// RenderOptions describes per-request render overrides such as hidden inputs
// and a flash message.
type RenderOptions = render.RenderOptions

// NewWizard exposes wizard.New from the top-level module.
func NewWizard(steps []Step, submit wizard.SubmitFunc, options ...wizard.Option) (*Wizard, error) {
	return wizard.New(steps, submit, options...)
}

// NewForm builds a single page form; it behaves as a one step wizard.
func NewForm(fields []Field, submit wizard.SubmitFunc, options ...wizard.Option) (*Wizard, error) {
	return wizard.NewForm(fields, submit, options...)
}

// RenderHTML draws the current step of w with the built-in vanilla renderer.
// It is the simplest entry point for callers that just want HTML output.
func RenderHTML(ctx context.Context, w *Wizard, options RenderOptions, rendererOptions ...vanilla.Option) ([]byte, error) {
	renderer, err := vanilla.New(rendererOptions...)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, render.BuildStep(w), options)
}

// EmbeddedTemplates exposes the built-in vanilla templates so callers can
// reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// AssetsFS exposes the default stylesheet.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(formwizard.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
