// Package vanilla renders wizard steps as plain HTML forms that work without
// JavaScript. Every button posts the whole step back with an action value
// (see render.ParseAction), so the server drives all transitions.
package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formwizard/pkg/render"
	rendertemplate "github.com/goliatone/go-formwizard/pkg/render/template"
	"github.com/goliatone/go-formwizard/pkg/render/template/gotemplate"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	stylesheet       string
	classes          Classes
	title            string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithStylesheet links a stylesheet from the rendered fragment.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		cfg.stylesheet = href
	}
}

// WithClasses overrides chrome class names.
func WithClasses(classes Classes) Option {
	return func(cfg *config) {
		cfg.classes = classes
	}
}

// WithTitle renders a heading above the step indicator.
func WithTitle(title string) Option {
	return func(cfg *config) {
		cfg.title = title
	}
}

type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	stylesheet string
	classes    Classes
	title      string
}

// New constructs the renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithTemplateFunc(map[string]any{
				"markdown": pongo2.FilterFunction(filterMarkdown),
				"icon":     pongo2.FilterFunction(filterIcon),
			}),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:  renderer,
		stylesheet: cfg.stylesheet,
		classes:    cfg.classes.withDefaults(),
		title:      cfg.title,
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render draws the current step.
func (r *Renderer) Render(_ context.Context, view render.StepView, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	hidden := render.SortedHiddenFields(render.MergeHiddenFields(nil, append(
		[]render.HiddenField{render.StepField(view.Current), render.InstanceField(view.Instance)},
		options.Hidden...,
	)...))

	title := r.title
	if options.Title != "" {
		title = options.Title
	}
	result, err := r.templates.RenderTemplate("form", map[string]any{
		"view":       view,
		"title":      title,
		"action":     options.Action,
		"hidden":     hidden,
		"flash":      options.Flash,
		"classes":    r.classes,
		"stylesheet": r.stylesheet,
		"multistep":  view.MultiStep(),
		"action_key": render.ActionInputName,
		"text": map[string]string{
			"previous": render.PreviousText,
			"next":     render.NextText,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}
