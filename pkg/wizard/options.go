package wizard

import (
	"context"
	"log/slog"

	"github.com/goliatone/go-formwizard/pkg/field"
	"github.com/goliatone/go-formwizard/pkg/progress"
	"github.com/goliatone/go-formwizard/pkg/upload"
)

// SubmitFunc receives a copy of the accumulated values. A non-nil error keeps
// the wizard on the last step with its data intact.
type SubmitFunc func(ctx context.Context, values field.Values) error

// Option configures a Wizard.
type Option func(*Wizard)

// WithInstanceKey names the draft so that independent forms sharing a store
// never overwrite each other.
func WithInstanceKey(key string) Option {
	return func(w *Wizard) {
		w.instanceKey = key
	}
}

// WithProgressStore persists a snapshot after every mutation.
func WithProgressStore(store progress.Store) Option {
	return func(w *Wizard) {
		w.store = store
	}
}

// WithAutofill seeds values. Fields with a non-empty autofill value are
// reported as disabled, and a successful submit resets to these values.
func WithAutofill(values field.Values) Option {
	return func(w *Wizard) {
		w.autofill = values.Clone()
	}
}

// WithStepNavigation toggles Jump. Navigation is allowed by default.
func WithStepNavigation(allowed bool) Option {
	return func(w *Wizard) {
		w.allowNav = allowed
	}
}

// WithUploader sets the client used by UploadFile and RemoveFile.
func WithUploader(client upload.Client) Option {
	return func(w *Wizard) {
		w.uploader = client
	}
}

// WithLogger sets the logger for best-effort failures.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Wizard) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithSubmitting supplies an external loading flag. When set it takes
// precedence over the internal flag toggled by Submit.
func WithSubmitting(fn func() bool) Option {
	return func(w *Wizard) {
		w.submitting = fn
	}
}

// WithSubmitText overrides the submit button label.
func WithSubmitText(text string) Option {
	return func(w *Wizard) {
		w.submitText = text
	}
}

func withNamespace(ns string) Option {
	return func(w *Wizard) {
		w.namespace = ns
	}
}
