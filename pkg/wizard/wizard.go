// Package wizard drives a multi-step form: it owns the current step, the flat
// value map, field errors and the set of completed steps, and persists a
// snapshot after every mutation.
//
// All methods are safe for concurrent use. File uploads run their network
// call outside the lock; a per-field generation counter discards upload
// results that arrive after the field changed again.
package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/goliatone/go-formwizard/pkg/field"
	"github.com/goliatone/go-formwizard/pkg/progress"
	"github.com/goliatone/go-formwizard/pkg/upload"
	"github.com/goliatone/go-formwizard/pkg/validation"
)

const (
	// DefaultSubmitText labels the submit action.
	DefaultSubmitText = "Submit Application"
	// SubmittingText labels the submit action while loading.
	SubmittingText = "Submitting..."
)

type fieldRef struct {
	field field.Field
	step  int
}

// Wizard is a step form instance.
type Wizard struct {
	steps  []field.Step
	index  map[string]fieldRef
	submit SubmitFunc

	namespace   string
	instanceKey string
	store       progress.Store
	autofill    field.Values
	allowNav    bool
	uploader    upload.Client
	logger      *slog.Logger
	submitting  func() bool
	submitText  string

	mu        sync.Mutex
	current   int
	values    field.Values
	errors    map[string]string
	completed map[int]bool
	captcha   bool
	loading   bool
	gen       map[string]uint64
}

// New validates steps and returns a wizard positioned on the first step with
// the autofill values. Call Restore to resume a persisted draft.
func New(steps []field.Step, submit SubmitFunc, opts ...Option) (*Wizard, error) {
	if err := field.Check(steps); err != nil {
		return nil, err
	}
	w := &Wizard{
		steps:     slices.Clone(steps),
		index:     make(map[string]fieldRef),
		submit:    submit,
		namespace: progress.WizardNamespace,
		allowNav:  true,
		logger:    slog.Default(),
		autofill:  field.Values{},
		errors:    make(map[string]string),
		completed: make(map[int]bool),
		gen:       make(map[string]uint64),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	if w.store != nil && w.instanceKey == "" {
		return nil, ErrInstanceKeyRequired
	}
	for i, step := range w.steps {
		for _, f := range step.Fields {
			w.index[f.Common().Name] = fieldRef{field: f, step: i}
		}
	}
	w.values = w.autofill.Clone()
	return w, nil
}

// NewForm returns a single-page form. It is a one-step wizard whose drafts
// live under the applicationFormMeta namespace, so submitting validates every
// visible field.
func NewForm(fields []field.Field, submit SubmitFunc, opts ...Option) (*Wizard, error) {
	opts = append([]Option{withNamespace(progress.FormNamespace)}, opts...)
	return New([]field.Step{{Fields: fields}}, submit, opts...)
}

// StorageKey returns the key snapshots are saved under, or "" when no store
// is configured.
func (w *Wizard) StorageKey() string {
	if w.store == nil {
		return ""
	}
	return progress.Key(w.namespace, w.instanceKey)
}

// InstanceKey returns the key set with WithInstanceKey.
func (w *Wizard) InstanceKey() string {
	return w.instanceKey
}

// Restore loads the persisted snapshot, if any, over the autofill values. A
// missing or unreadable snapshot leaves the fresh state in place; the return
// value reports whether a snapshot was applied.
func (w *Wizard) Restore(ctx context.Context) bool {
	if w.store == nil {
		return false
	}
	snap, ok, err := w.store.Restore(ctx, w.StorageKey())
	if err != nil {
		w.logger.Error("wizard_restore_failed", "key", w.StorageKey(), "error", err)
		return false
	}
	if !ok {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	values := w.autofill.Clone()
	for k, v := range snap.Values {
		values[k] = v
	}
	w.values = values
	w.current = min(max(snap.CurrentStep, 0), len(w.steps)-1)
	w.completed = make(map[int]bool, len(snap.CompletedSteps))
	for _, i := range snap.CompletedSteps {
		if i >= 0 && i < len(w.steps) {
			w.completed[i] = true
		}
	}
	w.errors = make(map[string]string)
	return true
}

// Steps returns the step definitions.
func (w *Wizard) Steps() []field.Step {
	return slices.Clone(w.steps)
}

// StepCount returns the number of steps.
func (w *Wizard) StepCount() int {
	return len(w.steps)
}

// NavigationAllowed reports whether Jump is enabled.
func (w *Wizard) NavigationAllowed() bool {
	return w.allowNav
}

// SubmitText returns the submit label. A custom label set with
// WithSubmitText is used in both idle and loading states.
func (w *Wizard) SubmitText() string {
	if w.submitText != "" {
		return w.submitText
	}
	if w.IsLoading() {
		return SubmittingText
	}
	return DefaultSubmitText
}

// Field returns the definition of name.
func (w *Wizard) Field(name string) (field.Field, bool) {
	ref, ok := w.index[name]
	return ref.field, ok
}

// SetValue stores a string value. Phone values are formatted as
// XXX-XXX-XXXX. Checkbox, file and captcha fields have dedicated setters.
func (w *Wizard) SetValue(name, value string) error {
	f, err := w.lookup(name)
	if err != nil {
		return err
	}
	switch f.Kind() {
	case field.KindCheckbox, field.KindFile, field.KindCaptcha:
		return fmt.Errorf("%w: SetValue on %s field %q", ErrKindMismatch, f.Kind(), name)
	case field.KindPhone:
		value = field.FormatPhone(value)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.setLocked(context.Background(), name, value)
	return nil
}

// SetPhone formats raw and stores it on a phone field.
func (w *Wizard) SetPhone(name, raw string) error {
	f, err := w.lookup(name)
	if err != nil {
		return err
	}
	if f.Kind() != field.KindPhone {
		return fmt.Errorf("%w: SetPhone on %s field %q", ErrKindMismatch, f.Kind(), name)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.setLocked(context.Background(), name, field.FormatPhone(raw))
	return nil
}

// SetChecked stores a checkbox value.
func (w *Wizard) SetChecked(name string, checked bool) error {
	f, err := w.lookup(name)
	if err != nil {
		return err
	}
	if f.Kind() != field.KindCheckbox {
		return fmt.Errorf("%w: SetChecked on %s field %q", ErrKindMismatch, f.Kind(), name)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.setLocked(context.Background(), name, checked)
	return nil
}

// SetCaptchaVerified records the captcha outcome. The flag is not part of the
// value map and is not persisted.
func (w *Wizard) SetCaptchaVerified(verified bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.captcha = verified
	if verified {
		for name, ref := range w.index {
			if ref.field.Kind() == field.KindCaptcha {
				delete(w.errors, name)
			}
		}
	}
}

// ClearValue sets name to null. For file fields this does not call the
// delete endpoint; use RemoveFile for that.
func (w *Wizard) ClearValue(name string) error {
	if _, err := w.lookup(name); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.setLocked(context.Background(), name, nil)
	return nil
}

// setLocked writes a value, clears the field error, bumps the field
// generation and persists.
func (w *Wizard) setLocked(ctx context.Context, name string, value any) {
	w.values[name] = value
	delete(w.errors, name)
	w.gen[name]++
	w.persistLocked(ctx)
}

// Advance validates the visible fields of the current step. On success the
// step is marked completed and, unless it is the last one, the wizard moves
// forward.
func (w *Wizard) Advance() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.validateStepLocked(w.current) {
		return false
	}
	w.completed[w.current] = true
	if w.current < len(w.steps)-1 {
		w.current++
		w.persistLocked(context.Background())
	}
	return true
}

// Retreat moves back one step without validating.
func (w *Wizard) Retreat() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == 0 {
		return false
	}
	w.current--
	w.persistLocked(context.Background())
	return true
}

// Jump moves to target when navigation is allowed and target is either
// completed or not ahead of the current step.
func (w *Wizard) Jump(target int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.canJumpLocked(target) {
		return false
	}
	w.current = target
	w.persistLocked(context.Background())
	return true
}

// CanJump reports whether Jump(target) would succeed.
func (w *Wizard) CanJump(target int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canJumpLocked(target)
}

func (w *Wizard) canJumpLocked(target int) bool {
	if !w.allowNav || target < 0 || target >= len(w.steps) {
		return false
	}
	return w.completed[target] || target <= w.current
}

// Submit validates the last step and hands a copy of the values to the
// submit callback. Success resets the wizard to its autofill values on the
// first step and clears the persisted snapshot. A callback error is logged
// and returned wrapped; the state is left untouched.
func (w *Wizard) Submit(ctx context.Context) error {
	w.mu.Lock()
	if w.isLoadingLocked() {
		w.mu.Unlock()
		return ErrBusy
	}
	last := len(w.steps) - 1
	if w.current != last {
		w.mu.Unlock()
		return ErrNotLastStep
	}
	if !w.validateStepLocked(last) {
		w.mu.Unlock()
		return ErrValidation
	}
	w.loading = true
	payload := w.values.Clone()
	w.mu.Unlock()

	var err error
	if w.submit != nil {
		err = w.submit(ctx, payload)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.loading = false
	if err != nil {
		w.logger.Error("wizard_submit_failed", "key", w.instanceKey, "error", err)
		return fmt.Errorf("wizard: submit: %w", err)
	}

	w.values = w.autofill.Clone()
	w.current = 0
	w.completed = make(map[int]bool)
	w.errors = make(map[string]string)
	w.captcha = false
	for name := range w.gen {
		w.gen[name]++
	}
	if w.store != nil {
		if cerr := w.store.Clear(ctx, w.StorageKey()); cerr != nil {
			w.logger.Error("wizard_progress_clear_failed", "key", w.StorageKey(), "error", cerr)
		}
	}
	return nil
}

// IsLoading reports the external submitting flag when configured, otherwise
// whether Submit is running.
func (w *Wizard) IsLoading() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.isLoadingLocked()
}

func (w *Wizard) isLoadingLocked() bool {
	if w.submitting != nil {
		return w.submitting()
	}
	return w.loading
}

// Disabled reports whether name was autofilled with a non-empty value.
func (w *Wizard) Disabled(name string) bool {
	return w.autofill.Present(name)
}

// State is a point-in-time copy of the wizard.
type State struct {
	CurrentStep     int
	Values          field.Values
	Errors          map[string]string
	Completed       []int
	CaptchaVerified bool
	Loading         bool
}

// IsCompleted reports whether step i is in Completed.
func (s State) IsCompleted(i int) bool {
	return slices.Contains(s.Completed, i)
}

// State returns a copy of the current state.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	errs := make(map[string]string, len(w.errors))
	for k, v := range w.errors {
		errs[k] = v
	}
	return State{
		CurrentStep:     w.current,
		Values:          w.values.Clone(),
		Errors:          errs,
		Completed:       w.completedLocked(),
		CaptchaVerified: w.captcha,
		Loading:         w.isLoadingLocked(),
	}
}

// VisibleFields returns the fields of the current step whose conditions hold.
func (w *Wizard) VisibleFields() []field.Field {
	w.mu.Lock()
	defer w.mu.Unlock()
	return field.VisibleFields(w.steps[w.current].Fields, w.values)
}

func (w *Wizard) lookup(name string) (field.Field, error) {
	ref, ok := w.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return ref.field, nil
}

func (w *Wizard) validateStepLocked(step int) bool {
	w.errors = validation.Fields(w.steps[step].Fields, w.values, validation.Aux{CaptchaVerified: w.captcha})
	return len(w.errors) == 0
}

func (w *Wizard) completedLocked() []int {
	out := make([]int, 0, len(w.completed))
	for i := range w.completed {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// persistLocked saves a snapshot. Failures are logged and otherwise ignored.
func (w *Wizard) persistLocked(ctx context.Context) {
	if w.store == nil {
		return
	}
	snap := progress.Snapshot{
		Values:         w.values.Clone(),
		CurrentStep:    w.current,
		CompletedSteps: w.completedLocked(),
	}
	if err := w.store.Save(ctx, w.StorageKey(), snap); err != nil {
		w.logger.Error("wizard_progress_save_failed", "key", w.StorageKey(), "error", err)
	}
}
