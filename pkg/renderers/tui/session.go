// Package tui runs a wizard interactively in a terminal. Each step prompts
// its visible fields in order, then offers a navigation menu. Prompts go
// through a PromptDriver so sessions can be scripted in tests.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/field"
	"github.com/goliatone/go-formwizard/pkg/render"
	"github.com/goliatone/go-formwizard/pkg/upload"
	"github.com/goliatone/go-formwizard/pkg/validation"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// Outcome reports how Run ended.
type Outcome int

const (
	// Submitted means the submit callback accepted the values.
	Submitted Outcome = iota + 1
	// Suspended means the user chose to leave; the draft stays persisted.
	Suspended
)

func (o Outcome) String() string {
	switch o {
	case Submitted:
		return "submitted"
	case Suspended:
		return "suspended"
	default:
		return "unknown"
	}
}

// Menu labels offered after each step.
const (
	MenuJump = "Go to step..."
	MenuSave = "Save and exit"
)

// Session drives one wizard through a PromptDriver.
type Session struct {
	driver PromptDriver
	out    io.Writer
	open   FileOpener
	theme  Theme
	logger *slog.Logger
}

// New constructs a session with the survey driver unless one is supplied.
func New(options ...Option) *Session {
	s := &Session{
		open:   openLocal,
		theme:  DefaultTheme(),
		logger: slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.driver == nil {
		s.driver = newSurveyDriver(s.out)
	}
	return s
}

// Run prompts until the wizard is submitted, the user suspends, or an error
// (including ErrAborted) occurs.
func (s *Session) Run(ctx context.Context, w *wizard.Wizard) (Outcome, error) {
	if s.driver == nil {
		return 0, ErrNoDriver
	}
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := s.header(ctx, render.BuildStep(w)); err != nil {
			return 0, err
		}
		if err := s.promptStep(ctx, w); err != nil {
			return 0, err
		}
		outcome, err := s.menu(ctx, w)
		if err != nil {
			return 0, err
		}
		if outcome != 0 {
			return outcome, nil
		}
	}
}

func (s *Session) info(ctx context.Context, msg string) error {
	return s.driver.Info(ctx, s.theme.InfoPrefix+msg)
}

func (s *Session) fail(ctx context.Context, msg string) error {
	return s.driver.Info(ctx, s.theme.ErrorPrefix+msg)
}

func (s *Session) header(ctx context.Context, view render.StepView) error {
	if view.MultiStep() {
		marks := make([]string, 0, len(view.Headers))
		for _, h := range view.Headers {
			marks = append(marks, headerMark(h.State)+" "+h.Title)
		}
		if err := s.info(ctx, strings.Join(marks, "  ")); err != nil {
			return err
		}
		title := view.Progress
		if view.StepTitle != "" {
			title += ": " + view.StepTitle
		}
		if err := s.info(ctx, title); err != nil {
			return err
		}
	}
	if view.StepDescription != "" {
		return s.info(ctx, view.StepDescription)
	}
	return nil
}

func headerMark(state render.HeaderState) string {
	switch state {
	case render.HeaderCurrent:
		return "●"
	case render.HeaderCompleted:
		return "✓"
	case render.HeaderVisited:
		return "○"
	default:
		return "·"
	}
}

// promptStep rebuilds the view before each field so conditions see the
// answers given earlier in the same step.
func (s *Session) promptStep(ctx context.Context, w *wizard.Wizard) error {
	step := w.Steps()[w.State().CurrentStep]
	for _, f := range step.Fields {
		control, ok := findControl(render.BuildStep(w), f.Common().Name)
		if !ok {
			continue
		}
		if control.Disabled {
			if err := s.info(ctx, fmt.Sprintf("%s: %s (prefilled)", control.Label, displayValue(control))); err != nil {
				return err
			}
			continue
		}
		if err := s.promptControl(ctx, w, f, control); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) promptControl(ctx context.Context, w *wizard.Wizard, f field.Field, c render.Control) error {
	p := &prompter{ctx: ctx, s: s, w: w, c: c}
	f.Accept(p)
	return p.err
}

// prompter asks for one control; the visitor keeps every variant covered.
type prompter struct {
	ctx context.Context
	s   *Session
	w   *wizard.Wizard
	c   render.Control
	err error
}

func (p *prompter) input(f field.Field) {
	value, err := p.s.driver.Input(p.ctx, InputConfig{
		Message:   p.c.Label,
		Default:   p.c.Value,
		Help:      p.c.Placeholder,
		Validator: p.s.validator(p.w, f, ""),
	})
	if err != nil {
		p.err = err
		return
	}
	p.err = p.w.SetValue(p.c.Name, value)
}

func (p *prompter) VisitText(f field.Text) { p.input(f) }
func (p *prompter) VisitDate(f field.Date) { p.input(f) }

func (p *prompter) VisitCheckbox(field.Checkbox) {
	ok, err := p.s.driver.Confirm(p.ctx, ConfirmConfig{Message: p.c.Label, Default: p.c.Checked})
	if err != nil {
		p.err = err
		return
	}
	p.err = p.w.SetChecked(p.c.Name, ok)
}

func (p *prompter) VisitCaptcha(field.Captcha) {
	ok, err := p.s.driver.Confirm(p.ctx, ConfirmConfig{Message: p.c.Hint, Help: p.c.Label, Default: p.c.Verified})
	if err != nil {
		p.err = err
		return
	}
	p.w.SetCaptchaVerified(ok)
}

func (p *prompter) VisitSelect(field.Select) {
	labels := make([]string, len(p.c.Options))
	selected := -1
	for i, opt := range p.c.Options {
		labels[i] = opt.Label
		if opt.Selected {
			selected = i
		}
	}
	idx, err := p.s.driver.Select(p.ctx, SelectConfig{Message: p.c.Label, Options: labels, DefaultIndex: selected, Help: p.c.Placeholder})
	if err != nil {
		p.err = err
		return
	}
	if idx < 0 || idx >= len(p.c.Options) {
		return
	}
	p.err = p.w.SetValue(p.c.Name, p.c.Options[idx].Value)
}

func (p *prompter) VisitPassword(f field.Password) {
	existing := p.w.State().Values.String(p.c.Name)
	value, err := p.s.driver.Password(p.ctx, InputConfig{
		Message:   p.c.Label,
		Validator: p.s.validator(p.w, f, existing),
	})
	if err != nil {
		p.err = err
		return
	}
	if value == "" && existing != "" {
		return
	}
	p.err = p.w.SetValue(p.c.Name, value)
}

func (p *prompter) VisitTextarea(field.Textarea) {
	value, err := p.s.driver.TextArea(p.ctx, TextAreaConfig{Message: p.c.Label, Default: p.c.Value, Help: p.c.Placeholder})
	if err != nil {
		p.err = err
		return
	}
	p.err = p.w.SetValue(p.c.Name, value)
}

func (p *prompter) VisitFile(field.File) {
	p.err = p.s.promptFile(p.ctx, p.w, p.c)
}

func (p *prompter) VisitPhone(f field.Phone) {
	value, err := p.s.driver.Input(p.ctx, InputConfig{
		Message:   fmt.Sprintf("%s (%s %s)", p.c.Label, p.c.Prefix, p.c.Placeholder),
		Default:   p.c.Value,
		Help:      p.c.Hint,
		Validator: p.s.validator(p.w, f, ""),
	})
	if err != nil {
		p.err = err
		return
	}
	p.err = p.w.SetPhone(p.c.Name, value)
}

// validator checks an answer with the same rules Advance applies. An empty
// answer is accepted when keep is non-empty.
func (s *Session) validator(w *wizard.Wizard, f field.Field, keep string) func(string) error {
	name := f.Common().Name
	return func(answer string) error {
		if answer == "" && keep != "" {
			return nil
		}
		values := w.State().Values
		if f.Kind() == field.KindPhone {
			answer = field.FormatPhone(answer)
		}
		values[name] = answer
		if msg := validation.Field(f, values, validation.Aux{}); msg != "" {
			return errors.New(msg)
		}
		return nil
	}
}

func (s *Session) promptFile(ctx context.Context, w *wizard.Wizard, c render.Control) error {
	if c.File != nil {
		keep, err := s.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Keep %s (%s)?", c.File.Name, c.File.Size),
			Default: true,
		})
		if err != nil || keep {
			return err
		}
		if err := w.RemoveFile(ctx, c.Name); err != nil {
			return err
		}
	}

	for {
		path, err := s.driver.Input(ctx, InputConfig{
			Message: fmt.Sprintf("%s (path, empty to skip)", c.Label),
			Help:    c.Hint,
		})
		if err != nil {
			return err
		}
		path = strings.TrimSpace(path)
		if path == "" {
			return nil
		}

		uerr := s.upload(ctx, w, c.Name, path)
		switch {
		case uerr == nil:
			ref, _ := w.State().Values.File(c.Name)
			return s.info(ctx, fmt.Sprintf("Uploaded %s (%s)", ref.Name, render.FormatFileSize(ref.Size)))
		case errors.Is(uerr, wizard.ErrNoUploader):
			s.logger.Warn("tui_upload_unavailable", "field", c.Name)
			return s.fail(ctx, "File uploads are not configured")
		default:
			msg := w.State().Errors[c.Name]
			if msg == "" {
				msg = uerr.Error()
			}
			if err := s.fail(ctx, msg); err != nil {
				return err
			}
		}
	}
}

func (s *Session) upload(ctx context.Context, w *wizard.Wizard, name, path string) error {
	body, size, err := s.open(path)
	if err != nil {
		return err
	}
	defer body.Close()
	return w.UploadFile(ctx, name, upload.File{
		Name: filepath.Base(path),
		Type: mime.TypeByExtension(filepath.Ext(path)),
		Size: size,
		Body: body,
	})
}

// menu returns a non-zero Outcome when the session should end.
func (s *Session) menu(ctx context.Context, w *wizard.Wizard) (Outcome, error) {
	view := render.BuildStep(w)

	var (
		labels  []string
		actions []string
	)
	add := func(label, action string) {
		labels = append(labels, label)
		actions = append(actions, action)
	}
	if view.ShowSubmit {
		add(view.SubmitText, render.ActionSubmit)
	} else {
		add(render.NextText, render.ActionNext)
	}
	if view.MultiStep() && !view.PreviousDisabled {
		add(render.PreviousText, render.ActionPrevious)
	}
	if view.MultiStep() && w.NavigationAllowed() {
		add(MenuJump, render.ActionJump)
	}
	add(MenuSave, render.ActionSave)

	idx, err := s.driver.Select(ctx, SelectConfig{Message: "What next?", Options: labels})
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx >= len(actions) {
		return 0, nil
	}

	switch actions[idx] {
	case render.ActionNext:
		if !w.Advance() {
			return 0, s.reportErrors(ctx, w)
		}
	case render.ActionPrevious:
		w.Retreat()
	case render.ActionJump:
		return 0, s.jump(ctx, w, view)
	case render.ActionSubmit:
		err := w.Submit(ctx)
		switch {
		case err == nil:
			return Submitted, s.info(ctx, "Submitted.")
		case errors.Is(err, wizard.ErrValidation):
			return 0, s.reportErrors(ctx, w)
		default:
			s.logger.Error("tui_submit_failed", "error", err)
			return 0, s.fail(ctx, err.Error())
		}
	case render.ActionSave:
		return Suspended, s.info(ctx, "Progress saved.")
	}
	return 0, nil
}

func (s *Session) jump(ctx context.Context, w *wizard.Wizard, view render.StepView) error {
	var (
		labels  []string
		targets []int
	)
	for _, h := range view.Headers {
		if h.Navigable && h.Index != view.Current {
			labels = append(labels, fmt.Sprintf("%d. %s", h.Number, h.Title))
			targets = append(targets, h.Index)
		}
	}
	if len(targets) == 0 {
		return s.info(ctx, "No other steps are available yet.")
	}
	idx, err := s.driver.Select(ctx, SelectConfig{Message: "Go to step", Options: labels})
	if err != nil {
		return err
	}
	if idx >= 0 && idx < len(targets) {
		w.Jump(targets[idx])
	}
	return nil
}

func (s *Session) reportErrors(ctx context.Context, w *wizard.Wizard) error {
	for _, c := range render.BuildStep(w).Controls {
		if c.Error == "" {
			continue
		}
		if err := s.fail(ctx, fmt.Sprintf("%s: %s", c.Label, c.Error)); err != nil {
			return err
		}
	}
	return nil
}

func findControl(view render.StepView, name string) (render.Control, bool) {
	for _, c := range view.Controls {
		if c.Name == name {
			return c, true
		}
	}
	return render.Control{}, false
}

func displayValue(c render.Control) string {
	switch {
	case c.File != nil:
		return c.File.Name
	case c.Kind == field.KindCheckbox:
		if c.Checked {
			return "yes"
		}
		return "no"
	default:
		return c.Value
	}
}
