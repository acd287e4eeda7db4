package render

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formwizard/pkg/field"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

// Copy shared by every renderer.
const (
	PhonePlaceholder = "XXX-XXX-XXXX"
	PhoneHint        = "Enter 10-digit mobile number (starting with 6-9)"
	PhonePrefix      = "+91"
	PhoneMaxLength   = 12
	CaptchaText      = "I'm not a robot"
	PreviousText     = "Previous"
	NextText         = "Next"
)

// HeaderState describes a step header relative to the current step.
type HeaderState string

const (
	HeaderCurrent   HeaderState = "current"
	HeaderCompleted HeaderState = "completed"
	HeaderVisited   HeaderState = "visited"
	HeaderPending   HeaderState = "pending"
)

// StepHeader is one entry of the step indicator.
type StepHeader struct {
	Index       int         `json:"index"`
	Number      int         `json:"number"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Icon        string      `json:"icon,omitempty"`
	State       HeaderState `json:"state"`
	Navigable   bool        `json:"navigable"`
	// Filled colours the connector leading to the next header.
	Filled bool `json:"filled"`
	Last   bool `json:"last"`
}

// FileView describes an uploaded file.
type FileView struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Size string `json:"size"`
	Type string `json:"type,omitempty"`
}

// OptionView is a select option with its selection state.
type OptionView struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

// Control is a renderable field of the current step.
type Control struct {
	Name      string     `json:"name"`
	Label     string     `json:"label"`
	Kind      field.Kind `json:"kind"`
	InputType string     `json:"inputType"`
	Required  bool       `json:"required"`
	Disabled  bool       `json:"disabled"`
	FullWidth bool       `json:"fullWidth"`

	Placeholder string `json:"placeholder,omitempty"`
	Hint        string `json:"hint,omitempty"`
	Prefix      string `json:"prefix,omitempty"`
	MaxLength   int    `json:"maxLength,omitempty"`

	Value      string       `json:"value,omitempty"`
	Checked    bool         `json:"checked,omitempty"`
	Options    []OptionView `json:"options,omitempty"`
	Accept     string       `json:"accept,omitempty"`
	File       *FileView    `json:"file,omitempty"`
	ShowToggle bool         `json:"showToggle,omitempty"`
	Verified   bool         `json:"verified,omitempty"`

	Error string `json:"error,omitempty"`
}

// StepView is everything a renderer needs to draw the current step.
type StepView struct {
	Instance string       `json:"instance"`
	Headers  []StepHeader `json:"headers"`
	Current  int          `json:"current"`
	Total    int          `json:"total"`
	// Progress reads "Step N of M".
	Progress        string    `json:"progress"`
	StepTitle       string    `json:"stepTitle"`
	StepDescription string    `json:"stepDescription,omitempty"`
	Controls        []Control `json:"controls"`

	PreviousDisabled bool   `json:"previousDisabled"`
	ShowNext         bool   `json:"showNext"`
	ShowSubmit       bool   `json:"showSubmit"`
	SubmitText       string `json:"submitText"`
	Loading          bool   `json:"loading"`
}

// MultiStep reports whether the step indicator should be drawn.
func (v StepView) MultiStep() bool {
	return v.Total > 1
}

// BuildStep projects the current state of w.
func BuildStep(w *wizard.Wizard) StepView {
	st := w.State()
	steps := w.Steps()
	allowNav := w.NavigationAllowed()

	view := StepView{
		Instance:         w.InstanceKey(),
		Current:          st.CurrentStep,
		Total:            len(steps),
		Progress:         fmt.Sprintf("Step %d of %d", st.CurrentStep+1, len(steps)),
		PreviousDisabled: st.CurrentStep == 0 || st.Loading,
		ShowNext:         st.CurrentStep < len(steps)-1,
		ShowSubmit:       st.CurrentStep == len(steps)-1,
		SubmitText:       w.SubmitText(),
		Loading:          st.Loading,
	}

	for i, step := range steps {
		completed := st.IsCompleted(i)
		header := StepHeader{
			Index:       i,
			Number:      i + 1,
			Title:       step.Title,
			Description: step.Description,
			Icon:        step.Icon,
			Navigable:   allowNav && (completed || i <= st.CurrentStep),
			Filled:      i < st.CurrentStep || completed,
			Last:        i == len(steps)-1,
		}
		switch {
		case i == st.CurrentStep:
			header.State = HeaderCurrent
		case completed:
			header.State = HeaderCompleted
		case i < st.CurrentStep:
			header.State = HeaderVisited
		default:
			header.State = HeaderPending
		}
		view.Headers = append(view.Headers, header)
	}

	current := steps[st.CurrentStep]
	view.StepTitle = current.Title
	view.StepDescription = current.Description

	b := &controlBuilder{state: st, disabled: w.Disabled}
	for _, f := range field.VisibleFields(current.Fields, st.Values) {
		f.Accept(b)
	}
	view.Controls = b.controls
	return view
}

type controlBuilder struct {
	state    wizard.State
	disabled func(string) bool
	controls []Control
}

func (b *controlBuilder) base(f field.Field, inputType string) Control {
	common := f.Common()
	return Control{
		Name:      common.Name,
		Label:     common.Label,
		Kind:      f.Kind(),
		InputType: inputType,
		Required:  common.Required,
		Disabled:  b.disabled(common.Name),
		Value:     b.state.Values.String(common.Name),
		Error:     b.state.Errors[common.Name],
	}
}

func enterPlaceholder(custom, label string) string {
	if custom != "" {
		return custom
	}
	return "Enter " + strings.ToLower(label)
}

func (b *controlBuilder) VisitText(f field.Text) {
	c := b.base(f, string(f.Kind()))
	c.Placeholder = enterPlaceholder(f.Placeholder, f.Label)
	b.controls = append(b.controls, c)
}

func (b *controlBuilder) VisitDate(f field.Date) {
	b.controls = append(b.controls, b.base(f, "date"))
}

func (b *controlBuilder) VisitPassword(f field.Password) {
	c := b.base(f, "password")
	c.Placeholder = enterPlaceholder("", f.Label)
	c.ShowToggle = f.ShowToggle
	b.controls = append(b.controls, c)
}

func (b *controlBuilder) VisitPhone(f field.Phone) {
	c := b.base(f, "tel")
	c.Placeholder = PhonePlaceholder
	if f.Placeholder != "" {
		c.Placeholder = f.Placeholder
	}
	c.Hint = PhoneHint
	c.Prefix = PhonePrefix
	c.MaxLength = PhoneMaxLength
	b.controls = append(b.controls, c)
}

func (b *controlBuilder) VisitSelect(f field.Select) {
	c := b.base(f, "select")
	c.Placeholder = "Select " + strings.ToLower(f.Label)
	for _, opt := range f.Options {
		c.Options = append(c.Options, OptionView{
			Label:    opt.Label,
			Value:    opt.Value,
			Selected: c.Value != "" && c.Value == opt.Value,
		})
	}
	b.controls = append(b.controls, c)
}

func (b *controlBuilder) VisitTextarea(f field.Textarea) {
	c := b.base(f, "textarea")
	c.Placeholder = enterPlaceholder(f.Placeholder, f.Label)
	c.FullWidth = true
	b.controls = append(b.controls, c)
}

func (b *controlBuilder) VisitFile(f field.File) {
	c := b.base(f, "file")
	c.Accept = f.AcceptTypes
	c.Hint = fmt.Sprintf("Max: %dMB", f.LimitMB())
	if f.AcceptTypes != "" {
		c.Hint = fmt.Sprintf("Accepted: %s. Max: %dMB", f.AcceptTypes, f.LimitMB())
	}
	if ref, ok := b.state.Values.File(f.Name); ok {
		c.File = &FileView{Name: ref.Name, URL: ref.URL, Size: FormatFileSize(ref.Size), Type: ref.Type}
	}
	b.controls = append(b.controls, c)
}

func (b *controlBuilder) VisitCheckbox(f field.Checkbox) {
	c := b.base(f, "checkbox")
	c.Checked = b.state.Values.Bool(f.Name)
	c.FullWidth = true
	b.controls = append(b.controls, c)
}

func (b *controlBuilder) VisitCaptcha(f field.Captcha) {
	c := b.base(f, "captcha")
	c.Hint = CaptchaText
	c.Verified = b.state.CaptchaVerified
	c.FullWidth = true
	b.controls = append(b.controls, c)
}
