package field

import "regexp"

// Kind is the wire tag of a field variant.
type Kind string

const (
	KindText     Kind = "text"
	KindEmail    Kind = "email"
	KindNumber   Kind = "number"
	KindPassword Kind = "password"
	KindPhone    Kind = "phone"
	KindSelect   Kind = "select"
	KindTextarea Kind = "textarea"
	KindDate     Kind = "date"
	KindFile     Kind = "file"
	KindCheckbox Kind = "checkbox"
	KindCaptcha  Kind = "captcha"
)

// DefaultMaxSizeMB applies to file fields that do not set MaxSizeMB.
const DefaultMaxSizeMB = 5

// Condition reports whether a field is relevant for the current values.
// Fields whose condition returns false are neither rendered nor validated.
type Condition func(Values) bool

// Field is implemented by the variant types of this package only.
type Field interface {
	Common() Base
	Kind() Kind
	Accept(Visitor)
	isField()
}

// Visitor dispatches over the closed set of field variants.
type Visitor interface {
	VisitText(Text)
	VisitDate(Date)
	VisitPassword(Password)
	VisitPhone(Phone)
	VisitSelect(Select)
	VisitTextarea(Textarea)
	VisitFile(File)
	VisitCheckbox(Checkbox)
	VisitCaptcha(Captcha)
}

// Base holds the attributes shared by every variant.
type Base struct {
	Name      string
	Label     string
	Required  bool
	Condition Condition
}

// Common returns the shared attributes.
func (b Base) Common() Base { return b }

// Text covers plain text, email and number inputs; TextKind selects which.
// An empty TextKind means KindText.
type Text struct {
	Base
	TextKind    Kind
	Placeholder string
}

// Date is a calendar date input holding a YYYY-MM-DD string.
type Date struct {
	Base
}

// Password is a masked input. Validation is either MatchPassword or a
// PasswordRules record; nil applies no character rules.
type Password struct {
	Base
	ShowToggle bool
	Validation PasswordValidation
}

// Phone is a mobile number input formatted as XXX-XXX-XXXX while typing.
type Phone struct {
	Base
	Placeholder string
}

// Select offers an ordered list of options.
type Select struct {
	Base
	Options []Option
}

// Textarea is a multi-line text input.
type Textarea struct {
	Base
	Placeholder string
}

// File uploads a file and stores the resulting FileRef as the value.
type File struct {
	Base
	// AcceptTypes lists accepted MIME types or extensions, e.g. "image/*".
	AcceptTypes string
	MaxSizeMB   int
	Path        string
}

// Checkbox stores a boolean value.
type Checkbox struct {
	Base
}

// Captcha holds no value; its verified flag lives outside the value map.
type Captcha struct {
	Base
}

// Option is one select choice.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Options builds label-as-value options from bare strings.
func Options(labels ...string) []Option {
	out := make([]Option, len(labels))
	for i, label := range labels {
		out[i] = Option{Label: label, Value: label}
	}
	return out
}

// PasswordValidation is either MatchPassword or PasswordRules.
type PasswordValidation interface {
	isPasswordValidation()
}

// MatchPassword requires the value to equal the value stored under
// PasswordFieldName.
type MatchPassword struct{}

// PasswordFieldName is the value key MatchPassword compares against.
const PasswordFieldName = "password"

// PasswordRules are evaluated in order: length, uppercase, lowercase,
// numbers, special characters, custom pattern. A nil rule takes its default:
// minimum length 8 with upper, lower and numeric characters required and
// special characters optional.
type PasswordRules struct {
	MinLength           *int
	RequireUppercase    *bool
	RequireLowercase    *bool
	RequireNumbers      *bool
	RequireSpecialChars *bool
	CustomPattern       *regexp.Regexp
	CustomMessage       string
}

// Default password rule values.
const (
	DefaultMinLength           = 8
	DefaultRequireUppercase    = true
	DefaultRequireLowercase    = true
	DefaultRequireNumbers      = true
	DefaultRequireSpecialChars = false
)

// DefaultPasswordRules returns the defaults with every rule set explicitly.
func DefaultPasswordRules() PasswordRules {
	return PasswordRules{
		MinLength:           Ptr(DefaultMinLength),
		RequireUppercase:    Ptr(DefaultRequireUppercase),
		RequireLowercase:    Ptr(DefaultRequireLowercase),
		RequireNumbers:      Ptr(DefaultRequireNumbers),
		RequireSpecialChars: Ptr(DefaultRequireSpecialChars),
	}
}

// Length returns the effective minimum length.
func (r PasswordRules) Length() int { return valueOr(r.MinLength, DefaultMinLength) }

// Uppercase reports whether an uppercase letter is required.
func (r PasswordRules) Uppercase() bool { return valueOr(r.RequireUppercase, DefaultRequireUppercase) }

// Lowercase reports whether a lowercase letter is required.
func (r PasswordRules) Lowercase() bool { return valueOr(r.RequireLowercase, DefaultRequireLowercase) }

// Numbers reports whether a digit is required.
func (r PasswordRules) Numbers() bool { return valueOr(r.RequireNumbers, DefaultRequireNumbers) }

// SpecialChars reports whether a special character is required.
func (r PasswordRules) SpecialChars() bool {
	return valueOr(r.RequireSpecialChars, DefaultRequireSpecialChars)
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func (MatchPassword) isPasswordValidation() {}
func (PasswordRules) isPasswordValidation() {}

func (f Text) Kind() Kind {
	if f.TextKind == "" {
		return KindText
	}
	return f.TextKind
}
func (Date) Kind() Kind     { return KindDate }
func (Password) Kind() Kind { return KindPassword }
func (Phone) Kind() Kind    { return KindPhone }
func (Select) Kind() Kind   { return KindSelect }
func (Textarea) Kind() Kind { return KindTextarea }
func (File) Kind() Kind     { return KindFile }
func (Checkbox) Kind() Kind { return KindCheckbox }
func (Captcha) Kind() Kind  { return KindCaptcha }

func (f Text) Accept(v Visitor)     { v.VisitText(f) }
func (f Date) Accept(v Visitor)     { v.VisitDate(f) }
func (f Password) Accept(v Visitor) { v.VisitPassword(f) }
func (f Phone) Accept(v Visitor)    { v.VisitPhone(f) }
func (f Select) Accept(v Visitor)   { v.VisitSelect(f) }
func (f Textarea) Accept(v Visitor) { v.VisitTextarea(f) }
func (f File) Accept(v Visitor)     { v.VisitFile(f) }
func (f Checkbox) Accept(v Visitor) { v.VisitCheckbox(f) }
func (f Captcha) Accept(v Visitor)  { v.VisitCaptcha(f) }

func (Text) isField()     {}
func (Date) isField()     {}
func (Password) isField() {}
func (Phone) isField()    {}
func (Select) isField()   {}
func (Textarea) isField() {}
func (File) isField()     {}
func (Checkbox) isField() {}
func (Captcha) isField()  {}

// MaxBytes returns the upload limit in bytes, applying DefaultMaxSizeMB.
func (f File) MaxBytes() int64 {
	return int64(f.LimitMB()) * 1024 * 1024
}

// LimitMB returns MaxSizeMB or DefaultMaxSizeMB when unset.
func (f File) LimitMB() int {
	if f.MaxSizeMB <= 0 {
		return DefaultMaxSizeMB
	}
	return f.MaxSizeMB
}

// Visible reports whether f is relevant for values.
func Visible(f Field, values Values) bool {
	if f == nil {
		return false
	}
	cond := f.Common().Condition
	return cond == nil || cond(values)
}

// VisibleFields filters fields by their conditions, preserving order.
func VisibleFields(fields []Field, values Values) []Field {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if Visible(f, values) {
			out = append(out, f)
		}
	}
	return out
}
