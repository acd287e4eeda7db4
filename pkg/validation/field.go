package validation

import (
	"fmt"
	"regexp"

	"github.com/goliatone/go-formwizard/pkg/field"
)

// Aux carries validation inputs that live outside the value map.
type Aux struct {
	CaptchaVerified bool
}

const (
	MsgInvalidEmail     = "Please enter a valid email address"
	MsgInvalidPhone     = "Please enter a valid 10-digit mobile number"
	MsgPasswordMismatch = "Passwords do not match"
	MsgCaptcha          = "Please verify that you are human"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)
)

// Field validates a single field. Hidden fields always pass. Checks run in a
// fixed order (required, then the variant format rule) and a later failing
// check replaces an earlier message.
func Field(f field.Field, values field.Values, aux Aux) string {
	if f == nil || !field.Visible(f, values) {
		return ""
	}
	c := &checker{values: values, aux: aux}
	f.Accept(c)
	return c.msg
}

// Fields validates the visible subset of fields and returns the failures
// keyed by field name. The result is never nil.
func Fields(fields []field.Field, values field.Values, aux Aux) map[string]string {
	errs := make(map[string]string)
	for _, f := range field.VisibleFields(fields, values) {
		if msg := Field(f, values, aux); msg != "" {
			errs[f.Common().Name] = msg
		}
	}
	return errs
}

// Email reports whether value has a local@domain.tld shape.
func Email(value string) bool {
	return emailPattern.MatchString(value)
}

// Phone reports whether value holds a ten digit mobile number starting with
// 6-9 once separators are stripped.
func Phone(value string) bool {
	return phonePattern.MatchString(field.Digits(value))
}

// FileSize returns the oversize message for f when size exceeds its limit.
func FileSize(f field.File, size int64) string {
	if size > f.MaxBytes() {
		return fmt.Sprintf("File size should not exceed %dMB", f.LimitMB())
	}
	return ""
}

// Required returns the required-field message for f.
func Required(f field.Field) string {
	base := f.Common()
	if f.Kind() == field.KindCheckbox {
		return "Please check " + base.Label
	}
	return base.Label + " is required"
}

type checker struct {
	values field.Values
	aux    Aux
	msg    string
}

func (c *checker) required(f field.Field) {
	base := f.Common()
	if base.Required && !c.values.Present(base.Name) {
		c.msg = Required(f)
	}
}

func (c *checker) nonEmptyString(name string) (string, bool) {
	s, ok := c.values[name].(string)
	return s, ok && s != ""
}

func (c *checker) VisitText(f field.Text) {
	c.required(f)
	if f.Kind() != field.KindEmail {
		return
	}
	if s, ok := c.nonEmptyString(f.Name); ok && !Email(s) {
		c.msg = MsgInvalidEmail
	}
}

func (c *checker) VisitDate(f field.Date) { c.required(f) }

func (c *checker) VisitTextarea(f field.Textarea) { c.required(f) }

func (c *checker) VisitSelect(f field.Select) { c.required(f) }

func (c *checker) VisitFile(f field.File) { c.required(f) }

func (c *checker) VisitCheckbox(f field.Checkbox) { c.required(f) }

func (c *checker) VisitPhone(f field.Phone) {
	c.required(f)
	if s, ok := c.nonEmptyString(f.Name); ok && !Phone(s) {
		c.msg = MsgInvalidPhone
	}
}

func (c *checker) VisitPassword(f field.Password) {
	c.required(f)
	s, ok := c.nonEmptyString(f.Name)
	if !ok {
		return
	}
	switch rule := f.Validation.(type) {
	case field.MatchPassword:
		if msg := MatchPassword(s, c.values); msg != "" {
			c.msg = msg
		}
	case field.PasswordRules:
		if msg := Password(s, rule); msg != "" {
			c.msg = msg
		}
	case *field.PasswordRules:
		if rule != nil {
			if msg := Password(s, *rule); msg != "" {
				c.msg = msg
			}
		}
	default:
		if msg := Password(s, field.PasswordRules{}); msg != "" {
			c.msg = msg
		}
	}
}

func (c *checker) VisitCaptcha(f field.Captcha) {
	if f.Required && !c.aux.CaptchaVerified {
		c.msg = MsgCaptcha
	}
}
