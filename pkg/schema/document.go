package schema

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formwizard/pkg/field"
)

// matchPasswordTag is the string form of field.MatchPassword in documents.
const matchPasswordTag = "matchPassword"

type documentFile struct {
	Title      string      `json:"title" yaml:"title"`
	SubmitText string      `json:"submitText" yaml:"submitText"`
	Steps      []stepFile  `json:"steps" yaml:"steps"`
	Fields     []fieldFile `json:"fields" yaml:"fields"`
}

type stepFile struct {
	Title       string      `json:"title" yaml:"title"`
	Description string      `json:"description" yaml:"description"`
	Icon        string      `json:"icon" yaml:"icon"`
	Fields      []fieldFile `json:"fields" yaml:"fields"`
}

type fieldFile struct {
	Name        string             `json:"name" yaml:"name"`
	Type        string             `json:"type" yaml:"type"`
	Label       string             `json:"label" yaml:"label"`
	Required    bool               `json:"required" yaml:"required"`
	Placeholder string             `json:"placeholder" yaml:"placeholder"`
	Condition   string             `json:"condition" yaml:"condition"`
	ShowToggle  bool               `json:"showToggle" yaml:"showToggle"`
	Validation  passwordValidation `json:"validation" yaml:"validation"`
	Options     []optionFile       `json:"options" yaml:"options"`
	Accept      string             `json:"accept" yaml:"accept"`
	MaxSizeMB   int                `json:"maxSizeMB" yaml:"maxSizeMB"`
	Path        string             `json:"path" yaml:"path"`
}

// passwordValidation accepts either the "matchPassword" tag or a rules
// mapping. Omitted rule keys stay nil and take the field package defaults.
type passwordValidation struct {
	match bool
	rules *rulesFile
}

type rulesFile struct {
	MinLength           *int   `json:"minLength" yaml:"minLength"`
	RequireUppercase    *bool  `json:"requireUppercase" yaml:"requireUppercase"`
	RequireLowercase    *bool  `json:"requireLowercase" yaml:"requireLowercase"`
	RequireNumbers      *bool  `json:"requireNumbers" yaml:"requireNumbers"`
	RequireSpecialChars *bool  `json:"requireSpecialChars" yaml:"requireSpecialChars"`
	CustomPattern       string `json:"customPattern" yaml:"customPattern"`
	CustomMessage       string `json:"customMessage" yaml:"customMessage"`
}

func (v *passwordValidation) setTag(tag string) error {
	if strings.TrimSpace(tag) != matchPasswordTag {
		return fmt.Errorf("%w: %q", ErrUnknownValidation, tag)
	}
	v.match = true
	return nil
}

func (v *passwordValidation) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null":
		return nil
	case strings.HasPrefix(trimmed, `"`):
		var tag string
		if err := json.Unmarshal(data, &tag); err != nil {
			return err
		}
		return v.setTag(tag)
	default:
		var rules rulesFile
		if err := json.Unmarshal(data, &rules); err != nil {
			return err
		}
		v.rules = &rules
		return nil
	}
}

func (v *passwordValidation) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}
		return v.setTag(node.Value)
	case yaml.MappingNode:
		var rules rulesFile
		if err := node.Decode(&rules); err != nil {
			return err
		}
		v.rules = &rules
		return nil
	default:
		return fmt.Errorf("%w at line %d", ErrUnknownValidation, node.Line)
	}
}

func (v passwordValidation) build() (field.PasswordValidation, error) {
	if v.match {
		return field.MatchPassword{}, nil
	}
	if v.rules == nil {
		return nil, nil
	}
	r := v.rules
	if r.MinLength != nil && *r.MinLength < 0 {
		return nil, fmt.Errorf("schema: minLength must not be negative (got %d)", *r.MinLength)
	}
	rules := field.PasswordRules{
		MinLength:           r.MinLength,
		RequireUppercase:    r.RequireUppercase,
		RequireLowercase:    r.RequireLowercase,
		RequireNumbers:      r.RequireNumbers,
		RequireSpecialChars: r.RequireSpecialChars,
		CustomMessage:       r.CustomMessage,
	}
	if r.CustomPattern != "" {
		re, err := regexp.Compile(r.CustomPattern)
		if err != nil {
			return nil, fmt.Errorf("schema: customPattern: %w", err)
		}
		rules.CustomPattern = re
	}
	return rules, nil
}

// optionFile accepts a bare label-as-value string or a {label, value} pair.
type optionFile field.Option

func (o *optionFile) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil {
		*o = optionFile{Label: label, Value: label}
		return nil
	}
	var pair field.Option
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	*o = optionFile(pair)
	return o.fill()
}

func (o *optionFile) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*o = optionFile{Label: node.Value, Value: node.Value}
		return nil
	}
	var pair field.Option
	if err := node.Decode(&pair); err != nil {
		return err
	}
	*o = optionFile(pair)
	return o.fill()
}

func (o *optionFile) fill() error {
	if o.Label == "" && o.Value == "" {
		return ErrEmptyOption
	}
	if o.Value == "" {
		o.Value = o.Label
	}
	if o.Label == "" {
		o.Label = o.Value
	}
	return nil
}

func (f fieldFile) build(cond field.Condition) (field.Field, error) {
	base := field.Base{
		Name:      strings.TrimSpace(f.Name),
		Label:     f.Label,
		Required:  f.Required,
		Condition: cond,
	}

	switch field.Kind(strings.ToLower(strings.TrimSpace(f.Type))) {
	case field.KindText, "":
		return field.Text{Base: base, Placeholder: f.Placeholder}, nil
	case field.KindEmail:
		return field.Text{Base: base, TextKind: field.KindEmail, Placeholder: f.Placeholder}, nil
	case field.KindNumber:
		return field.Text{Base: base, TextKind: field.KindNumber, Placeholder: f.Placeholder}, nil
	case field.KindDate:
		return field.Date{Base: base}, nil
	case field.KindPassword:
		validation, err := f.Validation.build()
		if err != nil {
			return nil, err
		}
		return field.Password{Base: base, ShowToggle: f.ShowToggle, Validation: validation}, nil
	case field.KindPhone:
		return field.Phone{Base: base, Placeholder: f.Placeholder}, nil
	case field.KindSelect:
		options := make([]field.Option, len(f.Options))
		for i, opt := range f.Options {
			options[i] = field.Option(opt)
		}
		return field.Select{Base: base, Options: options}, nil
	case field.KindTextarea:
		return field.Textarea{Base: base, Placeholder: f.Placeholder}, nil
	case field.KindFile:
		if f.MaxSizeMB < 0 {
			return nil, fmt.Errorf("schema: maxSizeMB must not be negative (got %d)", f.MaxSizeMB)
		}
		return field.File{Base: base, AcceptTypes: f.Accept, MaxSizeMB: f.MaxSizeMB, Path: f.Path}, nil
	case field.KindCheckbox:
		return field.Checkbox{Base: base}, nil
	case field.KindCaptcha:
		return field.Captcha{Base: base}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, f.Type)
	}
}
