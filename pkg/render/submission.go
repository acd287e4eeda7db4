package render

import (
	"sort"
	"strconv"
	"strings"
)

// Hidden input names the bundled renderers emit with every step.
const (
	StepInputName     = "_step"
	InstanceInputName = "_instance"
	ActionInputName   = "_action"
)

// Form actions carried by ActionInputName. Jump and Remove take an argument
// after a colon: "jump:2", "remove:resume".
const (
	ActionSave     = "save"
	ActionNext     = "next"
	ActionPrevious = "previous"
	ActionJump     = "jump"
	ActionRemove   = "remove"
	ActionSubmit   = "submit"
)

// Action is a decoded ActionInputName value.
type Action struct {
	Kind   string
	Target int
	Field  string
}

// ParseAction decodes an action button value. Unknown or malformed values
// decode to ActionSave so the post still records the edited values.
func ParseAction(raw string) Action {
	kind, arg, _ := strings.Cut(strings.TrimSpace(raw), ":")
	switch kind {
	case ActionNext, ActionPrevious, ActionSubmit:
		return Action{Kind: kind}
	case ActionJump:
		if n, err := strconv.Atoi(arg); err == nil && n >= 0 {
			return Action{Kind: kind, Target: n}
		}
	case ActionRemove:
		if arg != "" {
			return Action{Kind: kind, Field: arg}
		}
	}
	return Action{Kind: ActionSave}
}

// HiddenField is a hidden input emitted next to the step controls.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField with a trimmed name.
func Hidden(name, value string) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: value}
}

// CSRFToken carries a request forgery token. The input name must match what
// the protecting middleware reads, e.g. "gorilla.csrf.Token".
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// StepField records the step the browser was showing when it posted, so the
// server can ignore stale tabs.
func StepField(step int) HiddenField {
	return Hidden(StepInputName, strconv.Itoa(step))
}

// InstanceField carries the wizard instance key.
func InstanceField(key string) HiddenField {
	return Hidden(InstanceInputName, key)
}

// MergeHiddenFields returns a copy of base with the provided fields applied.
// Empty names are ignored; later fields win on name collisions.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	if len(base) == 0 && len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, f := range fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			continue
		}
		out[name] = f.Value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields sorts hidden fields by name for deterministic output.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		if strings.TrimSpace(name) != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{Name: strings.TrimSpace(name), Value: fields[name]})
	}
	return result
}
