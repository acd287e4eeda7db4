package field

import (
	"fmt"
	"strings"
)

// Step groups fields presented together on one wizard page.
type Step struct {
	Title       string
	Description string
	Icon        string
	Fields      []Field
}

// Check verifies that steps is non-empty and that every field has a unique,
// non-empty name across all steps.
func Check(steps []Step) error {
	if len(steps) == 0 {
		return ErrNoSteps
	}
	seen := make(map[string]int)
	for i, step := range steps {
		for _, f := range step.Fields {
			if f == nil {
				return fmt.Errorf("field: step %d contains a nil field", i)
			}
			name := strings.TrimSpace(f.Common().Name)
			if name == "" {
				return fmt.Errorf("%w (step %d, label %q)", ErrEmptyName, i, f.Common().Label)
			}
			if prev, ok := seen[name]; ok {
				return fmt.Errorf("%w: %q in steps %d and %d", ErrDuplicateName, name, prev, i)
			}
			seen[name] = i
			if text, ok := f.(Text); ok {
				switch text.Kind() {
				case KindText, KindEmail, KindNumber:
				default:
					return fmt.Errorf("%w: %q on field %q", ErrInvalidKind, text.TextKind, name)
				}
			}
		}
	}
	return nil
}

// Lookup finds a field by name and returns it together with its step index.
func Lookup(steps []Step, name string) (Field, int, bool) {
	for i, step := range steps {
		for _, f := range step.Fields {
			if f != nil && f.Common().Name == name {
				return f, i, true
			}
		}
	}
	return nil, -1, false
}
