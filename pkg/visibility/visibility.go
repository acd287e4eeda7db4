// Package visibility turns textual rules into field conditions. Rules are
// evaluated against the wizard's flat value map; Extras carries caller
// context such as feature flags that is not part of the submitted values.
package visibility

import (
	"log/slog"

	"github.com/goliatone/go-formwizard/pkg/field"
)

// Evaluator determines whether a field should be visible based on a rule
// string and optional context such as current values or scope metadata.
type Evaluator interface {
	Eval(fieldPath, rule string, ctx Context) (bool, error)
}

// Context provides inputs to an Evaluator. Values comes from the form state
// while Extras allows callers to inject arbitrary context such as user roles
// or feature flags.
type Context struct {
	Values map[string]any
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(fieldPath, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(fieldPath, rule string, ctx Context) (bool, error) {
	return fn(fieldPath, rule, ctx)
}

// Condition binds rule to eval and returns a field.Condition. Evaluation
// errors hide the field and are logged once per call with the rule text.
func Condition(eval Evaluator, fieldName, rule string, extras map[string]any) field.Condition {
	if eval == nil || rule == "" {
		return nil
	}
	return func(values field.Values) bool {
		ok, err := eval.Eval(fieldName, rule, Context{Values: values, Extras: extras})
		if err != nil {
			slog.Warn("visibility_rule_failed", "field", fieldName, "rule", rule, "error", err)
			return false
		}
		return ok
	}
}
