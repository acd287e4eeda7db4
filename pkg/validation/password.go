package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-formwizard/pkg/field"
)

// SpecialChars is the character set RequireSpecialChars accepts.
const SpecialChars = `!@#$%^&*(),.?":{}|<>`

// Password evaluates rules in order (length, uppercase, lowercase, numbers,
// special characters, custom pattern) and returns the first failure. Unset
// rules take their defaults.
func Password(password string, rules field.PasswordRules) string {
	if minLen := rules.Length(); utf8.RuneCountInString(password) < minLen {
		return fmt.Sprintf("Password must be at least %d characters long", minLen)
	}
	if rules.Uppercase() && !containsRange(password, 'A', 'Z') {
		return "Password must contain at least one uppercase letter"
	}
	if rules.Lowercase() && !containsRange(password, 'a', 'z') {
		return "Password must contain at least one lowercase letter"
	}
	if rules.Numbers() && !containsRange(password, '0', '9') {
		return "Password must contain at least one number"
	}
	if rules.SpecialChars() && !strings.ContainsAny(password, SpecialChars) {
		return "Password must contain at least one special character"
	}
	if rules.CustomPattern != nil && !rules.CustomPattern.MatchString(password) {
		if rules.CustomMessage != "" {
			return rules.CustomMessage
		}
		return "Password does not meet the required pattern"
	}
	return ""
}

// MatchPassword compares confirmation with the value stored under
// field.PasswordFieldName. A missing password never mismatches.
func MatchPassword(confirmation string, values field.Values) string {
	password, _ := values[field.PasswordFieldName].(string)
	if password == "" {
		return ""
	}
	if confirmation != password {
		return MsgPasswordMismatch
	}
	return ""
}

func containsRange(s string, lo, hi rune) bool {
	for _, r := range s {
		if r >= lo && r <= hi {
			return true
		}
	}
	return false
}
