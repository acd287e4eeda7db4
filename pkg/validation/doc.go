// Package validation evaluates field definitions against the current value
// map. Every check is a pure function that returns at most one message per
// field; an empty string means the field is valid.
package validation
