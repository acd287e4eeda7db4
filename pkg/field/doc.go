// Package field defines the declarative form model consumed by the wizard,
// the validation engine and the renderers. A Field is a closed variant: the
// concrete types in this package are the only implementations, and every
// dispatcher implements Visitor so adding a variant is a compile error until
// each of them handles it. Values for all steps of one form live in a single
// flat Values map keyed by field name.
package field
