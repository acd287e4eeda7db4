// Package template defines the template engine seam HTML renderers depend on.
// The gotemplate subpackage provides the bundled implementation.
package template
