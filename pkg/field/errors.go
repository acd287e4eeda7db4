package field

import "errors"

var (
	// ErrNoSteps is returned when a form is declared without steps.
	ErrNoSteps = errors.New("field: at least one step is required")
	// ErrEmptyName is returned when a field has no name.
	ErrEmptyName = errors.New("field: name is required")
	// ErrDuplicateName is returned when two fields share a name across steps.
	ErrDuplicateName = errors.New("field: duplicate field name")
	// ErrInvalidKind is returned when a text field carries a kind other than
	// text, email or number.
	ErrInvalidKind = errors.New("field: invalid text kind")
)
