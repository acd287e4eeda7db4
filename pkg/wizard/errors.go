package wizard

import "errors"

var (
	// ErrUnknownField is returned when a mutation names a field that is not
	// declared in any step.
	ErrUnknownField = errors.New("wizard: unknown field")
	// ErrKindMismatch is returned when a mutation does not fit the field
	// variant, such as SetChecked on a text field.
	ErrKindMismatch = errors.New("wizard: operation does not match field kind")
	// ErrInstanceKeyRequired is returned when a progress store is configured
	// without an instance key.
	ErrInstanceKeyRequired = errors.New("wizard: instance key is required with a progress store")
	// ErrNoUploader is returned by UploadFile when no upload client is set.
	ErrNoUploader = errors.New("wizard: upload client not configured")
	// ErrFileTooLarge is returned when a picked file exceeds the field limit.
	ErrFileTooLarge = errors.New("wizard: file too large")
	// ErrStaleResult is returned when an upload finished after the field was
	// changed again; the result is discarded.
	ErrStaleResult = errors.New("wizard: stale async result discarded")
	// ErrValidation is returned by Submit when the last step has errors.
	ErrValidation = errors.New("wizard: validation failed")
	// ErrBusy is returned by Submit while a submission is in flight.
	ErrBusy = errors.New("wizard: submission in progress")
	// ErrNotLastStep is returned by Submit before the last step is reached.
	ErrNotLastStep = errors.New("wizard: submit is only available on the last step")
)
