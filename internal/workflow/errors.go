package workflow

import (
	"errors"
	"fmt"

	"github.com/adpilot/adpilot/internal/adschema"
)

var (
	// ErrInvalidTransition is returned when an operation is attempted
	// from a state that does not permit it.
	ErrInvalidTransition = errors.New("operation not allowed in current state")

	// ErrTransitionInFlight is returned while a previous remote call for
	// this workflow has not yet resolved.
	ErrTransitionInFlight = errors.New("a remote call is still in flight")

	// ErrUnsupportedMediaType is returned per file; other files and the
	// draft are unaffected.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
)

// ValidationError carries the field-level findings of the validation
// engine. It is recoverable: the operator corrects input and re-invokes
// the transition.
type ValidationError struct {
	Fields []adschema.FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}
