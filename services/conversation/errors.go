package conversation

import (
	"errors"
	"fmt"
)

// Sentinel errors for scratchpad updates. All are non-fatal to the turn.
var (
	ErrUnknownField   = errors.New("unknown scratchpad field")
	ErrValueRejected  = errors.New("value failed schema validation")
	ErrFieldProtected = errors.New("required field already holds a valid value")
	ErrStaleTurn      = errors.New("update is older than the stored value")
)

// WorkflowError carries a coded failure from the confirmation workflow.
type WorkflowError struct {
	Code    string
	Message string
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidationError reports an incomplete or invalid creation attempt.
func NewValidationError(msg string) error {
	return &WorkflowError{Code: "validationError", Message: msg}
}

// NewPersistenceError reports a failed artifact-store write. The scratchpad is
// preserved so the creation sequence can be retried.
func NewPersistenceError(err error) error {
	return &WorkflowError{Code: "persistenceError", Message: err.Error()}
}

// IsPersistenceError reports whether err is a failed artifact-store write.
func IsPersistenceError(err error) bool {
	var we *WorkflowError
	return errors.As(err, &we) && we.Code == "persistenceError"
}

// IsValidationError reports whether err is a rejected creation attempt.
func IsValidationError(err error) bool {
	var we *WorkflowError
	return errors.As(err, &we) && we.Code == "validationError"
}
