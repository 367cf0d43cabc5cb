package tree

import (
	"errors"
	"fmt"
)

// ErrMemberNotFound is returned when a referenced member ID is not in the tree
var ErrMemberNotFound = errors.New("member not found in tree")

// ValidationError reports a mutation that would break a graph invariant.
// The reason is user-visible so clients can render an actionable message.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
