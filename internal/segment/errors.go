package segment

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned, wrapped with detail, when the image or the
// options cannot be segmented. No state is mutated when it is returned.
var ErrInvalidArgument = errors.New("invalid argument")

// InternalError reports a broken internal invariant such as a relabel chain
// that does not terminate or a segment whose pixel count disagrees with its
// pixel list. It indicates a bug rather than bad input.
type InternalError struct {
	Op     string
	Detail string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("segment: internal error in %s: %s", e.Op, e.Detail)
}

func internalErrorf(op, format string, args ...any) error {
	return &InternalError{Op: op, Detail: fmt.Sprintf(format, args...)}
}
