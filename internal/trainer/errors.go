package trainer

import (
	"errors"
	"fmt"
)

// ErrUnknownSession is returned for session ids the registry does not hold.
var ErrUnknownSession = errors.New("unknown session")

// InconsistentStateError reports a broken calling contract, such as
// recording an action the validator rejects or answering a hand that is
// not in flight. It is fatal for the request and never retried.
type InconsistentStateError struct {
	Op     string
	Reason string
	Err    error
}

func (e *InconsistentStateError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: inconsistent state: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: inconsistent state: %s", e.Op, e.Reason)
}

func (e *InconsistentStateError) Unwrap() error {
	return e.Err
}

// IsInconsistentState reports whether err wraps an *InconsistentStateError.
func IsInconsistentState(err error) bool {
	var ie *InconsistentStateError
	return errors.As(err, &ie)
}
