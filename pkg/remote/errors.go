package remote

import (
	"errors"
	"fmt"
)

var (
	// ErrUnreachable means the authority could not be contacted at all.
	ErrUnreachable = errors.New("reservation authority unreachable")
	// ErrMalformed means a response arrived but could not be decoded or was
	// missing expected fields. This is a decoding defect, not a connectivity
	// defect, so it does not flip the connection state to error.
	ErrMalformed = errors.New("malformed response from reservation authority")
)

// RejectedError is an explicit business refusal from the authority, e.g. the
// slot was taken between check and submit. It is distinct from transport and
// decoding failures.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("booking rejected: %s", e.Reason)
}
