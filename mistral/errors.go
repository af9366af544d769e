package mistral

import (
	"errors"
	"fmt"
)

var errNilPrompt = errors.New("prompt is required")

// MalformedResponseError reports a reply that is not JSON or lacks an
// expected key.
type MalformedResponseError struct {
	Reason  string
	Payload string
	Cause   error
}

func (e *MalformedResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed response: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("malformed response: %s", e.Reason)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}
