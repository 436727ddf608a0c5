package workflow

import (
	"errors"
	"fmt"
	"strings"
)

// Guard errors returned by orchestrator entry points before any network
// call is made.
var (
	// ErrBusy rejects a forward transition while another call is in
	// flight. Only Back and Reset are permitted during loading.
	ErrBusy = errors.New("another operation is in progress")

	// ErrStale is returned when a call settled after the workflow was
	// reset or navigated away; its result has been discarded.
	ErrStale = errors.New("workflow changed while the call was in flight; result discarded")

	// ErrInvalidStage rejects an entry point invoked from the wrong stage.
	ErrInvalidStage = errors.New("operation is not valid in the current stage")

	// ErrNotReady signals a missing upstream artifact, e.g. reading the
	// enhancement selection before a method has been chosen.
	ErrNotReady = errors.New("required data from an earlier stage is missing")
)

// SelectionError reports an enhancement method that is not present in the
// current color set. It is a user-input failure: the stage is unchanged and
// no further network call is made.
type SelectionError struct {
	Method    string
	Available []string
}

func (e *SelectionError) Error() string {
	return fmt.Sprintf("enhancement method %q is not available (have: %s)",
		e.Method, strings.Join(e.Available, ", "))
}

// ExportBlockedError reports a validate-export refusal. Messages carries
// the backend's reasons verbatim. This is a normal outcome of the export
// precondition check, not a service failure.
type ExportBlockedError struct {
	Messages []string
}

func (e *ExportBlockedError) Error() string {
	if len(e.Messages) == 0 {
		return "export blocked by validation"
	}
	return "export blocked: " + strings.Join(e.Messages, "; ")
}
