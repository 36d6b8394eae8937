package dispatch

import (
	"errors"
	"fmt"

	"github.com/vango-dev/textmux/pkg/message"
	"github.com/vango-dev/textmux/pkg/router"
)

// ErrWrongPrefix is returned when the configured prefix is non-empty and
// the content does not start with it.
var ErrWrongPrefix = errors.New("textmux: content does not start with required prefix")

// ErrNoMatch aliases the store's sentinel so callers can check either
// package.
var ErrNoMatch = router.ErrNoMatch

// HaltedError reports that an interceptor halted the pipeline before the
// terminal handler ran. It carries the message at the point of halting,
// including whatever assigns and params were set before the halt.
type HaltedError struct {
	Message *message.Message
}

func (e *HaltedError) Error() string {
	return fmt.Sprintf("textmux: pipeline halted on %q", e.Message.Route())
}

// ContractError reports a contract violation by an external collaborator:
// an interceptor or handler that panicked or returned a malformed message.
// It is deliberately distinct from the expected outcomes (no match, wrong
// prefix, halt) so callers can tell a broken collaborator from a normal
// negative result.
type ContractError struct {
	// Step names the offending pipeline step, or "handler".
	Step string

	// Reason describes the violation.
	Reason string

	// Recovered is the recovered panic value, if the violation was a panic.
	Recovered any
}

func (e *ContractError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("textmux: %s: %s: %v", e.Step, e.Reason, e.Recovered)
	}
	return fmt.Sprintf("textmux: %s: %s", e.Step, e.Reason)
}

// Outcome classifies an invocation error onto a small, stable label set,
// shared by metrics, logging and the gateway's wire format.
func Outcome(err error) string {
	var (
		halted   *HaltedError
		contract *ContractError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &halted):
		return "halted"
	case errors.Is(err, ErrNoMatch):
		return "no_match"
	case errors.Is(err, ErrWrongPrefix):
		return "wrong_prefix"
	case errors.As(err, &contract):
		return "contract_violation"
	default:
		return "error"
	}
}
