package pgsn

import (
	"fmt"
	"strings"
)

// NonTerminationError is returned when a reduction does not reach normal
// form within its step budget. Last is the term reached so far; evaluation
// can be resumed from it.
type NonTerminationError struct {
	Last  Term
	Steps int
}

func (e *NonTerminationError) Error() string {
	return fmt.Sprintf("reduction did not terminate within %d steps", e.Steps)
}

// ProjectionError is returned when a term cannot be turned into a host
// value, typically because it is stuck.
type ProjectionError struct {
	Term   Term
	Reason string
}

func (e *ProjectionError) Error() string {
	return fmt.Sprintf("cannot project %s: %s", e.Term, e.Reason)
}

// WireError reports a malformed wire document.
type WireError struct {
	Path string
	Msg  string
}

func (e *WireError) Error() string {
	if e.Path == "" {
		return "wire: " + e.Msg
	}
	return fmt.Sprintf("wire: %s: %s", e.Path, e.Msg)
}

// ViolationError carries a contract violation recovered by TryEval.
type ViolationError struct {
	Msg string
}

func (e *ViolationError) Error() string { return e.Msg }

// recoverViolation turns a pgsn contract-violation panic into a
// *ViolationError stored in *errp. Other panics propagate.
func recoverViolation(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	msg, ok := r.(string)
	if !ok || !strings.HasPrefix(msg, "pgsn: ") {
		panic(r)
	}
	*errp = &ViolationError{Msg: msg}
}
