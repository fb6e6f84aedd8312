package pgsn

import (
	"errors"
	"log"
)

// DefaultSteps is the step budget of an Evaluator whose Steps is zero.
const DefaultSteps = 100000

// ErrStepBudget is returned when a caller supplies a non-positive budget.
var ErrStepBudget = errors.New("step budget must be positive")

// EvalOrNil performs one leftmost-outermost step on t and returns the
// nameless result, or nil when t is in normal form. Named terms are
// converted to nameless form first.
func EvalOrNil(t Term) Term {
	if t.Named() {
		t = RemoveName(t)
	}
	next := t.evalOrNil()
	if next == nil {
		return nil
	}
	if next.Named() {
		violation("step produced a named term")
	}
	if Equal(next, t) {
		violation("step did not change %s", t)
	}
	return next
}

// Eval performs one step, returning the nameless t itself when no step
// applies.
func Eval(t Term) Term {
	if t.Named() {
		t = RemoveName(t)
	}
	return orElse(EvalOrNil(t), t)
}

// IsNormal reports whether no reduction step applies to t.
func IsNormal(t Term) bool {
	return EvalOrNil(t) == nil
}

// FullyEval reduces t to normal form using at most steps reduction steps.
// steps must be positive.
func FullyEval(t Term, steps int) (Term, error) {
	if steps <= 0 {
		return nil, ErrStepBudget
	}
	e := Evaluator{Steps: steps}
	return e.Eval(t)
}

// TryFullyEval is FullyEval with contract violations raised during
// reduction, such as a step that does not change the term, returned as a
// *ViolationError instead of panicking.
func TryFullyEval(t Term, steps int) (Term, error) {
	if steps <= 0 {
		return nil, ErrStepBudget
	}
	e := Evaluator{Steps: steps}
	return e.TryEval(t)
}

// Evaluator drives reduction to normal form under a step budget. An
// Evaluator holds no state between calls and may be shared by goroutines
// as long as OnStep is safe for concurrent use.
type Evaluator struct {
	// Steps is the budget. Zero means DefaultSteps; negative budgets are
	// rejected with ErrStepBudget.
	Steps int
	// Logger, when set, receives a progress line every LogEvery steps.
	Logger   *log.Logger
	LogEvery int
	// OnStep is called after every step with the step number and the new
	// term.
	OnStep func(step int, t Term)
}

func (e *Evaluator) budget() int {
	if e.Steps == 0 {
		return DefaultSteps
	}
	return e.Steps
}

// Eval reduces t to normal form within e.Steps steps (DefaultSteps when
// zero). It returns a *NonTerminationError holding the last term when the
// budget runs out first.
func (e *Evaluator) Eval(t Term) (Term, error) {
	steps := e.budget()
	if steps < 0 {
		return nil, ErrStepBudget
	}
	if t.Named() {
		t = RemoveName(t)
	}
	for i := 1; i <= steps; i++ {
		next := EvalOrNil(t)
		if next == nil {
			return t, nil
		}
		t = next
		if e.OnStep != nil {
			e.OnStep(i, t)
		}
		if e.Logger != nil && e.LogEvery > 0 && i%e.LogEvery == 0 {
			e.Logger.Printf("reduction: %d steps", i)
		}
	}
	if IsNormal(t) {
		return t, nil
	}
	return nil, &NonTerminationError{Last: t, Steps: steps}
}

// TryEval is Eval returning contract violations as a *ViolationError.
func (e *Evaluator) TryEval(t Term) (n Term, err error) {
	defer recoverViolation(&err)
	return e.Eval(t)
}
