package pgsn

import (
	"errors"
	"time"
)

// Trace captures a single reduction: the entry term, optionally every
// intermediate term, and the result or error. Reduction is deterministic,
// so replaying from Entry reproduces the full computation.
type Trace struct {
	Entry     Term
	Terms     []Term // intermediate terms, when recorded
	Steps     int    // number of steps taken
	Result    Term   // normal form, or the last term reached on error
	Error     string // non-empty on error
	Timestamp string // RFC 3339
}

// TraceEval reduces t like FullyEval and records the run. With keep set
// every intermediate term is retained. Contract violations are recorded
// as the trace error.
func TraceEval(t Term, steps int, keep bool) *Trace {
	tr := &Trace{Entry: t, Timestamp: time.Now().UTC().Format(time.RFC3339)}
	if steps <= 0 {
		tr.Error = ErrStepBudget.Error()
		return tr
	}
	e := Evaluator{
		Steps: steps,
		OnStep: func(i int, u Term) {
			tr.Steps = i
			if keep {
				tr.Terms = append(tr.Terms, u)
			}
		},
	}
	result, err := e.TryEval(t)
	if err != nil {
		tr.Error = err.Error()
		var nt *NonTerminationError
		if errors.As(err, &nt) {
			result = nt.Last
		}
	}
	tr.Result = result
	return tr
}

// ToValue converts a Trace to a nameless Record so that it can be inspected
// by terms. Terms appear as their printed form, except the result which is
// kept as a term.
func (tr *Trace) ToValue() Term {
	m := map[string]Term{
		"entry":     &String{value: tr.Entry.String()},
		"steps":     &Integer{value: int64(tr.Steps)},
		"timestamp": &String{value: tr.Timestamp},
	}

	terms := make([]Term, len(tr.Terms))
	for i, t := range tr.Terms {
		terms[i] = &String{value: t.String()}
	}
	m["terms"] = &List{terms: terms}

	if tr.Result != nil {
		m["result"] = tr.Result
	}
	if tr.Error != "" {
		m["error"] = &String{value: tr.Error}
	}
	return &Record{attrs: m}
}
