package pgsn

import (
	"context"
	"sync"
)

// Result is the outcome of one evaluation in FullyEvalAll.
type Result struct {
	Term Term
	Err  error
}

// FullyEvalAll fully evaluates independent terms on at most workers
// goroutines, each with its own budget of steps. Results are in input
// order. Once ctx is done no further terms are started; those get ctx.Err().
// A reduction already running is not interrupted. A contract violation in
// one term is reported as that term's *ViolationError.
func FullyEvalAll(ctx context.Context, terms []Term, steps, workers int) []Result {
	if workers <= 0 {
		workers = 1
	}
	results := make([]Result, len(terms))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				t, err := TryFullyEval(terms[i], steps)
				results[i] = Result{Term: t, Err: err}
			}
		}()
	}

	next := 0
dispatch:
	for ; next < len(terms); next++ {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- next:
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(terms); i++ {
		results[i] = Result{Err: ctx.Err()}
	}
	return results
}
