package pgsn

import "strings"

// Context is the flattened view of an application chain: f a b c becomes
// Head f with Args (a, b, c). Reduction on a context is leftmost-outermost.
type Context struct {
	Head Term
	Args []Term
}

// Spine flattens t into a context. A term that is not an application
// becomes a context with no arguments.
func Spine(t Term) Context {
	var args []Term
	for {
		app, ok := t.(*App)
		if !ok {
			break
		}
		args = append(args, app.arg)
		t = app.fn
	}
	for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
		args[i], args[j] = args[j], args[i]
	}
	return Context{Head: t, Args: args}
}

// newContext re-flattens head in case a step produced an application.
func newContext(head Term, args []Term) Context {
	c := Spine(head)
	c.Args = append(c.Args, args...)
	return c
}

// Term rebuilds the application chain.
func (c Context) Term() Term {
	t := c.Head
	for _, a := range c.Args {
		t = NewApp(t, a)
	}
	return t
}

// Reduce performs one step. In priority order: beta-reduce an abstraction
// head, apply an applicable head, reduce the head, reduce the leftmost
// reducible argument. It returns false when the context is in normal form.
func (c Context) Reduce() (Context, bool) {
	if abs, ok := c.Head.(*Abs); ok && len(c.Args) > 0 {
		return newContext(betaReduce(abs.body, c.Args[0]), c.Args[1:]), true
	}
	if Applicable(c.Head, c.Args) {
		reduced, rest := ApplyArgs(c.Head, c.Args)
		return newContext(reduced, rest), true
	}
	if h := c.Head.evalOrNil(); h != nil {
		return newContext(h, c.Args), true
	}
	for i, a := range c.Args {
		r := a.evalOrNil()
		if r == nil {
			continue
		}
		args := append([]Term(nil), c.Args...)
		args[i] = r
		return Context{Head: c.Head, Args: args}, true
	}
	return c, false
}

func (c Context) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Head.String())
	for _, a := range c.Args {
		parts = append(parts, a.String())
	}
	return "[" + strings.Join(parts, " | ") + "]"
}
