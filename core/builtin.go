package pgsn

import (
	"sort"
	"sync"
)

// Primitive is a host-provided reduction rule of fixed arity. Applicable
// and Apply always receive exactly Arity() arguments; Apply is only called
// after Applicable returned true.
type Primitive interface {
	Name() string
	Arity() int
	Applicable(args []Term) bool
	Apply(args []Term) Term
}

// applier is implemented by every term that can consume arguments from the
// spine: builtins, lists, records, classes and objects.
type applier interface {
	Term
	arity() int
	applicable(args []Term) bool
	apply(args []Term) Term
}

// Applicable reports whether head can consume the leading arguments of
// args.
func Applicable(head Term, args []Term) bool {
	ap, ok := head.(applier)
	if !ok {
		return false
	}
	n := ap.arity()
	return len(args) >= n && ap.applicable(args[:n])
}

// ApplyArgs applies head to the leading arguments of args and returns the
// result together with the arguments it did not consume. Calling it when
// Applicable is false is a contract violation.
func ApplyArgs(head Term, args []Term) (Term, []Term) {
	if !Applicable(head, args) {
		violation("apply: %s is not applicable to %d arguments", head, len(args))
	}
	ap := head.(applier)
	n := ap.arity()
	reduced := ap.apply(args[:n])
	if reduced.Named() {
		violation("apply: %s produced a named term", head)
	}
	return reduced, append([]Term(nil), args[n:]...)
}

// Builtin is the term wrapping a Primitive.
type Builtin struct {
	node
	atom
	prim Primitive
}

func NewBuiltin(named bool, p Primitive) *Builtin {
	if p == nil {
		violation("builtin: nil primitive")
	}
	if p.Arity() < 0 {
		violation("builtin %s: negative arity", p.Name())
	}
	return &Builtin{node: node{named: named}, prim: p}
}

func (b *Builtin) Primitive() Primitive { return b.prim }
func (b *Builtin) Name() string         { return b.prim.Name() }

func (b *Builtin) removeNames([]string) Term { return &Builtin{node: b.nameless(), prim: b.prim} }

func (b *Builtin) withMeta(m Meta) Term {
	c := *b
	c.meta = m
	return &c
}

// evalOrNil fires a builtin of arity zero on its own, without an
// enclosing application.
func (b *Builtin) evalOrNil() Term {
	if b.prim.Arity() != 0 || !b.prim.Applicable(nil) {
		return nil
	}
	r, _ := ApplyArgs(b, nil)
	return r
}

func (b *Builtin) arity() int                  { return b.prim.Arity() }
func (b *Builtin) applicable(args []Term) bool { return b.prim.Applicable(args) }
func (b *Builtin) apply(args []Term) Term      { return b.prim.Apply(args) }

// Prim builds a Primitive from a pair of functions.
func Prim(name string, arity int, applicable func([]Term) bool, apply func([]Term) Term) Primitive {
	return &funcPrimitive{name: name, n: arity, ok: applicable, do: apply}
}

type funcPrimitive struct {
	name string
	n    int
	ok   func([]Term) bool
	do   func([]Term) Term
}

func (p *funcPrimitive) Name() string                { return p.name }
func (p *funcPrimitive) Arity() int                  { return p.n }
func (p *funcPrimitive) Applicable(args []Term) bool { return p.ok(args) }
func (p *funcPrimitive) Apply(args []Term) Term      { return p.do(args) }

// Registry maps primitive names to implementations. The wire codec uses it
// to decode Builtin nodes.
type Registry struct {
	mu    sync.RWMutex
	prims map[string]Primitive
}

func NewRegistry(prims ...Primitive) *Registry {
	r := &Registry{prims: make(map[string]Primitive, len(prims))}
	for _, p := range prims {
		r.Register(p)
	}
	return r
}

// Register adds p. Registering a name twice is a contract violation.
func (r *Registry) Register(p Primitive) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.prims[p.Name()]; dup {
		violation("registry: duplicate primitive %q", p.Name())
	}
	r.prims[p.Name()] = p
}

func (r *Registry) Lookup(name string) (Primitive, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.prims[name]
	return p, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.prims))
	for k := range r.prims {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Term returns the named builtin term for a registered primitive.
func (r *Registry) Term(name string) (*Builtin, bool) {
	p, ok := r.Lookup(name)
	if !ok {
		return nil, false
	}
	return NewBuiltin(true, p), true
}
