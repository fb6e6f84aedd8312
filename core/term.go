package pgsn

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// Meta holds diagnostic annotations attached to a term. It never takes part
// in equality, reduction or naming.
type Meta map[string]string

// Term is a node of the expression tree. A term and all of its children are
// either named (human identifiers) or nameless (de Bruijn indices).
type Term interface {
	Named() bool
	Meta() Meta
	String() string

	// evalOrNil returns the term after one reduction step, or nil when no
	// step applies. The receiver is nameless.
	evalOrNil() Term
	// shiftOrNil and substOrNil return nil when the term is unchanged so
	// that untouched subtrees stay shared.
	shiftOrNil(d, c int) Term
	substOrNil(j int, r Term) Term
	freeVars(acc map[string]struct{})
	removeNames(ctx []string) Term
	withMeta(m Meta) Term
}

type node struct {
	named bool
	meta  Meta
}

func (n node) Named() bool { return n.named }
func (n node) Meta() Meta  { return n.meta }

func (n node) nameless() node { return node{named: false, meta: n.meta} }

func violation(format string, args ...any) {
	panic(fmt.Sprintf("pgsn: "+format, args...))
}

func checkFlags(named bool, what string, ts ...Term) {
	for _, t := range ts {
		if t == nil {
			violation("%s: nil child", what)
		}
		if t.Named() != named {
			violation("%s: mixed named and nameless children", what)
		}
	}
}

// WithMeta returns a copy of t carrying one more metadata entry.
func WithMeta(t Term, key, value string) Term {
	m := make(Meta, len(t.Meta())+1)
	for k, v := range t.Meta() {
		m[k] = v
	}
	m[key] = value
	return t.withMeta(m)
}

// --- Variable ---

// Variable is a named identifier or a de Bruijn index, depending on the
// named flag.
type Variable struct {
	node
	name  string
	index int
}

func NamedVariable(name string) *Variable {
	if name == "" {
		violation("variable: empty name")
	}
	return &Variable{node: node{named: true}, name: name}
}

func IndexVariable(i int) *Variable {
	if i < 0 {
		violation("variable: negative index %d", i)
	}
	return &Variable{index: i}
}

func (v *Variable) Name() string { return v.name }
func (v *Variable) Index() int   { return v.index }

func (v *Variable) evalOrNil() Term { return nil }

func (v *Variable) shiftOrNil(d, c int) Term {
	if v.index < c {
		return nil
	}
	if v.index+d < 0 {
		violation("shift: index %d shifted by %d below zero", v.index, d)
	}
	return &Variable{node: v.node, index: v.index + d}
}

func (v *Variable) substOrNil(j int, r Term) Term {
	if v.index == j {
		return r
	}
	return nil
}

func (v *Variable) freeVars(acc map[string]struct{}) { acc[v.name] = struct{}{} }

func (v *Variable) removeNames(ctx []string) Term {
	i := lo.IndexOf(ctx, v.name)
	if i < 0 {
		violation("remove names: %q missing from naming context", v.name)
	}
	return &Variable{node: v.nameless(), index: i}
}

func (v *Variable) withMeta(m Meta) Term {
	c := *v
	c.meta = m
	return &c
}

// --- Abs ---

// Abs is a single-parameter function. The parameter name is kept only in
// named form.
type Abs struct {
	node
	param string
	body  Term
}

func NewAbs(v *Variable, body Term) *Abs {
	if v == nil || !v.named {
		violation("abs: parameter must be a named variable")
	}
	checkFlags(true, "abs", body)
	return &Abs{node: node{named: true}, param: v.name, body: body}
}

// NamelessAbs builds an abstraction over a nameless body.
func NamelessAbs(body Term) *Abs {
	checkFlags(false, "abs", body)
	return &Abs{body: body}
}

func (a *Abs) Param() string { return a.param }
func (a *Abs) Body() Term    { return a.body }

func (a *Abs) evalOrNil() Term {
	b := a.body.evalOrNil()
	if b == nil {
		return nil
	}
	return &Abs{node: a.node, body: b}
}

func (a *Abs) shiftOrNil(d, c int) Term {
	b := a.body.shiftOrNil(d, c+1)
	if b == nil {
		return nil
	}
	return &Abs{node: a.node, body: b}
}

func (a *Abs) substOrNil(j int, r Term) Term {
	b := a.body.substOrNil(j+1, shift(r, 1, 0))
	if b == nil {
		return nil
	}
	return &Abs{node: a.node, body: b}
}

func (a *Abs) freeVars(acc map[string]struct{}) {
	inner := make(map[string]struct{})
	a.body.freeVars(inner)
	delete(inner, a.param)
	for k := range inner {
		acc[k] = struct{}{}
	}
}

func (a *Abs) removeNames(ctx []string) Term {
	inner := append([]string{a.param}, ctx...)
	return &Abs{node: a.nameless(), body: a.body.removeNames(inner)}
}

func (a *Abs) withMeta(m Meta) Term {
	c := *a
	c.meta = m
	return &c
}

// --- App ---

// App applies Fn to Arg.
type App struct {
	node
	fn  Term
	arg Term
}

func NewApp(fn, arg Term) *App {
	if fn == nil {
		violation("app: nil function")
	}
	checkFlags(fn.Named(), "app", arg)
	return &App{node: node{named: fn.Named()}, fn: fn, arg: arg}
}

func (a *App) Fn() Term  { return a.fn }
func (a *App) Arg() Term { return a.arg }

func (a *App) evalOrNil() Term {
	c, ok := Spine(a).Reduce()
	if !ok {
		return nil
	}
	return c.Term()
}

func (a *App) shiftOrNil(d, c int) Term {
	fn := a.fn.shiftOrNil(d, c)
	arg := a.arg.shiftOrNil(d, c)
	if fn == nil && arg == nil {
		return nil
	}
	return &App{node: a.node, fn: orElse(fn, a.fn), arg: orElse(arg, a.arg)}
}

func (a *App) substOrNil(j int, r Term) Term {
	fn := a.fn.substOrNil(j, r)
	arg := a.arg.substOrNil(j, r)
	if fn == nil && arg == nil {
		return nil
	}
	return &App{node: a.node, fn: orElse(fn, a.fn), arg: orElse(arg, a.arg)}
}

func (a *App) freeVars(acc map[string]struct{}) {
	a.fn.freeVars(acc)
	a.arg.freeVars(acc)
}

func (a *App) removeNames(ctx []string) Term {
	return &App{node: a.nameless(), fn: a.fn.removeNames(ctx), arg: a.arg.removeNames(ctx)}
}

func (a *App) withMeta(m Meta) Term {
	c := *a
	c.meta = m
	return &c
}

// --- Constants ---

// atom supplies the structural operations shared by every 0-arity constant.
type atom struct{}

func (atom) evalOrNil() Term              { return nil }
func (atom) shiftOrNil(int, int) Term     { return nil }
func (atom) substOrNil(int, Term) Term    { return nil }
func (atom) freeVars(map[string]struct{}) {}

// Constant is an opaque symbolic token.
type Constant struct {
	node
	atom
	name string
}

func NewConstant(named bool, name string) *Constant {
	return &Constant{node: node{named: named}, name: name}
}

func (k *Constant) Name() string { return k.name }

func (k *Constant) removeNames([]string) Term { return &Constant{node: k.nameless(), name: k.name} }

func (k *Constant) withMeta(m Meta) Term {
	c := *k
	c.meta = m
	return &c
}

type String struct {
	node
	atom
	value string
}

func NewString(named bool, s string) *String {
	return &String{node: node{named: named}, value: s}
}

func (s *String) Value() string { return s.value }

func (s *String) removeNames([]string) Term { return &String{node: s.nameless(), value: s.value} }

func (s *String) withMeta(m Meta) Term {
	c := *s
	c.meta = m
	return &c
}

type Integer struct {
	node
	atom
	value int64
}

func NewInteger(named bool, i int64) *Integer {
	return &Integer{node: node{named: named}, value: i}
}

func (i *Integer) Value() int64 { return i.value }

func (i *Integer) removeNames([]string) Term { return &Integer{node: i.nameless(), value: i.value} }

func (i *Integer) withMeta(m Meta) Term {
	c := *i
	c.meta = m
	return &c
}

type Boolean struct {
	node
	atom
	value bool
}

func NewBoolean(named bool, b bool) *Boolean {
	return &Boolean{node: node{named: named}, value: b}
}

func (b *Boolean) Value() bool { return b.value }

func (b *Boolean) removeNames([]string) Term { return &Boolean{node: b.nameless(), value: b.value} }

func (b *Boolean) withMeta(m Meta) Term {
	c := *b
	c.meta = m
	return &c
}

// --- List ---

// List is a fixed-length sequence. Applied to an in-range Integer it
// yields the element at that position.
type List struct {
	node
	terms []Term
}

func NewList(named bool, terms []Term) *List {
	checkFlags(named, "list", terms...)
	return &List{node: node{named: named}, terms: append([]Term(nil), terms...)}
}

func (l *List) Len() int { return len(l.terms) }

// Terms returns a copy of the elements.
func (l *List) Terms() []Term { return append([]Term(nil), l.terms...) }

func (l *List) At(i int) Term { return l.terms[i] }

func (l *List) evalOrNil() Term {
	ts := mapSliceOrNil(l.terms, func(t Term) Term { return t.evalOrNil() })
	if ts == nil {
		return nil
	}
	return &List{node: l.node, terms: ts}
}

func (l *List) shiftOrNil(d, c int) Term {
	ts := mapSliceOrNil(l.terms, func(t Term) Term { return t.shiftOrNil(d, c) })
	if ts == nil {
		return nil
	}
	return &List{node: l.node, terms: ts}
}

func (l *List) substOrNil(j int, r Term) Term {
	ts := mapSliceOrNil(l.terms, func(t Term) Term { return t.substOrNil(j, r) })
	if ts == nil {
		return nil
	}
	return &List{node: l.node, terms: ts}
}

func (l *List) freeVars(acc map[string]struct{}) {
	for _, t := range l.terms {
		t.freeVars(acc)
	}
}

func (l *List) removeNames(ctx []string) Term {
	return &List{node: l.nameless(), terms: lo.Map(l.terms, func(t Term, _ int) Term { return t.removeNames(ctx) })}
}

func (l *List) withMeta(m Meta) Term {
	c := *l
	c.meta = m
	return &c
}

func (l *List) arity() int { return 1 }

func (l *List) applicable(args []Term) bool {
	i, ok := args[0].(*Integer)
	return ok && i.value >= 0 && i.value < int64(len(l.terms))
}

func (l *List) apply(args []Term) Term { return l.terms[args[0].(*Integer).value] }

// --- Record ---

// Record maps labels to terms. Applied to a String naming one of its
// labels it yields the value.
type Record struct {
	node
	attrs map[string]Term
}

func NewRecord(named bool, attrs map[string]Term) *Record {
	checkFlags(named, "record", lo.Values(attrs)...)
	return &Record{node: node{named: named}, attrs: lo.Assign(attrs)}
}

// Labels returns the labels in sorted order.
func (r *Record) Labels() []string { return sortedKeys(r.attrs) }

// Attributes returns a copy of the label mapping.
func (r *Record) Attributes() map[string]Term { return lo.Assign(r.attrs) }

func (r *Record) Get(label string) (Term, bool) {
	t, ok := r.attrs[label]
	return t, ok
}

func (r *Record) evalOrNil() Term {
	m := mapTermsOrNil(r.attrs, func(t Term) Term { return t.evalOrNil() })
	if m == nil {
		return nil
	}
	return &Record{node: r.node, attrs: m}
}

func (r *Record) shiftOrNil(d, c int) Term {
	m := mapTermsOrNil(r.attrs, func(t Term) Term { return t.shiftOrNil(d, c) })
	if m == nil {
		return nil
	}
	return &Record{node: r.node, attrs: m}
}

func (r *Record) substOrNil(j int, s Term) Term {
	m := mapTermsOrNil(r.attrs, func(t Term) Term { return t.substOrNil(j, s) })
	if m == nil {
		return nil
	}
	return &Record{node: r.node, attrs: m}
}

func (r *Record) freeVars(acc map[string]struct{}) {
	for _, t := range r.attrs {
		t.freeVars(acc)
	}
}

func (r *Record) removeNames(ctx []string) Term {
	return &Record{node: r.nameless(), attrs: lo.MapValues(r.attrs, func(t Term, _ string) Term { return t.removeNames(ctx) })}
}

func (r *Record) withMeta(m Meta) Term {
	c := *r
	c.meta = m
	return &c
}

func (r *Record) arity() int { return 1 }

func (r *Record) applicable(args []Term) bool {
	s, ok := args[0].(*String)
	if !ok {
		return false
	}
	_, ok = r.attrs[s.value]
	return ok
}

func (r *Record) apply(args []Term) Term { return r.attrs[args[0].(*String).value] }

// --- helpers ---

func orElse(t, def Term) Term {
	if t == nil {
		return def
	}
	return t
}

// mapSliceOrNil applies f to every element and returns nil when f left
// every element unchanged.
func mapSliceOrNil(ts []Term, f func(Term) Term) []Term {
	var out []Term
	for i, t := range ts {
		u := f(t)
		if u == nil {
			continue
		}
		if out == nil {
			out = append([]Term(nil), ts...)
		}
		out[i] = u
	}
	return out
}

// mapTermsOrNil is mapSliceOrNil for label mappings. Labels are visited in
// sorted order so results never depend on map iteration.
func mapTermsOrNil(m map[string]Term, f func(Term) Term) map[string]Term {
	var out map[string]Term
	for _, k := range sortedKeys(m) {
		u := f(m[k])
		if u == nil {
			continue
		}
		if out == nil {
			out = lo.Assign(m)
		}
		out[k] = u
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
