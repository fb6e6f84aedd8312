package pgsn

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// ReservedLabel may not be used as an attribute or method name.
const ReservedLabel = "name"

// Class describes objects: an optional parent, an optional name, defaults
// for some attributes, the full attribute set (own and inherited) and the
// methods. Applied to a Record of attribute values it yields an Object.
type Class struct {
	node
	inherit    *Class
	name       string
	defaults   map[string]Term
	attributes []string
	methods    map[string]Term
}

// RootClass builds a class without parent, attributes or methods.
func RootClass(named bool, name string) *Class {
	return &Class{
		node:     node{named: named},
		name:     name,
		defaults: map[string]Term{},
		methods:  map[string]Term{},
	}
}

// ClassDef holds the parts a new class adds on top of its parent.
type ClassDef struct {
	Name       string
	Defaults   map[string]Term
	Attributes []string
	Methods    map[string]Term
}

// DefineClass derives a class from inherit. Inherited defaults, attributes
// and methods are overwritten by the new ones. Invalid definitions are
// contract violations.
func DefineClass(inherit *Class, def ClassDef) *Class {
	if inherit == nil {
		violation("define class: nil parent")
	}
	if err := checkClassDef(inherit, def); err != nil {
		violation("define class: %v", err)
	}
	checkFlags(inherit.named, "define class", lo.Values(def.Defaults)...)
	checkFlags(inherit.named, "define class", lo.Values(def.Methods)...)
	return deriveClass(inherit, def)
}

func checkClassDef(inherit *Class, def ClassDef) error {
	attrs := lo.Union(inherit.attributes, def.Attributes)
	for k := range def.Defaults {
		if !lo.Contains(attrs, k) {
			return fmt.Errorf("default %q is not an attribute", k)
		}
	}
	if lo.Contains(attrs, ReservedLabel) {
		return fmt.Errorf("attribute %q is reserved", ReservedLabel)
	}
	methods := lo.Union(lo.Keys(inherit.methods), lo.Keys(def.Methods))
	if lo.Contains(methods, ReservedLabel) {
		return fmt.Errorf("method %q is reserved", ReservedLabel)
	}
	if both := lo.Intersect(attrs, methods); len(both) > 0 {
		sort.Strings(both)
		return fmt.Errorf("%q is both an attribute and a method", both[0])
	}
	return nil
}

func deriveClass(inherit *Class, def ClassDef) *Class {
	attrs := lo.Union(inherit.attributes, def.Attributes)
	sort.Strings(attrs)
	return &Class{
		node:       node{named: inherit.named},
		inherit:    inherit,
		name:       def.Name,
		defaults:   lo.Assign(inherit.defaults, def.Defaults),
		attributes: attrs,
		methods:    lo.Assign(inherit.methods, def.Methods),
	}
}

func (c *Class) Inherit() *Class { return c.inherit }
func (c *Class) Name() string    { return c.name }

// Attributes returns the attribute set in sorted order.
func (c *Class) Attributes() []string { return append([]string(nil), c.attributes...) }

func (c *Class) Defaults() map[string]Term { return lo.Assign(c.defaults) }
func (c *Class) Methods() map[string]Term  { return lo.Assign(c.methods) }

// IsSubclass walks the parent chain of c looking for other. A root class is
// a subclass only of itself.
func IsSubclass(c, other *Class) bool {
	for k := c; k != nil; k = k.inherit {
		if k == other || Equal(k, other) {
			return true
		}
	}
	return false
}

// traverse applies visit to the parent, defaults and methods and returns
// nil when nothing changed.
func (c *Class) traverse(visit func(Term) Term) Term {
	var inherit Term
	if c.inherit != nil {
		inherit = visit(c.inherit)
	}
	defaults := mapTermsOrNil(c.defaults, visit)
	methods := mapTermsOrNil(c.methods, visit)
	if inherit == nil && defaults == nil && methods == nil {
		return nil
	}
	out := *c
	if inherit != nil {
		out.inherit = inherit.(*Class)
	}
	if defaults != nil {
		out.defaults = defaults
	}
	if methods != nil {
		out.methods = methods
	}
	return &out
}

func (c *Class) evalOrNil() Term {
	return c.traverse(func(t Term) Term { return t.evalOrNil() })
}

func (c *Class) shiftOrNil(d, cut int) Term {
	return c.traverse(func(t Term) Term { return t.shiftOrNil(d, cut) })
}

func (c *Class) substOrNil(j int, r Term) Term {
	return c.traverse(func(t Term) Term { return t.substOrNil(j, r) })
}

func (c *Class) freeVars(acc map[string]struct{}) {
	if c.inherit != nil {
		c.inherit.freeVars(acc)
	}
	for _, t := range c.defaults {
		t.freeVars(acc)
	}
	for _, t := range c.methods {
		t.freeVars(acc)
	}
}

func (c *Class) removeNames(ctx []string) Term {
	out := *c
	out.node = c.nameless()
	if c.inherit != nil {
		out.inherit = c.inherit.removeNames(ctx).(*Class)
	}
	out.defaults = lo.MapValues(c.defaults, func(t Term, _ string) Term { return t.removeNames(ctx) })
	out.methods = lo.MapValues(c.methods, func(t Term, _ string) Term { return t.removeNames(ctx) })
	return &out
}

func (c *Class) withMeta(m Meta) Term {
	out := *c
	out.meta = m
	return &out
}

func (c *Class) arity() int { return 1 }

// applicable holds when the supplied labels together with the defaulted
// ones are exactly the attribute set.
func (c *Class) applicable(args []Term) bool {
	r, ok := args[0].(*Record)
	if !ok {
		return false
	}
	keys := lo.Union(lo.Keys(r.attrs), lo.Keys(c.defaults))
	sort.Strings(keys)
	return slices.Equal(keys, c.attributes)
}

func (c *Class) apply(args []Term) Term {
	r := args[0].(*Record)
	attrs := lo.Assign(c.defaults, r.attrs)
	return &Object{node: node{named: c.named}, class: c, attrs: attrs, methods: lo.Assign(c.methods)}
}

// Instantiate builds an object of c from attribute values. It fails when
// the labels of attrs and the defaults do not cover the attribute set
// exactly.
func Instantiate(c *Class, attrs map[string]Term) (*Object, error) {
	r := NewRecord(c.named, attrs)
	if !c.applicable([]Term{r}) {
		missing, extra := lo.Difference(c.attributes, lo.Union(lo.Keys(attrs), lo.Keys(c.defaults)))
		sort.Strings(missing)
		sort.Strings(extra)
		return nil, fmt.Errorf("instantiate %s: missing %v, unknown %v", c, missing, extra)
	}
	return c.apply([]Term{r}).(*Object), nil
}

// Object is an instance of a class. Applied to a String it yields the
// attribute of that name, or the named method applied to the object.
type Object struct {
	node
	class   *Class
	attrs   map[string]Term
	methods map[string]Term
}

func (o *Object) Class() *Class { return o.class }

func (o *Object) Attr(label string) (Term, bool) {
	t, ok := o.attrs[label]
	return t, ok
}

func (o *Object) Attributes() map[string]Term { return lo.Assign(o.attrs) }
func (o *Object) Methods() map[string]Term    { return lo.Assign(o.methods) }

func (o *Object) traverse(visit func(Term) Term) Term {
	class := visit(o.class)
	attrs := mapTermsOrNil(o.attrs, visit)
	methods := mapTermsOrNil(o.methods, visit)
	if class == nil && attrs == nil && methods == nil {
		return nil
	}
	out := *o
	if class != nil {
		out.class = class.(*Class)
	}
	if attrs != nil {
		out.attrs = attrs
	}
	if methods != nil {
		out.methods = methods
	}
	return &out
}

func (o *Object) evalOrNil() Term {
	return o.traverse(func(t Term) Term { return t.evalOrNil() })
}

func (o *Object) shiftOrNil(d, c int) Term {
	return o.traverse(func(t Term) Term { return t.shiftOrNil(d, c) })
}

func (o *Object) substOrNil(j int, r Term) Term {
	return o.traverse(func(t Term) Term { return t.substOrNil(j, r) })
}

func (o *Object) freeVars(acc map[string]struct{}) {
	o.class.freeVars(acc)
	for _, t := range o.attrs {
		t.freeVars(acc)
	}
	for _, t := range o.methods {
		t.freeVars(acc)
	}
}

func (o *Object) removeNames(ctx []string) Term {
	return &Object{
		node:    o.nameless(),
		class:   o.class.removeNames(ctx).(*Class),
		attrs:   lo.MapValues(o.attrs, func(t Term, _ string) Term { return t.removeNames(ctx) }),
		methods: lo.MapValues(o.methods, func(t Term, _ string) Term { return t.removeNames(ctx) }),
	}
}

func (o *Object) withMeta(m Meta) Term {
	out := *o
	out.meta = m
	return &out
}

func (o *Object) arity() int { return 1 }

func (o *Object) applicable(args []Term) bool {
	s, ok := args[0].(*String)
	if !ok {
		return false
	}
	if _, ok := o.attrs[s.value]; ok {
		return true
	}
	_, ok = o.methods[s.value]
	return ok
}

func (o *Object) apply(args []Term) Term {
	label := args[0].(*String).value
	if t, ok := o.attrs[label]; ok {
		return t
	}
	return NewApp(o.methods[label], o)
}
