package pgsn

import "sort"

// Construction API. Everything built here is named; reduction converts it
// to nameless form. Identifiers starting with "_" are reserved for the
// library terms below.

func Var(name string) *Variable { return NamedVariable(name) }

func Lambda(v *Variable, body Term) Term { return NewAbs(v, body) }

// Lambdas curries vs over body: Lambdas([x, y], b) is λx. λy. b.
func Lambdas(vs []*Variable, body Term) Term {
	t := body
	for i := len(vs) - 1; i >= 0; i-- {
		t = NewAbs(vs[i], t)
	}
	return t
}

// Apply applies fn to args in order. Go values are cast with Cast using
// the named flag of fn.
func Apply(fn Term, args ...any) Term {
	t := fn
	for _, a := range args {
		t = NewApp(t, Cast(a, fn.Named()))
	}
	return t
}

// ApplyKeywords applies fn to a single Record built from kw.
func ApplyKeywords(fn Term, kw map[string]any) Term {
	return NewApp(fn, RecordOf(kw))
}

// Cast converts x to a term: string, bool, int, int64, []any and
// map[string]any map to String, Boolean, Integer, List and Record. Values
// that cannot be converted are contract violations.
func Cast(x any, named bool) Term {
	t, err := FromHost(x, named)
	if err != nil {
		violation("cast: %v", err)
	}
	return t
}

func Str(s string) *String      { return NewString(true, s) }
func Int(i int64) *Integer      { return NewInteger(true, i) }
func Bool(b bool) *Boolean      { return NewBoolean(true, b) }
func Sym(name string) *Constant { return NewConstant(true, name) }

func ListOf(items ...any) *List {
	terms := make([]Term, len(items))
	for i, x := range items {
		terms[i] = Cast(x, true)
	}
	return NewList(true, terms)
}

func RecordOf(kw map[string]any) *Record {
	attrs := make(map[string]Term, len(kw))
	for k, x := range kw {
		attrs[k] = Cast(x, true)
	}
	return NewRecord(true, attrs)
}

// Let is let v = t1 in t2.
func Let(v *Variable, t1, t2 Term) Term { return NewApp(NewAbs(v, t2), t1) }

// Binding is one v = t pair of LetVars.
type Binding struct {
	Var  *Variable
	Term Term
}

// LetVars nests Let so that later bindings see earlier ones.
func LetVars(bs []Binding, body Term) Term {
	t := body
	for i := len(bs) - 1; i >= 0; i-- {
		t = Let(bs[i].Var, bs[i].Term, t)
	}
	return t
}

// LambdaKeywords builds a function of one Record argument. The record is
// merged over defaults and each label in args is bound to its variable.
func LambdaKeywords(args map[string]*Variable, body Term, defaults *Record) Term {
	labels := make([]string, 0, len(args))
	for k := range args {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	vs := make([]*Variable, len(labels))
	for i, k := range labels {
		vs[i] = args[k]
	}
	t := Lambdas(vs, body)
	for _, k := range labels {
		t = NewApp(t, NewApp(_args, Str(k)))
	}
	if defaults == nil {
		defaults = EmptyRecord
	}
	return NewAbs(_args, Let(_args, Apply(OverwriteRecord, defaults, _args), t))
}

func builtin(name string) *Builtin {
	b, ok := Stdlib.Term(name)
	if !ok {
		violation("no standard primitive %q", name)
	}
	return b
}

var (
	Cons            = builtin("cons")
	Head            = builtin("head")
	Tail            = builtin("tail")
	Index           = builtin("index")
	Fold            = builtin("fold")
	Map             = builtin("map")
	Plus            = builtin("plus")
	IfThenElse      = builtin("if_then_else")
	Guard           = builtin("guard")
	EqualTerm       = builtin("equal")
	HasLabel        = builtin("has_label")
	AddAttribute    = builtin("add_attribute")
	RemoveAttribute = builtin("remove_attribute")
	ListLabels      = builtin("list_labels")
	OverwriteRecord = builtin("overwrite_record")
	FormatString    = builtin("format_string")
	DefineClassTerm = builtin("define_class")
	IsSubclassTerm  = builtin("is_subclass")
	InstanceTerm    = builtin("instance")
)

var (
	_x     = Var("_x")
	_y     = Var("_y")
	_z     = Var("_z")
	_w     = Var("_w")
	_f     = Var("_f")
	_acc   = Var("_acc")
	_elem  = Var("_elem")
	_list  = Var("_list")
	_list1 = Var("_list1")
	_list2 = Var("_list2")
	_foldr = Var("_foldr")
	_args  = Var("_args")
	_obj   = Var("_obj")
	_class = Var("_class")
	_attrs = Var("_attrs")
)

var (
	True        = Bool(true)
	False       = Bool(false)
	Empty       = ListOf()
	EmptyRecord = RecordOf(nil)

	// Fix is the fixed point combinator λf. (λx. f (x x)) (λx. f (x x)).
	// Under leftmost-outermost reduction it unfolds only when applied.
	Fix = Lambda(_f, Apply(
		Lambda(_x, Apply(_f, Apply(_x, _x))),
		Lambda(_x, Apply(_f, Apply(_x, _x)))))

	And = Lambdas([]*Variable{_x, _y}, Apply(IfThenElse, _x, _y, False))
	Or  = Lambdas([]*Variable{_x, _y}, Apply(IfThenElse, _x, True, _y))
	Not = Lambda(_x, Apply(IfThenElse, _x, False, True))

	// Foldr f acc list is the right fold written as a fixpoint over
	// if_then_else, equal, head and tail.
	Foldr = Apply(Fix, Lambdas([]*Variable{_foldr, _f, _acc, _list},
		Apply(IfThenElse,
			Apply(EqualTerm, _list, Empty),
			_acc,
			Apply(_f, Apply(Head, _list), Apply(_foldr, _f, _acc, Apply(Tail, _list))))))

	Concat = Lambdas([]*Variable{_list1, _list2},
		Apply(Foldr, Lambdas([]*Variable{_elem, _acc}, Apply(Cons, _elem, _acc)), _list2, _list1))

	// ListAll p list holds when p holds for every element.
	ListAll = Lambdas([]*Variable{_x, _y},
		Let(_f, Lambdas([]*Variable{_z, _w}, Apply(And, Apply(_x, _z), _w)),
			Apply(Foldr, _f, True, _y)))

	IntegerSum = Apply(Foldr, Plus, Int(0))

	BaseClass = RootClass(true, "BaseClass")

	IsInstance      = Lambdas([]*Variable{_obj, _class}, Apply(IsSubclassTerm, Apply(InstanceTerm, _obj), _class))
	InstantiateTerm = Lambdas([]*Variable{_class, _attrs}, Apply(_class, _attrs))
)
