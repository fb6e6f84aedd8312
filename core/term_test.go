package pgsn

import "testing"

func TestConstructionRejectsMixedFlags(t *testing.T) {
	mustPanic(t, "app", func() { NewApp(Var("x"), IndexVariable(0)) })
	mustPanic(t, "abs", func() { NewAbs(Var("x"), IndexVariable(0)) })
	mustPanic(t, "nameless abs", func() { NamelessAbs(Var("x")) })
	mustPanic(t, "list", func() { NewList(true, []Term{Int(1), NewInteger(false, 2)}) })
	mustPanic(t, "record", func() { NewRecord(false, map[string]Term{"a": Int(1)}) })
	mustPanic(t, "empty name", func() { NamedVariable("") })
	mustPanic(t, "negative index", func() { IndexVariable(-1) })
	mustPanic(t, "abs parameter", func() { NewAbs(IndexVariable(0), Int(1)) })
}

func TestListAndRecordAccessors(t *testing.T) {
	l := ListOf(1, "a", true)
	if l.Len() != 3 || !Equal(l.At(1), Str("a")) {
		t.Fatalf("bad list %s", l)
	}
	ts := l.Terms()
	ts[0] = Str("changed")
	if !Equal(l.At(0), Int(1)) {
		t.Fatal("Terms must return a copy")
	}

	r := RecordOf(map[string]any{"b": 2, "a": 1})
	if labels := r.Labels(); len(labels) != 2 || labels[0] != "a" || labels[1] != "b" {
		t.Fatalf("labels not sorted: %v", labels)
	}
	if v, ok := r.Get("b"); !ok || !Equal(v, Int(2)) {
		t.Fatalf("get b: %v %v", v, ok)
	}
	if _, ok := r.Get("c"); ok {
		t.Fatal("get c should fail")
	}
}

func TestMetaIgnoredByEquality(t *testing.T) {
	a := WithMeta(Int(1), "source", "line 3")
	if a.Meta()["source"] != "line 3" {
		t.Fatalf("meta not attached: %v", a.Meta())
	}
	if !Equal(a, Int(1)) {
		t.Fatal("meta must not affect equality")
	}
	x := Var("x")
	f := WithMeta(Lambda(x, x), "doc", "identity")
	testEval(t, Apply(f, 4), Int(4))
}

func TestEqualStructural(t *testing.T) {
	x, y := Var("x"), Var("y")
	tests := []struct {
		a, b Term
		want bool
	}{
		{Int(1), Int(1), true},
		{Int(1), Int(2), false},
		{Int(1), NewInteger(false, 1), false},
		{Str("1"), Int(1), false},
		{ListOf(1, 2), ListOf(1, 2), true},
		{ListOf(1, 2), ListOf(2, 1), false},
		{RecordOf(map[string]any{"a": 1}), RecordOf(map[string]any{"a": 1}), true},
		{RecordOf(map[string]any{"a": 1}), RecordOf(map[string]any{"b": 1}), false},
		{Lambda(x, x), Lambda(x, x), true},
		// Alpha-equivalent but differently named.
		{Lambda(x, x), Lambda(y, y), false},
		{RemoveName(Lambda(x, x)), RemoveName(Lambda(y, y)), true},
		{Plus, Plus, true},
		{Plus, Cons, false},
		{Sym("undefined"), Sym("undefined"), true},
	}
	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Fatalf("Equal(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestString(t *testing.T) {
	x := Var("x")
	tests := []struct {
		term Term
		want string
	}{
		{Lambda(x, Apply(Plus, x, 1)), "λx. plus x 1"},
		{RemoveName(Lambda(x, x)), "λ. #0"},
		{Apply(Lambda(x, x), Apply(Head, ListOf("a"))), `(λx. x) (head ["a"])`},
		{RecordOf(map[string]any{"b": true, "a": 1}), "{a: 1, b: true}"},
		{BaseClass, "<class BaseClass>"},
	}
	for _, tt := range tests {
		if got := tt.term.String(); got != tt.want {
			t.Fatalf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestContextSpine(t *testing.T) {
	f, a, b := Var("f"), Var("a"), Var("b")
	c := Spine(Apply(f, a, b))
	if !Equal(c.Head, f) || len(c.Args) != 2 || !Equal(c.Args[0], a) || !Equal(c.Args[1], b) {
		t.Fatalf("bad spine %s", c)
	}
	if !Equal(c.Term(), Apply(f, a, b)) {
		t.Fatalf("rebuild: %s", c.Term())
	}
	if _, ok := Spine(RemoveName(Apply(f, a))).Reduce(); ok {
		t.Fatal("application of a free variable should be in normal form")
	}
}

func TestArityContract(t *testing.T) {
	plus := RemoveName(Plus)
	two, three, four := NewInteger(false, 2), NewInteger(false, 3), NewInteger(false, 4)

	got, rest := ApplyArgs(plus, []Term{two, three})
	if !Equal(got, NewInteger(false, 5)) || len(rest) != 0 {
		t.Fatalf("exact arity: %s %v", got, rest)
	}

	got, rest = ApplyArgs(plus, []Term{two, three, four})
	if !Equal(got, NewInteger(false, 5)) || len(rest) != 1 || !Equal(rest[0], four) {
		t.Fatalf("extra argument: %s %v", got, rest)
	}

	if Applicable(plus, []Term{two}) {
		t.Fatal("too few arguments must be inapplicable")
	}
	mustPanic(t, "inapplicable", func() { ApplyArgs(plus, []Term{two, NewString(false, "x")}) })

	// Leftover arguments are re-applied to the result.
	testEval(t, Apply(Apply(Index, ListOf(ListOf("a", "b"))), 0, 1), Str("b"))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(StdlibPrimitives()...)
	if _, ok := r.Lookup("plus"); !ok {
		t.Fatal("plus missing")
	}
	if _, ok := r.Lookup("nope"); ok {
		t.Fatal("unexpected primitive")
	}
	names := r.Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
	mustPanic(t, "duplicate", func() { r.Register(Prim("plus", 2, nil, nil)) })

	r.Register(Prim("double", 1,
		func(args []Term) bool { _, ok := args[0].(*Integer); return ok },
		func(args []Term) Term { return NewInteger(false, 2*args[0].(*Integer).Value()) }))
	double, ok := r.Term("double")
	if !ok {
		t.Fatal("double missing")
	}
	testEval(t, Apply(double, 21), Int(42))
}
