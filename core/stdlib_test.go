package pgsn

import "testing"

func rec(kw map[string]any) *Record { return RecordOf(kw) }

func TestBuiltinLists(t *testing.T) {
	x, acc := Var("x"), Var("acc")
	testEval(t, Apply(Cons, 1, ListOf(2, 3)), ListOf(1, 2, 3))
	testEval(t, Apply(Head, ListOf("a", "b")), Str("a"))
	testEval(t, Apply(Tail, ListOf("a", "b")), ListOf("b"))
	testEval(t, Apply(Tail, ListOf("a")), Empty)
	testEval(t, Apply(Map, Lambda(x, Apply(Plus, x, 10)), ListOf(1, 2)), ListOf(11, 12))
	testEval(t, Apply(Fold, Plus, 0, ListOf(1, 2, 3)), Int(6))
	testEval(t, Apply(Fold, Lambdas([]*Variable{x, acc}, Apply(Cons, x, acc)), Empty, ListOf(1, 2)), ListOf(1, 2))
	testEval(t, Apply(Fold, Plus, 7, Empty), Int(7))
}

func TestBuiltinListsStuck(t *testing.T) {
	testStuck(t, Apply(Head, Empty))
	testStuck(t, Apply(Tail, Empty))
	testStuck(t, Apply(Index, ListOf("a"), 1))
	testStuck(t, Apply(Index, ListOf("a"), -1))
	testStuck(t, Apply(Cons, 1, 2))
	testStuck(t, Apply(ListOf("a"), "0"))
}

func TestBuiltinPlus(t *testing.T) {
	testEval(t, Apply(Plus, -4, 3), Int(-1))
	testEval(t, Apply(Plus, Apply(Plus, 1, 2), Apply(Plus, 3, 4)), Int(10))
	testStuck(t, Apply(Plus, "1", 2))
}

func TestBuiltinIfThenElse(t *testing.T) {
	testEval(t, Apply(IfThenElse, true, "yes", "no"), Str("yes"))
	testEval(t, Apply(IfThenElse, false, "yes", "no"), Str("no"))
	testEval(t, Apply(IfThenElse, 1, "yes", "no"), Str("yes"))
	testEval(t, Apply(IfThenElse, 0, "yes", "no"), Str("no"))
	testEval(t, Apply(IfThenElse, -3, "yes", "no"), Str("no"))
	testEval(t, Apply(IfThenElse, Apply(EqualTerm, 1, 1), "yes", "no"), Str("yes"))
	testStuck(t, Apply(IfThenElse, "true", "yes", "no"))
}

func TestBuiltinIfThenElseIsLazy(t *testing.T) {
	// The branch not taken never reduces.
	testEval(t, Apply(IfThenElse, true, "ok", growing()), Str("ok"))
}

func TestBuiltinGuard(t *testing.T) {
	testEval(t, Apply(Guard, true, "go"), Str("go"))
	testEval(t, Apply(Guard, 2, "go"), Str("go"))
	testStuck(t, Apply(Guard, false, "go"))
	testStuck(t, Apply(Guard, 0, "go"))
}

func TestBuiltinEqual(t *testing.T) {
	x := Var("x")
	testEval(t, Apply(EqualTerm, 1, 1), True)
	testEval(t, Apply(EqualTerm, 1, 2), False)
	testEval(t, Apply(EqualTerm, "a", 1), False)
	testEval(t, Apply(EqualTerm, ListOf(1, "a"), ListOf(1, "a")), True)
	testEval(t, Apply(EqualTerm, rec(map[string]any{"a": 1}), rec(map[string]any{"a": 2})), False)
	testEval(t, Apply(EqualTerm, Apply(Plus, 1, 1), 2), True)
	testEval(t, Apply(EqualTerm, Plus, Plus), True)
	// Abstractions are never compared.
	testStuck(t, Apply(EqualTerm, Lambda(x, x), Lambda(x, x)))
	testStuck(t, Apply(EqualTerm, 1, Lambda(x, x)))
}

func TestBuiltinRecords(t *testing.T) {
	r := rec(map[string]any{"a": 1, "b": 2})
	testEval(t, Apply(HasLabel, r, "a"), True)
	testEval(t, Apply(HasLabel, r, "z"), False)
	testEval(t, Apply(AddAttribute, r, "c", 3), rec(map[string]any{"a": 1, "b": 2, "c": 3}))
	testEval(t, Apply(AddAttribute, r, "a", 9), rec(map[string]any{"a": 9, "b": 2}))
	testEval(t, Apply(RemoveAttribute, r, "a"), rec(map[string]any{"b": 2}))
	testEval(t, Apply(RemoveAttribute, r, "z"), r)
	testEval(t, Apply(ListLabels, rec(map[string]any{"b": 1, "a": 2, "c": 3})), ListOf("a", "b", "c"))
	testEval(t, Apply(ListLabels, EmptyRecord), Empty)
	testEval(t, Apply(OverwriteRecord, r, rec(map[string]any{"b": 20, "c": 30})),
		rec(map[string]any{"a": 1, "b": 20, "c": 30}))
	testStuck(t, Apply(HasLabel, ListOf(), "a"))
	testStuck(t, Apply(r, "z"))
}

func TestBuiltinFormatString(t *testing.T) {
	vals := rec(map[string]any{"name": "G1", "n": 3, "ok": true})
	testEval(t, Apply(FormatString, "goal {name} has {n} parts", vals), Str("goal G1 has 3 parts"))
	testEval(t, Apply(FormatString, "{ok}", vals), Str("true"))
	testEval(t, Apply(FormatString, "{{name}}", vals), Str("{name}"))
	testEval(t, Apply(FormatString, "plain", EmptyRecord), Str("plain"))
	testEval(t, Apply(FormatString, "{name}", rec(map[string]any{"name": Apply(Plus, 1, 1)})), Str("2"))
	testStuck(t, Apply(FormatString, "{missing}", vals))
	testStuck(t, Apply(FormatString, "{name", vals))
	testStuck(t, Apply(FormatString, "name}", vals))
	testStuck(t, Apply(FormatString, "{}", vals))
	testStuck(t, Apply(FormatString, "{l}", rec(map[string]any{"l": ListOf(1)})))
}

func TestFormatTemplate(t *testing.T) {
	vals := map[string]Term{"a": NewString(false, "x"), "b": NewInteger(false, -2)}
	tests := []struct {
		tmpl string
		want string
		ok   bool
	}{
		{"", "", true},
		{"{a}{b}", "x-2", true},
		{"{{}}", "{}", true},
		{"{{{a}}}", "{x}", true},
		{"{a", "", false},
		{"}", "", false},
		{"{c}", "", false},
	}
	for _, tt := range tests {
		got, ok := formatTemplate(tt.tmpl, vals)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("formatTemplate(%q) = %q, %v; want %q, %v", tt.tmpl, got, ok, tt.want, tt.ok)
		}
	}
}
