package pgsn

import (
	"errors"
	"reflect"
	"testing"
)

func TestToHost(t *testing.T) {
	tests := []struct {
		term Term
		want any
	}{
		{Str("s"), "s"},
		{Int(-3), int64(-3)},
		{Bool(true), true},
		{ListOf(1, "a", ListOf()), []any{int64(1), "a", []any{}}},
		{RecordOf(map[string]any{"k": ListOf(true)}), map[string]any{"k": []any{true}}},
	}
	for _, tt := range tests {
		got, err := ToHost(tt.term)
		if err != nil {
			t.Fatalf("ToHost(%s): %v", tt.term, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("ToHost(%s) = %#v, want %#v", tt.term, got, tt.want)
		}
	}
}

func TestToHostRejectsStuckTerms(t *testing.T) {
	x := Var("x")
	for _, term := range []Term{
		x,
		Lambda(x, x),
		Apply(Plus, 1, "a"),
		Plus,
		Sym("undefined"),
		ListOf(1, Lambda(x, x)),
		RecordOf(map[string]any{"f": Plus}),
	} {
		_, err := ToHost(term)
		var pe *ProjectionError
		if !errors.As(err, &pe) {
			t.Fatalf("ToHost(%s): expected ProjectionError, got %v", term, err)
		}
	}
}

func TestValueOf(t *testing.T) {
	got, err := ValueOf(RecordOf(map[string]any{"sum": Apply(Plus, 1, 2), "l": Apply(Cons, "x", Empty)}), 1000)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"sum": int64(3), "l": []any{"x"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %#v, got %#v", want, got)
	}
	if _, err := ValueOf(growing(), 10); err == nil {
		t.Fatal("expected non-termination")
	}
}

func TestFromHost(t *testing.T) {
	got, err := FromHost(map[string]any{"a": float64(2), "b": []any{"x", true}}, true)
	if err != nil {
		t.Fatal(err)
	}
	want := RecordOf(map[string]any{"a": 2, "b": ListOf("x", true)})
	if !Equal(got, want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if _, err := FromHost(1.5, true); err == nil {
		t.Fatal("fractional numbers must be rejected")
	}
	if _, err := FromHost(struct{}{}, true); err == nil {
		t.Fatal("unsupported types must be rejected")
	}
	if _, err := FromHost(Int(1), false); err == nil {
		t.Fatal("named flag mismatch must be rejected")
	}
	mustPanic(t, "cast", func() { Cast(nil, true) })
}

func TestToHostAnonymousClass(t *testing.T) {
	c := DefineClass(BaseClass, ClassDef{Attributes: []string{"a"}})
	obj, err := Instantiate(c, map[string]Term{"a": Int(1)})
	if err != nil {
		t.Fatal(err)
	}
	got, err := ToHost(obj)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"a": int64(1)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %#v, got %#v", want, got)
	}
}
