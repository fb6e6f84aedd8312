package pgsn

import (
	"math/rand/v2"
	"testing"

	"golang.org/x/exp/slices"
)

// --- Naming ---

func TestRemoveName(t *testing.T) {
	x, y := Var("x"), Var("y")
	got := RemoveName(Lambda(x, Apply(x, y)))
	want := NamelessAbs(NewApp(IndexVariable(0), IndexVariable(1)))
	if !Equal(got, want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if got.Named() {
		t.Fatal("result must be nameless")
	}
}

func TestRemoveNameSortsFreeVariables(t *testing.T) {
	got := RemoveName(Apply(Var("b"), Var("a")))
	want := NewApp(IndexVariable(1), IndexVariable(0))
	if !Equal(got, want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestRemoveNameWithContext(t *testing.T) {
	x := Var("x")
	got := RemoveNameWithContext(Lambda(x, Apply(x, Var("u"), Var("v"))), []string{"v", "u"})
	want := NamelessAbs(NewApp(NewApp(IndexVariable(0), IndexVariable(2)), IndexVariable(1)))
	if !Equal(got, want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
	mustPanic(t, "missing name", func() { RemoveNameWithContext(Var("w"), []string{"v"}) })
	mustPanic(t, "nameless input", func() { RemoveNameWithContext(IndexVariable(0), nil) })
}

func TestRemoveNameShadowing(t *testing.T) {
	x := Var("x")
	// λx. λx. x refers to the inner binder.
	got := RemoveName(Lambda(x, Lambda(x, x)))
	want := NamelessAbs(NamelessAbs(IndexVariable(0)))
	if !Equal(got, want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestFreeVariables(t *testing.T) {
	x, y, z := Var("x"), Var("y"), Var("z")
	self := Var("self")
	c := DefineClass(BaseClass, ClassDef{
		Attributes: []string{"a"},
		Methods:    map[string]Term{"m": Lambda(self, Apply(self, z))},
	})
	tests := []struct {
		term Term
		want []string
	}{
		{x, []string{"x"}},
		{Lambda(x, x), []string{}},
		{Lambda(x, Apply(x, y)), []string{"y"}},
		{Apply(Lambda(x, x), x), []string{"x"}},
		{ListOf(y, x, Int(1)), []string{"x", "y"}},
		{RecordOf(map[string]any{"k": z, "j": Lambda(z, z)}), []string{"z"}},
		{Apply(Plus, x, Str("s")), []string{"x"}},
		{c, []string{"z"}},
	}
	for _, tt := range tests {
		got := FreeVariables(tt.term)
		if !slices.Equal(got, tt.want) {
			t.Fatalf("free variables of %s: expected %v, got %v", tt.term, tt.want, got)
		}
		if RemoveName(tt.term).Named() {
			t.Fatalf("remove name of %s left a named term", tt.term)
		}
	}
}

// --- Shift and substitution ---

func TestShift(t *testing.T) {
	// λ. #0 #1 shifted by 2 at cutoff 0 touches only the free #1.
	in := NamelessAbs(NewApp(IndexVariable(0), IndexVariable(1)))
	want := NamelessAbs(NewApp(IndexVariable(0), IndexVariable(3)))
	if got := Shift(in, 2, 0); !Equal(got, want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
	mustPanic(t, "shift below zero", func() { Shift(IndexVariable(0), -1, 0) })
	mustPanic(t, "shift named", func() { Shift(Var("x"), 1, 0) })
}

func TestShiftSharesUnchangedTerms(t *testing.T) {
	closed := RemoveName(Lambda(Var("x"), Apply(Var("x"), Int(1))))
	if Shift(closed, 5, 0) != closed {
		t.Fatal("shifting a closed term should return it unchanged")
	}
}

func TestSubst(t *testing.T) {
	// [0 -> 7] (λ. #1 #0) = λ. 7 #0
	seven := NewInteger(false, 7)
	in := NamelessAbs(NewApp(IndexVariable(1), IndexVariable(0)))
	want := NamelessAbs(NewApp(seven, IndexVariable(0)))
	if got := Subst(in, 0, seven); !Equal(got, want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
	// The replacement is shifted under binders.
	in = NamelessAbs(IndexVariable(1))
	want = NamelessAbs(IndexVariable(3))
	if got := Subst(in, 0, IndexVariable(2)); !Equal(got, want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
	mustPanic(t, "subst named", func() { Subst(Var("x"), 0, IndexVariable(0)) })
}

// randomTerm builds a small nameless term over every structural node kind.
func randomTerm(r *rand.Rand, depth int) Term {
	if depth == 0 {
		switch r.IntN(3) {
		case 0:
			return NewInteger(false, int64(r.IntN(10)))
		case 1:
			return NewString(false, "s")
		default:
			return IndexVariable(r.IntN(4))
		}
	}
	switch r.IntN(6) {
	case 0:
		return IndexVariable(r.IntN(4))
	case 1, 2:
		return NamelessAbs(randomTerm(r, depth-1))
	case 3:
		return NewApp(randomTerm(r, depth-1), randomTerm(r, depth-1))
	case 4:
		return NewList(false, []Term{randomTerm(r, depth-1), randomTerm(r, depth-1)})
	default:
		return NewRecord(false, map[string]Term{"a": randomTerm(r, depth-1), "b": randomTerm(r, depth-1)})
	}
}

func TestSubstitutionLemma(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for n := 0; n < 2000; n++ {
		term := randomTerm(r, 4)
		rep := randomTerm(r, 2)
		d := r.IntN(3)
		c := r.IntN(3)

		// Substituting below the cutoff.
		for i := 0; i < c; i++ {
			lhs := Shift(Subst(term, i, rep), d, c)
			rhs := Subst(Shift(term, d, c), i, Shift(rep, d, c))
			if !Equal(lhs, rhs) {
				t.Fatalf("i=%d < c=%d, d=%d, t=%s, r=%s: %s != %s", i, c, d, term, rep, lhs, rhs)
			}
		}
		// Substituting at or above the cutoff moves the index with the shift.
		for i := c; i < c+3; i++ {
			lhs := Shift(Subst(term, i, rep), d, c)
			rhs := Subst(Shift(term, d, c), i+d, Shift(rep, d, c))
			if !Equal(lhs, rhs) {
				t.Fatalf("i=%d >= c=%d, d=%d, t=%s, r=%s: %s != %s", i, c, d, term, rep, lhs, rhs)
			}
		}
	}
}

func TestShiftInverse(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for n := 0; n < 1000; n++ {
		term := randomTerm(r, 4)
		d, c := r.IntN(4), r.IntN(3)
		if got := Shift(Shift(term, d, c), -d, c); !Equal(got, term) {
			t.Fatalf("shift %d then %d at %d: %s != %s", d, -d, c, got, term)
		}
	}
}

func TestBetaMatchesNamedSubstitution(t *testing.T) {
	x, y, z := Var("x"), Var("y"), Var("z")
	// (λx. λy. x y z) (λz. z) with free z.
	in := Apply(Lambda(x, Lambda(y, Apply(x, y, z))), Lambda(z, z))
	want := RemoveNameWithContext(Lambda(y, Apply(Lambda(z, z), y, z)), []string{"z"})
	got := EvalOrNil(in)
	if !Equal(got, want) {
		t.Fatalf("expected %s, got %s", want, got)
	}
}
