package pgsn

import "golang.org/x/exp/slices"

// Shift adds d to every index of t that is at least c. t must be nameless.
func Shift(t Term, d, c int) Term {
	if t.Named() {
		violation("shift: named term %s", t)
	}
	return shift(t, d, c)
}

func shift(t Term, d, c int) Term {
	return orElse(t.shiftOrNil(d, c), t)
}

// Subst replaces the variable with index j in t by r. Each binder crossed
// shifts r up by one. Both terms must be nameless.
func Subst(t Term, j int, r Term) Term {
	if t.Named() || r.Named() {
		violation("subst: named term")
	}
	return subst(t, j, r)
}

func subst(t Term, j int, r Term) Term {
	return orElse(t.substOrNil(j, r), t)
}

// betaReduce substitutes arg for the outermost binder of body and removes
// that binder.
func betaReduce(body, arg Term) Term {
	return shift(subst(body, 0, shift(arg, 1, 0)), -1, 0)
}

// FreeVariables returns the sorted names referenced in t outside any
// binder. t must be named.
func FreeVariables(t Term) []string {
	if !t.Named() {
		violation("free variables: nameless term %s", t)
	}
	acc := make(map[string]struct{})
	t.freeVars(acc)
	names := make([]string, 0, len(acc))
	for k := range acc {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// RemoveName converts a named term to nameless form. Free variables are
// numbered by their position in the sorted free-variable list.
func RemoveName(t Term) Term {
	return RemoveNameWithContext(t, FreeVariables(t))
}

// RemoveNameWithContext converts t using ctx as the naming context: the
// variable ctx[i] outside any binder becomes index i.
func RemoveNameWithContext(t Term, ctx []string) Term {
	if !t.Named() {
		violation("remove names: term is already nameless")
	}
	return t.removeNames(slices.Clone(ctx))
}
