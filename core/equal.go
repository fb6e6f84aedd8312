package pgsn

// Equal compares two terms structurally. The named flag takes part in the
// comparison; metadata does not. Abstractions are equal only when their
// bodies are, so alpha-equivalent named abstractions with different
// parameter names differ.
func Equal(a, b Term) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Named() != b.Named() {
		return false
	}
	switch x := a.(type) {
	case *Variable:
		y, ok := b.(*Variable)
		return ok && x.name == y.name && x.index == y.index
	case *Abs:
		y, ok := b.(*Abs)
		return ok && x.param == y.param && Equal(x.body, y.body)
	case *App:
		y, ok := b.(*App)
		return ok && Equal(x.fn, y.fn) && Equal(x.arg, y.arg)
	case *Constant:
		y, ok := b.(*Constant)
		return ok && x.name == y.name
	case *String:
		y, ok := b.(*String)
		return ok && x.value == y.value
	case *Integer:
		y, ok := b.(*Integer)
		return ok && x.value == y.value
	case *Boolean:
		y, ok := b.(*Boolean)
		return ok && x.value == y.value
	case *List:
		y, ok := b.(*List)
		return ok && equalSlices(x.terms, y.terms)
	case *Record:
		y, ok := b.(*Record)
		return ok && equalMaps(x.attrs, y.attrs)
	case *Builtin:
		y, ok := b.(*Builtin)
		return ok && x.prim.Name() == y.prim.Name()
	case *Class:
		y, ok := b.(*Class)
		return ok && equalClasses(x, y)
	case *Object:
		y, ok := b.(*Object)
		return ok && equalClasses(x.class, y.class) &&
			equalMaps(x.attrs, y.attrs) && equalMaps(x.methods, y.methods)
	}
	return false
}

func equalClasses(x, y *Class) bool {
	if x == y {
		return true
	}
	if x == nil || y == nil {
		return false
	}
	if x.named != y.named || x.name != y.name || len(x.attributes) != len(y.attributes) {
		return false
	}
	for i := range x.attributes {
		if x.attributes[i] != y.attributes[i] {
			return false
		}
	}
	return equalMaps(x.defaults, y.defaults) && equalMaps(x.methods, y.methods) &&
		equalClasses(x.inherit, y.inherit)
}

func equalSlices(a, b []Term) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalMaps(a, b map[string]Term) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !Equal(av, bv) {
			return false
		}
	}
	return true
}
