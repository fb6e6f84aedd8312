package pgsn

import (
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Stdlib holds the standard primitives. It is the default registry of the
// wire codec.
var Stdlib = NewRegistry(StdlibPrimitives()...)

// StdlibPrimitives returns fresh instances of the standard primitives.
func StdlibPrimitives() []Primitive {
	return []Primitive{
		// lists
		Prim("cons", 2, applicableCons, applyCons),
		Prim("head", 1, nonEmptyList, applyHead),
		Prim("tail", 1, nonEmptyList, applyTail),
		Prim("index", 2, applicableIndex, applyIndex),
		foldPrimitive{},
		Prim("map", 2, applicableMap, applyMap),
		// integers
		Prim("plus", 2, twoIntegers, applyPlus),
		// booleans
		Prim("if_then_else", 3, applicableIf, applyIf),
		Prim("guard", 2, applicableGuard, applyGuard),
		Prim("equal", 2, applicableEqual, applyEqual),
		// records
		Prim("has_label", 2, recordAndLabel, applyHasLabel),
		Prim("add_attribute", 3, recordAndLabel, applyAddAttribute),
		Prim("remove_attribute", 2, recordAndLabel, applyRemoveAttribute),
		Prim("list_labels", 1, isRecord, applyListLabels),
		Prim("overwrite_record", 2, twoRecords, applyOverwriteRecord),
		// strings
		Prim("format_string", 2, applicableFormat, applyFormat),
		// classes and objects
		Prim("define_class", 1, applicableDefineClass, applyDefineClass),
		Prim("is_subclass", 2, twoClasses, applyIsSubclass),
		Prim("instance", 1, isObject, applyInstance),
	}
}

// --- lists ---

func applicableCons(args []Term) bool {
	_, ok := args[1].(*List)
	return ok
}

func applyCons(args []Term) Term {
	l := args[1].(*List)
	return &List{terms: append([]Term{args[0]}, l.terms...)}
}

func nonEmptyList(args []Term) bool {
	l, ok := args[0].(*List)
	return ok && len(l.terms) > 0
}

func applyHead(args []Term) Term { return args[0].(*List).terms[0] }

func applyTail(args []Term) Term {
	return &List{terms: append([]Term(nil), args[0].(*List).terms[1:]...)}
}

func applicableIndex(args []Term) bool {
	l, ok := args[0].(*List)
	return ok && l.applicable(args[1:])
}

func applyIndex(args []Term) Term { return args[0].(*List).apply(args[1:]) }

func applicableMap(args []Term) bool {
	_, ok := args[1].(*List)
	return ok
}

func applyMap(args []Term) Term {
	f := args[0]
	return &List{terms: lo.Map(args[1].(*List).terms, func(t Term, _ int) Term { return NewApp(f, t) })}
}

// foldPrimitive is a right fold: fold f init [x, ...rest] reduces to
// f x (fold f init rest).
type foldPrimitive struct{}

func (foldPrimitive) Name() string { return "fold" }
func (foldPrimitive) Arity() int   { return 3 }

func (foldPrimitive) Applicable(args []Term) bool {
	_, ok := args[2].(*List)
	return ok
}

func (foldPrimitive) Apply(args []Term) Term {
	f, init, l := args[0], args[1], args[2].(*List)
	if len(l.terms) == 0 {
		return init
	}
	rest := &List{terms: append([]Term(nil), l.terms[1:]...)}
	inner := NewApp(NewApp(NewApp(NewBuiltin(false, foldPrimitive{}), f), init), rest)
	return NewApp(NewApp(f, l.terms[0]), inner)
}

// --- integers and booleans ---

func twoIntegers(args []Term) bool {
	_, ok1 := args[0].(*Integer)
	_, ok2 := args[1].(*Integer)
	return ok1 && ok2
}

func applyPlus(args []Term) Term {
	return &Integer{value: args[0].(*Integer).value + args[1].(*Integer).value}
}

// truth reports the truth value of a concrete condition. Integers are true
// when positive.
func truth(t Term) (value, ok bool) {
	switch c := t.(type) {
	case *Boolean:
		return c.value, true
	case *Integer:
		return c.value > 0, true
	}
	return false, false
}

func applicableIf(args []Term) bool {
	_, ok := truth(args[0])
	return ok
}

func applyIf(args []Term) Term {
	if b, _ := truth(args[0]); b {
		return args[1]
	}
	return args[2]
}

// guard b t reduces to t only once b is concretely true.
func applicableGuard(args []Term) bool {
	b, ok := truth(args[0])
	return ok && b
}

func applyGuard(args []Term) Term { return args[1] }

// applicableEqual refuses applications, abstractions and anything that can
// still reduce: equality of open computations is undecidable here.
func applicableEqual(args []Term) bool {
	for _, a := range args {
		switch a.(type) {
		case *App, *Abs:
			return false
		}
		if a.evalOrNil() != nil {
			return false
		}
	}
	return true
}

func applyEqual(args []Term) Term {
	return &Boolean{value: Equal(args[0], args[1])}
}

// --- records ---

func isRecord(args []Term) bool {
	_, ok := args[0].(*Record)
	return ok
}

func recordAndLabel(args []Term) bool {
	_, ok1 := args[0].(*Record)
	_, ok2 := args[1].(*String)
	return ok1 && ok2
}

func twoRecords(args []Term) bool {
	_, ok1 := args[0].(*Record)
	_, ok2 := args[1].(*Record)
	return ok1 && ok2
}

func applyHasLabel(args []Term) Term {
	_, ok := args[0].(*Record).attrs[args[1].(*String).value]
	return &Boolean{value: ok}
}

func applyAddAttribute(args []Term) Term {
	attrs := lo.Assign(args[0].(*Record).attrs)
	attrs[args[1].(*String).value] = args[2]
	return &Record{attrs: attrs}
}

// applyRemoveAttribute leaves the record unchanged when the label is
// absent.
func applyRemoveAttribute(args []Term) Term {
	attrs := lo.Assign(args[0].(*Record).attrs)
	delete(attrs, args[1].(*String).value)
	return &Record{attrs: attrs}
}

func applyListLabels(args []Term) Term {
	labels := args[0].(*Record).Labels()
	return &List{terms: lo.Map(labels, func(l string, _ int) Term { return &String{value: l} })}
}

func applyOverwriteRecord(args []Term) Term {
	return &Record{attrs: lo.Assign(args[0].(*Record).attrs, args[1].(*Record).attrs)}
}

// --- strings ---

func applicableFormat(args []Term) bool {
	s, ok1 := args[0].(*String)
	r, ok2 := args[1].(*Record)
	if !ok1 || !ok2 {
		return false
	}
	_, ok := formatTemplate(s.value, r.attrs)
	return ok
}

func applyFormat(args []Term) Term {
	out, _ := formatTemplate(args[0].(*String).value, args[1].(*Record).attrs)
	return &String{value: out}
}

// formatTemplate replaces each {label} in tmpl by the scalar stored under
// that label. {{ and }} stand for literal braces. It fails on malformed
// templates, missing labels and non-scalar values.
func formatTemplate(tmpl string, vals map[string]Term) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch {
		case c == '{' && i+1 < len(tmpl) && tmpl[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(tmpl) && tmpl[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end <= 0 {
				return "", false
			}
			label := tmpl[i+1 : i+1+end]
			if strings.ContainsRune(label, '{') {
				return "", false
			}
			s, ok := scalarText(vals[label])
			if !ok {
				return "", false
			}
			b.WriteString(s)
			i += end + 1
		case c == '}':
			return "", false
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), true
}

func scalarText(t Term) (string, bool) {
	switch v := t.(type) {
	case *String:
		return v.value, true
	case *Integer:
		return strconv.FormatInt(v.value, 10), true
	case *Boolean:
		return strconv.FormatBool(v.value), true
	}
	return "", false
}

// --- classes and objects ---

var classDefLabels = []string{"inherit", "name", "defaults", "attributes", "methods"}

// classDefOf reads a define_class parameter record. It reports false when
// the record is malformed or describes an invalid class.
func classDefOf(r *Record) (*Class, ClassDef, bool) {
	var def ClassDef
	for k := range r.attrs {
		if !lo.Contains(classDefLabels, k) {
			return nil, def, false
		}
	}
	inherit, ok := r.attrs["inherit"].(*Class)
	if !ok {
		return nil, def, false
	}
	if t, present := r.attrs["name"]; present {
		s, ok := t.(*String)
		if !ok {
			return nil, def, false
		}
		def.Name = s.value
	}
	if t, present := r.attrs["defaults"]; present {
		d, ok := t.(*Record)
		if !ok {
			return nil, def, false
		}
		def.Defaults = d.attrs
	}
	if t, present := r.attrs["attributes"]; present {
		l, ok := t.(*List)
		if !ok {
			return nil, def, false
		}
		for _, e := range l.terms {
			s, ok := e.(*String)
			if !ok {
				return nil, def, false
			}
			def.Attributes = append(def.Attributes, s.value)
		}
	}
	if t, present := r.attrs["methods"]; present {
		m, ok := t.(*Record)
		if !ok {
			return nil, def, false
		}
		def.Methods = m.attrs
	}
	if checkClassDef(inherit, def) != nil {
		return nil, def, false
	}
	return inherit, def, true
}

func applicableDefineClass(args []Term) bool {
	r, ok := args[0].(*Record)
	if !ok {
		return false
	}
	_, _, ok = classDefOf(r)
	return ok
}

func applyDefineClass(args []Term) Term {
	inherit, def, _ := classDefOf(args[0].(*Record))
	return deriveClass(inherit, def)
}

func twoClasses(args []Term) bool {
	_, ok1 := args[0].(*Class)
	_, ok2 := args[1].(*Class)
	return ok1 && ok2
}

func applyIsSubclass(args []Term) Term {
	return &Boolean{value: IsSubclass(args[0].(*Class), args[1].(*Class))}
}

func isObject(args []Term) bool {
	_, ok := args[0].(*Object)
	return ok
}

func applyInstance(args []Term) Term { return args[0].(*Object).class }
