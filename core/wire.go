package pgsn

import (
	"encoding/json"
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// wireTerm is the JSON form of a term. Every node carries its variant in
// type_name; the remaining fields depend on the variant. Maps are emitted
// with sorted keys, so encoding is deterministic.
type wireTerm struct {
	TypeName   string               `json:"type_name"`
	IsNamed    bool                 `json:"is_named"`
	MetaInfo   Meta                 `json:"meta_info,omitempty"`
	Name       *string              `json:"name,omitempty"`
	Index      *int                 `json:"index,omitempty"`
	Value      json.RawMessage      `json:"value,omitempty"`
	Variable   *string              `json:"variable,omitempty"`
	Body       *wireTerm            `json:"body,omitempty"`
	Function   *wireTerm            `json:"function,omitempty"`
	Argument   *wireTerm            `json:"argument,omitempty"`
	Terms      []*wireTerm          `json:"terms,omitempty"`
	Attributes map[string]*wireTerm `json:"attributes,omitempty"`
	Inherit    *wireTerm            `json:"inherit,omitempty"`
	Defaults   map[string]*wireTerm `json:"defaults,omitempty"`
	Labels     []string             `json:"labels,omitempty"`
	Methods    map[string]*wireTerm `json:"methods,omitempty"`
	Class      *wireTerm            `json:"class,omitempty"`
}

// MarshalTerm encodes t as wire JSON.
func MarshalTerm(t Term) ([]byte, error) {
	w, err := encodeTerm(t)
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalTerm decodes wire JSON. Builtins are resolved by name in reg,
// or in Stdlib when reg is nil.
func UnmarshalTerm(data []byte, reg *Registry) (Term, error) {
	var w wireTerm
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, &WireError{Msg: err.Error()}
	}
	if reg == nil {
		reg = Stdlib
	}
	d := decoder{reg: reg}
	return d.term(&w, "")
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func rawValue(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

func encodeTerm(t Term) (*wireTerm, error) {
	w := &wireTerm{IsNamed: t.Named()}
	for k, v := range t.Meta() {
		if !utf8.ValidString(k) || !utf8.ValidString(v) {
			return nil, &WireError{Msg: fmt.Sprintf("meta %q is not valid UTF-8", k)}
		}
	}
	if len(t.Meta()) > 0 {
		w.MetaInfo = t.Meta()
	}
	var err error
	switch v := t.(type) {
	case *Variable:
		w.TypeName = "Variable"
		if v.named {
			w.Name = &v.name
		} else {
			i := v.index
			w.Index = &i
		}
	case *Abs:
		w.TypeName = "Abs"
		w.Variable = optString(v.param)
		w.Body, err = encodeTerm(v.body)
	case *App:
		w.TypeName = "App"
		if w.Function, err = encodeTerm(v.fn); err == nil {
			w.Argument, err = encodeTerm(v.arg)
		}
	case *Constant:
		w.TypeName = "Constant"
		w.Name = optString(v.name)
	case *String:
		w.TypeName = "String"
		if !utf8.ValidString(v.value) {
			return nil, &WireError{Msg: fmt.Sprintf("string %q is not valid UTF-8", v.value)}
		}
		w.Value = rawValue(v.value)
	case *Integer:
		w.TypeName = "Integer"
		w.Value = rawValue(v.value)
	case *Boolean:
		w.TypeName = "Boolean"
		w.Value = rawValue(v.value)
	case *List:
		w.TypeName = "List"
		w.Terms = make([]*wireTerm, len(v.terms))
		for i, e := range v.terms {
			if w.Terms[i], err = encodeTerm(e); err != nil {
				break
			}
		}
	case *Record:
		w.TypeName = "Record"
		w.Attributes, err = encodeTerms(v.attrs)
	case *Builtin:
		w.TypeName = "Builtin"
		name := v.prim.Name()
		w.Name = &name
	case *Class:
		w.TypeName = "Class"
		err = encodeClass(w, v)
	case *Object:
		w.TypeName = "Object"
		if w.Class, err = encodeTerm(v.class); err != nil {
			break
		}
		if w.Attributes, err = encodeTerms(v.attrs); err != nil {
			break
		}
		w.Methods, err = encodeTerms(v.methods)
	default:
		return nil, &WireError{Msg: fmt.Sprintf("cannot encode %T", t)}
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

func encodeClass(w *wireTerm, c *Class) error {
	var err error
	w.Name = optString(c.name)
	if c.inherit != nil {
		if w.Inherit, err = encodeTerm(c.inherit); err != nil {
			return err
		}
	}
	if w.Defaults, err = encodeTerms(c.defaults); err != nil {
		return err
	}
	w.Labels = append([]string(nil), c.attributes...)
	w.Methods, err = encodeTerms(c.methods)
	return err
}

func encodeTerms(m map[string]Term) (map[string]*wireTerm, error) {
	if len(m) == 0 {
		return nil, nil
	}
	out := make(map[string]*wireTerm, len(m))
	for _, k := range sortedKeys(m) {
		w, err := encodeTerm(m[k])
		if err != nil {
			return nil, err
		}
		out[k] = w
	}
	return out, nil
}

type decoder struct {
	reg *Registry
}

func (d *decoder) fail(path, format string, args ...any) error {
	return &WireError{Path: path, Msg: fmt.Sprintf(format, args...)}
}

func join(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}

// child decodes a required child and checks its named flag.
func (d *decoder) child(w *wireTerm, named bool, path string) (Term, error) {
	if w == nil {
		return nil, d.fail(path, "missing term")
	}
	t, err := d.term(w, path)
	if err != nil {
		return nil, err
	}
	if t.Named() != named {
		return nil, d.fail(path, "named flag differs from parent")
	}
	return t, nil
}

func (d *decoder) children(m map[string]*wireTerm, named bool, path string) (map[string]Term, error) {
	out := make(map[string]Term, len(m))
	for _, k := range sortedKeys(m) {
		t, err := d.child(m[k], named, join(path, k))
		if err != nil {
			return nil, err
		}
		out[k] = t
	}
	return out, nil
}

func (d *decoder) term(w *wireTerm, path string) (Term, error) {
	t, err := d.node(w, path)
	if err != nil {
		return nil, err
	}
	if len(w.MetaInfo) > 0 {
		m := make(Meta, len(w.MetaInfo))
		for k, v := range w.MetaInfo {
			m[k] = v
		}
		t = t.withMeta(m)
	}
	return t, nil
}

func (d *decoder) node(w *wireTerm, path string) (Term, error) {
	named := w.IsNamed
	n := node{named: named}
	switch w.TypeName {
	case "Variable":
		if named {
			if w.Name == nil || *w.Name == "" {
				return nil, d.fail(path, "named variable without name")
			}
			return &Variable{node: n, name: *w.Name}, nil
		}
		if w.Index == nil || *w.Index < 0 {
			return nil, d.fail(path, "nameless variable without valid index")
		}
		return &Variable{node: n, index: *w.Index}, nil
	case "Abs":
		param := lo.FromPtr(w.Variable)
		if named == (param == "") {
			return nil, d.fail(path, "abstraction parameter does not match named flag")
		}
		body, err := d.child(w.Body, named, join(path, "body"))
		if err != nil {
			return nil, err
		}
		return &Abs{node: n, param: param, body: body}, nil
	case "App":
		fn, err := d.child(w.Function, named, join(path, "function"))
		if err != nil {
			return nil, err
		}
		arg, err := d.child(w.Argument, named, join(path, "argument"))
		if err != nil {
			return nil, err
		}
		return &App{node: n, fn: fn, arg: arg}, nil
	case "Constant":
		return &Constant{node: n, name: lo.FromPtr(w.Name)}, nil
	case "String":
		var s string
		if err := json.Unmarshal(w.Value, &s); err != nil {
			return nil, d.fail(path, "bad string value: %v", err)
		}
		return &String{node: n, value: s}, nil
	case "Integer":
		i, err := strconv.ParseInt(string(w.Value), 10, 64)
		if err != nil {
			return nil, d.fail(path, "bad integer value %s", w.Value)
		}
		return &Integer{node: n, value: i}, nil
	case "Boolean":
		var b bool
		if err := json.Unmarshal(w.Value, &b); err != nil {
			return nil, d.fail(path, "bad boolean value: %v", err)
		}
		return &Boolean{node: n, value: b}, nil
	case "List":
		terms := make([]Term, len(w.Terms))
		for i, e := range w.Terms {
			t, err := d.child(e, named, fmt.Sprintf("%s[%d]", join(path, "terms"), i))
			if err != nil {
				return nil, err
			}
			terms[i] = t
		}
		return &List{node: n, terms: terms}, nil
	case "Record":
		attrs, err := d.children(w.Attributes, named, join(path, "attributes"))
		if err != nil {
			return nil, err
		}
		return &Record{node: n, attrs: attrs}, nil
	case "Builtin":
		name := lo.FromPtr(w.Name)
		p, ok := d.reg.Lookup(name)
		if !ok {
			return nil, d.fail(path, "unknown builtin %q", name)
		}
		return &Builtin{node: n, prim: p}, nil
	case "Class":
		return d.class(w, path)
	case "Object":
		return d.object(w, path)
	}
	return nil, d.fail(path, "unknown type_name %q", w.TypeName)
}

func (d *decoder) class(w *wireTerm, path string) (*Class, error) {
	c := &Class{node: node{named: w.IsNamed}, name: lo.FromPtr(w.Name)}
	if w.Inherit != nil {
		t, err := d.child(w.Inherit, w.IsNamed, join(path, "inherit"))
		if err != nil {
			return nil, err
		}
		parent, ok := t.(*Class)
		if !ok {
			return nil, d.fail(path, "inherit is not a class")
		}
		c.inherit = parent
	}
	var err error
	if c.defaults, err = d.children(w.Defaults, w.IsNamed, join(path, "defaults")); err != nil {
		return nil, err
	}
	if c.methods, err = d.children(w.Methods, w.IsNamed, join(path, "methods")); err != nil {
		return nil, err
	}
	c.attributes = lo.Uniq(w.Labels)
	slices.Sort(c.attributes)
	if c.attributes == nil {
		c.attributes = []string{}
	}
	for k := range c.defaults {
		if !lo.Contains(c.attributes, k) {
			return nil, d.fail(path, "default %q is not an attribute", k)
		}
	}
	if lo.Contains(c.attributes, ReservedLabel) {
		return nil, d.fail(path, "attribute %q is reserved", ReservedLabel)
	}
	if _, ok := c.methods[ReservedLabel]; ok {
		return nil, d.fail(path, "method %q is reserved", ReservedLabel)
	}
	return c, nil
}

func (d *decoder) object(w *wireTerm, path string) (*Object, error) {
	t, err := d.child(w.Class, w.IsNamed, join(path, "class"))
	if err != nil {
		return nil, err
	}
	class, ok := t.(*Class)
	if !ok {
		return nil, d.fail(path, "class is not a class")
	}
	o := &Object{node: node{named: w.IsNamed}, class: class}
	if o.attrs, err = d.children(w.Attributes, w.IsNamed, join(path, "attributes")); err != nil {
		return nil, err
	}
	if o.methods, err = d.children(w.Methods, w.IsNamed, join(path, "methods")); err != nil {
		return nil, err
	}
	if !slices.Equal(sortedKeys(o.attrs), class.attributes) {
		return nil, d.fail(path, "attributes do not match the class")
	}
	return o, nil
}
