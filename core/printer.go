package pgsn

import (
	"strconv"
	"strings"
)

func (v *Variable) String() string {
	if v.named {
		return v.name
	}
	return "#" + strconv.Itoa(v.index)
}

func (a *Abs) String() string {
	if a.named {
		return "λ" + a.param + ". " + a.body.String()
	}
	return "λ. " + a.body.String()
}

func (a *App) String() string {
	c := Spine(a)
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, operand(c.Head))
	for _, t := range c.Args {
		parts = append(parts, operand(t))
	}
	return strings.Join(parts, " ")
}

// operand parenthesizes terms that would otherwise swallow their
// neighbours.
func operand(t Term) string {
	switch t.(type) {
	case *App, *Abs:
		return "(" + t.String() + ")"
	}
	return t.String()
}

func (k *Constant) String() string { return k.name }
func (s *String) String() string   { return strconv.Quote(s.value) }
func (i *Integer) String() string  { return strconv.FormatInt(i.value, 10) }
func (b *Boolean) String() string  { return strconv.FormatBool(b.value) }
func (b *Builtin) String() string  { return b.prim.Name() }

func (l *List) String() string {
	parts := make([]string, len(l.terms))
	for i, t := range l.terms {
		parts[i] = t.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (r *Record) String() string {
	return "{" + labelled(r.attrs) + "}"
}

func (c *Class) String() string {
	if c.name == "" {
		return "<class>"
	}
	return "<class " + c.name + ">"
}

func (o *Object) String() string {
	name := o.class.name
	if name == "" {
		name = "object"
	}
	return "<" + name + " {" + labelled(o.attrs) + "}>"
}

func labelled(m map[string]Term) string {
	keys := sortedKeys(m)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + m[k].String()
	}
	return strings.Join(parts, ", ")
}
