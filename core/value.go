package pgsn

import (
	"fmt"
	"sort"
)

// ToHost converts a reduced term to a native Go value for JSON
// serialization: string, int64, bool, []any or map[string]any. An Object
// becomes its attribute map plus the marker key "__<ClassName>__": true;
// objects of anonymous classes get no marker.
// Anything else, stuck terms included, yields a *ProjectionError.
func ToHost(t Term) (any, error) {
	switch v := t.(type) {
	case *String:
		return v.value, nil
	case *Integer:
		return v.value, nil
	case *Boolean:
		return v.value, nil
	case *List:
		arr := make([]any, len(v.terms))
		for i, e := range v.terms {
			j, err := ToHost(e)
			if err != nil {
				return nil, err
			}
			arr[i] = j
		}
		return arr, nil
	case *Record:
		return hostMap(v.attrs)
	case *Object:
		obj, err := hostMap(v.attrs)
		if err != nil {
			return nil, err
		}
		if v.class.name != "" {
			obj["__"+v.class.name+"__"] = true
		}
		return obj, nil
	case *App:
		return nil, &ProjectionError{Term: t, Reason: "unreduced application"}
	case *Abs:
		return nil, &ProjectionError{Term: t, Reason: "abstraction"}
	case *Variable:
		return nil, &ProjectionError{Term: t, Reason: "free variable"}
	case *Builtin:
		if v.prim.Arity() == 0 {
			return nil, &ProjectionError{Term: t, Reason: "inapplicable constant builtin"}
		}
		return nil, &ProjectionError{Term: t, Reason: fmt.Sprintf("builtin awaiting %d arguments", v.prim.Arity())}
	default:
		return nil, &ProjectionError{Term: t, Reason: "no host representation"}
	}
}

func hostMap(attrs map[string]Term) (map[string]any, error) {
	obj := make(map[string]any, len(attrs))
	keys := sortedKeys(attrs)
	for _, k := range keys {
		j, err := ToHost(attrs[k])
		if err != nil {
			return nil, err
		}
		obj[k] = j
	}
	return obj, nil
}

// ValueOf fully evaluates t and projects the result.
func ValueOf(t Term, steps int) (any, error) {
	n, err := FullyEval(t, steps)
	if err != nil {
		return nil, err
	}
	return ToHost(n)
}

// FromHost converts a native Go value, typically decoded JSON, to a term.
// Terms are returned unchanged; float64 values must be whole numbers.
func FromHost(v any, named bool) (Term, error) {
	switch val := v.(type) {
	case Term:
		if val.Named() != named {
			return nil, fmt.Errorf("term %s has the wrong named flag", val)
		}
		return val, nil
	case string:
		return NewString(named, val), nil
	case bool:
		return NewBoolean(named, val), nil
	case int:
		return NewInteger(named, int64(val)), nil
	case int64:
		return NewInteger(named, val), nil
	case float64:
		if val != float64(int64(val)) {
			return nil, fmt.Errorf("%v is not an integer", val)
		}
		return NewInteger(named, int64(val)), nil
	case []any:
		terms := make([]Term, len(val))
		for i, e := range val {
			t, err := FromHost(e, named)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			terms[i] = t
		}
		return NewList(named, terms), nil
	case []Term:
		return NewList(named, val), nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		attrs := make(map[string]Term, len(val))
		for _, k := range keys {
			t, err := FromHost(val[k], named)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			attrs[k] = t
		}
		return NewRecord(named, attrs), nil
	case map[string]Term:
		return NewRecord(named, val), nil
	default:
		return nil, fmt.Errorf("cannot convert %T to a term", v)
	}
}
