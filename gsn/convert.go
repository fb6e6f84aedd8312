package gsn

import (
	"errors"
	"fmt"

	pgsn "github.com/yoriyuki/pgsn/core"
)

type Kind string

const (
	KindGoal        Kind = "Goal"
	KindStrategy    Kind = "Strategy"
	KindEvidence    Kind = "Evidence"
	KindAssumption  Kind = "Assumption"
	KindContext     Kind = "Context"
	KindUndeveloped Kind = "Undeveloped"
)

// ErrShape is wrapped by every error reporting a term that is not a well
// formed GSN argument.
var ErrShape = errors.New("not a GSN argument")

// Node is a GSN argument tree extracted from an evaluated term.
type Node struct {
	Kind        Kind
	Description string
	Support     *Node   // goals
	SubGoals    []*Node // strategies
	Assumptions []*Node // goals
	Contexts    []*Node // goals
}

// FromTerm fully evaluates t within steps and converts the resulting object
// tree. Strategies need at least one sub-goal, and every sub-goal must be a
// goal. A goal is supported by a strategy, evidence or nothing (Undeveloped).
func FromTerm(t pgsn.Term, steps int) (*Node, error) {
	n, err := pgsn.TryFullyEval(t, steps)
	if err != nil {
		return nil, err
	}
	return fromTerm(n, "root")
}

func shapeError(path, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrShape, path, fmt.Sprintf(format, args...))
}

func fromTerm(t pgsn.Term, path string) (*Node, error) {
	obj, ok := t.(*pgsn.Object)
	if !ok {
		return nil, shapeError(path, "%s is not a GSN node", t)
	}
	desc, err := stringAttr(obj, "description", path)
	if err != nil {
		return nil, err
	}
	n := &Node{Description: desc}
	switch obj.Class().Name() {
	case "Goal":
		n.Kind = KindGoal
		if n.Assumptions, err = nodeList(obj, "assumptions", path, KindAssumption); err != nil {
			return nil, err
		}
		if n.Contexts, err = nodeList(obj, "contexts", path, KindContext); err != nil {
			return nil, err
		}
		s, _ := obj.Attr("support")
		if n.Support, err = fromTerm(s, path+".support"); err != nil {
			return nil, err
		}
		switch n.Support.Kind {
		case KindStrategy, KindEvidence, KindUndeveloped:
		default:
			return nil, shapeError(path, "support must be a strategy, evidence or undeveloped, not %s", n.Support.Kind)
		}
	case "Strategy":
		n.Kind = KindStrategy
		if n.SubGoals, err = nodeList(obj, "sub_goals", path, KindGoal); err != nil {
			return nil, err
		}
		if len(n.SubGoals) == 0 {
			return nil, shapeError(path, "strategy without sub-goals")
		}
	case "Evidence":
		n.Kind = KindEvidence
	case "Assumption":
		n.Kind = KindAssumption
	case "Context":
		n.Kind = KindContext
	case "Support":
		if desc != "Undeveloped" {
			return nil, shapeError(path, "support %q without specific type", desc)
		}
		n.Kind = KindUndeveloped
	case "GSN_Node":
		return nil, shapeError(path, "node with unspecified kind")
	default:
		return nil, shapeError(path, "unknown class %q", obj.Class().Name())
	}
	return n, nil
}

func stringAttr(obj *pgsn.Object, label, path string) (string, error) {
	t, ok := obj.Attr(label)
	if !ok {
		return "", shapeError(path, "missing %s", label)
	}
	s, ok := t.(*pgsn.String)
	if !ok {
		return "", shapeError(path, "%s is %s, not a string", label, t)
	}
	return s.Value(), nil
}

func nodeList(obj *pgsn.Object, label, path string, want Kind) ([]*Node, error) {
	t, ok := obj.Attr(label)
	if !ok {
		return nil, shapeError(path, "missing %s", label)
	}
	l, ok := t.(*pgsn.List)
	if !ok {
		return nil, shapeError(path, "%s is %s, not a list", label, t)
	}
	nodes := make([]*Node, l.Len())
	for i := range nodes {
		p := fmt.Sprintf("%s.%s[%d]", path, label, i)
		n, err := fromTerm(l.At(i), p)
		if err != nil {
			return nil, err
		}
		if n.Kind != want {
			return nil, shapeError(p, "expected %s, got %s", want, n.Kind)
		}
		nodes[i] = n
	}
	return nodes, nil
}
