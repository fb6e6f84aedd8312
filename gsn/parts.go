package gsn

import "strconv"

// Part is one node of the flattened tree handed to renderers.
type Part struct {
	PartsID     string   `json:"partsID"`
	Parent      string   `json:"parent"`
	Children    []string `json:"children"`
	Kind        Kind     `json:"kind"`
	Detail      string   `json:"detail"`
	Undeveloped bool     `json:"undeveloped,omitempty"`
}

// Parts flattens the tree rooted at root. Ids are assigned in the order
// nodes are reached, so the same tree always yields the same parts. A
// goal's children are its assumptions, its contexts and then its support;
// an undeveloped goal has no support part and is flagged instead.
func Parts(root *Node) []Part {
	b := &partsBuilder{}
	b.add(root, "", b.nextID())
	return b.parts
}

type partsBuilder struct {
	n     int
	parts []Part
}

func (b *partsBuilder) nextID() string {
	b.n++
	return "n" + strconv.Itoa(b.n)
}

func children(n *Node) []*Node {
	switch n.Kind {
	case KindGoal:
		var cs []*Node
		cs = append(cs, n.Assumptions...)
		cs = append(cs, n.Contexts...)
		if n.Support != nil && n.Support.Kind != KindUndeveloped {
			cs = append(cs, n.Support)
		}
		return cs
	case KindStrategy:
		return n.SubGoals
	}
	return nil
}

func (b *partsBuilder) add(n *Node, parent, id string) {
	cs := children(n)
	ids := make([]string, len(cs))
	for i := range cs {
		ids[i] = b.nextID()
	}
	b.parts = append(b.parts, Part{
		PartsID:     id,
		Parent:      parent,
		Children:    ids,
		Kind:        n.Kind,
		Detail:      n.Description,
		Undeveloped: n.Kind == KindGoal && (n.Support == nil || n.Support.Kind == KindUndeveloped),
	})
	for i, c := range cs {
		b.add(c, id, ids[i])
	}
}
