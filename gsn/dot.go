package gsn

import (
	"fmt"
	"strings"
)

var shapes = map[Kind]string{
	KindGoal:       "shape=box",
	KindStrategy:   "shape=parallelogram",
	KindEvidence:   "shape=circle",
	KindAssumption: "shape=ellipse, xlabel=\"A\"",
	KindContext:    "shape=box, style=rounded",
}

// DOT renders the tree as a Graphviz digraph. Supports are joined by solid
// arrows, assumptions and contexts by hollow ones, and undeveloped goals
// carry a small diamond.
func DOT(root *Node) string {
	parts := Parts(root)
	kinds := make(map[string]Kind, len(parts))
	for _, p := range parts {
		kinds[p.PartsID] = p.Kind
	}

	var sb strings.Builder
	sb.WriteString("digraph GSN {\n")
	sb.WriteString("  rankdir=TB;\n")
	sb.WriteString("  node [fontname=\"Helvetica\"];\n")
	sb.WriteString("\n")

	for _, p := range parts {
		sb.WriteString(fmt.Sprintf("  %q [label=%s, %s];\n", p.PartsID, dotString(p.Detail), shapes[p.Kind]))
		if p.Undeveloped {
			sb.WriteString(fmt.Sprintf("  %q [label=\"\", shape=diamond, width=0.2, height=0.2];\n", p.PartsID+"_undeveloped"))
		}
	}
	sb.WriteString("\n")

	for _, p := range parts {
		for _, c := range p.Children {
			arrow := "normal"
			if k := kinds[c]; k == KindAssumption || k == KindContext {
				arrow = "empty"
			}
			sb.WriteString(fmt.Sprintf("  %q -> %q [arrowhead=%s];\n", p.PartsID, c, arrow))
		}
		if p.Undeveloped {
			sb.WriteString(fmt.Sprintf("  %q -> %q [arrowhead=none];\n", p.PartsID, p.PartsID+"_undeveloped"))
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

func dotString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}
