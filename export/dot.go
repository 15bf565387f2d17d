package export

import (
	"fmt"
	"strings"

	"github.com/mean-machine-gc/ubispec/graph"
)

// DOT renders a topology graph in Graphviz notation. Deciders render
// as boxes, processes as ellipses, and all-trigger convergence points
// as small diamonds.
func DOT(g *graph.Graph) string {
	var sb strings.Builder
	sb.WriteString("digraph topology {\n")
	sb.WriteString("    rankdir=LR;\n")
	for _, n := range g.Nodes {
		sb.WriteString(fmt.Sprintf("    %s [shape=%s];\n", quote(n.ID), shape(n.Kind)))
	}
	for _, e := range g.Edges {
		sb.WriteString(fmt.Sprintf("    %s -> %s [label=%s];\n", quote(e.From), quote(e.To), quote(e.Label)))
	}
	sb.WriteString("}\n")
	return sb.String()
}

func shape(kind graph.NodeKind) string {
	switch kind {
	case graph.NodeProcess:
		return "ellipse"
	case graph.NodeConvergence:
		return "diamond"
	default:
		return "box"
	}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
