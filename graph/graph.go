// Package graph builds the message-flow topology of a document set and
// publishes artifacts for downstream consumers.
package graph

import (
	"fmt"
	"sort"

	"github.com/mean-machine-gc/ubispec/process"
	"github.com/mean-machine-gc/ubispec/validate"
)

// NodeKind distinguishes the three node shapes of a topology graph.
type NodeKind string

const (
	// NodeDecider is an aggregate named in reacts_to or emits_to.
	NodeDecider NodeKind = "decider"
	// NodeProcess is a process manager.
	NodeProcess NodeKind = "process"
	// NodeConvergence is the synthetic join point of an all trigger.
	NodeConvergence NodeKind = "convergence"
)

// Node is one topology node.
type Node struct {
	ID   string   `json:"id"`
	Kind NodeKind `json:"kind"`
}

// Edge is one labeled directed edge. The label is an event name, a
// dispatched command, or a correlate field on convergence edges.
type Edge struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Label string `json:"label"`
}

// Graph is an adjacency structure over the whole set, serializable to
// any graph-description notation.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// EdgesFrom returns every edge leaving the node, in insertion order.
func (g *Graph) EdgesFrom(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// Build assembles the topology graph of a set. Nodes are the union of
// every process name with every decider named in reacts_to or
// emits_to; scalar and any triggers become (decider, event, process)
// edges, dispatches become (process, command, decider) edges, and each
// all trigger becomes a convergence node whose outgoing edge carries
// the correlate field.
func Build(set *validate.Set) *Graph {
	g := &Graph{}
	seen := make(map[string]bool)

	add := func(id string, kind NodeKind) {
		if !seen[id] {
			seen[id] = true
			g.Nodes = append(g.Nodes, Node{ID: id, Kind: kind})
		}
	}

	var deciders []string
	deciderSeen := make(map[string]bool)
	for _, p := range set.Processes {
		for _, d := range append(append([]string(nil), p.ReactsTo...), p.EmitsTo...) {
			if !deciderSeen[d] {
				deciderSeen[d] = true
				deciders = append(deciders, d)
			}
		}
	}
	sort.Strings(deciders)
	for _, d := range deciders {
		add(d, NodeDecider)
	}

	for _, p := range set.Processes {
		add(p.Process, NodeProcess)
		for ri, r := range p.Reactions {
			sources := r.Sources()
			if r.Trigger.Kind == process.TriggerAll {
				join := fmt.Sprintf("%s/join-%d", p.Process, ri)
				add(join, NodeConvergence)
				for _, s := range sources {
					g.Edges = append(g.Edges, Edge{From: s.Decider, To: join, Label: s.Event})
				}
				g.Edges = append(g.Edges, Edge{From: join, To: p.Process, Label: r.Correlate})
			} else {
				for _, s := range sources {
					g.Edges = append(g.Edges, Edge{From: s.Decider, To: p.Process, Label: s.Event})
				}
			}
			for _, c := range r.Then {
				g.Edges = append(g.Edges, Edge{From: p.Process, To: c.Target, Label: c.Command})
			}
		}
	}

	return g
}
