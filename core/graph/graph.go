// Package graph holds the pure graph algorithms run on timeline edges.
// No function mutates the edges it is given.
package graph

import "github.com/siherrmann/timegrapher/model"

// Graph is an adjacency view over a list of edges.
type Graph struct {
	nodes    []string
	outgoing map[string][]int
	edges    []*model.TimelineEdge
}

// New builds a graph from edges. Nodes are ordered by first appearance.
func New(edges []*model.TimelineEdge) *Graph {
	g := &Graph{outgoing: map[string][]int{}, edges: edges}
	seen := map[string]bool{}
	for i, e := range edges {
		for _, id := range []string{e.SourceID, e.TargetID} {
			if !seen[id] {
				seen[id] = true
				g.nodes = append(g.nodes, id)
			}
		}
		g.outgoing[e.SourceID] = append(g.outgoing[e.SourceID], i)
	}
	return g
}

// Nodes returns the node ids in first-appearance order.
func (g *Graph) Nodes() []string {
	return g.nodes
}

// Outgoing returns the edges leaving id in input order.
func (g *Graph) Outgoing(id string) []*model.TimelineEdge {
	out := make([]*model.TimelineEdge, 0, len(g.outgoing[id]))
	for _, i := range g.outgoing[id] {
		out = append(out, g.edges[i])
	}
	return out
}

// reachable reports whether to can be reached from from without using the edge at index skip.
func (g *Graph) reachable(from, to string, skip int) bool {
	visited := map[string]bool{from: true}
	queue := []string{from}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, i := range g.outgoing[current] {
			if i == skip {
				continue
			}
			next := g.edges[i].TargetID
			if next == to {
				return true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

func withoutIndex(edges []*model.TimelineEdge, index int) []*model.TimelineEdge {
	out := make([]*model.TimelineEdge, 0, len(edges)-1)
	out = append(out, edges[:index]...)
	return append(out, edges[index+1:]...)
}
