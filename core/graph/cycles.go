package graph

import "github.com/siherrmann/timegrapher/model"

const (
	unvisited = iota
	onStack
	done
)

// ResolveCycles removes edges until the graph is acyclic. For every cycle the
// depth-first search finds, the weakest edge on it is removed, the earliest
// one on equal strength. It returns the kept edges in input order and the
// removed edges in removal order.
func ResolveCycles(edges []*model.TimelineEdge) ([]*model.TimelineEdge, []*model.TimelineEdge) {
	kept := append([]*model.TimelineEdge{}, edges...)
	var removed []*model.TimelineEdge
	for {
		cycle := findCycle(New(kept))
		if cycle == nil {
			return kept, removed
		}

		weakest := cycle[0]
		for _, i := range cycle[1:] {
			if kept[i].RelationStrength < kept[weakest].RelationStrength ||
				(kept[i].RelationStrength == kept[weakest].RelationStrength && i < weakest) {
				weakest = i
			}
		}
		removed = append(removed, kept[weakest])
		kept = withoutIndex(kept, weakest)
	}
}

// CountCycles returns how many edges must be removed to make the graph acyclic.
func CountCycles(edges []*model.TimelineEdge) int {
	_, removed := ResolveCycles(edges)
	return len(removed)
}

// IsAcyclic reports whether edges contain no directed cycle.
func IsAcyclic(edges []*model.TimelineEdge) bool {
	return findCycle(New(edges)) == nil
}

type frame struct {
	node string
	next int
}

// findCycle runs an iterative depth-first search and returns the edge indices
// of the first cycle closed by a back edge, or nil.
func findCycle(g *Graph) []int {
	state := map[string]int{}
	parentEdge := map[string]int{}

	for _, root := range g.nodes {
		if state[root] != unvisited {
			continue
		}
		state[root] = onStack
		stack := []frame{{node: root}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			out := g.outgoing[top.node]
			if top.next == len(out) {
				state[top.node] = done
				stack = stack[:len(stack)-1]
				continue
			}

			i := out[top.next]
			top.next++
			target := g.edges[i].TargetID
			switch state[target] {
			case unvisited:
				state[target] = onStack
				parentEdge[target] = i
				stack = append(stack, frame{node: target})
			case onStack:
				return cyclePath(g, parentEdge, i)
			}
		}
	}
	return nil
}

// cyclePath follows parent edges from the source of the back edge to its target.
func cyclePath(g *Graph, parentEdge map[string]int, backEdge int) []int {
	cycle := []int{backEdge}
	start := g.edges[backEdge].TargetID
	for current := g.edges[backEdge].SourceID; current != start; {
		i := parentEdge[current]
		cycle = append(cycle, i)
		current = g.edges[i].SourceID
	}
	return cycle
}
