package graph

import "github.com/siherrmann/timegrapher/model"

// TraversalResult contains a node and its distance from the source
type TraversalResult struct {
	NodeID   string
	Distance int
	Path     []string // Path from source to this node
}

// BFS performs breadth-first search from a source node following edge direction
func BFS(edges []*model.TimelineEdge, sourceID string, maxHops int) []*TraversalResult {
	g := New(edges)
	visited := map[string]bool{sourceID: true}
	queue := []TraversalResult{{NodeID: sourceID, Path: []string{sourceID}}}

	var results []*TraversalResult
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		results = append(results, &current)

		// Stop if we've reached max hops
		if current.Distance >= maxHops {
			continue
		}

		for _, edge := range g.Outgoing(current.NodeID) {
			if visited[edge.TargetID] {
				continue
			}
			visited[edge.TargetID] = true

			newPath := make([]string, len(current.Path), len(current.Path)+1)
			copy(newPath, current.Path)
			queue = append(queue, TraversalResult{
				NodeID:   edge.TargetID,
				Distance: current.Distance + 1,
				Path:     append(newPath, edge.TargetID),
			})
		}
	}
	return results
}

// Neighbors returns the ids of the direct successors of a node
func Neighbors(edges []*model.TimelineEdge, nodeID string) []string {
	results := BFS(edges, nodeID, 1)

	// Skip the source node itself (first result)
	neighbors := make([]string, 0, len(results)-1)
	for _, r := range results[1:] {
		neighbors = append(neighbors, r.NodeID)
	}
	return neighbors
}

// TopologicalSort orders nodes so that every edge points forward, using Kahn's
// algorithm. Nodes that become ready at the same time keep their input order.
// Nodes on a cycle are left out. Edges to unknown nodes are ignored.
func TopologicalSort(nodes []*model.TimelineNode, edges []*model.TimelineEdge) []*model.TimelineNode {
	byID := make(map[string]*model.TimelineNode, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	inDegree := make(map[string]int, len(nodes))
	successors := map[string][]string{}
	for _, e := range edges {
		if byID[e.SourceID] == nil || byID[e.TargetID] == nil {
			continue
		}
		inDegree[e.TargetID]++
		successors[e.SourceID] = append(successors[e.SourceID], e.TargetID)
	}

	var queue []*model.TimelineNode
	for _, n := range nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n)
		}
	}

	sorted := make([]*model.TimelineNode, 0, len(nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		sorted = append(sorted, current)
		for _, next := range successors[current.ID] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, byID[next])
			}
		}
	}
	return sorted
}

// FindPaths returns every simple path from startID to endID with at most
// maxDepth edges, in depth-first order.
func FindPaths(startID, endID string, edges []*model.TimelineEdge, maxDepth int) [][]string {
	if startID == endID {
		return [][]string{{startID}}
	}

	g := New(edges)
	var paths [][]string
	onPath := map[string]bool{startID: true}
	findPathsRecursive(g, startID, endID, maxDepth, []string{startID}, onPath, &paths)
	return paths
}

// findPathsRecursive is the recursive helper for FindPaths
func findPathsRecursive(g *Graph, current, endID string, remaining int, path []string, onPath map[string]bool, paths *[][]string) {
	if remaining == 0 {
		return
	}

	for _, edge := range g.Outgoing(current) {
		next := edge.TargetID
		if onPath[next] {
			continue
		}
		if next == endID {
			found := make([]string, len(path), len(path)+1)
			copy(found, path)
			*paths = append(*paths, append(found, next))
			continue
		}

		onPath[next] = true
		findPathsRecursive(g, next, endID, remaining-1, append(path, next), onPath, paths)
		onPath[next] = false
	}
}

// MaxPathLength returns the number of edges on the longest path between the
// given nodes. Nodes on a cycle do not contribute.
func MaxPathLength(nodes []*model.TimelineNode, edges []*model.TimelineEdge) int {
	g := New(edges)
	longest := map[string]int{}
	maxLength := 0
	for _, n := range TopologicalSort(nodes, edges) {
		for _, edge := range g.Outgoing(n.ID) {
			if length := longest[n.ID] + 1; length > longest[edge.TargetID] {
				longest[edge.TargetID] = length
				maxLength = max(maxLength, length)
			}
		}
	}
	return maxLength
}
