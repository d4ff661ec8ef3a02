package graph

import "github.com/siherrmann/timegrapher/model"

// TransitiveReduction drops every edge (u, v) whose target is still reachable
// from u through the remaining edges. edges must be acyclic.
func TransitiveReduction(edges []*model.TimelineEdge) []*model.TimelineEdge {
	reduced := append([]*model.TimelineEdge{}, edges...)
	for i := 0; i < len(reduced); {
		e := reduced[i]
		if New(reduced).reachable(e.SourceID, e.TargetID, i) {
			reduced = withoutIndex(reduced, i)
			continue
		}
		i++
	}
	return reduced
}
