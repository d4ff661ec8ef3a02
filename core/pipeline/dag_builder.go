package pipeline

import (
	"github.com/siherrmann/timegrapher/core/graph"
	"github.com/siherrmann/timegrapher/model"
)

// BuildTimelineDAG extracts the timeline of text and connects its items with
// inferred relations. Cycles are resolved and transitive shortcuts removed, so
// the returned graph is always acyclic.
func (p *Pipeline) BuildTimelineDAG(text string, cfg model.DAGConfig) *model.TimelineDAG {
	cfg = cfg.Normalize()

	extracted := p.extract(text, cfg.Extraction)
	items := make([]*model.TimelineItem, 0, len(extracted))
	for _, e := range extracted {
		items = append(items, e.item)
	}

	candidates := p.RelationInferrer(items, cfg.LookaheadWindow, cfg.RelationThreshold)
	acyclic, removed := graph.ResolveCycles(candidates)
	edges := graph.TransitiveReduction(acyclic)
	if edges == nil {
		edges = []*model.TimelineEdge{}
	}

	outgoing := map[string]int{}
	for _, e := range edges {
		outgoing[e.SourceID]++
	}
	nodes := make([]*model.TimelineNode, 0, len(extracted))
	for _, e := range extracted {
		nodes = append(nodes, &model.TimelineNode{
			TimelineItem:      *e.item,
			NodeType:          model.NodeTypeEvent,
			TemporalPrecision: int(e.precision),
			IsParent:          outgoing[e.item.ID] > 0,
		})
	}

	title := cfg.Title
	if title == "" && len(nodes) > 0 {
		title = nodes[0].Title
	}

	p.log.Debug("built timeline dag",
		"nodes", len(nodes),
		"candidate_edges", len(candidates),
		"cycle_edges_removed", len(removed),
		"edges", len(edges),
	)

	return &model.TimelineDAG{
		ID:          p.NewID(),
		Title:       title,
		Text:        truncateRunes(text, model.MaxDAGTextLen),
		Nodes:       nodes,
		Edges:       edges,
		Stats:       dagStats(nodes, edges),
		GeneratedAt: p.Now().UTC(),
		Version:     model.DAGVersion,
	}
}

func dagStats(nodes []*model.TimelineNode, edges []*model.TimelineEdge) model.DAGStats {
	stats := model.DAGStats{
		NodeCount:     len(nodes),
		EdgeCount:     len(edges),
		MaxPathLength: graph.MaxPathLength(nodes, edges),
		CyclicCount:   graph.CountCycles(edges),
	}
	if len(nodes) > 0 {
		stats.AvgDegree = round(2*float64(len(edges))/float64(len(nodes)), 3)
	}
	return stats
}

func truncateRunes(text string, limit int) string {
	count := 0
	for i := range text {
		if count == limit {
			return text[:i]
		}
		count++
	}
	return text
}
