package model

import "time"

// DAGVersion is the schema version written into every generated DAG.
const DAGVersion = "2.0"

// NodeType classifies a DAG node. Only events are generated.
type NodeType string

const NodeTypeEvent NodeType = "event"

// TimelineNode is a timeline item placed in the relationship graph.
type TimelineNode struct {
	TimelineItem
	NodeType          NodeType `json:"node_type"`
	TemporalPrecision int      `json:"temporal_precision"`
	IsParent          bool     `json:"is_parent"`
}

// DAGStats summarizes the shape of a TimelineDAG.
type DAGStats struct {
	NodeCount     int     `json:"node_count"`
	EdgeCount     int     `json:"edge_count"`
	AvgDegree     float64 `json:"avg_degree"`
	MaxPathLength int     `json:"max_path_length"`
	CyclicCount   int     `json:"cyclic_count"`
}

// TimelineDAG is the cleaned, acyclic relationship graph of a text.
type TimelineDAG struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Text        string          `json:"text"`
	Nodes       []*TimelineNode `json:"nodes"`
	Edges       []*TimelineEdge `json:"edges"`
	Stats       DAGStats        `json:"stats"`
	GeneratedAt time.Time       `json:"generated_at"`
	Version     string          `json:"version"`
	// Set when the DAG is stored
	Source    string     `json:"source,omitempty"`
	Metadata  Metadata   `json:"metadata,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Node returns the node with the given id, or nil.
func (d *TimelineDAG) Node(id string) *TimelineNode {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// EntityMention is a stored node that names a person or location, with the timeline it belongs to.
type EntityMention struct {
	TimelineID string        `json:"timeline_id"`
	Node       *TimelineNode `json:"node"`
}
