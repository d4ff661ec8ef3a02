package model

// RelationType represents the type of relationship between two timeline nodes
type RelationType string

const (
	RelationCausal       RelationType = "causal"
	RelationTemporal     RelationType = "temporal"
	RelationPrerequisite RelationType = "prerequisite"
	RelationParallel     RelationType = "parallel"
	RelationDerived      RelationType = "derived"
	RelationDependency   RelationType = "dependency"
	RelationCorrelated   RelationType = "correlated"
)

// RelationTypes lists every known relation type.
var RelationTypes = []RelationType{
	RelationCausal,
	RelationTemporal,
	RelationPrerequisite,
	RelationParallel,
	RelationDerived,
	RelationDependency,
	RelationCorrelated,
}

// Valid reports whether r is a known relation type.
func (r RelationType) Valid() bool {
	for _, t := range RelationTypes {
		if t == r {
			return true
		}
	}
	return false
}

// TimelineEdge is a directed relationship from an earlier node to a later one.
type TimelineEdge struct {
	SourceID          string       `json:"source_id"`
	TargetID          string       `json:"target_id"`
	RelationType      RelationType `json:"relation_type"`
	RelationStrength  float64      `json:"relation_strength"`
	TimeGapDays       *int         `json:"time_gap_days,omitempty"`
	Reasoning         string       `json:"reasoning"`
	EvidenceSentences []string     `json:"evidence_sentences"`
}
