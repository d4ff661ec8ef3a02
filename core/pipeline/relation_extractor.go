package pipeline

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/siherrmann/timegrapher/core/calendar"
	"github.com/siherrmann/timegrapher/core/lexicon"
	"github.com/siherrmann/timegrapher/model"
)

const (
	markerWeight     = 0.5
	semanticWeight   = 0.3
	decayWeight      = 0.2
	sameCategory     = 0.8
	sameGeneral      = 0.2
	unlistedAffinity = 0.3
	undatedDecay     = 0.8
	decayDays        = 365.0
	secondsPerDay    = 86400
)

// RelationInferrer proposes typed edges between nearby timeline items from
// lexical markers, category affinity and the time between them.
type RelationInferrer struct {
	lexicon *lexicon.Lexicon
}

// NewRelationInferrer creates an inferrer backed by lex. A nil lexicon uses the built-in tables.
func NewRelationInferrer(lex *lexicon.Lexicon) *RelationInferrer {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &RelationInferrer{lexicon: lex}
}

// Infer returns the edges between items at most window positions apart whose
// strength reaches threshold. items must be in chronological order; pairs whose
// resolved dates decrease are skipped so every edge points forward in time.
func (r *RelationInferrer) Infer(items []*model.TimelineItem, window int, threshold float64) []*model.TimelineEdge {
	dates := make([]*time.Time, len(items))
	for i, item := range items {
		if item.HasDate() {
			if t, ok := calendar.ParseISO(*item.DateISO); ok {
				dates[i] = &t
			}
		}
	}

	var edges []*model.TimelineEdge
	for i := range items {
		for j := i + 1; j < len(items) && j <= i+window; j++ {
			if dates[i] != nil && dates[j] != nil && dates[j].Before(*dates[i]) {
				continue
			}
			edge := r.relate(items[i], items[j], dates[i], dates[j])
			if edge.RelationStrength >= threshold {
				edges = append(edges, edge)
			}
		}
	}
	return edges
}

// relate scores the edge from source to the later target.
func (r *RelationInferrer) relate(source, target *model.TimelineItem, sourceDate, targetDate *time.Time) *model.TimelineEdge {
	marker, found := r.findMarker(target.Text(), source.Text())
	relationType := model.RelationTemporal
	markerScore := 0.0
	if found {
		relationType = marker.Type
		markerScore = marker.Score
	}

	semantic := r.semanticSimilarity(source.Category, target.Category)
	decay := undatedDecay
	var gap *int
	if sourceDate != nil && targetDate != nil {
		days := int((targetDate.Unix() - sourceDate.Unix()) / secondsPerDay)
		gap = &days
		decay = math.Exp(-math.Abs(float64(days)) / decayDays)
	}

	edge := &model.TimelineEdge{
		SourceID:         source.ID,
		TargetID:         target.ID,
		RelationType:     relationType,
		RelationStrength: round(clip(markerWeight*markerScore+semanticWeight*semantic+decayWeight*decay), 3),
		TimeGapDays:      gap,
	}
	if found {
		edge.EvidenceSentences = evidence(marker.Phrase, target, source)
	}
	if found && marker.Type == model.RelationCausal {
		edge.Reasoning = fmt.Sprintf("marker %q indicates a causal relation from %q to %q", marker.Phrase, source.Title, target.Title)
	} else {
		edge.Reasoning = chronologyReasoning(source, target, gap, semantic)
	}
	if len(edge.EvidenceSentences) == 0 {
		edge.EvidenceSentences = []string{target.Title}
	}
	return edge
}

// findMarker scans each text in turn against the marker table in priority
// order. A later marker only wins with a strictly higher score.
func (r *RelationInferrer) findMarker(texts ...string) (lexicon.Marker, bool) {
	var best lexicon.Marker
	found := false
	for _, text := range texts {
		for _, m := range r.lexicon.Markers() {
			if strings.Contains(text, m.Phrase) && (!found || m.Score > best.Score) {
				best = m
				found = true
			}
		}
	}
	return best, found
}

func (r *RelationInferrer) semanticSimilarity(a, b model.Category) float64 {
	switch {
	case a == b && a != model.CategoryGeneral:
		return sameCategory
	case a == b:
		return sameGeneral
	}
	if score, ok := r.lexicon.Affinity(a, b); ok {
		return score
	}
	return unlistedAffinity
}

// evidence returns the sentences of the items that contain phrase.
func evidence(phrase string, items ...*model.TimelineItem) []string {
	var sentences []string
	for _, item := range items {
		for _, sentence := range strings.Split(item.Description, "\n") {
			if strings.Contains(sentence, phrase) && !contains(sentences, sentence) {
				sentences = append(sentences, sentence)
			}
		}
	}
	return sentences
}

func chronologyReasoning(source, target *model.TimelineItem, gap *int, semantic float64) string {
	var sb strings.Builder
	if gap != nil {
		fmt.Fprintf(&sb, "%q precedes %q by %d days", source.Title, target.Title, *gap)
	} else {
		fmt.Fprintf(&sb, "%q precedes %q in the timeline", source.Title, target.Title)
	}
	fmt.Fprintf(&sb, "; category similarity %.2f (%s, %s)", semantic, source.Category, target.Category)
	if shared := sharedEntities(source, target); len(shared) > 0 {
		fmt.Fprintf(&sb, "; shared entities: %s", strings.Join(shared, ", "))
	}
	return sb.String()
}

func sharedEntities(a, b *model.TimelineItem) []string {
	var shared []string
	for _, name := range append(append([]string{}, a.People...), a.Locations...) {
		if (contains(b.People, name) || contains(b.Locations, name)) && !contains(shared, name) {
			shared = append(shared, name)
		}
	}
	return shared
}
