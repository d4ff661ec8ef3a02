package pipeline

import (
	"testing"

	"github.com/siherrmann/timegrapher/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timelineItem(id, iso string, category model.Category, title, description string) *model.TimelineItem {
	item := &model.TimelineItem{
		ID:          id,
		Title:       title,
		Description: description,
		Category:    category,
	}
	if iso != "" {
		item.DateISO = &iso
	}
	return item
}

func TestInfer(t *testing.T) {
	inferrer := NewRelationInferrer(nil)

	t.Run("Causal marker", func(t *testing.T) {
		source := timelineItem("a", "2020-01-01", "politics", "新しい経済政策を発表した", "政府は新しい経済政策を発表した。")
		target := timelineItem("b", "2020-01-02", "economy", "株価が上昇した", "その結果、株価が上昇した。")

		edges := inferrer.Infer([]*model.TimelineItem{source, target}, 3, 0.5)

		require.Len(t, edges, 1)
		edge := edges[0]
		assert.Equal(t, "a", edge.SourceID)
		assert.Equal(t, "b", edge.TargetID)
		assert.Equal(t, model.RelationCausal, edge.RelationType)
		// 0.5*0.95 + 0.3*0.6 + 0.2*exp(-1/365)
		assert.InDelta(t, 0.854, edge.RelationStrength, 1e-9)
		require.NotNil(t, edge.TimeGapDays)
		assert.Equal(t, 1, *edge.TimeGapDays)
		assert.Equal(t, []string{"その結果、株価が上昇した。"}, edge.EvidenceSentences)
		assert.Contains(t, edge.Reasoning, "その結果")
		assert.Contains(t, edge.Reasoning, "causal")
	})

	t.Run("No marker defaults to temporal", func(t *testing.T) {
		source := timelineItem("a", "2020-01-01", model.CategoryGeneral, "雨が降った", "雨が降った。")
		target := timelineItem("b", "2021-01-01", model.CategoryGeneral, "晴れた", "晴れた。")

		edges := inferrer.Infer([]*model.TimelineItem{source, target}, 3, 0)

		require.Len(t, edges, 1)
		edge := edges[0]
		assert.Equal(t, model.RelationTemporal, edge.RelationType)
		// 0.3*0.2 + 0.2*exp(-366/365)
		assert.InDelta(t, 0.133, edge.RelationStrength, 1e-9)
		assert.Equal(t, 366, *edge.TimeGapDays)
		assert.Equal(t, []string{"晴れた"}, edge.EvidenceSentences, "Expected the target title as evidence")
		assert.Contains(t, edge.Reasoning, "precedes")
		assert.Contains(t, edge.Reasoning, "366 days")
	})

	t.Run("Non-causal marker cites chronology", func(t *testing.T) {
		source := timelineItem("a", "2020-01-01", model.CategoryGeneral, "雨が降った", "雨が降った。")
		target := timelineItem("b", "2020-01-11", model.CategoryGeneral, "晴れた", "その後、晴れた。")

		edges := inferrer.Infer([]*model.TimelineItem{source, target}, 3, 0)

		require.Len(t, edges, 1)
		edge := edges[0]
		assert.Equal(t, model.RelationTemporal, edge.RelationType)
		assert.Equal(t, []string{"その後、晴れた。"}, edge.EvidenceSentences)
		assert.NotContains(t, edge.Reasoning, "その後")
		assert.Contains(t, edge.Reasoning, "precedes")
		assert.Contains(t, edge.Reasoning, "10 days")
		assert.Contains(t, edge.Reasoning, "category similarity")
	})

	t.Run("Undated items use a fixed decay", func(t *testing.T) {
		source := timelineItem("a", "", "sports", "予選", "予選が行われた。")
		target := timelineItem("b", "", "sports", "決勝", "決勝が行われた。")

		edges := inferrer.Infer([]*model.TimelineItem{source, target}, 3, 0)

		require.Len(t, edges, 1)
		// 0.3*0.8 + 0.2*0.8
		assert.InDelta(t, 0.4, edges[0].RelationStrength, 1e-9)
		assert.Nil(t, edges[0].TimeGapDays)
	})

	t.Run("Unlisted category pair", func(t *testing.T) {
		source := timelineItem("a", "", "sports", "予選", "予選。")
		target := timelineItem("b", "", "health", "流行", "流行。")

		edges := inferrer.Infer([]*model.TimelineItem{source, target}, 3, 0)

		require.Len(t, edges, 1)
		// 0.3*0.3 + 0.2*0.8
		assert.InDelta(t, 0.25, edges[0].RelationStrength, 1e-9)
	})

	t.Run("Threshold discards weak edges", func(t *testing.T) {
		source := timelineItem("a", "2020-01-01", model.CategoryGeneral, "雨", "雨。")
		target := timelineItem("b", "2021-01-01", model.CategoryGeneral, "晴れ", "晴れ。")

		assert.Empty(t, inferrer.Infer([]*model.TimelineItem{source, target}, 3, 0.5))
	})

	t.Run("Decreasing dates are skipped", func(t *testing.T) {
		source := timelineItem("a", "2021-01-01", "economy", "後", "その結果。")
		target := timelineItem("b", "2020-01-01", "economy", "前", "その結果。")

		assert.Empty(t, inferrer.Infer([]*model.TimelineItem{source, target}, 3, 0))
	})

	t.Run("Window limits pairs", func(t *testing.T) {
		var items []*model.TimelineItem
		for _, id := range []string{"a", "b", "c", "d", "e"} {
			items = append(items, timelineItem(id, "", model.CategoryGeneral, id, id))
		}

		assert.Len(t, inferrer.Infer(items, 1, 0), 4)
		assert.Len(t, inferrer.Infer(items, 2, 0), 7)
		assert.Len(t, inferrer.Infer(items, 10, 0), 10)
	})

	t.Run("Current item is scanned before the previous one", func(t *testing.T) {
		source := timelineItem("a", "", model.CategoryGeneral, "A", "その後、何かが起きた。")
		target := timelineItem("b", "", model.CategoryGeneral, "B", "同日、別のことが起きた。")

		edges := inferrer.Infer([]*model.TimelineItem{source, target}, 3, 0)

		require.Len(t, edges, 1)
		assert.Equal(t, model.RelationParallel, edges[0].RelationType, "Expected the equal score marker of the current item to win")
		assert.Equal(t, []string{"同日、別のことが起きた。"}, edges[0].EvidenceSentences)
	})

	t.Run("Higher score in previous item wins", func(t *testing.T) {
		source := timelineItem("a", "", model.CategoryGeneral, "A", "そのため、何かが起きた。")
		target := timelineItem("b", "", model.CategoryGeneral, "B", "その後、別のことが起きた。")

		edges := inferrer.Infer([]*model.TimelineItem{source, target}, 3, 0)

		require.Len(t, edges, 1)
		assert.Equal(t, model.RelationCausal, edges[0].RelationType)
		assert.Equal(t, []string{"そのため、何かが起きた。"}, edges[0].EvidenceSentences)
	})

	t.Run("Shared entities are named", func(t *testing.T) {
		source := timelineItem("a", "2020-01-01", "culture", "映画祭", "映画祭。")
		source.Locations = []string{"東京"}
		target := timelineItem("b", "2020-02-01", "culture", "展覧会", "展覧会。")
		target.Locations = []string{"大阪", "東京"}

		edges := inferrer.Infer([]*model.TimelineItem{source, target}, 3, 0)

		require.Len(t, edges, 1)
		assert.Contains(t, edges[0].Reasoning, "shared entities: 東京")
	})

	t.Run("Scores stay in range", func(t *testing.T) {
		items := generate(t, sampleHistory)
		for _, edge := range inferrer.Infer(items, 3, 0) {
			assert.GreaterOrEqual(t, edge.RelationStrength, 0.0)
			assert.LessOrEqual(t, edge.RelationStrength, 1.0)
			assert.True(t, edge.RelationType.Valid())
		}
	})
}
