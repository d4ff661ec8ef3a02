package timegrapher

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/siherrmann/timegrapher/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const history = "2019年4月1日、新しい研究所が京都市に設立された。" +
	"令和2年3月15日、研究所で大規模な実験が行われた。" +
	"そのため、2020年6月1日には研究成果が国際会議で発表された。"

func TestGenerateTimeline(t *testing.T) {
	t.Run("Conference sentence", func(t *testing.T) {
		items := GenerateTimeline("2020年5月1日、東京で国際会議が開催された。", 0, nil)
		require.Len(t, items, 1)
		require.NotNil(t, items[0].DateISO)
		assert.Equal(t, "2020-05-01", *items[0].DateISO)
		assert.Contains(t, items[0].Locations, "東京")
	})

	t.Run("Era and kanji dates", func(t *testing.T) {
		items := GenerateTimeline("令和3年4月1日、新制度が施行された。二千十四年四月一日、新しい駅が開業した。", 0, nil)
		require.Len(t, items, 2)
		assert.Equal(t, "2014-04-01", *items[0].DateISO)
		assert.Equal(t, "2021-04-01", *items[1].DateISO)
		assert.Empty(t, items[0].People, "Expected kanji date words to stay out of people")
		assert.Empty(t, items[1].People, "Expected the era name to stay out of people")
	})

	t.Run("Era date with a new law", func(t *testing.T) {
		items := GenerateTimeline("令和3年4月1日、新しい法律が施行された。", 0, nil)
		require.Len(t, items, 1)
		assert.Equal(t, "2021-04-01", *items[0].DateISO)
		assert.Empty(t, items[0].People)
	})

	t.Run("Relative date uses the reference date", func(t *testing.T) {
		reference := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		items := GenerateTimeline("3年前、新しい工場が稼働を開始した。", 0, &reference)
		require.Len(t, items, 1)
		require.NotNil(t, items[0].DateISO)
		assert.Equal(t, "2021", (*items[0].DateISO)[:4])
	})

	t.Run("Max events truncates", func(t *testing.T) {
		items := GenerateTimeline(history, 2, nil)
		assert.Len(t, items, 2)
	})

	t.Run("Empty input", func(t *testing.T) {
		assert.Empty(t, GenerateTimeline("", 0, nil))
		assert.Empty(t, GenerateTimeline("日付のない文章です。", 0, nil))
	})
}

func TestBuildTimelineDAG(t *testing.T) {
	t.Run("Build from text", func(t *testing.T) {
		dag := BuildTimelineDAG(history, 0.5, 0)
		require.Len(t, dag.Nodes, 3)
		assert.Equal(t, model.DAGVersion, dag.Version)
		assert.Equal(t, len(dag.Nodes), dag.Stats.NodeCount)
		assert.Equal(t, len(dag.Edges), dag.Stats.EdgeCount)
		assert.Equal(t, 0, dag.Stats.CyclicCount)
		assert.NotEmpty(t, dag.ID)
	})

	t.Run("Acyclic for every threshold", func(t *testing.T) {
		for _, threshold := range []float64{0, 0.25, 0.5, 0.75, 1} {
			dag := BuildTimelineDAG(history, threshold, 0)
			sorted := TopologicalSort(dag.Nodes, dag.Edges)
			assert.Len(t, sorted, len(dag.Nodes), "Expected every node in the topological order for threshold %v", threshold)
		}
	})

	t.Run("Serializes with snake case fields", func(t *testing.T) {
		dag := BuildTimelineDAG(history, 0, 0)
		b, err := json.Marshal(dag)
		require.NoError(t, err)

		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(b, &decoded))
		for _, key := range []string{"id", "title", "text", "nodes", "edges", "stats", "generated_at", "version"} {
			assert.Contains(t, decoded, key)
		}
		stats := decoded["stats"].(map[string]interface{})
		for _, key := range []string{"node_count", "edge_count", "avg_degree", "max_path_length", "cyclic_count"} {
			assert.Contains(t, stats, key)
		}
	})

	t.Run("Empty text builds an empty graph", func(t *testing.T) {
		dag := BuildTimelineDAG("", 0.5, 0)
		assert.Empty(t, dag.Nodes)
		assert.NotNil(t, dag.Edges)
		assert.Empty(t, dag.Edges)
	})
}

func TestFindPaths(t *testing.T) {
	edges := []*model.TimelineEdge{
		{SourceID: "a", TargetID: "b", RelationType: model.RelationTemporal, RelationStrength: 0.6},
		{SourceID: "b", TargetID: "c", RelationType: model.RelationTemporal, RelationStrength: 0.6},
		{SourceID: "a", TargetID: "c", RelationType: model.RelationCausal, RelationStrength: 0.9},
	}

	t.Run("Direct edge is a path", func(t *testing.T) {
		paths := FindPaths("a", "b", edges, 0)
		assert.Contains(t, paths, []string{"a", "b"})
	})

	t.Run("All simple paths", func(t *testing.T) {
		paths := FindPaths("a", "c", edges, 0)
		assert.ElementsMatch(t, [][]string{{"a", "b", "c"}, {"a", "c"}}, paths)
	})

	t.Run("Depth limits paths", func(t *testing.T) {
		paths := FindPaths("a", "c", edges, 1)
		assert.Equal(t, [][]string{{"a", "c"}}, paths)
	})

	t.Run("Topological order", func(t *testing.T) {
		nodes := []*model.TimelineNode{
			{TimelineItem: model.TimelineItem{ID: "c"}},
			{TimelineItem: model.TimelineItem{ID: "b"}},
			{TimelineItem: model.TimelineItem{ID: "a"}},
		}
		sorted := TopologicalSort(nodes, edges)
		require.Len(t, sorted, 3)
		assert.Equal(t, "a", sorted[0].ID)
		assert.Equal(t, "b", sorted[1].ID)
		assert.Equal(t, "c", sorted[2].ID)
	})
}
