package database

import (
	"context"
	"testing"

	"github.com/siherrmann/timegrapher/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEdgesNewEdgesDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Valid call NewEdgesDBHandler", func(t *testing.T) {
		_, err := NewTimelinesDBHandler(database, false)
		require.NoError(t, err)
		_, err = NewNodesDBHandler(database, false)
		require.NoError(t, err)

		edgesDbHandler, err := NewEdgesDBHandler(database, true)
		assert.NoError(t, err, "Expected NewEdgesDBHandler to not return an error")
		require.NotNil(t, edgesDbHandler, "Expected NewEdgesDBHandler to return a non-nil instance")
		require.NotNil(t, edgesDbHandler.db.Instance, "Expected NewEdgesDBHandler to have a non-nil database connection instance")
	})

	t.Run("Invalid call NewEdgesDBHandler with nil database", func(t *testing.T) {
		_, err := NewEdgesDBHandler(nil, false)
		assert.Error(t, err, "Expected error when creating EdgesDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil", "Expected specific error message for nil database connection")
	})
}

func TestEdgesInsertAndSelect(t *testing.T) {
	ctx := context.Background()
	timelinesDbHandler, nodesDbHandler := newStores(t)

	edgesDbHandler, err := NewEdgesDBHandler(timelinesDbHandler.db, true)
	require.NoError(t, err)

	dag := newTimelineHeader("エッジ")
	require.NoError(t, timelinesDbHandler.InsertTimeline(ctx, dag))
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, nodesDbHandler.InsertNode(ctx, dag.ID, i, newNode(id, "2020-05-01", nil, nil)))
	}

	gap := 31
	causal := &model.TimelineEdge{
		SourceID:          "a",
		TargetID:          "b",
		RelationType:      model.RelationCausal,
		RelationStrength:  0.854,
		TimeGapDays:       &gap,
		Reasoning:         `marker "そのため" indicates a causal relation`,
		EvidenceSentences: []string{"そのため、会議は延期された。"},
	}
	temporal := &model.TimelineEdge{
		SourceID:         "b",
		TargetID:         "c",
		RelationType:     model.RelationTemporal,
		RelationStrength: 0.6,
	}

	t.Run("Insert edges", func(t *testing.T) {
		require.NoError(t, edgesDbHandler.InsertEdge(ctx, dag.ID, 0, causal), "Expected InsertEdge to not return an error")
		require.NoError(t, edgesDbHandler.InsertEdge(ctx, dag.ID, 1, temporal))
		assert.Nil(t, temporal.TimeGapDays, "Expected undated edge to keep a nil gap")
		assert.Empty(t, temporal.EvidenceSentences)
	})

	t.Run("Select edges in stored order", func(t *testing.T) {
		edges, err := edgesDbHandler.SelectEdges(ctx, dag.ID)
		require.NoError(t, err)
		require.Len(t, edges, 2)

		assert.Equal(t, "a", edges[0].SourceID)
		assert.Equal(t, "b", edges[0].TargetID)
		assert.Equal(t, model.RelationCausal, edges[0].RelationType)
		assert.InDelta(t, 0.854, edges[0].RelationStrength, 1e-9)
		require.NotNil(t, edges[0].TimeGapDays)
		assert.Equal(t, 31, *edges[0].TimeGapDays)
		assert.Equal(t, []string{"そのため、会議は延期された。"}, edges[0].EvidenceSentences)

		assert.Equal(t, model.RelationTemporal, edges[1].RelationType)
	})

	t.Run("Select edges from and to a node", func(t *testing.T) {
		from, err := edgesDbHandler.SelectEdgesFromNode(ctx, dag.ID, "b")
		require.NoError(t, err)
		require.Len(t, from, 1)
		assert.Equal(t, "c", from[0].TargetID)

		to, err := edgesDbHandler.SelectEdgesToNode(ctx, dag.ID, "b")
		require.NoError(t, err)
		require.Len(t, to, 1)
		assert.Equal(t, "a", to[0].SourceID)
	})

	t.Run("Insert edge with unknown relation type fails", func(t *testing.T) {
		err := edgesDbHandler.InsertEdge(ctx, dag.ID, 2, &model.TimelineEdge{SourceID: "a", TargetID: "c", RelationType: "unknown"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown relation type")
	})

	t.Run("Insert edge to unknown node fails", func(t *testing.T) {
		err := edgesDbHandler.InsertEdge(ctx, dag.ID, 2, &model.TimelineEdge{SourceID: "a", TargetID: "missing", RelationType: model.RelationTemporal})
		assert.Error(t, err, "Expected foreign key violation for unknown node")
	})

	t.Run("Deleting nodes removes their edges", func(t *testing.T) {
		_, err := nodesDbHandler.DeleteNodes(ctx, dag.ID)
		require.NoError(t, err)

		edges, err := edgesDbHandler.SelectEdges(ctx, dag.ID)
		require.NoError(t, err)
		assert.Empty(t, edges)
	})

	t.Run("Delete edges of unknown timeline", func(t *testing.T) {
		deleted, err := edgesDbHandler.DeleteEdges(ctx, "missing")
		require.NoError(t, err)
		assert.Equal(t, 0, deleted)
	})
}
