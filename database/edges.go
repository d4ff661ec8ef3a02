package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
	"github.com/siherrmann/timegrapher/helper"
	"github.com/siherrmann/timegrapher/model"
	loadSql "github.com/siherrmann/timegrapher/sql"
)

// EdgesDBHandlerFunctions defines the interface for timeline edge database operations.
type EdgesDBHandlerFunctions interface {
	InsertEdge(ctx context.Context, timelineRID string, position int, edge *model.TimelineEdge) error
	SelectEdges(ctx context.Context, timelineRID string) ([]*model.TimelineEdge, error)
	SelectEdgesFromNode(ctx context.Context, timelineRID string, sourceID string) ([]*model.TimelineEdge, error)
	SelectEdgesToNode(ctx context.Context, timelineRID string, targetID string) ([]*model.TimelineEdge, error)
	DeleteEdges(ctx context.Context, timelineRID string) (int, error)
}

// EdgesDBHandler handles timeline edge database operations
type EdgesDBHandler struct {
	db *helper.Database
}

// NewEdgesDBHandler creates a new timeline edges database handler.
// Edges reference their source and target nodes, so the nodes table must exist before.
// If force is true, it will reload the SQL functions even if they already exist.
func NewEdgesDBHandler(db *helper.Database, force bool) (*EdgesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	edgesDbHandler := &EdgesDBHandler{
		db: db,
	}

	err := loadSql.LoadEdgesSql(edgesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load edges sql", err)
	}

	err = edgesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized EdgesDBHandler")

	return edgesDbHandler, nil
}

// CreateTable creates the 'timeline_edges' table in the database.
// If the table already exists, it does not create it again.
func (h *EdgesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_timeline_edges();`)
	if err != nil {
		log.Panicf("error initializing timeline_edges table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table timeline_edges")

	return nil
}

// InsertEdge inserts edge at position of the timeline with timelineRID.
// Both endpoints must already be stored as nodes of that timeline.
func (h *EdgesDBHandler) InsertEdge(ctx context.Context, timelineRID string, position int, edge *model.TimelineEdge) error {
	if !edge.RelationType.Valid() {
		return helper.NewError("validate edge", fmt.Errorf("unknown relation type %q", edge.RelationType))
	}

	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_timeline_edge($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		timelineRID,
		position,
		edge.SourceID,
		edge.TargetID,
		edge.RelationType,
		edge.RelationStrength,
		edge.TimeGapDays,
		edge.Reasoning,
		pq.Array(edge.EvidenceSentences),
	)

	err := scanEdge(row, edge)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectEdges retrieves the edges of a timeline in their stored order.
func (h *EdgesDBHandler) SelectEdges(ctx context.Context, timelineRID string) ([]*model.TimelineEdge, error) {
	return h.selectEdges(ctx, `SELECT * FROM select_timeline_edges($1)`, timelineRID)
}

// SelectEdgesFromNode retrieves the outgoing edges of a node.
func (h *EdgesDBHandler) SelectEdgesFromNode(ctx context.Context, timelineRID string, sourceID string) ([]*model.TimelineEdge, error) {
	return h.selectEdges(ctx, `SELECT * FROM select_timeline_edges_from_node($1, $2)`, timelineRID, sourceID)
}

// SelectEdgesToNode retrieves the incoming edges of a node.
func (h *EdgesDBHandler) SelectEdgesToNode(ctx context.Context, timelineRID string, targetID string) ([]*model.TimelineEdge, error) {
	return h.selectEdges(ctx, `SELECT * FROM select_timeline_edges_to_node($1, $2)`, timelineRID, targetID)
}

// DeleteEdges deletes all edges of a timeline and returns how many were removed.
func (h *EdgesDBHandler) DeleteEdges(ctx context.Context, timelineRID string) (int, error) {
	var deleted int
	err := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT delete_timeline_edges($1)`,
		timelineRID,
	).Scan(&deleted)
	if err != nil {
		return 0, helper.NewError("exec", err)
	}
	return deleted, nil
}

func (h *EdgesDBHandler) selectEdges(ctx context.Context, query string, args ...any) ([]*model.TimelineEdge, error) {
	rows, err := h.db.Instance.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var edges []*model.TimelineEdge
	for rows.Next() {
		edge := &model.TimelineEdge{}
		err := scanEdge(rows, edge)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		edges = append(edges, edge)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return edges, nil
}

func scanEdge(row rowScanner, edge *model.TimelineEdge) error {
	return row.Scan(
		&edge.SourceID,
		&edge.TargetID,
		&edge.RelationType,
		&edge.RelationStrength,
		&edge.TimeGapDays,
		&edge.Reasoning,
		pq.Array(&edge.EvidenceSentences),
	)
}
