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

// NodesDBHandlerFunctions defines the interface for timeline node database operations.
type NodesDBHandlerFunctions interface {
	InsertNode(ctx context.Context, timelineRID string, position int, node *model.TimelineNode) error
	SelectNodes(ctx context.Context, timelineRID string) ([]*model.TimelineNode, error)
	SelectNodesByEntity(ctx context.Context, name string, limit int) ([]*model.EntityMention, error)
	DeleteNodes(ctx context.Context, timelineRID string) (int, error)
}

// NodesDBHandler handles timeline node database operations
type NodesDBHandler struct {
	db *helper.Database
}

// NewNodesDBHandler creates a new timeline nodes database handler.
// The timelines table must exist before, nodes reference it.
// If force is true, it will reload the SQL functions even if they already exist.
func NewNodesDBHandler(db *helper.Database, force bool) (*NodesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	nodesDbHandler := &NodesDBHandler{
		db: db,
	}

	err := loadSql.LoadNodesSql(nodesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load nodes sql", err)
	}

	err = nodesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized NodesDBHandler")

	return nodesDbHandler, nil
}

// CreateTable creates the 'timeline_nodes' table with its entity indexes.
func (h *NodesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_timeline_nodes();`)
	if err != nil {
		log.Panicf("error initializing timeline_nodes table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table timeline_nodes")

	return nil
}

// InsertNode inserts node at position of the timeline with timelineRID.
func (h *NodesDBHandler) InsertNode(ctx context.Context, timelineRID string, position int, node *model.TimelineNode) error {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_timeline_node($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		timelineRID,
		node.ID,
		position,
		node.DateText,
		node.DateISO,
		node.Title,
		node.Description,
		pq.Array(node.People),
		pq.Array(node.Locations),
		node.Category,
		node.Importance,
		node.Confidence,
		node.NodeType,
		node.TemporalPrecision,
		node.IsParent,
	)

	err := scanNode(row, node)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectNodes retrieves the nodes of a timeline in their stored order.
func (h *NodesDBHandler) SelectNodes(ctx context.Context, timelineRID string) ([]*model.TimelineNode, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_timeline_nodes($1)`,
		timelineRID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var nodes []*model.TimelineNode
	for rows.Next() {
		node := &model.TimelineNode{}
		err := scanNode(rows, node)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		nodes = append(nodes, node)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return nodes, nil
}

// SelectNodesByEntity retrieves nodes across all timelines that list name as a person or location.
// Results are ordered by importance.
func (h *NodesDBHandler) SelectNodesByEntity(ctx context.Context, name string, limit int) ([]*model.EntityMention, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_timeline_nodes_by_entity($1, $2)`,
		name,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var mentions []*model.EntityMention
	for rows.Next() {
		mention := &model.EntityMention{Node: &model.TimelineNode{}}
		err := scanNode(rows, mention.Node, &mention.TimelineID)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		mentions = append(mentions, mention)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return mentions, nil
}

// DeleteNodes deletes all nodes of a timeline and returns how many were removed.
// Edges between them are removed with them.
func (h *NodesDBHandler) DeleteNodes(ctx context.Context, timelineRID string) (int, error) {
	var deleted int
	err := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT delete_timeline_nodes($1)`,
		timelineRID,
	).Scan(&deleted)
	if err != nil {
		return 0, helper.NewError("exec", err)
	}
	return deleted, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanNode scans one node row. Leading columns, like the timeline RID, go to prefix.
func scanNode(row rowScanner, node *model.TimelineNode, prefix ...any) error {
	dest := append(prefix,
		&node.ID,
		&node.DateText,
		&node.DateISO,
		&node.Title,
		&node.Description,
		pq.Array(&node.People),
		pq.Array(&node.Locations),
		&node.Category,
		&node.Importance,
		&node.Confidence,
		&node.NodeType,
		&node.TemporalPrecision,
		&node.IsParent,
	)
	return row.Scan(dest...)
}
