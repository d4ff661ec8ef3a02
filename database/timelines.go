package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/siherrmann/timegrapher/helper"
	"github.com/siherrmann/timegrapher/model"
	loadSql "github.com/siherrmann/timegrapher/sql"
)

// TimelinesDBHandlerFunctions defines the interface for Timelines database operations.
type TimelinesDBHandlerFunctions interface {
	InsertTimeline(ctx context.Context, dag *model.TimelineDAG) error
	SelectTimeline(ctx context.Context, rid string) (*model.TimelineDAG, error)
	SelectTimelines(ctx context.Context, lastCreatedAt *time.Time, limit int) ([]*model.TimelineDAG, error)
	DeleteTimeline(ctx context.Context, rid string) (bool, error)
}

// TimelinesDBHandler stores the header of a timeline DAG: title, text, stats and metadata.
// Nodes and edges live in their own tables and are deleted together with their timeline.
type TimelinesDBHandler struct {
	db *helper.Database
}

// NewTimelinesDBHandler creates a new timelines database handler.
// It initializes the database connection and loads timeline-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewTimelinesDBHandler(db *helper.Database, force bool) (*TimelinesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	timelinesDbHandler := &TimelinesDBHandler{
		db: db,
	}

	err := loadSql.LoadTimelinesSql(timelinesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load timelines sql", err)
	}

	err = timelinesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized TimelinesDBHandler")

	return timelinesDbHandler, nil
}

// CreateTable creates the 'timelines' table in the database.
// If the table already exists, it does not create it again.
func (h *TimelinesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_timelines();`)
	if err != nil {
		log.Panicf("error initializing timelines table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table timelines")

	return nil
}

// InsertTimeline inserts the header of dag. CreatedAt is set from the stored row.
func (h *TimelinesDBHandler) InsertTimeline(ctx context.Context, dag *model.TimelineDAG) error {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM insert_timeline($1, $2, $3, $4, $5, $6, $7, $8)`,
		dag.ID,
		dag.Title,
		dag.Source,
		dag.Text,
		dag.Stats,
		dag.Version,
		dag.Metadata,
		dag.GeneratedAt,
	)

	err := row.Scan(
		&dag.ID,
		&dag.Title,
		&dag.Source,
		&dag.Text,
		&dag.Stats,
		&dag.Version,
		&dag.Metadata,
		&dag.GeneratedAt,
		&dag.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectTimeline retrieves a timeline header by RID. Nodes and edges are not loaded.
func (h *TimelinesDBHandler) SelectTimeline(ctx context.Context, rid string) (*model.TimelineDAG, error) {
	dag := &model.TimelineDAG{}
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_timeline($1)`,
		rid,
	)

	err := row.Scan(
		&dag.ID,
		&dag.Title,
		&dag.Source,
		&dag.Text,
		&dag.Stats,
		&dag.Version,
		&dag.Metadata,
		&dag.GeneratedAt,
		&dag.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return dag, nil
}

// SelectTimelines retrieves timeline headers, newest first.
// Pass the CreatedAt of the last returned timeline to fetch the next page.
func (h *TimelinesDBHandler) SelectTimelines(ctx context.Context, lastCreatedAt *time.Time, limit int) ([]*model.TimelineDAG, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_timelines($1, $2)`,
		lastCreatedAt,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var timelines []*model.TimelineDAG
	for rows.Next() {
		dag := &model.TimelineDAG{}
		err := rows.Scan(
			&dag.ID,
			&dag.Title,
			&dag.Source,
			&dag.Text,
			&dag.Stats,
			&dag.Version,
			&dag.Metadata,
			&dag.GeneratedAt,
			&dag.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		timelines = append(timelines, dag)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return timelines, nil
}

// DeleteTimeline deletes a timeline with its nodes and edges.
// It reports whether a timeline with that RID existed.
func (h *TimelinesDBHandler) DeleteTimeline(ctx context.Context, rid string) (bool, error) {
	var deleted int
	err := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT delete_timeline($1)`,
		rid,
	).Scan(&deleted)
	if err != nil {
		return false, helper.NewError("exec", err)
	}
	return deleted > 0, nil
}
