package timegrapher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/siherrmann/timegrapher/core/graph"
	"github.com/siherrmann/timegrapher/core/pipeline"
	"github.com/siherrmann/timegrapher/database"
	"github.com/siherrmann/timegrapher/helper"
	"github.com/siherrmann/timegrapher/model"
	loadSql "github.com/siherrmann/timegrapher/sql"
)

var defaultPipeline = pipeline.DefaultPipeline()

// GenerateTimeline extracts the chronologically ordered events of text.
// A non-positive maxEvents uses the default of 150. Relative dates are resolved
// against referenceDate, or the current date if it is nil.
// The result is empty when no dated, meaningful sentence exists.
func GenerateTimeline(text string, maxEvents int, referenceDate *time.Time) []*model.TimelineItem {
	cfg := model.DefaultExtractionConfig()
	cfg.MaxEvents = maxEvents
	cfg.ReferenceDate = referenceDate
	return defaultPipeline.GenerateTimeline(text, cfg)
}

// BuildTimelineDAG builds the acyclic relationship graph of text.
// Edges weaker than relationThreshold are dropped; a threshold outside [0, 1]
// uses the default of 0.5. A non-positive maxEvents uses the default of 500.
func BuildTimelineDAG(text string, relationThreshold float64, maxEvents int) *model.TimelineDAG {
	cfg := model.DefaultDAGConfig()
	cfg.RelationThreshold = relationThreshold
	cfg.Extraction.MaxEvents = maxEvents
	return defaultPipeline.BuildTimelineDAG(text, cfg)
}

// TopologicalSort orders nodes so that every edge points forward.
// Nodes that are ready at the same time keep their input order.
func TopologicalSort(nodes []*model.TimelineNode, edges []*model.TimelineEdge) []*model.TimelineNode {
	return graph.TopologicalSort(nodes, edges)
}

// FindPaths returns every simple path from startID to endID with at most maxDepth edges.
// A non-positive maxDepth uses the default of 10.
func FindPaths(startID, endID string, edges []*model.TimelineEdge, maxDepth int) [][]string {
	if maxDepth <= 0 {
		maxDepth = model.DefaultDAGConfig().MaxPathDepth
	}
	return graph.FindPaths(startID, endID, edges, maxDepth)
}

// Timegrapher builds timeline DAGs and stores them in PostgreSQL
type Timegrapher struct {
	DB        *helper.Database
	Timelines *database.TimelinesDBHandler
	Nodes     *database.NodesDBHandler
	Edges     *database.EdgesDBHandler
	Pipeline  *pipeline.Pipeline
	// Logging
	log *slog.Logger
}

// NewTimegrapher creates a new Timegrapher with all handlers initialized and the default pipeline.
// The log level is read from TIMEGRAPHER_LOG_LEVEL.
func NewTimegrapher(config *helper.DatabaseConfiguration) (*Timegrapher, error) {
	// Logger
	level, ok := helper.LogLevelFromEnv()
	logger := helper.NewLogger(os.Stdout, level)
	if !ok {
		logger.Warn("Unknown log level, using INFO", slog.String("value", os.Getenv("TIMEGRAPHER_LOG_LEVEL")))
	}

	// Initialize database
	db := helper.NewDatabase("timegrapher", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database types", err)
	}

	// Timelines first, nodes and edges reference them
	timelines, err := database.NewTimelinesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create timelines handler", err)
	}

	nodes, err := database.NewNodesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create nodes handler", err)
	}

	edges, err := database.NewEdgesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create edges handler", err)
	}

	p := pipeline.DefaultPipeline()
	p.SetLogger(logger)

	return &Timegrapher{
		DB:        db,
		Timelines: timelines,
		Nodes:     nodes,
		Edges:     edges,
		Pipeline:  p,
		log:       logger,
	}, nil
}

// Close closes the database connection
func (t *Timegrapher) Close() error {
	if t.DB != nil && t.DB.Instance != nil {
		return t.DB.Instance.Close()
	}
	return nil
}

// SetPipeline sets the pipeline used to build timelines
func (t *Timegrapher) SetPipeline(p *pipeline.Pipeline) {
	t.Pipeline = p
}

// UseNERTokenizer replaces the tokenizer of the pipeline with a named entity
// recognition model. An empty modelName uses pipeline.DefaultNERModel.
func (t *Timegrapher) UseNERTokenizer(modelName string) error {
	if t.Pipeline == nil {
		return helper.NewError("use ner tokenizer", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}
	if modelName == "" {
		modelName = pipeline.DefaultNERModel
	}

	tokenizer, err := pipeline.NERTokenizer(modelName)
	if err != nil {
		return helper.NewError("create ner tokenizer", err)
	}

	t.Pipeline.SetTokenizer(tokenizer)
	return nil
}

// ProcessAndInsertDocument builds the timeline DAG of a document and stores it.
// The document title is used as DAG title unless cfg sets one.
func (t *Timegrapher) ProcessAndInsertDocument(ctx context.Context, doc *model.Document, cfg model.DAGConfig) (*model.TimelineDAG, error) {
	if t.Pipeline == nil {
		return nil, helper.NewError("process document", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}
	if doc == nil {
		return nil, helper.NewError("process document", fmt.Errorf("document is nil"))
	}
	if doc.Content == "" {
		return nil, helper.NewError("process document", fmt.Errorf("document content is empty"))
	}

	if cfg.Title == "" {
		cfg.Title = doc.Title
	}
	dag := t.Pipeline.BuildTimelineDAG(doc.Content, cfg)
	dag.Source = doc.Source
	dag.Metadata = doc.Metadata

	t.log.Info("Built timeline", slog.String("timeline_id", dag.ID), slog.String("title", dag.Title), slog.Int("nodes", len(dag.Nodes)), slog.Int("edges", len(dag.Edges)))

	err := t.InsertTimeline(ctx, dag)
	if err != nil {
		return nil, err
	}

	return dag, nil
}

// ProcessDocuments builds the timeline DAGs of docs in parallel, at most concurrency
// at a time, and stores them in the order of docs.
func (t *Timegrapher) ProcessDocuments(ctx context.Context, docs []*model.Document, cfg model.DAGConfig, concurrency int) ([]*model.TimelineDAG, error) {
	if t.Pipeline == nil {
		return nil, helper.NewError("process documents", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}

	dags, err := t.Pipeline.BuildBatch(ctx, docs, cfg, concurrency)
	if err != nil {
		return nil, helper.NewError("build timelines", err)
	}

	for i, dag := range dags {
		err := t.InsertTimeline(ctx, dag)
		if err != nil {
			return dags[:i], err
		}
	}

	t.log.Info("Processed documents", slog.Int("num_documents", len(docs)))

	return dags, nil
}

// InsertTimeline stores a DAG with its nodes and edges.
// If any part fails, the partially stored timeline is deleted again.
func (t *Timegrapher) InsertTimeline(ctx context.Context, dag *model.TimelineDAG) error {
	if err := t.Timelines.InsertTimeline(ctx, dag); err != nil {
		return helper.NewError("insert timeline", err)
	}

	err := t.insertGraph(ctx, dag)
	if err != nil {
		if _, deleteErr := t.Timelines.DeleteTimeline(context.WithoutCancel(ctx), dag.ID); deleteErr != nil {
			t.log.Error("Failed to remove partially stored timeline", slog.String("timeline_id", dag.ID), slog.String("error", deleteErr.Error()))
		}
		return err
	}

	t.log.Info("Inserted timeline", slog.String("timeline_id", dag.ID), slog.String("title", dag.Title))
	return nil
}

func (t *Timegrapher) insertGraph(ctx context.Context, dag *model.TimelineDAG) error {
	for i, node := range dag.Nodes {
		if err := t.Nodes.InsertNode(ctx, dag.ID, i, node); err != nil {
			return helper.NewError(fmt.Sprintf("insert node %d", i), err)
		}
	}
	for i, edge := range dag.Edges {
		if err := t.Edges.InsertEdge(ctx, dag.ID, i, edge); err != nil {
			return helper.NewError(fmt.Sprintf("insert edge %d", i), err)
		}
	}
	return nil
}

// SelectTimeline loads a stored DAG with its nodes and edges.
func (t *Timegrapher) SelectTimeline(ctx context.Context, id string) (*model.TimelineDAG, error) {
	dag, err := t.Timelines.SelectTimeline(ctx, id)
	if err != nil {
		return nil, helper.NewError("select timeline", err)
	}

	dag.Nodes, err = t.Nodes.SelectNodes(ctx, id)
	if err != nil {
		return nil, helper.NewError("select nodes", err)
	}
	if dag.Nodes == nil {
		dag.Nodes = []*model.TimelineNode{}
	}

	dag.Edges, err = t.Edges.SelectEdges(ctx, id)
	if err != nil {
		return nil, helper.NewError("select edges", err)
	}
	if dag.Edges == nil {
		dag.Edges = []*model.TimelineEdge{}
	}

	return dag, nil
}

// SelectTimelines lists stored timelines newest first, without nodes and edges.
// Pass the CreatedAt of the last returned timeline as before to fetch the next page.
func (t *Timegrapher) SelectTimelines(ctx context.Context, before *time.Time, limit int) ([]*model.TimelineDAG, error) {
	timelines, err := t.Timelines.SelectTimelines(ctx, before, limit)
	if err != nil {
		return nil, helper.NewError("select timelines", err)
	}
	return timelines, nil
}

// SelectEntityMentions finds stored events that name a person or location.
func (t *Timegrapher) SelectEntityMentions(ctx context.Context, name string, limit int) ([]*model.EntityMention, error) {
	mentions, err := t.Nodes.SelectNodesByEntity(ctx, name, limit)
	if err != nil {
		return nil, helper.NewError("select entity mentions", err)
	}
	return mentions, nil
}

// DeleteTimeline deletes a stored timeline with its nodes and edges.
// It reports whether the timeline existed.
func (t *Timegrapher) DeleteTimeline(ctx context.Context, id string) (bool, error) {
	deleted, err := t.Timelines.DeleteTimeline(ctx, id)
	if err != nil {
		return false, helper.NewError("delete timeline", err)
	}
	if deleted {
		t.log.Info("Deleted timeline", slog.String("timeline_id", id))
	}
	return deleted, nil
}
