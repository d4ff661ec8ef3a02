package pipeline

import (
	"context"
	"fmt"

	"github.com/siherrmann/timegrapher/model"
	"golang.org/x/sync/errgroup"
)

// BuildBatch builds one DAG per document, at most concurrency at a time.
// A non-positive concurrency means no limit. Documents without an explicit
// title in cfg use their own title. The result keeps the order of docs.
func (p *Pipeline) BuildBatch(ctx context.Context, docs []*model.Document, cfg model.DAGConfig, concurrency int) ([]*model.TimelineDAG, error) {
	for i, doc := range docs {
		if doc == nil {
			return nil, fmt.Errorf("document %d is nil", i)
		}
	}
	dags := make([]*model.TimelineDAG, len(docs))

	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("failed to build document %q: %w", doc.Title, err)
			}

			docCfg := cfg
			if docCfg.Title == "" {
				docCfg.Title = doc.Title
			}
			dag := p.BuildTimelineDAG(doc.Content, docCfg)
			dag.Source = doc.Source
			dag.Metadata = doc.Metadata
			dags[i] = dag
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dags, nil
}
