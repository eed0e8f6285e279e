package typegen

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/vektah/gqlparser/v2/ast"
	"golang.org/x/sync/errgroup"
)

// Job is one independent generation run.
type Job struct {
	Name   string
	Schema *ast.Schema
	Config Config
	// Operations switches the job to operation-scoped generation. When nil
	// the whole schema is generated.
	Operations []*ast.QueryDocument
}

// Run executes a single job in its own Context.
func (j Job) Run(logger logr.Logger) (*Result, error) {
	ctx, err := NewContext(j.Schema, j.Config, WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if j.Operations == nil {
		return GenerateSchema(ctx)
	}
	for _, doc := range j.Operations {
		if _, err := GenerateDocument(ctx, doc); err != nil {
			return nil, err
		}
	}
	return ctx.Result(), nil
}

// RunBatch runs jobs in parallel, at most limit at a time (no limit when
// limit <= 0). Results are returned in job order. The first failure cancels
// jobs that have not started yet.
func RunBatch(ctx context.Context, jobs []Job, limit int) ([]*Result, error) {
	logger := logr.FromContextOrDiscard(ctx)
	results := make([]*Result, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := job.Run(logger.WithValues("job", job.Name))
			if err != nil {
				return fmt.Errorf("job %s: %w", job.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
