package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"frontmatter-transform/internal/schema"
)

// Batch is the outcome of RunBatch.
type Batch struct {
	// RunID identifies the run in logs.
	RunID string
	Job   *Job
	// Results has one entry per input document, in input order.
	Results []DocumentResult
}

// Failed returns the results that carry an error.
func (b *Batch) Failed() []DocumentResult {
	var out []DocumentResult

	for _, r := range b.Results {
		if r.Err != nil {
			out = append(out, r)
		}
	}

	return out
}

// Data returns the transformed data of the successful documents in input
// order.
func (b *Batch) Data() []any {
	out := make([]any, 0, len(b.Results))

	for _, r := range b.Results {
		if r.Err == nil {
			out = append(out, r.Data)
		}
	}

	return out
}

// RunBatch processes docs against root. Without ContinueOnError the first
// failure cancels the batch and is returned. Cancelling ctx stops scheduling
// new documents.
func (p *Processor) RunBatch(ctx context.Context, root *schema.Node, docs []Document) (*Batch, error) {
	job, err := p.Prepare(root)
	if err != nil {
		return nil, err
	}

	b := &Batch{
		RunID:   uuid.NewString(),
		Job:     job,
		Results: make([]DocumentResult, len(docs)),
	}

	log := p.logger.With("run_id", b.RunID)
	start := time.Now()

	log.Info("batch started",
		"documents", len(docs),
		"mode", p.opts.Mode.String(),
		"concurrency", p.opts.Concurrency,
	)

	switch p.opts.Mode {
	case ModeSequential:
		err = p.runSequential(ctx, job, docs, b.Results)
	default:
		err = p.runParallel(ctx, job, docs, b.Results)
	}

	if err != nil {
		log.Error("batch aborted", "error", err)
		return nil, err
	}

	failed := b.Failed()
	for _, r := range failed {
		log.Warn("document failed", "source", r.Source, "error", r.Err)
	}

	log.Info("batch finished",
		"documents", len(docs),
		"failed", len(failed),
		"elapsed", time.Since(start),
	)

	return b, nil
}

func (p *Processor) runSequential(ctx context.Context, job *Job, docs []Document, results []DocumentResult) error {
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}

		results[i] = p.ProcessDocument(ctx, job, doc)

		if err := p.check(results[i]); err != nil {
			return err
		}
	}

	return nil
}

func (p *Processor) runParallel(ctx context.Context, job *Job, docs []Document, results []DocumentResult) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)

	for i, doc := range docs {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			results[i] = p.ProcessDocument(gctx, job, doc)
			return p.check(results[i])
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	return ctx.Err()
}

func (p *Processor) check(r DocumentResult) error {
	if r.Err == nil || p.opts.ContinueOnError {
		return nil
	}

	return fmt.Errorf("%s: %w", r.Source, r.Err)
}
