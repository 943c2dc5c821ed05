// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package builder

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/featureset-utils/pkg/types"
)

// Outcome is the result of one run in a batch.
type Outcome struct {
	Params types.UploadParams
	Result types.UploadResult
	Err    error
}

// BatchResult holds the outcome of every run, in input order.
type BatchResult struct {
	Outcomes []Outcome
}

// Failed returns the number of runs that returned an error.
func (r BatchResult) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// HasFailures reports whether any run failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed() > 0
}

// UploadBatch runs independent uploads concurrently, at most the configured
// number of workers at a time. A failing run does not stop the others.
func (b *Builder) UploadBatch(ctx context.Context, runs []types.UploadParams) BatchResult {
	result := BatchResult{Outcomes: make([]Outcome, len(runs))}

	var g errgroup.Group
	g.SetLimit(b.cfg.Workers)
	for i, params := range runs {
		i, params := i, params
		g.Go(func() error {
			res, err := b.UploadFeatureSetFromDiffExpr(ctx, params)
			if err != nil {
				b.log.Warn("run failed",
					zap.String("diff_expression_ref", params.DiffExpressionRef),
					zap.Error(err))
			}
			result.Outcomes[i] = Outcome{Params: params, Result: res, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	b.log.Info("batch finished",
		zap.Int("total", len(runs)),
		zap.Int("failed", result.Failed()))
	return result
}
