// Package form is the presentation boundary: it collects one raw record from
// an operator and shows the outcome. The prediction core does not import it.
package form

import (
	"context"

	"studentscore/ml"
)

// Collector gathers one record per call. It returns io.EOF when the operator
// has nothing more to submit.
type Collector interface {
	CollectRawRecord(ctx context.Context) (ml.RawRecord, error)
}

// Presenter shows either a result or the failure of one submission.
type Presenter interface {
	PresentResult(result ml.Result, err error)
}

// Run executes a single submission. Collection errors are returned without
// being presented; prediction errors are presented and then returned.
func Run(ctx context.Context, c Collector, p Presenter, predictor *ml.Predictor) (ml.Result, error) {
	record, err := c.CollectRawRecord(ctx)
	if err != nil {
		return ml.Result{}, err
	}
	result, err := predictor.Predict(ctx, record)
	p.PresentResult(result, err)
	return result, err
}
