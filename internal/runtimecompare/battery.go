package runtimecompare

import (
	"context"

	"github.com/creachadair/taskgroup"
	"github.com/xinyinghou/python-fix-explainer/internal/tree"
)

// BatteryCase is one (source, dest, test) triple to evaluate as part
// of a battery run — typically the same candidate repair checked
// against every unit test in a problem's test suite.
type BatteryCase struct {
	Source, Dest *tree.Node
	TestExpr     string
}

// RunBattery evaluates every case in cases concurrently and returns
// one RuntimeComparison per case, in the same order as cases.
//
// Each individual RuntimeComparison is single-threaded and
// synchronous, but running a candidate tree against N independent
// unit tests is embarrassingly parallel: RunBattery bounds the
// concurrency with taskgroup.Group the same way a batch validation
// tool would bound concurrent network calls, since Tracer
// implementations are typically backed by a sandboxed subprocess or
// remote execution service.
//
// concurrency caps the number of cases evaluated at once; a value <=
// 0 means "no explicit cap" (bounded only by len(cases)).
func RunBattery(ctx context.Context, tracer Tracer, mapper NodeMapper, cases []BatteryCase, concurrency int) ([]*RuntimeComparison, error) {
	results := make([]*RuntimeComparison, len(cases))
	if concurrency <= 0 {
		concurrency = len(cases)
	}
	if concurrency == 0 {
		return results, nil
	}

	g, start := taskgroup.New(nil).Limit(concurrency)
	for i, cs := range cases {
		i, cs := i, cs
		start(func() error {
			cmp, err := New(ctx, tracer, mapper, cs.Source, cs.Dest, cs.TestExpr)
			if err != nil {
				return err
			}
			results[i] = cmp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
