// Package runtimecompare implements a runtime-op aligner and
// comparison ordering: given two executed op traces, each attributed
// to a tree node, it produces a longest-common-subsequence alignment
// and a "last matching value" cursor used to rank repair candidates
// against a reference solution.
//
// The tracer that produces traces, and the bytecode-to-node mapper
// that attributes ops to nodes, are external collaborators; this
// package only defines the interfaces it needs from them and does the
// comparison arithmetic.
package runtimecompare

import (
	"context"

	"github.com/xinyinghou/python-fix-explainer/internal/tree"
)

// Outcome is the terminal status of one test run.
type Outcome string

const (
	Completed Outcome = "completed"
	Raised    Outcome = "raised"
	TimedOut  Outcome = "timed-out"
)

// TracedOp is one bytecode-level operation recorded by the tracer,
// together with whatever values it pushed onto the evaluation stack.
// PushedValues is compared by value equality: two ops "match" when
// both pushed a non-empty, identical value list.
type TracedOp struct {
	OpID         string
	PushedValues []string
}

// Trace is the result of running one tree against one unit test.
type Trace struct {
	Ops     []TracedOp
	Outcome Outcome
	// Passed is the unit test's boolean verdict, meaningful only when
	// Outcome == Completed.
	Passed bool
}

// Tracer executes a piece of code against a test expression and
// returns its op trace. Implementations wrap whatever sandboxed
// execution environment is available to the caller; this package
// never executes code itself.
type Tracer interface {
	RunTest(ctx context.Context, code, testExpr string) (Trace, error)
}

// NodeMapper attributes each op id produced while executing root to
// the id of the node that produced it. Ops with no corresponding node
// are simply absent from the returned map.
type NodeMapper interface {
	MapOpsToNodes(root *tree.Node) map[string]string
}
