package runtimecompare

import (
	"context"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/xinyinghou/python-fix-explainer/internal/tree"
)

// OpMapping records, for one index of one trace, whether it is
// aligned with an op in the other trace and whether the two pushed
// identical values.
type OpMapping struct {
	IsMapped     bool
	MappedIndex  int
	ValueMatches bool
}

// RuntimeComparison computes and stores the runtime comparison between
// two versions of a tree run against the same unit test. In the usual
// case, Source is a candidate repair (buggy or partially fixed) and
// Dest is the reference-correct solution.
type RuntimeComparison struct {
	SourceTree, DestTree *tree.Node
	TestExpr             string

	SourceTrace, DestTrace Trace

	// RunStatus/RunCompleted/TestPassed mirror the source run's
	// outcome, for easy access.
	RunStatus    Outcome
	RunCompleted bool
	TestPassed   bool

	sourceOpToNode map[string]string
	sourceIndex    map[string]*tree.Node

	// SourceRuntimeMappingToDest/DestRuntimeMappingToSource are indexed
	// by position in the respective node-id trace built from
	// SourceTrace/DestTrace.
	SourceRuntimeMappingToDest []OpMapping
	DestRuntimeMappingToSource []OpMapping

	TotalMatchSize int
	// LastMatchingValSource/LastMatchingValDest are the largest
	// (source_index, dest_index) pair for which both sides pushed the
	// same non-empty values: the deviation point.
	LastMatchingValSource int
	LastMatchingValDest   int
}

// New runs source and dest against testExpr via tracer, attributes
// each op to a tree node via mapper, and computes the LCS alignment
// between the two resulting node-id sequences.
//
// Printable is used as the "compileable" text handed to the tracer:
// it is the same canonical rendering the edit-script generator's
// post-condition check uses, so a RuntimeComparison built from a
// rewritten source tree and its reference dest tree exercises exactly
// the code the generator verified structurally matches.
func New(ctx context.Context, tracer Tracer, mapper NodeMapper, source, dest *tree.Node, testExpr string) (*RuntimeComparison, error) {
	sourceCode := string(tree.Printable(source))
	destCode := string(tree.Printable(dest))

	sourceTrace, err := tracer.RunTest(ctx, sourceCode, testExpr)
	if err != nil {
		return nil, fmt.Errorf("running test %q against source: %w", testExpr, err)
	}
	destTrace, err := tracer.RunTest(ctx, destCode, testExpr)
	if err != nil {
		return nil, fmt.Errorf("running test %q against dest: %w", testExpr, err)
	}

	sourceOpToNode := mapper.MapOpsToNodes(source)
	destOpToNode := mapper.MapOpsToNodes(dest)

	c := &RuntimeComparison{
		SourceTree: source, DestTree: dest, TestExpr: testExpr,
		SourceTrace: sourceTrace, DestTrace: destTrace,
		RunStatus:    sourceTrace.Outcome,
		RunCompleted: sourceTrace.Outcome == Completed,
		TestPassed:   sourceTrace.Passed,

		sourceOpToNode: sourceOpToNode,
		sourceIndex:    tree.IndexByID(source),
	}
	c.align(sourceOpToNode, destOpToNode)
	return c, nil
}

// runtimeNodeSequence translates a trace's op sequence into the
// corresponding sequence of tree-node ids, substituting a synthetic,
// side-specific id (prefixed defaultPrefix) for any op that isn't
// attributed to a node — this guarantees unmapped ops from the two
// sides can never spuriously match each other in the LCS.
func runtimeNodeSequence(ops []TracedOp, opToNode map[string]string, defaultPrefix string) []string {
	out := make([]string, len(ops))
	for i, op := range ops {
		if nodeID, ok := opToNode[op.OpID]; ok {
			out[i] = nodeID
		} else {
			out[i] = fmt.Sprintf("(%s, %s)", defaultPrefix, op.OpID)
		}
	}
	return out
}

// align computes the LCS between the source and dest node-trace
// sequences and fills in the per-index mapping metadata and the
// deviation-point cursor.
func (c *RuntimeComparison) align(sourceOpToNode, destOpToNode map[string]string) {
	sourceNodeTrace := runtimeNodeSequence(c.SourceTrace.Ops, sourceOpToNode, "source")
	destNodeTrace := runtimeNodeSequence(c.DestTrace.Ops, destOpToNode, "dest")

	c.SourceRuntimeMappingToDest = make([]OpMapping, len(sourceNodeTrace))
	c.DestRuntimeMappingToSource = make([]OpMapping, len(destNodeTrace))

	matcher := difflib.NewMatcher(sourceNodeTrace, destNodeTrace)
	for _, op := range matcher.GetOpCodes() {
		if op.Tag != 'e' {
			continue
		}
		c.TotalMatchSize += op.I2 - op.I1
		for off := 0; off < op.I2-op.I1; off++ {
			sIdx, dIdx := op.I1+off, op.J1+off
			c.SourceRuntimeMappingToDest[sIdx].IsMapped = true
			c.SourceRuntimeMappingToDest[sIdx].MappedIndex = dIdx
			c.DestRuntimeMappingToSource[dIdx].IsMapped = true
			c.DestRuntimeMappingToSource[dIdx].MappedIndex = sIdx

			sourceVals := c.SourceTrace.Ops[sIdx].PushedValues
			destVals := c.DestTrace.Ops[dIdx].PushedValues
			if len(sourceVals) > 0 && stringsEqual(sourceVals, destVals) {
				c.SourceRuntimeMappingToDest[sIdx].ValueMatches = true
				c.DestRuntimeMappingToSource[dIdx].ValueMatches = true
				c.LastMatchingValSource = sIdx
				c.LastMatchingValDest = dIdx
			}
		}
	}
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// LastMatchingNode returns the source-tree node whose executed op is
// the deviation point: the furthest point at which the two runs were
// still provably computing the same value.
func (c *RuntimeComparison) LastMatchingNode() *tree.Node {
	if len(c.SourceTrace.Ops) == 0 {
		return nil
	}
	op := c.SourceTrace.Ops[c.LastMatchingValSource]
	nodeID, ok := c.sourceOpToNode[op.OpID]
	if !ok {
		return nil
	}
	return c.sourceIndex[nodeID]
}

// FirstWrongValue scans forward from the deviation point for the
// first op that is aligned with a dest op but pushed a different
// value, i.e. the first provable divergence after the last point the
// two runs agreed. ok is false if no such op exists.
func (c *RuntimeComparison) FirstWrongValue() (index int, sourceOp, destOp TracedOp, ok bool) {
	for i := c.LastMatchingValSource; i < len(c.SourceTrace.Ops); i++ {
		mapping := c.SourceRuntimeMappingToDest[i]
		if !mapping.IsMapped {
			continue
		}
		sOp := c.SourceTrace.Ops[i]
		dOp := c.DestTrace.Ops[mapping.MappedIndex]
		if !stringsEqual(sOp.PushedValues, dOp.PushedValues) {
			return i, sOp, dOp, true
		}
	}
	return 0, TracedOp{}, TracedOp{}, false
}

func (c *RuntimeComparison) String() string {
	status := "did not finish"
	if c.RunCompleted {
		status = "finished"
	} else {
		status = fmt.Sprintf("did not finish (%s)", c.RunStatus)
	}
	passed := "did not pass"
	if c.TestPassed {
		passed = "passed"
	}
	return fmt.Sprintf(
		"Unit test: %s\ntest %s\ntest %s\nDeviation point (after this op, calculations in the two versions diverge): %d out of %d\n",
		c.TestExpr, status, passed, c.LastMatchingValDest, len(c.DestTrace.Ops),
	)
}
