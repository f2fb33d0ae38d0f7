// Package pipeline sequences the full source-to-destination diff flow:
// given a way to parse source text into trees and a way to compute a
// node correspondence between two trees, run
// builder -> oracle -> generator -> (optionally) apply in one call,
// for callers that want the whole flow without wiring the stages by
// hand.
//
// Parsing and mapping remain external collaborators: TreeBuilder and
// MappingOracle are interfaces supplied by the caller, not
// implementations. This package adds no new tree-transform logic of
// its own; it only sequences editscript.Generate and, optionally,
// editscript.Apply.
package pipeline

import (
	"fmt"

	"github.com/xinyinghou/python-fix-explainer/internal/editscript"
	"github.com/xinyinghou/python-fix-explainer/internal/tree"
)

// TreeBuilder parses source text into the tree model of internal/tree,
// assigning fresh node ids. A corresponded-tree-pair builder call
// preserves ids across the two trees it builds for nodes that
// correspond.
type TreeBuilder interface {
	Build(sourceText string) (*tree.Node, error)
}

// MappingOracle computes the node correspondence between two trees.
// Correctness of the returned mapping is Generate's precondition.
type MappingOracle interface {
	Map(source, dest *tree.Node) (*editscript.Mapping, error)
}

// Result is the outcome of running the full pipeline once: the parsed
// trees, the computed mapping, and the generated edit script.
type Result struct {
	Source, Dest *tree.Node
	Mapping      *editscript.Mapping
	Script       editscript.Result
	// Applied is set only when RunAndApply is used: the tree obtained
	// by replaying Script.Script against a fresh clone of Source, which
	// must structurally equal Dest.
	Applied *tree.Node
}

// Run parses buggyText and referenceText with builder, computes their
// correspondence with oracle, and generates the edit script that
// transforms the buggy tree into the reference tree.
func Run(builder TreeBuilder, oracle MappingOracle, buggyText, referenceText string) (Result, error) {
	source, err := builder.Build(buggyText)
	if err != nil {
		return Result{}, fmt.Errorf("parsing buggy source: %w", err)
	}
	dest, err := builder.Build(referenceText)
	if err != nil {
		return Result{}, fmt.Errorf("parsing reference source: %w", err)
	}

	mapping, err := oracle.Map(source, dest)
	if err != nil {
		return Result{}, fmt.Errorf("computing node correspondence: %w", err)
	}

	script, err := editscript.Generate(source, dest, mapping)
	if err != nil {
		return Result{}, fmt.Errorf("generating edit script: %w", err)
	}

	return Result{Source: source, Dest: dest, Mapping: mapping, Script: script}, nil
}

// RunAndApply runs Run and additionally replays the generated script
// against a fresh clone of the buggy tree, populating Result.Applied.
// It does not simplify the script against a unit-test oracle first;
// that pass is out of scope for this package.
func RunAndApply(builder TreeBuilder, oracle MappingOracle, buggyText, referenceText string) (Result, error) {
	result, err := Run(builder, oracle, buggyText, referenceText)
	if err != nil {
		return Result{}, err
	}
	applied, err := editscript.Apply(result.Source, result.Script.Script, result.Script.Donors)
	if err != nil {
		return Result{}, fmt.Errorf("applying edit script: %w", err)
	}
	result.Applied = applied
	return result, nil
}
