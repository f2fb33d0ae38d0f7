package editscript

import (
	"bytes"
	"fmt"

	"github.com/creachadair/mds/mdiff"
	"github.com/xinyinghou/python-fix-explainer/internal/tree"
)

// ForbiddenEditError reports an attempt to insert or delete a
// non-leaf node during a phase that forbids it. Only MOVE may
// legitimately relocate a subtree: internally it is implemented as
// delete+insert with this guard waived.
type ForbiddenEditError struct {
	Action  Action
	NodeID  string
	NumKids int
}

func (e ForbiddenEditError) Error() string {
	return fmt.Sprintf("cannot %s node %s: it has %d children (only MOVE may touch non-leaves)",
		e.Action, e.NodeID, e.NumKids)
}

// MappingInconsistencyError reports that an edit refers to a node id
// that cannot be found. Apply returns it when an edit's subject,
// parent or donor is missing from the working tree or the donor set.
// The generator does not return it: during generation a missing
// neighbour is handled locally (walking outward for a valid neighbour,
// or falling back to a deterministic endpoint).
type MappingInconsistencyError struct {
	DestNodeID string
	Reason     string
}

func (e MappingInconsistencyError) Error() string {
	return fmt.Sprintf("mapping inconsistency resolving position of dest node %s: %s", e.DestNodeID, e.Reason)
}

// PostConditionError reports that, after the full edit script was
// rehearsed against the working source tree, the result did not match
// the destination tree. This is fatal and not locally recoverable: it
// means either the mapping or the generator itself is wrong.
type PostConditionError struct {
	Got, Want []byte
}

func (e PostConditionError) Error() string {
	diff := mdiff.New(splitLines(e.Got), splitLines(e.Want)).AddContext(3)
	var buf bytes.Buffer
	mdiff.FormatUnified(&buf, diff, &mdiff.FileInfo{
		Left:  "rewritten source",
		Right: "destination",
	})
	return fmt.Sprintf("source tree does not match destination after applying the edit script:\n%s", buf.String())
}

func splitLines(bs []byte) []string {
	var out []string
	start := 0
	for i, b := range bs {
		if b == '\n' {
			out = append(out, string(bs[start:i]))
			start = i + 1
		}
	}
	if start < len(bs) {
		out = append(out, string(bs[start:]))
	}
	return out
}

// checkPostCondition verifies that the rewritten working tree's
// printable form equals dest's. It does not dump anything itself;
// callers decide whether/where to persist the diagnostic
// (cmd/patchtrace's "generate" command prints it as part of its error).
func checkPostCondition(workingSource, dest *tree.Node) error {
	got, want := tree.Printable(workingSource), tree.Printable(dest)
	if bytes.Equal(got, want) {
		return nil
	}
	return PostConditionError{Got: got, Want: want}
}
