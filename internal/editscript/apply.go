package editscript

import "github.com/xinyinghou/python-fix-explainer/internal/tree"

// Apply replays script against a private clone of source, using
// donors to materialize UPDATE's replacement content and INSERT's new
// nodes, and returns the resulting tree. It exists so a caller (or a
// test) can independently check that applying the generated script to
// source always reproduces dest exactly, without reaching into
// Generate's internals.
//
// Apply does not recompute positions: it trusts the edit's recorded
// KeyInParent/Before/After exactly as generate.go produced them. This
// is a pure replay step, not a second position-resolution pass.
func Apply(source *tree.Node, script []Edit, donors DonorSet) (*tree.Node, error) {
	working := source.Clone()
	index := tree.IndexByID(working)

	for _, e := range script {
		if err := applyOne(working, index, e, donors); err != nil {
			return nil, err
		}
	}
	return working, nil
}

func applyOne(root *tree.Node, index map[string]*tree.Node, e Edit, donors DonorSet) error {
	switch e.Action {
	case UPDATE:
		n, ok := index[e.NodeID]
		if !ok {
			return MappingInconsistencyError{DestNodeID: e.NewNodeID, Reason: "UPDATE target not found in working tree"}
		}
		donor, ok := donors[e.NewNodeID]
		if !ok {
			return MappingInconsistencyError{DestNodeID: e.NewNodeID, Reason: "UPDATE donor not found in donor set"}
		}
		n.Update(donor)
		return nil

	case INSERT:
		donor, ok := donors[e.NodeID]
		if !ok {
			return MappingInconsistencyError{DestNodeID: e.NodeID, Reason: "INSERT donor not found in donor set"}
		}
		if len(donor.Children()) != 0 {
			return ForbiddenEditError{Action: INSERT, NodeID: e.NodeID, NumKids: len(donor.Children())}
		}
		c := donor.ShallowClone()
		index[c.ID] = c
		return placeByEdit(index, e, c)

	case MOVE:
		n, ok := index[e.NodeID]
		if !ok {
			return MappingInconsistencyError{DestNodeID: e.NodeID, Reason: "MOVE subject not found in working tree"}
		}
		if parent := n.Parent(); parent != nil {
			parent.RemoveChild(n)
		}
		return placeByEdit(index, e, n)

	case DELETE:
		n, ok := index[e.NodeID]
		if !ok {
			return MappingInconsistencyError{DestNodeID: e.NodeID, Reason: "DELETE target not found in working tree"}
		}
		if len(n.Children()) != 0 {
			return ForbiddenEditError{Action: DELETE, NodeID: e.NodeID, NumKids: len(n.Children())}
		}
		if parent := n.Parent(); parent != nil {
			parent.RemoveChild(n)
		}
		delete(index, e.NodeID)
		return nil

	default:
		return nil
	}
}

// placeByEdit inserts c (an INSERT's freshly-cloned node, or a MOVE's
// already-detached node) into its recorded parent at its recorded
// position.
func placeByEdit(index map[string]*tree.Node, e Edit, c *tree.Node) error {
	parent, ok := index[e.ParentID]
	if !ok {
		return MappingInconsistencyError{DestNodeID: e.ParentID, Reason: "edit parent not found in working tree"}
	}
	if parent.IsList {
		before := index[e.Before]
		after := index[e.After]
		parent.AddChildBetween(before, after, c)
		return nil
	}
	parent.AddChildAtKey(c, e.KeyInParent)
	return nil
}
