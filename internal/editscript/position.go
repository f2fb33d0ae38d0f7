package editscript

import "github.com/xinyinghou/python-fix-explainer/internal/tree"

// resolvePosition places node s (whose correspondent is d) at the
// dest-mirrored position, mutating the working source tree and
// filling in edit's positional fields. Used by both the INSERT and
// MOVE phases.
func resolvePosition(edit *Edit, s, d *tree.Node, mapping *Mapping, srcIndex map[string]*tree.Node) {
	destParent := d.Parent()
	srcParent := srcIndex[mapping.DestToSrc[destParent.ID]]
	edit.ParentID = srcParent.ID

	if srcParent.IsList {
		before, after := mirroredListNeighbors(d, destParent, mapping, srcIndex, srcParent)
		srcParent.AddChildBetween(before, after, s)
		edit.Before = idOrEmpty(before)
		edit.After = idOrEmpty(after)
		return
	}

	desiredKey := d.KeyInParent()
	if orig, ok := s.OrigKey(); ok {
		// s currently carries a sentinel key from an earlier
		// displacement; this edit resolves it.
		by, _ := s.DisplacedByID()
		edit.IsFixTempKey = true
		edit.OrigKey = orig
		edit.DisplacedByID = by
	} else if !srcParent.HasField(desiredKey) {
		// desiredKey isn't a legal field of srcParent's current
		// (possibly just-updated) Kind: this placement is cleanup
		// after a parent type change, not a "normal" move.
		edit.IsCleanupAfterNodeTypeChange = true
	}

	srcParent.AddChildAtKey(s, desiredKey)
	edit.KeyInParent = desiredKey
}

// mirroredListNeighbors walks outward from d's position in destParent
// on each side, skipping any dest sibling that is unmapped or whose
// source correspondent sits under a different parent than srcParent,
// and translates the surviving neighbours back through the mapping.
func mirroredListNeighbors(d, destParent *tree.Node, mapping *Mapping, srcIndex map[string]*tree.Node, srcParent *tree.Node) (before, after *tree.Node) {
	destBefore, destAfter := destParent.GetChildNeighbors(d)

	for destBefore != nil && !correspondsUnder(destBefore, mapping, srcIndex, srcParent) {
		destBefore, _ = destParent.GetChildNeighbors(destBefore)
	}
	for destAfter != nil && !correspondsUnder(destAfter, mapping, srcIndex, srcParent) {
		_, destAfter = destParent.GetChildNeighbors(destAfter)
	}

	if destBefore != nil {
		before = srcIndex[mapping.DestToSrc[destBefore.ID]]
	}
	if destAfter != nil {
		after = srcIndex[mapping.DestToSrc[destAfter.ID]]
	}
	return before, after
}

// correspondsUnder reports whether destNode is mapped to a source
// node that is currently a direct child of srcParent.
func correspondsUnder(destNode *tree.Node, mapping *Mapping, srcIndex map[string]*tree.Node, srcParent *tree.Node) bool {
	srcID, ok := mapping.DestToSrc[destNode.ID]
	if !ok {
		return false
	}
	srcNode := srcIndex[srcID]
	return srcNode != nil && srcNode.Parent() == srcParent
}

func idOrEmpty(n *tree.Node) string {
	if n == nil {
		return ""
	}
	return n.ID
}
