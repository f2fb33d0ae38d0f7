package editscript

import (
	"github.com/pmezard/go-difflib/difflib"
	"github.com/xinyinghou/python-fix-explainer/internal/tree"
)

// Result is the output of Generate: the ordered edit script, the
// donor set INSERT/UPDATE edits draw their replacement content from,
// and the symmetric variable-rename maps discovered along the way.
type Result struct {
	Script           []Edit
	Donors           DonorSet
	RenamesSrcToDest map[string]string
	RenamesDestToSrc map[string]string
}

// Generate produces the edit script that transforms source into an
// exact structural copy of dest, given the node correspondence
// mapping. It operates on private deep clones of source, dest and
// mapping: the caller's trees and mapping are never mutated, and the
// returned donor set contains fresh nodes distinct from both inputs.
//
// Generate assumes the roots of source and dest correspond (true of
// every tree pair produced by a correspondence computation over two
// versions of one program).
func Generate(source, dest *tree.Node, mapping *Mapping) (Result, error) {
	g := &generator{
		workingSrc:  source.Clone(),
		workingDest: dest.Clone(),
		mapping:     mapping.Clone(),
		renames:     newRenameTracker(),
		donors:      DonorSet{},
	}
	g.srcIndex = tree.IndexByID(g.workingSrc)
	g.destIndex = tree.IndexByID(g.workingDest)

	g.updateAndAlign()
	g.insert()
	g.move()
	g.delete()

	if err := checkPostCondition(g.workingSrc, g.workingDest); err != nil {
		return Result{}, err
	}

	return Result{
		Script:           g.script,
		Donors:           g.donors,
		RenamesSrcToDest: g.renames.srcToDest,
		RenamesDestToSrc: g.renames.destToSrc,
	}, nil
}

// generator carries the bookkeeping state shared across the stages of
// one Generate call: one struct, one method per phase, driven by a
// short top-level function.
type generator struct {
	workingSrc, workingDest *tree.Node
	mapping                 *Mapping
	srcIndex, destIndex     map[string]*tree.Node
	renames                 *renameTracker
	script                  []Edit
	donors                  DonorSet
}

func (g *generator) emit(e Edit) { g.script = append(g.script, e) }

// updateAndAlign runs the UPDATE, ALIGN_KEYS and ALIGN stages in one
// depth-first walk of the working source tree. The three stages
// interleave in the emitted script, which is fine: edits
// from these stages don't depend on one another, only on the walk
// order (which variable renames see "first store wins").
func (g *generator) updateAndAlign() {
	for _, s := range tree.DepthFirst(g.workingSrc) {
		destID, ok := g.mapping.SrcToDest[s.ID]
		if !ok {
			continue
		}
		d := g.destIndex[destID]

		g.maybeUpdate(s, d)
		g.maybeAlignKeys(s, d)
		if s.IsList {
			g.alignList(s, d)
		}
	}
}

func (g *generator) maybeUpdate(s, d *tree.Node) {
	if s.Name == d.Name {
		return
	}
	edit := Edit{Action: UPDATE, Stage: StageUpdate, NodeID: s.ID, NewNodeID: d.ID}
	if isRename, oldName, newName := g.renames.observeUpdate(s, d); isRename {
		edit.IsRename, edit.OldName, edit.NewName = true, oldName, newName
	}
	g.donors[d.ID] = d.ShallowClone()
	g.emit(edit)
	// Mutate the working tree only after recording the donor: record,
	// then apply.
	s.Update(d)
}

func (g *generator) maybeAlignKeys(s, d *tree.Node) {
	sp, dp := s.Parent(), d.Parent()
	if sp == nil || sp.IsList || dp == nil {
		return
	}
	if g.mapping.SrcToDest[sp.ID] != dp.ID {
		return
	}
	if s.KeyInParent() == d.KeyInParent() {
		return
	}

	newKey := d.KeyInParent()
	sp.RemoveChild(s)
	sp.AddChildAtKey(s, newKey)
	// IsFixTempKey is intentionally left unset here, both when this
	// displaces a sibling into a sentinel slot and when s itself is
	// leaving one: only the MOVE-stage placement (resolvePosition) and
	// DELETE set that flag.
	g.emit(Edit{Action: MOVE, Stage: StageAlignKeys, NodeID: s.ID, ParentID: sp.ID, KeyInParent: newKey})
}

// alignList reorders s's mapped children so that their relative order
// matches d's, using the longest common subsequence of the two mapped
// orderings as the set of children left untouched.
func (g *generator) alignList(s, d *tree.Node) {
	var mappedSourceOrder, mappedDestOrder []string
	for _, c := range s.Children() {
		if destID, ok := g.mapping.SrcToDest[c.ID]; ok {
			if dc := g.destIndex[destID]; dc.Parent() == d {
				mappedSourceOrder = append(mappedSourceOrder, c.ID)
			}
		}
	}
	for _, c := range d.Children() {
		if srcID, ok := g.mapping.DestToSrc[c.ID]; ok {
			if sc := g.srcIndex[srcID]; sc.Parent() == s {
				mappedDestOrder = append(mappedDestOrder, srcID)
			}
		}
	}

	matcher := difflib.NewMatcher(mappedSourceOrder, mappedDestOrder)
	correctlyAligned := map[string]bool{}
	for _, m := range matcher.GetMatchingBlocks() {
		for i := m.A; i < m.A+m.Size; i++ {
			correctlyAligned[mappedSourceOrder[i]] = true
		}
	}

	for i, srcID := range mappedDestOrder {
		if correctlyAligned[srcID] {
			continue
		}
		var beforeID, afterID string
		if i > 0 {
			beforeID = mappedDestOrder[i-1]
		}
		if i < len(mappedDestOrder)-1 {
			afterID = mappedDestOrder[i+1]
		}
		before, after := g.srcIndex[beforeID], g.srcIndex[afterID]

		moveNode := g.srcIndex[srcID]
		s.RemoveChild(moveNode)
		s.AddChildBetween(before, after, moveNode)

		g.emit(Edit{
			Action: MOVE, Stage: StageAlign,
			NodeID: moveNode.ID, ParentID: s.ID,
			Before: idOrEmpty(before), After: idOrEmpty(after),
		})
	}
}

// insert walks the working destination tree breadth-first and, for
// every node not yet in the mapping, synthesizes a leaf in the
// working source tree carrying the same id. Breadth-first order
// guarantees the parent already exists, either because it was
// originally corresponded or because it was inserted earlier in this
// same walk.
func (g *generator) insert() {
	for _, d := range tree.BreadthFirst(g.workingDest) {
		if _, ok := g.mapping.DestToSrc[d.ID]; ok {
			continue
		}
		if d.Parent() == nil {
			// Root nodes are assumed to always correspond; nothing to do.
			continue
		}

		c := d.ShallowClone() // carries d.ID
		g.donors[d.ID] = d.ShallowClone()
		g.mapping.Add(c.ID, d.ID)
		g.srcIndex[c.ID] = c

		edit := Edit{Action: INSERT, Stage: StageInsert, NodeID: c.ID}
		if isRename, oldName, newName := g.renames.observeInsert(c); isRename {
			edit.IsRename, edit.OldName, edit.NewName = true, oldName, newName
		}
		resolvePosition(&edit, c, d, g.mapping, g.srcIndex)
		g.emit(edit)
	}
}

// move walks the working destination tree breadth-first again — the
// mapping is now total, since insert synthesised every missing node —
// and relocates any source node whose current parent doesn't match
// its mapped parent.
func (g *generator) move() {
	for _, d := range tree.BreadthFirst(g.workingDest) {
		destParent := d.Parent()
		if destParent == nil {
			continue
		}
		s := g.srcIndex[g.mapping.DestToSrc[d.ID]]
		wantParent := g.srcIndex[g.mapping.DestToSrc[destParent.ID]]
		if s.Parent() == wantParent {
			continue
		}

		s.Parent().RemoveChild(s)
		edit := Edit{Action: MOVE, Stage: StageMove, NodeID: s.ID}
		resolvePosition(&edit, s, d, g.mapping, g.srcIndex)
		g.emit(edit)
	}
}

// delete removes every source node that ended up with no dest
// correspondent, in post-order so that children are always deleted
// before their parents. The post-order list is materialized up front, since deleting nodes while iterating a live
// traversal of a mutating tree would skip or revisit nodes.
func (g *generator) delete() {
	for _, s := range tree.PostOrder(g.workingSrc) {
		if _, ok := g.mapping.SrcToDest[s.ID]; ok {
			continue
		}

		parent := s.Parent()
		key := s.KeyInParent()
		parent.RemoveChild(s)

		edit := Edit{Action: DELETE, Stage: StageDelete, NodeID: s.ID}
		if orig, ok := s.OrigKey(); ok {
			by, _ := s.DisplacedByID()
			edit.IsFixTempKey, edit.OrigKey, edit.DisplacedByID = true, orig, by
		} else if !parent.IsList && !parent.HasField(key) {
			edit.IsCleanupAfterNodeTypeChange = true
		}
		g.emit(edit)
	}
}
