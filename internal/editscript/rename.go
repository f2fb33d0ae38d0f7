package editscript

import "github.com/xinyinghou/python-fix-explainer/internal/tree"

// renameKindName and renameKindArg are the two node kinds the generator
// recognizes as "this identifies a variable"; storeContext marks a
// binding occurrence of a Name.
const (
	renameKindName = "Name"
	renameKindArg  = "arg"
	storeContext   = "Store"
)

// renameTracker maintains the symmetric source<->dest variable-rename
// maps built up during the UPDATE/ALIGN walk, and consulted again
// during INSERT.
type renameTracker struct {
	srcToDest map[string]string
	destToSrc map[string]string
}

func newRenameTracker() *renameTracker {
	return &renameTracker{srcToDest: map[string]string{}, destToSrc: map[string]string{}}
}

// observeUpdate is called for every UPDATE-stage pair (s, d). It
// returns whether this pair constitutes a rename and, if so, the old
// and new identifier text, exactly mirroring
// edit_script.py:is_update_variable_rename.
func (r *renameTracker) observeUpdate(s, d *tree.Node) (isRename bool, oldName, newName string) {
	switch {
	case s.Kind == renameKindName && d.Kind == renameKindName:
		if s.Context == storeContext && d.Context == storeContext {
			if _, seen := r.srcToDest[s.Name]; !seen {
				// First store of this source identifier wins; later
				// reassignments don't overwrite an established rename.
				r.srcToDest[s.Name] = d.Name
				r.destToSrc[d.Name] = s.Name
			}
		}
		return true, s.Name, d.Name
	case s.Kind == renameKindArg && d.Kind == renameKindArg:
		// Formal parameters unconditionally update the rename map.
		r.srcToDest[s.Name] = d.Name
		r.destToSrc[d.Name] = s.Name
		return true, s.Name, d.Name
	default:
		return false, "", ""
	}
}

// observeInsert reports whether the freshly-inserted node c is a
// reference to a variable that was renamed elsewhere in this script,
// and if so, the old identifier it corresponds to.
func (r *renameTracker) observeInsert(c *tree.Node) (isRename bool, oldName, newName string) {
	if c.Kind != renameKindName {
		return false, "", ""
	}
	if old, ok := r.destToSrc[c.Name]; ok {
		return true, old, c.Name
	}
	return false, "", ""
}
