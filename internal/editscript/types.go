// Package editscript generates a typed, ordered edit script that
// transforms a source syntax tree into an exact structural copy of a
// destination tree, given a node correspondence between them.
//
// See generate.go for the stage-by-stage walk.
package editscript

import "github.com/xinyinghou/python-fix-explainer/internal/tree"

// Action is the kind of change an Edit makes to the tree.
type Action int

const (
	UPDATE Action = iota
	INSERT
	MOVE
	DELETE
)

func (a Action) String() string {
	switch a {
	case UPDATE:
		return "UPDATE"
	case INSERT:
		return "INSERT"
	case MOVE:
		return "MOVE"
	case DELETE:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// Stage is the phase of edit-script production that produced an Edit.
// UPDATE, ALIGN_KEYS and ALIGN edits come from one combined walk of the
// source tree and are interleaved in walk order; INSERT, MOVE and
// DELETE edits follow them, in that order. Stage is a label on the
// output, not something the generator sorts by.
type Stage int

const (
	StageUpdate Stage = iota
	StageAlignKeys
	StageAlign
	StageInsert
	StageMove
	StageDelete
)

func (s Stage) String() string {
	switch s {
	case StageUpdate:
		return "UPDATE"
	case StageAlignKeys:
		return "ALIGN_KEYS"
	case StageAlign:
		return "ALIGN"
	case StageInsert:
		return "INSERT"
	case StageMove:
		return "MOVE"
	case StageDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// Edit is one recorded edit, describing tree state just before the
// edit is applied (see generate.go's "record + rehearsal" discipline).
type Edit struct {
	Action Action
	Stage  Stage

	// NodeID is the subject of the edit.
	NodeID string
	// ParentID is set for INSERT and MOVE.
	ParentID string
	// NewNodeID is set for UPDATE only, and points into the donor set.
	NewNodeID string

	// KeyInParent, Before and After are positional metadata for
	// inserting/moving into a keyed or list parent, respectively.
	// Exactly one of KeyInParent or (Before, After) is meaningful,
	// depending on whether ParentID names a keyed or list node.
	KeyInParent string
	Before      string
	After       string

	// IsRename/OldName/NewName flag a variable rename detected during
	// UPDATE or INSERT. Informational only.
	IsRename bool
	OldName  string
	NewName  string

	// IsFixTempKey/OrigKey/DisplacedByID flag that this edit resolves
	// a node previously displaced into a temporary sentinel slot.
	// Informational only.
	IsFixTempKey  bool
	OrigKey       string
	DisplacedByID string

	// IsCleanupAfterNodeTypeChange flags that this edit places a node
	// under a key that is no longer a legal field of its parent's
	// (possibly just-updated) Kind. Informational only.
	IsCleanupAfterNodeTypeChange bool
}

// DonorSet maps a destination node id to a shallow clone of that node,
// handed to consumers so UPDATE and INSERT edits can materialize
// replacement or inserted content without retaining the whole
// destination tree.
type DonorSet map[string]*tree.Node

// Mapping is a partial bijection between node ids of a source and
// destination tree: each source id appears at most once, each
// destination id appears at most once.
type Mapping struct {
	SrcToDest map[string]string
	DestToSrc map[string]string
}

// NewMapping builds a Mapping from (source_id, dest_id) pairs.
func NewMapping(pairs ...[2]string) *Mapping {
	m := &Mapping{SrcToDest: map[string]string{}, DestToSrc: map[string]string{}}
	for _, p := range pairs {
		m.Add(p[0], p[1])
	}
	return m
}

// Add records that srcID corresponds to destID.
func (m *Mapping) Add(srcID, destID string) {
	m.SrcToDest[srcID] = destID
	m.DestToSrc[destID] = srcID
}

// Clone returns a deep copy of m.
func (m *Mapping) Clone() *Mapping {
	c := &Mapping{
		SrcToDest: make(map[string]string, len(m.SrcToDest)),
		DestToSrc: make(map[string]string, len(m.DestToSrc)),
	}
	for k, v := range m.SrcToDest {
		c.SrcToDest[k] = v
	}
	for k, v := range m.DestToSrc {
		c.DestToSrc[k] = v
	}
	return c
}

// Pairs returns the mapping as a slice of (source_id, dest_id) pairs,
// primarily for serialization.
func (m *Mapping) Pairs() [][2]string {
	out := make([][2]string, 0, len(m.SrcToDest))
	for s, d := range m.SrcToDest {
		out = append(out, [2]string{s, d})
	}
	return out
}
