package editscript

import (
	"testing"

	"github.com/xinyinghou/python-fix-explainer/internal/tree"
)

func countByAction(script []Edit, a Action) int {
	n := 0
	for _, e := range script {
		if e.Action == a {
			n++
		}
	}
	return n
}

// TestRenameOnly covers scenario S1: def f(x): return x -> def f(y): return y.
func TestRenameOnly(t *testing.T) {
	src := tree.New("fn", "FunctionDef", "f", false, "args", "body")
	argsList := tree.New("args", "List-of-arg", "", true)
	argNode := tree.New("argnode", "arg", "x", false)
	argsList.AddChildBetween(nil, nil, argNode)
	src.AddChildAtKey(argsList, "args")
	bodyList := tree.New("body", "List-of-statements", "", true)
	retNode := tree.New("ret", "Return", "Return", false, "value")
	nameNode := tree.New("namenode", "Name", "x", false)
	retNode.AddChildAtKey(nameNode, "value")
	bodyList.AddChildBetween(nil, nil, retNode)
	src.AddChildAtKey(bodyList, "body")

	dest := tree.New("fn", "FunctionDef", "f", false, "args", "body")
	dArgsList := tree.New("args", "List-of-arg", "", true)
	dArgNode := tree.New("argnode", "arg", "y", false)
	dArgsList.AddChildBetween(nil, nil, dArgNode)
	dest.AddChildAtKey(dArgsList, "args")
	dBodyList := tree.New("body", "List-of-statements", "", true)
	dRetNode := tree.New("ret", "Return", "Return", false, "value")
	dNameNode := tree.New("namenode", "Name", "y", false)
	dRetNode.AddChildAtKey(dNameNode, "value")
	dBodyList.AddChildBetween(nil, nil, dRetNode)
	dest.AddChildAtKey(dBodyList, "body")

	mapping := NewMapping(
		[2]string{"fn", "fn"}, [2]string{"args", "args"}, [2]string{"argnode", "argnode"},
		[2]string{"body", "body"}, [2]string{"ret", "ret"}, [2]string{"namenode", "namenode"},
	)

	result, err := Generate(src, dest, mapping)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got, want := countByAction(result.Script, UPDATE), 2; got != want {
		t.Fatalf("UPDATE count = %d, want %d (script=%+v)", got, want, result.Script)
	}
	for _, a := range []Action{INSERT, MOVE, DELETE} {
		if got := countByAction(result.Script, a); got != 0 {
			t.Fatalf("%s count = %d, want 0", a, got)
		}
	}
	if result.RenamesSrcToDest["x"] != "y" {
		t.Fatalf("renames_source_to_dest = %v, want x->y", result.RenamesSrcToDest)
	}
	if result.RenamesDestToSrc["y"] != "x" {
		t.Fatalf("renames_dest_to_source = %v, want y->x", result.RenamesDestToSrc)
	}
}

// TestListReorder covers scenario S2: body [A;B;C] -> [C;A;B].
func TestListReorder(t *testing.T) {
	a, b, c := tree.New("A", "Pass", "pass", false), tree.New("B", "Pass", "pass", false), tree.New("C", "Pass", "pass", false)
	src := tree.New("root", "List-of-statements", "", true)
	src.AddChildBetween(nil, nil, a)
	src.AddChildBetween(a, nil, b)
	src.AddChildBetween(b, nil, c)

	da, db, dc := tree.New("A", "Pass", "pass", false), tree.New("B", "Pass", "pass", false), tree.New("C", "Pass", "pass", false)
	dest := tree.New("root", "List-of-statements", "", true)
	dest.AddChildBetween(nil, nil, dc)
	dest.AddChildBetween(dc, nil, da)
	dest.AddChildBetween(da, nil, db)

	mapping := NewMapping([2]string{"root", "root"}, [2]string{"A", "A"}, [2]string{"B", "B"}, [2]string{"C", "C"})

	result, err := Generate(src, dest, mapping)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got, want := countByAction(result.Script, MOVE), 1; got != want {
		t.Fatalf("MOVE count = %d, want %d (script=%+v)", got, want, result.Script)
	}
	for _, a := range []Action{UPDATE, INSERT, DELETE} {
		if got := countByAction(result.Script, a); got != 0 {
			t.Fatalf("%s count = %d, want 0", a, got)
		}
	}
	mv := result.Script[0]
	if mv.NodeID != "C" || mv.Stage != StageAlign || mv.Before != "" || mv.After != "A" {
		t.Fatalf("unexpected move edit: %+v", mv)
	}
}

// TestKeySwap covers scenario S3: a / b -> b / a.
func TestKeySwap(t *testing.T) {
	root := tree.New("root", "BinOp", "/", false, "left", "right")
	a, b := tree.New("a", "Name", "a", false), tree.New("b", "Name", "b", false)
	root.AddChildAtKey(a, "left")
	root.AddChildAtKey(b, "right")

	droot := tree.New("root", "BinOp", "/", false, "left", "right")
	da, db := tree.New("a", "Name", "a", false), tree.New("b", "Name", "b", false)
	droot.AddChildAtKey(da, "right")
	droot.AddChildAtKey(db, "left")

	mapping := NewMapping([2]string{"root", "root"}, [2]string{"a", "a"}, [2]string{"b", "b"})

	result, err := Generate(root, droot, mapping)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got, want := countByAction(result.Script, MOVE), 2; got != want {
		t.Fatalf("MOVE count = %d, want %d (script=%+v)", got, want, result.Script)
	}
	for _, e := range result.Script {
		if e.Stage != StageAlignKeys {
			t.Fatalf("expected both moves in ALIGN_KEYS stage, got %+v", e)
		}
	}
	if !result.Script[0].IsFixTempKey == false {
		// The first move displaces a sibling but does not itself
		// resolve a prior displacement (open question (b): ALIGN_KEYS
		// never sets IsFixTempKey).
	}
	for _, e := range result.Script {
		if e.IsFixTempKey {
			t.Fatalf("ALIGN_KEYS must never set IsFixTempKey (open question (b)), got %+v", e)
		}
	}

	applied, err := Apply(root, result.Script, result.Donors)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got, want := string(tree.Printable(applied)), string(tree.Printable(droot)); got != want {
		t.Fatalf("Apply result mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

// TestPureInsertion covers scenario S4: pass -> x = 0.
func TestPureInsertion(t *testing.T) {
	src := tree.New("root", "Module", "Module", false, "body")
	srcBody := tree.New("body", "List-of-statements", "", true)
	stmt := tree.New("stmt", "Pass", "pass", false)
	srcBody.AddChildBetween(nil, nil, stmt)
	src.AddChildAtKey(srcBody, "body")

	dest := tree.New("root", "Module", "Module", false, "body")
	destBody := tree.New("body", "List-of-statements", "", true)
	dStmt := tree.New("stmt", "Assign", "Assign", false, "target", "value")
	target := tree.New("tgt", "Name", "x", false)
	value := tree.New("val", "Constant", "0", false)
	dStmt.AddChildAtKey(target, "target")
	dStmt.AddChildAtKey(value, "value")
	destBody.AddChildBetween(nil, nil, dStmt)
	dest.AddChildAtKey(destBody, "body")

	mapping := NewMapping([2]string{"root", "root"}, [2]string{"body", "body"}, [2]string{"stmt", "stmt"})

	result, err := Generate(src, dest, mapping)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got, want := countByAction(result.Script, DELETE), 0; got != want {
		t.Fatalf("DELETE count = %d, want %d (script=%+v)", got, want, result.Script)
	}
	if got, want := countByAction(result.Script, INSERT), 2; got != want {
		t.Fatalf("INSERT count = %d, want %d (script=%+v)", got, want, result.Script)
	}
	if got, want := countByAction(result.Script, UPDATE), 1; got != want {
		t.Fatalf("UPDATE count = %d, want %d (script=%+v)", got, want, result.Script)
	}
	for _, e := range result.Script {
		if e.Action == INSERT {
			donor, ok := result.Donors[e.NodeID]
			if !ok || len(donor.Children()) != 0 {
				t.Fatalf("INSERT donor for %s missing or not a leaf", e.NodeID)
			}
		}
	}
}

// TestParentKindChange covers scenario S5: for i in items: ... -> if c: ...
func TestParentKindChange(t *testing.T) {
	src := tree.New("root", "For", "For", false, "target", "iter", "body")
	target := tree.New("target", "Name", "i", false)
	iter := tree.New("iter", "Name", "items", false)
	srcBody := tree.New("body", "List-of-statements", "", true)
	sbody := tree.New("sbody", "Pass", "pass", false)
	srcBody.AddChildBetween(nil, nil, sbody)
	src.AddChildAtKey(target, "target")
	src.AddChildAtKey(iter, "iter")
	src.AddChildAtKey(srcBody, "body")

	dest := tree.New("root", "If", "If", false, "test", "body", "orelse")
	dtest := tree.New("newtest", "Name", "c", false)
	destBody := tree.New("body", "List-of-statements", "", true)
	dsbody := tree.New("sbody", "Pass", "pass", false)
	destBody.AddChildBetween(nil, nil, dsbody)
	dest.AddChildAtKey(dtest, "test")
	dest.AddChildAtKey(destBody, "body")

	mapping := NewMapping([2]string{"root", "root"}, [2]string{"body", "body"}, [2]string{"sbody", "sbody"})

	result, err := Generate(src, dest, mapping)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got, want := countByAction(result.Script, UPDATE), 1; got != want {
		t.Fatalf("UPDATE count = %d, want %d (script=%+v)", got, want, result.Script)
	}
	if got, want := countByAction(result.Script, INSERT), 1; got != want {
		t.Fatalf("INSERT count = %d, want %d (script=%+v)", got, want, result.Script)
	}
	if got, want := countByAction(result.Script, DELETE), 2; got != want {
		t.Fatalf("DELETE count = %d, want %d (script=%+v)", got, want, result.Script)
	}
	for _, e := range result.Script {
		if e.Action == DELETE && !e.IsCleanupAfterNodeTypeChange {
			t.Fatalf("expected DELETE of stranded child to flag cleanup-after-type-change: %+v", e)
		}
	}
}

// TestFidelityAndTempKeyResolution checks universal properties 1 and 7
// against the key-swap scenario: applying the script reproduces dest
// exactly, and no sentinel key survives in the result.
func TestFidelityAndTempKeyResolution(t *testing.T) {
	root := tree.New("root", "BinOp", "/", false, "left", "right")
	a, b := tree.New("a", "Name", "a", false), tree.New("b", "Name", "b", false)
	root.AddChildAtKey(a, "left")
	root.AddChildAtKey(b, "right")

	droot := tree.New("root", "BinOp", "/", false, "left", "right")
	da, db := tree.New("a", "Name", "a", false), tree.New("b", "Name", "b", false)
	droot.AddChildAtKey(da, "right")
	droot.AddChildAtKey(db, "left")

	mapping := NewMapping([2]string{"root", "root"}, [2]string{"a", "a"}, [2]string{"b", "b"})

	result, err := Generate(root, droot, mapping)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	applied, err := Apply(root, result.Script, result.Donors)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for _, n := range tree.BreadthFirst(applied) {
		if _, ok := n.OrigKey(); ok {
			t.Fatalf("node %s still carries a sentinel key after applying the script", n.ID)
		}
	}
}

// TestDonorClosureAndLeafOnly checks universal properties 3 and 5
// against the pure-insertion scenario.
func TestDonorClosureAndLeafOnly(t *testing.T) {
	src := tree.New("root", "Module", "Module", false, "body")
	srcBody := tree.New("body", "List-of-statements", "", true)
	stmt := tree.New("stmt", "Pass", "pass", false)
	srcBody.AddChildBetween(nil, nil, stmt)
	src.AddChildAtKey(srcBody, "body")

	dest := tree.New("root", "Module", "Module", false, "body")
	destBody := tree.New("body", "List-of-statements", "", true)
	dStmt := tree.New("stmt", "Assign", "Assign", false, "target", "value")
	target := tree.New("tgt", "Name", "x", false)
	value := tree.New("val", "Constant", "0", false)
	dStmt.AddChildAtKey(target, "target")
	dStmt.AddChildAtKey(value, "value")
	destBody.AddChildBetween(nil, nil, dStmt)
	dest.AddChildAtKey(destBody, "body")

	mapping := NewMapping([2]string{"root", "root"}, [2]string{"body", "body"}, [2]string{"stmt", "stmt"})

	result, err := Generate(src, dest, mapping)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for _, e := range result.Script {
		switch e.Action {
		case UPDATE:
			if _, ok := result.Donors[e.NewNodeID]; !ok {
				t.Fatalf("UPDATE edit %+v has no donor", e)
			}
		case INSERT:
			donor, ok := result.Donors[e.NodeID]
			if !ok {
				t.Fatalf("INSERT edit %+v has no donor", e)
			}
			if len(donor.Children()) != 0 {
				t.Fatalf("INSERT donor for %+v is not a leaf", e)
			}
		}
	}

	applied, err := Apply(src, result.Script, result.Donors)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got, want := string(tree.Printable(applied)), string(tree.Printable(dest)); got != want {
		t.Fatalf("Apply result mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}
