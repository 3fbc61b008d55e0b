package typegraph

import (
	"fmt"
	"testing"

	"dla/internal/ir"
)

// testEnv wires a small module and an empty graph for the tests.
type testEnv struct {
	m  *ir.Module
	ts *TypeSystem

	ptrType ir.TypeID
	intType ir.TypeID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	m := ir.NewModule()
	env := &testEnv{
		m:       m,
		ptrType: m.Types.Intern(ir.Type{Kind: ir.KindPointer}),
		intType: m.Types.Intern(ir.Type{Kind: ir.KindInt, Bits: 64}),
	}
	env.ts = New(m, nil)
	return env
}

// node registers a fresh pointer value and returns its layout node.
func (e *testEnv) node(t *testing.T, name string) *Node {
	t.Helper()
	v := e.m.AddValue(name, e.ptrType)
	n, created := e.ts.EnsureLayoutType(MakeLayoutTypePtr(e.m, v))
	if !created {
		t.Fatalf("node for fresh value %q should be created", name)
	}
	return n
}

// access mints new evidence and attaches it to n.
func (e *testEnv) access(n *Node, size uint64) {
	e.ts.RecordAccess(n, e.m.NewAccess("test access"), size)
}

func mustPanic(t *testing.T, what string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s should panic", what)
		}
	}()
	fn()
}

// edgeSigs flattens a node's successor edges into comparable signatures,
// using origin sets so the signatures survive differing node IDs.
func edgeSigs(ts *TypeSystem, n *Node) []string {
	var sigs []string
	for _, e := range n.Successors.Edges() {
		sigs = append(sigs, fmt.Sprintf("%v %s", ts.LayoutTypePtrs(e.To), e.Tag))
	}
	return sigs
}
