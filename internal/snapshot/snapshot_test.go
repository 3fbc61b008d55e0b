package snapshot

import (
	"path/filepath"
	"strings"
	"testing"

	"dla/internal/ir"
	"dla/internal/typegraph"
)

// buildGraph wires a small module with a struct-returning function and a
// populated graph.
func buildGraph(t *testing.T) (*ir.Module, *typegraph.TypeSystem, []typegraph.LayoutTypePtr) {
	t.Helper()
	m := ir.NewModule()
	i64 := m.Types.Intern(ir.Type{Kind: ir.KindInt, Bits: 64})
	ptr := m.Types.Intern(ir.Type{Kind: ir.KindPointer})
	st := m.Types.AddStruct([]ir.TypeID{i64, ptr})

	buf := m.AddValue("buf", ptr)
	fn := m.AddFunction("make_pair", st)

	bufPtr := typegraph.MakeLayoutTypePtr(m, buf)
	f0 := typegraph.MakeFieldLayoutTypePtr(m, fn, 0)
	f1 := typegraph.MakeFieldLayoutTypePtr(m, fn, 1)

	ts := typegraph.New(m, nil)
	bufNode, _ := ts.EnsureLayoutType(bufPtr)
	n0, _ := ts.EnsureLayoutType(f0)
	n1, _ := ts.EnsureLayoutType(f1)

	ts.RecordAccess(bufNode, m.NewAccess("load"), 16)
	ts.RecordAccess(n0, m.NewAccess("load"), 8)

	oe := typegraph.NewOffsetExpression(8)
	oe.AddStride(4, typegraph.TripCountUnknown)
	ts.AddInstanceLink(bufNode, n0, oe)
	ts.AddInheritanceLink(n1, n0)
	ts.AddEqualityLink(bufNode, n1)

	return m, ts, []typegraph.LayoutTypePtr{bufPtr, f0, f1}
}

func TestSnapshotRoundTrip(t *testing.T) {
	m, ts, ptrs := buildGraph(t)

	data, err := Capture(ts).Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	s, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	restored, err := Restore(s, m, nil)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if restored.NumLayouts() != ts.NumLayouts() {
		t.Fatalf("NumLayouts = %d, want %d", restored.NumLayouts(), ts.NumLayouts())
	}
	for _, p := range ptrs {
		orig := ts.LayoutType(p)
		got := restored.LayoutType(p)
		if got == nil {
			t.Fatalf("point %v lost", p)
		}
		if got.Size != orig.Size || len(got.Accesses) != len(orig.Accesses) {
			t.Fatalf("payload for %v: size=%d accesses=%d, want %d/%d",
				p, got.Size, len(got.Accesses), orig.Size, len(orig.Accesses))
		}
		if got.Successors.Len() != orig.Successors.Len() {
			t.Fatalf("edges for %v: %d, want %d", p, got.Successors.Len(), orig.Successors.Len())
		}
	}

	bufNode := restored.LayoutType(ptrs[0])
	inst := bufNode.SuccessorsByKind(typegraph.LinkInstance)
	if len(inst) != 1 {
		t.Fatalf("instance edge lost")
	}
	oe := inst[0].Tag.OffsetExpr()
	if oe.Offset != 8 || len(oe.Strides) != 1 || oe.TripCounts[0] != typegraph.TripCountUnknown {
		t.Fatalf("offset expression mangled: %v", oe)
	}
	if !restored.VerifyConsistency() {
		t.Fatalf("restored graph inconsistent")
	}
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	m, ts, ptrs := buildGraph(t)
	path := filepath.Join(t.TempDir(), "graph.msgpack")

	if err := Capture(ts).WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	restored, err := Restore(s, m, nil)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if restored.LayoutType(ptrs[0]) == nil {
		t.Fatalf("round trip through file lost the graph")
	}
}

func TestDecodeRejectsSchemaMismatch(t *testing.T) {
	_, ts, _ := buildGraph(t)
	s := Capture(ts)
	s.Schema = SchemaVersion + 1
	data, err := s.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if _, err := Decode(data); err == nil || !strings.Contains(err.Error(), "schema") {
		t.Fatalf("schema mismatch not rejected: %v", err)
	}
}

func TestRestoreRejectsUnknownValue(t *testing.T) {
	m, ts, _ := buildGraph(t)
	s := Capture(ts)
	s.Origins[0].Value = 999
	if _, err := Restore(s, m, nil); err == nil {
		t.Fatalf("origin against an unknown value must fail")
	}
}

func TestRestoreRejectsNodeWithoutOrigins(t *testing.T) {
	m, ts, _ := buildGraph(t)
	s := Capture(ts)
	s.Origins = nil
	if _, err := Restore(s, m, nil); err == nil {
		t.Fatalf("nodes without origins must fail")
	}
}
