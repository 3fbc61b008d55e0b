package collect

import (
	"context"
	"errors"
	"strings"
	"testing"

	"dla/internal/ir"
	"dla/internal/typegraph"
)

// scriptedCollector returns canned evidence per function name.
type scriptedCollector struct {
	evidence map[string]Evidence
	errs     map[string]error
}

func (c *scriptedCollector) CollectFunction(_ context.Context, m *ir.Module, fn ir.ValueID) (Evidence, error) {
	name := m.MustValue(fn).Name
	if err := c.errs[name]; err != nil {
		return Evidence{}, err
	}
	return c.evidence[name], nil
}

func TestRunAppliesEvidence(t *testing.T) {
	m := ir.NewModule()
	i64 := m.Types.Intern(ir.Type{Kind: ir.KindInt, Bits: 64})
	ptr := m.Types.Intern(ir.Type{Kind: ir.KindPointer})
	buf := m.AddValue("buf", ptr)
	cur := m.AddValue("cur", ptr)
	fnA := m.AddFunction("walk_list", i64)
	m.AddFunction("read_head", i64)

	bufPtr := typegraph.MakeLayoutTypePtr(m, buf)
	curPtr := typegraph.MakeLayoutTypePtr(m, cur)
	fnAPtr := typegraph.MakeLayoutTypePtr(m, fnA)

	next := typegraph.NewOffsetExpression(8)
	c := &scriptedCollector{evidence: map[string]Evidence{
		"walk_list": {
			Links: []Link{
				{Kind: typegraph.LinkEquality, Src: bufPtr, Tgt: curPtr},
				{Kind: typegraph.LinkInstance, Src: bufPtr, Tgt: fnAPtr, OE: next},
			},
			Accesses: []Access{
				{Ptr: bufPtr, Site: m.NewAccess("load buf+8"), Size: 8},
			},
		},
		"read_head": {
			Accesses: []Access{
				{Ptr: curPtr, Site: m.NewAccess("load cur+0"), Size: 4},
			},
		},
	}}

	ts := typegraph.New(m, nil)
	if err := Run(context.Background(), ts, c, 2, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if ts.NumLayouts() != 3 {
		t.Fatalf("NumLayouts = %d, want 3", ts.NumLayouts())
	}
	bufNode := ts.LayoutType(bufPtr)
	curNode := ts.LayoutType(curPtr)
	if bufNode == nil || curNode == nil {
		t.Fatalf("observation points not materialized")
	}
	if bufNode.Size != 8 || curNode.Size != 4 {
		t.Fatalf("sizes = %d, %d, want 8, 4", bufNode.Size, curNode.Size)
	}
	if len(bufNode.SuccessorsByKind(typegraph.LinkEquality)) != 1 {
		t.Fatalf("equality link not applied")
	}
	if len(bufNode.SuccessorsByKind(typegraph.LinkInstance)) != 1 {
		t.Fatalf("instance link not applied")
	}
	if !ts.VerifyConsistency() {
		t.Fatalf("graph inconsistent after Run")
	}
}

func TestRunPropagatesCollectorErrors(t *testing.T) {
	m := ir.NewModule()
	i64 := m.Types.Intern(ir.Type{Kind: ir.KindInt, Bits: 64})
	m.AddFunction("ok", i64)
	m.AddFunction("broken", i64)

	sentinel := errors.New("unsupported addressing mode")
	c := &scriptedCollector{errs: map[string]error{"broken": sentinel}}

	ts := typegraph.New(m, nil)
	err := Run(context.Background(), ts, c, 4, nil)
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want wrapped sentinel", err)
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Fatalf("error should name the function: %v", err)
	}
	if ts.NumLayouts() != 0 {
		t.Fatalf("nothing must be applied after a collection failure")
	}
}

func TestRunWithNoFunctions(t *testing.T) {
	m := ir.NewModule()
	ts := typegraph.New(m, nil)
	if err := Run(context.Background(), ts, &scriptedCollector{}, 0, nil); err != nil {
		t.Fatalf("Run on an empty module: %v", err)
	}
}
