package ir

import "testing"

func TestInternerDeduplicatesPrimitives(t *testing.T) {
	in := NewInterner()
	a := in.Intern(Type{Kind: KindInt, Bits: 64})
	b := in.Intern(Type{Kind: KindInt, Bits: 64})
	if a != b {
		t.Fatalf("equal primitives should intern to one ID, got %d and %d", a, b)
	}
	c := in.Intern(Type{Kind: KindInt, Bits: 32})
	if a == c {
		t.Fatalf("different widths must not share an ID")
	}
}

func TestInternerStructsAreNominal(t *testing.T) {
	in := NewInterner()
	i64 := in.Intern(Type{Kind: KindInt, Bits: 64})
	s1 := in.AddStruct([]TypeID{i64, i64})
	s2 := in.AddStruct([]TypeID{i64, i64})
	if s1 == s2 {
		t.Fatalf("structurally equal structs must stay distinct")
	}
	got := in.MustLookup(s1)
	if got.Kind != KindStruct || len(got.Fields) != 2 {
		t.Fatalf("unexpected struct descriptor: %+v", got)
	}
}

func TestInternRejectsNominalKinds(t *testing.T) {
	in := NewInterner()
	defer func() {
		if recover() == nil {
			t.Fatalf("Intern of a struct descriptor should panic")
		}
	}()
	in.Intern(Type{Kind: KindStruct})
}

func TestModuleValuesAndFunctions(t *testing.T) {
	m := NewModule()
	i64 := m.Types.Intern(Type{Kind: KindInt, Bits: 64})
	v := m.AddValue("reg0", i64)
	st := m.Types.AddStruct([]TypeID{i64, i64})
	f := m.AddFunction("make_pair", st)
	g := m.AddFunction("get_len", i64)

	if m.NumValues() != 3 {
		t.Fatalf("NumValues = %d, want 3", m.NumValues())
	}
	if m.IsFunction(v) {
		t.Fatalf("reg0 is not a function")
	}
	if !m.IsFunction(f) || !m.IsFunction(g) {
		t.Fatalf("functions not recognized")
	}
	if !m.ReturnsStruct(f) {
		t.Fatalf("make_pair returns a struct")
	}
	if m.ReturnsStruct(g) {
		t.Fatalf("get_len does not return a struct")
	}
	if got := m.StructFieldCount(f); got != 2 {
		t.Fatalf("StructFieldCount = %d, want 2", got)
	}
	if got := m.StructFieldCount(g); got != 0 {
		t.Fatalf("StructFieldCount for scalar return = %d, want 0", got)
	}

	fns := m.Functions()
	if len(fns) != 2 || fns[0] != f || fns[1] != g {
		t.Fatalf("Functions() = %v, want [%d %d]", fns, f, g)
	}
}

func TestModuleLookupMisses(t *testing.T) {
	m := NewModule()
	if _, ok := m.Value(NoValueID); ok {
		t.Fatalf("NoValueID must not resolve")
	}
	if _, ok := m.Value(99); ok {
		t.Fatalf("out-of-range ID must not resolve")
	}
}

func TestAccessHandles(t *testing.T) {
	m := NewModule()
	a := m.NewAccess("load @ fn+0x10")
	b := m.NewAccess("store @ fn+0x20")
	if a == b {
		t.Fatalf("access handles must be distinct")
	}
	if m.AccessLabel(a) != "load @ fn+0x10" {
		t.Fatalf("label mismatch: %q", m.AccessLabel(a))
	}
	if m.AccessLabel(AccessID(99)) != "" {
		t.Fatalf("unknown access should have empty label")
	}
}
