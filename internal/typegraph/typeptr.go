package typegraph

import (
	"cmp"
	"fmt"

	"dla/internal/ir"
)

// NoField marks a LayoutTypePtr that refers to a whole value rather than to
// one field of a struct returned by a function.
const NoField = ^uint32(0)

// LayoutTypePtr identifies one observation point: a value, or field Field of
// the struct returned by function Val. The zero field uses the NoField
// sentinel, so LayoutTypePtr is comparable and usable as a map key.
type LayoutTypePtr struct {
	Val   ir.ValueID
	Field uint32
}

// MakeLayoutTypePtr builds the observation point for a whole value.
// It panics unless v is a function or an integer- or pointer-typed value
// that does not return a struct.
func MakeLayoutTypePtr(m *ir.Module, v ir.ValueID) LayoutTypePtr {
	return makeLayoutTypePtr(m, v, NoField)
}

// MakeFieldLayoutTypePtr builds the observation point for one field of the
// struct returned by function v. It panics unless v is such a function and
// field is in range.
func MakeFieldLayoutTypePtr(m *ir.Module, v ir.ValueID, field uint32) LayoutTypePtr {
	return makeLayoutTypePtr(m, v, field)
}

func makeLayoutTypePtr(m *ir.Module, v ir.ValueID, field uint32) LayoutTypePtr {
	val, ok := m.Value(v)
	if !ok {
		panic(fmt.Errorf("typegraph: observation point for unknown value v%d", v))
	}
	t := m.Types.MustLookup(val.Type)
	switch t.Kind {
	case ir.KindFunction, ir.KindInt, ir.KindPointer:
	default:
		panic(fmt.Errorf("typegraph: observation point for %s value %q, want function, int or pointer",
			t.Kind, val.Name))
	}
	returnsStruct := m.ReturnsStruct(v)
	if returnsStruct == (field == NoField) {
		panic(fmt.Errorf("typegraph: field index present iff %q returns a struct", val.Name))
	}
	if returnsStruct && field >= m.StructFieldCount(v) {
		panic(fmt.Errorf("typegraph: field %d out of range for %q (%d fields)",
			field, val.Name, m.StructFieldCount(v)))
	}
	return LayoutTypePtr{Val: v, Field: field}
}

// Compare orders observation points by value identity, then field index.
// The order is strict and total, so LayoutTypePtr can key sorted collections.
func (p LayoutTypePtr) Compare(o LayoutTypePtr) int {
	if c := cmp.Compare(p.Val, o.Val); c != 0 {
		return c
	}
	return cmp.Compare(p.Field, o.Field)
}

// Less reports whether p orders before o.
func (p LayoutTypePtr) Less(o LayoutTypePtr) bool {
	return p.Compare(o) < 0
}

func (p LayoutTypePtr) String() string {
	if p.Field == NoField {
		return fmt.Sprintf("v%d", p.Val)
	}
	return fmt.Sprintf("v%d.%d", p.Val, p.Field)
}
