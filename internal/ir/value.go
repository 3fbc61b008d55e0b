package ir

import (
	"fmt"

	"fortio.org/safecast"
)

// ValueID identifies a value inside a Module.
type ValueID uint32

// NoValueID marks the absence of a value.
const NoValueID ValueID = 0

// Value is one lifted-program entity the analysis can observe: a register,
// a lifted local, a global address or a function.
type Value struct {
	ID   ValueID
	Name string
	Type TypeID
}

// AccessID is an opaque handle to one memory-access site. The graph stores
// these only as evidence that a layout was actually used; the label behind
// an AccessID is for diagnostics.
type AccessID uint32

// Module is the slice of the lifted program a single analysis run observes.
// It stands in for the full program representation: the link collector walks
// the real instruction stream, the layout analysis only needs values, their
// types and access-site handles.
type Module struct {
	Types *Interner

	values       []Value // index 0 reserved
	accessLabels []string
}

// NewModule creates an empty module with a fresh type interner.
func NewModule() *Module {
	m := &Module{Types: NewInterner()}
	m.values = append(m.values, Value{})
	return m
}

// AddValue registers a value of the given type and returns its ID.
func (m *Module) AddValue(name string, t TypeID) ValueID {
	n, err := safecast.Conv[uint32](len(m.values))
	if err != nil {
		panic(fmt.Errorf("ir: len(values) overflow: %w", err))
	}
	id := ValueID(n)
	m.values = append(m.values, Value{ID: id, Name: name, Type: t})
	return id
}

// AddFunction registers a function value with the given return type.
func (m *Module) AddFunction(name string, ret TypeID) ValueID {
	return m.AddValue(name, m.Types.AddFunction(ret))
}

// Value returns the value for an ID.
func (m *Module) Value(id ValueID) (Value, bool) {
	if id == NoValueID || int(id) >= len(m.values) {
		return Value{}, false
	}
	return m.values[id], true
}

// MustValue panics when id is invalid.
func (m *Module) MustValue(id ValueID) Value {
	v, ok := m.Value(id)
	if !ok {
		panic(fmt.Errorf("ir: invalid ValueID %d", id))
	}
	return v
}

// NumValues returns the number of registered values.
func (m *Module) NumValues() int {
	return len(m.values) - 1
}

// Functions returns the IDs of all function values, in registration order.
func (m *Module) Functions() []ValueID {
	var fns []ValueID
	for _, v := range m.values[1:] {
		if m.Types.MustLookup(v.Type).Kind == KindFunction {
			fns = append(fns, v.ID)
		}
	}
	return fns
}

// IsFunction reports whether v is a function value.
func (m *Module) IsFunction(v ValueID) bool {
	val, ok := m.Value(v)
	if !ok {
		return false
	}
	t, ok := m.Types.Lookup(val.Type)
	return ok && t.Kind == KindFunction
}

// ReturnsStruct reports whether v is a function returning a struct.
func (m *Module) ReturnsStruct(v ValueID) bool {
	val, ok := m.Value(v)
	if !ok {
		return false
	}
	t, ok := m.Types.Lookup(val.Type)
	if !ok || t.Kind != KindFunction {
		return false
	}
	ret, ok := m.Types.Lookup(t.Ret)
	return ok && ret.Kind == KindStruct
}

// StructFieldCount returns the field count of the struct returned by
// function v, or 0 when v does not return a struct.
func (m *Module) StructFieldCount(v ValueID) uint32 {
	if !m.ReturnsStruct(v) {
		return 0
	}
	val := m.MustValue(v)
	ret := m.Types.MustLookup(m.Types.MustLookup(val.Type).Ret)
	n, err := safecast.Conv[uint32](len(ret.Fields))
	if err != nil {
		panic(fmt.Errorf("ir: field count overflow: %w", err))
	}
	return n
}

// NewAccess mints a fresh access-site handle. The label is kept only for
// diagnostics and never influences the analysis.
func (m *Module) NewAccess(label string) AccessID {
	n, err := safecast.Conv[uint32](len(m.accessLabels))
	if err != nil {
		panic(fmt.Errorf("ir: access count overflow: %w", err))
	}
	m.accessLabels = append(m.accessLabels, label)
	return AccessID(n)
}

// AccessLabel returns the diagnostic label recorded for an access site.
func (m *Module) AccessLabel(a AccessID) string {
	if int(a) >= len(m.accessLabels) {
		return ""
	}
	return m.accessLabels[a]
}
