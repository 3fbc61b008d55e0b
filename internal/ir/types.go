package ir

import (
	"fmt"

	"fortio.org/safecast"
)

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates the type shapes the analysis distinguishes. Finer
// distinctions (signedness, float widths) do not matter to layout recovery.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindInt
	KindFloat
	KindPointer
	KindStruct
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindVoid:
		return "void"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindPointer:
		return "pointer"
	case KindStruct:
		return "struct"
	case KindFunction:
		return "function"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a compact descriptor for a lifted-program type.
type Type struct {
	Kind   Kind
	Bits   uint32   // for integers and floats
	Elem   TypeID   // for pointers
	Fields []TypeID // for structs
	Ret    TypeID   // for functions
}

// typeKey is the comparable dedup key for primitive and pointer types.
type typeKey struct {
	Kind Kind
	Bits uint32
	Elem TypeID
}

// Interner provides stable TypeIDs. Primitives and pointers are deduplicated
// by content; structs and functions are nominal and every registration yields
// a fresh ID.
type Interner struct {
	types []Type
	index map[typeKey]TypeID
}

// NewInterner constructs an empty interner with ID 0 reserved as invalid.
func NewInterner() *Interner {
	in := &Interner{index: make(map[typeKey]TypeID, 32)}
	in.types = append(in.types, Type{Kind: KindInvalid})
	return in
}

// Intern ensures the primitive or pointer descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	switch t.Kind {
	case KindInvalid:
		return NoTypeID
	case KindStruct, KindFunction:
		panic(fmt.Errorf("ir: %s types are nominal, use AddStruct/AddFunction", t.Kind))
	}
	key := typeKey{Kind: t.Kind, Bits: t.Bits, Elem: t.Elem}
	if id, ok := in.index[key]; ok {
		return id
	}
	id := in.add(t)
	in.index[key] = id
	return id
}

// AddStruct registers a new nominal struct type with the given field types.
func (in *Interner) AddStruct(fields []TypeID) TypeID {
	return in.add(Type{Kind: KindStruct, Fields: append([]TypeID(nil), fields...)})
}

// AddFunction registers a new nominal function type with the given return type.
func (in *Interner) AddFunction(ret TypeID) TypeID {
	return in.add(Type{Kind: KindFunction, Ret: ret})
}

func (in *Interner) add(t Type) TypeID {
	n, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("ir: len(types) overflow: %w", err))
	}
	id := TypeID(n)
	in.types = append(in.types, t)
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	t, ok := in.Lookup(id)
	if !ok {
		panic(fmt.Errorf("ir: invalid TypeID %d", id))
	}
	return t
}
