package typegraph

import (
	"cmp"
	"fmt"
)

// LinkKind classifies an edge of the type graph.
type LinkKind uint8

const (
	// LinkInheritance marks "src extends tgt as its base layout".
	LinkInheritance LinkKind = iota + 1
	// LinkEquality marks a known alias; always present as a symmetric pair.
	LinkEquality
	// LinkInstance marks "tgt's layout is embedded inside src's" at the
	// offset and array geometry carried by the tag.
	LinkInstance
)

func (k LinkKind) String() string {
	switch k {
	case LinkInheritance:
		return "inheritance"
	case LinkEquality:
		return "equality"
	case LinkInstance:
		return "instance"
	default:
		return fmt.Sprintf("LinkKind(%d)", k)
	}
}

// TypeLinkTag is the payload shared by all edges of one kind and geometry.
// Tags are flyweights: the TypeSystem interns them, edges reference the
// interned copy by pointer, and structurally equal tags are the same object.
type TypeLinkTag struct {
	kind LinkKind
	oe   OffsetExpression
}

// EqualityTag builds an equality tag.
func EqualityTag() TypeLinkTag {
	return TypeLinkTag{kind: LinkEquality}
}

// InheritanceTag builds an inheritance tag.
func InheritanceTag() TypeLinkTag {
	return TypeLinkTag{kind: LinkInheritance}
}

// InstanceTag builds an instance tag with the given geometry. It panics when
// the stride and trip-count sequences are not parallel.
func InstanceTag(oe OffsetExpression) TypeLinkTag {
	if len(oe.Strides) != len(oe.TripCounts) {
		panic(fmt.Errorf("typegraph: %d strides with %d trip counts",
			len(oe.Strides), len(oe.TripCounts)))
	}
	return TypeLinkTag{kind: LinkInstance, oe: oe}
}

// Kind returns the edge classification.
func (t *TypeLinkTag) Kind() LinkKind {
	return t.kind
}

// OffsetExpr returns the geometry of an Instance tag. Callers must not
// mutate the returned slices. Panics for other kinds.
func (t *TypeLinkTag) OffsetExpr() OffsetExpression {
	if t.kind != LinkInstance {
		panic(fmt.Errorf("typegraph: offset expression of %s tag", t.kind))
	}
	return t.oe
}

// Compare orders tags by kind, then by offset expression.
func (t TypeLinkTag) Compare(o TypeLinkTag) int {
	if c := cmp.Compare(t.kind, o.kind); c != 0 {
		return c
	}
	return t.oe.Compare(o.oe)
}

func (t TypeLinkTag) String() string {
	if t.kind == LinkInstance {
		return fmt.Sprintf("%s %s", t.kind, t.oe)
	}
	return t.kind.String()
}
