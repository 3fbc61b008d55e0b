package typegraph

import (
	"cmp"
	"slices"
)

// Field is one Instance successor of a node resolved for emission: the
// embedded layout, its byte offset and its array geometry (outermost
// dimension first).
type Field struct {
	Offset     int64
	Strides    []int64
	TripCounts []int64
	Type       *Node
}

// Fields returns n's Instance successors sorted by byte offset, then by
// geometry, then by neighbor ID: the order a struct emitter lays them out
// in. A node's accumulated Size is the fallback footprint when Fields is
// empty.
func Fields(n *Node) []Field {
	var out []Field
	for _, e := range n.Successors.Edges() {
		if !IsInstanceEdge(e) {
			continue
		}
		oe := e.Tag.OffsetExpr()
		out = append(out, Field{
			Offset:     oe.Offset,
			Strides:    slices.Clone(oe.Strides),
			TripCounts: slices.Clone(oe.TripCounts),
			Type:       e.To,
		})
	}
	slices.SortFunc(out, func(a, b Field) int {
		if c := cmp.Compare(a.Offset, b.Offset); c != 0 {
			return c
		}
		if c := slices.Compare(a.Strides, b.Strides); c != 0 {
			return c
		}
		if c := slices.Compare(a.TripCounts, b.TripCounts); c != 0 {
			return c
		}
		return cmp.Compare(a.Type.ID, b.Type.ID)
	})
	return out
}

// Bases returns the base layouts n extends, in neighbor-ID order.
func Bases(n *Node) []*Node {
	var out []*Node
	for _, e := range n.Successors.Edges() {
		if IsInheritanceEdge(e) {
			out = append(out, e.To)
		}
	}
	return out
}
