package typegraph

import (
	"cmp"
	"fmt"
	"slices"

	"dla/internal/ir"
)

// NodeID identifies a node for the whole lifetime of a TypeSystem. IDs are
// monotonically increasing and never reused, even after a node is merged
// away or removed.
type NodeID uint64

// Edge pairs a neighbor with the interned tag describing the relation. In a
// Successors set To is the edge target; in a Predecessors set it is the
// edge source.
type Edge struct {
	To  *Node
	Tag *TypeLinkTag
}

// Node is one equivalence class of observation points.
//
// Successors and Predecessors are kept mutually consistent by the
// TypeSystem: an edge in a.Successors has its mirror in b.Predecessors with
// the identical tag pointer. Callers must not mutate them directly.
type Node struct {
	ID NodeID

	Successors   EdgeSet
	Predecessors EdgeSet

	// Size is the largest access footprint observed for this class, in bytes.
	Size uint64
	// Accesses holds the access-site evidence that justified this node.
	Accesses map[ir.AccessID]struct{}

	dead bool
}

func (n *Node) String() string {
	return fmt.Sprintf("node#%d", n.ID)
}

// HasValidLayout reports whether n is live and backed by access evidence.
func HasValidLayout(n *Node) bool {
	return n != nil && !n.dead && len(n.Accesses) > 0
}

// EdgeSet is an ordered edge collection, sorted by neighbor ID and then by
// tag order. Insertion keeps the order, duplicates are rejected and
// iteration is deterministic.
type EdgeSet struct {
	edges []Edge
}

func edgeCompare(a, b Edge) int {
	if c := cmp.Compare(a.To.ID, b.To.ID); c != 0 {
		return c
	}
	return a.Tag.Compare(*b.Tag)
}

// Insert adds e, reporting whether the set changed.
func (s *EdgeSet) Insert(e Edge) bool {
	i, found := slices.BinarySearchFunc(s.edges, e, edgeCompare)
	if found {
		return false
	}
	s.edges = slices.Insert(s.edges, i, e)
	return true
}

// Remove deletes e, reporting whether it was present.
func (s *EdgeSet) Remove(e Edge) bool {
	i, found := slices.BinarySearchFunc(s.edges, e, edgeCompare)
	if !found {
		return false
	}
	s.edges = slices.Delete(s.edges, i, i+1)
	return true
}

// RemoveNeighbor deletes every edge to n, returning how many were removed.
func (s *EdgeSet) RemoveNeighbor(n *Node) int {
	before := len(s.edges)
	s.edges = slices.DeleteFunc(s.edges, func(e Edge) bool {
		return e.To == n
	})
	return before - len(s.edges)
}

// Contains reports whether e is in the set.
func (s *EdgeSet) Contains(e Edge) bool {
	_, found := slices.BinarySearchFunc(s.edges, e, edgeCompare)
	return found
}

// Len returns the number of edges.
func (s *EdgeSet) Len() int {
	return len(s.edges)
}

// Edges returns the ordered backing slice. Callers must not mutate it and
// must not hold it across graph mutations.
func (s *EdgeSet) Edges() []Edge {
	return s.edges
}
