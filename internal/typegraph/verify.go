package typegraph

import "go.uber.org/zap"

// The Verify* predicates are read-only, whole-graph sanity checks run
// between pipeline phases. They return false instead of panicking; the
// caller treats false as a fatal internal-invariant violation and must not
// hand the graph to the type emitter.

// VerifyConsistency checks that adjacency is mirrored with identical tag
// pointers, that every neighbor is a live node of this graph, that no
// self-loops exist and that every referenced tag is interned.
func (ts *TypeSystem) VerifyConsistency() bool {
	for _, n := range ts.Nodes() {
		for _, e := range n.Successors.Edges() {
			if !ts.checkEdge(n, e) {
				return false
			}
			if !e.To.Predecessors.Contains(Edge{To: n, Tag: e.Tag}) {
				ts.log.Error("successor edge has no mirror",
					zap.Uint64("node", uint64(n.ID)),
					zap.Uint64("neighbor", uint64(e.To.ID)),
					zap.Stringer("tag", e.Tag))
				return false
			}
		}
		for _, e := range n.Predecessors.Edges() {
			if !ts.checkEdge(n, e) {
				return false
			}
			if !e.To.Successors.Contains(Edge{To: n, Tag: e.Tag}) {
				ts.log.Error("predecessor edge has no mirror",
					zap.Uint64("node", uint64(n.ID)),
					zap.Uint64("neighbor", uint64(e.To.ID)),
					zap.Stringer("tag", e.Tag))
				return false
			}
		}
	}
	return true
}

func (ts *TypeSystem) checkEdge(n *Node, e Edge) bool {
	if e.To == n {
		ts.log.Error("self-loop", zap.Uint64("node", uint64(n.ID)))
		return false
	}
	if !ts.owns(e.To) {
		ts.log.Error("edge to dead or foreign node", zap.Uint64("node", uint64(n.ID)))
		return false
	}
	if !ts.tags.Contains(e.Tag) {
		ts.log.Error("edge tag not interned", zap.Uint64("node", uint64(n.ID)))
		return false
	}
	return true
}

// VerifyDAG checks consistency and that the subgraph of Instance and
// Inheritance edges contains no directed cycle.
func (ts *TypeSystem) VerifyDAG() bool {
	return ts.VerifyConsistency() && ts.acyclic(isLayoutEdge)
}

// VerifyInstanceDAG checks consistency and that the Instance-only subgraph
// contains no directed cycle.
func (ts *TypeSystem) VerifyInstanceDAG() bool {
	return ts.VerifyConsistency() && ts.acyclic(IsInstanceEdge)
}

// VerifyInheritanceDAG checks consistency and that the Inheritance-only
// subgraph contains no directed cycle.
func (ts *TypeSystem) VerifyInheritanceDAG() bool {
	return ts.VerifyConsistency() && ts.acyclic(IsInheritanceEdge)
}

// acyclic runs a three-color DFS over the filtered successor relation.
func (ts *TypeSystem) acyclic(filter func(Edge) bool) bool {
	const (
		white uint8 = iota
		gray
		black
	)
	color := make(map[NodeID]uint8, ts.live)
	var visit func(n *Node) bool
	visit = func(n *Node) bool {
		color[n.ID] = gray
		for _, e := range n.Successors.Edges() {
			if !filter(e) {
				continue
			}
			switch color[e.To.ID] {
			case gray:
				ts.log.Error("cycle through node",
					zap.Uint64("node", uint64(e.To.ID)))
				return false
			case white:
				if !visit(e.To) {
					return false
				}
			}
		}
		color[n.ID] = black
		return true
	}
	for _, n := range ts.Nodes() {
		if color[n.ID] == white && !visit(n) {
			return false
		}
	}
	return true
}

// VerifyInheritanceTree checks that the Inheritance-only subgraph is a
// forest: acyclic, with no node extending two distinct base layouts.
func (ts *TypeSystem) VerifyInheritanceTree() bool {
	if !ts.VerifyInheritanceDAG() {
		return false
	}
	for _, n := range ts.Nodes() {
		var base *Node
		for _, e := range n.Successors.Edges() {
			if !IsInheritanceEdge(e) {
				continue
			}
			if base != nil && base != e.To {
				ts.log.Error("node extends two distinct base layouts",
					zap.Uint64("node", uint64(n.ID)),
					zap.Uint64("base1", uint64(base.ID)),
					zap.Uint64("base2", uint64(e.To.ID)))
				return false
			}
			base = e.To
		}
	}
	return true
}

// VerifyLeafs checks that every leaf of the Instance-and-Inheritance
// subgraph carries access evidence: a layout nothing else decomposes into
// must have been observed in use.
func (ts *TypeSystem) VerifyLeafs() bool {
	for _, n := range ts.Nodes() {
		if IsLayoutLeaf(n) && !HasValidLayout(n) {
			ts.log.Error("leaf node without access evidence",
				zap.Uint64("node", uint64(n.ID)))
			return false
		}
	}
	return true
}

// VerifyNoEquality checks that no Equality edges remain; this is the
// expected postcondition of CollapseEqualityClasses.
func (ts *TypeSystem) VerifyNoEquality() bool {
	for _, n := range ts.Nodes() {
		for _, e := range n.Successors.Edges() {
			if IsEqualityEdge(e) {
				ts.log.Error("residual equality edge",
					zap.Uint64("node", uint64(n.ID)),
					zap.Uint64("neighbor", uint64(e.To.ID)))
				return false
			}
		}
	}
	return true
}
