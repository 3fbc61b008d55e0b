package typegraph

// Edge-kind predicates and kind-filtered adjacency queries. The type
// emitter traverses the finished graph through these.

// IsEqualityEdge reports whether e is an Equality edge.
func IsEqualityEdge(e Edge) bool {
	return e.Tag.Kind() == LinkEquality
}

// IsInheritanceEdge reports whether e is an Inheritance edge.
func IsInheritanceEdge(e Edge) bool {
	return e.Tag.Kind() == LinkInheritance
}

// IsInstanceEdge reports whether e is an Instance edge.
func IsInstanceEdge(e Edge) bool {
	return e.Tag.Kind() == LinkInstance
}

// isLayoutEdge selects the edges that carry layout structure.
func isLayoutEdge(e Edge) bool {
	k := e.Tag.Kind()
	return k == LinkInstance || k == LinkInheritance
}

// SuccessorsByKind returns n's successor edges of the given kind, in edge
// order.
func (n *Node) SuccessorsByKind(kind LinkKind) []Edge {
	var out []Edge
	for _, e := range n.Successors.Edges() {
		if e.Tag.Kind() == kind {
			out = append(out, e)
		}
	}
	return out
}

// PredecessorsByKind returns n's predecessor edges of the given kind, in
// edge order.
func (n *Node) PredecessorsByKind(kind LinkKind) []Edge {
	var out []Edge
	for _, e := range n.Predecessors.Edges() {
		if e.Tag.Kind() == kind {
			out = append(out, e)
		}
	}
	return out
}

func hasSuccessor(n *Node, filter func(Edge) bool) bool {
	for _, e := range n.Successors.Edges() {
		if filter(e) {
			return true
		}
	}
	return false
}

func hasPredecessor(n *Node, filter func(Edge) bool) bool {
	for _, e := range n.Predecessors.Edges() {
		if filter(e) {
			return true
		}
	}
	return false
}

// IsLayoutLeaf reports whether n has no successors in the subgraph of
// Instance and Inheritance edges.
func IsLayoutLeaf(n *Node) bool {
	return !hasSuccessor(n, isLayoutEdge)
}

// IsLayoutRoot reports whether n has no predecessors in the subgraph of
// Instance and Inheritance edges.
func IsLayoutRoot(n *Node) bool {
	return !hasPredecessor(n, isLayoutEdge)
}

// IsInstanceLeaf reports whether n has no Instance successors.
func IsInstanceLeaf(n *Node) bool {
	return !hasSuccessor(n, IsInstanceEdge)
}

// IsInstanceRoot reports whether n has no Instance predecessors.
func IsInstanceRoot(n *Node) bool {
	return !hasPredecessor(n, IsInstanceEdge)
}

// IsInheritanceLeaf reports whether n has no Inheritance successors.
func IsInheritanceLeaf(n *Node) bool {
	return !hasSuccessor(n, IsInheritanceEdge)
}

// IsInheritanceRoot reports whether n has no Inheritance predecessors.
func IsInheritanceRoot(n *Node) bool {
	return !hasPredecessor(n, IsInheritanceEdge)
}
