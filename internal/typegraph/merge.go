package typegraph

import (
	"fmt"

	"go.uber.org/zap"

	"dla/internal/ir"
)

// MergeNodes collapses the equivalence class of from into into, once the
// two are proven to denote the same layout.
//
// Every edge incident to from is re-homed onto into. Edge re-homing is a
// set union under flyweight tag identity: an edge into already holds is not
// duplicated, while edges with a different tag to the same neighbor survive
// as parallel edges. The rule is symmetric, so swapping the from/into roles
// leaves the same edge multiset around the surviving node. Edges between
// from and into themselves would become self-loops and are dropped.
//
// from's origin set and payload are folded into into, its index entries are
// erased and the node is destroyed. Handles to from must not be used
// afterwards. Runs in time linear in the combined degree of the two nodes
// (up to the log factor of ordered-set insertion).
func (ts *TypeSystem) MergeNodes(from, into *Node) {
	ts.assertOwned(from, "merge")
	ts.assertOwned(into, "merge")
	if from == into {
		panic(fmt.Errorf("typegraph: self-merge of %s", into))
	}

	for _, e := range from.Successors.Edges() {
		e.To.Predecessors.Remove(Edge{To: from, Tag: e.Tag})
		if e.To == into {
			continue
		}
		into.Successors.Insert(Edge{To: e.To, Tag: e.Tag})
		e.To.Predecessors.Insert(Edge{To: into, Tag: e.Tag})
	}
	for _, e := range from.Predecessors.Edges() {
		e.To.Successors.Remove(Edge{To: from, Tag: e.Tag})
		if e.To == into {
			continue
		}
		into.Predecessors.Insert(Edge{To: e.To, Tag: e.Tag})
		e.To.Successors.Insert(Edge{To: into, Tag: e.Tag})
	}

	if from.Size > into.Size {
		into.Size = from.Size
	}
	if len(from.Accesses) > 0 && into.Accesses == nil {
		into.Accesses = make(map[ir.AccessID]struct{}, len(from.Accesses))
	}
	for a := range from.Accesses {
		into.Accesses[a] = struct{}{}
	}

	moved := ts.nodeToPtrs[from.ID]
	for _, p := range moved {
		ts.ptrToNode[p] = into
	}
	ts.nodeToPtrs[into.ID] = insertPtrsSorted(ts.nodeToPtrs[into.ID], moved)
	delete(ts.nodeToPtrs, from.ID)

	ts.destroy(from)
	ts.log.Debug("merged layout nodes",
		zap.Uint64("from", uint64(from.ID)),
		zap.Uint64("into", uint64(into.ID)))
}

// MergeAll folds every node in list into a single representative (the first
// distinct entry) and returns it. The representative itself and duplicate
// entries may appear anywhere in the list; nil entries are skipped.
func (ts *TypeSystem) MergeAll(list []*Node) *Node {
	var into *Node
	seen := make(map[*Node]struct{}, len(list))
	for _, n := range list {
		if n == nil {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		if into == nil {
			into = n
			continue
		}
		ts.MergeNodes(n, into)
	}
	return into
}

// RemoveNode unlinks n from every neighbor in both directions, erases its
// entries from both indices and destroys it. Handles to n must not be used
// afterwards.
func (ts *TypeSystem) RemoveNode(n *Node) {
	ts.assertOwned(n, "remove")
	for _, e := range n.Successors.Edges() {
		e.To.Predecessors.RemoveNeighbor(n)
	}
	for _, e := range n.Predecessors.Edges() {
		e.To.Successors.RemoveNeighbor(n)
	}
	for _, p := range ts.nodeToPtrs[n.ID] {
		delete(ts.ptrToNode, p)
	}
	delete(ts.nodeToPtrs, n.ID)
	ts.destroy(n)
	ts.log.Debug("removed layout node", zap.Uint64("node", uint64(n.ID)))
}

// destroy frees n's arena slot. The ID stays burned forever.
func (ts *TypeSystem) destroy(n *Node) {
	ts.nodes[n.ID] = nil
	ts.live--
	n.dead = true
	n.Successors = EdgeSet{}
	n.Predecessors = EdgeSet{}
	n.Accesses = nil
}

// CollapseEqualityClasses merges every Equality-connected component into a
// single node. Equality edges internal to a component degenerate into
// self-loops during the merges and are dropped, so VerifyNoEquality holds
// afterwards.
func (ts *TypeSystem) CollapseEqualityClasses() {
	visited := make(map[NodeID]struct{}, ts.live)
	for _, n := range ts.Nodes() {
		if _, done := visited[n.ID]; done {
			continue
		}
		comp := equalityComponent(n, visited)
		if len(comp) > 1 {
			ts.MergeAll(comp)
		}
	}
}

// equalityComponent collects the Equality-connected component of start in
// deterministic (BFS, edge-order) order.
func equalityComponent(start *Node, visited map[NodeID]struct{}) []*Node {
	comp := []*Node{start}
	visited[start.ID] = struct{}{}
	for i := 0; i < len(comp); i++ {
		for _, e := range comp[i].Successors.Edges() {
			if e.Tag.Kind() != LinkEquality {
				continue
			}
			if _, done := visited[e.To.ID]; done {
				continue
			}
			visited[e.To.ID] = struct{}{}
			comp = append(comp, e.To)
		}
	}
	return comp
}
