package typegraph

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"dla/internal/ir"
)

// TypeSystem owns the layout type graph for one analysis run: the node
// arena, the tag interner and both observation-point indices. It is not
// safe for concurrent use; the collect driver serializes all mutation.
type TypeSystem struct {
	mod *ir.Module
	log *zap.Logger

	// nodes is the arena, indexed by NodeID. A nil slot is a node that was
	// merged away or removed; slots are never reused.
	nodes []*Node
	live  int

	tags *tagInterner

	// ptrToNode maps every observation point to its current equivalence
	// class; rewritten on merge.
	ptrToNode map[LayoutTypePtr]*Node
	// nodeToPtrs is the inverse: the origin set of each node, kept sorted.
	nodeToPtrs map[NodeID][]LayoutTypePtr
}

// New creates an empty TypeSystem observing m. A nil logger disables
// logging.
func New(m *ir.Module, log *zap.Logger) *TypeSystem {
	if log == nil {
		log = zap.NewNop()
	}
	return &TypeSystem{
		mod:        m,
		log:        log,
		tags:       newTagInterner(),
		ptrToNode:  make(map[LayoutTypePtr]*Node, 64),
		nodeToPtrs: make(map[NodeID][]LayoutTypePtr, 64),
	}
}

// Module returns the module this graph observes.
func (ts *TypeSystem) Module() *ir.Module {
	return ts.mod
}

// NumLayouts returns the number of live nodes.
func (ts *TypeSystem) NumLayouts() int {
	return ts.live
}

// Nodes returns the live nodes in ascending ID order.
func (ts *TypeSystem) Nodes() []*Node {
	out := make([]*Node, 0, ts.live)
	for _, n := range ts.nodes {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

// owns reports whether n is a live node of this graph.
func (ts *TypeSystem) owns(n *Node) bool {
	return n != nil && !n.dead && int(n.ID) < len(ts.nodes) && ts.nodes[n.ID] == n
}

// assertOwned enforces the programmer-error contract on node arguments.
func (ts *TypeSystem) assertOwned(n *Node, op string) {
	if n == nil {
		panic(fmt.Errorf("typegraph: %s with nil node", op))
	}
	if !ts.owns(n) {
		panic(fmt.Errorf("typegraph: %s with dead or foreign %s", op, n))
	}
}

func (ts *TypeSystem) newNode() *Node {
	n := &Node{ID: NodeID(len(ts.nodes))}
	ts.nodes = append(ts.nodes, n)
	ts.live++
	return n
}

// LayoutType returns the node for an observation point, or nil when absent.
func (ts *TypeSystem) LayoutType(p LayoutTypePtr) *Node {
	return ts.ptrToNode[p]
}

// EnsureLayoutType returns the node for p, creating it when absent. The
// second result reports whether a node was created.
func (ts *TypeSystem) EnsureLayoutType(p LayoutTypePtr) (*Node, bool) {
	if n, ok := ts.ptrToNode[p]; ok {
		return n, false
	}
	n := ts.newNode()
	ts.ptrToNode[p] = n
	ts.nodeToPtrs[n.ID] = []LayoutTypePtr{p}
	return n, true
}

// EnsuredNode is one result of EnsureLayoutTypes.
type EnsuredNode struct {
	Node    *Node
	Created bool
}

// points lists the observation points v denotes: one per returned struct
// field for a struct-returning function, one for everything else.
func (ts *TypeSystem) points(v ir.ValueID) []LayoutTypePtr {
	if ts.mod.ReturnsStruct(v) {
		count := ts.mod.StructFieldCount(v)
		pts := make([]LayoutTypePtr, 0, count)
		for i := uint32(0); i < count; i++ {
			pts = append(pts, MakeFieldLayoutTypePtr(ts.mod, v, i))
		}
		return pts
	}
	return []LayoutTypePtr{MakeLayoutTypePtr(ts.mod, v)}
}

// LayoutTypes returns the nodes for every observation point v denotes, in
// field order; absent points yield nil entries.
func (ts *TypeSystem) LayoutTypes(v ir.ValueID) []*Node {
	pts := ts.points(v)
	out := make([]*Node, len(pts))
	for i, p := range pts {
		out[i] = ts.ptrToNode[p]
	}
	return out
}

// EnsureLayoutTypes ensures a node for every observation point v denotes.
func (ts *TypeSystem) EnsureLayoutTypes(v ir.ValueID) []EnsuredNode {
	pts := ts.points(v)
	out := make([]EnsuredNode, len(pts))
	for i, p := range pts {
		n, created := ts.EnsureLayoutType(p)
		out[i] = EnsuredNode{Node: n, Created: created}
	}
	return out
}

// LayoutTypePtrs returns the origin set of a node: every observation point
// currently mapped to it, in LayoutTypePtr order.
func (ts *TypeSystem) LayoutTypePtrs(n *Node) []LayoutTypePtr {
	ts.assertOwned(n, "origin lookup")
	return ts.nodeToPtrs[n.ID]
}

// HasLayoutTypePtrs reports whether n has a non-empty origin set.
func (ts *TypeSystem) HasLayoutTypePtrs(n *Node) bool {
	return ts.owns(n) && len(ts.nodeToPtrs[n.ID]) > 0
}

// addLink inserts one directed edge. A nil endpoint or src == tgt is a
// no-op; a dead or foreign endpoint panics. The returned tag is the interned
// flyweight; the bool reports whether the graph changed.
func (ts *TypeSystem) addLink(src, tgt *Node, tag TypeLinkTag) (*TypeLinkTag, bool) {
	if src == nil || tgt == nil || src == tgt {
		return nil, false
	}
	ts.assertOwned(src, "link")
	ts.assertOwned(tgt, "link")
	t := ts.tags.Intern(tag)
	added := src.Successors.Insert(Edge{To: tgt, Tag: t})
	if tgt.Predecessors.Insert(Edge{To: src, Tag: t}) {
		added = true
	}
	return t, added
}

// AddEqualityLink records that src and tgt are known aliases. The edge is
// inserted as a symmetric pair referencing the identical interned tag in
// both directions; re-adding is idempotent.
func (ts *TypeSystem) AddEqualityLink(src, tgt *Node) (*TypeLinkTag, bool) {
	fwd, addedFwd := ts.addLink(src, tgt, EqualityTag())
	back, addedBack := ts.addLink(tgt, src, EqualityTag())
	if fwd != back || addedFwd != addedBack {
		panic(fmt.Errorf("typegraph: asymmetric equality state between %s and %s", src, tgt))
	}
	return fwd, addedFwd
}

// AddInheritanceLink records that src extends tgt as its base layout.
func (ts *TypeSystem) AddInheritanceLink(src, tgt *Node) (*TypeLinkTag, bool) {
	return ts.addLink(src, tgt, InheritanceTag())
}

// AddInstanceLink records that tgt's layout is embedded inside src's at the
// offset and array geometry described by oe. Re-adding with an equal oe is
// idempotent; a different oe yields a distinct parallel edge.
func (ts *TypeSystem) AddInstanceLink(src, tgt *Node, oe OffsetExpression) (*TypeLinkTag, bool) {
	return ts.addLink(src, tgt, InstanceTag(oe))
}

// RecordAccess attaches one access-site evidence handle to n and folds the
// observed footprint into the node's size (the maximum wins).
func (ts *TypeSystem) RecordAccess(n *Node, access ir.AccessID, size uint64) {
	ts.assertOwned(n, "record access")
	if n.Accesses == nil {
		n.Accesses = make(map[ir.AccessID]struct{}, 1)
	}
	n.Accesses[access] = struct{}{}
	if size > n.Size {
		n.Size = size
	}
}

// insertPtrsSorted unions src into the sorted dst, keeping order and
// dropping duplicates.
func insertPtrsSorted(dst []LayoutTypePtr, src []LayoutTypePtr) []LayoutTypePtr {
	for _, p := range src {
		i, found := slices.BinarySearchFunc(dst, p, LayoutTypePtr.Compare)
		if found {
			continue
		}
		dst = slices.Insert(dst, i, p)
	}
	return dst
}
