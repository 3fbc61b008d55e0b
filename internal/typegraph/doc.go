// Package typegraph implements the data layout analysis type graph: the
// whole-program structure that unifies observation points believed to share
// a physical memory layout.
//
// # Model
//
//   - LayoutTypePtr – one observation point: a value, or one field of the
//     struct returned by a function.
//   - TypeLinkTag – an edge classification (Equality, Inheritance, Instance);
//     Instance tags carry an OffsetExpression describing where and with what
//     array geometry one layout is embedded inside another. Tags are interned
//     flyweights owned by the TypeSystem.
//   - Node – an equivalence class of observation points with symmetric
//     successor/predecessor adjacency and accumulated size/access evidence.
//   - TypeSystem – owns the node arena, the tag interner and both
//     observation-point indices, and exposes creation, linking, merging,
//     removal and verification.
//
// # Contracts
//
// Malformed observation points, linking or merging against nodes the graph
// does not own, and self-merges are programmer errors and panic. The Verify*
// predicates are read-only and return false instead; a graph that fails
// verification must not be handed to the type emitter.
//
// The graph is scoped to one decompilation unit and is mutated from a single
// goroutine; see the collect driver for how parallel link collection is kept
// away from graph mutation.
package typegraph
