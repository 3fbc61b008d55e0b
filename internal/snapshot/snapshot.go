// Package snapshot serializes type graphs with msgpack so intermediate
// analysis states can be written out between pipeline phases and inspected
// or replayed later.
package snapshot

import (
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"dla/internal/ir"
	"dla/internal/typegraph"
)

// SchemaVersion is bumped whenever the snapshot layout changes; decoding a
// snapshot with a different version fails.
const SchemaVersion uint16 = 1

// NodeRecord captures one live node.
type NodeRecord struct {
	ID       uint64   `msgpack:"id"`
	Size     uint64   `msgpack:"size"`
	Accesses []uint32 `msgpack:"accesses"`
}

// EdgeRecord captures one directed edge with its tag content. Mirrored
// predecessor entries are not stored; Restore rebuilds them.
type EdgeRecord struct {
	Src        uint64  `msgpack:"src"`
	Dst        uint64  `msgpack:"dst"`
	Kind       uint8   `msgpack:"kind"`
	Offset     int64   `msgpack:"offset"`
	Strides    []int64 `msgpack:"strides"`
	TripCounts []int64 `msgpack:"trip_counts"`
}

// OriginRecord maps one observation point to its node.
type OriginRecord struct {
	Node  uint64 `msgpack:"node"`
	Value uint32 `msgpack:"value"`
	Field uint32 `msgpack:"field"`
}

// Snapshot is a self-contained copy of a type graph's content. Node IDs are
// stable within the snapshot but not across a Restore.
type Snapshot struct {
	Schema  uint16         `msgpack:"schema"`
	Nodes   []NodeRecord   `msgpack:"nodes"`
	Edges   []EdgeRecord   `msgpack:"edges"`
	Origins []OriginRecord `msgpack:"origins"`
}

// Capture copies the live content of ts into a Snapshot.
func Capture(ts *typegraph.TypeSystem) *Snapshot {
	s := &Snapshot{Schema: SchemaVersion}
	for _, n := range ts.Nodes() {
		rec := NodeRecord{ID: uint64(n.ID), Size: n.Size}
		for a := range n.Accesses {
			rec.Accesses = append(rec.Accesses, uint32(a))
		}
		s.Nodes = append(s.Nodes, rec)
		for _, p := range ts.LayoutTypePtrs(n) {
			s.Origins = append(s.Origins, OriginRecord{
				Node:  uint64(n.ID),
				Value: uint32(p.Val),
				Field: p.Field,
			})
		}
		for _, e := range n.Successors.Edges() {
			rec := EdgeRecord{
				Src:  uint64(n.ID),
				Dst:  uint64(e.To.ID),
				Kind: uint8(e.Tag.Kind()),
			}
			if e.Tag.Kind() == typegraph.LinkInstance {
				oe := e.Tag.OffsetExpr()
				rec.Offset = oe.Offset
				rec.Strides = append([]int64(nil), oe.Strides...)
				rec.TripCounts = append([]int64(nil), oe.TripCounts...)
			}
			s.Edges = append(s.Edges, rec)
		}
	}
	return s
}

// Encode serializes the snapshot.
func (s *Snapshot) Encode() ([]byte, error) {
	data, err := msgpack.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	return data, nil
}

// Decode deserializes a snapshot and checks its schema version.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("snapshot: decode: %w", err)
	}
	if s.Schema != SchemaVersion {
		return nil, fmt.Errorf("snapshot: schema %d, want %d", s.Schema, SchemaVersion)
	}
	return &s, nil
}

// WriteFile encodes the snapshot and writes it to path.
func (s *Snapshot) WriteFile(path string) error {
	data, err := s.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("snapshot: write: %w", err)
	}
	return nil
}

// ReadFile reads and decodes a snapshot from path.
func ReadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read: %w", err)
	}
	return Decode(data)
}

// Restore rebuilds a TypeSystem over m from a snapshot. Restored nodes get
// fresh IDs; everything else (origin sets, sizes, access evidence, edges
// and their tags) round-trips. Snapshots are external input, so malformed
// content is an error rather than a panic.
func Restore(s *Snapshot, m *ir.Module, log *zap.Logger) (*typegraph.TypeSystem, error) {
	ts := typegraph.New(m, log)

	byNode := make(map[uint64][]typegraph.LayoutTypePtr, len(s.Nodes))
	for _, o := range s.Origins {
		p, err := checkedPtr(m, ir.ValueID(o.Value), o.Field)
		if err != nil {
			return nil, err
		}
		byNode[o.Node] = append(byNode[o.Node], p)
	}

	nodes := make(map[uint64]*typegraph.Node, len(s.Nodes))
	for _, rec := range s.Nodes {
		ptrs := byNode[rec.ID]
		if len(ptrs) == 0 {
			return nil, fmt.Errorf("snapshot: node %d has no origins", rec.ID)
		}
		members := make([]*typegraph.Node, 0, len(ptrs))
		for _, p := range ptrs {
			n, _ := ts.EnsureLayoutType(p)
			members = append(members, n)
		}
		n := ts.MergeAll(members)
		for _, a := range rec.Accesses {
			ts.RecordAccess(n, ir.AccessID(a), rec.Size)
		}
		n.Size = rec.Size
		nodes[rec.ID] = n
	}

	for _, rec := range s.Edges {
		src, ok := nodes[rec.Src]
		if !ok {
			return nil, fmt.Errorf("snapshot: edge from unknown node %d", rec.Src)
		}
		dst, ok := nodes[rec.Dst]
		if !ok {
			return nil, fmt.Errorf("snapshot: edge to unknown node %d", rec.Dst)
		}
		switch typegraph.LinkKind(rec.Kind) {
		case typegraph.LinkEquality:
			ts.AddEqualityLink(src, dst)
		case typegraph.LinkInheritance:
			ts.AddInheritanceLink(src, dst)
		case typegraph.LinkInstance:
			if len(rec.Strides) != len(rec.TripCounts) {
				return nil, fmt.Errorf("snapshot: edge %d->%d has %d strides, %d trip counts",
					rec.Src, rec.Dst, len(rec.Strides), len(rec.TripCounts))
			}
			oe := typegraph.NewOffsetExpression(rec.Offset)
			for i, stride := range rec.Strides {
				oe.AddStride(stride, rec.TripCounts[i])
			}
			ts.AddInstanceLink(src, dst, oe)
		default:
			return nil, fmt.Errorf("snapshot: edge %d->%d has kind %d", rec.Src, rec.Dst, rec.Kind)
		}
	}
	return ts, nil
}

// checkedPtr validates an origin record against m before building the
// observation point, converting contract violations into errors.
func checkedPtr(m *ir.Module, v ir.ValueID, field uint32) (typegraph.LayoutTypePtr, error) {
	val, ok := m.Value(v)
	if !ok {
		return typegraph.LayoutTypePtr{}, fmt.Errorf("snapshot: origin references unknown value v%d", v)
	}
	t, ok := m.Types.Lookup(val.Type)
	if !ok {
		return typegraph.LayoutTypePtr{}, fmt.Errorf("snapshot: value %q has no type", val.Name)
	}
	switch t.Kind {
	case ir.KindFunction, ir.KindInt, ir.KindPointer:
	default:
		return typegraph.LayoutTypePtr{}, fmt.Errorf("snapshot: value %q has kind %s", val.Name, t.Kind)
	}
	if m.ReturnsStruct(v) {
		if field == typegraph.NoField || field >= m.StructFieldCount(v) {
			return typegraph.LayoutTypePtr{}, fmt.Errorf("snapshot: bad field %d for %q", field, val.Name)
		}
		return typegraph.MakeFieldLayoutTypePtr(m, v, field), nil
	}
	if field != typegraph.NoField {
		return typegraph.LayoutTypePtr{}, fmt.Errorf("snapshot: field %d on non-struct-returning %q", field, val.Name)
	}
	return typegraph.MakeLayoutTypePtr(m, v), nil
}
